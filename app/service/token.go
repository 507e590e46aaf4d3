package service

import (
	"context"
	"errors"
	"time"

	"github.com/vibast-solutions/ms-go-users/app/dto"
	"github.com/vibast-solutions/ms-go-users/app/entity"
	"github.com/vibast-solutions/ms-go-users/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type Claims struct {
	UserID string            `json:"id"`
	Email  string            `json:"email"`
	Status entity.UserStatus `json:"status"`
	jwt.RegisteredClaims
}

// RefreshTokenStore persists one refresh token per user.
type RefreshTokenStore interface {
	Save(ctx context.Context, userID, token string) error
	FindByToken(ctx context.Context, token string) (*entity.RefreshToken, error)
	DeleteByToken(ctx context.Context, token string) (*entity.RefreshToken, error)
	DeleteByUserID(ctx context.Context, userID string) error
}

type TokenServiceOption func(*TokenService)

// WithTokenClock overrides the clock used for issuing and validating tokens.
func WithTokenClock(now func() time.Time) TokenServiceOption {
	return func(s *TokenService) {
		if now != nil {
			s.now = now
		}
	}
}

type TokenService struct {
	store RefreshTokenStore
	cfg   config.JWTConfig
	now   func() time.Time
}

func NewTokenService(store RefreshTokenStore, cfg config.JWTConfig, opts ...TokenServiceOption) *TokenService {
	svc := &TokenService{
		store: store,
		cfg:   cfg,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Generate signs the same payload into an access and a refresh token.
func (s *TokenService) Generate(payload dto.UserView) (dto.TokenPair, error) {
	access, err := s.sign(payload, s.cfg.AccessSecret, s.cfg.AccessTokenTTL)
	if err != nil {
		return dto.TokenPair{}, err
	}

	refresh, err := s.sign(payload, s.cfg.RefreshSecret, s.cfg.RefreshTokenTTL)
	if err != nil {
		return dto.TokenPair{}, err
	}

	return dto.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *TokenService) Save(ctx context.Context, userID, refreshToken string) error {
	return s.store.Save(ctx, userID, refreshToken)
}

// Remove deletes the record holding refreshToken. A missing record is not an
// error; the returned record is nil in that case.
func (s *TokenService) Remove(ctx context.Context, refreshToken string) (*entity.RefreshToken, error) {
	return s.store.DeleteByToken(ctx, refreshToken)
}

func (s *TokenService) RemoveForUser(ctx context.Context, userID string) error {
	return s.store.DeleteByUserID(ctx, userID)
}

func (s *TokenService) Find(ctx context.Context, refreshToken string) (*entity.RefreshToken, error) {
	return s.store.FindByToken(ctx, refreshToken)
}

func (s *TokenService) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.parse(tokenString, s.cfg.AccessSecret)
}

func (s *TokenService) ValidateRefreshToken(tokenString string) (*Claims, error) {
	return s.parse(tokenString, s.cfg.RefreshSecret)
}

func (s *TokenService) sign(payload dto.UserView, secret string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := &Claims{
		UserID: payload.ID,
		Email:  payload.Email,
		Status: payload.Status,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   payload.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func (s *TokenService) parse(tokenString, secret string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
