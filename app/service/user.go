package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vibast-solutions/ms-go-users/app/apierror"
	"github.com/vibast-solutions/ms-go-users/app/dto"
	"github.com/vibast-solutions/ms-go-users/app/entity"
	"github.com/vibast-solutions/ms-go-users/app/repository"
	"github.com/vibast-solutions/ms-go-users/config"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrUserExists         = apierror.BadRequest("user already exists", nil)
	ErrUserNotFound       = apierror.NotFound("user not found")
	ErrInvalidCredentials = apierror.BadRequest("invalid password", nil)
	ErrUserBlocked        = apierror.Unauthorized("blocked users cannot log in")
	ErrInvalidToken       = apierror.Unauthorized("invalid or expired token")
	ErrTokenExpired       = apierror.Unauthorized("token has expired")
	ErrWeakPassword       = apierror.BadRequest("password does not meet policy requirements", nil)
)

type userRepository interface {
	Create(ctx context.Context, user entity.User) error
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByID(ctx context.Context, id string) (*entity.User, error)
	List(ctx context.Context) ([]entity.User, error)
	Update(ctx context.Context, user entity.User) (entity.User, error)
	Delete(ctx context.Context, id string) (int64, error)
}

type UserService interface {
	Registration(ctx context.Context, email, password string) (*dto.AuthResult, error)
	Login(ctx context.Context, email, password string) (*dto.AuthResult, error)
	Logout(ctx context.Context, refreshToken string) (*entity.RefreshToken, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.AuthResult, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	ListUsers(ctx context.Context) ([]dto.UserListItem, error)
	DeleteUser(ctx context.Context, id string) error
	BlockUser(ctx context.Context, id string) error
	UnblockUser(ctx context.Context, id string) error
}

type UserServiceOption func(*userService)

func WithPasswordHasher(hasher PasswordHasher) UserServiceOption {
	return func(s *userService) {
		if hasher != nil {
			s.hasher = hasher
		}
	}
}

func WithClock(now func() time.Time) UserServiceOption {
	return func(s *userService) {
		if now != nil {
			s.now = now
		}
	}
}

type userService struct {
	userRepo userRepository
	tokens   *TokenService
	hasher   PasswordHasher
	policy   config.PasswordPolicy
	now      func() time.Time
}

func NewUserService(
	userRepo userRepository,
	tokens *TokenService,
	cfg *config.Config,
	opts ...UserServiceOption,
) UserService {
	svc := &userService{
		userRepo: userRepo,
		tokens:   tokens,
		hasher:   NewBcryptHasher(cfg.Password.BcryptCost),
		policy:   cfg.Password.Policy,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

func (s *userService) Registration(ctx context.Context, email, password string) (*dto.AuthResult, error) {
	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s", ErrUserExists, email)
	}

	if err = s.policy.Validate(password); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrWeakPassword, err.Error())
	}

	hashedPassword, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	user := entity.User{
		ID:               uuid.NewString(),
		Email:            email,
		PasswordHash:     hashedPassword,
		ActivationLink:   uuid.NewString(),
		Status:           entity.UserStatusInactive,
		RegistrationDate: now,
		LastLoginDate:    now,
	}

	if err = s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, fmt.Errorf("%w: %s", ErrUserExists, email)
		}
		return nil, err
	}

	return s.startSession(ctx, user)
}

func (s *userService) Login(ctx context.Context, email, password string) (*dto.AuthResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, email)
	}

	if !s.hasher.Compare(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	return s.startSession(ctx, *user)
}

func (s *userService) Logout(ctx context.Context, refreshToken string) (*entity.RefreshToken, error) {
	if refreshToken == "" {
		return nil, nil
	}
	return s.tokens.Remove(ctx, refreshToken)
}

// Refresh requires both a valid signature and a stored record holding the
// exact token; the pair is rebuilt from the user as currently stored.
func (s *userService) Refresh(ctx context.Context, refreshToken string) (*dto.AuthResult, error) {
	if refreshToken == "" {
		return nil, ErrInvalidToken
	}

	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	stored, err := s.tokens.Find(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if stored == nil || stored.UserID != claims.UserID {
		return nil, ErrInvalidToken
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidToken
	}

	return s.issue(ctx, *user)
}

func (s *userService) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return s.userRepo.FindByEmail(ctx, email)
}

func (s *userService) ListUsers(ctx context.Context) ([]dto.UserListItem, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]dto.UserListItem, 0, len(users))
	for _, user := range users {
		items = append(items, dto.NewUserListItem(user))
	}
	return items, nil
}

func (s *userService) DeleteUser(ctx context.Context, id string) error {
	user, err := s.findExisting(ctx, id)
	if err != nil {
		return err
	}

	rows, err := s.userRepo.Delete(ctx, user.ID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", ErrUserNotFound, id)
	}

	if err = s.tokens.RemoveForUser(ctx, user.ID); err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Warn("failed to remove refresh token of deleted user")
	}
	return nil
}

func (s *userService) BlockUser(ctx context.Context, id string) error {
	return s.setStatus(ctx, id, entity.UserStatusBlocked)
}

func (s *userService) UnblockUser(ctx context.Context, id string) error {
	return s.setStatus(ctx, id, entity.UserStatusActive)
}

func (s *userService) setStatus(ctx context.Context, id string, status entity.UserStatus) error {
	user, err := s.findExisting(ctx, id)
	if err != nil {
		return err
	}

	_, err = s.userRepo.Update(ctx, user.WithStatus(status))
	return err
}

func (s *userService) findExisting(ctx context.Context, id string) (*entity.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, id)
	}

	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, id)
	}
	return user, nil
}

// startSession marks the user Active with a fresh last-login date and issues
// a token pair for the updated record.
func (s *userService) startSession(ctx context.Context, user entity.User) (*dto.AuthResult, error) {
	active, err := s.userRepo.Update(ctx, user.WithLogin(s.now()))
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, active)
}

func (s *userService) issue(ctx context.Context, user entity.User) (*dto.AuthResult, error) {
	view := dto.NewUserView(user)
	pair, err := s.tokens.Generate(view)
	if err != nil {
		return nil, err
	}

	if err = s.tokens.Save(ctx, user.ID, pair.RefreshToken); err != nil {
		return nil, err
	}

	return &dto.AuthResult{TokenPair: pair, User: view}, nil
}
