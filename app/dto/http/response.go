package http

import (
	"time"

	"github.com/vibast-solutions/ms-go-users/app/dto"
	"github.com/vibast-solutions/ms-go-users/app/entity"
)

type AuthResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         dto.UserView `json:"user"`
}

func NewAuthResponse(result *dto.AuthResult) AuthResponse {
	return AuthResponse{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		User:         result.User,
	}
}

// RefreshTokenResponse is the record removed on logout.
type RefreshTokenResponse struct {
	UserID       string    `json:"user_id"`
	RefreshToken string    `json:"refresh_token"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewRefreshTokenResponse returns nil for a nil record so logout of an
// unknown token serializes as null.
func NewRefreshTokenResponse(rt *entity.RefreshToken) *RefreshTokenResponse {
	if rt == nil {
		return nil
	}
	return &RefreshTokenResponse{
		UserID:       rt.UserID,
		RefreshToken: rt.Token,
		UpdatedAt:    rt.UpdatedAt,
	}
}

type HealthResponse struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}
