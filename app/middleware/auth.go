package middleware

import (
	"net/http"
	"strings"

	httpdto "github.com/vibast-solutions/ms-go-users/app/dto/http"
	"github.com/vibast-solutions/ms-go-users/app/service"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

const (
	ContextUserID     = "user_id"
	ContextUserEmail  = "user_email"
	ContextUserStatus = "user_status"
)

type accessTokenValidator interface {
	ValidateAccessToken(tokenString string) (*service.Claims, error)
}

type AuthMiddleware struct {
	tokens accessTokenValidator
}

func NewAuthMiddleware(tokens accessTokenValidator) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

func (m *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		tokenString, ok := BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
		if !ok {
			logrus.Debug("Missing or malformed authorization header")
			return c.JSON(http.StatusUnauthorized, httpdto.ErrorResponse{Error: "unauthorized"})
		}

		claims, err := m.tokens.ValidateAccessToken(tokenString)
		if err != nil {
			logrus.WithError(err).Debug("Invalid access token")
			return c.JSON(http.StatusUnauthorized, httpdto.ErrorResponse{Error: err.Error()})
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUserEmail, claims.Email)
		c.Set(ContextUserStatus, claims.Status)

		return next(c)
	}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" value.
func BearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}
