package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/vibast-solutions/ms-go-users/app/apierror"
	"github.com/vibast-solutions/ms-go-users/app/dto"
	httpdto "github.com/vibast-solutions/ms-go-users/app/dto/http"
	"github.com/vibast-solutions/ms-go-users/app/entity"
	"github.com/vibast-solutions/ms-go-users/app/service"
	"github.com/vibast-solutions/ms-go-users/app/types"
	"github.com/vibast-solutions/ms-go-users/config"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type UserController struct {
	userService service.UserService
	cookie      config.CookieConfig
	refreshTTL  time.Duration
}

func NewUserController(userService service.UserService, cfg *config.Config) *UserController {
	return &UserController{
		userService: userService,
		cookie:      cfg.Cookie,
		refreshTTL:  cfg.JWT.RefreshTokenTTL,
	}
}

func (c *UserController) Registration(ctx echo.Context) error {
	req, err := types.NewRegistrationRequestFromContext(ctx)
	if err != nil {
		logrus.WithError(err).Debug("Failed to bind registration request")
		return writeError(ctx, err)
	}

	if err = req.Validate(); err != nil {
		logrus.WithField("email", req.Email).Debug("Registration validation failed")
		return writeError(ctx, err)
	}

	result, err := c.userService.Registration(ctx.Request().Context(), req.Email, req.Password)
	if err != nil {
		logrus.WithError(err).WithField("email", req.Email).Warn("Registration failed")
		return writeError(ctx, err)
	}

	logrus.WithFields(logrus.Fields{
		"user_id": result.User.ID,
		"email":   result.User.Email,
	}).Info("User registered")

	return c.writeAuth(ctx, result)
}

func (c *UserController) Login(ctx echo.Context) error {
	req, err := types.NewLoginRequestFromContext(ctx)
	if err != nil {
		logrus.WithError(err).Debug("Failed to bind login request")
		return writeError(ctx, err)
	}

	if err = req.Validate(); err != nil {
		logrus.WithField("email", req.Email).Debug("Login validation failed")
		return writeError(ctx, err)
	}

	reqCtx := ctx.Request().Context()
	user, err := c.userService.FindByEmail(reqCtx, req.Email)
	if err != nil {
		logrus.WithError(err).WithField("email", req.Email).Error("Login lookup failed")
		return writeError(ctx, err)
	}
	if user == nil {
		logrus.WithField("email", req.Email).Warn("Login failed: user not found")
		return writeError(ctx, service.ErrUserNotFound)
	}
	if user.Status == entity.UserStatusBlocked {
		logrus.WithField("user_id", user.ID).Warn("Login failed: user is blocked")
		return writeError(ctx, service.ErrUserBlocked)
	}

	result, err := c.userService.Login(reqCtx, req.Email, req.Password)
	if err != nil {
		logrus.WithError(err).WithField("email", req.Email).Warn("Login failed")
		return writeError(ctx, err)
	}

	logrus.WithField("user_id", result.User.ID).Info("Login successful")
	return c.writeAuth(ctx, result)
}

// Logout answers 200 even when the cookie is missing or its token is unknown;
// the body is then null.
func (c *UserController) Logout(ctx echo.Context) error {
	removed, err := c.userService.Logout(ctx.Request().Context(), c.refreshTokenFromCookie(ctx))
	if err != nil {
		logrus.WithError(err).Error("Logout failed")
		return writeError(ctx, err)
	}

	c.clearRefreshCookie(ctx)

	if removed != nil {
		logrus.WithField("user_id", removed.UserID).Info("Logout successful")
	}
	return ctx.JSON(http.StatusOK, httpdto.NewRefreshTokenResponse(removed))
}

func (c *UserController) Refresh(ctx echo.Context) error {
	result, err := c.userService.Refresh(ctx.Request().Context(), c.refreshTokenFromCookie(ctx))
	if err != nil {
		logrus.WithError(err).Debug("Refresh failed")
		return writeError(ctx, err)
	}

	logrus.WithField("user_id", result.User.ID).Info("Tokens refreshed")
	return c.writeAuth(ctx, result)
}

func (c *UserController) ListUsers(ctx echo.Context) error {
	users, err := c.userService.ListUsers(ctx.Request().Context())
	if err != nil {
		logrus.WithError(err).Error("List users failed")
		return writeError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, users)
}

func (c *UserController) DeleteUser(ctx echo.Context) error {
	return c.adminAction(ctx, "delete", c.userService.DeleteUser)
}

func (c *UserController) BlockUser(ctx echo.Context) error {
	return c.adminAction(ctx, "block", c.userService.BlockUser)
}

func (c *UserController) UnblockUser(ctx echo.Context) error {
	return c.adminAction(ctx, "unblock", c.userService.UnblockUser)
}

func (c *UserController) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, httpdto.HealthResponse{Status: "ok"})
}

func (c *UserController) adminAction(ctx echo.Context, action string, op func(context.Context, string) error) error {
	id := ctx.Param("id")
	fields := logrus.Fields{
		"action":   action,
		"user_id":  id,
		"admin_id": ctx.Get("user_id"),
	}

	if err := op(ctx.Request().Context(), id); err != nil {
		logrus.WithError(err).WithFields(fields).Warn("Admin action failed")
		return writeError(ctx, err)
	}

	logrus.WithFields(fields).Info("Admin action applied")
	return ctx.NoContent(http.StatusNoContent)
}

func (c *UserController) writeAuth(ctx echo.Context, result *dto.AuthResult) error {
	c.setRefreshCookie(ctx, result.RefreshToken)
	return ctx.JSON(http.StatusOK, httpdto.NewAuthResponse(result))
}

func (c *UserController) refreshTokenFromCookie(ctx echo.Context) string {
	cookie, err := ctx.Cookie(c.cookie.Name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (c *UserController) setRefreshCookie(ctx echo.Context, token string) {
	ctx.SetCookie(&http.Cookie{
		Name:     c.cookie.Name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(c.refreshTTL.Seconds()),
		HttpOnly: true,
		Secure:   c.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c *UserController) clearRefreshCookie(ctx echo.Context) {
	ctx.SetCookie(&http.Cookie{
		Name:     c.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func writeError(ctx echo.Context, err error) error {
	apiErr := apierror.From(err)
	if apiErr.Kind == apierror.KindInternal {
		logrus.WithError(err).WithFields(logrus.Fields{
			"method": ctx.Request().Method,
			"path":   ctx.Path(),
		}).Error("Request failed")
	}

	return ctx.JSON(apiErr.Kind.HTTPStatus(), httpdto.ErrorResponse{
		Error:   apiErr.Message,
		Details: apiErr.Details,
	})
}
