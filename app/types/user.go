package types

import (
	"errors"
	"strings"

	"github.com/vibast-solutions/ms-go-users/app/apierror"
	httpdto "github.com/vibast-solutions/ms-go-users/app/dto/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/labstack/echo/v4"
)

var ErrInvalidBody = apierror.BadRequest("invalid request body", nil)

type RegistrationRequest struct {
	httpdto.CredentialsRequest
}

func NewRegistrationRequestFromContext(ctx echo.Context) (*RegistrationRequest, error) {
	var body RegistrationRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, ErrInvalidBody
	}
	body.Email = strings.TrimSpace(body.Email)

	return &body, nil
}

// NewRegistrationRequest builds a request from transport-neutral fields.
func NewRegistrationRequest(email, password string) *RegistrationRequest {
	return &RegistrationRequest{httpdto.CredentialsRequest{Email: strings.TrimSpace(email), Password: password}}
}

func (r *RegistrationRequest) Validate() error {
	return validateCredentials(&r.CredentialsRequest)
}

type LoginRequest struct {
	httpdto.CredentialsRequest
}

func NewLoginRequestFromContext(ctx echo.Context) (*LoginRequest, error) {
	var body LoginRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, ErrInvalidBody
	}
	body.Email = strings.TrimSpace(body.Email)

	return &body, nil
}

func NewLoginRequest(email, password string) *LoginRequest {
	return &LoginRequest{httpdto.CredentialsRequest{Email: strings.TrimSpace(email), Password: password}}
}

func (r *LoginRequest) Validate() error {
	return validateCredentials(&r.CredentialsRequest)
}

func validateCredentials(c *httpdto.CredentialsRequest) error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.Email, validation.Required, validation.Length(3, 255), is.Email),
		validation.Field(&c.Password, validation.Required, validation.Length(1, 72)),
	)
	return toAPIError(err)
}

// toAPIError turns ozzo field errors into a BadRequest carrying per-field details.
func toAPIError(err error) error {
	if err == nil {
		return nil
	}

	var fieldErrs validation.Errors
	if !errors.As(err, &fieldErrs) {
		return apierror.BadRequest(err.Error(), nil)
	}

	details := make(map[string]string, len(fieldErrs))
	for field, fieldErr := range fieldErrs {
		if fieldErr != nil {
			details[field] = fieldErr.Error()
		}
	}
	return apierror.BadRequest("validation failed", details)
}
