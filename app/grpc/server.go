package grpc

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"github.com/vibast-solutions/ms-go-users/app/apierror"
	httpdto "github.com/vibast-solutions/ms-go-users/app/dto/http"
	"github.com/vibast-solutions/ms-go-users/app/entity"
	"github.com/vibast-solutions/ms-go-users/app/service"
	"github.com/vibast-solutions/ms-go-users/app/types"

	"github.com/sirupsen/logrus"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

type UserServer struct {
	users service.UserService
}

func NewUserServer(users service.UserService) *UserServer {
	return &UserServer{users: users}
}

func (s *UserServer) Registration(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req := types.NewRegistrationRequest(stringField(in, "email"), stringField(in, "password"))
	if err := req.Validate(); err != nil {
		logrus.WithField("email", req.Email).Debug("Registration validation failed (grpc)")
		return nil, toStatus(err)
	}

	result, err := s.users.Registration(ctx, req.Email, req.Password)
	if err != nil {
		logrus.WithError(err).WithField("email", req.Email).Warn("Registration failed (grpc)")
		return nil, toStatus(err)
	}

	logrus.WithField("user_id", result.User.ID).Info("User registered (grpc)")
	return toStruct(httpdto.NewAuthResponse(result))
}

func (s *UserServer) Login(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req := types.NewLoginRequest(stringField(in, "email"), stringField(in, "password"))
	if err := req.Validate(); err != nil {
		logrus.WithField("email", req.Email).Debug("Login validation failed (grpc)")
		return nil, toStatus(err)
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, toStatus(err)
	}
	if user == nil {
		logrus.WithField("email", req.Email).Warn("Login failed: user not found (grpc)")
		return nil, toStatus(service.ErrUserNotFound)
	}
	if user.Status == entity.UserStatusBlocked {
		logrus.WithField("user_id", user.ID).Warn("Login failed: user is blocked (grpc)")
		return nil, toStatus(service.ErrUserBlocked)
	}

	result, err := s.users.Login(ctx, req.Email, req.Password)
	if err != nil {
		logrus.WithError(err).WithField("email", req.Email).Warn("Login failed (grpc)")
		return nil, toStatus(err)
	}

	logrus.WithField("user_id", result.User.ID).Info("Login successful (grpc)")
	return toStruct(httpdto.NewAuthResponse(result))
}

func (s *UserServer) Logout(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	removed, err := s.users.Logout(ctx, stringField(in, "refresh_token"))
	if err != nil {
		logrus.WithError(err).Error("Logout failed (grpc)")
		return nil, toStatus(err)
	}
	if removed == nil {
		return &structpb.Struct{}, nil
	}

	logrus.WithField("user_id", removed.UserID).Info("Logout successful (grpc)")
	return toStruct(httpdto.NewRefreshTokenResponse(removed))
}

func (s *UserServer) Refresh(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	result, err := s.users.Refresh(ctx, stringField(in, "refresh_token"))
	if err != nil {
		logrus.WithError(err).Debug("Refresh failed (grpc)")
		return nil, toStatus(err)
	}

	return toStruct(httpdto.NewAuthResponse(result))
}

func (s *UserServer) ListUsers(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		logrus.WithError(err).Error("List users failed (grpc)")
		return nil, toStatus(err)
	}

	return toStruct(map[string]interface{}{"users": users})
}

func (s *UserServer) DeleteUser(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return s.adminAction(ctx, "delete", stringField(in, "id"), s.users.DeleteUser)
}

func (s *UserServer) BlockUser(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return s.adminAction(ctx, "block", stringField(in, "id"), s.users.BlockUser)
}

func (s *UserServer) UnblockUser(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return s.adminAction(ctx, "unblock", stringField(in, "id"), s.users.UnblockUser)
}

func (s *UserServer) adminAction(ctx context.Context, action, id string, op func(context.Context, string) error) (*structpb.Struct, error) {
	fields := logrus.Fields{"action": action, "user_id": id}
	if claims, ok := ClaimsFromContext(ctx); ok {
		fields["admin_id"] = claims.UserID
	}

	if err := op(ctx, id); err != nil {
		logrus.WithError(err).WithFields(fields).Warn("Admin action failed (grpc)")
		return nil, toStatus(err)
	}

	logrus.WithFields(fields).Info("Admin action applied (grpc)")
	return &structpb.Struct{}, nil
}

func stringField(in *structpb.Struct, name string) string {
	return strings.TrimSpace(in.GetFields()[name].GetStringValue())
}

// toStruct converts v through its JSON form so gRPC responses carry the same
// keys as the HTTP bodies.
func toStruct(v interface{}) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, toStatus(err)
	}

	out := &structpb.Struct{}
	if err = protojson.Unmarshal(raw, out); err != nil {
		return nil, toStatus(err)
	}
	return out, nil
}

// toStatus maps err onto a gRPC status. Field details travel as an
// errdetails.BadRequest so clients see the same per-field messages as HTTP.
func toStatus(err error) error {
	apiErr := apierror.From(err)
	if apiErr.Kind == apierror.KindInternal {
		logrus.WithError(err).Error("Request failed (grpc)")
	}

	st := status.New(apiErr.Kind.GRPCCode(), apiErr.Message)
	if len(apiErr.Details) == 0 {
		return st.Err()
	}

	fields := make([]string, 0, len(apiErr.Details))
	for field := range apiErr.Details {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	violations := make([]*errdetails.BadRequest_FieldViolation, 0, len(fields))
	for _, field := range fields {
		violations = append(violations, &errdetails.BadRequest_FieldViolation{
			Field:       field,
			Description: apiErr.Details[field],
		})
	}

	detailed, detailErr := st.WithDetails(&errdetails.BadRequest{FieldViolations: violations})
	if detailErr != nil {
		logrus.WithError(detailErr).Warn("Failed to attach error details (grpc)")
		return st.Err()
	}
	return detailed.Err()
}
