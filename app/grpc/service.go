package grpc

import (
	"context"

	gogrpc "google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "accounts.v1.UserService"

const (
	MethodRegistration = "/" + ServiceName + "/Registration"
	MethodLogin        = "/" + ServiceName + "/Login"
	MethodLogout       = "/" + ServiceName + "/Logout"
	MethodRefresh      = "/" + ServiceName + "/Refresh"
	MethodListUsers    = "/" + ServiceName + "/ListUsers"
	MethodDeleteUser   = "/" + ServiceName + "/DeleteUser"
	MethodBlockUser    = "/" + ServiceName + "/BlockUser"
	MethodUnblockUser  = "/" + ServiceName + "/UnblockUser"
)

// AdminMethods require a bearer access token.
var AdminMethods = []string{MethodListUsers, MethodDeleteUser, MethodBlockUser, MethodUnblockUser}

// UserServiceServer is the server API for accounts.v1.UserService. Every
// message is a google.protobuf.Struct shaped like the HTTP JSON bodies.
type UserServiceServer interface {
	Registration(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Login(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Logout(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Refresh(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListUsers(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteUser(context.Context, *structpb.Struct) (*structpb.Struct, error)
	BlockUser(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UnblockUser(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(UserServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryMethod(name, fullMethod string, call unaryCall) gogrpc.MethodDesc {
	return gogrpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor gogrpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(UserServiceServer), ctx, in)
			}
			info := &gogrpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(UserServiceServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var UserServiceDesc = gogrpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*UserServiceServer)(nil),
	Methods: []gogrpc.MethodDesc{
		unaryMethod("Registration", MethodRegistration, UserServiceServer.Registration),
		unaryMethod("Login", MethodLogin, UserServiceServer.Login),
		unaryMethod("Logout", MethodLogout, UserServiceServer.Logout),
		unaryMethod("Refresh", MethodRefresh, UserServiceServer.Refresh),
		unaryMethod("ListUsers", MethodListUsers, UserServiceServer.ListUsers),
		unaryMethod("DeleteUser", MethodDeleteUser, UserServiceServer.DeleteUser),
		unaryMethod("BlockUser", MethodBlockUser, UserServiceServer.BlockUser),
		unaryMethod("UnblockUser", MethodUnblockUser, UserServiceServer.UnblockUser),
	},
	Streams:  []gogrpc.StreamDesc{},
	Metadata: "accounts/v1/users.proto",
}

func RegisterUserServiceServer(s gogrpc.ServiceRegistrar, srv UserServiceServer) {
	s.RegisterService(&UserServiceDesc, srv)
}

// UserServiceClient invokes accounts.v1.UserService over an existing connection.
type UserServiceClient struct {
	cc gogrpc.ClientConnInterface
}

func NewUserServiceClient(cc gogrpc.ClientConnInterface) *UserServiceClient {
	return &UserServiceClient{cc: cc}
}

func (c *UserServiceClient) Call(ctx context.Context, method string, in *structpb.Struct, opts ...gogrpc.CallOption) (*structpb.Struct, error) {
	if in == nil {
		in = &structpb.Struct{}
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
