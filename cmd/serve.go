package cmd

import (
	"context"
	"net"

	"github.com/vibast-solutions/ms-go-users/app/controller"
	usersgrpc "github.com/vibast-solutions/ms-go-users/app/grpc"
	"github.com/vibast-solutions/ms-go-users/app/middleware"
	"github.com/vibast-solutions/ms-go-users/config"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and gRPC servers",
	Long:  `Start both HTTP (Echo) and gRPC servers for the user account service.`,
	Run:   runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	if err := configureLogging(cfg); err != nil {
		logrus.WithError(err).Fatal("Failed to configure logging")
	}

	app, err := newApplication(context.Background(), cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize application")
	}
	defer app.Close()

	go startGRPCServer(cfg, app)

	startHTTPServer(cfg, app)
}

func newHTTPServer(cfg *config.Config, app *application) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.RequestLogger())
	e.Use(echomiddleware.Recover())
	e.Use(corsMiddleware(cfg.CORS))

	userController := controller.NewUserController(app.users, cfg)
	authMiddleware := middleware.NewAuthMiddleware(app.tokens)

	e.GET("/health", userController.Health)
	e.POST("/registration", userController.Registration)
	e.POST("/login", userController.Login)
	e.POST("/logout", userController.Logout)
	e.GET("/refresh", userController.Refresh)

	users := e.Group("/users", authMiddleware.RequireAuth)
	users.GET("", userController.ListUsers)
	users.DELETE("/:id", userController.DeleteUser)
	users.PUT("/:id", userController.BlockUser)
	users.PUT("/:id/unblock", userController.UnblockUser)

	return e
}

// corsMiddleware allows credentials only for explicitly listed origins. With no
// list configured it falls back to the permissive default, which never sends
// Access-Control-Allow-Credentials.
func corsMiddleware(cfg config.CORSConfig) echo.MiddlewareFunc {
	if len(cfg.AllowedOrigins) == 0 {
		return echomiddleware.CORS()
	}
	return echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowCredentials: true,
	})
}

func startHTTPServer(cfg *config.Config, app *application) {
	e := newHTTPServer(cfg, app)
	defer e.Close()

	httpAddr := net.JoinHostPort(cfg.HTTP.Host, cfg.HTTP.Port)
	logrus.WithField("addr", httpAddr).Info("Starting HTTP server")
	if err := e.Start(httpAddr); err != nil {
		logrus.WithError(err).Fatal("Failed to start HTTP server")
	}
}

func startGRPCServer(cfg *config.Config, app *application) {
	grpcAddr := net.JoinHostPort(cfg.GRPC.Host, cfg.GRPC.Port)
	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to listen on gRPC port")
	}

	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(
		usersgrpc.LoggingUnaryInterceptor(),
		usersgrpc.AccessTokenUnaryInterceptor(app.tokens, usersgrpc.AdminMethods...),
	))
	defer grpcServer.GracefulStop()
	usersgrpc.RegisterUserServiceServer(grpcServer, usersgrpc.NewUserServer(app.users))

	logrus.WithField("addr", grpcAddr).Info("Starting gRPC server")
	if err := grpcServer.Serve(lis); err != nil {
		logrus.WithError(err).Fatal("Failed to start gRPC server")
	}
}
