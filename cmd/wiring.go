package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/vibast-solutions/ms-go-users/app/repository"
	"github.com/vibast-solutions/ms-go-users/app/service"
	"github.com/vibast-solutions/ms-go-users/config"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type application struct {
	db     *sql.DB
	redis  *redis.Client
	tokens *service.TokenService
	users  service.UserService
}

func newApplication(ctx context.Context, cfg *config.Config) (*application, error) {
	db, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetConnMaxLifetime(5 * time.Minute)

	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	app := &application{db: db}

	store, client, err := newTokenStore(ctx, cfg, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	app.redis = client

	app.tokens = service.NewTokenService(store, cfg.JWT)
	app.users = service.NewUserService(repository.NewUserRepository(db), app.tokens, cfg)
	return app, nil
}

// newTokenStore picks the refresh-token backend. The redis client is nil for
// the mysql store.
func newTokenStore(ctx context.Context, cfg *config.Config, db *sql.DB) (service.RefreshTokenStore, *redis.Client, error) {
	switch cfg.TokenStore {
	case config.TokenStoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("ping redis: %w", err)
		}
		logrus.WithField("addr", cfg.Redis.Addr).Info("Using redis refresh token store")
		return repository.NewRedisRefreshTokenRepository(client, "refresh", cfg.JWT.RefreshTokenTTL), client, nil
	default:
		logrus.Info("Using mysql refresh token store")
		return repository.NewRefreshTokenRepository(db), nil, nil
	}
}

func (a *application) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			logrus.WithError(err).Warn("Failed to close redis client")
		}
	}
	if err := a.db.Close(); err != nil {
		logrus.WithError(err).Warn("Failed to close database")
	}
}
