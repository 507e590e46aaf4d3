package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/vibast-solutions/ms-go-users/app/entity"

	"github.com/redis/go-redis/v9"
)

const (
	redisFieldToken     = "token"
	redisFieldUpdatedAt = "updated_at"
)

// RedisRefreshTokenRepository stores the per-user refresh token in Redis.
//
// Two keys describe one record: a hash under the user key holding the current
// token, and a reverse index under the token key pointing back at the user. The
// hash is authoritative; a reverse index entry whose user hash holds a different
// token is stale and ignored.
type RedisRefreshTokenRepository struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

func NewRedisRefreshTokenRepository(client *redis.Client, prefix string, ttl time.Duration) *RedisRefreshTokenRepository {
	if prefix == "" {
		prefix = "refresh"
	}
	return &RedisRefreshTokenRepository{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		now:    time.Now,
	}
}

func (r *RedisRefreshTokenRepository) userKey(userID string) string {
	return r.prefix + ":user:" + userID
}

func (r *RedisRefreshTokenRepository) tokenKey(token string) string {
	return r.prefix + ":token:" + token
}

func (r *RedisRefreshTokenRepository) Save(ctx context.Context, userID, token string) error {
	userKey := r.userKey(userID)

	previous, err := r.client.HGet(ctx, userKey, redisFieldToken).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if previous != "" && previous != token {
			pipe.Del(ctx, r.tokenKey(previous))
		}
		pipe.HSet(ctx, userKey,
			redisFieldToken, token,
			redisFieldUpdatedAt, strconv.FormatInt(r.now().Unix(), 10),
		)
		pipe.Set(ctx, r.tokenKey(token), userID, r.ttl)
		if r.ttl > 0 {
			pipe.Expire(ctx, userKey, r.ttl)
		}
		return nil
	})
	return err
}

func (r *RedisRefreshTokenRepository) FindByToken(ctx context.Context, token string) (*entity.RefreshToken, error) {
	userID, err := r.client.Get(ctx, r.tokenKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	fields, err := r.client.HGetAll(ctx, r.userKey(userID)).Result()
	if err != nil {
		return nil, err
	}
	if fields[redisFieldToken] != token {
		return nil, nil
	}

	rt := &entity.RefreshToken{
		UserID: userID,
		Token:  token,
	}
	if ts, err := strconv.ParseInt(fields[redisFieldUpdatedAt], 10, 64); err == nil {
		rt.UpdatedAt = time.Unix(ts, 0)
	}
	return rt, nil
}

func (r *RedisRefreshTokenRepository) DeleteByToken(ctx context.Context, token string) (*entity.RefreshToken, error) {
	rt, err := r.FindByToken(ctx, token)
	if err != nil || rt == nil {
		return nil, err
	}

	deleted, err := r.client.Del(ctx, r.userKey(rt.UserID), r.tokenKey(token)).Result()
	if err != nil {
		return nil, err
	}
	if deleted == 0 {
		return nil, nil
	}
	return rt, nil
}

func (r *RedisRefreshTokenRepository) DeleteByUserID(ctx context.Context, userID string) error {
	userKey := r.userKey(userID)
	token, err := r.client.HGet(ctx, userKey, redisFieldToken).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return err
	}

	return r.client.Del(ctx, userKey, r.tokenKey(token)).Err()
}
