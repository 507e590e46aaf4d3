package service_test

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/vibast-solutions/ms-go-users/app/entity"
	"github.com/vibast-solutions/ms-go-users/app/repository"
	"github.com/vibast-solutions/ms-go-users/app/service"
	"github.com/vibast-solutions/ms-go-users/config"

	"golang.org/x/crypto/bcrypt"
)

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]entity.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]entity.User)}
}

func (r *memUserRepo) Create(_ context.Context, user entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	r.users[user.ID] = user
	return nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) FindByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (r *memUserRepo) List(_ context.Context) ([]entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users := make([]entity.User, 0, len(r.users))
	for _, user := range r.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Email < users[j].Email })
	return users, nil
}

func (r *memUserRepo) Update(_ context.Context, user entity.User) (entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.users[user.ID]
	if !ok {
		return user, nil
	}
	stored.Status = user.Status
	stored.LastLoginDate = user.LastLoginDate
	r.users[user.ID] = stored
	return stored, nil
}

func (r *memUserRepo) Delete(_ context.Context, id string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return 0, nil
	}
	delete(r.users, id)
	return 1, nil
}

type memTokenStore struct {
	mu     sync.Mutex
	byUser map[string]entity.RefreshToken
}

func newMemTokenStore() *memTokenStore {
	return &memTokenStore{byUser: make(map[string]entity.RefreshToken)}
}

func (s *memTokenStore) Save(_ context.Context, userID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.byUser[userID] = entity.RefreshToken{UserID: userID, Token: token, UpdatedAt: time.Now()}
	return nil
}

func (s *memTokenStore) FindByToken(_ context.Context, token string) (*entity.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rt := range s.byUser {
		if rt.Token == token {
			found := rt
			return &found, nil
		}
	}
	return nil, nil
}

func (s *memTokenStore) DeleteByToken(_ context.Context, token string) (*entity.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for userID, rt := range s.byUser {
		if rt.Token == token {
			delete(s.byUser, userID)
			deleted := rt
			return &deleted, nil
		}
	}
	return nil, nil
}

func (s *memTokenStore) DeleteByUserID(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.byUser, userID)
	return nil
}

func (s *memTokenStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byUser)
}

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			AccessSecret:    "test-access-secret",
			RefreshSecret:   "test-refresh-secret",
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: 30 * 24 * time.Hour,
		},
		Password: config.PasswordConfig{
			BcryptCost: bcrypt.MinCost,
			Policy:     config.PasswordPolicy{MinLength: 1},
		},
	}
}

type testEnv struct {
	svc    service.UserService
	tokens *service.TokenService
	users  *memUserRepo
	store  *memTokenStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := testConfig()
	users := newMemUserRepo()
	store := newMemTokenStore()
	tokens := service.NewTokenService(store, cfg.JWT)

	return &testEnv{
		svc:    service.NewUserService(users, tokens, cfg),
		tokens: tokens,
		users:  users,
		store:  store,
	}
}
