package controller_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/vibast-solutions/ms-go-users/app/entity"
	"github.com/vibast-solutions/ms-go-users/app/repository"
)

type memUsers struct {
	mu    sync.Mutex
	byID  map[string]entity.User
	order []string
}

func newMemUsers() *memUsers {
	return &memUsers{byID: make(map[string]entity.User)}
}

func (r *memUsers) Create(_ context.Context, user entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	r.byID[user.ID] = user
	r.order = append(r.order, user.ID)
	return nil
}

func (r *memUsers) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Email == email {
			found := u
			return &found, nil
		}
	}
	return nil, nil
}

func (r *memUsers) FindByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *memUsers) List(_ context.Context) ([]entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := make([]entity.User, 0, len(r.byID))
	for _, u := range r.byID {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Email < users[j].Email })
	return users, nil
}

func (r *memUsers) Update(_ context.Context, user entity.User) (entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[user.ID] = user
	return user, nil
}

func (r *memUsers) Delete(_ context.Context, id string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return 0, nil
	}
	delete(r.byID, id)
	return 1, nil
}

type memTokens struct {
	mu     sync.Mutex
	byUser map[string]entity.RefreshToken
}

func newMemTokens() *memTokens {
	return &memTokens{byUser: make(map[string]entity.RefreshToken)}
}

func (s *memTokens) Save(_ context.Context, userID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byUser[userID] = entity.RefreshToken{UserID: userID, Token: token, UpdatedAt: time.Now()}
	return nil
}

func (s *memTokens) FindByToken(_ context.Context, token string) (*entity.RefreshToken, error) {
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

func (s *memTokens) DeleteByToken(_ context.Context, token string) (*entity.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, rt := range s.byUser {
		if rt.Token == token {
			delete(s.byUser, id)
			removed := rt
			return &removed, nil
		}
	}
	return nil, nil
}

func (s *memTokens) DeleteByUserID(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byUser, userID)
	return nil
}
