package repository

import (
	"context"
	"strings"
	"sync"

	"safezone/internal/domain"
)

// UsersRepository 用户 Repository 接口
type UsersRepository interface {
	GetUser(ctx context.Context, userID string) (*domain.User, error)
	GetUserByPhone(ctx context.Context, phone string) (*domain.User, error)
}

// MemoryUsersRepo 预置用户（登录联调用）
type MemoryUsersRepo struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

func NewMemoryUsersRepo(seed ...domain.User) *MemoryUsersRepo {
	r := &MemoryUsersRepo{users: map[string]domain.User{}}
	for _, u := range seed {
		r.users[u.ID] = u
	}
	return r
}

func (r *MemoryUsersRepo) GetUser(_ context.Context, userID string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

// GetUserByPhone 忽略空格比较号码
func (r *MemoryUsersRepo) GetUserByPhone(_ context.Context, phone string) (*domain.User, error) {
	want := normalizePhone(phone)
	if want == "" {
		return nil, domain.ErrUserNotFound
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if normalizePhone(u.Phone) == want {
			c := u
			return &c, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func normalizePhone(p string) string {
	return strings.Join(strings.Fields(p), "")
}
