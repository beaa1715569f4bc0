// Package zonestore 客户端区域列表：乐观更新 + 失败回滚。
//
// 状态修改在互斥锁内完成，网络请求在锁外执行。
// 同一区域上的并发操作不做协调，最后写入状态的一方生效。
package zonestore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"safezone/internal/domain"
	"safezone/internal/rbac"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ZonesAPI 后端区域接口
type ZonesAPI interface {
	ListZones(ctx context.Context) ([]domain.Zone, error)
	CreateZone(ctx context.Context, in domain.ZoneInput) (domain.Zone, error)
	UpdateZone(ctx context.Context, id string, in domain.ZoneInput) (domain.Zone, error)
	DeleteZone(ctx context.Context, id string) error
}

// Store 区域列表
type Store struct {
	mu       sync.Mutex
	state    State
	api      ZonesAPI
	notifier Notifier
	user     *domain.User
	logger   *zap.Logger
	now      func() time.Time
}

// NewStore 创建 Store；user 为当前会话用户，用于权限判断和 createdBy
func NewStore(api ZonesAPI, notifier Notifier, user *domain.User, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = NewLogNotifier(logger)
	}
	return &Store{
		state:    State{Zones: []domain.Zone{}},
		api:      api,
		notifier: notifier,
		user:     user,
		logger:   logger,
		now:      time.Now,
	}
}

// Snapshot 当前状态的副本
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// SetUser 切换会话用户（登录/退出）
func (s *Store) SetUser(user *domain.User) {
	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
}

func (s *Store) update(fn func(State) State) {
	s.mu.Lock()
	s.state = fn(s.state)
	s.mu.Unlock()
}

func (s *Store) sessionUser() *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

func (s *Store) zone(id string) (domain.Zone, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	z, ok := s.state.Find(id)
	return z.Clone(), ok
}

// run 执行乐观命令：apply -> call -> commit / compensate
func (s *Store) run(ctx context.Context, cmd command, call func(ctx context.Context) (func(State) State, error)) error {
	s.update(cmd.applyFn())

	commit, err := call(ctx)
	if err != nil {
		s.update(cmd.compensateFn())
		s.logger.Error("Zone operation failed",
			zap.String("operation", cmd.name),
			zap.Error(err),
		)
		s.notifier.Error("Error", fmt.Sprintf("Failed to %s zone", cmd.name))
		return fmt.Errorf("%s zone: %w", cmd.name, err)
	}
	if commit != nil {
		cmd.commit = commit
	}
	s.update(cmd.commitFn())
	return nil
}

// Fetch 拉取完整列表并整体替换；并发拉取不去重，最后返回的结果生效
func (s *Store) Fetch(ctx context.Context) error {
	s.update(func(st State) State {
		out := st.Clone()
		out.IsLoading = true
		out.Error = ""
		return out
	})

	zones, err := s.api.ListZones(ctx)
	if err != nil {
		s.update(func(st State) State {
			out := st.Clone()
			out.IsLoading = false
			out.Error = err.Error()
			return out
		})
		s.logger.Error("Failed to fetch zones", zap.Error(err))
		s.notifier.Error("Error", "Failed to load zones")
		return fmt.Errorf("fetch zones: %w", err)
	}

	s.update(func(st State) State {
		out := SetZones(st, zones)
		out.IsLoading = false
		out.Error = ""
		return out
	})
	return nil
}

// Create 乐观创建：先插入临时 id 的区域，成功后换成服务端返回的区域
// 返回服务端确认的区域。
// 请求期间临时条目被移除（取消创建，或并发的 Fetch 整体替换了列表）时，
// 确认的区域不会追加到列表，要等下一次 Fetch 才出现。
func (s *Store) Create(ctx context.Context, in domain.ZoneInput) (domain.Zone, error) {
	user := s.sessionUser()
	if !rbac.Can(user, rbac.ActionCreate, rbac.ResourceZones) {
		return domain.Zone{}, rbac.ErrDenied
	}

	in = domain.NormalizeZoneInput(in)
	if err := domain.ValidateZoneInput(in); err != nil {
		return domain.Zone{}, err
	}

	tmpID := domain.PendingIDPrefix + uuid.NewString()
	pending := in.ToZone(tmpID, user.ID, s.now())

	var confirmed domain.Zone
	cmd := command{
		name:  "create",
		apply: func(st State) State { return AddZone(st, pending) },
		compensate: func(st State) State {
			return RemoveZone(st, tmpID)
		},
	}
	err := s.run(ctx, cmd, func(ctx context.Context) (func(State) State, error) {
		z, err := s.api.CreateZone(ctx, in)
		if err != nil {
			return nil, err
		}
		confirmed = z
		return func(st State) State {
			// 临时条目已被取消时不再追加
			if _, ok := st.Find(tmpID); !ok {
				return st
			}
			return AddZone(RemoveZone(st, tmpID), z)
		}, nil
	})
	if err != nil {
		return domain.Zone{}, err
	}
	s.notifier.Success("Success", "Zone created")
	return confirmed, nil
}

// Update 非乐观：成功后按 id 替换，失败时状态不变
func (s *Store) Update(ctx context.Context, id string, in domain.ZoneInput) (domain.Zone, error) {
	current, ok := s.zone(id)
	if !ok {
		return domain.Zone{}, domain.ErrZoneNotFound
	}
	if !rbac.CanOnZone(s.sessionUser(), rbac.ActionUpdate, current) {
		return domain.Zone{}, rbac.ErrDenied
	}
	if domain.IsPendingID(id) {
		return domain.Zone{}, domain.NewValidationError("id", "zone is not saved yet")
	}

	in = domain.NormalizeZoneInput(in)
	if err := domain.ValidateZoneInput(in); err != nil {
		return domain.Zone{}, err
	}

	var updated domain.Zone
	err := s.run(ctx, command{name: "update"}, func(ctx context.Context) (func(State) State, error) {
		z, err := s.api.UpdateZone(ctx, id, in)
		if err != nil {
			return nil, err
		}
		updated = z
		return func(st State) State { return ReplaceZone(st, z) }, nil
	})
	if err != nil {
		return domain.Zone{}, err
	}
	return updated, nil
}

// ToggleActive 乐观翻转 isActive，失败时恢复原值
func (s *Store) ToggleActive(ctx context.Context, id string) error {
	current, ok := s.zone(id)
	if !ok {
		return domain.ErrZoneNotFound
	}
	if !rbac.CanOnZone(s.sessionUser(), rbac.ActionUpdate, current) {
		return rbac.ErrDenied
	}

	// 创建确认时会用服务端返回的区域替换临时条目，本地切换会丢失
	if domain.IsPendingID(id) {
		return domain.NewValidationError("id", "zone is not saved yet")
	}

	original := current.IsActive
	in := domain.InputFromZone(current)
	in.IsActive = !original

	cmd := command{
		name:       "toggle",
		apply:      func(st State) State { return SetZoneActive(st, id, !original) },
		compensate: func(st State) State { return SetZoneActive(st, id, original) },
	}
	return s.run(ctx, cmd, func(ctx context.Context) (func(State) State, error) {
		z, err := s.api.UpdateZone(ctx, id, in)
		if err != nil {
			return nil, err
		}
		return func(st State) State { return ReplaceZone(st, z) }, nil
	})
}

// Delete 临时 id 直接本地删除（取消创建）；否则请求成功后删除
func (s *Store) Delete(ctx context.Context, id string) error {
	current, ok := s.zone(id)
	if !ok {
		return domain.ErrZoneNotFound
	}
	if !rbac.CanOnZone(s.sessionUser(), rbac.ActionDelete, current) {
		return rbac.ErrDenied
	}

	if domain.IsPendingID(id) {
		s.update(func(st State) State { return RemoveZone(st, id) })
		return nil
	}

	err := s.run(ctx, command{name: "delete"}, func(ctx context.Context) (func(State) State, error) {
		if err := s.api.DeleteZone(ctx, id); err != nil {
			return nil, err
		}
		return func(st State) State { return RemoveZone(st, id) }, nil
	})
	if err != nil {
		return err
	}
	s.notifier.Success("Success", "Zone deleted")
	return nil
}
