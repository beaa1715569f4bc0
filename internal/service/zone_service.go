package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"safezone/internal/domain"
	"safezone/internal/repository"
	"safezone/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// zonesCachePrefix 区域列表缓存 zones:list:<version>
	zonesCachePrefix = "zones:list:"
	// zonesCacheVersionKey 写操作递增版本号，旧版本的缓存不再被读取，按 TTL 过期
	zonesCacheVersionKey = "zones:list:version"
)

// ZoneService 区域管理服务接口
type ZoneService interface {
	ListZones(ctx context.Context) ([]domain.Zone, error)
	GetZone(ctx context.Context, zoneID string) (*domain.Zone, error)
	CreateZone(ctx context.Context, req CreateZoneRequest) (*domain.Zone, error)
	UpdateZone(ctx context.Context, req UpdateZoneRequest) (*domain.Zone, error)
	ToggleZone(ctx context.Context, zoneID string) (*domain.Zone, error)
	DeleteZone(ctx context.Context, zoneID string) error
}

type zoneService struct {
	zonesRepo repository.ZonesRepository
	stateRepo repository.GeofenceStateRepo
	cache     store.KV
	cacheTTL  time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

// NewZoneService cache 为 nil 或 cacheTTL <= 0 时不缓存；stateRepo 可为 nil
func NewZoneService(zonesRepo repository.ZonesRepository, stateRepo repository.GeofenceStateRepo, cache store.KV, cacheTTL time.Duration, logger *zap.Logger) ZoneService {
	return &zoneService{
		zonesRepo: zonesRepo,
		stateRepo: stateRepo,
		cache:     cache,
		cacheTTL:  cacheTTL,
		logger:    logger,
		now:       time.Now,
	}
}

// CreateZoneRequest 创建区域请求
type CreateZoneRequest struct {
	Input     domain.ZoneInput
	CreatedBy string // 会话用户 ID
}

// UpdateZoneRequest 更新区域请求；Input 为完整的可编辑字段，部分更新由调用方先与当前值合并
type UpdateZoneRequest struct {
	ZoneID string
	Input  domain.ZoneInput
}

func (s *zoneService) cacheEnabled() bool {
	return s.cache != nil && s.cacheTTL > 0
}

// invalidate 递增版本号；并发的 ListZones 即使写回旧列表也只会写到旧版本的键
func (s *zoneService) invalidate(ctx context.Context) {
	if !s.cacheEnabled() {
		return
	}
	if _, err := s.cache.Incr(ctx, zonesCacheVersionKey); err != nil {
		s.logger.Warn("Failed to invalidate zones cache", zap.Error(err))
	}
}

// cacheKey 当前版本的缓存键；版本号尚未写入时为 0
func (s *zoneService) cacheKey(ctx context.Context) (string, error) {
	v, err := s.cache.Get(ctx, zonesCacheVersionKey)
	if errors.Is(err, store.ErrMiss) {
		return zonesCachePrefix + "0", nil
	}
	if err != nil {
		return "", err
	}
	return zonesCachePrefix + v, nil
}

// ListZones 优先读缓存；缓存异常不影响结果
func (s *zoneService) ListZones(ctx context.Context) ([]domain.Zone, error) {
	key := ""
	if s.cacheEnabled() {
		// 版本号必须在读库之前取得
		k, err := s.cacheKey(ctx)
		if err != nil {
			s.logger.Warn("Zones cache version read failed", zap.Error(err))
		}
		key = k
	}

	if key != "" {
		if raw, err := s.cache.Get(ctx, key); err == nil {
			var zones []domain.Zone
			if err := json.Unmarshal([]byte(raw), &zones); err == nil {
				return zones, nil
			}
			s.logger.Warn("Discarding malformed zones cache")
		} else if !errors.Is(err, store.ErrMiss) {
			s.logger.Warn("Zones cache read failed", zap.Error(err))
		}
	}

	zones, err := s.zonesRepo.ListZones(ctx)
	if err != nil {
		s.logger.Error("ListZones failed", zap.Error(err))
		return nil, fmt.Errorf("failed to list zones: %w", err)
	}

	if key != "" {
		if b, err := json.Marshal(zones); err == nil {
			if err := s.cache.Set(ctx, key, string(b), s.cacheTTL); err != nil {
				s.logger.Warn("Zones cache write failed", zap.Error(err))
			}
		}
	}
	return zones, nil
}

func (s *zoneService) GetZone(ctx context.Context, zoneID string) (*domain.Zone, error) {
	z, err := s.zonesRepo.GetZone(ctx, zoneID)
	if err != nil {
		if errors.Is(err, domain.ErrZoneNotFound) {
			return nil, err
		}
		s.logger.Error("GetZone failed", zap.String("zone_id", zoneID), zap.Error(err))
		return nil, fmt.Errorf("failed to get zone: %w", err)
	}
	return z, nil
}

// CreateZone 校验后以 zone-<uuid> 作为 ID 保存
func (s *zoneService) CreateZone(ctx context.Context, req CreateZoneRequest) (*domain.Zone, error) {
	in := domain.NormalizeZoneInput(req.Input)
	if err := domain.ValidateZoneInput(in); err != nil {
		return nil, err
	}

	z := in.ToZone(domain.ServerIDPrefix+uuid.NewString(), req.CreatedBy, s.now().UTC())
	if err := s.zonesRepo.CreateZone(ctx, z); err != nil {
		s.logger.Error("CreateZone failed", zap.String("name", z.Name), zap.Error(err))
		return nil, fmt.Errorf("failed to create zone: %w", err)
	}
	s.invalidate(ctx)

	s.logger.Info("Zone created",
		zap.String("zone_id", z.ID),
		zap.String("name", z.Name),
		zap.String("created_by", z.CreatedBy),
	)
	return &z, nil
}

// UpdateZone id/createdAt/createdBy 保持不变
func (s *zoneService) UpdateZone(ctx context.Context, req UpdateZoneRequest) (*domain.Zone, error) {
	current, err := s.GetZone(ctx, req.ZoneID)
	if err != nil {
		return nil, err
	}

	in := domain.NormalizeZoneInput(req.Input)
	if err := domain.ValidateZoneInput(in); err != nil {
		return nil, err
	}

	z := in.ToZone(current.ID, current.CreatedBy, current.CreatedAt)
	z.UpdatedAt = s.now().UTC()
	if err := s.zonesRepo.UpdateZone(ctx, z); err != nil {
		if errors.Is(err, domain.ErrZoneNotFound) {
			return nil, err
		}
		s.logger.Error("UpdateZone failed", zap.String("zone_id", z.ID), zap.Error(err))
		return nil, fmt.Errorf("failed to update zone: %w", err)
	}
	s.invalidate(ctx)
	return &z, nil
}

func (s *zoneService) ToggleZone(ctx context.Context, zoneID string) (*domain.Zone, error) {
	current, err := s.GetZone(ctx, zoneID)
	if err != nil {
		return nil, err
	}
	in := domain.InputFromZone(*current)
	in.IsActive = !current.IsActive
	return s.UpdateZone(ctx, UpdateZoneRequest{ZoneID: zoneID, Input: in})
}

// DeleteZone 同时清理该区域的越界状态
func (s *zoneService) DeleteZone(ctx context.Context, zoneID string) error {
	if err := s.zonesRepo.DeleteZone(ctx, zoneID); err != nil {
		if errors.Is(err, domain.ErrZoneNotFound) {
			return err
		}
		s.logger.Error("DeleteZone failed", zap.String("zone_id", zoneID), zap.Error(err))
		return fmt.Errorf("failed to delete zone: %w", err)
	}
	s.invalidate(ctx)

	if s.stateRepo != nil {
		if err := s.stateRepo.ClearZone(ctx, zoneID); err != nil {
			s.logger.Warn("Failed to clear geofence state", zap.String("zone_id", zoneID), zap.Error(err))
		}
	}
	return nil
}
