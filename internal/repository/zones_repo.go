package repository

import (
	"context"

	"safezone/internal/domain"
)

// ZonesRepository 区域 Repository 接口
type ZonesRepository interface {
	ListZones(ctx context.Context) ([]domain.Zone, error)
	GetZone(ctx context.Context, zoneID string) (*domain.Zone, error)
	// ListZonesByDevice 返回 devices 列表包含该设备的区域
	ListZonesByDevice(ctx context.Context, deviceID string) ([]domain.Zone, error)

	CreateZone(ctx context.Context, zone domain.Zone) error
	UpdateZone(ctx context.Context, zone domain.Zone) error
	DeleteZone(ctx context.Context, zoneID string) error
}
