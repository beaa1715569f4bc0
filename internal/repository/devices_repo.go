package repository

import (
	"context"

	"safezone/internal/domain"
)

// DevicesRepository 设备 Repository 接口
type DevicesRepository interface {
	ListDevices(ctx context.Context) ([]domain.Device, error)
	GetDevice(ctx context.Context, deviceID string) (*domain.Device, error)
	// UpdateLocation 记录最后位置并把设备标记为 online
	UpdateLocation(ctx context.Context, deviceID string, loc domain.Location) (*domain.Device, error)
}
