package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"safezone/internal/domain"
	"safezone/internal/geocode"
	"safezone/internal/repository"

	"go.uber.org/zap"
)

// DeviceService 设备服务接口
type DeviceService interface {
	ListDevices(ctx context.Context) ([]domain.Device, error)
	GetDevice(ctx context.Context, deviceID string) (*domain.Device, error)
	UpdateLocation(ctx context.Context, req UpdateLocationRequest) (*UpdateLocationResponse, error)
	MockLocations(ctx context.Context) ([]geocode.MockLocation, error)
}

type deviceService struct {
	devicesRepo repository.DevicesRepository
	evaluator   *GeofenceEvaluator
	geocoder    *geocode.Geocoder
	logger      *zap.Logger
	now         func() time.Time
}

// NewDeviceService evaluator 为 nil 时不做越界判断
func NewDeviceService(devicesRepo repository.DevicesRepository, evaluator *GeofenceEvaluator, geocoder *geocode.Geocoder, logger *zap.Logger) DeviceService {
	if geocoder == nil {
		geocoder = geocode.New(nil)
	}
	return &deviceService{
		devicesRepo: devicesRepo,
		evaluator:   evaluator,
		geocoder:    geocoder,
		logger:      logger,
		now:         time.Now,
	}
}

// UpdateLocationRequest 位置上报请求
type UpdateLocationRequest struct {
	DeviceID string
	Update   domain.LocationUpdate
}

// UpdateLocationResponse 位置上报响应
type UpdateLocationResponse struct {
	Device *domain.Device          `json:"device"`
	Events []domain.GeofenceEvent `json:"events"`
}

func (s *deviceService) ListDevices(ctx context.Context) ([]domain.Device, error) {
	devices, err := s.devicesRepo.ListDevices(ctx)
	if err != nil {
		s.logger.Error("ListDevices failed", zap.Error(err))
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	return devices, nil
}

func (s *deviceService) GetDevice(ctx context.Context, deviceID string) (*domain.Device, error) {
	d, err := s.devicesRepo.GetDevice(ctx, deviceID)
	if err != nil {
		if errors.Is(err, domain.ErrDeviceNotFound) {
			return nil, err
		}
		s.logger.Error("GetDevice failed", zap.String("device_id", deviceID), zap.Error(err))
		return nil, fmt.Errorf("failed to get device: %w", err)
	}
	return d, nil
}

func validateCoordinates(lat, lon float64) error {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return domain.NewValidationError("latitude", "latitude must be between -90 and 90")
	}
	if math.IsNaN(lon) || lon < -180 || lon > 180 {
		return domain.NewValidationError("longitude", "longitude must be between -180 and 180")
	}
	return nil
}

// UpdateLocation 记录位置后执行越界判断；判断失败只记录日志
func (s *deviceService) UpdateLocation(ctx context.Context, req UpdateLocationRequest) (*UpdateLocationResponse, error) {
	if err := validateCoordinates(req.Update.Latitude, req.Update.Longitude); err != nil {
		return nil, err
	}

	loc := domain.Location{Lat: req.Update.Latitude, Lon: req.Update.Longitude, At: s.now().UTC()}
	d, err := s.devicesRepo.UpdateLocation(ctx, req.DeviceID, loc)
	if err != nil {
		if errors.Is(err, domain.ErrDeviceNotFound) {
			return nil, err
		}
		s.logger.Error("UpdateLocation failed", zap.String("device_id", req.DeviceID), zap.Error(err))
		return nil, fmt.Errorf("failed to update device location: %w", err)
	}

	resp := &UpdateLocationResponse{Device: d, Events: []domain.GeofenceEvent{}}
	if s.evaluator == nil {
		return resp, nil
	}
	evs, err := s.evaluator.Evaluate(ctx, *d, loc)
	if err != nil {
		s.logger.Error("Geofence evaluation failed", zap.String("device_id", d.ID), zap.Error(err))
	}
	resp.Events = append(resp.Events, evs...)
	return resp, nil
}

// MockLocations 每台设备的最后位置及最近的样本地址
func (s *deviceService) MockLocations(ctx context.Context) ([]geocode.MockLocation, error) {
	devices, err := s.ListDevices(ctx)
	if err != nil {
		return nil, err
	}
	out := []geocode.MockLocation{}
	for _, d := range devices {
		if d.LastLocation == nil {
			continue
		}
		out = append(out, geocode.MockLocation{
			DeviceID:  d.ID,
			Latitude:  d.LastLocation.Lat,
			Longitude: d.LastLocation.Lon,
			Address:   s.geocoder.Reverse(d.LastLocation.Lat, d.LastLocation.Lon).Address,
		})
	}
	return out, nil
}
