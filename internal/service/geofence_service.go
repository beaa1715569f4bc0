package service

import (
	"context"
	"fmt"
	"time"

	"safezone/internal/domain"
	"safezone/internal/events"
	"safezone/internal/geo"
	"safezone/internal/notification"
	"safezone/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GeofenceEvaluator 设备位置更新时判断进入/离开区域
//
// 每个 (设备, 区域) 的上一次状态保存在 GeofenceStateRepo 中：
//   - 首次观测：只记录状态，不产生事件
//   - 外 -> 内：enter；内 -> 外：exit
//
// 状态总是更新；只有通过 notification.ShouldAlert 的事件才会发布和返回。
type GeofenceEvaluator struct {
	zonesRepo repository.ZonesRepository
	stateRepo repository.GeofenceStateRepo
	publisher events.Publisher
	location  *time.Location
	logger    *zap.Logger
}

func NewGeofenceEvaluator(
	zonesRepo repository.ZonesRepository,
	stateRepo repository.GeofenceStateRepo,
	publisher events.Publisher,
	location *time.Location,
	logger *zap.Logger,
) *GeofenceEvaluator {
	if location == nil {
		location = time.UTC
	}
	return &GeofenceEvaluator{
		zonesRepo: zonesRepo,
		stateRepo: stateRepo,
		publisher: publisher,
		location:  location,
		logger:    logger,
	}
}

// Evaluate 对包含该设备的所有区域做一次判断
func (e *GeofenceEvaluator) Evaluate(ctx context.Context, device domain.Device, loc domain.Location) ([]domain.GeofenceEvent, error) {
	zones, err := e.zonesRepo.ListZonesByDevice(ctx, device.ID)
	if err != nil {
		return nil, fmt.Errorf("list zones for device %s: %w", device.ID, err)
	}

	p := geo.Point{Lat: loc.Lat, Lon: loc.Lon}
	localTime := loc.At.In(e.location)
	out := []domain.GeofenceEvent{}

	for _, z := range zones {
		center := geo.Point{Lat: z.Coordinates.Latitude, Lon: z.Coordinates.Longitude}
		distance := geo.Distance(center, p)
		inside := distance <= z.Coordinates.Radius

		prev, known, err := e.stateRepo.Get(ctx, device.ID, z.ID)
		if err != nil {
			return out, err
		}
		if err := e.stateRepo.Set(ctx, device.ID, z.ID, inside); err != nil {
			return out, err
		}
		if !known || prev == inside {
			continue
		}

		kind := domain.GeofenceExit
		if inside {
			kind = domain.GeofenceEnter
		}
		if !notification.ShouldAlert(z, device.ID, kind, localTime) {
			e.logger.Debug("Geofence transition suppressed",
				zap.String("device_id", device.ID),
				zap.String("zone_id", z.ID),
				zap.String("type", string(kind)),
			)
			continue
		}

		ev := domain.GeofenceEvent{
			ID:         uuid.NewString(),
			Type:       kind,
			ZoneID:     z.ID,
			ZoneName:   z.Name,
			DeviceID:   device.ID,
			DeviceName: device.Name,
			Location:   loc,
			Distance:   distance,
			Sound:      z.Notifications.Sound,
			Vibration:  z.Notifications.Vibration,
			OccurredAt: loc.At,
		}
		if e.publisher != nil {
			if err := e.publisher.Publish(ctx, ev); err != nil {
				// 发布失败不影响位置更新
				e.logger.Error("Failed to publish geofence event",
					zap.String("event_id", ev.ID),
					zap.Error(err),
				)
			}
		}
		e.logger.Info("Geofence event",
			zap.String("type", string(kind)),
			zap.String("zone_id", z.ID),
			zap.String("device_id", device.ID),
			zap.String("distance", geo.FormatDistance(distance)),
		)
		out = append(out, ev)
	}
	return out, nil
}
