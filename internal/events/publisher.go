// Package events 发布设备进出区域事件（Redis Streams / MQTT）。
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	commonredis "safezone/common/redis"
	"safezone/internal/domain"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// DefaultStream 越界事件流
const DefaultStream = "geofence:events:stream"

// Publisher 事件发布接口
type Publisher interface {
	Publish(ctx context.Context, event domain.GeofenceEvent) error
}

// RedisStreamPublisher 写入 Redis Stream（XADD）
type RedisStreamPublisher struct {
	client *redis.Client
	stream string
	logger *zap.Logger
}

func NewRedisStreamPublisher(client *redis.Client, stream string, logger *zap.Logger) *RedisStreamPublisher {
	if stream == "" {
		stream = DefaultStream
	}
	return &RedisStreamPublisher{client: client, stream: stream, logger: logger}
}

func (p *RedisStreamPublisher) Publish(ctx context.Context, event domain.GeofenceEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal geofence event: %w", err)
	}
	id, err := commonredis.PublishToStream(ctx, p.client, p.stream, map[string]interface{}{
		"event_id":  event.ID,
		"type":      string(event.Type),
		"zone_id":   event.ZoneID,
		"device_id": event.DeviceID,
		"data":      data,
		"timestamp": event.OccurredAt.Unix(),
	})
	if err != nil {
		return fmt.Errorf("publish to stream %s: %w", p.stream, err)
	}
	p.logger.Debug("Geofence event published to stream",
		zap.String("stream", p.stream),
		zap.String("message_id", id),
		zap.String("event_id", event.ID),
	)
	return nil
}

// mqttPublisher common/mqtt.Client 满足此接口
type mqttPublisher interface {
	Publish(topic string, qos byte, retained bool, payload []byte) error
	QoS() byte
}

// TopicPrefix MQTT 主题前缀，完整主题为 safezone/geofence/{deviceID}
const TopicPrefix = "safezone/geofence/"

// MQTTPublisher 按设备发布到 MQTT 主题
type MQTTPublisher struct {
	client mqttPublisher
}

func NewMQTTPublisher(client mqttPublisher) *MQTTPublisher {
	return &MQTTPublisher{client: client}
}

func (p *MQTTPublisher) Publish(_ context.Context, event domain.GeofenceEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal geofence event: %w", err)
	}
	return p.client.Publish(TopicPrefix+event.DeviceID, p.client.QoS(), false, payload)
}

// MultiPublisher 依次发布到所有后端，单个失败不影响其它后端
type MultiPublisher []Publisher

func (m MultiPublisher) Publish(ctx context.Context, event domain.GeofenceEvent) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogPublisher 无 Redis/MQTT 时只写日志
type LogPublisher struct {
	logger *zap.Logger
}

func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, event domain.GeofenceEvent) error {
	p.logger.Info("Geofence event",
		zap.String("event_id", event.ID),
		zap.String("type", string(event.Type)),
		zap.String("zone_id", event.ZoneID),
		zap.String("device_id", event.DeviceID),
		zap.Float64("distance", event.Distance),
	)
	return nil
}
