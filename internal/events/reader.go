package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	commonredis "safezone/common/redis"
	"safezone/internal/domain"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// StreamReader 通过消费者组读取越界事件（safezonectl events tail）
type StreamReader struct {
	client   *redis.Client
	stream   string
	group    string
	consumer string
	logger   *zap.Logger
}

func NewStreamReader(client *redis.Client, stream, group, consumer string, logger *zap.Logger) *StreamReader {
	if stream == "" {
		stream = DefaultStream
	}
	return &StreamReader{client: client, stream: stream, group: group, consumer: consumer, logger: logger}
}

// Init 创建消费者组（已存在时忽略）
func (r *StreamReader) Init(ctx context.Context) error {
	if err := commonredis.CreateConsumerGroup(ctx, r.client, r.stream, r.group); err != nil {
		return fmt.Errorf("create consumer group: %w", err)
	}
	return nil
}

// Read 读取一批事件并确认；无法解析的消息记录日志后同样确认，避免反复投递
func (r *StreamReader) Read(ctx context.Context, count int64, block time.Duration) ([]domain.GeofenceEvent, error) {
	msgs, err := commonredis.ReadFromStream(ctx, r.client, r.stream, r.group, r.consumer, count, block)
	if err != nil {
		return nil, fmt.Errorf("read stream %s: %w", r.stream, err)
	}

	out := make([]domain.GeofenceEvent, 0, len(msgs))
	ids := make([]string, 0, len(msgs))
	for _, m := range msgs {
		ids = append(ids, m.ID)
		raw, _ := m.Values["data"].(string)
		var ev domain.GeofenceEvent
		if err := json.Unmarshal([]byte(raw), &ev); err != nil {
			r.logger.Warn("Skipping malformed geofence event",
				zap.String("message_id", m.ID),
				zap.Error(err),
			)
			continue
		}
		out = append(out, ev)
	}
	if err := commonredis.AckMessages(ctx, r.client, r.stream, r.group, ids...); err != nil {
		return out, fmt.Errorf("ack messages: %w", err)
	}
	return out, nil
}
