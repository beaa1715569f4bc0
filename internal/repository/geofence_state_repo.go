package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"safezone/internal/store"
)

// GeofenceStateRepo 记录设备上一次是否位于区域内
type GeofenceStateRepo interface {
	// Get known=false 表示首次观测
	Get(ctx context.Context, deviceID, zoneID string) (inside bool, known bool, err error)
	Set(ctx context.Context, deviceID, zoneID string, inside bool) error
	// ClearZone 区域删除后清理所有设备的状态
	ClearZone(ctx context.Context, zoneID string) error
}

const geofenceStatePrefix = "geofence:state:"

// KVGeofenceStateRepo 状态存放在 KV 中，key: geofence:state:{deviceID}:{zoneID}
type KVGeofenceStateRepo struct {
	kv  store.KV
	ttl time.Duration
}

func NewKVGeofenceStateRepo(kv store.KV, ttl time.Duration) *KVGeofenceStateRepo {
	return &KVGeofenceStateRepo{kv: kv, ttl: ttl}
}

func geofenceStateKey(deviceID, zoneID string) string {
	return geofenceStatePrefix + deviceID + ":" + zoneID
}

func (r *KVGeofenceStateRepo) Get(ctx context.Context, deviceID, zoneID string) (bool, bool, error) {
	v, err := r.kv.Get(ctx, geofenceStateKey(deviceID, zoneID))
	if err != nil {
		if errors.Is(err, store.ErrMiss) {
			return false, false, nil
		}
		return false, false, fmt.Errorf("get geofence state: %w", err)
	}
	return v == "1", true, nil
}

func (r *KVGeofenceStateRepo) Set(ctx context.Context, deviceID, zoneID string, inside bool) error {
	v := "0"
	if inside {
		v = "1"
	}
	if err := r.kv.Set(ctx, geofenceStateKey(deviceID, zoneID), v, r.ttl); err != nil {
		return fmt.Errorf("set geofence state: %w", err)
	}
	return nil
}

func (r *KVGeofenceStateRepo) ClearZone(ctx context.Context, zoneID string) error {
	keys, err := r.kv.ScanKeys(ctx, geofenceStatePrefix+"*")
	if err != nil {
		return fmt.Errorf("scan geofence state: %w", err)
	}
	suffix := ":" + zoneID
	var del []string
	for _, k := range keys {
		if strings.HasSuffix(k, suffix) {
			del = append(del, k)
		}
	}
	return r.kv.Delete(ctx, del...)
}
