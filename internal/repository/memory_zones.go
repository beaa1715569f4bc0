package repository

import (
	"context"
	"sync"

	"safezone/internal/domain"
)

// MemoryZonesRepo: DB 未就绪时使用，保留插入顺序
type MemoryZonesRepo struct {
	mu    sync.RWMutex
	order []string
	zones map[string]domain.Zone
}

func NewMemoryZonesRepo(seed ...domain.Zone) *MemoryZonesRepo {
	r := &MemoryZonesRepo{zones: map[string]domain.Zone{}}
	for _, z := range seed {
		_ = r.CreateZone(context.Background(), z)
	}
	return r
}

func (r *MemoryZonesRepo) ListZones(_ context.Context) ([]domain.Zone, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Zone, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.zones[id].Clone())
	}
	return out, nil
}

func (r *MemoryZonesRepo) GetZone(_ context.Context, zoneID string) (*domain.Zone, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	z, ok := r.zones[zoneID]
	if !ok {
		return nil, domain.ErrZoneNotFound
	}
	c := z.Clone()
	return &c, nil
}

func (r *MemoryZonesRepo) ListZonesByDevice(_ context.Context, deviceID string) ([]domain.Zone, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []domain.Zone{}
	for _, id := range r.order {
		if z := r.zones[id]; z.HasDevice(deviceID) {
			out = append(out, z.Clone())
		}
	}
	return out, nil
}

func (r *MemoryZonesRepo) CreateZone(_ context.Context, zone domain.Zone) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.zones[zone.ID]; !ok {
		r.order = append(r.order, zone.ID)
	}
	r.zones[zone.ID] = zone.Clone()
	return nil
}

func (r *MemoryZonesRepo) UpdateZone(_ context.Context, zone domain.Zone) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.zones[zone.ID]; !ok {
		return domain.ErrZoneNotFound
	}
	r.zones[zone.ID] = zone.Clone()
	return nil
}

func (r *MemoryZonesRepo) DeleteZone(_ context.Context, zoneID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.zones[zoneID]; !ok {
		return domain.ErrZoneNotFound
	}
	delete(r.zones, zoneID)
	for i, id := range r.order {
		if id == zoneID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}
