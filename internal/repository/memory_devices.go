package repository

import (
	"context"
	"sort"
	"sync"

	"safezone/internal/domain"
)

type MemoryDevicesRepo struct {
	mu      sync.RWMutex
	devices map[string]domain.Device
}

func NewMemoryDevicesRepo(seed ...domain.Device) *MemoryDevicesRepo {
	r := &MemoryDevicesRepo{devices: map[string]domain.Device{}}
	for _, d := range seed {
		r.devices[d.ID] = copyDevice(d)
	}
	return r
}

func copyDevice(d domain.Device) domain.Device {
	if d.LastLocation != nil {
		loc := *d.LastLocation
		d.LastLocation = &loc
	}
	if d.BatteryLevel != nil {
		b := *d.BatteryLevel
		d.BatteryLevel = &b
	}
	return d
}

func (r *MemoryDevicesRepo) ListDevices(_ context.Context) ([]domain.Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Device, 0, len(r.devices))
	for _, d := range r.devices {
		out = append(out, copyDevice(d))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryDevicesRepo) GetDevice(_ context.Context, deviceID string) (*domain.Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.devices[deviceID]
	if !ok {
		return nil, domain.ErrDeviceNotFound
	}
	c := copyDevice(d)
	return &c, nil
}

func (r *MemoryDevicesRepo) UpdateLocation(_ context.Context, deviceID string, loc domain.Location) (*domain.Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.devices[deviceID]
	if !ok {
		return nil, domain.ErrDeviceNotFound
	}
	d.LastLocation = &loc
	d.Status = domain.DeviceStatusOnline
	r.devices[deviceID] = copyDevice(d)
	c := copyDevice(d)
	return &c, nil
}
