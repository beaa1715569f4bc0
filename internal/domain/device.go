package domain

import "time"

// DeviceType 设备类型
type DeviceType string

const (
	DeviceTypePhone   DeviceType = "phone"
	DeviceTypeWatch   DeviceType = "watch"
	DeviceTypeTracker DeviceType = "tracker"
)

const (
	DeviceStatusOnline  = "online"
	DeviceStatusOffline = "offline"
)

// Location 设备最后已知位置
type Location struct {
	Lat float64   `json:"lat"`
	Lon float64   `json:"lon"`
	At  time.Time `json:"at"`
}

// DeviceOwner 设备持有人
type DeviceOwner struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

// Device 设备领域模型（对应 devices 表）
// 设备与区域相互独立，关联只通过 Zone.Devices 和 Zone.NotificationsByDevice 表达
type Device struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Type         DeviceType  `json:"type"`
	LastLocation *Location   `json:"lastLocation,omitempty"`
	Avatar       string      `json:"avatar,omitempty"`
	Owner        DeviceOwner `json:"owner"`
	Status       string      `json:"status"`
	BatteryLevel *int        `json:"batteryLevel,omitempty"`
	IsActive     bool        `json:"isActive"`
}

// LocationUpdate POST /api/devices/:id/location 请求体
type LocationUpdate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy"`
}
