package domain

import "time"

// GeofenceEventType 越界事件类型
type GeofenceEventType string

const (
	GeofenceEnter GeofenceEventType = "enter"
	GeofenceExit  GeofenceEventType = "exit"
)

// GeofenceEvent 设备进入/离开区域事件
type GeofenceEvent struct {
	ID         string            `json:"id"`
	Type       GeofenceEventType `json:"type"`
	ZoneID     string            `json:"zoneId"`
	ZoneName   string            `json:"zoneName"`
	DeviceID   string            `json:"deviceId"`
	DeviceName string            `json:"deviceName"`
	Location   Location          `json:"location"`
	Distance   float64           `json:"distance"` // 设备到区域中心的距离（米）
	Sound      bool              `json:"sound"`
	Vibration  bool              `json:"vibration"`
	OccurredAt time.Time         `json:"occurredAt"`
}
