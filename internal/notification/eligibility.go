// Package notification 判断设备进出区域时是否应发出提醒。
package notification

import (
	"time"

	"safezone/internal/domain"
)

// Enabled 设备的有效通知开关：显式 false 关闭，true 或未配置均为开启
func Enabled(byDevice map[string]bool, deviceID string) bool {
	v, ok := byDevice[deviceID]
	return !ok || v
}

// Summary "N / M 台设备接收通知"
type Summary struct {
	Notified int `json:"notified"`
	Total    int `json:"total"`
}

// Summarize 统计 zone.Devices 中开启通知的设备数
func Summarize(z domain.Zone) Summary {
	s := Summary{Total: len(z.Devices)}
	for _, id := range z.Devices {
		if Enabled(z.NotificationsByDevice, id) {
			s.Notified++
		}
	}
	return s
}

// ShouldAlert 设备越界时是否提醒：区域启用、计划时间内、区域级 onEntry/onExit 开启、设备未关闭通知
func ShouldAlert(z domain.Zone, deviceID string, kind domain.GeofenceEventType, at time.Time) bool {
	if !z.IsActive {
		return false
	}
	if !z.Schedule.IsActiveAt(at) {
		return false
	}
	switch kind {
	case domain.GeofenceEnter:
		if !z.Notifications.OnEntry {
			return false
		}
	case domain.GeofenceExit:
		if !z.Notifications.OnExit {
			return false
		}
	default:
		return false
	}
	return Enabled(z.NotificationsByDevice, deviceID)
}
