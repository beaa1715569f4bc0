package domain

import (
	"strings"
	"time"
)

// ZoneType 区域类型
type ZoneType string

const (
	ZoneTypeHome   ZoneType = "home"
	ZoneTypeSchool ZoneType = "school"
	ZoneTypeWork   ZoneType = "work"
	ZoneTypeOther  ZoneType = "other"
)

// Valid 是否为已知类型
func (t ZoneType) Valid() bool {
	switch t {
	case ZoneTypeHome, ZoneTypeSchool, ZoneTypeWork, ZoneTypeOther:
		return true
	}
	return false
}

const (
	// ServerIDPrefix 服务端签发的区域 ID 前缀
	ServerIDPrefix = "zone-"
	// PendingIDPrefix 客户端乐观创建时使用的临时 ID 前缀
	PendingIDPrefix = "tmp-"

	DefaultZoneColor = "#4CAF50"
	DefaultZoneIcon  = "🏠"
)

// IsPendingID 判断是否为尚未被服务端确认的临时 ID
func IsPendingID(id string) bool {
	return strings.HasPrefix(id, PendingIDPrefix)
}

// Coordinates 区域中心与半径（米）
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Radius    float64 `json:"radius"`
}

// NotificationSettings 区域级别的通知默认值
type NotificationSettings struct {
	OnEntry   bool `json:"onEntry"`
	OnExit    bool `json:"onExit"`
	Sound     bool `json:"sound"`
	Vibration bool `json:"vibration"`
}

// Zone 区域领域模型（对应 zones 表）
type Zone struct {
	ID                    string               `json:"id"`
	Name                  string               `json:"name"`
	Icon                  string               `json:"icon,omitempty"`
	Description           string               `json:"description"`
	Type                  ZoneType             `json:"type"`
	Coordinates           Coordinates          `json:"coordinates"`
	Address               string               `json:"address"`
	IsActive              bool                 `json:"isActive"`
	Notifications         NotificationSettings `json:"notifications"`
	Devices               []string             `json:"devices"`
	NotificationsByDevice map[string]bool      `json:"notificationsByDevice"`
	Schedule              Schedule             `json:"schedule"`
	CreatedAt             time.Time            `json:"createdAt"`
	UpdatedAt             time.Time            `json:"updatedAt"`
	CreatedBy             string               `json:"createdBy"`
	Color                 string               `json:"color"`
}

// Clone 深拷贝（切片和 map 不共享）
func (z Zone) Clone() Zone {
	out := z
	if z.Devices != nil {
		out.Devices = append([]string(nil), z.Devices...)
	}
	if z.NotificationsByDevice != nil {
		out.NotificationsByDevice = make(map[string]bool, len(z.NotificationsByDevice))
		for k, v := range z.NotificationsByDevice {
			out.NotificationsByDevice[k] = v
		}
	}
	if z.Schedule.ActiveDays != nil {
		out.Schedule.ActiveDays = append([]string(nil), z.Schedule.ActiveDays...)
	}
	return out
}

// HasDevice zone.Devices 是否包含该设备
func (z Zone) HasDevice(deviceID string) bool {
	for _, id := range z.Devices {
		if id == deviceID {
			return true
		}
	}
	return false
}

// ZoneInput 创建/更新区域时客户端提交的字段（id、时间戳和 createdBy 由服务端填写）
type ZoneInput struct {
	Name                  string               `json:"name"`
	Icon                  string               `json:"icon,omitempty"`
	Description           string               `json:"description"`
	Type                  ZoneType             `json:"type"`
	Coordinates           Coordinates          `json:"coordinates"`
	Address               string               `json:"address"`
	IsActive              bool                 `json:"isActive"`
	Notifications         NotificationSettings `json:"notifications"`
	Devices               []string             `json:"devices"`
	NotificationsByDevice map[string]bool      `json:"notificationsByDevice"`
	Schedule              Schedule             `json:"schedule"`
	Color                 string               `json:"color"`
}

// InputFromZone 从已有区域提取可编辑字段
func InputFromZone(z Zone) ZoneInput {
	c := z.Clone()
	return ZoneInput{
		Name:                  c.Name,
		Icon:                  c.Icon,
		Description:           c.Description,
		Type:                  c.Type,
		Coordinates:           c.Coordinates,
		Address:               c.Address,
		IsActive:              c.IsActive,
		Notifications:         c.Notifications,
		Devices:               c.Devices,
		NotificationsByDevice: c.NotificationsByDevice,
		Schedule:              c.Schedule,
		Color:                 c.Color,
	}
}

// ToZone 用输入构建区域，id/时间戳/创建者由调用方提供
func (in ZoneInput) ToZone(id, createdBy string, now time.Time) Zone {
	z := Zone{
		ID:                    id,
		Name:                  in.Name,
		Icon:                  in.Icon,
		Description:           in.Description,
		Type:                  in.Type,
		Coordinates:           in.Coordinates,
		Address:               in.Address,
		IsActive:              in.IsActive,
		Notifications:         in.Notifications,
		Devices:               in.Devices,
		NotificationsByDevice: in.NotificationsByDevice,
		Schedule:              in.Schedule,
		CreatedAt:             now,
		UpdatedAt:             now,
		CreatedBy:             createdBy,
		Color:                 in.Color,
	}
	return z.Clone()
}
