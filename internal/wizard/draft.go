// Package wizard 多步骤创建区域的草稿状态。
//
// 步骤：1 名称+图标，2 地址+中心点，3 半径，4 设备通知开关。
// Draft 只在内存中累积，成功提交或取消后丢弃。
package wizard

import (
	"strings"

	"safezone/internal/domain"
	"safezone/internal/geo"
)

// Step 向导步骤
type Step int

const (
	StepNameIcon Step = iota + 1
	StepLocation
	StepRadius
	StepNotifications
)

// Icons 可选图标（第一步）
var Icons = []string{"🏠", "🏫", "🏢", "🏬", "🏥", "🏛", "⛪", "🕌", "🏟", "🏞", "🎡", "⚽", "🏀", "🎾"}

var iconTypes = map[string]domain.ZoneType{
	"🏠": domain.ZoneTypeHome,
	"🏫": domain.ZoneTypeSchool,
	"🏢": domain.ZoneTypeWork,
	"🏬": domain.ZoneTypeWork,
}

// Draft 向导草稿
type Draft struct {
	Name                  string
	Icon                  string
	Address               string
	Center                *geo.Point
	Radius                float64
	NotificationsByDevice map[string]bool
}

// New 空草稿，半径默认 250 米
func New() *Draft {
	d := &Draft{}
	d.Reset()
	return d
}

// Reset 丢弃已填写的内容
func (d *Draft) Reset() {
	*d = Draft{
		Radius:                geo.DefaultRadius,
		NotificationsByDevice: map[string]bool{},
	}
}

// SetNameIcon 第一步：名称去除首尾空白后 2..40 字符，图标为空时使用默认图标
func (d *Draft) SetNameIcon(name, icon string) error {
	if err := domain.ValidateZoneName(name); err != nil {
		return err
	}
	d.Name = strings.TrimSpace(name)
	d.Icon = icon
	if d.Icon == "" {
		d.Icon = domain.DefaultZoneIcon
	}
	return nil
}

// SetLocation 第二步：地址必填
func (d *Draft) SetLocation(address string, center geo.Point) error {
	if err := domain.ValidateAddress(address); err != nil {
		return err
	}
	d.Address = strings.TrimSpace(address)
	c := center
	d.Center = &c
	return nil
}

// SetRadius 第三步：超出范围时取最近边界
func (d *Draft) SetRadius(r float64) {
	d.Radius = geo.ClampRadius(r)
}

// AdjustRadius 按 +/- 50 米步进
func (d *Draft) AdjustRadius(steps int) {
	d.Radius = geo.AdjustRadius(d.Radius, float64(steps)*geo.RadiusStep)
}

// SetNotification 第四步：单个设备的通知开关
func (d *Draft) SetNotification(deviceID string, enabled bool) {
	if d.NotificationsByDevice == nil {
		d.NotificationsByDevice = map[string]bool{}
	}
	d.NotificationsByDevice[deviceID] = enabled
}

// Completed 当前已完成到哪一步（0 表示尚未开始）
func (d *Draft) Completed() Step {
	switch {
	case d.Name == "":
		return 0
	case d.Center == nil:
		return StepNameIcon
	default:
		return StepRadius
	}
}

// Build 校验全部步骤并生成创建请求
// deviceIDs 为区域覆盖的设备，未在第四步设置的设备默认接收通知
func (d *Draft) Build(deviceIDs []string) (domain.ZoneInput, error) {
	if err := domain.ValidateZoneName(d.Name); err != nil {
		return domain.ZoneInput{}, err
	}
	if d.Center == nil {
		return domain.ZoneInput{}, domain.NewValidationError("center", "location is required")
	}
	if err := domain.ValidateAddress(d.Address); err != nil {
		return domain.ZoneInput{}, err
	}

	byDevice := make(map[string]bool, len(d.NotificationsByDevice))
	for k, v := range d.NotificationsByDevice {
		byDevice[k] = v
	}
	devices := append([]string{}, deviceIDs...)

	icon := d.Icon
	if icon == "" {
		icon = domain.DefaultZoneIcon
	}

	in := domain.ZoneInput{
		Name:    d.Name,
		Icon:    icon,
		Type:    zoneTypeFor(icon, d.Name),
		Address: d.Address,
		Coordinates: domain.Coordinates{
			Latitude:  d.Center.Lat,
			Longitude: d.Center.Lon,
			Radius:    d.Radius,
		},
		IsActive: true,
		Notifications: domain.NotificationSettings{
			OnEntry:   true,
			OnExit:    true,
			Sound:     true,
			Vibration: true,
		},
		Devices:               devices,
		NotificationsByDevice: byDevice,
		Schedule:              domain.DefaultSchedule(),
		Color:                 domain.DefaultZoneColor,
	}
	in = domain.NormalizeZoneInput(in)
	if err := domain.ValidateZoneInput(in); err != nil {
		return domain.ZoneInput{}, err
	}
	return in, nil
}

func zoneTypeFor(icon, name string) domain.ZoneType {
	if t, ok := iconTypes[icon]; ok {
		return t
	}
	n := strings.ToLower(name)
	switch {
	case strings.Contains(n, "dom"), strings.Contains(n, "home"):
		return domain.ZoneTypeHome
	case strings.Contains(n, "szko"), strings.Contains(n, "school"):
		return domain.ZoneTypeSchool
	case strings.Contains(n, "prac"), strings.Contains(n, "work"), strings.Contains(n, "biuro"):
		return domain.ZoneTypeWork
	}
	return domain.ZoneTypeOther
}
