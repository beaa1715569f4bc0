package domain

import (
	"strings"
	"unicode/utf8"

	"safezone/internal/geo"
)

const (
	ZoneNameMinLen = 2
	ZoneNameMaxLen = 40
)

// ValidateZoneName 名称去除首尾空白后长度需在 [2, 40]
func ValidateZoneName(name string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(name))
	if n < ZoneNameMinLen {
		return NewValidationError("name", "name must be at least 2 characters")
	}
	if n > ZoneNameMaxLen {
		return NewValidationError("name", "name must be at most 40 characters")
	}
	return nil
}

// ValidateAddress 地址必填
func ValidateAddress(address string) error {
	if strings.TrimSpace(address) == "" {
		return NewValidationError("address", "address is required")
	}
	return nil
}

// NormalizeZoneInput 去除空白、补默认值、将半径限制到 [100, 5000]
func NormalizeZoneInput(in ZoneInput) ZoneInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Address = strings.TrimSpace(in.Address)
	in.Coordinates.Radius = geo.ClampRadius(in.Coordinates.Radius)
	if in.Type == "" {
		in.Type = ZoneTypeOther
	}
	if in.Color == "" {
		in.Color = DefaultZoneColor
	}
	if in.Devices == nil {
		in.Devices = []string{}
	}
	if in.NotificationsByDevice == nil {
		in.NotificationsByDevice = map[string]bool{}
	}
	if in.Schedule.ActiveDays == nil {
		in.Schedule.ActiveDays = []string{}
	}
	return in
}

// ValidateZoneInput 校验创建/更新区域的输入（应在 NormalizeZoneInput 之后调用）
func ValidateZoneInput(in ZoneInput) error {
	if err := ValidateZoneName(in.Name); err != nil {
		return err
	}
	if err := ValidateAddress(in.Address); err != nil {
		return err
	}
	if !in.Type.Valid() {
		return NewValidationError("type", "type must be one of home, school, work, other")
	}
	if in.Schedule.Enabled {
		if _, err := parseClock(in.Schedule.ActiveHours.Start); err != nil {
			return NewValidationError("schedule.activeHours.start", err.Error())
		}
		if _, err := parseClock(in.Schedule.ActiveHours.End); err != nil {
			return NewValidationError("schedule.activeHours.end", err.Error())
		}
	}
	return nil
}
