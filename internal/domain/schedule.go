package domain

import (
	"fmt"
	"strings"
	"time"
)

// ActiveHours 每日生效时间段，格式 "HH:MM"
type ActiveHours struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Schedule 区域生效计划
type Schedule struct {
	Enabled     bool        `json:"enabled"`
	ActiveHours ActiveHours `json:"activeHours"`
	ActiveDays  []string    `json:"activeDays"`
}

// AllDays 计划中使用的星期缩写
var AllDays = []string{"mon", "tue", "wed", "thu", "fri", "sat", "sun"}

// DefaultSchedule 默认计划：未启用，全天、每天
func DefaultSchedule() Schedule {
	return Schedule{
		Enabled:     false,
		ActiveHours: ActiveHours{Start: "00:00", End: "23:59"},
		ActiveDays:  append([]string(nil), AllDays...),
	}
}

var weekdayKeys = map[time.Weekday]string{
	time.Monday:    "mon",
	time.Tuesday:   "tue",
	time.Wednesday: "wed",
	time.Thursday:  "thu",
	time.Friday:    "fri",
	time.Saturday:  "sat",
	time.Sunday:    "sun",
}

// IsActiveAt 判断 t 时刻计划是否生效
// 未启用的计划始终生效；start > end 表示跨越午夜的时间段（如 22:00-06:00），
// 此时午夜之后的部分按前一天的星期判断。
func (s Schedule) IsActiveAt(t time.Time) bool {
	if !s.Enabled {
		return true
	}
	start, err := parseClock(s.ActiveHours.Start)
	if err != nil {
		return false
	}
	end, err := parseClock(s.ActiveHours.End)
	if err != nil {
		return false
	}
	minute := t.Hour()*60 + t.Minute()

	if start <= end {
		return minute >= start && minute <= end && s.hasDay(t.Weekday())
	}
	if minute >= start {
		return s.hasDay(t.Weekday())
	}
	if minute <= end {
		return s.hasDay((t.Weekday() + 6) % 7)
	}
	return false
}

func (s Schedule) hasDay(d time.Weekday) bool {
	key := weekdayKeys[d]
	for _, day := range s.ActiveDays {
		if strings.EqualFold(day, key) {
			return true
		}
	}
	return false
}

func parseClock(v string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(v, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", v, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid time %q", v)
	}
	return h*60 + m, nil
}
