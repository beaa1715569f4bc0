package zonestore

import "safezone/internal/domain"

// State 区域列表状态，只通过下面的纯函数修改
type State struct {
	Zones     []domain.Zone
	IsLoading bool
	Error     string
}

// Clone 深拷贝
func (s State) Clone() State {
	out := s
	if s.Zones != nil {
		out.Zones = make([]domain.Zone, len(s.Zones))
		for i, z := range s.Zones {
			out.Zones[i] = z.Clone()
		}
	}
	return out
}

// Find 按 id 查找
func (s State) Find(id string) (domain.Zone, bool) {
	for _, z := range s.Zones {
		if z.ID == id {
			return z, true
		}
	}
	return domain.Zone{}, false
}

// SetZones 整体替换列表（fetch 结果）
func SetZones(s State, zones []domain.Zone) State {
	out := s.Clone()
	out.Zones = make([]domain.Zone, 0, len(zones))
	seen := make(map[string]bool, len(zones))
	for _, z := range zones {
		if seen[z.ID] {
			continue
		}
		seen[z.ID] = true
		out.Zones = append(out.Zones, z.Clone())
	}
	return out
}

// AddZone 追加区域；id 已存在时不做任何修改
func AddZone(s State, z domain.Zone) State {
	if _, ok := s.Find(z.ID); ok {
		return s
	}
	out := s.Clone()
	out.Zones = append(out.Zones, z.Clone())
	return out
}

// ReplaceZone 按 id 替换；不存在时不做任何修改
func ReplaceZone(s State, z domain.Zone) State {
	out := s.Clone()
	for i := range out.Zones {
		if out.Zones[i].ID == z.ID {
			out.Zones[i] = z.Clone()
			return out
		}
	}
	return s
}

// RemoveZone 按 id 删除
func RemoveZone(s State, id string) State {
	out := s.Clone()
	zones := out.Zones[:0]
	for _, z := range out.Zones {
		if z.ID != id {
			zones = append(zones, z)
		}
	}
	out.Zones = zones
	return out
}

// SetZoneActive 设置 isActive
func SetZoneActive(s State, id string, active bool) State {
	out := s.Clone()
	for i := range out.Zones {
		if out.Zones[i].ID == id {
			out.Zones[i].IsActive = active
		}
	}
	return out
}

// ToggleZoneActive 翻转 isActive
func ToggleZoneActive(s State, id string) State {
	z, ok := s.Find(id)
	if !ok {
		return s
	}
	return SetZoneActive(s, id, !z.IsActive)
}
