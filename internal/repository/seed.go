package repository

import (
	"time"

	"safezone/internal/domain"
	"safezone/internal/rbac"
)

// 联调用的预置数据（华沙）

func intPtr(v int) *int { return &v }

// SeedDevices 预置设备
func SeedDevices(now time.Time) []domain.Device {
	return []domain.Device{
		{
			ID:           "1",
			Name:         "iPhone Mamy",
			Type:         domain.DeviceTypePhone,
			LastLocation: &domain.Location{Lat: 52.2297, Lon: 21.0122, At: now},
			Owner:        domain.DeviceOwner{ID: "user1", Name: "Mama", Avatar: "👩"},
			Status:       domain.DeviceStatusOnline,
			BatteryLevel: intPtr(85),
			IsActive:     true,
		},
		{
			ID:           "2",
			Name:         "Apple Watch Taty",
			Type:         domain.DeviceTypeWatch,
			LastLocation: &domain.Location{Lat: 52.2307, Lon: 21.0132, At: now},
			Owner:        domain.DeviceOwner{ID: "user2", Name: "Tata", Avatar: "👨"},
			Status:       domain.DeviceStatusOnline,
			BatteryLevel: intPtr(62),
			IsActive:     true,
		},
		{
			ID:           "3",
			Name:         "Tracker Dziecka",
			Type:         domain.DeviceTypeTracker,
			LastLocation: &domain.Location{Lat: 52.2287, Lon: 21.0112, At: now},
			Owner:        domain.DeviceOwner{ID: "user3", Name: "Ania", Avatar: "👧"},
			Status:       domain.DeviceStatusOnline,
			BatteryLevel: intPtr(95),
			IsActive:     true,
		},
	}
}

// SeedZones 预置区域
func SeedZones(now time.Time) []domain.Zone {
	return []domain.Zone{
		{
			ID:          "zone-dom",
			Name:        "Dom",
			Icon:        "🏠",
			Type:        domain.ZoneTypeHome,
			Coordinates: domain.Coordinates{Latitude: 52.2297, Longitude: 21.0122, Radius: 100},
			Address:     "Dom rodzinny, Warszawa",
			IsActive:    true,
			Notifications: domain.NotificationSettings{
				OnEntry: true, OnExit: true, Sound: true, Vibration: true,
			},
			Devices:               []string{"1", "2", "3"},
			NotificationsByDevice: map[string]bool{"1": true, "2": true, "3": true},
			Schedule:              domain.DefaultSchedule(),
			CreatedAt:             now,
			UpdatedAt:             now,
			CreatedBy:             "user1",
			Color:                 "#4CAF50",
		},
		{
			ID:          "zone-szkola",
			Name:        "Szkoła",
			Icon:        "🏫",
			Type:        domain.ZoneTypeSchool,
			Coordinates: domain.Coordinates{Latitude: 52.2317, Longitude: 21.0142, Radius: 150},
			Address:     "Szkoła Podstawowa nr 5, Warszawa",
			IsActive:    true,
			Notifications: domain.NotificationSettings{
				OnEntry: true, OnExit: true, Sound: true, Vibration: false,
			},
			Devices:               []string{"3"},
			NotificationsByDevice: map[string]bool{"3": true},
			Schedule: domain.Schedule{
				Enabled:     true,
				ActiveHours: domain.ActiveHours{Start: "07:30", End: "16:00"},
				ActiveDays:  []string{"mon", "tue", "wed", "thu", "fri"},
			},
			CreatedAt: now,
			UpdatedAt: now,
			CreatedBy: "user2",
			Color:     "#2196F3",
		},
	}
}

// SeedUsers 每个角色一个用户
func SeedUsers() []domain.User {
	users := []domain.User{
		{ID: "user1", Name: "Mama", Email: "mama@example.com", Phone: "+48 500 100 100", Role: domain.RoleAdmin, Avatar: "👩"},
		{ID: "user2", Name: "Tata", Email: "tata@example.com", Phone: "+48 500 200 200", Role: domain.RoleUser, Avatar: "👨"},
		{ID: "user3", Name: "Ania", Email: "ania@example.com", Phone: "+48 500 300 300", Role: domain.RoleViewer, Avatar: "👧"},
	}
	for i := range users {
		p := rbac.Permissions(users[i].Role)
		users[i].Permissions = &p
		users[i].Preferences = &domain.Preferences{
			Language:      "pl",
			Theme:         "default",
			Notifications: domain.NotificationPreferences{Push: true},
		}
	}
	return users
}
