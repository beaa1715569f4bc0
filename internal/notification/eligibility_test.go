package notification

import (
	"testing"
	"time"

	"safezone/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestEnabled_DefaultsToTrue(t *testing.T) {
	assert.True(t, Enabled(nil, "1"))
	assert.True(t, Enabled(map[string]bool{}, "1"))
	assert.True(t, Enabled(map[string]bool{"1": true}, "1"))
	assert.False(t, Enabled(map[string]bool{"1": false}, "1"))
	assert.True(t, Enabled(map[string]bool{"1": false}, "2"))
}

func TestSummarize(t *testing.T) {
	z := domain.Zone{
		Devices:               []string{"1", "2", "3"},
		NotificationsByDevice: map[string]bool{"1": true, "2": false},
	}
	assert.Equal(t, Summary{Notified: 2, Total: 3}, Summarize(z))
	assert.Equal(t, Summary{}, Summarize(domain.Zone{}))
}

func activeZone() domain.Zone {
	return domain.Zone{
		ID:                    "zone-1",
		IsActive:              true,
		Notifications:         domain.NotificationSettings{OnEntry: true, OnExit: true},
		Devices:               []string{"1"},
		NotificationsByDevice: map[string]bool{},
		Schedule:              domain.DefaultSchedule(),
	}
}

func TestShouldAlert(t *testing.T) {
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

	z := activeZone()
	assert.True(t, ShouldAlert(z, "1", domain.GeofenceEnter, now))
	assert.True(t, ShouldAlert(z, "1", domain.GeofenceExit, now))
	assert.False(t, ShouldAlert(z, "1", "teleport", now))

	z.NotificationsByDevice["1"] = false
	assert.False(t, ShouldAlert(z, "1", domain.GeofenceEnter, now))

	z = activeZone()
	z.IsActive = false
	assert.False(t, ShouldAlert(z, "1", domain.GeofenceEnter, now))

	z = activeZone()
	z.Notifications.OnExit = false
	assert.True(t, ShouldAlert(z, "1", domain.GeofenceEnter, now))
	assert.False(t, ShouldAlert(z, "1", domain.GeofenceExit, now))

	z = activeZone()
	z.Schedule = domain.Schedule{Enabled: true, ActiveHours: domain.ActiveHours{Start: "08:00", End: "10:00"}, ActiveDays: domain.AllDays}
	assert.False(t, ShouldAlert(z, "1", domain.GeofenceEnter, now))
}
