package wizard

import (
	"testing"

	"safezone/internal/domain"
	"safezone/internal/geo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDraft_DomScenario(t *testing.T) {
	d := New()
	require.NoError(t, d.SetNameIcon("Dom", ""))
	center := geo.Point{Lat: 52.2297, Lon: 21.0122}
	require.NoError(t, d.SetLocation("ul. Marszałkowska 1, Warszawa", center))
	d.SetRadius(250)

	in, err := d.Build(nil)
	require.NoError(t, err)

	assert.Equal(t, "Dom", in.Name)
	assert.Equal(t, domain.DefaultZoneIcon, in.Icon)
	assert.Equal(t, domain.ZoneTypeHome, in.Type)
	assert.Equal(t, 250.0, in.Coordinates.Radius)
	assert.Empty(t, in.NotificationsByDevice)
	assert.Empty(t, in.Devices)

	zoneCenter := geo.Point{Lat: in.Coordinates.Latitude, Lon: in.Coordinates.Longitude}
	assert.True(t, geo.Contains(zoneCenter, in.Coordinates.Radius, center))
}

func TestDraft_ValidationBlocksProgression(t *testing.T) {
	d := New()
	err := d.SetNameIcon(" x ", "🏫")
	require.Error(t, err)
	assert.True(t, domain.IsValidationError(err))
	assert.Equal(t, Step(0), d.Completed())

	require.NoError(t, d.SetNameIcon("  Szkoła  ", "🏫"))
	assert.Equal(t, "Szkoła", d.Name)
	assert.Equal(t, StepNameIcon, d.Completed())

	var ve *domain.ValidationError
	require.ErrorAs(t, d.SetLocation("   ", geo.Point{}), &ve)
	assert.Equal(t, "address", ve.Field)
	assert.Nil(t, d.Center)

	_, err = d.Build(nil)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "center", ve.Field)
}

func TestDraft_RadiusBounds(t *testing.T) {
	d := New()
	assert.Equal(t, geo.DefaultRadius, d.Radius)

	d.AdjustRadius(1)
	assert.Equal(t, 300.0, d.Radius)

	d.SetRadius(120)
	d.AdjustRadius(-1)
	assert.Equal(t, geo.MinRadius, d.Radius)

	d.SetRadius(10000)
	assert.Equal(t, geo.MaxRadius, d.Radius)
	d.AdjustRadius(3)
	assert.Equal(t, geo.MaxRadius, d.Radius)
}

func TestDraft_NotificationsAndReset(t *testing.T) {
	d := New()
	require.NoError(t, d.SetNameIcon("Szkoła", "🏫"))
	require.NoError(t, d.SetLocation("Szkoła Podstawowa nr 1", geo.Point{Lat: 52.2317, Lon: 21.0142}))
	d.SetNotification("3", true)
	d.SetNotification("2", false)

	in, err := d.Build([]string{"2", "3"})
	require.NoError(t, err)
	assert.Equal(t, domain.ZoneTypeSchool, in.Type)
	assert.Equal(t, map[string]bool{"3": true, "2": false}, in.NotificationsByDevice)

	// Build 返回的是副本
	in.NotificationsByDevice["3"] = false
	assert.True(t, d.NotificationsByDevice["3"])

	d.Reset()
	assert.Empty(t, d.Name)
	assert.Nil(t, d.Center)
	assert.Empty(t, d.NotificationsByDevice)
	assert.Equal(t, geo.DefaultRadius, d.Radius)
}
