package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"safezone/internal/domain"
	"safezone/internal/events"
	"safezone/internal/geocode"
	"safezone/internal/repository"
	"safezone/internal/service"
	"safezone/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

type envelope struct {
	Code    int             `json:"code"`
	Type    string          `json:"type"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

type testAPI struct {
	router *Router
	kv     *store.MemoryKV
}

func setupTestAPI(t *testing.T) *testAPI {
	t.Helper()
	logger := zap.NewNop()
	now := time.Now()
	kv := store.NewMemoryKV()

	zonesRepo := repository.NewMemoryZonesRepo(repository.SeedZones(now)...)
	devicesRepo := repository.NewMemoryDevicesRepo(repository.SeedDevices(now)...)
	usersRepo := repository.NewMemoryUsersRepo(repository.SeedUsers()...)
	stateRepo := repository.NewKVGeofenceStateRepo(kv, time.Hour)
	geocoder := geocode.New(nil)

	evaluator := service.NewGeofenceEvaluator(zonesRepo, stateRepo, events.NewLogPublisher(logger), time.UTC, logger)
	zoneSvc := service.NewZoneService(zonesRepo, stateRepo, kv, time.Minute, logger)
	deviceSvc := service.NewDeviceService(devicesRepo, evaluator, geocoder, logger)
	authSvc := service.NewAuthService(usersRepo, kv, 5*time.Minute, time.Hour, "user1", logger)

	r := NewRouter(logger)
	r.RegisterZoneRoutes(NewZoneHandler(zoneSvc, authSvc, logger))
	r.RegisterDeviceRoutes(NewDeviceHandler(deviceSvc, logger))
	r.RegisterAuthRoutes(NewAuthHandler(authSvc, logger))
	r.RegisterGeocodeRoutes(NewGeocodeHandler(geocoder, logger))
	return &testAPI{router: r, kv: kv}
}

func (a *testAPI) do(t *testing.T, method, path string, body any, token string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)

	var env envelope
	if rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func newZoneBody(name string) domain.ZoneInput {
	return domain.ZoneInput{
		Name:        name,
		Type:        domain.ZoneTypeOther,
		Address:     "Park Łazienki Królewskie, Warszawa",
		Coordinates: domain.Coordinates{Latitude: 52.2149, Longitude: 21.0362, Radius: 50},
		IsActive:    true,
		Notifications: domain.NotificationSettings{
			OnEntry: true, OnExit: true,
		},
		Devices: []string{"1"},
	}
}

func TestZoneRoutes_CRUD(t *testing.T) {
	api := setupTestAPI(t)

	rec, env := api.do(t, http.MethodGet, "/api/zones", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ResultSuccess, env.Code)
	var zones []domain.Zone
	require.NoError(t, json.Unmarshal(env.Result, &zones))
	assert.Len(t, zones, 2)

	rec, env = api.do(t, http.MethodPost, "/api/zones", newZoneBody("Park"), "")
	require.Equal(t, http.StatusCreated, rec.Code)
	var created domain.Zone
	require.NoError(t, json.Unmarshal(env.Result, &created))
	assert.Equal(t, "user1", created.CreatedBy)
	assert.Equal(t, 100.0, created.Coordinates.Radius)

	rec, env = api.do(t, http.MethodPost, "/api/zones/"+created.ID+"/toggle", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var toggled domain.Zone
	require.NoError(t, json.Unmarshal(env.Result, &toggled))
	assert.False(t, toggled.IsActive)

	upd := newZoneBody("Park Łazienki")
	rec, env = api.do(t, http.MethodPut, "/api/zones/"+created.ID, upd, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var updated domain.Zone
	require.NoError(t, json.Unmarshal(env.Result, &updated))
	assert.Equal(t, "Park Łazienki", updated.Name)
	assert.Equal(t, created.CreatedAt.Unix(), updated.CreatedAt.Unix())

	rec, _ = api.do(t, http.MethodGet, "/api/zones/"+created.ID, nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = api.do(t, http.MethodDelete, "/api/zones/"+created.ID, nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env = api.do(t, http.MethodGet, "/api/zones/"+created.ID, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, ResultError, env.Code)
	assert.Equal(t, "zone not found", env.Message)
}

func TestZoneRoutes_PartialUpdate(t *testing.T) {
	api := setupTestAPI(t)

	rec, env := api.do(t, http.MethodPut, "/api/zones/zone-dom", map[string]any{"name": "Dom babci"}, "")
	require.Equal(t, http.StatusOK, rec.Code, env.Message)
	var updated domain.Zone
	require.NoError(t, json.Unmarshal(env.Result, &updated))
	assert.Equal(t, "Dom babci", updated.Name)
	assert.Equal(t, "Dom rodzinny, Warszawa", updated.Address)
	assert.Equal(t, domain.Coordinates{Latitude: 52.2297, Longitude: 21.0122, Radius: 100}, updated.Coordinates)
	assert.Equal(t, []string{"1", "2", "3"}, updated.Devices)
	assert.True(t, updated.IsActive)
	assert.Equal(t, domain.ZoneTypeHome, updated.Type)

	// 嵌套对象按字段合并
	rec, env = api.do(t, http.MethodPut, "/api/zones/zone-dom", map[string]any{
		"coordinates":           map[string]any{"radius": 300},
		"notificationsByDevice": map[string]bool{"2": false},
	}, "")
	require.Equal(t, http.StatusOK, rec.Code, env.Message)
	require.NoError(t, json.Unmarshal(env.Result, &updated))
	assert.Equal(t, "Dom babci", updated.Name)
	assert.Equal(t, 52.2297, updated.Coordinates.Latitude)
	assert.Equal(t, 300.0, updated.Coordinates.Radius)
	assert.Equal(t, map[string]bool{"1": true, "2": false, "3": true}, updated.NotificationsByDevice)

	rec, env = api.do(t, http.MethodGet, "/api/zones/zone-dom", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var stored domain.Zone
	require.NoError(t, json.Unmarshal(env.Result, &stored))
	assert.Equal(t, updated.Name, stored.Name)
	assert.Equal(t, updated.Coordinates, stored.Coordinates)

	rec, env = api.do(t, http.MethodPut, "/api/zones/zone-dom", map[string]any{"address": ""}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, env.Message, "address")
}

func TestZoneRoutes_Errors(t *testing.T) {
	api := setupTestAPI(t)

	rec, env := api.do(t, http.MethodPost, "/api/zones", newZoneBody("X"), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, env.Message, "name")

	rec, _ = api.do(t, http.MethodPatch, "/api/zones", nil, "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec, _ = api.do(t, http.MethodGet, "/api/zones/zone-dom/toggle", nil, "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec, _ = api.do(t, http.MethodGet, "/api/zones/a/b", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = api.do(t, http.MethodPut, "/api/zones/zone-missing", newZoneBody("Dom"), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = api.do(t, http.MethodPost, "/api/zones", nil, "unknown-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestZoneRoutes_Export(t *testing.T) {
	api := setupTestAPI(t)

	rec, _ := api.do(t, http.MethodGet, "/api/zones/export", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(zoneSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, ZoneExportHeader, rows[0])
	assert.Equal(t, "Dom", rows[1][0])
	assert.Equal(t, "3 / 3", rows[1][8])
	assert.Equal(t, "1 / 1", rows[2][8])
}

func TestDeviceRoutes(t *testing.T) {
	api := setupTestAPI(t)

	rec, env := api.do(t, http.MethodGet, "/api/devices", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var devices []domain.Device
	require.NoError(t, json.Unmarshal(env.Result, &devices))
	assert.Len(t, devices, 3)

	rec, _ = api.do(t, http.MethodGet, "/api/devices/9", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// 首次上报只记录状态
	loc := domain.LocationUpdate{Latitude: 52.2297, Longitude: 21.0122}
	rec, env = api.do(t, http.MethodPost, "/api/devices/2/location", loc, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp service.UpdateLocationResponse
	require.NoError(t, json.Unmarshal(env.Result, &resp))
	assert.Empty(t, resp.Events)

	loc = domain.LocationUpdate{Latitude: 52.26, Longitude: 21.05}
	_, env = api.do(t, http.MethodPost, "/api/devices/2/location", loc, "")
	require.NoError(t, json.Unmarshal(env.Result, &resp))
	require.Len(t, resp.Events, 1)
	assert.Equal(t, domain.GeofenceExit, resp.Events[0].Type)
	assert.Equal(t, "zone-dom", resp.Events[0].ZoneID)

	rec, _ = api.do(t, http.MethodPost, "/api/devices/2/location", domain.LocationUpdate{Latitude: 100}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = api.do(t, http.MethodGet, "/api/devices/2/location", nil, "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec, env = api.do(t, http.MethodGet, "/api/geolocation/mock-locations", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var mocks []geocode.MockLocation
	require.NoError(t, json.Unmarshal(env.Result, &mocks))
	assert.Len(t, mocks, 3)
}

func TestAuthRoutes(t *testing.T) {
	api := setupTestAPI(t)

	rec, env := api.do(t, http.MethodGet, "/api/user/permissions", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var perms domain.Permissions
	require.NoError(t, json.Unmarshal(env.Result, &perms))
	assert.True(t, perms.Zones.Delete, "default session user is admin")

	rec, _ = api.do(t, http.MethodPost, "/api/auth/send-code", map[string]string{"phoneNumber": "+48 500 300 300"}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	code, err := api.kv.Get(context.Background(), "auth:code:+48500300300")
	require.NoError(t, err)

	rec, _ = api.do(t, http.MethodPost, "/api/auth/verify-code", map[string]string{"phoneNumber": "+48 500 300 300", "code": "00000"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env = api.do(t, http.MethodPost, "/api/auth/verify-code", map[string]string{"phoneNumber": "+48 500 300 300", "code": code}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var login service.VerifyCodeResponse
	require.NoError(t, json.Unmarshal(env.Result, &login))
	assert.Equal(t, "user3", login.User.ID)

	_, env = api.do(t, http.MethodGet, "/api/user/permissions", nil, login.Token)
	require.NoError(t, json.Unmarshal(env.Result, &perms))
	assert.True(t, perms.Zones.Read)
	assert.False(t, perms.Zones.Create)

	rec, env = api.do(t, http.MethodGet, "/api/user/me", nil, login.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	var me domain.User
	require.NoError(t, json.Unmarshal(env.Result, &me))
	assert.Equal(t, domain.RoleViewer, me.Role)

	rec, _ = api.do(t, http.MethodGet, "/api/auth/send-code", nil, "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestGeocodeRoutes(t *testing.T) {
	api := setupTestAPI(t)

	_, env := api.do(t, http.MethodGet, "/api/geocode/autocomplete?q=wars", nil, "")
	var list []geocode.Result
	require.NoError(t, json.Unmarshal(env.Result, &list))
	assert.Len(t, list, geocode.MaxAutocompletion)

	rec, env := api.do(t, http.MethodGet, "/api/geocode/search?address=stadion", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var res geocode.Result
	require.NoError(t, json.Unmarshal(env.Result, &res))
	assert.Equal(t, "Stadion, Warszawa", res.Address)

	rec, _ = api.do(t, http.MethodGet, "/api/geocode/search?address=nowhere", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, env = api.do(t, http.MethodGet, "/api/geocode/reverse?lat=52.2298&lng=21.0121", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(env.Result, &res))
	assert.Equal(t, "Dom rodzinny, Warszawa", res.Address)

	rec, _ = api.do(t, http.MethodGet, "/api/geocode/reverse?lat=abc", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
