package zonestore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"safezone/internal/domain"
	"safezone/internal/rbac"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeAPI struct {
	mu         sync.Mutex
	zones      []domain.Zone
	nextID     int
	failNext   error
	calls      []string
	createGate chan struct{}
}

func (f *fakeAPI) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	err := f.failNext
	f.failNext = nil
	return err
}

func (f *fakeAPI) ListZones(ctx context.Context) ([]domain.Zone, error) {
	if err := f.record("list"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Zone(nil), f.zones...), nil
}

func (f *fakeAPI) CreateZone(ctx context.Context, in domain.ZoneInput) (domain.Zone, error) {
	if f.createGate != nil {
		<-f.createGate
	}
	if err := f.record("create"); err != nil {
		return domain.Zone{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	z := in.ToZone(domain.ServerIDPrefix+string(rune('0'+f.nextID)), "u1", time.Now())
	f.zones = append(f.zones, z)
	return z, nil
}

func (f *fakeAPI) UpdateZone(ctx context.Context, id string, in domain.ZoneInput) (domain.Zone, error) {
	if err := f.record("update " + id); err != nil {
		return domain.Zone{}, err
	}
	return in.ToZone(id, "u1", time.Now()), nil
}

func (f *fakeAPI) DeleteZone(ctx context.Context, id string) error {
	return f.record("delete " + id)
}

func (f *fakeAPI) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type recordingNotifier struct {
	mu     sync.Mutex
	errors []string
}

func (n *recordingNotifier) Success(title, message string) {}

func (n *recordingNotifier) Error(title, message string) {
	n.mu.Lock()
	n.errors = append(n.errors, message)
	n.mu.Unlock()
}

func user(role domain.Role) *domain.User {
	return &domain.User{ID: "u1", Name: "Anna", Role: role}
}

func domInput() domain.ZoneInput {
	return domain.ZoneInput{
		Name:     "Dom",
		Address:  "Dom rodzinny, Warszawa",
		Type:     domain.ZoneTypeHome,
		IsActive: true,
		Coordinates: domain.Coordinates{
			Latitude: 52.2297, Longitude: 21.0122, Radius: 250,
		},
	}
}

func seeded(api *fakeAPI, notifier Notifier, u *domain.User) *Store {
	api.zones = []domain.Zone{
		domInput().ToZone("zone-a", "u1", time.Now()),
		domInput().ToZone("zone-b", "u2", time.Now()),
	}
	s := NewStore(api, notifier, u, zap.NewNop())
	_ = s.Fetch(context.Background())
	return s
}

func TestStore_Fetch(t *testing.T) {
	api := &fakeAPI{}
	s := seeded(api, &recordingNotifier{}, user(domain.RoleAdmin))
	st := s.Snapshot()
	assert.Len(t, st.Zones, 2)
	assert.False(t, st.IsLoading)

	api.failNext = errors.New("network down")
	require.Error(t, s.Fetch(context.Background()))
	st = s.Snapshot()
	assert.Len(t, st.Zones, 2)
	assert.Equal(t, "network down", st.Error)
}

func TestStore_CreateSuccessReplacesPendingEntry(t *testing.T) {
	api := &fakeAPI{}
	s := NewStore(api, &recordingNotifier{}, user(domain.RoleUser), zap.NewNop())

	z, err := s.Create(context.Background(), domInput())
	require.NoError(t, err)
	assert.Equal(t, "zone-1", z.ID)

	st := s.Snapshot()
	require.Len(t, st.Zones, 1)
	assert.Equal(t, "zone-1", st.Zones[0].ID)
	for _, z := range st.Zones {
		assert.False(t, domain.IsPendingID(z.ID))
	}
}

func TestStore_FailedCreateLeavesNoPendingEntry(t *testing.T) {
	api := &fakeAPI{failNext: errors.New("boom")}
	n := &recordingNotifier{}
	s := NewStore(api, n, user(domain.RoleAdmin), zap.NewNop())

	_, err := s.Create(context.Background(), domInput())
	require.Error(t, err)
	assert.Empty(t, s.Snapshot().Zones)
	assert.Len(t, n.errors, 1)
}

func TestStore_CreateIsOptimistic(t *testing.T) {
	api := &fakeAPI{createGate: make(chan struct{})}
	s := NewStore(api, &recordingNotifier{}, user(domain.RoleAdmin), zap.NewNop())

	done := make(chan error, 1)
	go func() {
		_, err := s.Create(context.Background(), domInput())
		done <- err
	}()

	require.Eventually(t, func() bool { return len(s.Snapshot().Zones) == 1 }, time.Second, time.Millisecond)
	pendingID := s.Snapshot().Zones[0].ID
	assert.True(t, domain.IsPendingID(pendingID))

	// 取消尚未确认的创建：不发请求
	require.NoError(t, s.Delete(context.Background(), pendingID))
	assert.Empty(t, s.Snapshot().Zones)

	close(api.createGate)
	require.NoError(t, <-done)
	// 已取消的创建不会被重新加入
	assert.Empty(t, s.Snapshot().Zones)
	assert.Equal(t, 1, api.callCount())
}

func TestStore_TogglePendingZoneIsRejected(t *testing.T) {
	api := &fakeAPI{createGate: make(chan struct{})}
	n := &recordingNotifier{}
	s := NewStore(api, n, user(domain.RoleAdmin), zap.NewNop())

	done := make(chan error, 1)
	go func() {
		_, err := s.Create(context.Background(), domInput())
		done <- err
	}()

	require.Eventually(t, func() bool { return len(s.Snapshot().Zones) == 1 }, time.Second, time.Millisecond)
	pendingID := s.Snapshot().Zones[0].ID

	err := s.ToggleActive(context.Background(), pendingID)
	require.Error(t, err)
	assert.True(t, domain.IsValidationError(err))
	z, _ := s.Snapshot().Find(pendingID)
	assert.True(t, z.IsActive)
	assert.Empty(t, n.errors)

	close(api.createGate)
	require.NoError(t, <-done)
	zones := s.Snapshot().Zones
	require.Len(t, zones, 1)
	assert.False(t, domain.IsPendingID(zones[0].ID))
	assert.True(t, zones[0].IsActive)

	// 确认后可以正常切换
	require.NoError(t, s.ToggleActive(context.Background(), zones[0].ID))
	z, _ = s.Snapshot().Find(zones[0].ID)
	assert.False(t, z.IsActive)
}

func TestStore_FetchDuringCreateDefersConfirmedZone(t *testing.T) {
	api := &fakeAPI{createGate: make(chan struct{})}
	s := NewStore(api, &recordingNotifier{}, user(domain.RoleAdmin), zap.NewNop())

	done := make(chan error, 1)
	go func() {
		_, err := s.Create(context.Background(), domInput())
		done <- err
	}()
	require.Eventually(t, func() bool { return len(s.Snapshot().Zones) == 1 }, time.Second, time.Millisecond)

	require.NoError(t, s.Fetch(context.Background()))
	assert.Empty(t, s.Snapshot().Zones)

	close(api.createGate)
	require.NoError(t, <-done)
	assert.Empty(t, s.Snapshot().Zones)

	require.NoError(t, s.Fetch(context.Background()))
	assert.Len(t, s.Snapshot().Zones, 1)
}

func TestStore_ToggleRoundTrip(t *testing.T) {
	api := &fakeAPI{}
	s := seeded(api, &recordingNotifier{}, user(domain.RoleAdmin))

	require.NoError(t, s.ToggleActive(context.Background(), "zone-a"))
	z, _ := s.Snapshot().Find("zone-a")
	assert.False(t, z.IsActive)

	require.NoError(t, s.ToggleActive(context.Background(), "zone-a"))
	z, _ = s.Snapshot().Find("zone-a")
	assert.True(t, z.IsActive)
}

func TestStore_FailedToggleRestoresFlag(t *testing.T) {
	api := &fakeAPI{}
	n := &recordingNotifier{}
	s := seeded(api, n, user(domain.RoleAdmin))

	api.failNext = errors.New("timeout")
	require.Error(t, s.ToggleActive(context.Background(), "zone-a"))
	z, _ := s.Snapshot().Find("zone-a")
	assert.True(t, z.IsActive)
	assert.Len(t, n.errors, 1)
}

func TestStore_UpdateFailureLeavesStateUnchanged(t *testing.T) {
	api := &fakeAPI{}
	s := seeded(api, &recordingNotifier{}, user(domain.RoleAdmin))
	before := s.Snapshot()

	in := domInput()
	in.Name = "Dom babci"
	api.failNext = errors.New("500")
	_, err := s.Update(context.Background(), "zone-a", in)
	require.Error(t, err)
	assert.Equal(t, before.Zones, s.Snapshot().Zones)

	updated, err := s.Update(context.Background(), "zone-a", in)
	require.NoError(t, err)
	assert.Equal(t, "Dom babci", updated.Name)
	z, _ := s.Snapshot().Find("zone-a")
	assert.Equal(t, "Dom babci", z.Name)
}

func TestStore_Delete(t *testing.T) {
	api := &fakeAPI{}
	s := seeded(api, &recordingNotifier{}, user(domain.RoleAdmin))

	api.failNext = errors.New("503")
	require.Error(t, s.Delete(context.Background(), "zone-a"))
	assert.Len(t, s.Snapshot().Zones, 2)

	require.NoError(t, s.Delete(context.Background(), "zone-a"))
	_, ok := s.Snapshot().Find("zone-a")
	assert.False(t, ok)

	assert.ErrorIs(t, s.Delete(context.Background(), "zone-missing"), domain.ErrZoneNotFound)
}

func TestStore_RBACDenialIsSilent(t *testing.T) {
	api := &fakeAPI{}
	n := &recordingNotifier{}
	viewer := seeded(api, n, user(domain.RoleViewer))
	calls := api.callCount()

	_, err := viewer.Create(context.Background(), domInput())
	assert.ErrorIs(t, err, rbac.ErrDenied)
	assert.ErrorIs(t, viewer.ToggleActive(context.Background(), "zone-a"), rbac.ErrDenied)
	assert.ErrorIs(t, viewer.Delete(context.Background(), "zone-a"), rbac.ErrDenied)

	assert.Equal(t, calls, api.callCount())
	assert.Empty(t, n.errors)
	assert.Len(t, viewer.Snapshot().Zones, 2)
}

func TestStore_UserDeletesOnlyOwnZones(t *testing.T) {
	api := &fakeAPI{}
	s := seeded(api, &recordingNotifier{}, user(domain.RoleUser))

	assert.ErrorIs(t, s.Delete(context.Background(), "zone-b"), rbac.ErrDenied)
	require.NoError(t, s.Delete(context.Background(), "zone-a"))
}

func TestStore_CreateValidation(t *testing.T) {
	api := &fakeAPI{}
	s := NewStore(api, &recordingNotifier{}, user(domain.RoleAdmin), zap.NewNop())

	in := domInput()
	in.Address = ""
	_, err := s.Create(context.Background(), in)
	assert.True(t, domain.IsValidationError(err))
	assert.Zero(t, api.callCount())
}

func TestReducers_AtMostOneEntryPerID(t *testing.T) {
	z := domInput().ToZone("zone-a", "u1", time.Now())
	st := AddZone(State{}, z)
	st = AddZone(st, z)
	assert.Len(t, st.Zones, 1)

	st = SetZones(st, []domain.Zone{z, z})
	assert.Len(t, st.Zones, 1)

	st = ToggleZoneActive(st, "zone-a")
	assert.False(t, st.Zones[0].IsActive)
	st = RemoveZone(st, "zone-a")
	assert.Empty(t, st.Zones)
}
