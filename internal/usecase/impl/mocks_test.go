package impl

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"geofence/config"
	"geofence/internal/domain/entity"
	"geofence/internal/domain/repository"
	"geofence/internal/domain/service"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
)

// mockAreaRepo is an in-memory AreaRepository for tests.
type mockAreaRepo struct {
	mu      sync.Mutex
	areas   []*entity.Area
	findErr error
}

func (m *mockAreaRepo) CreateArea(_ context.Context, area *entity.Area) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.areas = append(m.areas, area)

	return nil
}

func (m *mockAreaRepo) FindAreaByID(_ context.Context, id uuid.UUID) (*entity.Area, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, area := range m.areas {
		if area.ID == id {
			return area, nil
		}
	}

	return nil, repository.ErrAreaNotFound
}

func (m *mockAreaRepo) FindAllAreas(_ context.Context) ([]*entity.Area, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]*entity.Area(nil), m.areas...), nil
}

func (m *mockAreaRepo) FindActiveAreas(_ context.Context) ([]*entity.Area, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}

	active := make([]*entity.Area, 0, len(m.areas))
	for _, area := range m.areas {
		if area.IsActive() {
			active = append(active, area)
		}
	}

	return active, nil
}

func (m *mockAreaRepo) UpdateArea(_ context.Context, area *entity.Area) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for idx, existing := range m.areas {
		if existing.ID == area.ID {
			m.areas[idx] = area

			return nil
		}
	}

	return repository.ErrAreaNotFound
}

func (m *mockAreaRepo) DeleteArea(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for idx, existing := range m.areas {
		if existing.ID == id {
			m.areas = append(m.areas[:idx], m.areas[idx+1:]...)

			return nil
		}
	}

	return repository.ErrAreaNotFound
}

// mockLocationRepo is an in-memory append-only LocationRepository for tests.
type mockLocationRepo struct {
	mu        sync.Mutex
	samples   []*entity.LocationSample
	createErr error
}

func (m *mockLocationRepo) CreateSample(_ context.Context, sample *entity.LocationSample) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.samples = append(m.samples, sample)

	return nil
}

func (m *mockLocationRepo) FindLatestByUser(_ context.Context, userID uuid.UUID) (*entity.LocationSample, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var latest *entity.LocationSample
	for _, sample := range m.samples {
		if sample.UserID != userID {
			continue
		}
		if latest == nil || sample.Timestamp.After(latest.Timestamp) {
			latest = sample
		}
	}
	if latest == nil {
		return nil, repository.ErrSampleNotFound
	}

	return latest, nil
}

func (m *mockLocationRepo) FindLatestBefore(_ context.Context, userID uuid.UUID, ts time.Time) (*entity.LocationSample, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var latest *entity.LocationSample
	for _, sample := range m.samples {
		if sample.UserID != userID || !sample.Timestamp.Before(ts) {
			continue
		}
		if latest == nil || sample.Timestamp.After(latest.Timestamp) {
			latest = sample
		}
	}
	if latest == nil {
		return nil, repository.ErrSampleNotFound
	}

	return latest, nil
}

func (m *mockLocationRepo) FindRecentByUser(_ context.Context, userID uuid.UUID, limit int) ([]*entity.LocationSample, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	recent := make([]*entity.LocationSample, 0)
	for _, sample := range m.samples {
		if sample.UserID == userID {
			recent = append(recent, sample)
		}
	}
	sort.Slice(recent, func(i, j int) bool {
		return recent[i].Timestamp.After(recent[j].Timestamp)
	})
	if limit > 0 && len(recent) > limit {
		recent = recent[:limit]
	}

	return recent, nil
}

func (m *mockLocationRepo) FindLatestPerUser(_ context.Context) ([]*entity.LocationSample, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	latestByUser := make(map[uuid.UUID]*entity.LocationSample)
	for _, sample := range m.samples {
		latest, ok := latestByUser[sample.UserID]
		if !ok || sample.Timestamp.After(latest.Timestamp) {
			latestByUser[sample.UserID] = sample
		}
	}

	latest := make([]*entity.LocationSample, 0, len(latestByUser))
	for _, sample := range latestByUser {
		latest = append(latest, sample)
	}

	return latest, nil
}

// mockPublisher records published alert events for tests.
type mockPublisher struct {
	mu         sync.Mutex
	events     []*service.AlertEvent
	publishErr error
}

func (m *mockPublisher) PublishAlertEvent(_ context.Context, event *service.AlertEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.publishErr != nil {
		return m.publishErr
	}
	m.events = append(m.events, event)

	return nil
}

func (m *mockPublisher) Close() error {
	return nil
}

func (m *mockPublisher) published() []*service.AlertEvent {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]*service.AlertEvent(nil), m.events...)
}

// mockDeviceRepo is an in-memory DeviceRepository for tests.
type mockDeviceRepo struct {
	mu      sync.Mutex
	devices []*entity.UserDevice
}

func (m *mockDeviceRepo) UpsertDevice(_ context.Context, device *entity.UserDevice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for idx, existing := range m.devices {
		if existing.UserID == device.UserID && existing.DeviceID == device.DeviceID {
			device.ID = existing.ID
			m.devices[idx] = device

			return nil
		}
	}
	m.devices = append(m.devices, device)

	return nil
}

func (m *mockDeviceRepo) FindDeviceByID(_ context.Context, id uuid.UUID) (*entity.UserDevice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, device := range m.devices {
		if device.ID == id {
			return device, nil
		}
	}

	return nil, repository.ErrDeviceNotFound
}

func (m *mockDeviceRepo) FindActiveDevicesByUser(_ context.Context, userID uuid.UUID) ([]*entity.UserDevice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	active := make([]*entity.UserDevice, 0)
	for _, device := range m.devices {
		if device.UserID == userID && device.IsActive {
			active = append(active, device)
		}
	}

	return active, nil
}

func (m *mockDeviceRepo) DeactivateDevice(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, device := range m.devices {
		if device.ID == id {
			device.IsActive = false

			return nil
		}
	}

	return repository.ErrDeviceNotFound
}

func (m *mockDeviceRepo) DeactivateTokens(_ context.Context, tokens []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, device := range m.devices {
		for _, token := range tokens {
			if device.FCMToken == token {
				device.IsActive = false
			}
		}
	}

	return nil
}

// --- Test fixtures ---

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() *config.Config {
	return &config.Config{
		Geofence: &config.GeofenceConfig{
			HistoryDefaultLimit: 50,
			HistoryMaxLimit:     500,
		},
	}
}

// squareArea builds an active area covering the axis-aligned square
// [minLon,maxLon] x [minLat,maxLat].
func squareArea(name string, minLon, minLat, maxLon, maxLat float64) *entity.Area {
	now := time.Now().UTC()

	return &entity.Area{
		ID:   uuid.New(),
		Name: name,
		Geometry: orb.MultiPolygon{
			{
				{
					{minLon, minLat},
					{maxLon, minLat},
					{maxLon, maxLat},
					{minLon, maxLat},
					{minLon, minLat},
				},
			},
		},
		Status:    entity.AreaStatusActive,
		AlertType: entity.AlertTypeStandard,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
