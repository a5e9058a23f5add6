package usecase

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"service-marketplace/internal/data/entity"
	"service-marketplace/internal/dto/response"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

// mockStore records cache traffic.
type mockStore struct {
	mock.Mock
}

func (m *mockStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	args := m.Called(ctx, key)
	val, _ := args.Get(0).([]byte)
	return val, args.Bool(1), args.Error(2)
}

func (m *mockStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return m.Called(ctx, key, value, ttl).Error(0)
}

func (m *mockStore) SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, value, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *mockStore) Delete(ctx context.Context, keys ...string) error {
	return m.Called(ctx, keys).Error(0)
}

// memCache is an in-process Store with real SetNX semantics. Entries never
// expire.
type memCache struct {
	mu      sync.Mutex
	entries map[string][]byte

	// beforeFill, when set, runs at the start of SetNX.
	beforeFill func()
}

func newMemCache() *memCache {
	return &memCache{entries: map[string][]byte{}}
}

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	val, ok := c.entries[key]
	return val, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

func (c *memCache) SetNX(_ context.Context, key string, value []byte, _ time.Duration) (bool, error) {
	if c.beforeFill != nil {
		c.beforeFill()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; ok {
		return false, nil
	}
	c.entries[key] = value
	return true, nil
}

func (c *memCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.entries, key)
	}
	return nil
}

func (c *memCache) has(key string) bool {
	_, ok, _ := c.Get(context.Background(), key)
	return ok
}

func (c *memCache) decode(t *testing.T, key string) response.ProviderResponse {
	t.Helper()
	payload, ok, _ := c.Get(context.Background(), key)
	require.True(t, ok, "no cache entry for %s", key)

	var resp response.ProviderResponse
	require.NoError(t, json.Unmarshal(payload, &resp))
	return resp
}

// marketplace is a seeded world: one customer, one provider with a profile,
// one hourly service and one completed booking between them.
type marketplace struct {
	db           *memDB
	customer     entity.User
	providerUser entity.User
	provider     entity.Provider
	service      entity.Service
	booking      entity.Booking
}

func newMarketplace() *marketplace {
	m := &marketplace{db: newMemDB()}

	m.customer = entity.User{
		Base:  entity.Base{ID: uuid.New(), CreatedAt: fixedNow, UpdatedAt: fixedNow},
		Name:  "Ana Customer",
		Email: "ana@example.com",
		Role:  entity.RoleCustomer,
	}
	m.providerUser = entity.User{
		Base:  entity.Base{ID: uuid.New(), CreatedAt: fixedNow, UpdatedAt: fixedNow},
		Name:  "Bo Plumber",
		Email: "bo@example.com",
		Role:  entity.RoleProvider,
	}
	m.provider = entity.Provider{
		Base:         entity.Base{ID: uuid.New(), CreatedAt: fixedNow, UpdatedAt: fixedNow},
		UserID:       m.providerUser.ID,
		BusinessName: "Bo's Pipes",
		ReviewIDs:    []uuid.UUID{},
	}
	m.service = entity.Service{
		BaseNoDelete: entity.BaseNoDelete{ID: uuid.New(), CreatedAt: fixedNow, UpdatedAt: fixedNow},
		Name:         "Leak repair",
		Category:     "plumbing",
		BasePrice:    40,
		PriceUnit:    entity.PriceUnitHour,
		SubServices: []entity.SubService{
			{Name: "Tap replacement", Price: 25, PriceUnit: entity.PriceUnitFixed},
			{Name: "Emergency call-out", Price: 60, PriceUnit: entity.PriceUnitHour},
		},
		IsActive: true,
	}
	m.booking = m.newBooking(entity.BookingStatusCompleted)

	m.db.seed(func(s *memState) {
		s.users[m.customer.ID] = m.customer
		s.users[m.providerUser.ID] = m.providerUser
		s.providers[m.provider.ID] = m.provider
		s.services[m.service.ID] = m.service
		s.bookings[m.booking.ID] = m.booking
	})

	return m
}

func (m *marketplace) newBooking(status entity.BookingStatus) entity.Booking {
	return entity.Booking{
		BaseNoDelete:   entity.BaseNoDelete{ID: uuid.New(), CreatedAt: fixedNow, UpdatedAt: fixedNow},
		CustomerID:     m.customer.ID,
		ProviderID:     m.provider.ID,
		ServiceID:      m.service.ID,
		ScheduledAt:    fixedNow.Add(24 * time.Hour),
		Address:        "12 Harbour Road",
		Status:         status,
		PaymentStatus:  entity.PaymentStatusPending,
		PaymentMethod:  entity.PaymentMethodCash,
		EstimatedPrice: m.service.BasePrice,
	}
}

// addBooking seeds another booking and returns it.
func (m *marketplace) addBooking(status entity.BookingStatus) entity.Booking {
	b := m.newBooking(status)
	m.db.seed(func(s *memState) { s.bookings[b.ID] = b })
	return b
}

func (m *marketplace) customerCaller() Caller {
	return Caller{ID: m.customer.ID, Role: entity.RoleCustomer}
}

func (m *marketplace) providerCaller() Caller {
	return Caller{ID: m.providerUser.ID, Role: entity.RoleProvider}
}

func ptr[T any](v T) *T {
	return &v
}
