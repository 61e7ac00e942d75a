package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/logistics-kit/delivery-service/internal/domain"
	"github.com/logistics-kit/delivery-service/internal/events"
	"github.com/logistics-kit/delivery-service/internal/repository"
	apperrors "github.com/logistics-kit/delivery-service/pkg/util"
)

func requireDomainCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	require.Equal(t, code, domainErr.Code)
}

// fakeDeliveryStore mimics the versioned store: updates apply only when the
// expected version matches, and bump the version by one.
type fakeDeliveryStore struct {
	mu         sync.Mutex
	seq        int
	deliveries map[string]*domain.Delivery
}

func newFakeDeliveryStore() *fakeDeliveryStore {
	return &fakeDeliveryStore{deliveries: map[string]*domain.Delivery{}}
}

func (s *fakeDeliveryStore) Create(_ context.Context, delivery *domain.Delivery) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	delivery.ID = fmt.Sprintf("delivery-%d", s.seq)
	delivery.Version = 1
	delivery.CreatedAt = time.Now()
	delivery.UpdatedAt = delivery.CreatedAt
	clone := *delivery
	s.deliveries[delivery.ID] = &clone
	return nil
}

func (s *fakeDeliveryStore) GetByID(_ context.Context, id string) (*domain.Delivery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delivery, ok := s.deliveries[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *delivery
	return &clone, nil
}

func (s *fakeDeliveryStore) ListWithFilter(_ context.Context, filter repository.DeliveryFilter) ([]domain.Delivery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []domain.Delivery
	for _, delivery := range s.deliveries {
		if filter.OwnerID != nil && delivery.OwnerID != *filter.OwnerID {
			continue
		}
		if filter.DriverID != nil && !delivery.AssignedTo(*filter.DriverID) {
			continue
		}
		if filter.Unassigned && delivery.DriverID != nil {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, delivery.Status) {
			continue
		}
		result = append(result, *delivery)
	}
	return result, nil
}

func (s *fakeDeliveryStore) UpdateDelivery(_ context.Context, id string, expectedVersion int64, change repository.DeliveryChange) (*domain.Delivery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delivery, ok := s.deliveries[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	if delivery.Version != expectedVersion {
		return nil, repository.ErrVersionConflict
	}
	if change.Status != nil {
		delivery.Status = *change.Status
	}
	if change.DriverID != nil {
		driverID := *change.DriverID
		delivery.DriverID = &driverID
	}
	if change.ActualKm != nil {
		km := *change.ActualKm
		delivery.ActualKm = &km
	}
	if change.ActualCost != nil {
		cost := *change.ActualCost
		delivery.ActualCost = &cost
	}
	delivery.Version++
	delivery.UpdatedAt = time.Now()
	clone := *delivery
	return &clone, nil
}

func deliveryChangeStatus(status domain.DeliveryStatus) repository.DeliveryChange {
	return repository.DeliveryChange{Status: &status}
}

func deliveryChangeDriver(driverID string) repository.DeliveryChange {
	return repository.DeliveryChange{DriverID: &driverID}
}

func containsStatus(statuses []domain.DeliveryStatus, status domain.DeliveryStatus) bool {
	for _, candidate := range statuses {
		if candidate == status {
			return true
		}
	}
	return false
}

type fakeUserStore struct {
	users map[string]*domain.User
}

func newFakeUserStore(users ...*domain.User) *fakeUserStore {
	store := &fakeUserStore{users: map[string]*domain.User{}}
	for _, user := range users {
		store.users[user.ID] = user
	}
	return store
}

func (s *fakeUserStore) Create(_ context.Context, user *domain.User) error {
	for _, existing := range s.users {
		if existing.Email == user.Email {
			return errors.New("duplicate email")
		}
	}
	if user.ID == "" {
		user.ID = fmt.Sprintf("user-%d", len(s.users)+1)
	}
	s.users[user.ID] = user
	return nil
}

func (s *fakeUserStore) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return user, nil
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (s *fakeUserStore) ListByRole(_ context.Context, role domain.Role) ([]domain.User, error) {
	var result []domain.User
	for _, user := range s.users {
		if user.Role == role {
			result = append(result, *user)
		}
	}
	return result, nil
}

type fakeHistoryStore struct {
	mu      sync.Mutex
	entries []domain.StatusHistory
}

func (s *fakeHistoryStore) Create(_ context.Context, entry *domain.StatusHistory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry.ID = fmt.Sprintf("history-%d", len(s.entries)+1)
	entry.ChangedAt = time.Now()
	s.entries = append(s.entries, *entry)
	return nil
}

func (s *fakeHistoryStore) ListByDelivery(_ context.Context, deliveryID string, _, _ int) ([]domain.StatusHistory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []domain.StatusHistory
	for _, entry := range s.entries {
		if entry.DeliveryID == deliveryID {
			result = append(result, entry)
		}
	}
	return result, nil
}

// recordingDispatcher captures published events for assertions.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) published() []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]events.Event{}, d.events...)
}
