package repository

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/logistics-kit/delivery-service/internal/config"
	"github.com/logistics-kit/delivery-service/internal/domain"
	apperrors "github.com/logistics-kit/delivery-service/pkg/util"
)

// flakyDeliveryStore fails a fixed number of calls before succeeding.
type flakyDeliveryStore struct {
	failures int
	err      error
	calls    int
	delivery *domain.Delivery
}

func (s *flakyDeliveryStore) attempt() error {
	s.calls++
	if s.calls <= s.failures {
		return s.err
	}
	return nil
}

func (s *flakyDeliveryStore) Create(context.Context, *domain.Delivery) error {
	return s.attempt()
}

func (s *flakyDeliveryStore) GetByID(context.Context, string) (*domain.Delivery, error) {
	if err := s.attempt(); err != nil {
		return nil, err
	}
	return s.delivery, nil
}

func (s *flakyDeliveryStore) ListWithFilter(context.Context, DeliveryFilter) ([]domain.Delivery, error) {
	if err := s.attempt(); err != nil {
		return nil, err
	}
	return nil, nil
}

func (s *flakyDeliveryStore) UpdateDelivery(context.Context, string, int64, DeliveryChange) (*domain.Delivery, error) {
	if err := s.attempt(); err != nil {
		return nil, err
	}
	return s.delivery, nil
}

func transientErr() error {
	return &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
}

func newTestRetrying(next DeliveryRepository) (*RetryingDeliveryRepository, *[]time.Duration) {
	repo := NewRetryingDeliveryRepository(next, zap.NewNop(), config.StoreRetryConfig{
		MaxAttempts: 3,
		BaseDelayMs: 50,
		MaxDelayMs:  500,
	})
	var delays []time.Duration
	repo.sleep = func(d time.Duration) { delays = append(delays, d) }
	return repo, &delays
}

func TestRetryingRepositoryRecoversFromTransientFailure(t *testing.T) {
	next := &flakyDeliveryStore{failures: 2, err: transientErr(), delivery: &domain.Delivery{ID: "d-1"}}
	repo, delays := newTestRetrying(next)

	delivery, err := repo.GetByID(context.Background(), "d-1")
	require.NoError(t, err)
	assert.Equal(t, "d-1", delivery.ID)
	assert.Equal(t, 3, next.calls)
	assert.Equal(t, []time.Duration{50 * time.Millisecond, 100 * time.Millisecond}, *delays)
}

func TestRetryingRepositoryExhaustionIsUnavailable(t *testing.T) {
	next := &flakyDeliveryStore{failures: 10, err: transientErr()}
	repo, _ := newTestRetrying(next)

	_, err := repo.GetByID(context.Background(), "d-1")
	require.Error(t, err)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "UNAVAILABLE", domainErr.Code)
	assert.Equal(t, 3, next.calls)
}

func TestRetryingRepositoryDoesNotRetryDomainOutcomes(t *testing.T) {
	t.Run("missing rows pass through", func(t *testing.T) {
		next := &flakyDeliveryStore{failures: 10, err: pgx.ErrNoRows}
		repo, _ := newTestRetrying(next)

		_, err := repo.GetByID(context.Background(), "d-1")
		assert.ErrorIs(t, err, pgx.ErrNoRows)
		assert.Equal(t, 1, next.calls)
	})

	t.Run("version conflicts pass through", func(t *testing.T) {
		next := &flakyDeliveryStore{failures: 10, err: ErrVersionConflict}
		repo, _ := newTestRetrying(next)

		_, err := repo.UpdateDelivery(context.Background(), "d-1", 1, DeliveryChange{})
		assert.ErrorIs(t, err, ErrVersionConflict)
		assert.Equal(t, 1, next.calls)
	})

	t.Run("plain errors pass through", func(t *testing.T) {
		next := &flakyDeliveryStore{failures: 10, err: errors.New("constraint violation")}
		repo, _ := newTestRetrying(next)

		err := repo.Create(context.Background(), &domain.Delivery{})
		require.Error(t, err)
		assert.Equal(t, 1, next.calls)
	})
}

func TestRetryingRepositoryStopsOnCancelledContext(t *testing.T) {
	next := &flakyDeliveryStore{failures: 10, err: transientErr()}
	repo, _ := newTestRetrying(next)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.GetByID(ctx, "d-1")
	require.Error(t, err)
	assert.Equal(t, 1, next.calls)
}

func TestBackoffCapsAtMaxDelay(t *testing.T) {
	base := 50 * time.Millisecond
	max := 120 * time.Millisecond
	assert.Equal(t, 50*time.Millisecond, backoff(base, max, 1))
	assert.Equal(t, 100*time.Millisecond, backoff(base, max, 2))
	assert.Equal(t, 120*time.Millisecond, backoff(base, max, 3))
}
