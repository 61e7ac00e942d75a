package repository

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/logistics-kit/delivery-service/internal/config"
	"github.com/logistics-kit/delivery-service/internal/domain"
	apperrors "github.com/logistics-kit/delivery-service/pkg/util"
)

// RetryingDeliveryRepository decorates a DeliveryRepository with a bounded
// retry of transient connection failures. Domain outcomes (missing rows,
// version conflicts) pass through untouched; only I/O-level errors are
// retried, and an exhausted budget surfaces as UNAVAILABLE.
type RetryingDeliveryRepository struct {
	next   DeliveryRepository
	logger *zap.Logger
	cfg    config.StoreRetryConfig
	sleep  func(time.Duration)
}

// NewRetryingDeliveryRepository wraps next; returns nil when next is nil.
func NewRetryingDeliveryRepository(next DeliveryRepository, logger *zap.Logger, cfg config.StoreRetryConfig) *RetryingDeliveryRepository {
	if next == nil {
		return nil
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	return &RetryingDeliveryRepository{next: next, logger: logger, cfg: cfg, sleep: time.Sleep}
}

func (r *RetryingDeliveryRepository) Create(ctx context.Context, delivery *domain.Delivery) error {
	return r.withRetry(ctx, "Create", func(ctx context.Context) error {
		return r.next.Create(ctx, delivery)
	})
}

func (r *RetryingDeliveryRepository) GetByID(ctx context.Context, id string) (*domain.Delivery, error) {
	var delivery *domain.Delivery
	err := r.withRetry(ctx, "GetByID", func(ctx context.Context) error {
		var opErr error
		delivery, opErr = r.next.GetByID(ctx, id)
		return opErr
	})
	return delivery, err
}

func (r *RetryingDeliveryRepository) ListWithFilter(ctx context.Context, filter DeliveryFilter) ([]domain.Delivery, error) {
	var deliveries []domain.Delivery
	err := r.withRetry(ctx, "ListWithFilter", func(ctx context.Context) error {
		var opErr error
		deliveries, opErr = r.next.ListWithFilter(ctx, filter)
		return opErr
	})
	return deliveries, err
}

func (r *RetryingDeliveryRepository) UpdateDelivery(ctx context.Context, id string, expectedVersion int64, change DeliveryChange) (*domain.Delivery, error) {
	var delivery *domain.Delivery
	err := r.withRetry(ctx, "UpdateDelivery", func(ctx context.Context) error {
		var opErr error
		delivery, opErr = r.next.UpdateDelivery(ctx, id, expectedVersion, change)
		return opErr
	})
	return delivery, err
}

func (r *RetryingDeliveryRepository) withRetry(ctx context.Context, method string, fn func(context.Context) error) error {
	var lastErr error
	for attempt := 1; attempt <= r.cfg.MaxAttempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err
		if ctx.Err() != nil || !isRetryable(err) {
			return err
		}
		if attempt == r.cfg.MaxAttempts {
			break
		}
		delay := backoff(r.cfg.BaseDelay(), r.cfg.MaxDelay(), attempt)
		r.logger.Warn("delivery store retry",
			zap.String("method", method),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		if !sleepWithContext(ctx, r.sleep, delay) {
			return err
		}
	}
	return apperrors.NewUnavailable(lastErr)
}

func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, ErrVersionConflict) {
		return false
	}
	if pgconn.SafeToRetry(err) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func backoff(base, max time.Duration, attempt int) time.Duration {
	if base <= 0 {
		base = 50 * time.Millisecond
	}
	delay := base << (attempt - 1)
	if max > 0 && delay > max {
		return max
	}
	return delay
}

func sleepWithContext(ctx context.Context, sleep func(time.Duration), delay time.Duration) bool {
	if sleep == nil {
		sleep = time.Sleep
	}
	if ctx.Err() != nil {
		return false
	}
	sleep(delay)
	return ctx.Err() == nil
}
