package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/logistics-kit/delivery-service/internal/domain"
	"github.com/logistics-kit/delivery-service/internal/events"
	"github.com/logistics-kit/delivery-service/internal/repository"
	apperrors "github.com/logistics-kit/delivery-service/pkg/util"
)

const (
	driverDirectoryKey = "directory:drivers"
	driverDirectoryTTL = 5 * time.Minute
)

// IdentityService is the read-side directory of users: who exists and what
// role they hold. The driver listing backs the admin assignment screen and
// is served through a Redis read-through cache; registration of a new driver
// invalidates it via the user_registered event.
type IdentityService struct {
	users  repository.UserRepository
	cache  *redis.Client
	logger *zap.Logger
}

// NewIdentityService constructs the service. cache may be nil; lookups then
// always hit the repository.
func NewIdentityService(users repository.UserRepository, cache *redis.Client, logger *zap.Logger) *IdentityService {
	return &IdentityService{users: users, cache: cache, logger: logger}
}

// RegisterHandlers subscribes cache invalidation to registration events.
func (s *IdentityService) RegisterHandlers(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	dispatcher.Subscribe(events.EventUserRegistered, func(ctx context.Context, event events.Event) error {
		payload, ok := event.Payload.(events.UserRegisteredPayload)
		if ok && payload.Role != domain.RoleDriver {
			return nil
		}
		s.invalidateDrivers(ctx)
		return nil
	})
}

// FindByID resolves a user or reports NotFound.
func (s *IdentityService) FindByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// ListByRole returns every user holding the role.
func (s *IdentityService) ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	users, err := s.users.ListByRole(ctx, role)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// ListDrivers returns the driver directory, preferring the cache.
func (s *IdentityService) ListDrivers(ctx context.Context) ([]domain.User, error) {
	if s.cache != nil {
		raw, err := s.cache.Get(ctx, driverDirectoryKey).Bytes()
		if err == nil {
			var drivers []domain.User
			if jsonErr := json.Unmarshal(raw, &drivers); jsonErr == nil {
				return drivers, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn("driver directory cache read failed", zap.Error(err))
		}
	}

	drivers, err := s.ListByRole(ctx, domain.RoleDriver)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		// credentials stay out of the cache
		cached := make([]domain.User, len(drivers))
		copy(cached, drivers)
		for i := range cached {
			cached[i].PasswordHash = ""
		}
		if raw, jsonErr := json.Marshal(cached); jsonErr == nil {
			if err := s.cache.Set(ctx, driverDirectoryKey, raw, driverDirectoryTTL).Err(); err != nil {
				s.logger.Warn("driver directory cache write failed", zap.Error(err))
			}
		}
	}
	return drivers, nil
}

func (s *IdentityService) invalidateDrivers(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, driverDirectoryKey).Err(); err != nil {
		s.logger.Warn("driver directory cache invalidation failed", zap.Error(err))
	}
}
