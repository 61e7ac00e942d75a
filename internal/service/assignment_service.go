package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/logistics-kit/delivery-service/internal/auth"
	"github.com/logistics-kit/delivery-service/internal/domain"
	"github.com/logistics-kit/delivery-service/internal/events"
	"github.com/logistics-kit/delivery-service/internal/repository"
	apperrors "github.com/logistics-kit/delivery-service/pkg/util"
)

// AssignmentService binds drivers to deliveries. Assignment is an admin
// action, only possible while the delivery is still PENDING: once a driver
// accepts, the claim is fixed and no reassignment happens.
type AssignmentService struct {
	deliveries repository.DeliveryRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
}

// AssignmentDependencies bundles collaborators.
type AssignmentDependencies struct {
	DeliveryRepo repository.DeliveryRepository
	UserRepo     repository.UserRepository
	Dispatcher   events.Dispatcher
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	return &AssignmentService{
		deliveries: deps.DeliveryRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
	}
}

// AssignDriver binds driverID to the delivery. A prior assignment on a
// still-PENDING delivery is wholly replaced. The write is guarded by the
// record version read here; concurrent assigns produce one winner and one
// CONFLICT.
func (s *AssignmentService) AssignDriver(ctx context.Context, caller domain.Caller, deliveryID, driverID string) (*domain.Delivery, error) {
	if caller.Role != domain.RoleAdmin {
		return nil, apperrors.NewForbidden("only admins assign drivers")
	}

	driver, err := s.users.GetByID(ctx, driverID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("driver", map[string]any{"driver_id": driverID})
		}
		return nil, apperrors.MapError(err)
	}
	if driver.Role != domain.RoleDriver {
		return nil, apperrors.NewPreconditionFailed("user is not a driver", map[string]any{"driver_id": driverID, "role": driver.Role})
	}

	delivery, err := s.deliveries.GetByID(ctx, deliveryID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("delivery", map[string]any{"delivery_id": deliveryID})
		}
		return nil, apperrors.MapError(err)
	}
	if !auth.PermissionsFor(caller, delivery).Allows(auth.OpAssignDriver) {
		return nil, apperrors.NewForbidden("access denied")
	}
	if delivery.Status != domain.DeliveryStatusPending {
		return nil, apperrors.NewInvalidTransition("delivery already claimed", map[string]any{
			"delivery_id": delivery.ID,
			"status":      delivery.Status,
		})
	}

	replaced := delivery.DriverID
	updated, err := s.deliveries.UpdateDelivery(ctx, delivery.ID, delivery.Version, repository.DeliveryChange{
		DriverID: &driver.ID,
	})
	if err != nil {
		return nil, mapUpdateError(err)
	}

	s.publishAssigned(ctx, caller.ID, updated.ID, driver.ID, replaced)
	return updated, nil
}

func (s *AssignmentService) publishAssigned(ctx context.Context, actorID, deliveryID, driverID string, replaced *string) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:         uuid.NewString(),
		Type:       events.EventDriverAssigned,
		DeliveryID: deliveryID,
		ActorID:    actorID,
		Timestamp:  time.Now(),
		Payload: events.DriverAssignedPayload{
			DriverID:       driverID,
			ReplacedDriver: replaced,
		},
	})
}
