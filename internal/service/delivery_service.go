package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/logistics-kit/delivery-service/internal/auth"
	"github.com/logistics-kit/delivery-service/internal/domain"
	"github.com/logistics-kit/delivery-service/internal/events"
	"github.com/logistics-kit/delivery-service/internal/repository"
	apperrors "github.com/logistics-kit/delivery-service/pkg/util"
)

// DeliveryService is the lifecycle engine: the single point that accepts or
// rejects every intent against a delivery based on role, ownership and
// current state, then commits the outcome as one versioned write.
type DeliveryService struct {
	deliveries repository.DeliveryRepository
	history    repository.StatusHistoryRepository
	costs      *CostRecorder
	dispatcher events.Dispatcher
}

// DeliveryDependencies bundles collaborators for the lifecycle engine.
type DeliveryDependencies struct {
	DeliveryRepo repository.DeliveryRepository
	HistoryRepo  repository.StatusHistoryRepository
	CostRecorder *CostRecorder
	Dispatcher   events.Dispatcher
}

// NewDeliveryService constructs the service.
func NewDeliveryService(deps DeliveryDependencies) *DeliveryService {
	return &DeliveryService{
		deliveries: deps.DeliveryRepo,
		history:    deps.HistoryRepo,
		costs:      deps.CostRecorder,
		dispatcher: deps.Dispatcher,
	}
}

// DeliveryCreateInput describes delivery creation payload.
type DeliveryCreateInput struct {
	CustomerName  string
	CustomerPhone string
	PickupAddress string
	DropAddress   string
	Weight        float64
	Priority      domain.DeliveryPriority
	Notes         *string
}

// DeliveryListFilter describes listing options within the caller's scope.
type DeliveryListFilter struct {
	Statuses       []domain.DeliveryStatus
	UnassignedOnly bool
	Limit          int
	Offset         int
}

// CreateDelivery creates a delivery owned by the calling business user.
// Every delivery starts PENDING with no driver; the estimate, if any, is
// recorded at this point and never recomputed.
func (s *DeliveryService) CreateDelivery(ctx context.Context, caller domain.Caller, input DeliveryCreateInput) (*domain.Delivery, error) {
	if caller.Role != domain.RoleBusinessUser {
		return nil, apperrors.NewForbidden("only business users create deliveries")
	}
	if err := validateCreateInput(&input); err != nil {
		return nil, err
	}

	delivery := &domain.Delivery{
		OwnerID:       caller.ID,
		CustomerName:  strings.TrimSpace(input.CustomerName),
		CustomerPhone: strings.TrimSpace(input.CustomerPhone),
		PickupAddress: strings.TrimSpace(input.PickupAddress),
		DropAddress:   strings.TrimSpace(input.DropAddress),
		Weight:        input.Weight,
		Priority:      input.Priority,
		Notes:         input.Notes,
		Status:        domain.DeliveryStatusPending,
		EstimatedCost: s.costs.Estimate(input.Weight, input.Priority),
	}

	if err := s.deliveries.Create(ctx, delivery); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:       events.EventDeliveryCreated,
		DeliveryID: delivery.ID,
		ActorID:    caller.ID,
		Payload: events.DeliveryCreatedPayload{
			OwnerID:       delivery.OwnerID,
			Priority:      delivery.Priority,
			EstimatedCost: delivery.EstimatedCost,
		},
	})
	return delivery, nil
}

// ListForCaller returns deliveries visible to the caller: admins see all
// (optionally only the unassigned pending pool), business users their own,
// drivers the ones assigned to them.
func (s *DeliveryService) ListForCaller(ctx context.Context, caller domain.Caller, filter DeliveryListFilter) ([]domain.Delivery, error) {
	repoFilter := repository.DeliveryFilter{
		Statuses: filter.Statuses,
		Limit:    filter.Limit,
		Offset:   filter.Offset,
	}
	switch caller.Role {
	case domain.RoleAdmin:
		if filter.UnassignedOnly {
			repoFilter.Unassigned = true
			repoFilter.Statuses = []domain.DeliveryStatus{domain.DeliveryStatusPending}
		}
	case domain.RoleBusinessUser:
		owner := caller.ID
		repoFilter.OwnerID = &owner
	case domain.RoleDriver:
		driver := caller.ID
		repoFilter.DriverID = &driver
	default:
		return nil, apperrors.NewForbidden("unknown role")
	}

	deliveries, err := s.deliveries.ListWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return deliveries, nil
}

// GetForCaller fetches one delivery, enforcing visibility.
func (s *DeliveryService) GetForCaller(ctx context.Context, caller domain.Caller, deliveryID string) (*domain.Delivery, error) {
	delivery, err := s.getDelivery(ctx, deliveryID)
	if err != nil {
		return nil, err
	}
	if !auth.PermissionsFor(caller, delivery).Allows(auth.OpViewDelivery) {
		return nil, apperrors.NewForbidden("access denied")
	}
	return delivery, nil
}

// ListHistoryForCaller returns the status trail of a visible delivery.
func (s *DeliveryService) ListHistoryForCaller(ctx context.Context, caller domain.Caller, deliveryID string, limit, offset int) ([]domain.StatusHistory, error) {
	if _, err := s.GetForCaller(ctx, caller, deliveryID); err != nil {
		return nil, err
	}
	entries, err := s.history.ListByDelivery(ctx, deliveryID, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return entries, nil
}

// TransitionStatus validates and applies one state-machine edge. The checks
// and the write form a single decision: authorization, edge validity and the
// driver precondition are evaluated against a snapshot, and the write only
// lands if that snapshot is still current. A lost race is CONFLICT, never a
// silent overwrite.
func (s *DeliveryService) TransitionStatus(ctx context.Context, caller domain.Caller, deliveryID string, newStatus domain.DeliveryStatus, actuals ActualsInput) (*domain.Delivery, error) {
	if !newStatus.Valid() {
		return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": newStatus})
	}

	delivery, err := s.getDelivery(ctx, deliveryID)
	if err != nil {
		return nil, err
	}
	if !auth.PermissionsFor(caller, delivery).Allows(auth.OpTransitionStatus) {
		return nil, apperrors.NewForbidden("only the assigned driver or an admin may update status")
	}
	if !delivery.Status.CanTransitionTo(newStatus) {
		return nil, apperrors.NewInvalidTransition("status transition not permitted", map[string]any{
			"current": delivery.Status,
			"target":  newStatus,
		})
	}
	if newStatus.RequiresDriver() && delivery.DriverID == nil {
		return nil, apperrors.NewPreconditionFailed("no driver assigned", map[string]any{"delivery_id": delivery.ID})
	}

	change := repository.DeliveryChange{Status: &newStatus}
	if newStatus == domain.DeliveryStatusDelivered {
		if err := s.costs.ValidateActuals(actuals); err != nil {
			return nil, err
		}
		change.ActualKm = actuals.ActualKm
		change.ActualCost = actuals.ActualCost
	} else if !actuals.Empty() {
		return nil, apperrors.NewValidationError("actuals are only accepted on delivery completion", nil)
	}

	updated, err := s.deliveries.UpdateDelivery(ctx, delivery.ID, delivery.Version, change)
	if err != nil {
		return nil, mapUpdateError(err)
	}

	if err := s.history.Create(ctx, &domain.StatusHistory{
		DeliveryID: updated.ID,
		OldStatus:  delivery.Status,
		NewStatus:  updated.Status,
		ChangedBy:  caller.ID,
	}); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:       events.EventDeliveryStatusChanged,
		DeliveryID: updated.ID,
		ActorID:    caller.ID,
		Payload: events.DeliveryStatusChangedPayload{
			OldStatus:  delivery.Status,
			NewStatus:  updated.Status,
			ActualKm:   updated.ActualKm,
			ActualCost: updated.ActualCost,
		},
	})
	return updated, nil
}

func (s *DeliveryService) getDelivery(ctx context.Context, deliveryID string) (*domain.Delivery, error) {
	delivery, err := s.deliveries.GetByID(ctx, deliveryID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("delivery", map[string]any{"delivery_id": deliveryID})
		}
		return nil, apperrors.MapError(err)
	}
	return delivery, nil
}

func (s *DeliveryService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func validateCreateInput(input *DeliveryCreateInput) error {
	missing := map[string]any{}
	for field, value := range map[string]string{
		"customer_name":  input.CustomerName,
		"customer_phone": input.CustomerPhone,
		"pickup_address": input.PickupAddress,
		"drop_address":   input.DropAddress,
	} {
		if strings.TrimSpace(value) == "" {
			missing[field] = "required"
		}
	}
	if len(missing) > 0 {
		return apperrors.NewValidationError("missing required fields", missing)
	}
	if input.Weight <= 0 {
		return apperrors.NewValidationError("weight must be positive", map[string]any{"weight": input.Weight})
	}
	if input.Priority == "" {
		input.Priority = domain.DeliveryPriorityMedium
	}
	if !input.Priority.Valid() {
		return apperrors.NewValidationError("unknown priority", map[string]any{"priority": input.Priority})
	}
	return nil
}

func mapUpdateError(err error) error {
	if errors.Is(err, repository.ErrVersionConflict) {
		return apperrors.NewConflict("delivery was modified concurrently", nil)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound("delivery", nil)
	}
	return apperrors.MapError(err)
}
