package events

import (
	"time"

	"github.com/logistics-kit/delivery-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventDeliveryCreated       EventType = "delivery_created"
	EventDriverAssigned        EventType = "driver_assigned"
	EventDeliveryStatusChanged EventType = "delivery_status_changed"
	EventUserRegistered        EventType = "user_registered"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID         string      `json:"id"`
	Type       EventType   `json:"type"`
	DeliveryID string      `json:"delivery_id,omitempty"`
	ActorID    string      `json:"actor_id"`
	Timestamp  time.Time   `json:"timestamp"`
	Payload    interface{} `json:"payload"`
}

// DeliveryCreatedPayload payload.
type DeliveryCreatedPayload struct {
	OwnerID       string                  `json:"owner_id"`
	Priority      domain.DeliveryPriority `json:"priority"`
	EstimatedCost *float64                `json:"estimated_cost,omitempty"`
}

// DriverAssignedPayload payload.
type DriverAssignedPayload struct {
	DriverID       string  `json:"driver_id"`
	ReplacedDriver *string `json:"replaced_driver,omitempty"`
}

// DeliveryStatusChangedPayload payload.
type DeliveryStatusChangedPayload struct {
	OldStatus  domain.DeliveryStatus `json:"old_status"`
	NewStatus  domain.DeliveryStatus `json:"new_status"`
	ActualKm   *float64              `json:"actual_km,omitempty"`
	ActualCost *float64              `json:"actual_cost,omitempty"`
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	Role domain.Role `json:"role"`
}
