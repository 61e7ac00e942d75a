package dto

import (
	"time"

	"github.com/logistics-kit/delivery-service/internal/domain"
)

// CreateDeliveryRequest payload.
type CreateDeliveryRequest struct {
	CustomerName  string                  `json:"customer_name"`
	CustomerPhone string                  `json:"customer_phone"`
	PickupAddress string                  `json:"pickup_address"`
	DropAddress   string                  `json:"drop_address"`
	Weight        float64                 `json:"weight"`
	Priority      domain.DeliveryPriority `json:"priority"`
	Notes         *string                 `json:"notes"`
}

// StatusUpdateRequest payload.
type StatusUpdateRequest struct {
	NewStatus  domain.DeliveryStatus `json:"new_status"`
	ActualKm   *float64              `json:"actual_km"`
	ActualCost *float64              `json:"actual_cost"`
}

// DeliveryResponse is the wire form of a delivery record.
type DeliveryResponse struct {
	ID            string                  `json:"id"`
	OwnerID       string                  `json:"owner_id"`
	DriverID      *string                 `json:"driver_id"`
	CustomerName  string                  `json:"customer_name"`
	CustomerPhone string                  `json:"customer_phone"`
	PickupAddress string                  `json:"pickup_address"`
	DropAddress   string                  `json:"drop_address"`
	Weight        float64                 `json:"weight"`
	Priority      domain.DeliveryPriority `json:"priority"`
	Notes         *string                 `json:"notes,omitempty"`
	Status        domain.DeliveryStatus   `json:"status"`
	EstimatedCost *float64                `json:"estimated_cost,omitempty"`
	ActualKm      *float64                `json:"actual_km,omitempty"`
	ActualCost    *float64                `json:"actual_cost,omitempty"`
	CreatedAt     time.Time               `json:"created_at"`
	UpdatedAt     time.Time               `json:"updated_at"`
}

// StatusHistoryResponse is one recorded state-machine edge.
type StatusHistoryResponse struct {
	ID        string                `json:"id"`
	OldStatus domain.DeliveryStatus `json:"old_status"`
	NewStatus domain.DeliveryStatus `json:"new_status"`
	ChangedBy string                `json:"changed_by"`
	ChangedAt time.Time             `json:"changed_at"`
}
