package domain

import "time"

// DeliveryStatus enumerates lifecycle states for deliveries.
type DeliveryStatus string

const (
	DeliveryStatusPending   DeliveryStatus = "PENDING"
	DeliveryStatusAccepted  DeliveryStatus = "ACCEPTED"
	DeliveryStatusOnWay     DeliveryStatus = "ON_WAY"
	DeliveryStatusDelivered DeliveryStatus = "DELIVERED"
	DeliveryStatusCancelled DeliveryStatus = "CANCELLED"
)

// statusTransitions is the closed transition table for the delivery state
// machine. A status missing from a state's slice, including the state
// itself, is not a permitted edge.
var statusTransitions = map[DeliveryStatus][]DeliveryStatus{
	DeliveryStatusPending:   {DeliveryStatusAccepted, DeliveryStatusCancelled},
	DeliveryStatusAccepted:  {DeliveryStatusOnWay, DeliveryStatusCancelled},
	DeliveryStatusOnWay:     {DeliveryStatusDelivered, DeliveryStatusCancelled},
	DeliveryStatusDelivered: {},
	DeliveryStatusCancelled: {},
}

// Valid reports whether the status is one of the five defined values.
func (s DeliveryStatus) Valid() bool {
	_, ok := statusTransitions[s]
	return ok
}

// CanTransitionTo reports whether the edge (s, next) exists in the
// transition table.
func (s DeliveryStatus) CanTransitionTo(next DeliveryStatus) bool {
	for _, candidate := range statusTransitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions are permitted.
func (s DeliveryStatus) Terminal() bool {
	return s.Valid() && len(statusTransitions[s]) == 0
}

// RequiresDriver reports whether a delivery may only hold this status while
// a driver is assigned.
func (s DeliveryStatus) RequiresDriver() bool {
	switch s {
	case DeliveryStatusAccepted, DeliveryStatusOnWay, DeliveryStatusDelivered:
		return true
	}
	return false
}

// DeliveryPriority enumerates shipment urgency.
type DeliveryPriority string

const (
	DeliveryPriorityLow    DeliveryPriority = "LOW"
	DeliveryPriorityMedium DeliveryPriority = "MEDIUM"
	DeliveryPriorityHigh   DeliveryPriority = "HIGH"
)

// Valid reports whether the priority is one of the defined values.
func (p DeliveryPriority) Valid() bool {
	switch p {
	case DeliveryPriorityLow, DeliveryPriorityMedium, DeliveryPriorityHigh:
		return true
	}
	return false
}

// Delivery is the aggregate for a single transport job from pickup to drop.
// OwnerID is set once at creation and always refers to a BUSINESS_USER.
// DriverID refers to a DRIVER when set; it may be replaced only while the
// delivery is still PENDING. ActualKm and ActualCost are populated only on
// the transition into DELIVERED and never change afterwards. Version guards
// every mutation: the store refuses a write whose expected version no longer
// matches the record.
type Delivery struct {
	ID            string
	OwnerID       string
	DriverID      *string
	CustomerName  string
	CustomerPhone string
	PickupAddress string
	DropAddress   string
	Weight        float64
	Priority      DeliveryPriority
	Notes         *string
	Status        DeliveryStatus
	EstimatedCost *float64
	ActualKm      *float64
	ActualCost    *float64
	Version       int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// AssignedTo reports whether the given driver is currently bound to the
// delivery.
func (d *Delivery) AssignedTo(driverID string) bool {
	return d.DriverID != nil && *d.DriverID == driverID
}
