package domain

import "time"

// StatusHistory records one edge taken by a delivery's state machine and the
// user who drove it.
type StatusHistory struct {
	ID         string
	DeliveryID string
	OldStatus  DeliveryStatus
	NewStatus  DeliveryStatus
	ChangedBy  string
	ChangedAt  time.Time
}
