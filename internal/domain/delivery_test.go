package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeliveryStatusValid(t *testing.T) {
	for _, status := range []DeliveryStatus{
		DeliveryStatusPending,
		DeliveryStatusAccepted,
		DeliveryStatusOnWay,
		DeliveryStatusDelivered,
		DeliveryStatusCancelled,
	} {
		assert.True(t, status.Valid(), "expected %s to be valid", status)
	}

	assert.False(t, DeliveryStatus("IN_TRANSIT").Valid())
	assert.False(t, DeliveryStatus("").Valid())
	assert.False(t, DeliveryStatus("pending").Valid())
}

func TestDeliveryStatusTransitions(t *testing.T) {
	cases := []struct {
		from    DeliveryStatus
		to      DeliveryStatus
		allowed bool
	}{
		{DeliveryStatusPending, DeliveryStatusAccepted, true},
		{DeliveryStatusPending, DeliveryStatusCancelled, true},
		{DeliveryStatusPending, DeliveryStatusOnWay, false},
		{DeliveryStatusPending, DeliveryStatusDelivered, false},
		{DeliveryStatusAccepted, DeliveryStatusOnWay, true},
		{DeliveryStatusAccepted, DeliveryStatusCancelled, true},
		{DeliveryStatusAccepted, DeliveryStatusPending, false},
		{DeliveryStatusAccepted, DeliveryStatusDelivered, false},
		{DeliveryStatusOnWay, DeliveryStatusDelivered, true},
		{DeliveryStatusOnWay, DeliveryStatusCancelled, true},
		{DeliveryStatusOnWay, DeliveryStatusAccepted, false},
		{DeliveryStatusDelivered, DeliveryStatusCancelled, false},
		{DeliveryStatusCancelled, DeliveryStatusPending, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestDeliveryStatusNoSelfTransitions(t *testing.T) {
	for status := range statusTransitions {
		assert.False(t, status.CanTransitionTo(status), "self edge on %s", status)
	}
}

func TestDeliveryStatusTerminal(t *testing.T) {
	assert.True(t, DeliveryStatusDelivered.Terminal())
	assert.True(t, DeliveryStatusCancelled.Terminal())
	assert.False(t, DeliveryStatusPending.Terminal())
	assert.False(t, DeliveryStatusAccepted.Terminal())
	assert.False(t, DeliveryStatusOnWay.Terminal())
	assert.False(t, DeliveryStatus("BOGUS").Terminal())
}

func TestDeliveryStatusRequiresDriver(t *testing.T) {
	assert.False(t, DeliveryStatusPending.RequiresDriver())
	assert.False(t, DeliveryStatusCancelled.RequiresDriver())
	assert.True(t, DeliveryStatusAccepted.RequiresDriver())
	assert.True(t, DeliveryStatusOnWay.RequiresDriver())
	assert.True(t, DeliveryStatusDelivered.RequiresDriver())
}

func TestDeliveryPriorityValid(t *testing.T) {
	assert.True(t, DeliveryPriorityLow.Valid())
	assert.True(t, DeliveryPriorityMedium.Valid())
	assert.True(t, DeliveryPriorityHigh.Valid())
	assert.False(t, DeliveryPriority("URGENT").Valid())
	assert.False(t, DeliveryPriority("").Valid())
}

func TestDeliveryAssignedTo(t *testing.T) {
	delivery := &Delivery{}
	require.False(t, delivery.AssignedTo("driver-1"))

	driverID := "driver-1"
	delivery.DriverID = &driverID
	assert.True(t, delivery.AssignedTo("driver-1"))
	assert.False(t, delivery.AssignedTo("driver-2"))
}
