package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/logistics-kit/delivery-service/internal/domain"
)

func sampleDelivery(ownerID string, driverID *string) *domain.Delivery {
	return &domain.Delivery{
		ID:       "d-1",
		OwnerID:  ownerID,
		DriverID: driverID,
		Status:   domain.DeliveryStatusPending,
	}
}

func TestPermissionsForAdmin(t *testing.T) {
	caller := domain.Caller{ID: "admin-1", Role: domain.RoleAdmin}
	perms := PermissionsFor(caller, sampleDelivery("owner-1", nil))

	assert.True(t, perms.Allows(OpViewDelivery))
	assert.True(t, perms.Allows(OpAssignDriver))
	assert.True(t, perms.Allows(OpTransitionStatus))
}

func TestPermissionsForBusinessUser(t *testing.T) {
	delivery := sampleDelivery("owner-1", nil)

	t.Run("owner may view only", func(t *testing.T) {
		perms := PermissionsFor(domain.Caller{ID: "owner-1", Role: domain.RoleBusinessUser}, delivery)
		assert.True(t, perms.Allows(OpViewDelivery))
		assert.False(t, perms.Allows(OpAssignDriver))
		assert.False(t, perms.Allows(OpTransitionStatus))
	})

	t.Run("non-owner gets nothing", func(t *testing.T) {
		perms := PermissionsFor(domain.Caller{ID: "owner-2", Role: domain.RoleBusinessUser}, delivery)
		assert.False(t, perms.Allows(OpViewDelivery))
	})
}

func TestPermissionsForDriver(t *testing.T) {
	driverID := "driver-1"
	delivery := sampleDelivery("owner-1", &driverID)

	t.Run("assigned driver may view and transition", func(t *testing.T) {
		perms := PermissionsFor(domain.Caller{ID: "driver-1", Role: domain.RoleDriver}, delivery)
		assert.True(t, perms.Allows(OpViewDelivery))
		assert.True(t, perms.Allows(OpTransitionStatus))
		assert.False(t, perms.Allows(OpAssignDriver))
	})

	t.Run("other driver gets nothing", func(t *testing.T) {
		perms := PermissionsFor(domain.Caller{ID: "driver-2", Role: domain.RoleDriver}, delivery)
		assert.False(t, perms.Allows(OpViewDelivery))
		assert.False(t, perms.Allows(OpTransitionStatus))
	})

	t.Run("unassigned delivery grants nothing", func(t *testing.T) {
		perms := PermissionsFor(domain.Caller{ID: "driver-1", Role: domain.RoleDriver}, sampleDelivery("owner-1", nil))
		assert.False(t, perms.Allows(OpViewDelivery))
	})
}

func TestPermissionsForNilDelivery(t *testing.T) {
	perms := PermissionsFor(domain.Caller{ID: "admin-1", Role: domain.RoleAdmin}, nil)
	assert.False(t, perms.Allows(OpViewDelivery))
}
