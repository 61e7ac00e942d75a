package auth

import "github.com/logistics-kit/delivery-service/internal/domain"

// Operation names an action a caller may attempt against a delivery.
type Operation string

const (
	OpViewDelivery     Operation = "view_delivery"
	OpAssignDriver     Operation = "assign_driver"
	OpTransitionStatus Operation = "transition_status"
)

// PermissionSet is the set of operations a caller may perform on one delivery.
type PermissionSet map[Operation]struct{}

// Allows reports whether the set contains the operation.
func (s PermissionSet) Allows(op Operation) bool {
	_, ok := s[op]
	return ok
}

// PermissionsFor is the single authorization predicate consulted by every
// core operation. Admins see and drive everything; business users only
// observe their own deliveries; drivers see and drive only the delivery they
// are currently assigned to.
func PermissionsFor(caller domain.Caller, delivery *domain.Delivery) PermissionSet {
	perms := PermissionSet{}
	if delivery == nil {
		return perms
	}
	switch caller.Role {
	case domain.RoleAdmin:
		perms[OpViewDelivery] = struct{}{}
		perms[OpAssignDriver] = struct{}{}
		perms[OpTransitionStatus] = struct{}{}
	case domain.RoleBusinessUser:
		if delivery.OwnerID == caller.ID {
			perms[OpViewDelivery] = struct{}{}
		}
	case domain.RoleDriver:
		if delivery.AssignedTo(caller.ID) {
			perms[OpViewDelivery] = struct{}{}
			perms[OpTransitionStatus] = struct{}{}
		}
	}
	return perms
}
