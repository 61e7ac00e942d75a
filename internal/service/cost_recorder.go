package service

import (
	"github.com/logistics-kit/delivery-service/internal/domain"
	apperrors "github.com/logistics-kit/delivery-service/pkg/util"
)

// ActualsInput carries the cost figures a driver reports on completion.
type ActualsInput struct {
	ActualKm   *float64
	ActualCost *float64
}

// Empty reports whether no figure was supplied.
func (a ActualsInput) Empty() bool {
	return a.ActualKm == nil && a.ActualCost == nil
}

// CostRecorder owns the money fields of a delivery: the estimate written at
// creation and the actuals folded into the DELIVERED transition. Actuals are
// never written through any other path, which keeps them absent for every
// non-DELIVERED status and immutable once the terminal state is reached.
type CostRecorder struct {
	estimator Estimator
}

// NewCostRecorder builds the recorder; estimator may be nil, in which case
// deliveries are created without an estimate.
func NewCostRecorder(estimator Estimator) *CostRecorder {
	return &CostRecorder{estimator: estimator}
}

// Estimate returns the stored-at-creation estimate, or nil when the pricing
// collaborator declines to quote.
func (c *CostRecorder) Estimate(weight float64, priority domain.DeliveryPriority) *float64 {
	if c == nil || c.estimator == nil {
		return nil
	}
	cost, ok := c.estimator.EstimateCost(weight, priority)
	if !ok {
		return nil
	}
	return &cost
}

// ValidateActuals checks the completion figures before they join the
// DELIVERED write. Negative values are malformed input, not a state error.
func (c *CostRecorder) ValidateActuals(in ActualsInput) error {
	if in.ActualKm != nil && *in.ActualKm < 0 {
		return apperrors.NewValidationError("actual_km must not be negative", map[string]any{"actual_km": *in.ActualKm})
	}
	if in.ActualCost != nil && *in.ActualCost < 0 {
		return apperrors.NewValidationError("actual_cost must not be negative", map[string]any{"actual_cost": *in.ActualCost})
	}
	return nil
}
