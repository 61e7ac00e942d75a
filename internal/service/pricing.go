package service

import (
	"math"

	"github.com/logistics-kit/delivery-service/internal/config"
	"github.com/logistics-kit/delivery-service/internal/domain"
)

// Estimator supplies the up-front cost for a delivery. The engine stores
// whatever the estimator returns; it never computes prices itself.
type Estimator interface {
	EstimateCost(weight float64, priority domain.DeliveryPriority) (float64, bool)
}

// StandardEstimator prices a delivery as a base fee plus a per-kilogram fee,
// scaled by a priority multiplier.
type StandardEstimator struct {
	cfg config.PricingConfig
}

// NewStandardEstimator builds the estimator from pricing configuration.
func NewStandardEstimator(cfg config.PricingConfig) *StandardEstimator {
	return &StandardEstimator{cfg: cfg}
}

// EstimateCost implements Estimator.
func (e *StandardEstimator) EstimateCost(weight float64, priority domain.DeliveryPriority) (float64, bool) {
	if weight <= 0 {
		return 0, false
	}
	cost := e.cfg.BaseFee + e.cfg.PerKgFee*weight
	switch priority {
	case domain.DeliveryPriorityHigh:
		cost *= e.cfg.HighMultiplier
	case domain.DeliveryPriorityMedium:
		cost *= e.cfg.MediumMultiplier
	}
	return math.Round(cost*100) / 100, true
}
