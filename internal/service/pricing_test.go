package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logistics-kit/delivery-service/internal/config"
	"github.com/logistics-kit/delivery-service/internal/domain"
)

func testPricingConfig() config.PricingConfig {
	return config.PricingConfig{
		BaseFee:          50,
		PerKgFee:         10,
		HighMultiplier:   1.5,
		MediumMultiplier: 1.2,
	}
}

func TestStandardEstimatorEstimateCost(t *testing.T) {
	estimator := NewStandardEstimator(testPricingConfig())

	cases := []struct {
		name     string
		weight   float64
		priority domain.DeliveryPriority
		want     float64
	}{
		{"low priority has no multiplier", 10, domain.DeliveryPriorityLow, 150},
		{"medium priority", 10, domain.DeliveryPriorityMedium, 180},
		{"high priority", 10, domain.DeliveryPriorityHigh, 225},
		{"fractional weight rounds to cents", 2.5, domain.DeliveryPriorityHigh, 112.5},
		{"small weight medium", 0.5, domain.DeliveryPriorityMedium, 66},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cost, ok := estimator.EstimateCost(tc.weight, tc.priority)
			require.True(t, ok)
			assert.InDelta(t, tc.want, cost, 0.001)
		})
	}
}

func TestStandardEstimatorDeclinesNonPositiveWeight(t *testing.T) {
	estimator := NewStandardEstimator(testPricingConfig())

	_, ok := estimator.EstimateCost(0, domain.DeliveryPriorityMedium)
	assert.False(t, ok)
	_, ok = estimator.EstimateCost(-3, domain.DeliveryPriorityHigh)
	assert.False(t, ok)
}

func TestCostRecorderEstimate(t *testing.T) {
	t.Run("delegates to estimator", func(t *testing.T) {
		recorder := NewCostRecorder(NewStandardEstimator(testPricingConfig()))
		estimate := recorder.Estimate(10, domain.DeliveryPriorityLow)
		require.NotNil(t, estimate)
		assert.InDelta(t, 150, *estimate, 0.001)
	})

	t.Run("nil estimator yields no estimate", func(t *testing.T) {
		recorder := NewCostRecorder(nil)
		assert.Nil(t, recorder.Estimate(10, domain.DeliveryPriorityLow))
	})

	t.Run("declined quote yields no estimate", func(t *testing.T) {
		recorder := NewCostRecorder(NewStandardEstimator(testPricingConfig()))
		assert.Nil(t, recorder.Estimate(0, domain.DeliveryPriorityLow))
	})
}

func TestCostRecorderValidateActuals(t *testing.T) {
	recorder := NewCostRecorder(nil)
	km := 12.5
	cost := 340.0
	negative := -1.0

	assert.NoError(t, recorder.ValidateActuals(ActualsInput{}))
	assert.NoError(t, recorder.ValidateActuals(ActualsInput{ActualKm: &km, ActualCost: &cost}))

	err := recorder.ValidateActuals(ActualsInput{ActualKm: &negative})
	requireDomainCode(t, err, "VALIDATION_FAILED")

	err = recorder.ValidateActuals(ActualsInput{ActualCost: &negative})
	requireDomainCode(t, err, "VALIDATION_FAILED")
}

func TestActualsInputEmpty(t *testing.T) {
	km := 1.0
	assert.True(t, ActualsInput{}.Empty())
	assert.False(t, ActualsInput{ActualKm: &km}.Empty())
	assert.False(t, ActualsInput{ActualCost: &km}.Empty())
}
