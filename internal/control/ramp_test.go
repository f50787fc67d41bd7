package control

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLimiterBoundsStepDelta(t *testing.T) {
	// GIVEN
	limiter := NewLimiter(10.0, 0, 0.5)

	// WHEN / THEN
	assert.Equal(t, 40.0, limiter.Limit(100.0, 30.0))
	assert.Equal(t, 30.0, limiter.Limit(0.0, 40.0))
	assert.Equal(t, 33.0, limiter.Limit(33.0, 30.0))
}

func TestLimiterReducesDeltaDuringRampUp(t *testing.T) {
	// GIVEN: half the usual step limit for the first three steps
	limiter := NewLimiter(10.0, 3, 0.5)

	// WHEN / THEN: 5 percent per step while ramping, 10 afterwards
	assert.Equal(t, 35.0, limiter.Limit(100.0, 30.0))
	assert.Equal(t, 40.0, limiter.Limit(100.0, 35.0))
	assert.Equal(t, 45.0, limiter.Limit(100.0, 40.0))
	assert.Equal(t, 55.0, limiter.Limit(100.0, 45.0))
}

func TestLimiterNeverExceedsMaxStepDelta(t *testing.T) {
	// GIVEN
	limiter := NewLimiter(10.0, 5, 0.5)
	previous := 30.0

	// WHEN / THEN: wildly oscillating proposals still move at most
	// maxStepDelta per step
	proposals := []float64{100.0, 0.0, 100.0, 0.0, 75.0, 30.0, 90.0, 10.0}
	for _, proposed := range proposals {
		next := limiter.Limit(proposed, previous)
		assert.LessOrEqual(t, math.Abs(next-previous), 10.0, "proposed %.1f", proposed)
		previous = next
	}
}

func TestLimiterResetRestartsRampWindow(t *testing.T) {
	// GIVEN: a limiter past its ramp-up window
	limiter := NewLimiter(10.0, 2, 0.5)
	limiter.Limit(100.0, 30.0)
	limiter.Limit(100.0, 35.0)
	assert.Equal(t, 50.0, limiter.Limit(100.0, 40.0))

	// WHEN
	limiter.Reset()

	// THEN: the reduced limit applies again
	assert.Equal(t, 55.0, limiter.Limit(100.0, 50.0))
}

func TestLimiterPassesSmallChangesThrough(t *testing.T) {
	// GIVEN
	limiter := NewLimiter(10.0, 0, 0.5)

	// WHEN
	result := limiter.Limit(52.5, 50.0)

	// THEN
	assert.Equal(t, 52.5, result)
}
