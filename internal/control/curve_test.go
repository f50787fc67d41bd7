package control

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBaselineSpeedSaturatesAtMinForNonPositiveError(t *testing.T) {
	// GIVEN
	target := 60.0
	minSpeed := 30.0
	maxSpeed := 100.0

	// WHEN / THEN
	for _, temp := range []float64{-40.0, 0.0, 35.0, 59.9, 60.0} {
		result := BaselineSpeed(temp, target, minSpeed, maxSpeed)
		assert.Equal(t, minSpeed, result, "temp %.1f", temp)
	}
}

func TestBaselineSpeedSaturatesAtMaxBeyondSaturationSpan(t *testing.T) {
	// GIVEN
	target := 60.0
	minSpeed := 30.0
	maxSpeed := 100.0

	// WHEN / THEN
	for _, temp := range []float64{target + saturationSpan, target + saturationSpan + 5, 200.0} {
		result := BaselineSpeed(temp, target, minSpeed, maxSpeed)
		assert.Equal(t, maxSpeed, result, "temp %.1f", temp)
	}
}

func TestBaselineSpeedIsMonotonicallyNonDecreasing(t *testing.T) {
	// GIVEN
	target := 60.0
	minSpeed := 30.0
	maxSpeed := 100.0

	// WHEN / THEN
	previous := BaselineSpeed(target-10, target, minSpeed, maxSpeed)
	for temp := target - 10 + 0.1; temp <= target+30; temp += 0.1 {
		current := BaselineSpeed(temp, target, minSpeed, maxSpeed)
		assert.GreaterOrEqual(t, current, previous, "temp %.1f", temp)
		previous = current
	}
}

func TestBaselineSpeedIsContinuous(t *testing.T) {
	// GIVEN
	target := 60.0
	minSpeed := 30.0
	maxSpeed := 100.0
	// the curve (max-min over saturationSpan, smoothstep peak slope 1.5x)
	// cannot jump more per 0.01 degrees than this
	maxJump := 1.5 * (maxSpeed - minSpeed) / saturationSpan * 0.01 * 1.01

	// WHEN / THEN
	previous := BaselineSpeed(target-2, target, minSpeed, maxSpeed)
	for temp := target - 2 + 0.01; temp <= target+saturationSpan+2; temp += 0.01 {
		current := BaselineSpeed(temp, target, minSpeed, maxSpeed)
		assert.LessOrEqual(t, math.Abs(current-previous), maxJump, "temp %.2f", temp)
		previous = current
	}
}

func TestBaselineSpeedStaysWithinBounds(t *testing.T) {
	// GIVEN
	target := 60.0
	minSpeed := 30.0
	maxSpeed := 100.0

	// WHEN / THEN
	for temp := -50.0; temp <= 150.0; temp += 0.5 {
		result := BaselineSpeed(temp, target, minSpeed, maxSpeed)
		assert.GreaterOrEqual(t, result, minSpeed)
		assert.LessOrEqual(t, result, maxSpeed)
	}
}
