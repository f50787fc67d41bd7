package control

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTrimControllerFirstStepOmitsIntegralAndDerivative(t *testing.T) {
	// GIVEN
	controller := NewTrimController(60.0, 0.1, 0.02, 0.01, 30.0, 100.0)

	// WHEN
	output, terms := controller.Step(75.0, time.Now())

	// THEN
	assert.Equal(t, 15.0, terms.Error)
	assert.Zero(t, terms.Integral)
	assert.Zero(t, terms.Derivative)
	assert.InDelta(t, terms.Baseline+terms.Proportional, output, 0.001)
	assert.Greater(t, output, 30.0)
	assert.Less(t, output, 100.0)
}

func TestTrimControllerOutputStaysWithinBounds(t *testing.T) {
	// GIVEN: pathological gains that would drive the raw sum far outside
	// the allowed range
	controller := NewTrimController(60.0, 50.0, 20.0, 30.0, 30.0, 100.0)
	now := time.Now()

	// WHEN / THEN
	temps := []float64{120.0, -20.0, 120.0, 60.0, 200.0, 0.0}
	for _, temp := range temps {
		now = now.Add(30 * time.Second)
		output, _ := controller.Step(temp, now)
		assert.GreaterOrEqual(t, output, 30.0, "temp %.1f", temp)
		assert.LessOrEqual(t, output, 100.0, "temp %.1f", temp)
	}
}

func TestTrimControllerIntegralIsClamped(t *testing.T) {
	// GIVEN: sustained positive error with no derivative action
	controller := NewTrimController(60.0, 0.0, 1.0, 0.0, 30.0, 100.0)
	now := time.Now()
	bound := (100.0 - 30.0) * integralClampRatio

	// WHEN: error of +5 keeps the output below saturation, so the
	// integral keeps accumulating until the clamp kicks in
	var terms Terms
	for cycle := 0; cycle < 100; cycle++ {
		now = now.Add(30 * time.Second)
		_, terms = controller.Step(65.0, now)
	}

	// THEN
	assert.LessOrEqual(t, terms.Integral, bound)
	assert.GreaterOrEqual(t, terms.Integral, -bound)
}

func TestTrimControllerDoesNotIntegrateWhileSaturated(t *testing.T) {
	// GIVEN: error large enough to pin the output at the upper bound
	controller := NewTrimController(60.0, 0.1, 0.02, 0.0, 30.0, 100.0)
	now := time.Now()
	controller.Step(95.0, now)

	// WHEN: output is saturated high and the error keeps pushing up
	var saturated Terms
	for cycle := 0; cycle < 10; cycle++ {
		now = now.Add(30 * time.Second)
		_, saturated = controller.Step(95.0, now)
	}

	// THEN: no windup accumulated during saturation
	assert.Equal(t, 100.0, saturated.Output)
	assert.Zero(t, saturated.Integral)
}

func TestTrimControllerConvergesToMinSpeedAtTarget(t *testing.T) {
	// GIVEN
	controller := NewTrimController(60.0, 0.1, 0.02, 0.01, 30.0, 100.0)
	now := time.Now()

	// WHEN: temperature sits exactly on target for a while
	var output float64
	for cycle := 0; cycle < 20; cycle++ {
		now = now.Add(30 * time.Second)
		output, _ = controller.Step(60.0, now)
	}

	// THEN: zero error means baseline at minimum and no trim
	assert.Equal(t, 30.0, output)
}

func TestTrimControllerSkipsIntegralAndDerivativeOnClockAnomaly(t *testing.T) {
	// GIVEN
	controller := NewTrimController(60.0, 0.1, 0.02, 0.01, 30.0, 100.0)
	now := time.Now()
	controller.Step(65.0, now)

	// WHEN: the clock goes backwards between steps
	output, terms := controller.Step(70.0, now.Add(-5*time.Second))

	// THEN
	assert.Zero(t, terms.Integral)
	assert.Zero(t, terms.Derivative)
	assert.InDelta(t, terms.Baseline+terms.Proportional, output, 0.001)
}

func TestTrimControllerDerivativeDampsRisingTemperature(t *testing.T) {
	// GIVEN: derivative gain only
	controller := NewTrimController(60.0, 0.0, 0.0, 2.0, 30.0, 100.0)
	now := time.Now()
	controller.Step(62.0, now)

	// WHEN: temperature rises between samples
	_, rising := controller.Step(64.0, now.Add(10*time.Second))

	// THEN: derivative pushes the output up while the error grows
	assert.Greater(t, rising.Derivative, 0.0)

	// WHEN: temperature falls again
	_, falling := controller.Step(62.0, now.Add(20*time.Second))

	// THEN
	assert.Less(t, falling.Derivative, 0.0)
}
