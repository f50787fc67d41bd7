package control

// Limiter bounds the magnitude of fan speed change per control step. During
// the first rampSteps steps after (re)initialization the bound is reduced by
// rampFactor, so startup never causes an abrupt speed jump even when the
// initial temperature is far from target. The limiter has no knowledge of
// temperature, it only smooths the percentage trajectory.
type Limiter struct {
	maxStepDelta float64
	rampSteps    int
	rampFactor   float64

	steps int
}

func NewLimiter(maxStepDelta float64, rampSteps int, rampFactor float64) *Limiter {
	return &Limiter{
		maxStepDelta: maxStepDelta,
		rampSteps:    rampSteps,
		rampFactor:   rampFactor,
	}
}

// Limit clamps the change from previous to proposed, regardless of sign.
func (l *Limiter) Limit(proposed float64, previous float64) float64 {
	limit := l.maxStepDelta
	if l.steps < l.rampSteps {
		limit *= l.rampFactor
	}
	l.steps++

	delta := proposed - previous
	if delta > limit {
		return previous + limit
	}
	if delta < -limit {
		return previous - limit
	}
	return proposed
}

// Reset restarts the ramp-up window
func (l *Limiter) Reset() {
	l.steps = 0
}
