package control

import (
	"time"

	"github.com/ipmifan/ipmifan/internal/util"
)

// integralClampRatio bounds the accumulated integral term to a fraction of
// the available output range, preventing integral windup while the output
// saturates.
const integralClampRatio = 0.25

// Terms exposes the internals of a single controller step for diagnostic
// output.
type Terms struct {
	Error        float64 `json:"error" yaml:"error"`
	Baseline     float64 `json:"baseline" yaml:"baseline"`
	Proportional float64 `json:"proportional" yaml:"proportional"`
	Integral     float64 `json:"integral" yaml:"integral"`
	Derivative   float64 `json:"derivative" yaml:"derivative"`
	Output       float64 `json:"output" yaml:"output"`
}

// TrimController is a PID controller layered on top of the baseline response
// curve. The curve carries the bulk of the response, the PID terms trim small
// residuals around it.
//
// Sign convention: error = currentTemp - targetTemp, so a positive error
// means too hot, i.e. more cooling needed. The curve uses the same
// convention.
type TrimController struct {
	targetTemp float64
	p          float64
	i          float64
	d          float64
	minSpeed   float64
	maxSpeed   float64

	integral    float64
	lastError   float64
	lastOutput  float64
	lastTime    time.Time
	initialized bool
}

func NewTrimController(targetTemp float64, p float64, i float64, d float64, minSpeed float64, maxSpeed float64) *TrimController {
	return &TrimController{
		targetTemp: targetTemp,
		p:          p,
		i:          i,
		d:          d,
		minSpeed:   minSpeed,
		maxSpeed:   maxSpeed,
	}
}

// Step advances the controller by one sampling interval and returns the next
// fan speed percentage, always within [minSpeed, maxSpeed]. dt is the
// measured wall-clock delta between consecutive calls, so the controller
// stays correct under scheduling jitter.
func (c *TrimController) Step(currentTemp float64, now time.Time) (float64, Terms) {
	err := currentTemp - c.targetTemp
	baseline := BaselineSpeed(currentTemp, c.targetTemp, c.minSpeed, c.maxSpeed)
	proportional := c.p * err

	if !c.initialized {
		// no prior sample: zero integral and derivative contribution
		output := util.Coerce(baseline+proportional, c.minSpeed, c.maxSpeed)
		c.lastError = err
		c.lastOutput = output
		c.lastTime = now
		c.initialized = true
		return output, Terms{
			Error:        err,
			Baseline:     baseline,
			Proportional: proportional,
			Output:       output,
		}
	}

	dt := now.Sub(c.lastTime).Seconds()

	var derivative float64
	if dt > 0 {
		// don't integrate while the output saturates against the bound
		// the error is pushing towards
		integrate := true
		if c.lastOutput >= c.maxSpeed && err > 0 {
			integrate = false
		}
		if c.lastOutput <= c.minSpeed && err < 0 {
			integrate = false
		}
		if integrate {
			c.integral += c.i * err * dt
			bound := (c.maxSpeed - c.minSpeed) * integralClampRatio
			c.integral = util.Coerce(c.integral, -bound, bound)
		}

		derivative = c.d * (err - c.lastError) / dt
	}
	// dt <= 0 is a clock anomaly: integral and derivative are skipped
	// for this step

	output := util.Coerce(baseline+proportional+c.integral+derivative, c.minSpeed, c.maxSpeed)

	c.lastError = err
	c.lastOutput = output
	c.lastTime = now

	return output, Terms{
		Error:        err,
		Baseline:     baseline,
		Proportional: proportional,
		Integral:     c.integral,
		Derivative:   derivative,
		Output:       output,
	}
}
