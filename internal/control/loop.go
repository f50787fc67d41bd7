package control

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/asecurityteam/rolling"
	"github.com/ipmifan/ipmifan/internal/ipmi"
	"github.com/ipmifan/ipmifan/internal/ui"
	"github.com/ipmifan/ipmifan/internal/util"
)

const temperatureWindowSize = 10

// State describes the control loop lifecycle
type State int

const (
	StateStarting State = iota
	StateSampling
	StateApplying
	StateSleeping
	StateStopping
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateSampling:
		return "sampling"
	case StateApplying:
		return "applying"
	case StateSleeping:
		return "sleeping"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	}
	return "unknown"
}

// SessionConfig holds the resolved parameters of one control run.
type SessionConfig struct {
	TargetTemp float64
	Interval   time.Duration

	P float64
	I float64
	D float64

	MinSpeed float64
	MaxSpeed float64

	MaxStepDelta float64
	RampSteps    int
	RampFactor   float64

	// FailureTolerance is the number of consecutive failed cycles the loop
	// absorbs before terminating with a fatal error
	FailureTolerance int

	// Runtime optionally bounds the total duration of the run, 0 means
	// run until cancelled
	Runtime time.Duration

	// AutoRestore hands fan control back to the firmware when the loop stops
	AutoRestore bool
}

// Status carries the plain structured values of one control cycle. Rendering
// is up to the caller.
type Status struct {
	Temperature    float64 `json:"temperature" yaml:"temperature"`
	AverageTemp    float64 `json:"averageTemp" yaml:"averageTemp"`
	TargetTemp     float64 `json:"targetTemp" yaml:"targetTemp"`
	AppliedPercent int     `json:"appliedPercent" yaml:"appliedPercent"`
	Terms          Terms   `json:"terms" yaml:"terms"`
}

type StatusCallback func(status Status)

// Loop runs the periodic sample-compute-apply-sleep cycle against a single
// backend handle, which it owns exclusively for the session lifetime.
type Loop struct {
	backend  ipmi.Backend
	config   SessionConfig
	trimmer  *TrimController
	limiter  *Limiter
	window   *rolling.PointPolicy
	callback StatusCallback

	state       State
	lastTemp    float64
	haveTemp    bool
	lastApplied float64

	// read and apply failures are counted separately so that a working
	// apply path can never mask a permanently dead temperature path
	readFailures  int
	applyFailures int
}

func NewLoop(backend ipmi.Backend, config SessionConfig, callback StatusCallback) *Loop {
	return &Loop{
		backend:  backend,
		config:   config,
		trimmer:  NewTrimController(config.TargetTemp, config.P, config.I, config.D, config.MinSpeed, config.MaxSpeed),
		limiter:  NewLimiter(config.MaxStepDelta, config.RampSteps, config.RampFactor),
		window:   util.CreateRollingWindow(temperatureWindowSize),
		callback: callback,
		state:    StateStarting,
	}
}

// State returns the current lifecycle state of the loop
func (l *Loop) State() State {
	return l.state
}

// Run executes the control loop until the context is cancelled, the optional
// runtime bound elapses, or the consecutive failure tolerance is exceeded.
// On exit the hardware is restored to automatic mode when configured, and the
// backend handle is released.
func (l *Loop) Run(ctx context.Context) error {
	if err := l.backend.SetManualMode(true); err != nil {
		if closeErr := l.backend.Close(); closeErr != nil {
			ui.Warning("Failed to release backend: %v", closeErr)
		}
		l.state = StateStopped
		return fmt.Errorf("enabling manual fan control: %w", err)
	}

	if l.config.Runtime > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.config.Runtime)
		defer cancel()
	}

	// the hardware is in manual mode from here on, make sure we never
	// leave it behind silently
	defer l.stop()

	// until the first successful sample the minimum speed is the safest
	// assumption for the previously applied value
	l.lastApplied = l.config.MinSpeed

	for {
		l.state = StateSampling
		temp, sampled, err := l.sample()
		if err != nil {
			return err
		}

		if sampled {
			l.state = StateApplying
			if err = l.apply(temp); err != nil {
				return err
			}
		}

		l.state = StateSleeping
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(l.config.Interval):
		}
	}
}

// sample reads all temperature sensors and reduces them to the hottest
// reading. A failed read is retried once immediately; if the retry fails too,
// the last known temperature is reused for this cycle. Only when no
// temperature was ever read does the cycle yield no sample at all.
func (l *Loop) sample() (temp float64, sampled bool, err error) {
	readings, readErr := l.backend.ReadTemperatures()
	if readErr != nil {
		ui.Debug("Temperature read failed, retrying: %v", readErr)
		readings, readErr = l.backend.ReadTemperatures()
	}

	if readErr != nil || len(readings) == 0 {
		if readErr == nil {
			readErr = fmt.Errorf("no temperature readings returned")
		}
		l.readFailures++
		if l.readFailures > l.config.FailureTolerance {
			return 0, false, fmt.Errorf("aborting after %d consecutive failed temperature reads, last error: %w", l.readFailures, readErr)
		}

		if !l.haveTemp {
			ui.Warning("Temperature read failed and no previous reading exists, skipping cycle: %v", readErr)
			return 0, false, nil
		}
		ui.Warning("Temperature read failed, reusing last known temperature %.1f: %v", l.lastTemp, readErr)
		return l.lastTemp, true, nil
	}

	values := make([]float64, 0, len(readings))
	for _, reading := range readings {
		values = append(values, reading.Value)
	}
	// bias towards the hottest component
	temp = util.Max(values)

	l.readFailures = 0
	l.lastTemp = temp
	l.haveTemp = true
	l.window.Append(temp)

	return temp, true, nil
}

// apply computes the next fan speed target and issues it. Apply failures are
// non-fatal for the cycle (the previous applied value is kept) until the
// consecutive failure tolerance is exceeded.
func (l *Loop) apply(temp float64) error {
	now := time.Now()
	proposed, terms := l.trimmer.Step(temp, now)
	applied := l.limiter.Limit(proposed, l.lastApplied)
	percent := int(math.Round(applied))

	err := l.backend.SetFanSpeed(percent)
	if err != nil {
		ui.Debug("Applying fan speed failed, retrying: %v", err)
		err = l.backend.SetFanSpeed(percent)
	}
	if err != nil {
		l.applyFailures++
		if l.applyFailures > l.config.FailureTolerance {
			return fmt.Errorf("aborting after %d consecutive failed fan speed commands, last error: %w", l.applyFailures, err)
		}
		ui.Warning("Applying fan speed failed, keeping previous value %.1f: %v", l.lastApplied, err)
		return nil
	}

	l.applyFailures = 0
	l.lastApplied = applied

	if l.callback != nil {
		l.callback(Status{
			Temperature:    temp,
			AverageTemp:    util.GetWindowAvg(l.window),
			TargetTemp:     l.config.TargetTemp,
			AppliedPercent: percent,
			Terms:          terms,
		})
	}
	return nil
}

// stop restores automatic fan control (best effort) and releases the backend
// handle.
func (l *Loop) stop() {
	l.state = StateStopping

	if l.config.AutoRestore {
		ui.Info("Restoring automatic fan control...")
		if err := l.backend.RestoreAutomaticMode(); err != nil {
			ui.Warning("Failed to restore automatic fan control: %v", err)
		} else {
			ui.Success("Automatic fan control restored")
		}
	}

	if err := l.backend.Close(); err != nil {
		ui.Warning("Failed to release backend: %v", err)
	}
	l.state = StateStopped
}
