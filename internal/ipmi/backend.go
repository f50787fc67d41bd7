package ipmi

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/ipmifan/ipmifan/internal/ui"
)

var (
	// ErrNoBackendAvailable indicates that neither the ipmitool nor the
	// session backend could be used.
	ErrNoBackendAvailable = errors.New("no usable IPMI backend available")
	// ErrBackendUnavailable indicates that the selected backend cannot be used,
	// e.g. because the ipmitool executable is missing.
	ErrBackendUnavailable = errors.New("IPMI backend unavailable")
	// ErrConnection indicates a failure to reach the management controller.
	ErrConnection = errors.New("connection to management controller failed")
	// ErrAuthentication indicates rejected credentials.
	ErrAuthentication = errors.New("management controller authentication failed")
	// ErrCommandFailed indicates a single failed IPMI command.
	ErrCommandFailed = errors.New("IPMI command failed")
)

// TemperatureReading is a single temperature sensor sample in degrees Celsius.
type TemperatureReading struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Value     float64   `json:"value" yaml:"value"`
	Unit      string    `json:"unit" yaml:"unit"`
	Status    string    `json:"status" yaml:"status"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// FanReading is a single fan speed sample as reported by the controller.
type FanReading struct {
	ID     string  `json:"id" yaml:"id"`
	Name   string  `json:"name" yaml:"name"`
	Speed  float64 `json:"speed" yaml:"speed"`
	Unit   string  `json:"unit" yaml:"unit"`
	Status string  `json:"status" yaml:"status"`
}

// Backend is the capability contract for issuing Dell OEM fan control
// commands and reading sensor data from a management controller.
type Backend interface {
	Name() string

	// Probe verifies that the management controller is reachable
	Probe() error

	// ReadTemperatures returns all temperature sensor readings.
	// Unparsable sensor lines are skipped, not treated as errors.
	ReadTemperatures() ([]TemperatureReading, error)

	// ReadFanSpeeds returns all fan speed readings
	ReadFanSpeeds() ([]FanReading, error)

	// SetManualMode enables (true) or disables (false) manual fan control
	SetManualMode(enabled bool) error

	// SetFanSpeed applies the given fan speed percentage (0..100).
	// Requires manual mode to be enabled.
	SetFanSpeed(percent int) error

	// RestoreAutomaticMode hands fan control back to the firmware
	RestoreAutomaticMode() error

	// Close releases the backend handle. No further commands may be
	// issued afterwards.
	Close() error
}

// Config holds the connection parameters shared by both backend variants.
type Config struct {
	Host      string
	Port      int
	Username  string
	Password  string
	Interface string

	// PreferTool selects the ipmitool backend when the executable is found
	PreferTool bool
	// Debug surfaces the raw request/response of every backend call
	Debug bool
	// CommandTimeout bounds every single backend call
	CommandTimeout time.Duration
}

// SelectBackend probes backend availability and binds the active backend for
// the process lifetime. The ipmitool variant is preferred when present on the
// execution path since it is more broadly compatible across firmware
// versions. Selection happens once, there is no mid-session switching.
func SelectBackend(ctx context.Context, config Config) (Backend, error) {
	if config.PreferTool {
		if path, err := exec.LookPath(ipmitoolExecutable); err == nil {
			ui.Debug("Using ipmitool backend: %s", path)
			return NewToolBackend(config), nil
		}
		ui.Debug("%s not found on PATH, falling back to session backend", ipmitoolExecutable)
	}

	backend, err := NewSessionBackend(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNoBackendAvailable, err)
	}
	return backend, nil
}
