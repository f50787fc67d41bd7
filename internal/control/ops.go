package control

import (
	"github.com/ipmifan/ipmifan/internal/ipmi"
)

// Snapshot is the current fan and temperature state of the hardware
type Snapshot struct {
	Temperatures []ipmi.TemperatureReading `json:"temperatures" yaml:"temperatures"`
	Fans         []ipmi.FanReading         `json:"fans" yaml:"fans"`
}

// ReadStatus reads a fan and temperature snapshot through the given backend
func ReadStatus(backend ipmi.Backend) (Snapshot, error) {
	temps, err := backend.ReadTemperatures()
	if err != nil {
		return Snapshot{}, err
	}

	fans, err := backend.ReadFanSpeeds()
	if err != nil {
		return Snapshot{}, err
	}

	return Snapshot{
		Temperatures: temps,
		Fans:         fans,
	}, nil
}

// SetFanSpeedOnce enables manual mode and applies a single fan speed command
func SetFanSpeedOnce(backend ipmi.Backend, percent int) error {
	if err := backend.SetManualMode(true); err != nil {
		return err
	}
	return backend.SetFanSpeed(percent)
}

// EnableAutomaticMode hands fan control back to the firmware
func EnableAutomaticMode(backend ipmi.Backend) error {
	return backend.RestoreAutomaticMode()
}
