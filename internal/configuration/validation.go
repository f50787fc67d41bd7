package configuration

import (
	"errors"
	"fmt"
)

func Validate() error {
	return validateConfig(&CurrentConfig)
}

func validateConfig(config *Configuration) error {
	if err := validateConnection(config); err != nil {
		return err
	}
	return validateController(&config.Controller)
}

func validateConnection(config *Configuration) error {
	if config.Port <= 0 || config.Port > 65535 {
		return fmt.Errorf("invalid port %d, must be in (1..65535)", config.Port)
	}

	switch config.Interface {
	case "lanplus", "lan":
	default:
		return fmt.Errorf("unsupported interface type '%s', use one of: lanplus | lan", config.Interface)
	}

	switch config.Output {
	case OutputTable, OutputJson, OutputYaml:
	default:
		return fmt.Errorf("unsupported output format '%s', use one of: table | json | yaml", config.Output)
	}

	return nil
}

func validateController(config *ControllerConfig) error {
	if config.MinSpeed < 0 || config.MaxSpeed > 100 {
		return errors.New("fan speed bounds must be within [0..100]")
	}
	if config.MinSpeed >= config.MaxSpeed {
		return fmt.Errorf("minimum fan speed (%.1f) must be below maximum fan speed (%.1f)", config.MinSpeed, config.MaxSpeed)
	}

	if config.Interval <= 0 {
		return errors.New("sampling interval must be > 0")
	}
	if config.Runtime < 0 {
		return errors.New("runtime must be >= 0")
	}

	if config.P == 0 && config.I == 0 && config.D == 0 {
		return errors.New("all PID constants are zero")
	}

	if config.MaxStepDelta <= 0 {
		return errors.New("maxStepDelta must be > 0")
	}
	if config.RampSteps < 0 {
		return errors.New("rampSteps must be >= 0")
	}
	if config.RampFactor <= 0 || config.RampFactor > 1 {
		return errors.New("rampFactor must be within (0..1]")
	}

	if config.FailureTolerance < 1 {
		return errors.New("failureTolerance must be >= 1")
	}

	return nil
}
