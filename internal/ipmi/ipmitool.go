package ipmi

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/ipmifan/ipmifan/internal/ui"
	"github.com/ipmifan/ipmifan/internal/util"
)

const (
	ipmitoolExecutable = "ipmitool"

	defaultCommandTimeout = 10 * time.Second
)

// Dell OEM raw byte sequences for manual fan control.
// The speed command takes the percentage as a trailing hex byte.
var (
	rawEnableManualControl = []string{"raw", "0x30", "0x30", "0x01", "0x00"}
	rawEnableAutoControl   = []string{"raw", "0x30", "0x30", "0x01", "0x01"}
	rawSetFanSpeed         = []string{"raw", "0x30", "0x30", "0x02", "0xff"}
)

// probeCommands are tried in order of preference, the simplest and most
// widely supported commands first.
var probeCommands = [][]string{
	{"chassis", "status"},
	{"sensor", "reading"},
	{"sdr", "list"},
	{"mc", "info"},
}

// ToolBackend drives the management controller by spawning one ipmitool
// subprocess per operation.
type ToolBackend struct {
	baseArgs []string
	timeout  time.Duration
	debug    bool
}

func NewToolBackend(config Config) *ToolBackend {
	timeout := config.CommandTimeout
	if timeout <= 0 {
		timeout = defaultCommandTimeout
	}
	return &ToolBackend{
		baseArgs: buildBaseArgs(config),
		timeout:  timeout,
		debug:    config.Debug,
	}
}

// buildBaseArgs computes the connection arguments prepended to every
// ipmitool invocation. For localhost the local system interface is used and
// no connection parameters are passed at all.
func buildBaseArgs(config Config) []string {
	var args []string

	if config.Host != "" && config.Host != "localhost" {
		args = append(args, "-I", config.Interface, "-H", config.Host, "-p", strconv.Itoa(config.Port))
		if config.Username != "" {
			args = append(args, "-U", config.Username)
		}
		if config.Password != "" {
			args = append(args, "-P", config.Password)
		}
	}

	return args
}

func (b *ToolBackend) Name() string {
	return "ipmitool"
}

func (b *ToolBackend) run(args ...string) (string, error) {
	if _, err := exec.LookPath(ipmitoolExecutable); err != nil {
		return "", fmt.Errorf("%w: %s", ErrBackendUnavailable, err)
	}

	fullArgs := append(append([]string{}, b.baseArgs...), args...)
	if b.debug {
		ui.Debug("ipmitool request: %s", strings.Join(redactArgs(fullArgs), " "))
	}

	output, err := util.SafeCmdExecution(ipmitoolExecutable, fullArgs, b.timeout)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrCommandFailed, err)
	}

	if b.debug {
		ui.Debug("ipmitool response: %s", output)
	}
	return output, nil
}

// redactArgs masks the password argument for diagnostic output
func redactArgs(args []string) []string {
	redacted := append([]string{}, args...)
	for i, arg := range redacted {
		if arg == "-P" && i+1 < len(redacted) {
			redacted[i+1] = "********"
		}
	}
	return redacted
}

func (b *ToolBackend) Probe() error {
	var lastErr error
	for _, command := range probeCommands {
		output, err := b.run(command...)
		if err != nil {
			lastErr = err
			continue
		}
		if strings.TrimSpace(output) != "" {
			return nil
		}
	}
	if lastErr == nil {
		lastErr = ErrCommandFailed
	}
	return fmt.Errorf("%w: could not reach management controller: %s", ErrConnection, lastErr)
}

func (b *ToolBackend) ReadTemperatures() ([]TemperatureReading, error) {
	now := time.Now()

	output, err := b.run("sdr", "type", "temperature")
	if err == nil {
		return parseSdrTemperatures(output, now), nil
	}

	// some Dell firmware versions do not support "sdr type", fall back to
	// the plain sensor reading output
	output, err = b.run("sensor", "reading")
	if err != nil {
		return nil, err
	}
	return parseSensorReadingTemperatures(output, now), nil
}

func (b *ToolBackend) ReadFanSpeeds() ([]FanReading, error) {
	output, err := b.run("sdr", "type", "fan")
	if err == nil {
		return parseSdrFans(output), nil
	}

	output, err = b.run("sensor", "reading")
	if err != nil {
		return nil, err
	}
	return parseSensorReadingFans(output), nil
}

func (b *ToolBackend) SetManualMode(enabled bool) error {
	command := rawEnableManualControl
	if !enabled {
		command = rawEnableAutoControl
	}
	_, err := b.run(command...)
	return err
}

func (b *ToolBackend) SetFanSpeed(percent int) error {
	if percent < 0 || percent > 100 {
		return fmt.Errorf("%w: fan speed percentage must be between 0 and 100, got %d", ErrCommandFailed, percent)
	}

	args := append(append([]string{}, rawSetFanSpeed...), fmt.Sprintf("0x%02x", percent))
	_, err := b.run(args...)
	return err
}

func (b *ToolBackend) RestoreAutomaticMode() error {
	return b.SetManualMode(false)
}

func (b *ToolBackend) Close() error {
	// subprocess based, nothing to release
	return nil
}
