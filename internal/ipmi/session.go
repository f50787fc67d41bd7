package ipmi

import (
	"context"
	"fmt"
	"strings"
	"time"

	goipmi "github.com/bougou/go-ipmi"
	"github.com/ipmifan/ipmifan/internal/ui"
)

// Dell OEM netfn/command bytes, same raw sequences the ipmitool backend
// issues, sent over a persistent session instead.
const (
	dellOEMNetFn         = 0x30
	dellOEMFanControlCmd = 0x30

	fanControlManual    = 0x00
	fanControlAutomatic = 0x01
	fanSpeedSelector    = 0x02
	fanSpeedAllFans     = 0xff
)

// SessionBackend drives the management controller over a persistent
// authenticated RMCP(+) session.
type SessionBackend struct {
	client  *goipmi.Client
	timeout time.Duration
	debug   bool
}

func NewSessionBackend(ctx context.Context, config Config) (*SessionBackend, error) {
	client, err := goipmi.NewClient(config.Host, config.Port, config.Username, config.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrConnection, err)
	}

	switch config.Interface {
	case "lan":
		client = client.WithInterface(goipmi.InterfaceLan)
	default:
		client = client.WithInterface(goipmi.InterfaceLanplus)
	}

	timeout := config.CommandTimeout
	if timeout <= 0 {
		timeout = defaultCommandTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err = client.Connect(connectCtx); err != nil {
		return nil, classifySessionError(err)
	}

	return &SessionBackend{
		client:  client,
		timeout: timeout,
		debug:   config.Debug,
	}, nil
}

// classifySessionError maps session setup failures onto the authentication
// and connection error kinds
func classifySessionError(err error) error {
	message := strings.ToLower(err.Error())
	if strings.Contains(message, "rakp") ||
		strings.Contains(message, "password") ||
		strings.Contains(message, "auth") {
		return fmt.Errorf("%w: %s", ErrAuthentication, err)
	}
	return fmt.Errorf("%w: %s", ErrConnection, err)
}

func (b *SessionBackend) Name() string {
	return "session"
}

func (b *SessionBackend) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), b.timeout)
}

func (b *SessionBackend) raw(name string, data ...byte) error {
	ctx, cancel := b.context()
	defer cancel()

	if b.debug {
		ui.Debug("session request %s: netfn=0x%02x cmd=0x%02x data=% 02x", name, dellOEMNetFn, dellOEMFanControlCmd, data)
	}

	response, err := b.client.RawCommand(ctx, dellOEMNetFn, dellOEMFanControlCmd, data, name)
	if err != nil {
		return fmt.Errorf("%w: %s: %s", ErrCommandFailed, name, err)
	}

	if b.debug {
		ui.Debug("session response %s: % 02x", name, response.Response)
	}
	return nil
}

func (b *SessionBackend) Probe() error {
	ctx, cancel := b.context()
	defer cancel()

	if _, err := b.client.GetDeviceID(ctx); err != nil {
		return fmt.Errorf("%w: %s", ErrConnection, err)
	}
	return nil
}

func (b *SessionBackend) ReadTemperatures() ([]TemperatureReading, error) {
	ctx, cancel := b.context()
	defer cancel()
	now := time.Now()

	sensors, err := b.client.GetSensors(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: reading sensors: %s", ErrCommandFailed, err)
	}

	var readings []TemperatureReading
	for _, sensor := range sensors {
		if sensor.SensorType != goipmi.SensorTypeTemperature {
			continue
		}
		readings = append(readings, TemperatureReading{
			ID:        fmt.Sprintf("%#02x", uint8(sensor.Number)),
			Name:      sensor.Name,
			Value:     sensor.Value,
			Unit:      "degrees C",
			Status:    "ok",
			Timestamp: now,
		})
	}
	return readings, nil
}

func (b *SessionBackend) ReadFanSpeeds() ([]FanReading, error) {
	ctx, cancel := b.context()
	defer cancel()

	sensors, err := b.client.GetSensors(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: reading sensors: %s", ErrCommandFailed, err)
	}

	var readings []FanReading
	for _, sensor := range sensors {
		if sensor.SensorType != goipmi.SensorTypeFan {
			continue
		}
		readings = append(readings, FanReading{
			ID:     fmt.Sprintf("%#02x", uint8(sensor.Number)),
			Name:   sensor.Name,
			Speed:  sensor.Value,
			Unit:   "RPM",
			Status: "ok",
		})
	}
	return readings, nil
}

func (b *SessionBackend) SetManualMode(enabled bool) error {
	if enabled {
		return b.raw("enable manual fan control", 0x01, fanControlManual)
	}
	return b.raw("enable automatic fan control", 0x01, fanControlAutomatic)
}

func (b *SessionBackend) SetFanSpeed(percent int) error {
	if percent < 0 || percent > 100 {
		return fmt.Errorf("%w: fan speed percentage must be between 0 and 100, got %d", ErrCommandFailed, percent)
	}
	return b.raw("set fan speed", fanSpeedSelector, fanSpeedAllFans, byte(percent))
}

func (b *SessionBackend) RestoreAutomaticMode() error {
	return b.SetManualMode(false)
}

func (b *SessionBackend) Close() error {
	ctx, cancel := b.context()
	defer cancel()
	return b.client.Close(ctx)
}
