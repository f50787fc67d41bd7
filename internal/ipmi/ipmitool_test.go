package ipmi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildBaseArgsRemoteHost(t *testing.T) {
	// GIVEN
	config := Config{
		Host:      "10.0.0.120",
		Port:      623,
		Username:  "root",
		Password:  "calvin",
		Interface: "lanplus",
	}

	// WHEN
	args := buildBaseArgs(config)

	// THEN
	assert.Equal(t, []string{
		"-I", "lanplus",
		"-H", "10.0.0.120",
		"-p", "623",
		"-U", "root",
		"-P", "calvin",
	}, args)
}

func TestBuildBaseArgsLocalhost(t *testing.T) {
	// GIVEN: localhost uses the local system interface, no connection args
	config := Config{
		Host:      "localhost",
		Port:      623,
		Username:  "root",
		Password:  "calvin",
		Interface: "lanplus",
	}

	// WHEN
	args := buildBaseArgs(config)

	// THEN
	assert.Empty(t, args)
}

func TestBuildBaseArgsOmitsEmptyCredentials(t *testing.T) {
	// GIVEN
	config := Config{
		Host:      "10.0.0.120",
		Port:      623,
		Interface: "lan",
	}

	// WHEN
	args := buildBaseArgs(config)

	// THEN
	assert.NotContains(t, args, "-U")
	assert.NotContains(t, args, "-P")
}

func TestRedactArgsMasksPassword(t *testing.T) {
	// GIVEN
	args := []string{"-I", "lanplus", "-H", "10.0.0.120", "-P", "calvin", "raw", "0x30"}

	// WHEN
	redacted := redactArgs(args)

	// THEN
	assert.NotContains(t, redacted, "calvin")
	assert.Contains(t, redacted, "********")
	// the input slice must stay untouched
	assert.Contains(t, args, "calvin")
}

func TestSetFanSpeedRejectsOutOfRangePercentage(t *testing.T) {
	// GIVEN
	backend := NewToolBackend(Config{Host: "localhost"})

	// WHEN / THEN
	assert.ErrorIs(t, backend.SetFanSpeed(-1), ErrCommandFailed)
	assert.ErrorIs(t, backend.SetFanSpeed(101), ErrCommandFailed)
}
