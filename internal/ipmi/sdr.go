package ipmi

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Dell sdr output is a fixed-format pipe separated table, e.g.
//
//	Inlet Temp       | 04h | ok  |  7.1 | 21 degrees C
//	Fan1 RPM         | 30h | ok  |  7.1 | 3240 RPM
//
// Firmware variations are common, so unparsable lines are skipped instead of
// failing the whole read.
var (
	sdrTemperatureRegex = regexp.MustCompile(`^(.*?)\s*\|\s*(\w+h?)\s*\|\s*(\w+)\s*\|\s*[\d.]+\s*\|\s*([\d.]+)\s+degrees\s+([CF])`)
	sdrFanRegex         = regexp.MustCompile(`^(.*?)\s*\|\s*(\w+h?)\s*\|\s*(\w+)\s*\|\s*[\d.]+\s*\|\s*([\d.]+)\s+(\w+)`)

	// alternative "sensor reading" format: "Inlet Temp : 21"
	sensorReadingRegex = regexp.MustCompile(`^(.*?)\s*:\s*([\d.]+)\s*$`)

	sensorValueWithUnitRegex = regexp.MustCompile(`([\d.]+)\s*(\w+)`)
)

func parseSdrTemperatures(output string, now time.Time) []TemperatureReading {
	var readings []TemperatureReading
	for _, line := range strings.Split(output, "\n") {
		match := sdrTemperatureRegex.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		value, err := strconv.ParseFloat(match[4], 64)
		if err != nil {
			continue
		}
		readings = append(readings, TemperatureReading{
			ID:        match[2],
			Name:      strings.TrimSpace(match[1]),
			Value:     value,
			Unit:      "degrees " + match[5],
			Status:    match[3],
			Timestamp: now,
		})
	}
	return readings
}

func parseSdrFans(output string) []FanReading {
	var readings []FanReading
	for _, line := range strings.Split(output, "\n") {
		match := sdrFanRegex.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		speed, err := strconv.ParseFloat(match[4], 64)
		if err != nil {
			continue
		}
		readings = append(readings, FanReading{
			ID:     match[2],
			Name:   strings.TrimSpace(match[1]),
			Speed:  speed,
			Unit:   match[5],
			Status: match[3],
		})
	}
	return readings
}

func parseSensorReadingTemperatures(output string, now time.Time) []TemperatureReading {
	var readings []TemperatureReading
	for _, line := range strings.Split(output, "\n") {
		lower := strings.ToLower(line)
		if !strings.Contains(lower, "temp") && !strings.Contains(lower, "ambient") {
			continue
		}
		match := sensorReadingRegex.FindStringSubmatch(strings.TrimSpace(line))
		if match == nil {
			continue
		}
		value, err := strconv.ParseFloat(match[2], 64)
		if err != nil {
			continue
		}
		readings = append(readings, TemperatureReading{
			ID:        "temp" + strconv.Itoa(len(readings)+1),
			Name:      strings.TrimSpace(match[1]),
			Value:     value,
			Unit:      "degrees C",
			Status:    "ok",
			Timestamp: now,
		})
	}
	return readings
}

func parseSensorReadingFans(output string) []FanReading {
	var readings []FanReading
	for _, line := range strings.Split(output, "\n") {
		lower := strings.ToLower(line)
		if !strings.Contains(lower, "fan") && !strings.Contains(lower, "rpm") {
			continue
		}

		parts := strings.Split(line, "|")
		if len(parts) < 3 {
			continue
		}
		match := sensorValueWithUnitRegex.FindStringSubmatch(parts[2])
		if match == nil {
			continue
		}
		speed, err := strconv.ParseFloat(match[1], 64)
		if err != nil {
			continue
		}
		readings = append(readings, FanReading{
			ID:     "fan" + strconv.Itoa(len(readings)+1),
			Name:   strings.TrimSpace(parts[0]),
			Speed:  speed,
			Unit:   match[2],
			Status: "ok",
		})
	}
	return readings
}
