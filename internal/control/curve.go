package control

// saturationSpan is the temperature error (in degrees Celsius above the
// target) at which the baseline curve saturates at maxSpeed.
const saturationSpan = 20.0

// BaselineSpeed maps the temperature error (currentTemp - targetTemp) to a
// baseline fan speed percentage. The mapping is a smoothstep polynomial:
// continuous, monotonically non-decreasing, minSpeed for error <= 0 and
// maxSpeed once the error reaches saturationSpan. The trim controller only
// has to correct small residuals on top of this.
func BaselineSpeed(currentTemp float64, targetTemp float64, minSpeed float64, maxSpeed float64) float64 {
	err := currentTemp - targetTemp
	if err <= 0 {
		return minSpeed
	}
	if err >= saturationSpan {
		return maxSpeed
	}

	t := err / saturationSpan
	scale := t * t * (3 - 2*t)
	return minSpeed + scale*(maxSpeed-minSpeed)
}
