package util

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestCoerce(t *testing.T) {
	// GIVEN
	min := 30.0
	max := 100.0

	// WHEN
	below := Coerce(10.0, min, max)
	inside := Coerce(55.5, min, max)
	above := Coerce(140.0, min, max)

	// THEN
	assert.Equal(t, min, below)
	assert.Equal(t, 55.5, inside)
	assert.Equal(t, max, above)
}

func TestAvg(t *testing.T) {
	// GIVEN
	values := []float64{10.0, 20.0, 30.0}

	// WHEN
	result := Avg(values)

	// THEN
	assert.Equal(t, 20.0, result)
}

func TestMax(t *testing.T) {
	// GIVEN
	values := []float64{41.0, 67.0, 52.0}

	// WHEN
	result := Max(values)

	// THEN
	assert.Equal(t, 67.0, result)
}

func TestRatio(t *testing.T) {
	// GIVEN
	a := 0.0
	b := 100.0
	c := 50.0

	// WHEN
	result := Ratio(c, a, b)

	// THEN
	assert.Equal(t, 0.5, result)
}
