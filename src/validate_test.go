package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		in       float64
		expected float64
	}{
		{name: "Rounds down", in: 45.44, expected: 45.4},
		{name: "Rounds up", in: 45.45, expected: 45.5},
		{name: "Integer unchanged", in: 90, expected: 90},
		{name: "Zero", in: 0, expected: 0},
		{name: "Negative", in: -12.34, expected: -12.3},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.expected, truncate(tt.in), 1e-9)
		})
	}
}

func TestTruncate_PreservesOrder(t *testing.T) {
	t.Parallel()

	// rounding to one decimal keeps sign and magnitude order for dip values
	prev := truncate(0)
	for x := 0.0; x <= 90.0; x += 0.7 {
		cur := truncate(x)
		assert.GreaterOrEqual(t, cur, prev, "order broken at %v", x)
		assert.GreaterOrEqual(t, cur, 0.0)
		prev = cur
	}
}

func TestTruncateVector(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 0.333, truncateVector(1.0/3.0), 1e-9)
	assert.InDelta(t, 0.667, truncateVector(2.0/3.0), 1e-9)
	assert.InDelta(t, 1, truncateVector(1), 1e-9)
}

func TestValidateNumeric(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		raw      string
		kind     fieldKind
		expected float64
		ok       bool
	}{
		{name: "Empty dir is zero", raw: "", kind: kindDir, expected: 0, ok: true},
		{name: "Empty dip is zero", raw: "", kind: kindDip, expected: 0, ok: true},
		{name: "Dir in range", raw: "120", kind: kindDir, expected: 120, ok: true},
		{name: "Dir overflow wraps", raw: "370", kind: kindDir, expected: 10, ok: true},
		{name: "Dir double overflow wraps", raw: "730", kind: kindDir, expected: 10, ok: true},
		{name: "Dir negative wraps", raw: "-10", kind: kindDir, expected: 350, ok: true},
		{name: "Dir unparsable", raw: "-", kind: kindDir, ok: false},
		{name: "Dip decimal comma", raw: "45,5", kind: kindDip, expected: 45.5, ok: true},
		{name: "Dip upper bound", raw: "90", kind: kindDip, expected: 90, ok: true},
		{name: "Dip out of bounds", raw: "95", kind: kindDip, ok: false},
		{name: "Dip negative rejected", raw: "-5", kind: kindDip, ok: false},
		{name: "Dip garbage", raw: "abc", kind: kindDip, ok: false},
		{name: "Vector in range", raw: "0.25", kind: kindVector, expected: 0.25, ok: true},
		{name: "Vector comma", raw: "0,25", kind: kindVector, expected: 0.25, ok: true},
		{name: "Vector out of bounds", raw: "1.5", kind: kindVector, ok: false},
		{name: "Angle in range", raw: "355", kind: kindAngle, expected: 355, ok: true},
		{name: "Angle upper bound", raw: "360", kind: kindAngle, expected: 360, ok: true},
		{name: "Angle out of bounds", raw: "361", kind: kindAngle, ok: false},
		{name: "Angle negative rejected", raw: "-1", kind: kindAngle, ok: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			v, ok := validateNumeric(tt.raw, tt.kind)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.expected, v, 1e-9)
			}
		})
	}
}

func TestValidateNumeric_RoundTripStability(t *testing.T) {
	t.Parallel()

	// formatting an in-range value and validating it again must not move it
	for _, kind := range []fieldKind{kindDir, kindDip} {
		for x := 0.0; x <= 90.0; x += 1.3 {
			text := formatValue(x, kind)
			v, ok := validateNumeric(text, kind)
			assert.True(t, ok, "format output rejected for %v", x)
			assert.InDelta(t, truncate(x), v, 1e-9)
		}
	}
}

func TestValidateSense(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		raw      string
		expected string
		ok       bool
	}{
		{name: "Index zero", raw: "0", expected: "uk", ok: true},
		{name: "Index one", raw: "1", expected: "up", ok: true},
		{name: "Index two", raw: "2", expected: "dn", ok: true},
		{name: "Index three", raw: "3", expected: "dex", ok: true},
		{name: "Index four", raw: "4", expected: "sin", ok: true},
		{name: "Index out of range", raw: "9", ok: false},
		{name: "Negative index", raw: "-1", ok: false},
		{name: "Code passes through", raw: "dex", expected: "dex", ok: true},
		{name: "Empty passes through", raw: "", expected: "", ok: true},
		{name: "Unknown token", raw: "xyz", ok: false},
		{name: "Case sensitive", raw: "DEX", ok: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s, ok := validateSense(tt.raw)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, s)
			}
		})
	}
}

func TestFormatValue(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "45.5", formatValue(45.46, kindDip))
	assert.Equal(t, "10", formatValue(10.04, kindDir))
	assert.Equal(t, "0.333", formatValue(1.0/3.0, kindVector))
	assert.Equal(t, "dex", formatValue("dex", kindSense))
	assert.Equal(t, "silt", formatValue("silt", kindText))
	// JSON-decoded rows may briefly carry strings in numeric columns
	assert.Equal(t, "12.3", formatValue("12.34", kindDip))
}

func TestLayerColumns(t *testing.T) {
	t.Parallel()

	tests := []struct {
		layerType string
		count     int
		lastKind  fieldKind
	}{
		{LayerPlane, 3, kindText},
		{LayerFaultPlane, 5, kindSense},
		{LayerLine, 3, kindSense},
		{LayerSmallCircle, 3, kindAngle},
		{LayerEigenvector, 3, kindVector},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.layerType, func(t *testing.T) {
			t.Parallel()
			cols := layerColumns(tt.layerType)
			assert.Len(t, cols, tt.count)
			assert.Equal(t, tt.lastKind, cols[len(cols)-1].Kind)
			// every grid starts with dip direction then dip
			assert.Equal(t, kindDir, cols[0].Kind)
			assert.Equal(t, kindDip, cols[1].Kind)
		})
	}

	assert.Nil(t, layerColumns("bogus"))
}

func TestBlankFeature(t *testing.T) {
	t.Parallel()

	m := blankFeature(LayerFaultPlane)
	assert.Len(t, m, 5)
	assert.Equal(t, 0.0, m["dir"])
	assert.Equal(t, 0.0, m["ldip"])
	assert.Equal(t, "", m["sense"])

	m = blankFeature(LayerPlane)
	assert.Equal(t, "", m["strat"])
}
