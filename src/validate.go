package main

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// fieldKind selects the validation and display formatting policy of a column.
type fieldKind int

const (
	kindDir    fieldKind = iota // dip direction, wrapped into 0-360
	kindDip                     // dip angle, 0-90
	kindAngle                   // opening angle, 0-360
	kindVector                  // eigenvalue magnitude, 0-1
	kindSense                   // shear sense token
	kindText                    // free text (stratigraphy)
)

// columnSpec describes one grid column: the JSON field it binds to, the
// header label and the field kind consulted for formatting/validation.
type columnSpec struct {
	Name  string
	Label string
	Kind  fieldKind
}

// Layer types as stored in the layers table.
const (
	LayerPlane       = "plane"
	LayerFaultPlane  = "faultplane"
	LayerLine        = "line"
	LayerSmallCircle = "smallcircle"
	LayerEigenvector = "eigenvector"
)

// layerColumns returns the column table for a layer type.
func layerColumns(layerType string) []columnSpec {
	switch layerType {
	case LayerPlane:
		return []columnSpec{
			{Name: "dir", Label: "Dir", Kind: kindDir},
			{Name: "dip", Label: "Dip", Kind: kindDip},
			{Name: "strat", Label: "Strat", Kind: kindText},
		}
	case LayerFaultPlane:
		return []columnSpec{
			{Name: "dir", Label: "Dir", Kind: kindDir},
			{Name: "dip", Label: "Dip", Kind: kindDip},
			{Name: "ldir", Label: "L-Dir", Kind: kindDir},
			{Name: "ldip", Label: "L-Dip", Kind: kindDip},
			{Name: "sense", Label: "Sense", Kind: kindSense},
		}
	case LayerLine:
		return []columnSpec{
			{Name: "dir", Label: "Dir", Kind: kindDir},
			{Name: "dip", Label: "Dip", Kind: kindDip},
			{Name: "sense", Label: "Sense", Kind: kindSense},
		}
	case LayerSmallCircle:
		return []columnSpec{
			{Name: "dir", Label: "Dir", Kind: kindDir},
			{Name: "dip", Label: "Dip", Kind: kindDip},
			{Name: "angle", Label: "Angle", Kind: kindAngle},
		}
	case LayerEigenvector:
		return []columnSpec{
			{Name: "dir", Label: "Dir", Kind: kindDir},
			{Name: "dip", Label: "Dip", Kind: kindDip},
			{Name: "value", Label: "Eigenvalue", Kind: kindVector},
		}
	}
	return nil
}

// truncate rounds a number to one decimal place for display. The stored
// value keeps full float precision.
func truncate(v float64) float64 {
	return math.Round(v*10) / 10
}

// truncateVector rounds to 3 decimal places, used for eigenvalue magnitude.
func truncateVector(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// formatValue renders a stored field value as cell text per the column kind.
func formatValue(v interface{}, kind fieldKind) string {
	switch kind {
	case kindSense, kindText:
		if s, ok := v.(string); ok {
			return s
		}
		return fmt.Sprintf("%v", v)
	}
	f := asFloat(v)
	if kind == kindVector {
		f = truncateVector(f)
	} else {
		f = truncate(f)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// asFloat coerces a JSON-decoded field value to float64.
func asFloat(v interface{}) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case string:
		f, _ := strconv.ParseFloat(t, 64)
		return f
	}
	return 0
}

// validateNumeric converts a raw cell string into a bounded float per the
// field kind. Comma decimal separators are accepted. An empty string is
// zero. Dip directions wrap into range instead of being rejected; the other
// kinds reject out-of-bounds input. Returns false when the input is invalid,
// in which case the stored value must be left unchanged.
func validateNumeric(raw string, kind fieldKind) (float64, bool) {
	if raw == "" {
		return 0, true
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
	if err != nil {
		return 0, false
	}

	switch kind {
	case kindDir:
		for v < 0 {
			v += 360
		}
		for v > 360 {
			v -= 360
		}
		return v, true
	case kindDip:
		if v < 0 || v > 90 {
			return 0, false
		}
		return v, true
	case kindVector:
		if v < 0 || v > 1 {
			return 0, false
		}
		return v, true
	case kindAngle:
		if v < 0 || v > 360 {
			return 0, false
		}
		return v, true
	}
	return 0, false
}

// senseCodes maps the numeric shorthand 0-4 onto the canonical sense tokens.
var senseCodes = []string{"uk", "up", "dn", "dex", "sin"}

// validateSense normalizes a shear-sense token. Integers 0-4 map to the
// canonical codes, known codes (and the empty string) pass through unchanged
// and everything else is rejected.
func validateSense(raw string) (string, bool) {
	if n, err := strconv.Atoi(raw); err == nil {
		if n >= 0 && n < len(senseCodes) {
			return senseCodes[n], true
		}
		return "", false
	}
	switch raw {
	case "", "uk", "up", "dn", "dex", "sin":
		return raw, true
	}
	return "", false
}

// blankFeature returns the zero-value field map for a layer type.
func blankFeature(layerType string) map[string]interface{} {
	m := map[string]interface{}{}
	for _, c := range layerColumns(layerType) {
		switch c.Kind {
		case kindSense, kindText:
			m[c.Name] = ""
		default:
			m[c.Name] = 0.0
		}
	}
	return m
}
