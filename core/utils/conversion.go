package utils

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ToInt converts a loosely typed value to int.
// Dumps occasionally encode numbers as strings ("12") or floats (12.0);
// anything unparseable yields 0.
func ToInt(val any) int {
	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case int32:
		return int(v)
	case float64:
		return floatToInt(v)
	case float32:
		return floatToInt(float64(v))
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return int(i)
		}
		f, _ := v.Float64()
		return floatToInt(f)
	case string:
		s := strings.TrimSpace(v)
		if i, err := strconv.Atoi(s); err == nil {
			return i
		}
		f, _ := strconv.ParseFloat(s, 64)
		return floatToInt(f)
	case bool:
		if v {
			return 1
		}
		return 0
	default:
		return 0
	}
}

// floatToInt rounds f, yielding 0 for NaN, infinities and values outside the
// int range.
func floatToInt(f float64) int {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	r := math.Round(f)
	if r < math.MinInt || r >= math.MaxInt {
		return 0
	}
	return int(r)
}

// ToBool converts a loosely typed value to bool.
// Numbers are true when non-zero; strings accept "1" and "true".
func ToBool(val any) bool {
	switch v := val.(type) {
	case bool:
		return v
	case string:
		s := strings.ToLower(strings.TrimSpace(v))
		return s == "1" || s == "true"
	case nil:
		return false
	default:
		return ToInt(v) != 0
	}
}
