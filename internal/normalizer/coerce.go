package normalizer

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/wonny/dropscout/internal/contracts"
)

// lookup returns the first present, non-nil value among keys
func lookup(raw contracts.RawPayload, keys ...string) (interface{}, string, bool) {
	for _, k := range keys {
		if v, ok := raw[k]; ok && v != nil {
			return v, k, true
		}
	}
	return nil, "", false
}

// nested returns raw[key] as a payload when it is an object
func nested(raw contracts.RawPayload, key string) (contracts.RawPayload, bool) {
	v, ok := raw[key]
	if !ok || v == nil {
		return nil, false
	}
	switch m := v.(type) {
	case map[string]interface{}:
		return contracts.RawPayload(m), true
	case contracts.RawPayload:
		return m, true
	default:
		return nil, false
	}
}

// toFloat coerces JSON numbers, Go numerics, json.Number and numeric strings
func toFloat(field string, v interface{}) (float64, error) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, contracts.NewInvalidSignalError(field, v, "not a number")
		}
		f = parsed
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, nil
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, contracts.NewInvalidSignalError(field, v, "not a number")
		}
		f = parsed
	default:
		return 0, contracts.NewInvalidSignalError(field, v, "not a number")
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, contracts.NewInvalidSignalError(field, v, "not a finite number")
	}
	return f, nil
}

// floatField reads a float, defaulting to 0 when missing
func floatField(raw contracts.RawPayload, field string, aliases ...string) (float64, bool, error) {
	v, _, ok := lookup(raw, append([]string{field}, aliases...)...)
	if !ok {
		return 0, false, nil
	}
	f, err := toFloat(field, v)
	return f, err == nil, err
}

// intField reads a non-negative count, truncating fractional input
func intField(raw contracts.RawPayload, field string, aliases ...string) (int, bool, error) {
	f, present, err := floatField(raw, field, aliases...)
	if err != nil || !present {
		return 0, present, err
	}
	if f < 0 {
		return 0, true, contracts.NewInvalidSignalError(field, f, "must not be negative")
	}
	if f > math.MaxInt32 {
		return 0, true, contracts.NewInvalidSignalError(field, f, "out of range")
	}
	return int(f), true, nil
}

// boolField reads a flag, defaulting to false when missing
func boolField(raw contracts.RawPayload, field string, aliases ...string) (bool, error) {
	v, _, ok := lookup(raw, append([]string{field}, aliases...)...)
	if !ok {
		return false, nil
	}
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		if err != nil {
			return false, contracts.NewInvalidSignalError(field, v, "not a boolean")
		}
		return parsed, nil
	case float64, json.Number, int, int64:
		f, err := toFloat(field, b)
		if err == nil && (f == 0 || f == 1) {
			return f == 1, nil
		}
	}
	return false, contracts.NewInvalidSignalError(field, v, "not a boolean")
}

// stringField reads a string, defaulting to empty when missing
func stringField(raw contracts.RawPayload, field string, aliases ...string) (string, error) {
	v, _, ok := lookup(raw, append([]string{field}, aliases...)...)
	if !ok {
		return "", nil
	}
	s, isString := v.(string)
	if !isString {
		return "", contracts.NewInvalidSignalError(field, v, "not a string")
	}
	return s, nil
}

func trendField(raw contracts.RawPayload, field string, aliases ...string) (contracts.TrendDirection, error) {
	s, err := stringField(raw, field, aliases...)
	if err != nil {
		return "", err
	}
	trend, ok := contracts.ParseTrendDirection(s)
	if !ok {
		return "", contracts.NewInvalidSignalError(field, s, "unknown trend direction")
	}
	return trend, nil
}
