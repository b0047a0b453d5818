package domain

import (
	"math"
	"strconv"
	"strings"
)

// ValueStatus tags the outcome of coercing a raw cell to a number.
type ValueStatus int

// ValueStatus values
const (
	ValueOK ValueStatus = iota
	ValueMissing
	ValueInvalid
)

// String returns the status label.
func (s ValueStatus) String() string {
	switch s {
	case ValueOK:
		return "ok"
	case ValueMissing:
		return "missing"
	case ValueInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// MetricValue is the parse result of one raw metric cell.
// Value is meaningful only when Status is ValueOK.
type MetricValue struct {
	Value  float64
	Status ValueStatus
	Raw    string
}

// OK reports whether the cell parsed to a number.
func (v MetricValue) OK() bool {
	return v.Status == ValueOK
}

// OrZero returns the parsed value, or 0 for missing and invalid cells.
func (v MetricValue) OrZero() float64 {
	if v.Status != ValueOK {
		return 0
	}
	return v.Value
}

// missingMarkers are cell texts that mean "no value" rather than "bad value".
var missingMarkers = map[string]struct{}{
	"":    {},
	"-":   {},
	"nan": {},
	"n/a": {},
	"na":  {},
}

// ParseMetric coerces a raw cell to a number, stripping one trailing percent sign.
// Empty cells and placeholder markers are ValueMissing; anything else that does not
// parse to a finite number is ValueInvalid.
func ParseMetric(raw string) MetricValue {
	text := strings.TrimSpace(raw)
	if _, ok := missingMarkers[strings.ToLower(text)]; ok {
		return MetricValue{Status: ValueMissing, Raw: raw}
	}

	text = strings.TrimSpace(strings.TrimSuffix(text, "%"))
	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return MetricValue{Status: ValueInvalid, Raw: raw}
	}
	return MetricValue{Value: v, Status: ValueOK, Raw: raw}
}
