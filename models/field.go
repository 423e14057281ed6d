package models

import (
	"math"
	"strconv"
	"strings"
)

// Field describes one entity field: its wire/rendering name and Go type.
type Field struct {
	Name string
	Type string
}

// FieldNames returns the names of fields in order.
func FieldNames(fields []Field) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}

func formatInt(v int) string { return strconv.Itoa(v) }

func formatString(v string) string { return v }

// formatFloat always keeps a fractional part so 100 renders as "100.0".
func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return s
	}
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}

// equalFloat orders floats the way a total comparison does: NaN equals NaN
// and 0 differs from -0.
func equalFloat(a, b float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.IsNaN(a) && math.IsNaN(b)
	}
	return a == b && math.Signbit(a) == math.Signbit(b)
}
