package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// AsNumber returns v as a float64 when it is a numeric value. Numeric
// strings are not numbers here.
func AsNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n)
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// LooseEqual compares two answer values. Numbers compare numerically, a
// number and a numeric string compare numerically, everything else compares
// by its string form. nil equals only nil.
func LooseEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	af, aNum := AsNumber(a)
	bf, bNum := AsNumber(b)
	switch {
	case aNum && bNum:
		return af == bf
	case aNum:
		if f, err := strconv.ParseFloat(strings.TrimSpace(Stringify(b)), 64); err == nil {
			return af == f
		}
		return false
	case bNum:
		if f, err := strconv.ParseFloat(strings.TrimSpace(Stringify(a)), 64); err == nil {
			return bf == f
		}
		return false
	}
	if _, ok := a.([]any); ok {
		return false
	}
	return Stringify(a) == Stringify(b)
}

// Contains reports membership for list values and substring containment for
// string values. Any other container, or a nil needle, is not comparable.
func Contains(container, v any) (bool, bool) {
	if v == nil {
		return false, false
	}
	switch c := container.(type) {
	case []any:
		for _, item := range c {
			if LooseEqual(item, v) {
				return true, true
			}
		}
		return false, true
	case []string:
		for _, item := range c {
			if LooseEqual(item, v) {
				return true, true
			}
		}
		return false, true
	case string:
		return strings.Contains(c, Stringify(v)), true
	}
	return false, false
}

// Stringify renders a scalar answer value the way it was authored.
func Stringify(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	}
	return fmt.Sprint(v)
}
