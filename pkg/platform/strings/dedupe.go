// Package strings provides string-slice helpers shared by catalog ingestion
// and relevance scoring.
package strings

import (
	"strings"
)

// DedupeAndTrim removes duplicates and blank entries, trimming whitespace from
// each element. Order is preserved. Works for any string-backed type, so
// question-id slices can be normalized without conversion.
//
//	DedupeAndTrim([]string{"  foo ", "bar", "foo", "", "  "}) // ["foo", "bar"]
func DedupeAndTrim[S ~string](values []S) []S {
	return dedupe(values, strings.TrimSpace)
}

// DedupeAndTrimLower is like DedupeAndTrim but also lowercases each element.
func DedupeAndTrimLower[S ~string](values []S) []S {
	return dedupe(values, func(s string) string {
		return strings.ToLower(strings.TrimSpace(s))
	})
}

func dedupe[S ~string](values []S, normalize func(string) string) []S {
	if len(values) == 0 {
		return values
	}

	seen := make(map[S]struct{}, len(values))
	result := make([]S, 0, len(values))
	for _, v := range values {
		n := S(normalize(string(v)))
		if n == "" {
			continue
		}
		if _, ok := seen[n]; !ok {
			seen[n] = struct{}{}
			result = append(result, n)
		}
	}
	return result
}
