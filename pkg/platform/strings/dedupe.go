// Package strings provides small collection helpers for request normalization.
package strings

// Dedupe removes repeated values while keeping first-seen order.
// Nil and empty inputs are returned unchanged.
func Dedupe[T comparable](values []T) []T {
	if len(values) == 0 {
		return values
	}
	seen := make(map[T]struct{}, len(values))
	result := make([]T, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}
	return result
}
