// Package normalization maps loosely written configuration strings onto
// closed sets of typed values.
package normalization

import (
	"fmt"
	"sort"
	"strings"
)

// Normalizer maps case-folded, trimmed strings to values of T.
type Normalizer[T comparable] struct {
	name     string
	values   map[string]T
	fallback T
	keys     []string
}

// New creates a normalizer named name (used in errors) with a fallback for
// unknown input.
func New[T comparable](name string, values map[string]T, fallback T) *Normalizer[T] {
	n := &Normalizer[T]{
		name:     name,
		values:   make(map[string]T, len(values)),
		fallback: fallback,
		keys:     make([]string, 0, len(values)),
	}
	for k, v := range values {
		k = clean(k)
		n.values[k] = v
		n.keys = append(n.keys, k)
	}
	sort.Strings(n.keys)
	return n
}

func clean(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// Normalize returns the value for raw or the fallback.
func (n *Normalizer[T]) Normalize(raw string) T {
	if v, ok := n.values[clean(raw)]; ok {
		return v
	}
	return n.fallback
}

// NormalizeWithError returns the value for raw or an error listing the
// accepted spellings.
func (n *Normalizer[T]) NormalizeWithError(raw string) (T, error) {
	if v, ok := n.values[clean(raw)]; ok {
		return v, nil
	}
	var zero T
	return zero, fmt.Errorf("invalid %s %q, valid options: %v", n.name, raw, n.keys)
}

// Keys returns the accepted spellings in ascending order.
func (n *Normalizer[T]) Keys() []string {
	return append([]string(nil), n.keys...)
}
