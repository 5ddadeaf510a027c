// Package ordered provides ordered, deterministic traversal of maps.
package ordered

import "sort"

// Keys returns the keys of m in sorted order.
func Keys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Range calls fn on each entry of m in key order. It stops at the
// first error fn returns and returns that error.
func Range[V any](m map[string]V, fn func(k string, v V) error) error {
	for _, k := range Keys(m) {
		if err := fn(k, m[k]); err != nil {
			return err
		}
	}
	return nil
}
