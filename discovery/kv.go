package discovery

import "fmt"

// typedValue fetches key from m and asserts it is a T. Both Meta (per-node
// annotations) and Config (provider setup) are loosely-typed string-keyed
// maps populated from places that don't carry Go's type system — env vars,
// flags, a service registry's key/value store — so both need the same
// "fetch and assert" shape; this is the one implementation they share.
func typedValue[T any](m map[string]any, key string) (T, error) {
	var zero T
	raw, ok := m[key]
	if !ok {
		return zero, fmt.Errorf("key=%s not found", key)
	}
	typed, ok := raw.(T)
	if !ok {
		return zero, fmt.Errorf("key=%s is not a %T", key, zero)
	}
	return typed, nil
}
