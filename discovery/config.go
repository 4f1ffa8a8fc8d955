package discovery

import (
	"fmt"
	"strconv"
)

// Config carries a discovery.Provider's own setup (connection strings,
// subjects, credentials) as a loosely-typed string-keyed map, since each
// backend (nats, static, a future one) needs a different set of keys and
// Provider.SetConfig takes no backend-specific type.
type Config map[string]any

// NewConfig returns an empty Config.
func NewConfig() Config { return Config{} }

// GetString returns cfg[key] as a string, or an error if key is absent or
// its value isn't a string.
func (cfg Config) GetString(key string) (string, error) {
	return typedValue[string](cfg, key)
}

// GetInt returns cfg[key] as an int. Unlike Meta, Config also accepts a
// decimal string for key's value, since provider config is often populated
// straight from environment variables or CLI flags, which arrive as
// strings even when the value is conceptually numeric.
func (cfg Config) GetInt(key string) (int, error) {
	if n, err := typedValue[int](cfg, key); err == nil {
		return n, nil
	}
	s, err := typedValue[string](cfg, key)
	if err != nil {
		return 0, fmt.Errorf("key=%s is not an int", key)
	}
	return strconv.Atoi(s)
}

// GetBool returns a pointer to cfg[key] as a bool, with the same
// string-coercion fallback as GetInt.
func (cfg Config) GetBool(key string) (*bool, error) {
	if b, err := typedValue[bool](cfg, key); err == nil {
		return &b, nil
	}
	s, err := typedValue[string](cfg, key)
	if err != nil {
		return nil, fmt.Errorf("key=%s is not a bool", key)
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// GetMapString returns cfg[key] as a map[string]string, or an error if key
// is absent or its value isn't one.
func (cfg Config) GetMapString(key string) (map[string]string, error) {
	return typedValue[map[string]string](cfg, key)
}
