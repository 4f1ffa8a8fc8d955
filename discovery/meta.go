package discovery

// Meta carries provider-specific annotations about a discovered Node
// (region, zone, build version, ...) that don't affect routing but are
// useful to operators and discovery-aware tooling.
type Meta map[string]any

// NewMeta returns an empty Meta.
func NewMeta() Meta { return Meta{} }

// GetString returns m[key] as a string, or an error if key is absent or its
// value isn't a string.
func (m Meta) GetString(key string) (string, error) {
	return typedValue[string](m, key)
}

// GetInt returns m[key] as an int, or an error if key is absent or its
// value isn't an int.
func (m Meta) GetInt(key string) (int, error) {
	return typedValue[int](m, key)
}

// GetBool returns a pointer to m[key] as a bool, or an error if key is
// absent or its value isn't a bool.
func (m Meta) GetBool(key string) (*bool, error) {
	v, err := typedValue[bool](m, key)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// GetMapString returns m[key] as a map[string]string, or an error if key is
// absent or its value isn't one.
func (m Meta) GetMapString(key string) (map[string]string, error) {
	return typedValue[map[string]string](m, key)
}
