package frontmatter

// Fields is an insertion-ordered string-keyed record. Setting an existing
// key replaces its value without moving it.
type Fields struct {
	keys   []string
	values map[string]any
}

// NewFields creates an empty record
func NewFields() *Fields {
	return &Fields{values: make(map[string]any)}
}

// Set stores value under key
func (f *Fields) Set(key string, value any) {
	if _, exists := f.values[key]; !exists {
		f.keys = append(f.keys, key)
	}
	f.values[key] = value
}

// Get returns the value stored under key
func (f *Fields) Get(key string) (any, bool) {
	if f == nil {
		return nil, false
	}
	v, ok := f.values[key]
	return v, ok
}

// String returns the value under key when it is a string
func (f *Fields) String(key string) string {
	v, _ := f.Get(key)
	s, _ := v.(string)
	return s
}

// Keys returns the keys in insertion order
func (f *Fields) Keys() []string {
	if f == nil {
		return nil
	}
	return append([]string(nil), f.keys...)
}

// Len returns the number of keys
func (f *Fields) Len() int {
	if f == nil {
		return 0
	}
	return len(f.keys)
}
