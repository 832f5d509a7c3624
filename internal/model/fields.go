package model

// Fields holds the domain attributes of a model, the arguments handed to a
// factory or the payload of an event.
type Fields map[string]any

// Clone returns a shallow copy. A nil receiver yields an empty, non-nil map.
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// String returns the value under key when it is a string.
func (f Fields) String(key string) (string, bool) {
	v, ok := f[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Merge returns a new Fields holding every key of base overridden by every key
// of over. Neither argument is modified.
func Merge(base, over Fields) Fields {
	out := make(Fields, len(base)+len(over))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range over {
		out[k] = v
	}
	return out
}
