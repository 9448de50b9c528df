package chainref

import (
	"bytes"

	json "github.com/goccy/go-json"
)

// Record is a decoded record whose keys keep a fixed emission order.
type Record struct {
	keys   []string
	values map[string]any
}

// NewRecord builds a Record from alternating key/value pairs.
func NewRecord(kv ...any) Record {
	r := Record{values: make(map[string]any, len(kv)/2)}
	for i := 0; i+1 < len(kv); i += 2 {
		r.Set(kv[i].(string), kv[i+1])
	}
	return r
}

// Set appends key (or replaces its value in place when already present).
func (r *Record) Set(key string, v any) {
	if r.values == nil {
		r.values = map[string]any{}
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = v
}

// Get returns the value stored under key.
func (r Record) Get(key string) (any, bool) {
	v, ok := r.values[key]
	return v, ok
}

// String returns the value under key when it is a string, or "".
func (r Record) String(key string) string {
	s, _ := r.values[key].(string)
	return s
}

// Keys returns the keys in emission order.
func (r Record) Keys() []string { return append([]string(nil), r.keys...) }

// Map returns an unordered copy, the shape the schema validator consumes.
func (r Record) Map() map[string]any {
	m := make(map[string]any, len(r.keys))
	for _, k := range r.keys {
		m[k] = r.values[k]
	}
	return m
}

// MarshalJSON emits the keys in order.
func (r Record) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			b.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		b.Write(kb)
		b.WriteByte(':')
		vb, err := json.MarshalWithOption(r.values[k], json.DisableHTMLEscape())
		if err != nil {
			return nil, err
		}
		b.Write(vb)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

// Records converts ordered records back into the untyped batch shape.
func Records(rs []Record) []any {
	out := make([]any, len(rs))
	for i, r := range rs {
		out[i] = r.Map()
	}
	return out
}
