package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Fielder is implemented by records that support lookup by JSON key.
type Fielder interface {
	Field(key string) (any, bool)
}

// FieldMapping maps one summary key to the source record key it is read from.
type FieldMapping struct {
	Key    string `yaml:"key"`
	Source string `yaml:"source"`
}

// FieldMap is an ordered list of mappings. Order is preserved in the output.
type FieldMap []FieldMapping

// Keys returns the output keys in order.
func (fm FieldMap) Keys() []string {
	keys := make([]string, len(fm))
	for i, f := range fm {
		keys[i] = f.Key
	}
	return keys
}

// Summary is a flat, ordered projection of a record.
type Summary struct {
	keys   []string
	values map[string]any
}

// NewSummary builds a summary from r. A source key r does not have yields nil.
func NewSummary(r Fielder, fm FieldMap) Summary {
	s := Summary{
		keys:   make([]string, 0, len(fm)),
		values: make(map[string]any, len(fm)),
	}
	for _, f := range fm {
		v, ok := r.Field(f.Source)
		if !ok {
			v = nil
		}
		if _, dup := s.values[f.Key]; !dup {
			s.keys = append(s.keys, f.Key)
		}
		s.values[f.Key] = v
	}
	return s
}

// Keys returns the summary keys in output order.
func (s Summary) Keys() []string {
	return append([]string(nil), s.keys...)
}

// Get returns the value stored under key.
func (s Summary) Get(key string) (any, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Len returns the number of keys.
func (s Summary) Len() int {
	return len(s.keys)
}

// MarshalJSON encodes the summary as an object with keys in field-map order.
func (s Summary) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range s.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(s.values[key])
		if err != nil {
			return nil, fmt.Errorf("encode summary field %q: %w", key, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
