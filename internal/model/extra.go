package model

import (
	"encoding/json"
	"fmt"
	"maps"
)

// decodeWithExtra unmarshals data into dst and returns the top-level keys
// that are not listed in known.
func decodeWithExtra(data []byte, dst any, known map[string]struct{}) (map[string]any, error) {
	if err := json.Unmarshal(data, dst); err != nil {
		return nil, err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	var extra map[string]any
	for key, value := range raw {
		if _, ok := known[key]; ok {
			continue
		}
		var v any
		if err := json.Unmarshal(value, &v); err != nil {
			return nil, fmt.Errorf("decode field %q: %w", key, err)
		}
		if extra == nil {
			extra = make(map[string]any)
		}
		extra[key] = v
	}
	return extra, nil
}

// encodeWithExtra marshals src and merges extra into the resulting object.
// Modeled fields win over extra keys of the same name.
func encodeWithExtra(src any, extra map[string]any) ([]byte, error) {
	data, err := json.Marshal(src)
	if err != nil || len(extra) == 0 {
		return data, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	for key, value := range extra {
		if _, exists := fields[key]; exists {
			continue
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("encode field %q: %w", key, err)
		}
		fields[key] = encoded
	}
	return json.Marshal(fields)
}

func keySet(keys ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return set
}

func cloneExtra(extra map[string]any) map[string]any {
	if extra == nil {
		return nil
	}
	return maps.Clone(extra)
}

func lookupExtra(extra map[string]any, key string) (any, bool) {
	v, ok := extra[key]
	return v, ok
}
