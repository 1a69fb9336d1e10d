package storage

import (
	"encoding/json"
	"fmt"
)

// TagData is the self-describing serialized form of an entity's fields.
// Each value is kept as raw JSON so callers can decode into whatever
// shape they need without this package knowing about it.
type TagData map[string]json.RawMessage

// Set stores v under key after marshalling it to JSON.
func (t *TagData) Set(k string, v any) error {
	if *t == nil {
		*t = TagData{}
	}

	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal tag %q: %w", k, err)
	}

	(*t)[k] = json.RawMessage(b)
	return nil
}

// Get unmarshals the tag value at key into out.
// Returns (found=false, nil) if not present.
func (t TagData) Get(key string, out any) (bool, error) {
	if t == nil {
		return false, nil
	}

	raw, ok := t[key]
	if !ok || len(raw) == 0 {
		return false, nil
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return true, fmt.Errorf("unmarshal tag %q: %w", key, err)
	}
	return true, nil
}

// Delete removes the tag key, if present.
func (t TagData) Delete(key string) {
	if t == nil {
		return
	}
	delete(t, key)
}

// EncodeTagData serializes a field map into tagged data. Any field that
// cannot be marshalled fails the whole encode; partial output is never
// returned.
func EncodeTagData(fields map[string]any) (TagData, error) {
	t := TagData{}
	for k, v := range fields {
		if err := t.Set(k, v); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Decode deserializes tagged data back into a field map. Values come
// back as generic JSON types (float64, string, bool, map, slice).
func (t TagData) Decode() (map[string]any, error) {
	fields := make(map[string]any, len(t))
	for k, raw := range t {
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("unmarshal tag %q: %w", k, err)
		}
		fields[k] = v
	}
	return fields, nil
}
