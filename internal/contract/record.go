package contract

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Record is one merged contract: field name → value. Values are the shapes
// encoding/json produces for a flat object: string, float64, bool, []string
// (normalized from []any), or nil. A key that was never observed on any page
// is absent from the map, which is distinct from "observed but empty".
type Record map[string]any

// Has reports whether the field was observed on at least one page,
// regardless of whether its value is empty.
func (r Record) Has(field string) bool {
	_, ok := r[field]
	return ok
}

// String returns the field as a trimmed string. Numbers are not stringified;
// a non-string value yields "".
func (r Record) String(field string) string {
	if v, ok := r[field].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// Number returns the field as a float64 plus whether a numeric value is set.
// Numeric strings like "285000" or "$285,000.00" are accepted since vision
// models return amounts either way.
func (r Record) Number(field string) (float64, bool) {
	switch v := r[field].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case string:
		return parseAmount(v)
	}
	return 0, false
}

// Strings returns the field as a string slice, or nil when unset.
func (r Record) Strings(field string) []string {
	switch v := r[field].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// IsEmpty reports whether a field is absent, nil, an empty string, or an
// empty array. Used by completeness accounting.
func (r Record) IsEmpty(field string) bool {
	v, ok := r[field]
	if !ok || v == nil {
		return true
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t) == ""
	case []string:
		return len(t) == 0
	case []any:
		return len(t) == 0
	}
	return false
}

// JSON serializes the record as a flat JSON object, the interchange format
// handed to exporters and the net-sheet calculator.
func (r Record) JSON() ([]byte, error) {
	return json.Marshal(map[string]any(r))
}

// RecordFromJSON decodes a previously serialized record.
func RecordFromJSON(data []byte) (Record, error) {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return Record(m), nil
}

// parseAmount strips currency punctuation and parses a dollar figure.
func parseAmount(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
