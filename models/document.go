package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Document is the generic string-keyed record shape used to persist entities
// in a document store. Values are strings, numbers, booleans, sequences, or
// nested documents.
type Document map[string]any

// TimestampFormat is the textual format used for every timestamp field in a
// Document. RFC 3339 with nanoseconds round-trips time.Time exactly.
const TimestampFormat = time.RFC3339Nano

// ValidationError reports a document field that could not be decoded back
// into an entity: a malformed timestamp or an enum tag outside its set.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed on " + e.Field + ": " + e.Reason
}

// Overridable generators so construction stays deterministic under test.
var (
	timeNow = func() time.Time { return time.Now().UTC() }

	newEntityID = func(prefix string) string {
		id := uuid.New()
		return prefix + "_" + fmt.Sprintf("%x", id[:])[:12]
	}
)

func formatTime(t time.Time) string {
	return t.UTC().Format(TimestampFormat)
}

func parseDocTime(doc Document, field string) (time.Time, error) {
	raw, ok := doc[field].(string)
	if !ok {
		return time.Time{}, &ValidationError{Field: field, Reason: "timestamp missing or not a string"}
	}
	t, err := time.Parse(TimestampFormat, raw)
	if err != nil {
		return time.Time{}, &ValidationError{Field: field, Reason: "malformed timestamp " + raw}
	}
	return t, nil
}

func parseDocTimePtr(doc Document, field string) (*time.Time, error) {
	if doc[field] == nil {
		return nil, nil
	}
	t, err := parseDocTime(doc, field)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func docString(doc Document, field string) string {
	s, _ := doc[field].(string)
	return s
}

// docFloat tolerates the numeric types a JSON decoder or driver may hand back.
func docFloat(doc Document, field string) float64 {
	switch v := doc[field].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return 0
	}
}

func docFloatPtr(doc Document, field string) *float64 {
	if doc[field] == nil {
		return nil
	}
	f := docFloat(doc, field)
	return &f
}

func docInt(doc Document, field string) int64 {
	switch v := doc[field].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}

func docBool(doc Document, field string) bool {
	b, _ := doc[field].(bool)
	return b
}

func docStringSlice(doc Document, field string) []string {
	switch v := doc[field].(type) {
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
	default:
		return nil
	}
}

func docFloatMap(doc Document, field string) map[string]float64 {
	switch v := doc[field].(type) {
	case map[string]float64:
		return v
	case map[string]any:
		out := make(map[string]float64, len(v))
		for k := range v {
			out[k] = docFloat(Document(v), k)
		}
		return out
	default:
		return nil
	}
}

func docFloatMapSlice(doc Document, field string) []map[string]float64 {
	switch v := doc[field].(type) {
	case []map[string]float64:
		return v
	case []any:
		out := make([]map[string]float64, 0, len(v))
		for _, e := range v {
			if m, ok := e.(map[string]any); ok {
				inner := make(map[string]float64, len(m))
				for k := range m {
					inner[k] = docFloat(Document(m), k)
				}
				out = append(out, inner)
			}
		}
		return out
	default:
		return nil
	}
}

func docAnyMap(doc Document, field string) map[string]any {
	m, _ := doc[field].(map[string]any)
	return m
}
