// Package resource declares one field-constraint table per resource kind.
// A Schema drives the whole write path: the generic handler sanitizes a draft
// against it (Normalize), stores the result, and converts the stored document
// back to its wire shape (Serialize). Adding a resource means adding a table,
// not another hand-written sanitize/serialize pair.
package resource

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/erazemk/shramba/internal/apperr"
)

// SanitizeFunc coerces one untyped field into its canonical form. The bool
// reports presence: optional fields that sanitize to empty are treated as
// absent, not stored.
type SanitizeFunc func(value any, field string) (any, bool, error)

// Field is one row of a resource's constraint table.
type Field struct {
	Name     string
	Required bool
	Sanitize SanitizeFunc
	// Alias is an alternate draft key accepted for this field, for payloads
	// from older clients. The stored field is always Name.
	Alias string
	// Default is applied on create when the field is absent.
	Default func() any
}

// Schema describes a resource kind.
type Schema struct {
	// Singular is the wrapper key carrying the draft ("item") and the
	// diagnostic path prefix; Plural is the list key and resource name in
	// messages ("items").
	Singular   string
	Plural     string
	Collection string

	Fields []Field

	// Hidden fields are stored but never serialized (write-only secrets).
	Hidden []string

	// Filters names the id-typed query parameters accepted by list calls.
	Filters []string

	// Sort orders list results.
	Sort bson.D

	// DuplicateMessage replaces the raw storage-layer text on unique-key
	// conflicts.
	DuplicateMessage string

	// Finalize, when set, runs after all fields sanitized (password hashing).
	Finalize func(doc bson.M) error
}

// Normalize sanitizes a draft into a storage document. When partial is true
// absent fields are skipped (update semantics); otherwise required fields
// must be present and defaults fill the gaps (create semantics). The first
// sanitizer failure aborts the whole draft.
func (s *Schema) Normalize(draft map[string]any, partial bool) (bson.M, error) {
	doc := bson.M{}

	for _, field := range s.Fields {
		path := s.Singular + "." + field.Name
		raw, supplied := draft[field.Name]
		if !supplied && field.Alias != "" {
			raw, supplied = draft[field.Alias]
		}

		if !supplied || raw == nil {
			if partial {
				continue
			}
			if field.Required {
				return nil, apperr.Validationf(path, "%s is required.", path)
			}
			if field.Default != nil {
				doc[field.Name] = field.Default()
			}
			continue
		}

		value, present, err := field.Sanitize(raw, path)
		if err != nil {
			return nil, err
		}

		if !present {
			if partial {
				continue
			}
			if field.Required {
				return nil, apperr.Validationf(path, "%s is required.", path)
			}
			if field.Default != nil {
				doc[field.Name] = field.Default()
			}
			continue
		}

		doc[field.Name] = value
	}

	if s.Finalize != nil {
		if err := s.Finalize(doc); err != nil {
			return nil, err
		}
	}

	return doc, nil
}

// Serialize converts a stored document into its wire shape: identifiers to
// hex strings, dates to ISO-8601, hidden fields dropped, absent optional
// fields omitted.
func (s *Schema) Serialize(doc bson.M) map[string]any {
	out := make(map[string]any, len(doc))

	for key, value := range doc {
		if value == nil || s.hidden(key) {
			continue
		}
		out[key] = serializeValue(value)
	}

	return out
}

func (s *Schema) hidden(key string) bool {
	for _, h := range s.Hidden {
		if key == h {
			return true
		}
	}
	return false
}

func serializeValue(value any) any {
	switch v := value.(type) {
	case bson.ObjectID:
		return v.Hex()
	case time.Time:
		return v.UTC().Format(time.RFC3339)
	case bson.DateTime:
		return v.Time().UTC().Format(time.RFC3339)
	case bson.M:
		out := make(map[string]any, len(v))
		for key, child := range v {
			if child == nil {
				continue
			}
			out[key] = serializeValue(child)
		}
		return out
	case []bson.M:
		out := make([]any, len(v))
		for i, entry := range v {
			out[i] = serializeValue(entry)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, entry := range v {
			out[i] = serializeValue(entry)
		}
		return out
	case bson.A:
		out := make([]any, len(v))
		for i, entry := range v {
			out[i] = serializeValue(entry)
		}
		return out
	case []string:
		out := make([]any, len(v))
		for i, entry := range v {
			out[i] = entry
		}
		return out
	default:
		return v
	}
}
