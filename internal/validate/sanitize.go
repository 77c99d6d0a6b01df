package validate

import (
	"math"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/erazemk/shramba/internal/apperr"
)

// StringOpts controls String.
type StringOpts struct {
	Required   bool
	AllowEmpty bool
	Lowercase  bool
	MaxLength  int
}

// String validates and coerces a string field. The second return value
// reports whether a value is present: nil input and a string that trims to
// empty (unless AllowEmpty) both count as absent, which is an error only when
// Required. Values over MaxLength are truncated, never rejected.
func String(value any, field string, opts StringOpts) (string, bool, error) {
	if value == nil {
		if opts.Required {
			return "", false, apperr.Validationf(field, "%s is required.", field)
		}
		return "", false, nil
	}

	s, ok := value.(string)
	if !ok {
		return "", false, apperr.Validationf(field, "%s must be a string.", field)
	}

	s = strings.TrimSpace(s)

	if s == "" && !opts.AllowEmpty {
		if opts.Required {
			return "", false, apperr.Validationf(field, "%s is required.", field)
		}
		return "", false, nil
	}

	// Defense in depth for single-field use outside full-payload checks.
	if s != "" && maliciousStringPattern.MatchString(s) {
		return "", false, apperr.Validationf(field, "%s contains disallowed content.", field)
	}

	if opts.Lowercase {
		s = strings.ToLower(s)
	}

	if opts.MaxLength > 0 {
		if runes := []rune(s); len(runes) > opts.MaxLength {
			s = string(runes[:opts.MaxLength])
		}
	}

	return s, true, nil
}

// NumberOpts controls Number. Nil bounds are unchecked.
type NumberOpts struct {
	Min *float64
	Max *float64
}

// Float64 is a convenience for NumberOpts bounds.
func Float64(v float64) *float64 { return &v }

// Number coerces numeric or numeric-string input to a finite float64.
func Number(value any, field string, opts NumberOpts) (float64, error) {
	var v float64
	switch n := value.(type) {
	case float64:
		v = n
	case int:
		v = float64(n)
	case int64:
		v = float64(n)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, apperr.Validationf(field, "%s must be a finite number.", field)
		}
		v = parsed
	default:
		return 0, apperr.Validationf(field, "%s must be a finite number.", field)
	}

	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, apperr.Validationf(field, "%s must be a finite number.", field)
	}

	if opts.Min != nil && v < *opts.Min {
		return 0, apperr.Validationf(field, "%s must be >= %v.", field, *opts.Min)
	}

	if opts.Max != nil && v > *opts.Max {
		return 0, apperr.Validationf(field, "%s must be <= %v.", field, *opts.Max)
	}

	return v, nil
}

// ObjectID accepts an already-typed identifier or a 24-character hex string.
func ObjectID(value any, field string) (bson.ObjectID, error) {
	switch id := value.(type) {
	case bson.ObjectID:
		return id, nil
	case string:
		parsed, err := bson.ObjectIDFromHex(id)
		if err == nil {
			return parsed, nil
		}
	}
	return bson.ObjectID{}, apperr.Validationf(field, "%s must be a valid ObjectId string.", field)
}

// OptionalObjectID treats nil and empty-string input as absent, otherwise
// delegating to ObjectID. The second return value reports presence.
func OptionalObjectID(value any, field string) (bson.ObjectID, bool, error) {
	if value == nil || value == "" {
		return bson.ObjectID{}, false, nil
	}
	id, err := ObjectID(value, field)
	if err != nil {
		return bson.ObjectID{}, false, err
	}
	return id, true, nil
}

// OptionalDate treats nil and empty-string input as absent. It accepts a
// time.Time directly, an ISO-8601 string, or a millisecond timestamp; an
// unparsable date is a hard failure, never a silent drop.
func OptionalDate(value any, field string) (time.Time, bool, error) {
	if value == nil || value == "" {
		return time.Time{}, false, nil
	}

	switch d := value.(type) {
	case time.Time:
		return d, true, nil
	case float64:
		return time.UnixMilli(int64(d)).UTC(), true, nil
	case string:
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
			if parsed, err := time.Parse(layout, strings.TrimSpace(d)); err == nil {
				return parsed, true, nil
			}
		}
	}

	return time.Time{}, false, apperr.Validationf(field, "%s must be a valid date.", field)
}

// Bool returns the value when it is a boolean and def otherwise. Mirrors the
// lenient boolean handling of the write endpoints: a missing or mistyped flag
// falls back to the resource default instead of failing the request.
func Bool(value any, def bool) bool {
	if b, ok := value.(bool); ok {
		return b
	}
	return def
}

// StringSlice validates a list field, trimming entries and dropping empties.
func StringSlice(value any, field string) ([]string, error) {
	if value == nil {
		return nil, nil
	}

	entries, ok := value.([]any)
	if !ok {
		return nil, apperr.Validationf(field, "%s must be an array of strings.", field)
	}

	var out []string
	for _, entry := range entries {
		s, present, err := String(entry, field, StringOpts{})
		if err != nil {
			return nil, err
		}
		if present {
			out = append(out, s)
		}
	}
	return out, nil
}

// Enum validates that a string field takes one of the allowed values.
func Enum(value string, field string, allowed []string) (string, error) {
	for _, candidate := range allowed {
		if value == candidate {
			return value, nil
		}
	}
	return "", apperr.Validationf(field, "%s must be one of %s.", field, strings.Join(allowed, ", "))
}
