package resource

import (
	"github.com/erazemk/shramba/internal/validate"
)

// Adapters lifting the validate package's coercion functions into
// SanitizeFuncs for schema tables.

func str(opts validate.StringOpts) SanitizeFunc {
	return func(value any, field string) (any, bool, error) {
		s, present, err := validate.String(value, field, opts)
		return s, present, err
	}
}

func enum(allowed []string, lowercase bool) SanitizeFunc {
	return func(value any, field string) (any, bool, error) {
		s, present, err := validate.String(value, field, validate.StringOpts{Lowercase: lowercase})
		if err != nil || !present {
			return "", present, err
		}
		s, err = validate.Enum(s, field, allowed)
		if err != nil {
			return "", false, err
		}
		return s, true, nil
	}
}

func number(opts validate.NumberOpts) SanitizeFunc {
	return func(value any, field string) (any, bool, error) {
		n, err := validate.Number(value, field, opts)
		return n, err == nil, err
	}
}

func objectID(value any, field string) (any, bool, error) {
	id, err := validate.ObjectID(value, field)
	return id, err == nil, err
}

func optionalObjectID(value any, field string) (any, bool, error) {
	id, present, err := validate.OptionalObjectID(value, field)
	return id, present, err
}

func optionalDate(value any, field string) (any, bool, error) {
	d, present, err := validate.OptionalDate(value, field)
	return d, present, err
}

func boolean(def bool) SanitizeFunc {
	return func(value any, _ string) (any, bool, error) {
		return validate.Bool(value, def), true, nil
	}
}

func stringSlice(value any, field string) (any, bool, error) {
	entries, err := validate.StringSlice(value, field)
	if err != nil {
		return nil, false, err
	}
	return entries, entries != nil, nil
}
