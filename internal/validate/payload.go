// Package validate rejects unsafe request payloads and coerces untyped JSON
// fields into their canonical forms. Every write endpoint runs AssertSafe over
// the full body first, then the per-field sanitizers while building its
// document. All failures are apperr.ValidationError values naming the
// offending path.
package validate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/erazemk/shramba/internal/apperr"
)

// Keys starting with an operator prefix or containing a field-path separator
// could redirect an update onto an unintended field or query operator.
var illegalKeyPattern = regexp.MustCompile(`(^\$)|(\.)`)

// Strings carrying script tags or a script-protocol URI must never reach a
// stored document.
var maliciousStringPattern = regexp.MustCompile(`(?i)<\s*script|</\s*script|javascript:`)

// AssertSafe walks a JSON-decoded value and returns a validation error if any
// object key matches the illegal-key pattern or any string value matches the
// malicious-content pattern. Safe payloads pass unchanged; the check has no
// side effects.
func AssertSafe(value any, path string) error {
	if path == "" {
		path = "payload"
	}

	switch v := value.(type) {
	case []any:
		for i, entry := range v {
			if err := AssertSafe(entry, fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
	case map[string]any:
		for key, child := range v {
			if illegalKeyPattern.MatchString(key) {
				return apperr.Validationf(path, "Unsafe key %q detected at %s.", key, path)
			}

			if s, ok := child.(string); ok {
				candidate := strings.TrimSpace(s)
				if candidate != "" && maliciousStringPattern.MatchString(candidate) {
					return apperr.Validationf(path+"."+key, "Potentially malicious content detected at %s.%s.", path, key)
				}
			}

			if err := AssertSafe(child, path+"."+key); err != nil {
				return err
			}
		}
	}

	return nil
}
