package resource

import (
	"go.mongodb.org/mongo-driver/v2/bson"
	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/shramba/internal/apperr"
	"github.com/erazemk/shramba/internal/db"
	"github.com/erazemk/shramba/internal/model"
	"github.com/erazemk/shramba/internal/validate"
)

// User is the constraint table for accounts. Emails are stored lower-cased so
// uniqueness and login are case-insensitive; the password is write-only and
// replaced by its bcrypt hash before the document is stored.
var User = &Schema{
	Singular:         "user",
	Plural:           "users",
	Collection:       db.Users,
	DuplicateMessage: "A user with that email already exists.",
	Sort:             bson.D{{Key: "email", Value: 1}},
	Hidden:           []string{"passwordHash"},
	Finalize:         hashPassword,
	Fields: []Field{
		{Name: "email", Required: true, Sanitize: str(validate.StringOpts{Required: true, Lowercase: true})},
		{Name: "name", Required: true, Sanitize: str(validate.StringOpts{Required: true})},
		{Name: "password", Required: true, Sanitize: str(validate.StringOpts{Required: true})},
		{Name: "role", Alias: "roles", Sanitize: sanitizeRole, Default: func() any { return model.DefaultRole }},
		{Name: "enabled", Sanitize: boolean(true), Default: func() any { return true }},
	},
}

// sanitizeRole accepts the canonical single role string, plus the legacy
// list form some older clients still send; a list collapses to its first
// valid entry. Normalization happens here, once, at the boundary.
func sanitizeRole(value any, field string) (any, bool, error) {
	if list, ok := value.([]any); ok {
		roles, err := validate.StringSlice(list, field)
		if err != nil {
			return nil, false, err
		}
		for _, role := range roles {
			if _, err := validate.Enum(role, field, model.Roles); err == nil {
				return role, true, nil
			}
		}
		return nil, false, nil
	}

	return enum(model.Roles, true)(value, field)
}

// hashPassword swaps the write-only password field for its bcrypt hash.
// Plain-text passwords never reach storage.
func hashPassword(doc bson.M) error {
	password, ok := doc["password"].(string)
	if !ok {
		return nil
	}
	delete(doc, "password")

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return apperr.Validationf("user.password", "user.password could not be processed.")
	}

	doc["passwordHash"] = string(hash)
	return nil
}
