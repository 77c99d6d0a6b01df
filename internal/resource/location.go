package resource

import (
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/erazemk/shramba/internal/apperr"
	"github.com/erazemk/shramba/internal/db"
	"github.com/erazemk/shramba/internal/model"
	"github.com/erazemk/shramba/internal/validate"
)

// Location is the constraint table for storage locations.
var Location = &Schema{
	Singular:         "location",
	Plural:           "locations",
	Collection:       db.Locations,
	DuplicateMessage: "A location with that name already exists.",
	Sort:             bson.D{{Key: "name", Value: 1}},
	Fields: []Field{
		{Name: "name", Required: true, Sanitize: str(validate.StringOpts{Required: true})},
		{Name: "type", Required: true, Sanitize: enum(model.LocationTypes, true)},
		{Name: "address", Required: true, Sanitize: sanitizeAddress},
		{Name: "isActive", Sanitize: boolean(true), Default: func() any { return true }},
	},
}

// sanitizeAddress validates the embedded address document. All four parts are
// required; state is normalized to upper case.
func sanitizeAddress(value any, field string) (any, bool, error) {
	raw, ok := value.(map[string]any)
	if !ok {
		return nil, false, apperr.Validationf(field, "%s must be an object.", field)
	}

	address := bson.M{}
	for _, part := range []string{"line1", "city", "state", "zip"} {
		s, _, err := validate.String(raw[part], field+"."+part, validate.StringOpts{Required: true})
		if err != nil {
			return nil, false, err
		}
		address[part] = s
	}

	address["state"] = strings.ToUpper(address["state"].(string))
	return address, true, nil
}
