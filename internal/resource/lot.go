package resource

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/erazemk/shramba/internal/db"
	"github.com/erazemk/shramba/internal/model"
	"github.com/erazemk/shramba/internal/validate"
)

// Lot is the constraint table for inventory lots. A lot is identified by the
// compound key (itemId, locationId, lotCode); lots without a code form their
// own identity class, never matching any coded lot.
var Lot = &Schema{
	Singular:         "lot",
	Plural:           "lots",
	Collection:       db.Lots,
	DuplicateMessage: "An inventory lot with that item, location, and lot code already exists.",
	Filters:          []string{"itemId", "locationId"},
	Sort:             bson.D{{Key: "receivedAt", Value: -1}},
	Fields: []Field{
		{Name: "itemId", Required: true, Sanitize: objectID},
		{Name: "locationId", Required: true, Sanitize: objectID},
		{Name: "qtyOnHand", Required: true, Sanitize: number(validate.NumberOpts{Min: validate.Float64(0)})},
		{Name: "unit", Sanitize: str(validate.StringOpts{}), Default: func() any { return model.DefaultUnit }},
		{Name: "lotCode", Sanitize: str(validate.StringOpts{})},
		{Name: "expiresAt", Sanitize: optionalDate},
		{Name: "receivedAt", Sanitize: optionalDate, Default: func() any { return time.Now().UTC() }},
		{Name: "note", Sanitize: str(validate.StringOpts{})},
	},
}
