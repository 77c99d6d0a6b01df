package resource

import (
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/erazemk/shramba/internal/db"
	"github.com/erazemk/shramba/internal/model"
	"github.com/erazemk/shramba/internal/validate"
)

// Item is the constraint table for food items. Names are unique across the
// collection; locationId points at the item's default storage location.
var Item = &Schema{
	Singular:         "item",
	Plural:           "items",
	Collection:       db.Items,
	DuplicateMessage: "An item with that name already exists.",
	Filters:          []string{"locationId"},
	Sort:             bson.D{{Key: "name", Value: 1}},
	Fields: []Field{
		{Name: "name", Required: true, Sanitize: str(validate.StringOpts{Required: true})},
		{Name: "locationId", Required: true, Sanitize: objectID},
		{Name: "upc", Sanitize: str(validate.StringOpts{})},
		{Name: "category", Sanitize: str(validate.StringOpts{})},
		{Name: "tags", Sanitize: stringSlice},
		{Name: "unit", Sanitize: str(validate.StringOpts{}), Default: func() any { return model.DefaultUnit }},
		{Name: "caseSize", Sanitize: number(validate.NumberOpts{Min: validate.Float64(0)})},
		{Name: "expiresAt", Sanitize: optionalDate},
		{Name: "shelfLifeDays", Sanitize: number(validate.NumberOpts{Min: validate.Float64(0)})},
		{Name: "allergens", Sanitize: stringSlice},
		{Name: "isActive", Sanitize: boolean(true), Default: func() any { return true }},
		{Name: "note", Sanitize: str(validate.StringOpts{})},
	},
}
