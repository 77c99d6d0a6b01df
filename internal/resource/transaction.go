package resource

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/erazemk/shramba/internal/apperr"
	"github.com/erazemk/shramba/internal/db"
	"github.com/erazemk/shramba/internal/model"
	"github.com/erazemk/shramba/internal/validate"
)

// Transaction is the constraint table for stock movements.
var Transaction = &Schema{
	Singular:   "transaction",
	Plural:     "transactions",
	Collection: db.Transactions,
	Filters:    []string{"itemId"},
	Sort:       bson.D{{Key: "occurredAt", Value: -1}},
	Fields: []Field{
		{Name: "type", Required: true, Sanitize: enum(model.TxTypes, false)},
		{Name: "itemId", Required: true, Sanitize: objectID},
		{Name: "qty", Required: true, Sanitize: positiveNumber},
		{Name: "reason", Sanitize: enum(model.TxReasons, true)},
		{Name: "unit", Sanitize: str(validate.StringOpts{}), Default: func() any { return model.DefaultUnit }},
		{Name: "actorId", Sanitize: optionalObjectID},
		{Name: "ref", Sanitize: sanitizeRef},
		{Name: "note", Sanitize: str(validate.StringOpts{})},
		{Name: "occurredAt", Sanitize: optionalDate, Default: func() any { return time.Now().UTC() }},
	},
}

// positiveNumber enforces the strictly-positive quantity rule; zero is not a
// stock movement.
func positiveNumber(value any, field string) (any, bool, error) {
	n, err := validate.Number(value, field, validate.NumberOpts{})
	if err != nil {
		return nil, false, err
	}
	if n <= 0 {
		return nil, false, apperr.Validationf(field, "%s must be a positive number.", field)
	}
	return n, true, nil
}

// sanitizeRef validates the optional reference to another record.
func sanitizeRef(value any, field string) (any, bool, error) {
	raw, ok := value.(map[string]any)
	if !ok {
		return nil, false, apperr.Validationf(field, "%s must be an object.", field)
	}

	refModel, _, err := validate.String(raw["model"], field+".model", validate.StringOpts{Required: true})
	if err != nil {
		return nil, false, err
	}

	id, err := validate.ObjectID(raw["id"], field+".id")
	if err != nil {
		return nil, false, err
	}

	return bson.M{"model": refModel, "id": id}, true, nil
}
