package resource

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/erazemk/shramba/internal/apperr"
	"github.com/erazemk/shramba/internal/db"
	"github.com/erazemk/shramba/internal/model"
	"github.com/erazemk/shramba/internal/validate"
)

// Audit is the constraint table for inventory count audits.
var Audit = &Schema{
	Singular:   "audit",
	Plural:     "audits",
	Collection: db.Audits,
	Sort:       bson.D{{Key: "countedAt", Value: -1}},
	Fields: []Field{
		{Name: "lines", Required: true, Sanitize: sanitizeAuditLines},
		{Name: "countedAt", Sanitize: optionalDate, Default: func() any { return time.Now().UTC() }},
		{Name: "createdBy", Sanitize: optionalObjectID},
		{Name: "status", Sanitize: enum(model.AuditStatuses, true), Default: func() any { return model.AuditStatusPosted }},
	},
}

// sanitizeAuditLines validates the count lines. At least one line is
// required; each line's delta defaults to countedQty - expectedQty unless
// explicitly supplied.
func sanitizeAuditLines(value any, field string) (any, bool, error) {
	raw, ok := value.([]any)
	if !ok || len(raw) == 0 {
		return nil, false, apperr.Validationf(field, "%s must include at least one line.", field)
	}

	lines := make([]bson.M, 0, len(raw))
	for i, entry := range raw {
		path := fmt.Sprintf("%s[%d]", field, i)

		draft, ok := entry.(map[string]any)
		if !ok {
			return nil, false, apperr.Validationf(path, "%s must be an object.", path)
		}

		lotID, err := validate.ObjectID(draft["lotId"], path+".lotId")
		if err != nil {
			return nil, false, err
		}

		expected, err := validate.Number(draft["expectedQty"], path+".expectedQty", validate.NumberOpts{Min: validate.Float64(0)})
		if err != nil {
			return nil, false, err
		}

		counted, err := validate.Number(draft["countedQty"], path+".countedQty", validate.NumberOpts{Min: validate.Float64(0)})
		if err != nil {
			return nil, false, err
		}

		delta := counted - expected
		if raw, supplied := draft["delta"]; supplied && raw != nil {
			delta, err = validate.Number(raw, path+".delta", validate.NumberOpts{})
			if err != nil {
				return nil, false, err
			}
		}

		line := bson.M{
			"lotId":       lotID,
			"expectedQty": expected,
			"countedQty":  counted,
			"delta":       delta,
		}

		note, present, err := validate.String(draft["note"], path+".note", validate.StringOpts{})
		if err != nil {
			return nil, false, err
		}
		if present {
			line["note"] = note
		}

		lines = append(lines, line)
	}

	return lines, true, nil
}
