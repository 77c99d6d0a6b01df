package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/erazemk/shramba/internal/db"
	"github.com/erazemk/shramba/internal/resource"
)

// UpsertLot records a lot's quantity at a location idempotently, keyed by
// (itemId, locationId, lotCode). A draft without a lot code matches only
// records that also have none: the filter pins lotCode to null, which the
// storage layer treats as missing-or-null, disjoint from every code value.
//
// The whole operation is one atomic update-with-upsert; a separate
// read-then-write sequence would race under concurrent identical requests.
// Optional fields absent from the draft are cleared on existing records so
// the lot always mirrors the latest full draft.
func UpsertLot(ctx context.Context, conn *db.Conn, doc bson.M) (bson.M, bool, error) {
	coll := conn.Collection(db.Lots)

	filter := bson.M{
		"itemId":     doc["itemId"],
		"locationId": doc["locationId"],
	}
	if code, ok := doc["lotCode"]; ok {
		filter["lotCode"] = code
	} else {
		filter["lotCode"] = nil
	}

	now := time.Now().UTC()

	set := bson.M{
		"qtyOnHand": doc["qtyOnHand"],
		"unit":      doc["unit"],
		"updatedAt": now,
	}
	if receivedAt, ok := doc["receivedAt"]; ok {
		set["receivedAt"] = receivedAt
	}

	unset := bson.M{}
	for _, optional := range []string{"expiresAt", "note"} {
		if value, ok := doc[optional]; ok {
			set[optional] = value
		} else {
			unset[optional] = 1
		}
	}

	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"createdAt": now},
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	result, err := coll.UpdateOne(ctx, filter, update, true)
	if err != nil {
		return nil, false, wrap(err, resource.Lot, "")
	}

	stored, err := coll.FindOne(ctx, filter)
	if err != nil {
		return nil, false, fmt.Errorf("reading back upserted lot: %w", err)
	}

	return stored, result.Upserted, nil
}
