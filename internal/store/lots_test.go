package store

import (
	"context"
	"testing"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/erazemk/shramba/internal/db"
	"github.com/erazemk/shramba/internal/resource"
)

func lotDoc(t *testing.T, draft map[string]any) bson.M {
	t.Helper()
	doc, err := resource.Lot.Normalize(draft, false)
	if err != nil {
		t.Fatalf("normalizing lot: %v", err)
	}
	return doc
}

func TestUpsertLotIdempotent(t *testing.T) {
	conn := db.NewTestConn(t)
	ctx := context.Background()
	itemID := bson.NewObjectID().Hex()
	locationID := bson.NewObjectID().Hex()

	first, created, err := UpsertLot(ctx, conn, lotDoc(t, map[string]any{
		"itemId":     itemID,
		"locationId": locationID,
		"qtyOnHand":  10,
		"note":       "initial count",
	}))
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if !created {
		t.Error("expected first upsert to create")
	}
	if first["note"] != "initial count" {
		t.Errorf("expected note stored, got %v", first["note"])
	}

	second, created, err := UpsertLot(ctx, conn, lotDoc(t, map[string]any{
		"itemId":     itemID,
		"locationId": locationID,
		"qtyOnHand":  7,
	}))
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if created {
		t.Error("expected second upsert to update in place")
	}
	if second["qtyOnHand"] != float64(7) {
		t.Errorf("expected qtyOnHand 7, got %v", second["qtyOnHand"])
	}
	if second["_id"] != first["_id"] {
		t.Error("expected both upserts to land on the same record")
	}
	if _, ok := second["note"]; ok {
		t.Errorf("expected absent note cleared, got %v", second["note"])
	}
	if second["createdAt"] != first["createdAt"] {
		t.Error("createdAt must survive repeat upserts")
	}

	docs, err := List(ctx, conn, resource.Lot, bson.M{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(docs) != 1 {
		t.Errorf("expected a single record, got %d", len(docs))
	}
}

func TestUpsertLotIdentityClasses(t *testing.T) {
	conn := db.NewTestConn(t)
	ctx := context.Background()
	itemID := bson.NewObjectID().Hex()
	locationID := bson.NewObjectID().Hex()

	upsert := func(draft map[string]any) bool {
		t.Helper()
		_, created, err := UpsertLot(ctx, conn, lotDoc(t, draft))
		if err != nil {
			t.Fatalf("upsert: %v", err)
		}
		return created
	}

	// An uncoded lot and two coded ones are three distinct records.
	if !upsert(map[string]any{"itemId": itemID, "locationId": locationID, "qtyOnHand": 5}) {
		t.Error("expected uncoded lot created")
	}
	if !upsert(map[string]any{"itemId": itemID, "locationId": locationID, "qtyOnHand": 3, "lotCode": "L-1"}) {
		t.Error("expected coded lot created, not matched against the uncoded one")
	}
	if !upsert(map[string]any{"itemId": itemID, "locationId": locationID, "qtyOnHand": 2, "lotCode": "L-2"}) {
		t.Error("expected second coded lot created")
	}

	// Repeats in each class update in place.
	if upsert(map[string]any{"itemId": itemID, "locationId": locationID, "qtyOnHand": 6}) {
		t.Error("expected uncoded repeat to update")
	}
	if upsert(map[string]any{"itemId": itemID, "locationId": locationID, "qtyOnHand": 4, "lotCode": "L-1"}) {
		t.Error("expected coded repeat to update")
	}

	docs, err := List(ctx, conn, resource.Lot, bson.M{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(docs) != 3 {
		t.Errorf("expected 3 records, got %d", len(docs))
	}
}
