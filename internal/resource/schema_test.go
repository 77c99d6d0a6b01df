package resource

import (
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/shramba/internal/apperr"
	"github.com/erazemk/shramba/internal/model"
)

func TestItemNormalizeDefaults(t *testing.T) {
	locationID := bson.NewObjectID()

	doc, err := Item.Normalize(map[string]any{
		"name":       "Canned Beans",
		"locationId": locationID.Hex(),
	}, false)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}

	if doc["name"] != "Canned Beans" {
		t.Errorf("name = %v", doc["name"])
	}
	if doc["locationId"] != locationID {
		t.Errorf("expected locationId coerced to ObjectID, got %T", doc["locationId"])
	}
	if doc["unit"] != model.DefaultUnit {
		t.Errorf("expected default unit %q, got %v", model.DefaultUnit, doc["unit"])
	}
	if doc["isActive"] != true {
		t.Errorf("expected isActive default true, got %v", doc["isActive"])
	}
	if _, ok := doc["note"]; ok {
		t.Error("absent optional field must not be stored")
	}
}

func TestNormalizeRequiredMissing(t *testing.T) {
	_, err := Item.Normalize(map[string]any{"locationId": bson.NewObjectID().Hex()}, false)

	var verr *apperr.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if verr.Field != "item.name" {
		t.Errorf("expected field item.name, got %q", verr.Field)
	}
}

func TestNormalizePartialSkipsAbsent(t *testing.T) {
	doc, err := Item.Normalize(map[string]any{"note": "moved shelves"}, true)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}

	if len(doc) != 1 || doc["note"] != "moved shelves" {
		t.Errorf("expected only the supplied field in patch, got %v", doc)
	}
}

func TestNormalizeFirstFailureAborts(t *testing.T) {
	_, err := Item.Normalize(map[string]any{
		"name":       "Rice",
		"locationId": "not-an-id",
		"caseSize":   -1,
	}, false)

	var verr *apperr.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if verr.Field != "item.locationId" {
		t.Errorf("expected the first failing field reported, got %q", verr.Field)
	}
}

func TestUserNormalizeHashesPassword(t *testing.T) {
	doc, err := User.Normalize(map[string]any{
		"email":    "Person@Example.COM",
		"name":     "Person",
		"password": "hunter22",
	}, false)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}

	if doc["email"] != "person@example.com" {
		t.Errorf("expected lowercased email, got %v", doc["email"])
	}
	if _, ok := doc["password"]; ok {
		t.Error("plaintext password must not survive normalization")
	}
	hash, _ := doc["passwordHash"].(string)
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte("hunter22")) != nil {
		t.Error("stored hash does not match the password")
	}
	if doc["role"] != model.DefaultRole {
		t.Errorf("expected default role %q, got %v", model.DefaultRole, doc["role"])
	}
}

func TestUserRoleLegacyList(t *testing.T) {
	doc, err := User.Normalize(map[string]any{
		"email":    "person@example.com",
		"name":     "Person",
		"password": "hunter22",
		"roles":    []any{"bogus", "admin", "staff"},
	}, false)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}

	if doc["role"] != model.RoleAdmin {
		t.Errorf("expected first valid role from legacy list, got %v", doc["role"])
	}
	if _, ok := doc["roles"]; ok {
		t.Error("legacy key must not be stored")
	}
}

func TestTransactionRejectsZeroQty(t *testing.T) {
	_, err := Transaction.Normalize(map[string]any{
		"type":   model.TxTypeIn,
		"itemId": bson.NewObjectID().Hex(),
		"qty":    0,
	}, false)

	var verr *apperr.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if verr.Field != "transaction.qty" {
		t.Errorf("expected field transaction.qty, got %q", verr.Field)
	}
}

func TestAuditLinesDelta(t *testing.T) {
	lotID := bson.NewObjectID()

	doc, err := Audit.Normalize(map[string]any{
		"lines": []any{
			map[string]any{"lotId": lotID.Hex(), "expectedQty": 10, "countedQty": 8},
			map[string]any{"lotId": lotID.Hex(), "expectedQty": 5, "countedQty": 5, "delta": 1},
		},
	}, false)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}

	lines, _ := doc["lines"].([]bson.M)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0]["delta"] != float64(-2) {
		t.Errorf("expected computed delta -2, got %v", lines[0]["delta"])
	}
	if lines[1]["delta"] != float64(1) {
		t.Errorf("expected supplied delta kept, got %v", lines[1]["delta"])
	}
	if doc["status"] != model.AuditStatusPosted {
		t.Errorf("expected default status posted, got %v", doc["status"])
	}
}

func TestAuditLinesEmpty(t *testing.T) {
	if _, err := Audit.Normalize(map[string]any{"lines": []any{}}, false); err == nil {
		t.Error("expected error for empty lines")
	}
}

func TestSerialize(t *testing.T) {
	id := bson.NewObjectID()
	actor := bson.NewObjectID()
	when := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

	out := Transaction.Serialize(bson.M{
		"_id":        id,
		"type":       model.TxTypeOut,
		"qty":        float64(4),
		"occurredAt": when,
		"ref":        bson.M{"model": "audit", "id": actor},
		"note":       nil,
	})

	if out["_id"] != id.Hex() {
		t.Errorf("expected hex id, got %v", out["_id"])
	}
	if out["occurredAt"] != "2025-03-14T09:26:53Z" {
		t.Errorf("expected ISO date, got %v", out["occurredAt"])
	}
	ref, _ := out["ref"].(map[string]any)
	if ref["id"] != actor.Hex() {
		t.Errorf("expected nested id serialized, got %v", ref)
	}
	if _, ok := out["note"]; ok {
		t.Error("nil fields must be omitted")
	}
}

func TestSerializeHidesSecrets(t *testing.T) {
	out := User.Serialize(bson.M{
		"_id":          bson.NewObjectID(),
		"email":        "person@example.com",
		"passwordHash": "$2a$10$abcdefghijklmnopqrstuv",
	})

	if _, ok := out["passwordHash"]; ok {
		t.Error("passwordHash must never be serialized")
	}
	if out["email"] != "person@example.com" {
		t.Errorf("expected email kept, got %v", out["email"])
	}
}
