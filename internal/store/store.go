// Package store performs the single-document persistence operations behind
// every handler. All operations are schema-driven: the caller passes a
// normalized document and the resource's Schema, and gets back the stored
// document re-read from the collection, so responses always reflect exactly
// what was persisted.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/erazemk/shramba/internal/apperr"
	"github.com/erazemk/shramba/internal/db"
	"github.com/erazemk/shramba/internal/resource"
)

// Create inserts a normalized document with fresh timestamps and re-reads the
// stored record.
func Create(ctx context.Context, conn *db.Conn, s *resource.Schema, doc bson.M) (bson.M, error) {
	coll := conn.Collection(s.Collection)

	now := time.Now().UTC()
	doc["createdAt"] = now
	doc["updatedAt"] = now

	id, err := coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, wrap(err, s, "")
	}

	stored, err := coll.FindOne(ctx, bson.M{"_id": id})
	if err != nil {
		return nil, fmt.Errorf("reading back created %s: %w", s.Singular, err)
	}
	return stored, nil
}

// Update patches a record by identifier and returns the post-update document
// in one atomic call.
func Update(ctx context.Context, conn *db.Conn, s *resource.Schema, id bson.ObjectID, patch bson.M) (bson.M, error) {
	coll := conn.Collection(s.Collection)

	patch["updatedAt"] = time.Now().UTC()

	stored, err := coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": patch})
	if err != nil {
		return nil, wrap(err, s, id.Hex())
	}
	return stored, nil
}

// Delete removes a record by identifier.
func Delete(ctx context.Context, conn *db.Conn, s *resource.Schema, id bson.ObjectID) error {
	deleted, err := conn.Collection(s.Collection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return wrap(err, s, id.Hex())
	}
	if deleted == 0 {
		return apperr.NotFound(s.Singular, id.Hex())
	}
	return nil
}

// List returns all records matching the filter, in the schema's sort order.
func List(ctx context.Context, conn *db.Conn, s *resource.Schema, filter bson.M) ([]bson.M, error) {
	docs, err := conn.Collection(s.Collection).Find(ctx, filter, s.Sort)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", s.Plural, err)
	}
	return docs, nil
}

// wrap translates the db sentinels into resource-specific tagged errors.
// Everything else is passed through (and classified as internal upstream).
func wrap(err error, s *resource.Schema, id string) error {
	switch {
	case errors.Is(err, db.ErrDuplicateKey):
		return apperr.Duplicate(s.Plural, s.DuplicateMessage)
	case errors.Is(err, db.ErrNotFound):
		return apperr.NotFound(s.Singular, id)
	default:
		return fmt.Errorf("%s operation: %w", s.Singular, err)
	}
}
