package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/erazemk/shramba/internal/apperr"
	"github.com/erazemk/shramba/internal/db"
)

// FindUserByEmail looks up a user for authentication. Emails are stored
// lower-cased, so the lookup is case-insensitive by construction.
func FindUserByEmail(ctx context.Context, conn *db.Conn, email string) (bson.M, error) {
	doc, err := conn.Collection(db.Users).FindOne(ctx, bson.M{"email": email})
	if errors.Is(err, db.ErrNotFound) {
		return nil, apperr.NotFound("user", "")
	}
	return doc, err
}

// CountUsers reports whether any account exists, for first-run bootstrap.
func CountUsers(ctx context.Context, conn *db.Conn) (int, error) {
	docs, err := conn.Collection(db.Users).Find(ctx, bson.M{}, nil)
	if err != nil {
		return 0, err
	}
	return len(docs), nil
}
