// Package db wraps the MongoDB connection behind an explicit Conn value that
// handlers receive by injection. Readiness flips via driver heartbeat
// callbacks, and every store operation goes through the minimal Collection
// accessor so tests can substitute an in-memory implementation.
package db

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/event"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Collection names.
const (
	Items        = "items"
	Locations    = "locations"
	Lots         = "inventorylots"
	Transactions = "stocktransactions"
	Audits       = "audits"
	Users        = "users"
)

// Sentinel errors translated from the driver at the point of failure. Stores
// wrap these into resource-specific apperr variants.
var (
	ErrDuplicateKey = errors.New("duplicate key")
	ErrNotFound     = errors.New("no matching document")
)

// UpdateResult reports the outcome of an UpdateOne call.
type UpdateResult struct {
	Matched    int64
	UpsertedID bson.ObjectID
	Upserted   bool
}

// Collection is the minimal accessor stores operate on: single-document
// inserts, reads, updates, and deletes. The production implementation is a
// thin layer over a mongo collection; tests use the in-memory one from
// NewTestConn.
type Collection interface {
	InsertOne(ctx context.Context, doc bson.M) (bson.ObjectID, error)
	FindOne(ctx context.Context, filter bson.M) (bson.M, error)
	Find(ctx context.Context, filter bson.M, sort bson.D) ([]bson.M, error)
	FindOneAndUpdate(ctx context.Context, filter, update bson.M) (bson.M, error)
	UpdateOne(ctx context.Context, filter, update bson.M, upsert bool) (UpdateResult, error)
	DeleteOne(ctx context.Context, filter bson.M) (int64, error)
}

// Conn is the connection handle passed into every handler.
type Conn struct {
	client *mongo.Client
	db     *mongo.Database
	ready  atomic.Bool

	// mem is non-nil for in-memory test connections.
	mem map[string]*memCollection
}

// Connect opens a client against uri and registers heartbeat callbacks that
// keep the readiness flag current. The driver establishes the connection
// lazily; Ready reports false until the first successful heartbeat.
func Connect(uri, dbName string) (*Conn, error) {
	conn := &Conn{}

	monitor := &event.ServerMonitor{
		ServerHeartbeatSucceeded: func(*event.ServerHeartbeatSucceededEvent) {
			conn.ready.Store(true)
		},
		ServerHeartbeatFailed: func(*event.ServerHeartbeatFailedEvent) {
			conn.ready.Store(false)
		},
	}

	client, err := mongo.Connect(options.Client().ApplyURI(uri).SetServerMonitor(monitor))
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	conn.client = client
	conn.db = client.Database(dbName)
	return conn, nil
}

// Ready reports whether the last heartbeat succeeded.
func (c *Conn) Ready() bool { return c.ready.Load() }

// SetReady overrides the readiness flag. Written by the heartbeat callbacks
// and by tests; handlers only read it.
func (c *Conn) SetReady(ready bool) { c.ready.Store(ready) }

// Ping checks connectivity directly, for the health endpoint.
func (c *Conn) Ping(ctx context.Context) error {
	if c.client == nil {
		if c.Ready() {
			return nil
		}
		return ErrNotFound
	}
	return c.client.Ping(ctx, nil)
}

// Close disconnects the client.
func (c *Conn) Close(ctx context.Context) error {
	if c.client == nil {
		return nil
	}
	return c.client.Disconnect(ctx)
}

// Collection returns the accessor for the named collection.
func (c *Conn) Collection(name string) Collection {
	if c.mem != nil {
		return c.mem[name]
	}
	return &mongoCollection{coll: c.db.Collection(name)}
}

// uniqueIndexes declares the unique keys per collection. The lot compound key
// includes lotCode; uncoded lots store an explicit null there, so the whole
// absent class shares one index key, distinct from every code value.
var uniqueIndexes = map[string][][]string{
	Items:     {{"name"}},
	Locations: {{"name"}},
	Users:     {{"email"}},
	Lots:      {{"itemId", "locationId", "lotCode"}},
}

// EnsureIndexes creates the unique indexes (idempotent).
func (c *Conn) EnsureIndexes(ctx context.Context) error {
	if c.mem != nil {
		return nil
	}

	for name, specs := range uniqueIndexes {
		coll := c.db.Collection(name)
		for _, fields := range specs {
			keys := bson.D{}
			for _, field := range fields {
				keys = append(keys, bson.E{Key: field, Value: 1})
			}
			_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
				Keys:    keys,
				Options: options.Index().SetUnique(true),
			})
			if err != nil {
				return fmt.Errorf("creating %s index on %v: %w", name, fields, err)
			}
		}
	}
	return nil
}

// mongoCollection adapts a driver collection to the Collection interface,
// translating driver errors into the package sentinels.
type mongoCollection struct {
	coll *mongo.Collection
}

func (m *mongoCollection) InsertOne(ctx context.Context, doc bson.M) (bson.ObjectID, error) {
	result, err := m.coll.InsertOne(ctx, doc)
	if err != nil {
		return bson.ObjectID{}, translate(err)
	}
	id, ok := result.InsertedID.(bson.ObjectID)
	if !ok {
		return bson.ObjectID{}, fmt.Errorf("unexpected inserted id type %T", result.InsertedID)
	}
	return id, nil
}

func (m *mongoCollection) FindOne(ctx context.Context, filter bson.M) (bson.M, error) {
	var doc bson.M
	if err := m.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, translate(err)
	}
	return doc, nil
}

func (m *mongoCollection) Find(ctx context.Context, filter bson.M, sort bson.D) ([]bson.M, error) {
	opts := options.Find()
	if len(sort) > 0 {
		opts = opts.SetSort(sort)
	}

	cursor, err := m.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, translate(err)
	}

	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, translate(err)
	}
	return docs, nil
}

func (m *mongoCollection) FindOneAndUpdate(ctx context.Context, filter, update bson.M) (bson.M, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc bson.M
	if err := m.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		return nil, translate(err)
	}
	return doc, nil
}

func (m *mongoCollection) UpdateOne(ctx context.Context, filter, update bson.M, upsert bool) (UpdateResult, error) {
	result, err := m.coll.UpdateOne(ctx, filter, update, options.UpdateOne().SetUpsert(upsert))
	if err != nil {
		return UpdateResult{}, translate(err)
	}

	out := UpdateResult{Matched: result.MatchedCount}
	if result.UpsertedCount > 0 {
		out.Upserted = true
		if id, ok := result.UpsertedID.(bson.ObjectID); ok {
			out.UpsertedID = id
		}
	}
	return out, nil
}

func (m *mongoCollection) DeleteOne(ctx context.Context, filter bson.M) (int64, error) {
	result, err := m.coll.DeleteOne(ctx, filter)
	if err != nil {
		return 0, translate(err)
	}
	return result.DeletedCount, nil
}

func translate(err error) error {
	switch {
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %w", ErrDuplicateKey, err)
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	default:
		return err
	}
}
