package db

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// NewTestConn creates a ready in-memory connection with the same unique-key
// behavior as the real database. Documents live in per-collection maps; no
// external process is required.
func NewTestConn(t *testing.T) *Conn {
	t.Helper()

	conn := &Conn{mem: make(map[string]*memCollection)}
	for _, name := range []string{Items, Locations, Lots, Transactions, Audits, Users} {
		conn.mem[name] = &memCollection{
			docs:   make(map[bson.ObjectID]bson.M),
			unique: uniqueIndexes[name],
		}
	}
	conn.SetReady(true)
	return conn
}

// memCollection implements Collection over a map, with unique-index
// emulation. A missing key field and an explicit null share the same index
// key, as in MongoDB.
type memCollection struct {
	mu     sync.Mutex
	docs   map[bson.ObjectID]bson.M
	unique [][]string
}

func (m *memCollection) InsertOne(_ context.Context, doc bson.M) (bson.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := cloneDoc(doc)
	id, ok := stored["_id"].(bson.ObjectID)
	if !ok {
		id = bson.NewObjectID()
		stored["_id"] = id
	}

	if err := m.checkUnique(stored, id); err != nil {
		return bson.ObjectID{}, err
	}

	m.docs[id] = stored
	return id, nil
}

func (m *memCollection) FindOne(_ context.Context, filter bson.M) (bson.M, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, doc := range m.docs {
		if matches(doc, filter) {
			return cloneDoc(doc), nil
		}
	}
	return nil, ErrNotFound
}

func (m *memCollection) Find(_ context.Context, filter bson.M, sortSpec bson.D) ([]bson.M, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []bson.M
	for _, doc := range m.docs {
		if matches(doc, filter) {
			out = append(out, cloneDoc(doc))
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		for _, key := range sortSpec {
			a, b := out[i][key.Key], out[j][key.Key]
			cmp := compareValues(a, b)
			if cmp == 0 {
				continue
			}
			if dir, ok := key.Value.(int); ok && dir < 0 {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})

	return out, nil
}

func (m *memCollection) FindOneAndUpdate(_ context.Context, filter, update bson.M) (bson.M, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, doc := range m.docs {
		if !matches(doc, filter) {
			continue
		}

		updated := cloneDoc(doc)
		applyUpdate(updated, update, false)
		if err := m.checkUnique(updated, id); err != nil {
			return nil, err
		}

		m.docs[id] = updated
		return cloneDoc(updated), nil
	}
	return nil, ErrNotFound
}

func (m *memCollection) UpdateOne(_ context.Context, filter, update bson.M, upsert bool) (UpdateResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, doc := range m.docs {
		if !matches(doc, filter) {
			continue
		}

		updated := cloneDoc(doc)
		applyUpdate(updated, update, false)
		if err := m.checkUnique(updated, id); err != nil {
			return UpdateResult{}, err
		}

		m.docs[id] = updated
		return UpdateResult{Matched: 1}, nil
	}

	if !upsert {
		return UpdateResult{}, nil
	}

	// Build the upserted document from the filter's equality fields, as the
	// server does.
	doc := bson.M{}
	for key, value := range filter {
		if _, isOperator := value.(bson.M); !isOperator {
			doc[key] = value
		}
	}
	applyUpdate(doc, update, true)

	id := bson.NewObjectID()
	doc["_id"] = id
	if err := m.checkUnique(doc, id); err != nil {
		return UpdateResult{}, err
	}

	m.docs[id] = doc
	return UpdateResult{UpsertedID: id, Upserted: true}, nil
}

func (m *memCollection) DeleteOne(_ context.Context, filter bson.M) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, doc := range m.docs {
		if matches(doc, filter) {
			delete(m.docs, id)
			return 1, nil
		}
	}
	return 0, nil
}

func (m *memCollection) checkUnique(candidate bson.M, candidateID bson.ObjectID) error {
	for _, fields := range m.unique {
		key := indexKey(candidate, fields)
		for id, doc := range m.docs {
			if id == candidateID {
				continue
			}
			if indexKey(doc, fields) == key {
				return fmt.Errorf("%w: index on %v", ErrDuplicateKey, fields)
			}
		}
	}
	return nil
}

func indexKey(doc bson.M, fields []string) string {
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%v", doc[field]))
	}
	return strings.Join(parts, "\x00")
}

func matches(doc, filter bson.M) bool {
	for key, want := range filter {
		got, present := doc[key]
		if want == nil {
			// Null matches missing or explicit null, as in MongoDB.
			if present && got != nil {
				return false
			}
			continue
		}
		if !equalValues(got, want) {
			return false
		}
	}
	return true
}

func equalValues(a, b any) bool {
	if ta, ok := a.(time.Time); ok {
		tb, ok := b.(time.Time)
		return ok && ta.Equal(tb)
	}
	return fmt.Sprintf("%v|%T", a, a) == fmt.Sprintf("%v|%T", b, b)
}

func compareValues(a, b any) int {
	sa, sb := fmt.Sprintf("%v", a), fmt.Sprintf("%v", b)
	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			switch {
			case ta.Before(tb):
				return -1
			case ta.After(tb):
				return 1
			default:
				return 0
			}
		}
	}
	return strings.Compare(sa, sb)
}

func applyUpdate(doc, update bson.M, insert bool) {
	if set, ok := update["$set"].(bson.M); ok {
		for key, value := range set {
			doc[key] = value
		}
	}
	if unset, ok := update["$unset"].(bson.M); ok {
		for key := range unset {
			delete(doc, key)
		}
	}
	if insert {
		if setOnInsert, ok := update["$setOnInsert"].(bson.M); ok {
			for key, value := range setOnInsert {
				doc[key] = value
			}
		}
	}
}

func cloneDoc(doc bson.M) bson.M {
	out := make(bson.M, len(doc))
	for key, value := range doc {
		out[key] = cloneValue(value)
	}
	return out
}

func cloneValue(value any) any {
	switch v := value.(type) {
	case bson.M:
		return cloneDoc(v)
	case []bson.M:
		out := make([]bson.M, len(v))
		for i, entry := range v {
			out[i] = cloneDoc(entry)
		}
		return out
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]any, len(v))
		for i, entry := range v {
			out[i] = cloneValue(entry)
		}
		return out
	default:
		return v
	}
}
