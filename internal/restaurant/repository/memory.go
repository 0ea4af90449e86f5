package repository

import (
	"context"
	"errors"
	"sync"

	"github.com/travelapp/restaurants/backend/go-services/internal/restaurant"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var errDuplicateKey = errors.New("E11000 duplicate key error on _id")

// MemoryRepo is an in-memory Repository used by unit tests and local runs
// without a database. Documents keep insertion order so "first match"
// behaves like a natural-order collection scan.
type MemoryRepo struct {
	mu   sync.RWMutex
	docs []restaurant.Document
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{}
}

func clone(doc restaurant.Document) restaurant.Document {
	out := make(restaurant.Document, len(doc))
	copy(out, doc)
	return out
}

func (m *MemoryRepo) indexOf(id string) int {
	for i, d := range m.docs {
		if v, ok := restaurant.Lookup(d, restaurant.FieldRestaurantID); ok && restaurant.SameValue(v, id) {
			return i
		}
	}
	return -1
}

func (m *MemoryRepo) Insert(_ context.Context, doc restaurant.Document) (interface{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := clone(doc)
	oid, ok := restaurant.Lookup(stored, restaurant.FieldID)
	if !ok {
		// the driver prepends a generated _id the same way
		oid = primitive.NewObjectID()
		stored = append(restaurant.Document{{Key: restaurant.FieldID, Value: oid}}, stored...)
	}
	for _, d := range m.docs {
		if v, _ := restaurant.Lookup(d, restaurant.FieldID); restaurant.SameValue(v, oid) {
			return nil, &restaurant.DatabaseError{Op: "insert", Err: errDuplicateKey}
		}
	}
	m.docs = append(m.docs, stored)
	return oid, nil
}

func (m *MemoryRepo) FindByRestaurantID(_ context.Context, id string) (restaurant.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i := m.indexOf(id)
	if i < 0 {
		return nil, restaurant.ErrNotFound
	}
	return clone(m.docs[i]), nil
}

func (m *MemoryRepo) UpdateByRestaurantID(_ context.Context, id string, changes restaurant.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOf(id)
	if i < 0 {
		return restaurant.ErrNotFound
	}
	doc := clone(m.docs[i])
	modified := false
	for _, ch := range changes {
		found := false
		for j := range doc {
			if doc[j].Key != ch.Key {
				continue
			}
			found = true
			if !restaurant.SameValue(doc[j].Value, ch.Value) {
				doc[j].Value = ch.Value
				modified = true
			}
			break
		}
		if !found {
			doc = append(doc, ch)
			modified = true
		}
	}
	if !modified {
		return restaurant.ErrNotModified
	}
	m.docs[i] = doc
	return nil
}

func (m *MemoryRepo) DeleteByRestaurantID(_ context.Context, id string) (restaurant.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOf(id)
	if i < 0 {
		return nil, restaurant.ErrNotFound
	}
	doc := m.docs[i]
	m.docs = append(m.docs[:i], m.docs[i+1:]...)
	return doc, nil
}

// Len returns the number of stored documents.
func (m *MemoryRepo) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs)
}
