package restaurant

import (
	"bytes"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Field names with meaning to the service. Every other field is opaque.
const (
	FieldID           = "_id"
	FieldRestaurantID = "restaurant_id"
)

// Document is a restaurant record as stored in the restaurants collection.
// Field order is preserved from the request body.
type Document = bson.D

// ParseDocument decodes a JSON object (relaxed or canonical Extended JSON).
func ParseDocument(data []byte) (Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrInvalidDocument)
	}
	var doc Document
	if err := bson.UnmarshalExtJSON(data, false, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: expected a JSON object", ErrInvalidDocument)
	}
	return doc, nil
}

// FormatDocument renders a document as relaxed Extended JSON.
func FormatDocument(doc Document) ([]byte, error) {
	return bson.MarshalExtJSON(doc, false, false)
}

// Lookup returns the value of a top-level field.
func Lookup(doc Document, key string) (interface{}, bool) {
	for _, e := range doc {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// FormatID renders an inserted _id for clients: ObjectIDs as hex, anything else via %v.
func FormatID(id interface{}) string {
	switch v := id.(type) {
	case primitive.ObjectID:
		return v.Hex()
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

// SameValue reports whether two field values encode to identical BSON.
func SameValue(a, b interface{}) bool {
	ta, ba, err := bson.MarshalValue(a)
	if err != nil {
		return false
	}
	tb, bb, err := bson.MarshalValue(b)
	if err != nil {
		return false
	}
	return ta == tb && bytes.Equal(ba, bb)
}
