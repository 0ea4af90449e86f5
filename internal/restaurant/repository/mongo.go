package repository

import (
	"context"
	"errors"

	"github.com/travelapp/restaurants/backend/go-services/internal/restaurant"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// CollectionProvider hands out the restaurants collection. *database.Provider
// satisfies it; tests pass a fixed collection.
type CollectionProvider interface {
	Collection(ctx context.Context) (*mongo.Collection, error)
}

// CollectionFunc adapts a function to CollectionProvider.
type CollectionFunc func(ctx context.Context) (*mongo.Collection, error)

func (f CollectionFunc) Collection(ctx context.Context) (*mongo.Collection, error) { return f(ctx) }

// MongoRepo implements Repository on the restaurants collection. No index is
// created: restaurant_id is not unique and lookups take the first match.
type MongoRepo struct {
	provider CollectionProvider
}

func NewMongoRepo(p CollectionProvider) *MongoRepo {
	return &MongoRepo{provider: p}
}

func byRestaurantID(id string) bson.D {
	return bson.D{{Key: restaurant.FieldRestaurantID, Value: id}}
}

func (m *MongoRepo) Insert(ctx context.Context, doc restaurant.Document) (interface{}, error) {
	col, err := m.provider.Collection(ctx)
	if err != nil {
		return nil, err
	}
	res, err := col.InsertOne(ctx, doc)
	if err != nil {
		return nil, &restaurant.DatabaseError{Op: "insert", Err: err}
	}
	return res.InsertedID, nil
}

func (m *MongoRepo) FindByRestaurantID(ctx context.Context, id string) (restaurant.Document, error) {
	col, err := m.provider.Collection(ctx)
	if err != nil {
		return nil, err
	}
	var doc restaurant.Document
	if err := col.FindOne(ctx, byRestaurantID(id)).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, restaurant.ErrNotFound
		}
		return nil, &restaurant.DatabaseError{Op: "find", Err: err}
	}
	return doc, nil
}

func (m *MongoRepo) UpdateByRestaurantID(ctx context.Context, id string, changes restaurant.Document) error {
	col, err := m.provider.Collection(ctx)
	if err != nil {
		return err
	}
	res, err := col.UpdateOne(ctx, byRestaurantID(id), bson.D{{Key: "$set", Value: changes}})
	if err != nil {
		return &restaurant.DatabaseError{Op: "update", Err: err}
	}
	if res.MatchedCount == 0 {
		return restaurant.ErrNotFound
	}
	if res.ModifiedCount == 0 {
		return restaurant.ErrNotModified
	}
	return nil
}

func (m *MongoRepo) DeleteByRestaurantID(ctx context.Context, id string) (restaurant.Document, error) {
	col, err := m.provider.Collection(ctx)
	if err != nil {
		return nil, err
	}
	var doc restaurant.Document
	if err := col.FindOneAndDelete(ctx, byRestaurantID(id)).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, restaurant.ErrNotFound
		}
		return nil, &restaurant.DatabaseError{Op: "delete", Err: err}
	}
	return doc, nil
}
