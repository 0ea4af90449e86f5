package repository

import (
	"context"

	"github.com/travelapp/restaurants/backend/go-services/internal/restaurant"
)

// Repository is the persistence contract for restaurant documents. Every
// lookup is an equality match on restaurant_id and acts on the first match.
type Repository interface {
	// Insert stores doc and returns the assigned _id.
	Insert(ctx context.Context, doc restaurant.Document) (interface{}, error)
	FindByRestaurantID(ctx context.Context, id string) (restaurant.Document, error)
	// UpdateByRestaurantID $sets the given fields. It returns ErrNotFound when
	// nothing matched and ErrNotModified when the values were already current.
	UpdateByRestaurantID(ctx context.Context, id string, changes restaurant.Document) error
	// DeleteByRestaurantID removes the first match and returns it.
	DeleteByRestaurantID(ctx context.Context, id string) (restaurant.Document, error)
}
