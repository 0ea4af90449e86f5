package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/travelapp/restaurants/backend/go-services/internal/restaurant"
	"github.com/travelapp/restaurants/backend/go-services/internal/restaurant/repository"
	"github.com/travelapp/restaurants/backend/go-services/pkg/logger"
)

// Service defines the restaurant operations used by the handler layer.
// Request bodies are passed through raw so parsing failures surface as
// restaurant.ErrInvalidDocument before any database call.
type Service interface {
	Create(ctx context.Context, body []byte) (string, error)
	Get(ctx context.Context, restaurantID string) (restaurant.Document, error)
	Update(ctx context.Context, restaurantID string, body []byte) error
	Delete(ctx context.Context, restaurantID string) (restaurant.Document, error)
}

// Archiver keeps a copy of deleted restaurants.
type Archiver interface {
	Archive(ctx context.Context, restaurantID string, body []byte) (string, error)
}

type Option func(*restaurantService)

// DefaultArchiveTimeout bounds the archive upload made during a DELETE.
const DefaultArchiveTimeout = 3 * time.Second

// WithArchiver snapshots every deleted document. Archive failures are logged only.
func WithArchiver(a Archiver) Option {
	return func(s *restaurantService) { s.archiver = a }
}

// WithArchiveTimeout overrides DefaultArchiveTimeout.
func WithArchiveTimeout(d time.Duration) Option {
	return func(s *restaurantService) {
		if d > 0 {
			s.archiveTimeout = d
		}
	}
}

// New returns a Service over the given repository.
func New(repo repository.Repository, opts ...Option) Service {
	s := &restaurantService{repo: repo, archiveTimeout: DefaultArchiveTimeout}
	for _, o := range opts {
		o(s)
	}
	return s
}

// NewMemoryService returns a Service backed by the in-memory repository.
func NewMemoryService() Service {
	return New(repository.NewMemoryRepo())
}

type restaurantService struct {
	repo           repository.Repository
	archiver       Archiver
	archiveTimeout time.Duration
}

func (s *restaurantService) Create(ctx context.Context, body []byte) (string, error) {
	doc, err := restaurant.ParseDocument(body)
	if err != nil {
		return "", err
	}
	id, err := s.repo.Insert(ctx, doc)
	if err != nil {
		return "", err
	}
	return restaurant.FormatID(id), nil
}

func (s *restaurantService) Get(ctx context.Context, restaurantID string) (restaurant.Document, error) {
	return s.repo.FindByRestaurantID(ctx, restaurantID)
}

// Update applies a shallow $set of the fields in body. Keys must be plain
// top-level names so a change replaces whole fields and never writes inside
// nested objects. An empty change set takes the not-found path without
// touching the database.
func (s *restaurantService) Update(ctx context.Context, restaurantID string, body []byte) error {
	changes, err := restaurant.ParseDocument(body)
	if err != nil {
		return err
	}
	if len(changes) == 0 {
		return fmt.Errorf("%w: empty change set", restaurant.ErrNotFound)
	}
	for _, e := range changes {
		switch {
		case e.Key == restaurant.FieldID:
			return restaurant.ErrImmutableField
		case e.Key == "", strings.HasPrefix(e.Key, "$"), strings.Contains(e.Key, "."):
			return fmt.Errorf("%w: %q", restaurant.ErrInvalidField, e.Key)
		}
	}
	return s.repo.UpdateByRestaurantID(ctx, restaurantID, changes)
}

func (s *restaurantService) Delete(ctx context.Context, restaurantID string) (restaurant.Document, error) {
	doc, err := s.repo.DeleteByRestaurantID(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	if s.archiver != nil {
		s.archive(ctx, restaurantID, doc)
	}
	return doc, nil
}

func (s *restaurantService) archive(ctx context.Context, restaurantID string, doc restaurant.Document) {
	body, err := restaurant.FormatDocument(doc)
	if err != nil {
		logger.Warnf("archive: cannot render restaurant %s: %v", restaurantID, err)
		return
	}
	ctx, cancel := context.WithTimeout(ctx, s.archiveTimeout)
	defer cancel()
	key, err := s.archiver.Archive(ctx, restaurantID, body)
	if err != nil {
		logger.Warnf("archive: restaurant %s not archived: %v", restaurantID, err)
		return
	}
	logger.Debugf("archive: restaurant %s stored at %s", restaurantID, key)
}
