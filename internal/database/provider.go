package database

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/travelapp/restaurants/backend/go-services/internal/config"
	"github.com/travelapp/restaurants/backend/go-services/pkg/logger"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// ErrConfiguration is returned when the connection string is missing or malformed.
var ErrConfiguration = errors.New("mongodb connection string is missing or invalid")

// Provider lazily builds one client for the process and hands out the
// restaurants collection. The handle is never torn down on the request path;
// the driver pools connections internally.
type Provider struct {
	cfg config.MongoDBConfig

	mu     sync.Mutex
	col    atomic.Pointer[mongo.Collection]
	client *mongo.Client

	// connect is swapped in tests to count constructions.
	connect func(ctx context.Context, opts *options.ClientOptions) (*mongo.Client, error)
}

func NewProvider(cfg config.MongoDBConfig) *Provider {
	if cfg.Database == "" {
		cfg.Database = config.DatabaseName
	}
	if cfg.Collection == "" {
		cfg.Collection = config.CollectionName
	}
	return &Provider{
		cfg: cfg,
		connect: func(ctx context.Context, opts *options.ClientOptions) (*mongo.Client, error) {
			return mongo.Connect(ctx, opts)
		},
	}
}

// Collection returns the shared collection handle, constructing the client on first use.
func (p *Provider) Collection(ctx context.Context) (*mongo.Collection, error) {
	if col := p.col.Load(); col != nil {
		return col, nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if col := p.col.Load(); col != nil {
		return col, nil
	}

	if p.cfg.URI == "" {
		return nil, ErrConfiguration
	}
	opts := options.Client().ApplyURI(p.cfg.URI)
	if p.cfg.ServerSelectionTimeout > 0 {
		opts.SetServerSelectionTimeout(p.cfg.ServerSelectionTimeout)
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	client, err := p.connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	logger.Infof("mongodb client initialised (database=%s collection=%s)", p.cfg.Database, p.cfg.Collection)

	p.client = client
	col := client.Database(p.cfg.Database).Collection(p.cfg.Collection)
	p.col.Store(col)
	return col, nil
}

// Ping checks the primary is reachable; used by the readiness check.
func (p *Provider) Ping(ctx context.Context) error {
	col, err := p.Collection(ctx)
	if err != nil {
		return err
	}
	return col.Database().Client().Ping(ctx, readpref.Primary())
}

// Disconnect closes the client if one was built. Only the long-running
// server calls this at shutdown.
func (p *Provider) Disconnect(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client == nil {
		return nil
	}
	err := p.client.Disconnect(ctx)
	p.client = nil
	p.col.Store(nil)
	return err
}
