package server

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/travelapp/restaurants/backend/go-services/internal/auth"
	"github.com/travelapp/restaurants/backend/go-services/internal/config"
	"github.com/travelapp/restaurants/backend/go-services/internal/database"
	"github.com/travelapp/restaurants/backend/go-services/internal/restaurant/repository"
	"github.com/travelapp/restaurants/backend/go-services/internal/restaurant/service"
	"github.com/travelapp/restaurants/backend/go-services/internal/storage"
	"github.com/travelapp/restaurants/backend/go-services/pkg/logger"
)

// Bootstrap wires the runtime collaborators from cfg. The Mongo client is not
// created here; the provider connects lazily on first use. Optional backends
// (Redis, archive) are skipped with a warning when unreachable. Auth
// misconfiguration is fatal: serving open routes by accident is worse than
// not starting.
func Bootstrap(ctx context.Context, cfg *config.Config) (Deps, *database.Provider, error) {
	provider := database.NewProvider(cfg.MongoDB)
	if cfg.MongoDB.URI == "" {
		logger.Warn("MONGODB_URI is not set; restaurant requests will fail until it is configured")
	}

	var opts []service.Option
	if cfg.Archive.Enabled() {
		arch, err := storage.NewMinIOArchive(ctx, cfg.Archive)
		if err != nil {
			logger.Warnf("archive disabled: %v", err)
		} else {
			opts = append(opts, service.WithArchiver(arch))
			logger.Infof("archiving deleted restaurants to %s/%s", cfg.Archive.Bucket, cfg.Archive.Prefix)
		}
	}

	deps := Deps{
		Config:  cfg,
		Service: service.New(repository.NewMongoRepo(provider), opts...),
		Pinger:  provider,
	}

	if addr := cfg.Redis.Addr(); addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warnf("redis %s unreachable: %v", addr, err)
			_ = rdb.Close()
		} else {
			logger.Infof("connected to redis %s", addr)
			deps.Redis = rdb
		}
	}

	ver, err := auth.NewVerifier(ctx, cfg.Auth)
	if err != nil {
		return Deps{}, nil, fmt.Errorf("auth: %w", err)
	}
	if ver != nil {
		deps.Verifier = ver
		if deps.Redis != nil {
			deps.Revocations = auth.NewRevocations(deps.Redis, "")
		}
	}
	return deps, provider, nil
}
