package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/travelapp/restaurants/backend/go-services/internal/config"
	"github.com/travelapp/restaurants/backend/go-services/internal/functions"
	"github.com/travelapp/restaurants/backend/go-services/internal/server"
	"github.com/travelapp/restaurants/backend/go-services/pkg/logger"
)

// The router and its lazily connected provider live for the whole container,
// so warm invocations reuse the Mongo client. It is never disconnected.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Init(cfg.LogLevel)

	deps, _, err := server.Bootstrap(context.Background(), cfg)
	if err != nil {
		logger.Fatalf("startup failed: %v", err)
	}
	lambda.Start(functions.NewAdapter(server.New(deps)).Handle)
}
