package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/travelapp/restaurants/backend/go-services/internal/auth"
	"github.com/travelapp/restaurants/backend/go-services/internal/config"
	"github.com/travelapp/restaurants/backend/go-services/internal/database"
	"github.com/travelapp/restaurants/backend/go-services/internal/storage"
	"github.com/travelapp/restaurants/backend/go-services/pkg/logger"
	"github.com/urfave/cli"
)

func main() {
	logger.Init(os.Getenv("LOG_LEVEL"))
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "restaurantctl"
	app.Usage = "operator tool for the restaurant service"
	app.Commands = []cli.Command{
		pingCommand(),
		tokenCommand(),
		revokeCommand(),
		archiveURLCommand(),
	}
	return app
}

func pingCommand() cli.Command {
	return cli.Command{
		Name:  "ping",
		Usage: "check that the configured MongoDB deployment is reachable",
		Flags: []cli.Flag{
			cli.StringFlag{Name: "uri", Usage: "connection string (defaults to MONGODB_URI)"},
			cli.DurationFlag{Name: "timeout", Usage: "server selection timeout", Value: 5 * time.Second},
		},
		Action: func(c *cli.Context) error {
			uri := c.String("uri")
			if uri == "" {
				cfg, err := config.LoadConfig()
				if err != nil {
					return err
				}
				uri = cfg.MongoDB.URI
			}
			ctx, cancel := context.WithTimeout(context.Background(), c.Duration("timeout")+5*time.Second)
			defer cancel()

			client, err := database.ConnectMongo(ctx, uri, c.Duration("timeout"))
			if err != nil {
				return fmt.Errorf("ping: %w", err)
			}
			defer func() { _ = client.Disconnect(context.Background()) }()
			fmt.Fprintf(c.App.Writer, "ok: %s.%s reachable\n", config.DatabaseName, config.CollectionName)
			return nil
		},
	}
}

func tokenCommand() cli.Command {
	return cli.Command{
		Name:  "token",
		Usage: "mint an HMAC bearer token for the restaurant routes",
		Flags: []cli.Flag{
			cli.StringFlag{Name: "secret", Usage: "signing secret", EnvVar: "AUTH_JWT_SECRET"},
			cli.StringFlag{Name: "subject, sub", Usage: "token subject", Value: "restaurantctl"},
			cli.DurationFlag{Name: "ttl", Usage: "token lifetime", Value: time.Hour},
		},
		Action: func(c *cli.Context) error {
			if c.Duration("ttl") <= 0 {
				return errors.New("ttl must be positive")
			}
			token, jti, err := auth.GenerateToken(c.String("secret"), c.String("subject"), c.Duration("ttl"))
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, token)
			logger.Infof("issued token jti=%s sub=%s ttl=%s", jti, c.String("subject"), c.Duration("ttl"))
			return nil
		},
	}
}

func revokeCommand() cli.Command {
	return cli.Command{
		Name:      "revoke",
		Usage:     "add a token's jti to the Redis revocation list",
		ArgsUsage: "<token>",
		Flags: []cli.Flag{
			cli.StringFlag{Name: "redis", Usage: "redis host:port (defaults to REDIS_HOST/REDIS_PORT)"},
		},
		Action: func(c *cli.Context) error {
			raw := c.Args().First()
			if raw == "" {
				return errors.New("revoke: token argument is required")
			}
			jti, expires, err := auth.ParseUnverified(raw)
			if err != nil {
				return fmt.Errorf("revoke: %w", err)
			}

			addr := c.String("redis")
			password := ""
			if addr == "" {
				cfg, err := config.LoadConfig()
				if err != nil {
					return err
				}
				addr, password = cfg.Redis.Addr(), cfg.Redis.Password
			}
			if addr == "" {
				return errors.New("revoke: redis is not configured")
			}
			rdb := redis.NewClient(&redis.Options{Addr: addr, Password: password})
			defer rdb.Close()

			var ttl time.Duration
			if !expires.IsZero() {
				ttl = time.Until(expires)
				if ttl <= 0 {
					fmt.Fprintf(c.App.Writer, "token %s already expired\n", jti)
					return nil
				}
			}
			if err := auth.NewRevocations(rdb, "").Revoke(context.Background(), jti, ttl); err != nil {
				return fmt.Errorf("revoke: %w", err)
			}
			fmt.Fprintf(c.App.Writer, "revoked %s\n", jti)
			return nil
		},
	}
}

func archiveURLCommand() cli.Command {
	return cli.Command{
		Name:      "archive-url",
		Usage:     "print a presigned download URL for an archived restaurant",
		ArgsUsage: "<object key>",
		Flags: []cli.Flag{
			cli.DurationFlag{Name: "expires", Usage: "URL lifetime", Value: 15 * time.Minute},
		},
		Action: func(c *cli.Context) error {
			key := c.Args().First()
			if key == "" {
				return errors.New("archive-url: object key argument is required")
			}
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			ctx := context.Background()
			arch, err := storage.NewMinIOArchive(ctx, cfg.Archive)
			if err != nil {
				return fmt.Errorf("archive-url: %w", err)
			}
			u, err := arch.PresignedURL(ctx, key, c.Duration("expires"))
			if err != nil {
				return fmt.Errorf("archive-url: %w", err)
			}
			fmt.Fprintln(c.App.Writer, u)
			return nil
		},
	}
}
