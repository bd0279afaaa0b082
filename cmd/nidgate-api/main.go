package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"gopkg.in/yaml.v3"

	"github.com/oelgazzar/nidgate/internal/api"
	"github.com/oelgazzar/nidgate/internal/config"
	"github.com/oelgazzar/nidgate/internal/core"
	"github.com/oelgazzar/nidgate/internal/db"
	"github.com/oelgazzar/nidgate/internal/logging"
	"github.com/oelgazzar/nidgate/internal/metrics"
	"github.com/oelgazzar/nidgate/internal/ratelimit"
	"github.com/oelgazzar/nidgate/internal/store"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "create-client":
			createClient(os.Args[2:])
			return
		case "seed":
			seed(os.Args[2:])
			return
		}
	}

	migrateFlag := flag.Bool("migrate", false, "Run database migrations before starting")
	migrateDirFlag := flag.String("migrate-dir", "migrations", "Migration files directory")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg)

	if *migrateFlag {
		logger.Info().Str("dir", *migrateDirFlag).Msg("running database migrations")
		if err := db.RunMigrations(cfg.DatabaseURL, *migrateDirFlag); err != nil {
			logger.Fatal().Err(err).Msg("migration failed")
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	metrics.RegisterPgxPoolMetrics(pool)

	var limiter ratelimit.Limiter
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer rdb.Close()
		limiter = ratelimit.NewRedisLimiter(rdb, cfg.RateLimitWindow, cfg.RateLimitMax)
		logger.Info().Str("addr", cfg.RedisAddr).Msg("rate limiting via redis")
	} else {
		limiter = ratelimit.NewMemoryLimiter(cfg.RateLimitWindow, cfg.RateLimitMax)
	}

	srv := api.NewServer(logger, pool, limiter, cfg)

	httpServer := &http.Server{
		Addr:         cfg.HTTPListenAddr,
		Handler:      srv,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.HTTPListenAddr).Msg("starting API server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	// Flush pending usage rows once no more requests can arrive.
	srv.Close()
}

func createClient(args []string) {
	fs := flag.NewFlagSet("create-client", flag.ExitOnError)
	name := fs.String("name", "", "Name for the client (required)")
	description := fs.String("description", "", "Optional description")
	fs.Parse(args)

	if *name == "" {
		fmt.Fprintln(os.Stderr, "error: --name is required")
		fmt.Fprintln(os.Stderr, "usage: nidgate-api create-client --name <name> [--description <text>]")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load config: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	fields := store.Fields{"name": *name}
	if *description != "" {
		fields["description"] = *description
	}

	svc := core.NewClientService(pool, logging.NewLogger(cfg))
	client, err := svc.Create(ctx, fields)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to create client: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Client created successfully.\n\n")
	fmt.Printf("  Name:    %s\n", client.Name)
	fmt.Printf("  ID:      %s\n", client.ID)
	fmt.Printf("  API key: %s\n\n", client.APIKey)
	fmt.Printf("Save this key — it will not be shown again.\n")
}

type seedFile struct {
	Clients []seedClient `yaml:"clients"`
}

type seedClient struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// seed loads client fixtures from a YAML file. Names that already exist are
// skipped, so reseeding a dev database is harmless.
func seed(args []string) {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	file := fs.String("file", "seeds/dev.yaml", "Seed fixture file")
	fs.Parse(args)

	raw, err := os.ReadFile(*file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to read seed file: %v\n", err)
		os.Exit(1)
	}
	var fixtures seedFile
	if err := yaml.Unmarshal(raw, &fixtures); err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to parse seed file: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load config: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	svc := core.NewClientService(pool, logging.NewLogger(cfg))
	for _, c := range fixtures.Clients {
		fields := store.Fields{"name": c.Name}
		if c.Description != "" {
			fields["description"] = c.Description
		}
		client, err := svc.Create(ctx, fields)
		if err != nil {
			var vErr *store.ValidationError
			if errors.As(err, &vErr) {
				fmt.Printf("skipping %q: %s\n", c.Name, vErr.Reason)
				continue
			}
			fmt.Fprintf(os.Stderr, "error: failed to seed client %q: %v\n", c.Name, err)
			os.Exit(1)
		}
		fmt.Printf("created %q (id %s, key %s)\n", client.Name, client.ID, client.APIKey)
	}
}
