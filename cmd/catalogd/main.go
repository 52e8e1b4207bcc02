// Command catalogd serves the library rental catalogue over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AntonStoeckl/library-rental-catalog-go/catalog"
	"github.com/AntonStoeckl/library-rental-catalog-go/catalog/postgresengine"
	"github.com/AntonStoeckl/library-rental-catalog-go/internal/config"
	"github.com/AntonStoeckl/library-rental-catalog-go/internal/httpapi"
)

const shutdownTimeout = 10 * time.Second

type flags struct {
	configPath    string
	observability bool
	otlpInsecure  bool
}

func parseFlags() flags {
	f := flags{}
	flag.StringVar(&f.configPath, "config", os.Getenv("CATALOG_CONFIG"), "path to a YAML config file")
	flag.BoolVar(&f.observability, "observability", false, "export traces and metrics over OTLP")
	flag.BoolVar(&f.otlpInsecure, "otlp-insecure", false, "use plaintext gRPC for the OTLP exporters")
	flag.Parse()

	return f
}

func main() {
	if err := run(parseFlags()); err != nil {
		log.Fatalf("catalogd: %v", err)
	}
}

//nolint:funlen
func run(f flags) error {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger, contextualLogger, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}

	options := []postgresengine.Option{
		postgresengine.WithTTL(cfg.Cache.TTL),
		postgresengine.WithLogger(logger),
		postgresengine.WithContextualLogger(contextualLogger),
	}

	if f.observability {
		providers, err := newTelemetryProviders(ctx, f.otlpInsecure)
		if err != nil {
			return fmt.Errorf("failed to set up telemetry: %w", err)
		}
		defer func() {
			if err := providers.Shutdown(); err != nil {
				log.Printf("telemetry shutdown failed: %v", err)
			}
		}()

		options = append(options, telemetryOptions()...)
	}

	log.Printf("using database adapter %s", cfg.Database.Adapter)

	engine, closeDB, err := openEngine(ctx, cfg, options...)
	if err != nil {
		return err
	}
	defer closeDB()

	cat, err := postgresengine.NewCatalog(engine)
	if err != nil {
		return err
	}

	warmUp(ctx, cat, logger)

	closeSinks := startSinks(ctx, cfg, cat, logger)
	defer closeSinks()

	server, err := httpapi.NewServer(
		httpapi.NewCatalogService(cat),
		[]byte(cfg.HTTP.JWTSecret),
		cfg.HTTP.TokenTTL,
		httpapi.WithLogger(logger),
		httpapi.WithRateLimit(cfg.HTTP.RateLimit, cfg.HTTP.RateBurst),
	)
	if err != nil {
		return err
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start(cfg.HTTP.Addr)
	}()

	log.Printf("catalogd listening on %s", cfg.HTTP.Addr)

	select {
	case <-ctx.Done():
		log.Printf("shutdown requested")
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}

	log.Printf("catalogd stopped")

	return nil
}

// warmUp loads the side-cached kinds once so the lookup endpoints answer before the first listing.
func warmUp(ctx context.Context, cat *postgresengine.Catalog, logger catalog.Logger) {
	_, errBooks := cat.Books.GetAll(ctx)
	_, errDiscounts := cat.Discounts.GetAll(ctx)
	_, errPenalties := cat.Penalties.GetAll(ctx)

	if err := errors.Join(errBooks, errDiscounts, errPenalties); err != nil {
		logger.Warn("catalogue warm-up failed", "error", err.Error())
	}
}
