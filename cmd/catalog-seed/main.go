// Command catalog-seed fills a PostgreSQL catalogue with generated demo data.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AntonStoeckl/library-rental-catalog-go/catalog/postgresengine"
	"github.com/AntonStoeckl/library-rental-catalog-go/internal/config"
	"github.com/AntonStoeckl/library-rental-catalog-go/internal/migrations"
	"github.com/AntonStoeckl/library-rental-catalog-go/internal/seed"
)

func main() {
	plan := seed.Plan{}
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.IntVar(&plan.Books, "books", 20, "number of books to add")
	flag.IntVar(&plan.Customers, "customers", 10, "number of customers to add")
	flag.IntVar(&plan.Orders, "orders", 50, "number of orders to create")
	flag.Uint64Var(&plan.Seed, "seed", 1, "seed of the generated data")
	from := flag.String("from", time.Now().UTC().AddDate(0, 0, -60).Format(time.DateOnly), "earliest issue date")
	flag.Parse()

	if err := run(*configPath, *from, plan); err != nil {
		log.Fatalf("catalog-seed: %v", err)
	}
}

func run(configPath, from string, plan seed.Plan) error {
	ctx := context.Background()

	fromDate, err := time.Parse(time.DateOnly, from)
	if err != nil {
		return fmt.Errorf("invalid -from date: %w", err)
	}
	plan.From = fromDate

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	poolConfig, err := config.PGXPoolConfig(cfg.Database.DSN, cfg.Pool)
	if err != nil {
		return err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return fmt.Errorf("failed to create pgx pool: %w", err)
	}
	defer pool.Close()

	if err := migrations.Apply(ctx, migrations.PGXExecer(pool), postgresengine.DialectPostgres, 5, 2*time.Second); err != nil {
		return err
	}

	engine, err := postgresengine.NewEngineFromPGXPool(pool, postgresengine.WithTTL(cfg.Cache.TTL))
	if err != nil {
		return err
	}

	cat, err := postgresengine.NewCatalog(engine)
	if err != nil {
		return err
	}

	started := time.Now()

	result, err := seed.Run(ctx, cat, plan)
	if err != nil {
		return err
	}

	log.Printf("seeded %d books, %d customers, %d orders (%d discounts, %d penalties) in %s",
		result.Books, result.Customers, result.Orders, result.Discounts, result.Penalties,
		time.Since(started).Round(time.Millisecond))

	return nil
}
