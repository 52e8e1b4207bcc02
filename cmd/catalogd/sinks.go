package main

import (
	"context"
	"sync"

	"github.com/go-redis/redis/v8"

	"github.com/AntonStoeckl/library-rental-catalog-go/catalog"
	"github.com/AntonStoeckl/library-rental-catalog-go/catalog/postgresengine"
	"github.com/AntonStoeckl/library-rental-catalog-go/internal/config"
	"github.com/AntonStoeckl/library-rental-catalog-go/internal/sinks"
)

// startSinks forwards every DataModel's snapshots to the configured Kafka topic and Redis
// mirror. Users are never forwarded. The returned func stops forwarding and closes the clients.
func startSinks(ctx context.Context, cfg config.Config, cat *postgresengine.Catalog, logger catalog.Logger) func() {
	var targets []sinks.Sink
	var closers []func() error

	if len(cfg.Kafka.Brokers) > 0 {
		writer := sinks.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		targets = append(targets, sinks.NewKafkaNotifier(writer))
		closers = append(closers, writer.Close)
	}

	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		targets = append(targets, sinks.NewRedisMirror(client, cfg.Redis.KeyPrefix, cfg.Redis.TTL))
		closers = append(closers, client.Close)
	}

	if len(targets) == 0 {
		return func() {}
	}

	ctx, cancel := context.WithCancel(ctx)
	wg := sync.WaitGroup{}

	forward := func(run func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			run()
		}()
	}

	forward(func() { sinks.Forward[catalog.Book](ctx, cat.Books, logger, targets...) })
	forward(func() { sinks.Forward[catalog.Customer](ctx, cat.Customers, logger, targets...) })
	forward(func() { sinks.Forward[catalog.Discount](ctx, cat.Discounts, logger, targets...) })
	forward(func() { sinks.Forward[catalog.Penalty](ctx, cat.Penalties, logger, targets...) })
	forward(func() { sinks.Forward[catalog.Order](ctx, cat.Orders, logger, targets...) })

	return func() {
		cancel()
		wg.Wait()

		for _, closeFn := range closers {
			if err := closeFn(); err != nil {
				logger.Warn("closing snapshot sink failed", "error", err.Error())
			}
		}
	}
}
