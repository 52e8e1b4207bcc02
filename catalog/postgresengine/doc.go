// Package postgresengine provides the relational implementation of the library rental catalogue.
//
// It contains the generic entity cache (DataModel), the per-kind row mappers, the order
// association assembler and the Catalog mutation entry points. Three database adapters are
// supported: pgx/v5 (with an optional read replica), database/sql and sqlx. PostgreSQL is the
// default SQL dialect, MySQL can be selected with WithDialect.
//
// Basic usage:
//
//	pool, _ := pgxpool.New(ctx, dsn)
//	engine, err := postgresengine.NewEngineFromPGXPool(pool, postgresengine.WithLogger(slog.Default()))
//	if err != nil {
//	    return err
//	}
//
//	cat, _ := postgresengine.NewCatalog(engine)
//	books, err := cat.Books.GetAll(ctx)
//
// Mutations write through to the database and refresh the affected DataModels before returning:
//
//	orderID, err := cat.CreateOrder(ctx, customerID, isbn, issueDate, returnDate)
//	err = cat.AddDiscountToOrder(ctx, orderID, catalog.Discount{Name: "loyalty", Amount: decimal.NewFromInt(1)})
//
// Observability is optional and dependency-free: any *slog.Logger works as Logger and
// ContextualLogger, catalog/oteladapters bridges metrics and tracing to OpenTelemetry.
package postgresengine
