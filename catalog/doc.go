// Package catalog provides the core types of the library rental catalogue:
// the entity kinds, the side-cache shared by all entity caches, snapshot
// publication, and the pricing rules that derive rental cost and order totals.
//
// Storage engines (see the postgresengine subpackage) build on these types to
// load rows, map them into entities, assemble order associations and publish
// immutable snapshots to subscribers.
//
// Key types:
//   - Entity: type union of every entity kind (Book, Customer, Discount, Penalty, Order, User)
//   - Row: a raw result row keyed by column name, with typed decoding helpers
//   - SideCache: key-indexed lookup tables for books, discounts and penalties
//   - Snapshot / Publisher: immutable snapshots and latest-value subscriptions
//
// Pricing:
//
//	rental := catalog.RentalCost(issuedAt, returnedAt, book.RentalCostPerDay)
//	total := catalog.Total(rental, order.Discounts, order.Penalties)
//
// Orders keep their derived fields current through explicit calls:
//
//	order := catalog.BuildOrder(7, 3, 42, issuedAt, returnedAt)
//	order.SetBook(book)
//	order.AddDiscount(catalog.Discount{Name: "loyalty", Amount: decimal.RequireFromString("1.00")})
package catalog
