package httpapi

import (
	"context"
	"time"

	"github.com/AntonStoeckl/library-rental-catalog-go/catalog"
	"github.com/AntonStoeckl/library-rental-catalog-go/catalog/postgresengine"
)

// Service is the part of the catalogue the HTTP handlers depend on.
// A List method may return items together with an error wrapping catalog.ErrServingStaleSnapshot.
type Service interface {
	ListBooks(ctx context.Context) ([]catalog.Book, error)
	ListCustomers(ctx context.Context) ([]catalog.Customer, error)
	ListDiscounts(ctx context.Context) ([]catalog.Discount, error)
	ListPenalties(ctx context.Context) ([]catalog.Penalty, error)
	ListOrders(ctx context.Context) ([]catalog.Order, error)
	ListUsers(ctx context.Context) ([]catalog.User, error)

	LookupDiscounts() []catalog.Discount
	LookupPenalties() []catalog.Penalty

	OrderByID(ctx context.Context, orderID int64) (catalog.Order, error)
	Login(ctx context.Context, username, password string) (catalog.User, error)

	AddBook(ctx context.Context, book catalog.Book) (catalog.ISBN, error)
	DeleteBook(ctx context.Context, isbn catalog.ISBN) error
	AddCustomer(ctx context.Context, customer catalog.Customer) (int64, error)
	DeleteCustomer(ctx context.Context, customerID int64) error
	CreateOrder(ctx context.Context, customerID int64, isbn catalog.ISBN, issueDate, returnDate time.Time) (int64, error)
	DeleteOrder(ctx context.Context, orderID int64) error
	AddDiscountToOrder(ctx context.Context, orderID int64, discount catalog.Discount) error
	AddPenaltyToOrder(ctx context.Context, orderID int64, penalty catalog.Penalty) error
}

// CatalogService serves the handlers from a postgresengine.Catalog.
// Listings go through the DataModels, lookups read the shared side-cache.
type CatalogService struct {
	*postgresengine.Catalog
}

// NewCatalogService wraps c.
func NewCatalogService(c *postgresengine.Catalog) *CatalogService {
	return &CatalogService{Catalog: c}
}

// ListBooks returns all books, or the last good snapshot when the refresh fails.
func (s *CatalogService) ListBooks(ctx context.Context) ([]catalog.Book, error) {
	return s.Books.GetAllOrLast(ctx)
}

// ListCustomers returns all customers, or the last good snapshot when the refresh fails.
func (s *CatalogService) ListCustomers(ctx context.Context) ([]catalog.Customer, error) {
	return s.Customers.GetAllOrLast(ctx)
}

// ListDiscounts returns all discounts, or the last good snapshot when the refresh fails.
func (s *CatalogService) ListDiscounts(ctx context.Context) ([]catalog.Discount, error) {
	return s.Discounts.GetAllOrLast(ctx)
}

// ListPenalties returns all penalties, or the last good snapshot when the refresh fails.
func (s *CatalogService) ListPenalties(ctx context.Context) ([]catalog.Penalty, error) {
	return s.Penalties.GetAllOrLast(ctx)
}

// ListOrders returns all assembled orders, or the last good snapshot when the refresh fails.
func (s *CatalogService) ListOrders(ctx context.Context) ([]catalog.Order, error) {
	return s.Orders.GetAllOrLast(ctx)
}

// ListUsers returns all users, or the last good snapshot when the refresh fails.
func (s *CatalogService) ListUsers(ctx context.Context) ([]catalog.User, error) {
	return s.Users.GetAllOrLast(ctx)
}

// LookupDiscounts returns the side-cached discounts sorted by name, without I/O.
func (s *CatalogService) LookupDiscounts() []catalog.Discount {
	return s.SideCache().Discounts()
}

// LookupPenalties returns the side-cached penalties sorted by name, without I/O.
func (s *CatalogService) LookupPenalties() []catalog.Penalty {
	return s.SideCache().Penalties()
}
