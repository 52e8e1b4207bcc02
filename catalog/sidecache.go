package catalog

import (
	"cmp"
	"slices"
	"sync"
)

// SideCache holds the key-indexed lookup tables for books, discounts and penalties.
//
// One instance is owned by the composition root and shared by every DataModel and the
// association assembler. Entries are only ever upserted, never removed, so a lookup can be
// stale but never refers to an entry that was deleted from the cache.
// Upserts are atomic per key; they are not coordinated with snapshot swaps.
type SideCache struct {
	mu        sync.RWMutex
	books     map[ISBN]*Book
	discounts map[string]Discount
	penalties map[string]Penalty
}

// NewSideCache creates an empty SideCache.
func NewSideCache() *SideCache {
	return &SideCache{
		books:     make(map[ISBN]*Book),
		discounts: make(map[string]Discount),
		penalties: make(map[string]Penalty),
	}
}

// UpsertBook stores the book under its ISBN, replacing a previous entry.
func (c *SideCache) UpsertBook(book Book) *Book {
	stored := &book

	c.mu.Lock()
	c.books[book.ISBN] = stored
	c.mu.Unlock()

	return stored
}

// UpsertDiscount stores the discount under its name, replacing the amount of a previous entry.
func (c *SideCache) UpsertDiscount(d Discount) {
	c.mu.Lock()
	c.discounts[d.Name] = d
	c.mu.Unlock()
}

// UpsertPenalty stores the penalty under its name, replacing the amount of a previous entry.
func (c *SideCache) UpsertPenalty(p Penalty) {
	c.mu.Lock()
	c.penalties[p.Name] = p
	c.mu.Unlock()
}

// Book looks up a book by ISBN.
func (c *SideCache) Book(isbn ISBN) (*Book, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	b, ok := c.books[isbn]

	return b, ok
}

// Discount looks up a discount by name.
func (c *SideCache) Discount(name string) (Discount, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	d, ok := c.discounts[name]

	return d, ok
}

// Penalty looks up a penalty by name.
func (c *SideCache) Penalty(name string) (Penalty, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p, ok := c.penalties[name]

	return p, ok
}

// Books returns all cached books ordered by ISBN.
func (c *SideCache) Books() []Book {
	c.mu.RLock()
	books := make([]Book, 0, len(c.books))
	for _, b := range c.books {
		books = append(books, *b)
	}
	c.mu.RUnlock()

	slices.SortFunc(books, func(a, b Book) int { return cmp.Compare(a.ISBN, b.ISBN) })

	return books
}

// Discounts returns all cached discounts ordered by name.
func (c *SideCache) Discounts() []Discount {
	c.mu.RLock()
	discounts := make([]Discount, 0, len(c.discounts))
	for _, d := range c.discounts {
		discounts = append(discounts, d)
	}
	c.mu.RUnlock()

	slices.SortFunc(discounts, func(a, b Discount) int { return cmp.Compare(a.Name, b.Name) })

	return discounts
}

// Penalties returns all cached penalties ordered by name.
func (c *SideCache) Penalties() []Penalty {
	c.mu.RLock()
	penalties := make([]Penalty, 0, len(c.penalties))
	for _, p := range c.penalties {
		penalties = append(penalties, p)
	}
	c.mu.RUnlock()

	slices.SortFunc(penalties, func(a, b Penalty) int { return cmp.Compare(a.Name, b.Name) })

	return penalties
}
