package postgresengine

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/library-rental-catalog-go/catalog"
	. "github.com/AntonStoeckl/library-rental-catalog-go/testutil/helper" //nolint:revive
)

const (
	booksQuery     = `FROM "books"`
	customersQuery = `FROM "customers"`
	discountsQuery = `FROM "discounts"`
	penaltiesQuery = `FROM "penalties"`
	ordersQuery    = `FROM "orders"`
	usersQuery     = `FROM "users"`
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: FixtureDay}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func Test_DataModel_GetAll_ShouldRefresh_WhenSnapshotIsEmpty(t *testing.T) {
	// setup
	ctx := context.Background()
	db := newFakeDB()
	books, err := NewDataModel[catalog.Book](newTestEngine(t, db))
	assert.NoError(t, err)

	// arrange
	db.returnRows([]catalog.Row{BookRow(1, "Learning Domain-Driven Design", "2.00"), BookRow(2, "Go in Action", "1.50")}, booksQuery)

	// act
	items, err := books.GetAll(ctx)

	// assert
	assert.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, "Learning Domain-Driven Design", items[0].Title)
	assert.Equal(t, uint64(1), books.Snapshot().Generation())
}

func Test_DataModel_GetAll_ShouldServeFromSnapshot_WithinTTL(t *testing.T) {
	// setup
	ctx := context.Background()
	db := newFakeDB()
	clock := newTestClock()
	books, err := NewDataModel[catalog.Book](newTestEngine(t, db, WithClock(clock.Now)))
	assert.NoError(t, err)

	// arrange
	db.returnRows([]catalog.Row{BookRow(1, "Learning Domain-Driven Design", "2.00")}, booksQuery)
	_, err = books.GetAll(ctx)
	assert.NoError(t, err, "error in arranging test data")
	clock.Advance(defaultCacheTTL - time.Second)

	// act
	items, err := books.GetAll(ctx)

	// assert
	assert.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, 1, db.countQueries(booksQuery))
}

func Test_DataModel_GetAll_ShouldRefresh_WhenSnapshotIsOlderThanTTL(t *testing.T) {
	// setup
	ctx := context.Background()
	db := newFakeDB()
	clock := newTestClock()
	books, err := NewDataModel[catalog.Book](newTestEngine(t, db, WithClock(clock.Now), WithTTL(time.Minute)))
	assert.NoError(t, err)

	// arrange
	db.returnRows([]catalog.Row{BookRow(1, "Learning Domain-Driven Design", "2.00")}, booksQuery)
	_, err = books.GetAll(ctx)
	assert.NoError(t, err, "error in arranging test data")
	clock.Advance(time.Minute + time.Second)

	// act
	_, err = books.GetAll(ctx)

	// assert
	assert.NoError(t, err)
	assert.Equal(t, 2, db.countQueries(booksQuery))
	assert.Equal(t, uint64(2), books.Snapshot().Generation())
	assert.Equal(t, clock.Now(), books.Snapshot().RefreshedAt())
}

func Test_DataModel_GetAllOrLast_ShouldServeLastGoodSnapshot_WhenRefreshOfStaleSnapshotFails(t *testing.T) {
	// setup
	ctx := context.Background()
	db := newFakeDB()
	clock := newTestClock()
	books, err := NewDataModel[catalog.Book](newTestEngine(t, db, WithClock(clock.Now), WithTTL(time.Minute)))
	assert.NoError(t, err)

	// arrange
	db.returnRows([]catalog.Row{BookRow(1, "Learning Domain-Driven Design", "2.00")}, booksQuery)
	_, err = books.GetAll(ctx)
	assert.NoError(t, err, "error in arranging test data")
	clock.Advance(time.Minute + time.Second)
	db.failQuery(errFakeDriver, booksQuery)

	// act
	items, err := books.GetAllOrLast(ctx)

	// assert
	assert.ErrorIs(t, err, catalog.ErrServingStaleSnapshot)
	assert.ErrorIs(t, err, catalog.ErrQueryingFailed)
	assert.Len(t, items, 1)
	assert.Equal(t, "Learning Domain-Driven Design", items[0].Title)
	assert.Equal(t, uint64(1), books.Snapshot().Generation())
}

func Test_DataModel_GetAllOrLast_ShouldFail_WhenNoRefreshEverSucceeded(t *testing.T) {
	// setup
	ctx := context.Background()
	db := newFakeDB()
	books, err := NewDataModel[catalog.Book](newTestEngine(t, db))
	assert.NoError(t, err)

	// arrange
	db.failQuery(errFakeDriver, booksQuery)

	// act
	items, err := books.GetAllOrLast(ctx)

	// assert
	assert.ErrorIs(t, err, catalog.ErrQueryingFailed)
	assert.NotErrorIs(t, err, catalog.ErrServingStaleSnapshot)
	assert.Nil(t, items)
}

func Test_DataModel_GetAll_ShouldRefreshOnEveryCall_WhenTableIsEmpty(t *testing.T) {
	// setup
	ctx := context.Background()
	db := newFakeDB()
	customers, err := NewDataModel[catalog.Customer](newTestEngine(t, db))
	assert.NoError(t, err)

	// act
	first, firstErr := customers.GetAll(ctx)
	second, secondErr := customers.GetAll(ctx)

	// assert
	assert.NoError(t, firstErr)
	assert.NoError(t, secondErr)
	assert.NotNil(t, first)
	assert.Empty(t, first)
	assert.Empty(t, second)
	assert.Equal(t, 2, db.countQueries(customersQuery))
}

func Test_DataModel_RefreshNow_ShouldKeepPreviousSnapshot_WhenRowIsMalformed(t *testing.T) {
	// setup
	ctx := context.Background()
	db := newFakeDB()
	books, err := NewDataModel[catalog.Book](newTestEngine(t, db))
	assert.NoError(t, err)

	// arrange
	db.returnRows([]catalog.Row{BookRow(1, "Learning Domain-Driven Design", "2.00")}, booksQuery)
	assert.NoError(t, books.RefreshNow(ctx), "error in arranging test data")

	broken := BookRow(2, "Go in Action", "1.50")
	delete(broken, "title")
	db.returnRows([]catalog.Row{BookRow(1, "Learning Domain-Driven Design", "2.00"), broken}, booksQuery)

	// act
	err = books.RefreshNow(ctx)

	// assert
	assert.ErrorIs(t, err, catalog.ErrMappingFailed)
	assert.ErrorIs(t, err, catalog.ErrMissingColumn)
	assert.Equal(t, uint64(1), books.Snapshot().Generation())
	assert.Equal(t, 1, books.Snapshot().Len())
}

func Test_DataModel_RefreshNow_ShouldFail_WhenDecimalColumnIsMalformed(t *testing.T) {
	// setup
	ctx := context.Background()
	db := newFakeDB()
	discounts, err := NewDataModel[catalog.Discount](newTestEngine(t, db))
	assert.NoError(t, err)

	// arrange
	db.returnRows([]catalog.Row{{"discount_name": "loyalty", "discount_amount": "one euro"}}, discountsQuery)

	// act
	err = discounts.RefreshNow(ctx)

	// assert
	assert.ErrorIs(t, err, catalog.ErrMappingFailed)
	assert.ErrorIs(t, err, catalog.ErrMalformedColumn)
	assert.True(t, discounts.Snapshot().IsEmpty())
}

func Test_DataModel_GetAll_ShouldFail_WhenQueryFails(t *testing.T) {
	// setup
	ctx := context.Background()
	db := newFakeDB()
	customers, err := NewDataModel[catalog.Customer](newTestEngine(t, db))
	assert.NoError(t, err)

	// arrange
	db.failQuery(errFakeDriver, customersQuery)

	// act
	items, err := customers.GetAll(ctx)

	// assert
	assert.ErrorIs(t, err, catalog.ErrQueryingFailed)
	assert.ErrorIs(t, err, errFakeDriver)
	assert.Nil(t, items)
	assert.Equal(t, uint64(0), customers.Snapshot().Generation())
}

func Test_DataModel_RefreshNow_ShouldReloadOtherSideCaches_ButNotItsOwnTable(t *testing.T) {
	// setup
	ctx := context.Background()
	db := newFakeDB()
	engine := newTestEngine(t, db)
	books, err := NewDataModel[catalog.Book](engine)
	assert.NoError(t, err)

	// arrange
	db.returnRows([]catalog.Row{BookRow(1, "Learning Domain-Driven Design", "2.00")}, booksQuery)
	db.returnRows([]catalog.Row{DiscountRow("loyalty", "1.00")}, discountsQuery)
	db.returnRows([]catalog.Row{PenaltyRow("late", "10.00")}, penaltiesQuery)

	// act
	err = books.RefreshNow(ctx)

	// assert
	assert.NoError(t, err)
	assert.Equal(t, 1, db.countQueries(booksQuery))
	assert.Equal(t, 1, db.countQueries(discountsQuery))
	assert.Equal(t, 1, db.countQueries(penaltiesQuery))

	_, bookCached := engine.SideCache().Book(1)
	_, discountCached := engine.SideCache().Discount("loyalty")
	_, penaltyCached := engine.SideCache().Penalty("late")
	assert.True(t, bookCached)
	assert.True(t, discountCached)
	assert.True(t, penaltyCached)
}

func Test_DataModel_RefreshNow_ShouldSucceed_WhenSideCacheReloadFails(t *testing.T) {
	// setup
	ctx := context.Background()
	db := newFakeDB()
	logHandler := NewLogHandlerSpy(false)
	customers, err := NewDataModel[catalog.Customer](newTestEngine(t, db, WithLogger(slogLogger(logHandler))))
	assert.NoError(t, err)

	// arrange
	db.failQuery(errFakeDriver, discountsQuery)
	db.returnRows([]catalog.Row{CustomerRow(11, "Ada Lovelace")}, customersQuery)

	// act
	err = customers.RefreshNow(ctx)

	// assert
	assert.NoError(t, err)
	assert.Equal(t, 1, customers.Snapshot().Len())
	assert.True(t, logHandler.HasWarnLogWithMessage(logMsgSideCacheLoadFailed).WithStringAttr(logAttrKind, "discount").Assert())
}

func Test_DataModel_Subscribe_ShouldReceivePublishedSnapshots(t *testing.T) {
	// setup
	ctx := context.Background()
	db := newFakeDB()
	users, err := NewDataModel[catalog.User](newTestEngine(t, db))
	assert.NoError(t, err)

	// arrange
	updates, cancel := users.Subscribe()
	defer cancel()
	db.returnRows([]catalog.Row{UserRow(1, "admin", "secret", catalog.RoleAdmin, nil)}, usersQuery)

	// act
	err = users.RefreshNow(ctx)

	// assert
	assert.NoError(t, err)
	select {
	case snapshot := <-updates:
		assert.Equal(t, uint64(1), snapshot.Generation())
		assert.Equal(t, 1, snapshot.Len())
		assert.Equal(t, catalog.KindUser, snapshot.Kind())
	case <-time.After(time.Second):
		t.Fatal("no snapshot published")
	}
}

func Test_DataModel_Subscribe_ShouldReceiveLatestSnapshot_WhenSubscribingAfterRefresh(t *testing.T) {
	// setup
	ctx := context.Background()
	db := newFakeDB()
	users, err := NewDataModel[catalog.User](newTestEngine(t, db))
	assert.NoError(t, err)

	// arrange
	db.returnRows([]catalog.Row{UserRow(1, "admin", "secret", catalog.RoleAdmin, nil)}, usersQuery)
	assert.NoError(t, users.RefreshNow(ctx), "error in arranging test data")
	assert.NoError(t, users.RefreshNow(ctx), "error in arranging test data")

	// act
	updates, cancel := users.Subscribe()
	snapshot := <-updates
	cancel()

	// assert
	assert.Equal(t, uint64(2), snapshot.Generation())
	_, open := <-updates
	assert.False(t, open)
}

func Test_DataModel_ShouldNeverExposeMixedSnapshots_WhenReadingDuringRefreshes(t *testing.T) {
	// setup
	ctx := context.Background()
	db := newFakeDB()
	books, err := NewDataModel[catalog.Book](newTestEngine(t, db))
	assert.NoError(t, err)

	rowsForVersion := func(version int) []catalog.Row {
		title := fmt.Sprintf("version %d", version)
		return []catalog.Row{BookRow(1, title, "1.00"), BookRow(2, title, "1.00"), BookRow(3, title, "1.00")}
	}

	db.returnRows(rowsForVersion(0), booksQuery)
	assert.NoError(t, books.RefreshNow(ctx), "error in arranging test data")

	// act
	var wg sync.WaitGroup
	mixed := make(chan string, 100)
	report := func(problem string) {
		select {
		case mixed <- problem:
		default:
		}
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for version := 1; version <= 50; version++ {
			db.returnRows(rowsForVersion(version), booksQuery)
			_ = books.RefreshNow(ctx)
		}
	}()

	for reader := 0; reader < 4; reader++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lastGeneration := uint64(0)
			for i := 0; i < 200; i++ {
				snapshot := books.Snapshot()
				if snapshot.Generation() < lastGeneration {
					report("generation went backwards")
				}
				lastGeneration = snapshot.Generation()

				items := snapshot.Items()
				for _, item := range items {
					if item.Title != items[0].Title {
						report(fmt.Sprintf("generation %d mixes %q and %q", snapshot.Generation(), items[0].Title, item.Title))
					}
				}

				if _, getErr := books.GetAll(ctx); getErr != nil {
					report(getErr.Error())
				}
			}
		}()
	}

	wg.Wait()
	close(mixed)

	// assert
	for problem := range mixed {
		t.Error(problem)
	}
	assert.Equal(t, uint64(51), books.Snapshot().Generation())
}

func Test_NewDataModel_ShouldFail_WithNilEngine(t *testing.T) {
	// act
	_, err := NewDataModel[catalog.Book](nil)

	// assert
	assert.ErrorIs(t, err, catalog.ErrNilDatabaseConnection)
}
