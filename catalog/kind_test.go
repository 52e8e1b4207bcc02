package catalog_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/library-rental-catalog-go/catalog"
)

func Test_KindOf(t *testing.T) {
	assert.Equal(t, catalog.KindBook, catalog.KindOf[catalog.Book]())
	assert.Equal(t, catalog.KindCustomer, catalog.KindOf[catalog.Customer]())
	assert.Equal(t, catalog.KindDiscount, catalog.KindOf[catalog.Discount]())
	assert.Equal(t, catalog.KindPenalty, catalog.KindOf[catalog.Penalty]())
	assert.Equal(t, catalog.KindOrder, catalog.KindOf[catalog.Order]())
	assert.Equal(t, catalog.KindUser, catalog.KindOf[catalog.User]())
}

func Test_Kind_TableNameAndSideCaching(t *testing.T) {
	testCases := []struct {
		kind       catalog.Kind
		table      string
		name       string
		sideCached bool
	}{
		{kind: catalog.KindBook, table: "books", name: "book", sideCached: true},
		{kind: catalog.KindCustomer, table: "customers", name: "customer"},
		{kind: catalog.KindDiscount, table: "discounts", name: "discount", sideCached: true},
		{kind: catalog.KindPenalty, table: "penalties", name: "penalty", sideCached: true},
		{kind: catalog.KindOrder, table: "orders", name: "order"},
		{kind: catalog.KindUser, table: "users", name: "user"},
		{kind: catalog.KindUnknown, table: "", name: "unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.table, tc.kind.TableName())
			assert.Equal(t, tc.name, tc.kind.String())
			assert.Equal(t, tc.sideCached, tc.kind.IsSideCached())
		})
	}
}

func Test_ConsistencyLevel_ShouldDefaultToStrong(t *testing.T) {
	ctx := context.Background()

	assert.Equal(t, catalog.StrongConsistency, catalog.GetConsistencyLevel(ctx))
	assert.Equal(t, catalog.EventualConsistency, catalog.GetConsistencyLevel(catalog.WithEventualConsistency(ctx)))
	assert.Equal(t, catalog.StrongConsistency, catalog.GetConsistencyLevel(catalog.WithStrongConsistency(catalog.WithEventualConsistency(ctx))))
	assert.Equal(t, "eventual", catalog.EventualConsistency.String())
}
