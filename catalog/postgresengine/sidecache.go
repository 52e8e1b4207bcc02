package postgresengine

import (
	"context"

	"github.com/AntonStoeckl/library-rental-catalog-go/catalog"
)

var sideCachedKinds = []catalog.Kind{catalog.KindBook, catalog.KindDiscount, catalog.KindPenalty}

// reloadSideCaches re-reads the lookup tables of every side-cached kind except the one given and
// upserts them into the side-cache. Failures are logged and counted, never returned: a refresh
// proceeds with whatever the side-cache already holds.
func (e *Engine) reloadSideCaches(ctx context.Context, except catalog.Kind) {
	for _, kind := range sideCachedKinds {
		if kind == except {
			continue
		}

		e.reloadSideCache(ctx, kind)
	}
}

func (e *Engine) reloadSideCache(ctx context.Context, kind catalog.Kind) {
	sqlQuery, err := e.buildSelectAllQuery(kind)
	if err != nil {
		e.sideCacheLoadFailed(ctx, kind, err)
		return
	}

	rows, err := e.queryRows(ctx, sqlQuery, logActionQuery)
	if err != nil {
		e.sideCacheLoadFailed(ctx, kind, err)
		return
	}

	for _, row := range rows {
		var mapErr error

		switch kind {
		case catalog.KindBook:
			_, mapErr = e.mapBook(row)
		case catalog.KindDiscount:
			_, mapErr = e.mapDiscount(row)
		case catalog.KindPenalty:
			_, mapErr = e.mapPenalty(row)
		}

		if mapErr != nil {
			e.sideCacheLoadFailed(ctx, kind, mapErr)
		}
	}
}

func (e *Engine) sideCacheLoadFailed(ctx context.Context, kind catalog.Kind, err error) {
	e.logWarn(ctx, logMsgSideCacheLoadFailed, logAttrError, err.Error(), logAttrKind, kind.String())
	e.incrementCounter(ctx, metricSideCacheErrors, map[string]string{spanAttrKind: kind.String()})
}
