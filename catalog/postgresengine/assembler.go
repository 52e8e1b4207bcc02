package postgresengine

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/AntonStoeckl/library-rental-catalog-go/catalog"
)

const (
	associationDiscounts = "discounts"
	associationPenalties = "penalties"
)

// Assemble attaches the discounts, penalties and book of an order and recomputes its derived fields.
// Previously attached discounts and penalties are replaced, so assembling an order twice is harmless.
//
// Assembly is best-effort: a failure to load discounts does not prevent loading penalties, and
// the total is always recomputed from whatever could be attached. The failures are logged and
// returned joined with catalog.ErrAssociationLoadFailed.
// Catalogue values are taken from the side-cache when present, so a discount whose amount was
// changed after the side-cache was loaded keeps its cached amount until the next refresh.
func (e *Engine) Assemble(ctx context.Context, order *catalog.Order) error {
	start := time.Now()
	span, ctx := e.startSpan(ctx, spanNameAssemble, map[string]string{
		spanAttrOperation: operationAssemble,
		spanAttrOrderID:   strconv.FormatInt(order.OrderID, 10),
	})

	order.Discounts = make([]catalog.Discount, 0)
	order.Penalties = make([]catalog.Penalty, 0)

	var errs []error

	if err := e.attachDiscounts(ctx, order); err != nil {
		errs = append(errs, e.associationFailed(ctx, order.OrderID, associationDiscounts, err))
	}

	if err := e.attachPenalties(ctx, order); err != nil {
		errs = append(errs, e.associationFailed(ctx, order.OrderID, associationPenalties, err))
	}

	if book, ok := e.sideCache.Book(order.ISBN); ok {
		order.SetBook(book)
	}

	order.Recalculate()

	if len(errs) > 0 {
		span.finishError(errorTypeAssociation, time.Since(start))
		return errors.Join(errs...)
	}

	span.finishSuccess(time.Since(start), nil)

	return nil
}

func (e *Engine) attachDiscounts(ctx context.Context, order *catalog.Order) error {
	sqlQuery, err := e.buildSelectAssociationQuery(
		tableOrderDiscounts, catalog.KindDiscount.TableName(), colDiscountName, colDiscountAmount, order.OrderID)
	if err != nil {
		return err
	}

	rows, err := e.queryRows(ctx, sqlQuery, logActionAssemble)
	if err != nil {
		return err
	}

	for _, row := range rows {
		name, err := row.String(colDiscountName)
		if err != nil {
			return err
		}

		if cached, ok := e.sideCache.Discount(name); ok {
			order.AddDiscount(cached)
			continue
		}

		amount, err := row.Decimal(colDiscountAmount)
		if err != nil {
			return err
		}

		order.AddDiscount(catalog.Discount{Name: name, Amount: amount})
	}

	return nil
}

func (e *Engine) attachPenalties(ctx context.Context, order *catalog.Order) error {
	sqlQuery, err := e.buildSelectAssociationQuery(
		tableOrderPenalties, catalog.KindPenalty.TableName(), colPenaltyName, colPenaltyAmount, order.OrderID)
	if err != nil {
		return err
	}

	rows, err := e.queryRows(ctx, sqlQuery, logActionAssemble)
	if err != nil {
		return err
	}

	for _, row := range rows {
		name, err := row.String(colPenaltyName)
		if err != nil {
			return err
		}

		if cached, ok := e.sideCache.Penalty(name); ok {
			order.AddPenalty(cached)
			continue
		}

		amount, err := row.Decimal(colPenaltyAmount)
		if err != nil {
			return err
		}

		order.AddPenalty(catalog.Penalty{Name: name, Amount: amount})
	}

	return nil
}

func (e *Engine) associationFailed(ctx context.Context, orderID int64, association string, err error) error {
	e.logWarn(ctx, logMsgAssociationLoadFailed,
		logAttrError, err.Error(),
		logAttrOrderID, orderID,
		logAttrAssociation, association)

	e.incrementCounter(ctx, metricAssociationErrors, map[string]string{
		spanAttrOperation:  operationAssemble,
		logAttrAssociation: association,
	})

	return errors.Join(catalog.ErrAssociationLoadFailed, fmt.Errorf("order %d %s: %w", orderID, association, err))
}
