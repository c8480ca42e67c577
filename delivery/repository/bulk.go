package repository

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/doualaexpress/deligate/delivery/domain"
)

// BulkCreate implements the bulk_insert contract: every row that
// validates is persisted together with its `created` HistoryEntry inside
// its own SAVEPOINT, so one bad row never rolls back the rows around it.
// Validation (amount_due required, phone required) happens before the
// savepoint is opened so a rejected row never touches the transaction.
func (r *SQLRepo) BulkCreate(ctx context.Context, rows []*domain.Delivery) (domain.BulkResult, error) {
	if len(rows) == 0 || len(rows) > 100 {
		return domain.BulkResult{}, domain.ErrTooManyBulkRows
	}

	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return domain.BulkResult{}, err
	}
	defer func() { _ = tx.Rollback() }()

	result := domain.BulkResult{}
	for i, d := range rows {
		if d.Phone == "" || d.AmountDue == 0 {
			result.Failed = append(result.Failed, domain.BulkFailure{Index: i, Error: "phone and amount_due are required"})
			continue
		}
		amountDue, err := roundMoney(d.AmountDue)
		if err != nil {
			result.Failed = append(result.Failed, domain.BulkFailure{Index: i, Error: err.Error()})
			continue
		}
		amountPaid, err := roundMoney(d.AmountPaid)
		if err != nil {
			result.Failed = append(result.Failed, domain.BulkFailure{Index: i, Error: err.Error()})
			continue
		}
		fee, err := roundMoney(d.DeliveryFee)
		if err != nil {
			result.Failed = append(result.Failed, domain.BulkFailure{Index: i, Error: err.Error()})
			continue
		}
		if d.Status == "" {
			d.Status = domain.StatusPending
		}

		sp := fmt.Sprintf("bulk_delivery_%d", i)
		if _, err := tx.ExecContext(ctx, "SAVEPOINT "+sp); err != nil {
			return domain.BulkResult{}, fmt.Errorf("create savepoint: %w", err)
		}

		rowErr := func() error {
			id, err := insertDeliveryTx(ctx, r.db, tx, d, amountDue, amountPaid, fee)
			if err != nil {
				return err
			}
			d.ID = id
			return insertHistoryTx(ctx, r.db, tx, d.ID, domain.ActionCreated, "{}", domain.DefaultActor)
		}()

		if rowErr != nil {
			if _, rbErr := tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+sp); rbErr != nil {
				return domain.BulkResult{}, fmt.Errorf("rollback to savepoint: %w", rbErr)
			}
			logrus.WithError(rowErr).Warnf("[DELIVERY_REPO] bulk row %d rejected", i)
			result.Failed = append(result.Failed, domain.BulkFailure{Index: i, Error: rowErr.Error()})
			continue
		}

		if _, err := tx.ExecContext(ctx, "RELEASE SAVEPOINT "+sp); err != nil {
			return domain.BulkResult{}, fmt.Errorf("release savepoint: %w", err)
		}
		d.AmountDue, d.AmountPaid, d.DeliveryFee = amountDue, amountPaid, fee
		result.Created++
		result.Results = append(result.Results, d)
	}

	if err := tx.Commit(); err != nil {
		return domain.BulkResult{}, err
	}
	return result, nil
}
