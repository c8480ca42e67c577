package storage

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// BulkInsertResult reports the per-row outcome of a BulkInsert call so
// callers can report partial success back through the API: one bad row
// must not roll back the rows around it.
type BulkInsertResult struct {
	Inserted int
	Failed []BulkInsertFailure
}

type BulkInsertFailure struct {
	Index int
	Err error
}

// BulkInsert runs one INSERT per row inside a single transaction, wrapping
// each row in its own SAVEPOINT so a constraint violation on one row rolls
// back only that row instead of the whole batch. SQLite and Postgres both
// support SAVEPOINT/RELEASE/ROLLBACK TO, so this needs no per-backend branch
// beyond the placeholder rewriting Exec already does.
func (a *Adapter) BulkInsert(ctx context.Context, query string, rows [][]any) (BulkInsertResult, error) {
	tx, err := a.BeginTx(ctx)
	if err != nil {
		return BulkInsertResult{}, fmt.Errorf("begin bulk insert tx: %w", err)
	}

	result := BulkInsertResult{}
	rewritten := a.Rewrite(query)

	for i, row := range rows {
		sp := fmt.Sprintf("bulk_row_%d", i)
		if _, err := tx.ExecContext(ctx, "SAVEPOINT "+sp); err != nil {
			_ = tx.Rollback()
			return BulkInsertResult{}, fmt.Errorf("create savepoint: %w", err)
		}

		if _, err := tx.ExecContext(ctx, rewritten, row...); err != nil {
			if _, rbErr := tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+sp); rbErr != nil {
				_ = tx.Rollback()
				return BulkInsertResult{}, fmt.Errorf("rollback to savepoint: %w", rbErr)
			}
			logrus.WithError(err).Warnf("[STORAGE] bulk insert row %d failed, skipped", i)
			result.Failed = append(result.Failed, BulkInsertFailure{Index: i, Err: MapError(err)})
			continue
		}

		if _, err := tx.ExecContext(ctx, "RELEASE SAVEPOINT "+sp); err != nil {
			_ = tx.Rollback()
			return BulkInsertResult{}, fmt.Errorf("release savepoint: %w", err)
		}
		result.Inserted++
	}

	if err := tx.Commit(); err != nil {
		return BulkInsertResult{}, fmt.Errorf("commit bulk insert: %w", err)
	}
	return result, nil
}
