// Package storage is the single surface every repository writes SQL
// against using SQLite syntax (`?` placeholders, `DATE(col,'localtime')`),
// with the adapter itself responsible for translating that syntax when the
// networked (Postgres) backend is selected. Grounded on the teacher's raw
// database/sql repositories (workspace/repository/sqlite_repo.go,
// clients/repository/client_repo.go) rather than its core/database GORM
// connection — GORM's dialector hides exactly the placeholder/date-function
// translation this package needs to keep explicit and testable.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

// Backend identifies which SQL dialect the adapter is rewriting for.
type Backend int

const (
	SQLite Backend = iota
	Postgres
)

func (b Backend) String() string {
	if b == Postgres {
		return "postgres"
	}
	return "sqlite"
}

// Adapter wraps a *sql.DB together with the dialect it speaks. Every
// repository in tenant/ and delivery/ is written against SQLite syntax and
// calls Rewrite before executing; on SQLite this is a no-op, on Postgres it
// rewrites placeholders and the handful of date functions the domain uses.
type Adapter struct {
	DB *sql.DB
	Backend Backend
	Loc *time.Location // used by date-function rewriting on Postgres
}

// Open dials the configured backend. dsn is a SQLite file path when
// backend == SQLite, or a full Postgres connection string otherwise.
func Open(backend Backend, dsn string, loc *time.Location) (*Adapter, error) {
	driver := "sqlite3"
	if backend == Postgres {
		driver = "postgres"
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	if backend == SQLite {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(time.Hour)
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			return nil, fmt.Errorf("enable foreign_keys pragma: %w", err)
		}
		if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
			return nil, fmt.Errorf("enable WAL pragma: %w", err)
		}
	} else {
		db.SetMaxOpenConns(100)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(time.Hour)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	logrus.Infof("[STORAGE] connected to %s backend", backend)
	return &Adapter{DB: db, Backend: backend, Loc: loc}, nil
}

// Close releases the underlying connection pool.
func (a *Adapter) Close() error {
	return a.DB.Close()
}

// Exec rewrites query for the active backend and executes it.
func (a *Adapter) Exec(ctx context.Context, query string, args...any) (sql.Result, error) {
	return a.DB.ExecContext(ctx, a.Rewrite(query), args...)
}

// Query rewrites query for the active backend and runs it.
func (a *Adapter) Query(ctx context.Context, query string, args...any) (*sql.Rows, error) {
	return a.DB.QueryContext(ctx, a.Rewrite(query), args...)
}

// QueryRow rewrites query for the active backend and runs it.
func (a *Adapter) QueryRow(ctx context.Context, query string, args...any) *sql.Row {
	return a.DB.QueryRowContext(ctx, a.Rewrite(query), args...)
}

// BeginTx starts a transaction on the underlying connection.
func (a *Adapter) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return a.DB.BeginTx(ctx, nil)
}

// ExecTx rewrites and executes query against an open transaction.
func (a *Adapter) ExecTx(ctx context.Context, tx *sql.Tx, query string, args...any) (sql.Result, error) {
	return tx.ExecContext(ctx, a.Rewrite(query), args...)
}

// QueryRowTx rewrites and queries a single row against an open transaction.
func (a *Adapter) QueryRowTx(ctx context.Context, tx *sql.Tx, query string, args...any) *sql.Row {
	return tx.QueryRowContext(ctx, a.Rewrite(query), args...)
}

// LastInsertID returns the id of a just-inserted row. On SQLite this reads
// sql.Result.LastInsertId; on Postgres it returns an error, because the id
// is only available through a `RETURNING id` clause, which Rewrite does not
// add and InsertReturningID does.
func (a *Adapter) LastInsertID(res sql.Result) (int64, error) {
	if a.Backend == SQLite {
		return res.LastInsertId()
	}
	return 0, fmt.Errorf("LastInsertID is not available on postgres; use InsertReturningID")
}

// InsertReturningID executes an INSERT and returns the new row's id,
// appending `RETURNING id` on Postgres and falling back to LastInsertId on
// SQLite so repository code has one call site regardless of backend.
func (a *Adapter) InsertReturningID(ctx context.Context, query string, args...any) (int64, error) {
	rewritten := a.Rewrite(query)
	if a.Backend == Postgres {
		rewritten += " RETURNING id"
		var id int64
		err := a.DB.QueryRowContext(ctx, rewritten, args...).Scan(&id)
		return id, err
	}
	res, err := a.DB.ExecContext(ctx, rewritten, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}
