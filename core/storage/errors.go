package storage

import (
	"errors"
	"strings"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"github.com/doualaexpress/deligate/pkg/apperror"
)

// MapError translates a driver-level error into the apperror.GenericError
// kind the rest of the application reasons about, so handlers never need to
// know which backend is live.
func MapError(err error) apperror.GenericError {
	if err == nil {
		return nil
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code {
		case sqlite3.ErrConstraint:
			return apperror.ConflictError("duplicate or constraint violation: " + err.Error())
		case sqlite3.ErrBusy, sqlite3.ErrLocked:
			return apperror.UnavailableError("database busy: " + err.Error())
		}
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Class() {
		case "23": // integrity constraint violation
			if pqErr.Code == "23505" {
				return apperror.ConflictError("duplicate key: " + err.Error())
			}
			return apperror.InvalidArgumentError("constraint violation: " + err.Error())
		case "08": // connection exception
			return apperror.UnavailableError("database connection lost: " + err.Error())
		case "57": // operator intervention (includes query_canceled / statement timeout)
			return apperror.TimeoutError("database statement timeout: " + err.Error())
		}
	}

	if strings.Contains(err.Error(), "no rows") {
		return apperror.NotFoundError(err.Error())
	}

	return apperror.InternalError(err.Error())
}
