package database

import (
	"errors"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	mssql "github.com/microsoft/go-mssqldb"
)

// IsLockConflict reports whether err is a driver error raised because another
// transaction holds a conflicting lock: lock wait timeouts, deadlock victims,
// serialization failures and SQLite's busy/locked states.
func IsLockConflict(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "55P03", // lock_not_available
			"40001", // serialization_failure
			"40P01": // deadlock_detected
			return true
		}
		return false
	}

	var myErr *gomysql.MySQLError
	if errors.As(err, &myErr) {
		// 1205 lock wait timeout, 1213 deadlock
		return myErr.Number == 1205 || myErr.Number == 1213
	}

	var msErr mssql.Error
	if errors.As(err, &msErr) {
		// 1205 deadlock victim, 1222 lock request timeout
		return msErr.Number == 1205 || msErr.Number == 1222
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code == sqlite3.ErrBusy || liteErr.Code == sqlite3.ErrLocked
	}

	return false
}
