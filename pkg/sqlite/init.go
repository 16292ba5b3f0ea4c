package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/mattn/go-sqlite3"
)

// DriverName is the database/sql driver registered by this package.
const DriverName = "sqlite3_tuskmem"

const defaultBusyTimeout = 5 * time.Second

// connectPragmas run on every new connection; these are per-connection
// settings in SQLite and cannot live in a migration.
var connectPragmas = []string{
	"PRAGMA foreign_keys = ON",
	"PRAGMA synchronous = NORMAL",
}

func init() {
	sql.Register(DriverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			for _, pragma := range connectPragmas {
				if _, err := conn.Exec(pragma, nil); err != nil {
					return fmt.Errorf("%s: %w", pragma, err)
				}
			}
			return nil
		},
	})
}

// DSN builds a connection string for path. Write transactions begin with
// BEGIN IMMEDIATE so that exactly one writer holds the database at a time,
// across processes as well as goroutines.
func DSN(path string) string {
	q := url.Values{}
	q.Set("_journal_mode", "WAL")
	q.Set("_txlock", "immediate")
	q.Set("_busy_timeout", fmt.Sprintf("%d", defaultBusyTimeout.Milliseconds()))
	q.Set("_foreign_keys", "on")
	return path + "?" + q.Encode()
}

// IsUniqueViolation reports whether err is a UNIQUE or PRIMARY KEY
// constraint failure.
func IsUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}
