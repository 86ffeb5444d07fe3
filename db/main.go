package db

import (
	"database/sql"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/go-sql-driver/mysql"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

type queryDecorator func(squirrel.SelectBuilder) squirrel.SelectBuilder

// Supported database/sql driver names.
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// TextMaxLength is the max size of MySQL/MariaDB TEXT fields.
const TextMaxLength int = (1 << 16) - 1

var ErrNotFound = errors.New("db: not found")
var ErrAlreadyExists = errors.New("db: already exists")
var ErrUnsupportedVersion = errors.New("db: unsupported snapshot version")
var ErrUnknownDriver = errors.New("db: unknown driver")

func Connect(driver, dsn string) (*sql.DB, error) {
	switch driver {
	case DriverSQLite, DriverMySQL:
	default:
		return nil, ErrUnknownDriver
	}
	dbh, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if driver == DriverSQLite {
		// SQLite allows a single writer, queue everything on one connection.
		dbh.SetMaxOpenConns(1)
	}
	if err := CreateSchema(dbh); err != nil {
		dbh.Close()
		return nil, err
	}
	return dbh, nil
}

func CreateSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS session (
			storage_key VARCHAR(64) NOT NULL,
			version INT NOT NULL,
			session_id VARCHAR(36) NOT NULL,
			saved_at BIGINT NOT NULL,
			PRIMARY KEY (storage_key)
		)`,
		`CREATE TABLE IF NOT EXISTS session_player (
			storage_key VARCHAR(64) NOT NULL,
			position INT NOT NULL,
			player_id INT NOT NULL,
			name VARCHAR(255) NOT NULL,
			money BIGINT NOT NULL,
			lands TEXT NOT NULL,
			PRIMARY KEY (storage_key, position),
			UNIQUE (storage_key, player_id)
		)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func Transaction(db *sql.DB, body func(*sql.Tx) error) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := body(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	return nil
}

// isDuplicate reports whether err is a primary key or unique constraint
// violation of either supported driver.
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1062
	}
	var se *sqlite.Error
	if errors.As(err, &se) {
		code := se.Code()
		return code == sqlite3.SQLITE_CONSTRAINT || code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}
