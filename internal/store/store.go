package store

import (
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// Store is the SQL data-access layer.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

// New opens (and creates if needed) a SQLite database at dbPath.
func New(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return Open(string(SQLite), dbPath+"?_foreign_keys=on&_busy_timeout=5000")
}

// Open connects to the database of the given driver (sqlite3, postgres or
// mysql) and applies the schema.
func Open(driver, dsn string) (*Store, error) {
	dialect, err := ParseDialect(driver)
	if err != nil {
		return nil, err
	}
	if dsn == "" {
		return nil, fmt.Errorf("empty dsn for driver %s", driver)
	}

	if dialect == MySQL {
		cfg, err := mysql.ParseDSN(dsn)
		if err != nil {
			return nil, fmt.Errorf("invalid mysql dsn: %w", err)
		}
		cfg.ParseTime = true
		cfg.ClientFoundRows = true
		dsn = cfg.FormatDSN()
	}

	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if dialect == SQLite {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	store := &Store{db: db, dialect: dialect}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema runs the dialect's schema file statement by statement.
func (s *Store) initSchema() error {
	name := "schema/" + string(s.dialect) + ".sql"
	schemaSQL, err := schemaFS.ReadFile(name)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}

	for _, stmt := range strings.Split(string(schemaSQL), ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute schema: %w", err)
		}
	}

	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// DB returns the raw connection.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Dialect returns the SQL dialect in use.
func (s *Store) Dialect() Dialect {
	return s.dialect
}

// Exec runs a statement written with ? placeholders.
func (s *Store) Exec(query string, args ...interface{}) error {
	_, err := s.db.Exec(s.dialect.Rebind(query), args...)
	return err
}

// QueryRow runs a single-row query written with ? placeholders.
func (s *Store) QueryRow(query string, args ...interface{}) *sql.Row {
	return s.db.QueryRow(s.dialect.Rebind(query), args...)
}

// Query runs a query written with ? placeholders.
func (s *Store) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return s.db.Query(s.dialect.Rebind(query), args...)
}

// insert runs an INSERT and returns the new row id.
func (s *Store) insert(q queryer, query string, args ...interface{}) (int64, error) {
	if s.dialect == Postgres {
		var id int64
		err := q.QueryRow(s.dialect.Rebind(query+" RETURNING id"), args...).Scan(&id)
		return id, err
	}

	res, err := q.Exec(s.dialect.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// inTx runs fn in a transaction, committing when fn returns nil.
func (s *Store) inTx(fn func(tx *sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
