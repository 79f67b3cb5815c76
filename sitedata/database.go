package sitedata

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

type dialect int

const (
	dialectSQLite dialect = iota
	dialectPostgres
)

// DatabaseBackend keeps documents and collection items as rows in a SQL
// database. Every write runs in a single transaction.
type DatabaseBackend struct {
	db      *sql.DB
	dialect dialect
}

// OpenDatabase connects to url and runs schema setup. postgres:// and
// postgresql:// URLs use the pgx driver; anything else is a SQLite path.
func OpenDatabase(ctx context.Context, url string) (*DatabaseBackend, error) {
	driver, dsn, d := parseDatabaseURL(url)
	if d == dialectSQLite {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, unavailable("open", "", err)
		}
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, unavailable("open", "", err)
	}
	if d == dialectSQLite {
		if _, err := db.ExecContext(ctx, `
			PRAGMA journal_mode=WAL;
			PRAGMA busy_timeout=5000;
			PRAGMA synchronous=NORMAL;
		`); err != nil {
			db.Close()
			return nil, unavailable("open", "", err)
		}
		db.SetMaxOpenConns(4)
		db.SetMaxIdleConns(4)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, unavailable("open", "", err)
	}
	b := &DatabaseBackend{db: db, dialect: d}
	if err := b.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, unavailable("migrate", "", err)
	}
	return b, nil
}

func parseDatabaseURL(url string) (driver, dsn string, d dialect) {
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return "pgx", url, dialectPostgres
	case strings.HasPrefix(url, "sqlite://"):
		return "sqlite", strings.TrimPrefix(url, "sqlite://"), dialectSQLite
	case strings.HasPrefix(url, "file:"):
		return "sqlite", strings.TrimPrefix(url, "file:"), dialectSQLite
	default:
		return "sqlite", url, dialectSQLite
	}
}

// Close closes the underlying database connection.
func (b *DatabaseBackend) Close() error {
	return b.db.Close()
}

func (b *DatabaseBackend) ensureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS documents (
    key TEXT PRIMARY KEY,
    body TEXT NOT NULL,
    updated_at TEXT NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS collection_items (
    key TEXT NOT NULL,
    position INTEGER NOT NULL,
    body TEXT NOT NULL,
    PRIMARY KEY (key, position)
)`,
	}
	for _, stmt := range stmts {
		if _, err := b.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// rebind rewrites ? placeholders to $N for postgres.
func (b *DatabaseBackend) rebind(query string) string {
	if b.dialect != dialectPostgres {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func (b *DatabaseBackend) ReadDocument(ctx context.Context, key string) (json.RawMessage, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	var body string
	err := b.db.QueryRowContext(ctx, b.rebind(`SELECT body FROM documents WHERE key = ?`), key).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, unavailable("read document", key, err)
	}
	if !json.Valid([]byte(body)) {
		return nil, corrupt("read document", key, fmt.Errorf("stored body is not valid JSON"))
	}
	return json.RawMessage(body), nil
}

func (b *DatabaseBackend) WriteDocument(ctx context.Context, key string, doc json.RawMessage) error {
	if err := checkKey(key); err != nil {
		return err
	}
	return b.withTx(ctx, "write document", key, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, b.rebind(`INSERT INTO documents (key, body, updated_at) VALUES (?, ?, ?)
ON CONFLICT (key) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`),
			key, string(doc), time.Now().UTC().Format(time.RFC3339Nano))
		return err
	})
}

func (b *DatabaseBackend) CreateDocument(ctx context.Context, key string, doc json.RawMessage) (bool, error) {
	if err := checkKey(key); err != nil {
		return false, err
	}
	var created bool
	err := b.withTx(ctx, "create document", key, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, b.rebind(`INSERT INTO documents (key, body, updated_at) VALUES (?, ?, ?)
ON CONFLICT (key) DO NOTHING`),
			key, string(doc), time.Now().UTC().Format(time.RFC3339Nano))
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		created = n > 0
		return nil
	})
	return created, err
}

func (b *DatabaseBackend) ReadCollection(ctx context.Context, key string) ([]json.RawMessage, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	rows, err := b.db.QueryContext(ctx, b.rebind(`SELECT body FROM collection_items WHERE key = ? ORDER BY position`), key)
	if err != nil {
		return nil, unavailable("read collection", key, err)
	}
	defer rows.Close()

	items := []json.RawMessage{}
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, unavailable("read collection", key, err)
		}
		if !json.Valid([]byte(body)) {
			return nil, corrupt("read collection", key, fmt.Errorf("item %d is not valid JSON", len(items)))
		}
		items = append(items, json.RawMessage(body))
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("read collection", key, err)
	}
	return items, nil
}

func (b *DatabaseBackend) WriteCollection(ctx context.Context, key string, items []json.RawMessage) error {
	if err := checkKey(key); err != nil {
		return err
	}
	return b.withTx(ctx, "write collection", key, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, b.rebind(`DELETE FROM collection_items WHERE key = ?`), key); err != nil {
			return err
		}
		stmt, err := tx.PrepareContext(ctx, b.rebind(`INSERT INTO collection_items (key, position, body) VALUES (?, ?, ?)`))
		if err != nil {
			return err
		}
		defer stmt.Close()
		for i, item := range items {
			if _, err := stmt.ExecContext(ctx, key, i, string(item)); err != nil {
				return err
			}
		}
		return nil
	})
}

// withTx runs fn in a transaction and commits only if fn succeeds.
func (b *DatabaseBackend) withTx(ctx context.Context, op, key string, fn func(*sql.Tx) error) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return unavailable(op, key, err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return unavailable(op, key, err)
	}
	if err := tx.Commit(); err != nil {
		return unavailable(op, key, err)
	}
	return nil
}
