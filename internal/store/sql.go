package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/go-sql-driver/mysql" // mysql driver
	_ "modernc.org/sqlite"             // pure go sqlite driver

	"github.com/vyrodovalexey/itemdesk/internal/model"
)

// Dialect holds the driver-specific parts of the SQL store.
type Dialect struct {
	Driver string
	Schema string
}

// Supported dialects.
var (
	SQLite = Dialect{
		Driver: "sqlite",
		Schema: `CREATE TABLE IF NOT EXISTS items (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			category TEXT NOT NULL,
			description TEXT NOT NULL
		)`,
	}
	MySQL = Dialect{
		Driver: "mysql",
		Schema: `CREATE TABLE IF NOT EXISTS items (
			id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			category VARCHAR(255) NOT NULL,
			description TEXT NOT NULL
		) CHARACTER SET utf8mb4`,
	}
)

const (
	queryList   = `SELECT id, name, category, description FROM items ORDER BY id`
	queryGet    = `SELECT id, name, category, description FROM items WHERE id = ?`
	queryInsert = `INSERT INTO items (name, category, description) VALUES (?, ?, ?)`
	queryDelete = `DELETE FROM items WHERE id = ?`
)

// SQLStore implements Store on top of database/sql.
type SQLStore struct {
	db *sql.DB
}

// OpenSQLStore opens dsn with the dialect's driver and ensures the schema exists.
func OpenSQLStore(ctx context.Context, dialect Dialect, dsn string) (*SQLStore, error) {
	db, err := sql.Open(dialect.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect.Driver, err)
	}

	// Every SQLite connection to ":memory:" is a separate database, and SQLite
	// serializes writers anyway.
	if dialect.Driver == SQLite.Driver {
		db.SetMaxOpenConns(1)
	}

	s, err := NewSQLStore(ctx, db, dialect)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLStore wraps an open database and ensures the schema exists.
func NewSQLStore(ctx context.Context, db *sql.DB, dialect Dialect) (*SQLStore, error) {
	if _, err := db.ExecContext(ctx, dialect.Schema); err != nil {
		return nil, fmt.Errorf("create items table: %w", err)
	}
	return &SQLStore{db: db}, nil
}

// List returns all items ordered by ID.
func (s *SQLStore) List(ctx context.Context) ([]model.Item, error) {
	rows, err := s.db.QueryContext(ctx, queryList)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	items := make([]model.Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("list items: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	return items, nil
}

// Get retrieves an item by its ID.
func (s *SQLStore) Get(ctx context.Context, id model.ItemID) (*model.Item, error) {
	key, err := parseID(id)
	if err != nil {
		return nil, err
	}

	item, err := scanItem(s.db.QueryRowContext(ctx, queryGet, key))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}

	return &item, nil
}

// Create inserts a new item and returns it with the generated ID.
func (s *SQLStore) Create(ctx context.Context, draft *model.ItemDraft) (*model.Item, error) {
	if draft == nil {
		return nil, fmt.Errorf("create item: %w", ErrNilItem)
	}

	res, err := s.db.ExecContext(ctx, queryInsert, draft.Name, draft.Category, draft.Description)
	if err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("create item: last insert id: %w", err)
	}

	return &model.Item{
		ID:          formatID(id),
		Name:        draft.Name,
		Category:    draft.Category,
		Description: draft.Description,
	}, nil
}

// Delete removes an item by its ID.
func (s *SQLStore) Delete(ctx context.Context, id model.ItemID) error {
	key, err := parseID(id)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, queryDelete, key)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete item: rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	return nil
}

// Close closes the underlying database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (model.Item, error) {
	var (
		id   int64
		item model.Item
	)
	if err := row.Scan(&id, &item.Name, &item.Category, &item.Description); err != nil {
		return model.Item{}, err
	}
	item.ID = formatID(id)
	return item, nil
}
