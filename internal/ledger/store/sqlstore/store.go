// Package sqlstore keeps the book as a single JSON snapshot row in a SQL
// database.
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MrJamesThe3rd/tally/internal/ledger"
)

type Dialect int

const (
	Postgres Dialect = iota
	SQLite
)

const snapshotID = 1

type Store struct {
	db      *sql.DB
	dialect Dialect
}

func New(db *sql.DB, dialect Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

// Migrate creates the snapshot table if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS ledger_snapshots (
			id         INTEGER PRIMARY KEY,
			data       TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`

	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("creating ledger_snapshots: %w", err)
	}

	return nil
}

func (s *Store) Load(ctx context.Context) (*ledger.Book, error) {
	var data string

	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT data FROM ledger_snapshots WHERE id = $1`), snapshotID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return &ledger.Book{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("querying snapshot: %w", err)
	}

	var book ledger.Book
	if err := json.Unmarshal([]byte(data), &book); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}

	return &book, nil
}

func (s *Store) Save(ctx context.Context, book *ledger.Book) error {
	data, err := json.Marshal(book)
	if err != nil {
		return fmt.Errorf("encoding book: %w", err)
	}

	query := `
		INSERT INTO ledger_snapshots (id, data, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at
	`

	if _, err := s.db.ExecContext(ctx, s.rebind(query), snapshotID, string(data), time.Now().UTC()); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}

	return nil
}

// rebind turns $n placeholders into ? for SQLite.
func (s *Store) rebind(query string) string {
	if s.dialect != SQLite {
		return query
	}

	out := make([]byte, 0, len(query))

	for i := 0; i < len(query); i++ {
		if query[i] != '$' {
			out = append(out, query[i])
			continue
		}

		out = append(out, '?')

		for i+1 < len(query) && query[i+1] >= '0' && query[i+1] <= '9' {
			i++
		}
	}

	return string(out)
}
