// Package file keeps the book as one JSON document on disk.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/MrJamesThe3rd/tally/internal/ledger"
)

type Store struct {
	path string
	mu   sync.Mutex
}

func New(path string) *Store {
	return &Store{path: path}
}

// Load reads the whole book. A missing file is an empty book.
func (s *Store) Load(_ context.Context) (*ledger.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return &ledger.Book{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}

	var book ledger.Book
	if err := json.Unmarshal(data, &book); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", s.path, err)
	}

	return &book, nil
}

// Save writes the book to a temp file next to the target and renames it over
// the old one. Concurrent writers are not detected: the last rename wins.
func (s *Store) Save(_ context.Context, book *ledger.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(book, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding book: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing temp file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replacing %s: %w", s.path, err)
	}

	return nil
}
