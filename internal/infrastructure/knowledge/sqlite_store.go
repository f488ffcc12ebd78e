// Package knowledge persists canonical package records and resolves raw slot
// strings against them.
package knowledge

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/doeshing/nixwish/internal/domain"
	"github.com/doeshing/nixwish/internal/ports"
)

// SQLiteStore persists knowledge entries in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore creates (or opens) the knowledge database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &SQLiteStore{db: db}
	if err := store.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) init() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS entries (
		name TEXT PRIMARY KEY,
		description TEXT,
		category TEXT
	);
	CREATE TABLE IF NOT EXISTS aliases (
		alias TEXT PRIMARY KEY,
		name TEXT NOT NULL REFERENCES entries(name)
	);`)
	return err
}

// Get implements ports.KnowledgeStore.
func (s *SQLiteStore) Get(ctx context.Context, name string) (domain.KnowledgeEntry, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT name, description, category FROM entries WHERE name = ?`, name)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.KnowledgeEntry{}, false, nil
	}
	if err != nil {
		return domain.KnowledgeEntry{}, false, err
	}
	entry.Aliases, err = s.aliasesOf(ctx, entry.Name)
	return entry, true, err
}

// ByAlias implements ports.KnowledgeStore.
func (s *SQLiteStore) ByAlias(ctx context.Context, alias string) (domain.KnowledgeEntry, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT e.name, e.description, e.category FROM entries e
		 JOIN aliases a ON a.name = e.name WHERE a.alias = ?`, alias)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.KnowledgeEntry{}, false, nil
	}
	if err != nil {
		return domain.KnowledgeEntry{}, false, err
	}
	entry.Aliases, err = s.aliasesOf(ctx, entry.Name)
	return entry, true, err
}

// All implements ports.KnowledgeStore.
func (s *SQLiteStore) All(ctx context.Context) ([]domain.KnowledgeEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, description, category FROM entries ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []domain.KnowledgeEntry
	for rows.Next() {
		var e domain.KnowledgeEntry
		if err := rows.Scan(&e.Name, &e.Description, &e.Category); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range entries {
		if entries[i].Aliases, err = s.aliasesOf(ctx, entries[i].Name); err != nil {
			return nil, err
		}
	}
	return entries, nil
}

// Upsert implements ports.KnowledgeStore. An existing entry with the same
// canonical name is superseded, never duplicated.
func (s *SQLiteStore) Upsert(ctx context.Context, entry domain.KnowledgeEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO entries (name, description, category) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET description = excluded.description, category = excluded.category`,
		entry.Name, entry.Description, entry.Category)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM aliases WHERE name = ?`, entry.Name); err != nil {
		return err
	}
	for _, alias := range entry.Aliases {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO aliases (alias, name) VALUES (?, ?)
			 ON CONFLICT(alias) DO UPDATE SET name = excluded.name`, alias, entry.Name); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) aliasesOf(ctx context.Context, name string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT alias FROM aliases WHERE name = ? ORDER BY alias`, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var aliases []string
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return nil, err
		}
		aliases = append(aliases, a)
	}
	return aliases, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (domain.KnowledgeEntry, error) {
	var e domain.KnowledgeEntry
	err := row.Scan(&e.Name, &e.Description, &e.Category)
	return e, err
}

var _ ports.KnowledgeStore = (*SQLiteStore)(nil)
