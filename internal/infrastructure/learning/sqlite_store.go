// Package learning persists the append-only outcome log. Records are written
// exactly once per completed pipeline run and consulted by the knowledge
// resolver to bias ambiguous resolutions toward previously-chosen entities.
package learning

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/doeshing/nixwish/internal/domain"
	"github.com/doeshing/nixwish/internal/ports"
)

// SQLiteStore persists learning records in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore creates (or opens) the learning database at path.
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
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS records (
		id TEXT PRIMARY KEY,
		timestamp TEXT,
		caller TEXT,
		query TEXT,
		intent TEXT,
		slot TEXT,
		entity TEXT,
		outcome TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_records_bias ON records(caller, slot, entity);`)
	return err
}

// Append implements ports.LearningStore. The log is insert-only: no update or
// delete statement exists anywhere in this package.
func (s *SQLiteStore) Append(record domain.LearningRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}
	_, err := s.db.Exec(`INSERT INTO records
		(id, timestamp, caller, query, intent, slot, entity, outcome)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.Timestamp.Format(domain.TimestampFormat),
		record.Caller,
		record.Query,
		string(record.Intent),
		record.Slot,
		record.Entity,
		string(record.Outcome),
	)
	return err
}

// Bias implements ports.LearningStore: how often the caller previously chose
// each entity for this slot text, counting only runs that went somewhere.
func (s *SQLiteStore) Bias(caller, slot string) (map[string]int, error) {
	rows, err := s.db.Query(`SELECT entity, COUNT(*) FROM records
		WHERE caller = ? AND slot = ? AND entity != ''
		AND outcome IN (?, ?)
		GROUP BY entity`,
		caller, slot, string(domain.OutcomeSuccess), string(domain.OutcomePreviewed))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	bias := make(map[string]int)
	for rows.Next() {
		var entity string
		var count int
		if err := rows.Scan(&entity, &count); err != nil {
			return nil, err
		}
		bias[entity] = count
	}
	return bias, rows.Err()
}

// Records returns the newest records (limit <= 0 returns all).
func (s *SQLiteStore) Records(limit int) ([]domain.LearningRecord, error) {
	query := `SELECT id, timestamp, caller, query, intent, slot, entity, outcome
		FROM records ORDER BY datetime(timestamp) DESC`
	var args []interface{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var records []domain.LearningRecord
	for rows.Next() {
		var rec domain.LearningRecord
		var ts, intent, outcome string
		if err := rows.Scan(&rec.ID, &ts, &rec.Caller, &rec.Query, &intent, &rec.Slot, &rec.Entity, &outcome); err != nil {
			return nil, err
		}
		if t, err := time.Parse(domain.TimestampFormat, ts); err == nil {
			rec.Timestamp = t
		}
		rec.Intent = domain.IntentKind(intent)
		rec.Outcome = domain.LearningOutcome(outcome)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var _ ports.LearningStore = (*SQLiteStore)(nil)
