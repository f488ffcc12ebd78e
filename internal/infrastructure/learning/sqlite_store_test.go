package learning

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/doeshing/nixwish/internal/domain"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "learning.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestAppendAndRecords(t *testing.T) {
	store := newTestStore(t)

	base := time.Now().Add(-time.Minute)
	for i, entity := range []string{"firefox", "vim"} {
		err := store.Append(domain.LearningRecord{
			Timestamp: base.Add(time.Duration(i) * time.Second),
			Caller:    "cli",
			Query:     "install " + entity,
			Intent:    domain.IntentInstall,
			Slot:      entity,
			Entity:    entity,
			Outcome:   domain.OutcomeSuccess,
		})
		if err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	records, err := store.Records(10)
	if err != nil {
		t.Fatalf("Records() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Records() = %d entries, want 2", len(records))
	}
	if records[0].Entity != "vim" {
		t.Fatalf("records not newest-first: %+v", records)
	}
}

func TestBiasCountsPerCallerAndSlot(t *testing.T) {
	store := newTestStore(t)

	append := func(caller, slot, entity string, outcome domain.LearningOutcome) {
		t.Helper()
		if err := store.Append(domain.LearningRecord{
			Caller: caller, Slot: slot, Entity: entity,
			Intent: domain.IntentInstall, Outcome: outcome,
		}); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	append("cli", "editor", "neovim", domain.OutcomeSuccess)
	append("cli", "editor", "neovim", domain.OutcomePreviewed)
	append("cli", "editor", "vim", domain.OutcomeSuccess)
	// Different caller and failed outcomes must not contribute.
	append("voice", "editor", "emacs", domain.OutcomeSuccess)
	append("cli", "editor", "emacs", domain.OutcomeFailed)

	bias, err := store.Bias("cli", "editor")
	if err != nil {
		t.Fatalf("Bias() error = %v", err)
	}
	if bias["neovim"] != 2 || bias["vim"] != 1 || bias["emacs"] != 0 {
		t.Fatalf("Bias() = %v, want neovim:2 vim:1", bias)
	}
}
