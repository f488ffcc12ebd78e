package knowledge

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/doeshing/nixwish/internal/domain"
)

func TestSQLiteStoreRoundTrip(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "knowledge.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	entry := domain.KnowledgeEntry{
		Name:        "firefox",
		Aliases:     []string{"browser", "ff"},
		Description: "Mozilla Firefox web browser",
		Category:    "web",
	}
	if err := store.Upsert(ctx, entry); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	got, ok, err := store.Get(ctx, "firefox")
	if err != nil || !ok {
		t.Fatalf("Get() = %v, %v", ok, err)
	}
	if diff := cmp.Diff(entry, got); diff != "" {
		t.Fatalf("entry mismatch (-want +got):\n%s", diff)
	}

	byAlias, ok, err := store.ByAlias(ctx, "ff")
	if err != nil || !ok {
		t.Fatalf("ByAlias() = %v, %v", ok, err)
	}
	if byAlias.Name != "firefox" {
		t.Fatalf("ByAlias() = %+v", byAlias)
	}
}

func TestSQLiteStoreUpsertSupersedes(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "knowledge.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	first := domain.KnowledgeEntry{Name: "vim", Aliases: []string{"vi"}, Category: "editor"}
	second := domain.KnowledgeEntry{Name: "vim", Aliases: []string{"vi", "vim-editor"}, Description: "Vim text editor", Category: "editor"}
	if err := store.Upsert(ctx, first); err != nil {
		t.Fatalf("Upsert(first) error = %v", err)
	}
	if err := store.Upsert(ctx, second); err != nil {
		t.Fatalf("Upsert(second) error = %v", err)
	}

	all, err := store.All(ctx)
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("All() = %+v, want a single superseded entry", all)
	}
	if diff := cmp.Diff(second, all[0]); diff != "" {
		t.Fatalf("superseded entry mismatch (-want +got):\n%s", diff)
	}
}

func TestSeedLoadsEmbeddedDefaults(t *testing.T) {
	store := NewMemoryStore()
	seed := []byte(`entries:
  - name: firefox
    aliases: [browser]
    description: Mozilla Firefox web browser
    category: web
  - name: htop
    description: Interactive process viewer
    category: monitoring
`)
	if err := Seed(context.Background(), store, seed); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	all, err := store.All(context.Background())
	if err != nil || len(all) != 2 {
		t.Fatalf("All() = %+v, %v", all, err)
	}
	if _, ok, _ := store.ByAlias(context.Background(), "browser"); !ok {
		t.Fatal("seeded alias not resolvable")
	}
}
