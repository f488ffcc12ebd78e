package cache

import (
	"testing"
	"time"

	"github.com/doeshing/nixwish/internal/domain"
)

func TestGetMissOnEmptyCache(t *testing.T) {
	c := NewFileCache(t.TempDir(), domain.CacheSettings{})

	_, ok, err := c.Get(Key("search firefox", domain.IntentSearch))
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if ok {
		t.Fatal("expected miss on empty cache")
	}
}

func TestSetThenGet(t *testing.T) {
	c := NewFileCache(t.TempDir(), domain.CacheSettings{})

	entry := domain.CacheEntry{
		Key:       Key("search firefox", domain.IntentSearch),
		Intent:    domain.IntentSearch,
		Entity:    "firefox",
		Rendered:  "nix search nixpkgs firefox --json",
		Result:    domain.ExecutionResult{Tier: domain.TierModern, Ran: true, Output: "firefox 128"},
		CreatedAt: time.Now(),
	}
	if err := c.Set(entry); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, ok, err := c.Get(entry.Key)
	if err != nil || !ok {
		t.Fatalf("Get() = %v, %v", ok, err)
	}
	if got.Entity != "firefox" || got.Result.Output != "firefox 128" {
		t.Fatalf("Get() = %+v", got)
	}
}

func TestPerOperationTTLExpiry(t *testing.T) {
	c := NewFileCache(t.TempDir(), domain.CacheSettings{
		TTLSeconds: map[string]int{string(domain.IntentStatus): 1},
	})

	entry := domain.CacheEntry{
		Key:       Key("check status", domain.IntentStatus),
		Intent:    domain.IntentStatus,
		CreatedAt: time.Now().Add(-2 * time.Second),
	}
	if err := c.Set(entry); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if _, ok, _ := c.Get(entry.Key); ok {
		t.Fatal("status entry past its 1s TTL must expire")
	}
}

func TestKeyDependsOnQueryAndIntent(t *testing.T) {
	a := Key("search firefox", domain.IntentSearch)
	b := Key("search firefox", domain.IntentStatus)
	c := Key("search chromium", domain.IntentSearch)
	if a == b || a == c {
		t.Fatalf("keys collide: %s %s %s", a, b, c)
	}
	if a != Key("search firefox", domain.IntentSearch) {
		t.Fatal("key not deterministic")
	}
}
