package backend

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/nixwish/internal/domain"
)

func newTestNative(t *testing.T) (*Native, string) {
	t.Helper()
	dir := t.TempDir()
	return NewNative(domain.BackendSettings{
		StoreDBPath: filepath.Join(dir, "db.sqlite"),
		ProfileDir:  filepath.Join(dir, "profiles"),
	}), dir
}

func TestNativeMutationsAreUnavailable(t *testing.T) {
	native, _ := newTestNative(t)

	_, err := native.Run(context.Background(), domain.CommandPlan{
		Operation: domain.OpInstall,
		Targets:   []domain.KnowledgeEntry{{Name: "firefox"}},
	})
	var unavailable *domain.UnavailableError
	require.ErrorAs(t, err, &unavailable)
}

func TestNativeStatusMissingStoreIsAvailabilityError(t *testing.T) {
	native, _ := newTestNative(t)

	_, err := native.Run(context.Background(), domain.CommandPlan{Operation: domain.OpStatus})
	var unavailable *domain.UnavailableError
	require.ErrorAs(t, err, &unavailable,
		"an unreadable store must fall through, not fail the operation")
	var logical *domain.LogicalError
	assert.False(t, errors.As(err, &logical))
}

func TestNativeStatusReadsStoreDatabase(t *testing.T) {
	native, dir := newTestNative(t)

	db, err := sql.Open("sqlite", filepath.Join(dir, "db.sqlite"))
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE ValidPaths (id INTEGER PRIMARY KEY, path TEXT, narSize INTEGER);
		INSERT INTO ValidPaths (path, narSize) VALUES ('/nix/store/abc-firefox', 1000), ('/nix/store/def-vim', 500);`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	result, err := native.Run(context.Background(), domain.CommandPlan{Operation: domain.OpStatus})
	require.NoError(t, err)
	assert.True(t, result.Ran)
	assert.Contains(t, result.Output, "valid paths: 2")
	assert.Contains(t, result.Output, "store size: 1500")
}

func TestNativeListInstalledParsesManifest(t *testing.T) {
	native, dir := newTestNative(t)

	profile := filepath.Join(dir, "profiles", "profile")
	require.NoError(t, os.MkdirAll(profile, 0o755))
	manifest := `{"version": 2, "elements": [
		{"attrPath": "legacyPackages.x86_64-linux.firefox", "storePaths": ["/nix/store/abc-firefox-128"]},
		{"storePaths": ["/nix/store/def-vim-9.1"]}
	]}`
	require.NoError(t, os.WriteFile(filepath.Join(profile, "manifest.json"), []byte(manifest), 0o644))

	result, err := native.Run(context.Background(), domain.CommandPlan{Operation: domain.OpListInstalled})
	require.NoError(t, err)
	assert.Contains(t, result.Output, "firefox")
	assert.Contains(t, result.Output, "def-vim-9.1")
}

func TestNativeListGenerations(t *testing.T) {
	native, dir := newTestNative(t)

	profiles := filepath.Join(dir, "profiles")
	require.NoError(t, os.MkdirAll(profiles, 0o755))
	for _, name := range []string{"profile-1-link", "profile-2-link", "profile-10-link"} {
		require.NoError(t, os.WriteFile(filepath.Join(profiles, name), nil, 0o644))
	}

	result, err := native.Run(context.Background(), domain.CommandPlan{Operation: domain.OpListGenerations})
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(result.Output), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "generation 1 "))
	assert.True(t, strings.HasPrefix(lines[2], "generation 10 "), "generations must sort numerically")
}
