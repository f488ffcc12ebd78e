package plugin

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/nixwish/assets"
	"github.com/doeshing/nixwish/internal/domain"
)

type testLogger struct{}

func (testLogger) Debug(string, map[string]interface{})        {}
func (testLogger) Info(string, map[string]interface{})         {}
func (testLogger) Warn(string, map[string]interface{})         {}
func (testLogger) Error(string, error, map[string]interface{}) {}

// writePlugin lays out one plugin directory under root.
func writePlugin(t *testing.T, root, name, manifest, script string) {
	t.Helper()
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "manifest.yaml"), []byte(manifest), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hook.go"), []byte(script), 0o644))
}

func newTestEngine(t *testing.T, userDir string, enabled ...string) *Engine {
	t.Helper()
	return NewEngine(
		Dirs{User: userDir},
		domain.PluginSettings{Enabled: enabled, ScratchBaseDir: t.TempDir()},
		testLogger{},
	)
}

func TestBuiltinPluginsMaterializeAndSuggestOnError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteBuiltins(dir, assets.BuiltinPlugins()))

	e := NewEngine(
		Dirs{Builtin: dir},
		domain.PluginSettings{Enabled: []string{"diskspace"}, ScratchBaseDir: t.TempDir()},
		testLogger{},
	)
	plugins := e.Plugins()
	require.Len(t, plugins, 1)
	assert.Equal(t, domain.SourceBuiltin, plugins[0].Source)
	assert.True(t, plugins[0].Enabled)

	got := e.OnError(context.Background(), domain.CommandPlan{Operation: domain.OpInstall},
		errors.New("mkdir /nix/store/abc: no space left on device"))
	assert.Equal(t, []string{"free store space with: nix store gc"}, got)
}

func TestDiscoveryLoadsMetadataWithoutRunningCode(t *testing.T) {
	root := t.TempDir()
	// The script is syntactically broken; discovery must still succeed
	// because nothing is evaluated until Enable.
	writePlugin(t, root, "broken",
		"name: broken\nversion: 1.0.0\nhooks:\n  - stage: pre_intent\n",
		"func Handle(stage, payload string (string, error) {")

	e := newTestEngine(t, root)
	plugins := e.Plugins()
	require.Len(t, plugins, 1)
	assert.Equal(t, "broken", plugins[0].Name)
	assert.False(t, plugins[0].Enabled)

	err := e.Enable("broken")
	require.Error(t, err)
}

func TestPreIntentHookRewritesQuery(t *testing.T) {
	root := t.TempDir()
	writePlugin(t, root, "slang",
		"name: slang\nversion: 1.0.0\nhooks:\n  - stage: pre_intent\n",
		`import "strings"

func Handle(stage, payload string) (string, error) {
	if stage != "pre_intent" {
		return "", nil
	}
	return strings.ReplaceAll(payload, "grab", "install"), nil
}
`)

	e := newTestEngine(t, root, "slang")
	got := e.PreIntent(context.Background(), "grab firefox")
	assert.Equal(t, "install firefox", got)
}

func TestPreExecuteVetoStopsLaterHooks(t *testing.T) {
	root := t.TempDir()
	writePlugin(t, root, "policy",
		"name: policy\nversion: 1.0.0\nhooks:\n  - stage: pre_execute\n    priority: 1\n",
		`func Handle(stage, payload string) (string, error) {
	return "{\"veto\":true,\"reason\":\"blocked by policy\"}", nil
}
`)
	// later would force dry-run; the earlier veto must prevent it from running.
	writePlugin(t, root, "later",
		"name: later\nversion: 1.0.0\nhooks:\n  - stage: pre_execute\n    priority: 2\n",
		`import "strings"

func Handle(stage, payload string) (string, error) {
	return strings.Replace(payload, "\"dry_run\":false", "\"dry_run\":true", 1), nil
}
`)

	e := newTestEngine(t, root, "policy", "later")
	plan := domain.CommandPlan{Operation: domain.OpInstall}
	outcome := e.PreExecute(context.Background(), plan)
	assert.True(t, outcome.Veto)
	assert.Equal(t, "blocked by policy", outcome.Reason)
	assert.Equal(t, plan, outcome.Plan, "plan must be untouched after a veto")
}

func TestForbiddenImportRejectedAtEnable(t *testing.T) {
	root := t.TempDir()
	writePlugin(t, root, "sneaky",
		"name: sneaky\nversion: 1.0.0\nhooks:\n  - stage: pre_intent\n",
		`import "os/exec"

func Handle(stage, payload string) (string, error) {
	out, err := exec.Command("id").Output()
	return string(out), err
}
`)

	e := newTestEngine(t, root)
	err := e.Enable("sneaky")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "os/exec")
}

func TestHookErrorIsContained(t *testing.T) {
	root := t.TempDir()
	writePlugin(t, root, "flaky",
		"name: flaky\nversion: 1.0.0\nhooks:\n  - stage: pre_intent\n",
		`import "errors"

func Handle(stage, payload string) (string, error) {
	return "", errors.New("boom")
}
`)

	e := newTestEngine(t, root, "flaky")
	got := e.PreIntent(context.Background(), "install firefox")
	assert.Equal(t, "install firefox", got, "a faulting hook must leave the query unchanged")
}

func TestHookOverrunningBudgetIsAbandoned(t *testing.T) {
	root := t.TempDir()
	writePlugin(t, root, "slow",
		"name: slow\nversion: 1.0.0\nhooks:\n  - stage: pre_intent\n",
		`import "time"

func Handle(stage, payload string) (string, error) {
	time.Sleep(5 * time.Second)
	return "never", nil
}
`)

	e := NewEngine(
		Dirs{User: root},
		domain.PluginSettings{Enabled: []string{"slow"}, BudgetSeconds: 1, ScratchBaseDir: t.TempDir()},
		testLogger{},
	)

	start := time.Now()
	got := e.PreIntent(context.Background(), "install firefox")
	assert.Equal(t, "install firefox", got)
	assert.Less(t, time.Since(start), 3*time.Second)
}

func TestHooksRunInPriorityOrder(t *testing.T) {
	root := t.TempDir()
	writePlugin(t, root, "second",
		"name: second\nversion: 1.0.0\nhooks:\n  - stage: pre_intent\n    priority: 20\n",
		`func Handle(stage, payload string) (string, error) {
	return payload + " b", nil
}
`)
	writePlugin(t, root, "first",
		"name: first\nversion: 1.0.0\nhooks:\n  - stage: pre_intent\n    priority: 10\n",
		`func Handle(stage, payload string) (string, error) {
	return payload + " a", nil
}
`)

	e := newTestEngine(t, root, "second", "first")
	got := e.PreIntent(context.Background(), "x")
	assert.Equal(t, "x a b", got)
}

func TestScratchDirIsConfinedToPlugin(t *testing.T) {
	root := t.TempDir()
	scratchBase := t.TempDir()
	writePlugin(t, root, "noter",
		"name: noter\nversion: 1.0.0\ncapabilities: [scratch_dir]\nhooks:\n  - stage: post_execute\n",
		`import "nixwish/scratch"

func Handle(stage, payload string) (string, error) {
	if err := scratch.Write("note.txt", "seen"); err != nil {
		return "", err
	}
	if err := scratch.Write("../escape.txt", "bad"); err == nil {
		return "", nil
	}
	return "{\"note\":\"stored\"}", nil
}
`)

	e := NewEngine(
		Dirs{User: root},
		domain.PluginSettings{Enabled: []string{"noter"}, ScratchBaseDir: scratchBase},
		testLogger{},
	)

	annotations := e.PostExecute(context.Background(), domain.CommandPlan{}, domain.ExecutionResult{})
	assert.Equal(t, "stored", annotations["note"])

	data, err := os.ReadFile(filepath.Join(scratchBase, "noter", "note.txt"))
	require.NoError(t, err)
	assert.Equal(t, "seen", string(data))

	_, err = os.Stat(filepath.Join(scratchBase, "escape.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestOnErrorCollectsSuggestions(t *testing.T) {
	root := t.TempDir()
	writePlugin(t, root, "helper",
		"name: helper\nversion: 1.0.0\nhooks:\n  - stage: on_error\n",
		`import "strings"

func Handle(stage, payload string) (string, error) {
	if strings.Contains(payload, "disk") {
		return "try: nix store gc", nil
	}
	return "", nil
}
`)

	e := newTestEngine(t, root, "helper")
	got := e.OnError(context.Background(), domain.CommandPlan{}, &domain.LogicalError{
		Tier: domain.TierModern, ExitCode: 1, Output: "no space left on disk",
	})
	require.Len(t, got, 1)
	assert.Equal(t, "try: nix store gc", got[0])
}
