package plugin

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/doeshing/nixwish/internal/domain"
	"github.com/doeshing/nixwish/internal/ports"
)

// Compile-time check that Engine satisfies the port.
var _ ports.HookEngine = (*Engine)(nil)

// loaded is one discovered plugin. sandbox is nil until the plugin is enabled.
type loaded struct {
	manifest Manifest
	meta     domain.PluginMetadata
	sandbox  *Sandbox
	order    int
}

// Engine discovers plugins from layered directories and dispatches their
// hooks. Builtin plugins load first, then system, then user, so a user plugin
// with the same name shadows a system one.
type Engine struct {
	log         ports.Logger
	budget      time.Duration
	scratchBase string
	byName      map[string]*loaded
	names       []string
}

// Dirs names the discovery roots in load order.
type Dirs struct {
	Builtin string
	System  string
	User    string
}

// NewEngine scans the discovery roots and loads metadata only. A directory
// that does not exist is skipped; a broken manifest is logged and skipped so
// one bad plugin never takes the pipeline down.
func NewEngine(dirs Dirs, settings domain.PluginSettings, log ports.Logger) *Engine {
	budget := domain.HookBudget
	if settings.BudgetSeconds > 0 {
		budget = time.Duration(settings.BudgetSeconds) * time.Second
	}
	e := &Engine{
		log:         log,
		budget:      budget,
		scratchBase: settings.ScratchBaseDir,
		byName:      make(map[string]*loaded),
	}
	e.scan(dirs.Builtin, domain.SourceBuiltin)
	e.scan(dirs.System, domain.SourceSystem)
	e.scan(dirs.User, domain.SourceUser)

	for _, name := range settings.Enabled {
		if err := e.Enable(name); err != nil {
			log.Warn("plugin enable failed", map[string]interface{}{
				"plugin": name,
				"error":  err.Error(),
			})
		}
	}
	return e
}

func (e *Engine) scan(root string, source domain.PluginSource) {
	if root == "" {
		return
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(root, entry.Name())
		m, err := loadManifest(dir)
		if err != nil {
			if !os.IsNotExist(err) {
				e.log.Warn("plugin manifest rejected", map[string]interface{}{
					"dir":   dir,
					"error": err.Error(),
				})
			}
			continue
		}
		p := &loaded{manifest: m, meta: m.metadata(source, dir)}
		if prev, ok := e.byName[m.Name]; ok {
			// later sources shadow earlier ones at the same name
			p.order = prev.order
			e.byName[m.Name] = p
			continue
		}
		p.order = len(e.names)
		e.byName[m.Name] = p
		e.names = append(e.names, m.Name)
	}
}

// Enable builds the plugin's sandbox. This is the first moment any plugin
// code is evaluated.
func (e *Engine) Enable(name string) error {
	p, ok := e.byName[name]
	if !ok {
		return fmt.Errorf("unknown plugin %q", name)
	}
	if p.sandbox != nil {
		return nil
	}
	sb, err := NewSandbox(p.manifest, p.meta.Dir, e.scratchBase)
	if err != nil {
		return fmt.Errorf("enable plugin %s: %w", name, err)
	}
	p.sandbox = sb
	p.meta.Enabled = true
	return nil
}

// Disable drops the plugin's sandbox; metadata stays discoverable.
func (e *Engine) Disable(name string) error {
	p, ok := e.byName[name]
	if !ok {
		return fmt.Errorf("unknown plugin %q", name)
	}
	p.sandbox = nil
	p.meta.Enabled = false
	return nil
}

// Plugins lists discovered plugins in load order.
func (e *Engine) Plugins() []domain.PluginMetadata {
	out := make([]domain.PluginMetadata, 0, len(e.names))
	for _, name := range e.names {
		out = append(out, e.byName[name].meta)
	}
	return out
}

// hooksFor returns the enabled plugins registered at stage, ordered by
// priority then discovery order.
func (e *Engine) hooksFor(stage domain.HookStage) []*loaded {
	type entry struct {
		p        *loaded
		priority int
	}
	var entries []entry
	for _, name := range e.names {
		p := e.byName[name]
		if p.sandbox == nil {
			continue
		}
		for _, h := range p.manifest.Hooks {
			if h.Stage == stage {
				entries = append(entries, entry{p: p, priority: h.Priority})
				break
			}
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].priority != entries[j].priority {
			return entries[i].priority < entries[j].priority
		}
		return entries[i].p.order < entries[j].p.order
	})
	out := make([]*loaded, len(entries))
	for i, en := range entries {
		out[i] = en.p
	}
	return out
}

// dispatch runs one hook under the budget and contains every failure.
func (e *Engine) dispatch(ctx context.Context, p *loaded, stage domain.HookStage, payload string) (string, bool) {
	hookCtx, cancel := context.WithTimeout(ctx, e.budget)
	defer cancel()
	out, err := p.sandbox.Run(hookCtx, stage, payload)
	if err != nil {
		e.log.Warn("plugin hook fault", map[string]interface{}{
			"plugin": p.meta.Name,
			"stage":  string(stage),
			"error":  err.Error(),
		})
		return "", false
	}
	return out, true
}

// PreIntent lets plugins rewrite the query before classification. Hooks chain:
// each sees the previous hook's output. An empty response leaves the query
// unchanged.
func (e *Engine) PreIntent(ctx context.Context, query string) string {
	for _, p := range e.hooksFor(domain.StagePreIntent) {
		out, ok := e.dispatch(ctx, p, domain.StagePreIntent, query)
		if ok && out != "" {
			query = out
		}
	}
	return query
}

// preExecuteReply is the JSON shape a pre_execute hook may return.
type preExecuteReply struct {
	Veto   bool                `json:"veto"`
	Reason string              `json:"reason"`
	Plan   *domain.CommandPlan `json:"plan"`
}

// PreExecute lets plugins veto or rewrite a plan. The first veto wins and
// later hooks do not run.
func (e *Engine) PreExecute(ctx context.Context, plan domain.CommandPlan) domain.PreExecuteOutcome {
	outcome := domain.PreExecuteOutcome{Plan: plan}
	for _, p := range e.hooksFor(domain.StagePreExecute) {
		payload, err := json.Marshal(outcome.Plan)
		if err != nil {
			continue
		}
		out, ok := e.dispatch(ctx, p, domain.StagePreExecute, string(payload))
		if !ok || out == "" {
			continue
		}
		var reply preExecuteReply
		if err := json.Unmarshal([]byte(out), &reply); err != nil {
			e.log.Warn("plugin hook fault", map[string]interface{}{
				"plugin": p.meta.Name,
				"stage":  string(domain.StagePreExecute),
				"error":  fmt.Sprintf("malformed reply: %v", err),
			})
			continue
		}
		if reply.Veto {
			outcome.Veto = true
			outcome.Reason = reply.Reason
			return outcome
		}
		if reply.Plan != nil {
			outcome.Plan = *reply.Plan
		}
	}
	return outcome
}

// postExecutePayload is what post_execute hooks receive.
type postExecutePayload struct {
	Plan   domain.CommandPlan     `json:"plan"`
	Result domain.ExecutionResult `json:"result"`
}

// PostExecute collects annotations from plugins after a run. Replies are JSON
// objects of string annotations; a later plugin's key overwrites an earlier
// one's.
func (e *Engine) PostExecute(ctx context.Context, plan domain.CommandPlan, result domain.ExecutionResult) map[string]string {
	annotations := make(map[string]string)
	payload, err := json.Marshal(postExecutePayload{Plan: plan, Result: result})
	if err != nil {
		return annotations
	}
	for _, p := range e.hooksFor(domain.StagePostExecute) {
		out, ok := e.dispatch(ctx, p, domain.StagePostExecute, string(payload))
		if !ok || out == "" {
			continue
		}
		var reply map[string]string
		if err := json.Unmarshal([]byte(out), &reply); err != nil {
			continue
		}
		for k, v := range reply {
			annotations[k] = v
		}
	}
	return annotations
}

// onErrorPayload is what on_error hooks receive.
type onErrorPayload struct {
	Plan  domain.CommandPlan `json:"plan"`
	Error string             `json:"error"`
}

// OnError gathers recovery suggestions after a failed run.
func (e *Engine) OnError(ctx context.Context, plan domain.CommandPlan, failure error) []string {
	msg := ""
	if failure != nil {
		msg = failure.Error()
	}
	payload, err := json.Marshal(onErrorPayload{Plan: plan, Error: msg})
	if err != nil {
		return nil
	}
	var suggestions []string
	for _, p := range e.hooksFor(domain.StageOnError) {
		out, ok := e.dispatch(ctx, p, domain.StageOnError, string(payload))
		if ok && out != "" {
			suggestions = append(suggestions, out)
		}
	}
	return suggestions
}
