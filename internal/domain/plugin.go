package domain

import "time"

// HookStage enumerates the pipeline extension points.
type HookStage string

const (
	StagePreIntent   HookStage = "pre_intent"
	StagePreExecute  HookStage = "pre_execute"
	StagePostExecute HookStage = "post_execute"
	StageOnError     HookStage = "on_error"
)

// Capability is a sandbox permission a plugin may declare.
type Capability string

const (
	CapabilityScratchDir Capability = "scratch_dir"
	CapabilityNetwork    Capability = "network"
)

// PluginSource distinguishes where a plugin was discovered.
type PluginSource string

const (
	SourceBuiltin PluginSource = "builtin"
	SourceUser    PluginSource = "user"
	SourceSystem  PluginSource = "system"
)

// PluginMetadata describes a discovered plugin. Metadata is loaded at startup;
// no plugin code runs until the plugin is explicitly enabled.
type PluginMetadata struct {
	Name         string       `yaml:"name"`
	Version      string       `yaml:"version"`
	Description  string       `yaml:"description"`
	Capabilities []Capability `yaml:"capabilities"`
	Source       PluginSource `yaml:"-"`
	Dir          string       `yaml:"-"`
	Enabled      bool         `yaml:"-"`
}

// HookBinding registers one plugin hook at one stage. Lower priority runs
// first; ties break by registration order.
type HookBinding struct {
	Stage    HookStage `yaml:"stage"`
	Priority int       `yaml:"priority"`
	Plugin   string    `yaml:"-"`
}

// PreExecuteOutcome is what a pre_execute hook may do to a plan.
type PreExecuteOutcome struct {
	// Plan is the (possibly rewritten) plan to continue with.
	Plan CommandPlan
	// Veto aborts the pipeline cleanly with Reason.
	Veto   bool
	Reason string
}

// HookBudget bounds how long a single hook may run.
const HookBudget = 2 * time.Second
