package domain

// Operation enumerates backend-agnostic operations a plan can describe.
type Operation string

const (
	OpInstall         Operation = "install"
	OpRemove          Operation = "remove"
	OpUpdate          Operation = "update"
	OpRollback        Operation = "rollback"
	OpReconfigure     Operation = "reconfigure"
	OpSearch          Operation = "search"
	OpStatus          Operation = "status"
	OpListInstalled   Operation = "list_installed"
	OpListGenerations Operation = "list_generations"
	OpGarbageCollect  Operation = "garbage_collect"
)

// RiskLevel classifies how much damage an operation can do.
type RiskLevel string

const (
	RiskSafe        RiskLevel = "safe"
	RiskModerate    RiskLevel = "moderate"
	RiskDestructive RiskLevel = "destructive"
)

// Mutating reports whether the operation changes system state.
func (o Operation) Mutating() bool {
	switch o {
	case OpInstall, OpRemove, OpUpdate, OpRollback, OpReconfigure, OpGarbageCollect:
		return true
	}
	return false
}

// CommandPlan is a backend-agnostic description of one operation. It is built
// once per query and treated as immutable after safety-gate approval; a
// pre_execute hook that rewrites a plan produces a new value.
type CommandPlan struct {
	ID        string    `json:"id"`
	Operation Operation `json:"operation"`
	// Targets are the resolved entities the operation acts on. Read-only
	// operations like status or list may have none.
	Targets []KnowledgeEntry `json:"targets,omitempty"`
	// Query carries free-text arguments (e.g. the search term).
	Query   string            `json:"query,omitempty"`
	Options map[string]string `json:"options,omitempty"`
	Risk    RiskLevel         `json:"risk"`
	DryRun  bool              `json:"dry_run"`
}

// Confirmed reports whether the plan may proceed past the safety gate without
// further interaction.
func (p CommandPlan) Confirmed(token string) bool {
	if p.DryRun || p.Risk == RiskSafe {
		return true
	}
	return token != ""
}

// WithDryRun returns a copy of the plan with the dry-run flag set.
func (p CommandPlan) WithDryRun(dry bool) CommandPlan {
	p.DryRun = dry
	return p
}

// TargetNames lists the canonical names of the plan's targets.
func (p CommandPlan) TargetNames() []string {
	names := make([]string, 0, len(p.Targets))
	for _, t := range p.Targets {
		names = append(names, t.Name)
	}
	return names
}
