package nlp

import (
	"regexp"

	"github.com/doeshing/nixwish/internal/domain"
)

// Pattern is one registered trigger for an intent kind. The regexp matches the
// trigger phrase only, never the entity text that follows it.
type Pattern struct {
	ID   string
	Kind domain.IntentKind
	// ExplicitVerb marks direct action phrasing ("install", "remove") as
	// opposed to implicit phrasing ("i need", "get rid of").
	ExplicitVerb bool
	Expr         string

	re    *regexp.Regexp
	order int
}

// DefaultPatterns returns the built-in trigger registry, most specific first.
// Registration order is the final tie-breaker, so the ordering here is part of
// the contract.
func DefaultPatterns() []Pattern {
	return []Pattern{
		{ID: "install.verb", Kind: domain.IntentInstall, ExplicitVerb: true,
			Expr: `\b(?:install|add)\b`},
		{ID: "install.setup", Kind: domain.IntentInstall, ExplicitVerb: true,
			Expr: `\bset up\b`},
		{ID: "install.need", Kind: domain.IntentInstall,
			Expr: `\bi (?:need|want|would like)\b`},
		{ID: "install.getme", Kind: domain.IntentInstall,
			Expr: `\bget me\b`},

		{ID: "remove.verb", Kind: domain.IntentRemove, ExplicitVerb: true,
			Expr: `\b(?:remove|uninstall|delete)\b`},
		{ID: "remove.ridof", Kind: domain.IntentRemove,
			Expr: `\bget rid of\b`},
		{ID: "remove.nomore", Kind: domain.IntentRemove,
			Expr: `\bi don'?t (?:need|want)\b`},

		{ID: "update.system", Kind: domain.IntentUpdate, ExplicitVerb: true,
			Expr: `\b(?:update|upgrade)\s+(?:my\s+)?(?:system|nixos|everything|all)\b`},
		{ID: "update.verb", Kind: domain.IntentUpdate, ExplicitVerb: true,
			Expr: `\b(?:update|upgrade)\b`},

		{ID: "rollback.verb", Kind: domain.IntentRollback, ExplicitVerb: true,
			Expr: `\b(?:rollback|roll back|revert)\b`},
		{ID: "rollback.undo", Kind: domain.IntentRollback,
			Expr: `\b(?:undo the last|go back to the previous)\b`},

		{ID: "reconfigure.verb", Kind: domain.IntentReconfigure, ExplicitVerb: true,
			Expr: `\b(?:reconfigure|rebuild|apply (?:my )?(?:configuration|config|changes))\b`},
		{ID: "reconfigure.enable", Kind: domain.IntentReconfigure, ExplicitVerb: true,
			Expr: `\b(?:configure|enable)\b`},

		{ID: "gc.phrase", Kind: domain.IntentGarbageCollect, ExplicitVerb: true,
			Expr: `\b(?:garbage collect|collect garbage|clean ?up|free (?:disk )?space)\b`},
		{ID: "gc.oldgen", Kind: domain.IntentGarbageCollect,
			Expr: `\bdelete old (?:packages?|generations?)\b`},

		{ID: "generations.list", Kind: domain.IntentListGenerations, ExplicitVerb: true,
			Expr: `\b(?:list|show)\s+(?:my\s+|system\s+)?generations?\b`},
		{ID: "generations.what", Kind: domain.IntentListGenerations,
			Expr: `\bwhat generations\b`},

		{ID: "installed.list", Kind: domain.IntentListInstalled, ExplicitVerb: true,
			Expr: `\b(?:list|show)(?:\s+\w+){0,2}\s+installed\b`},
		{ID: "installed.what", Kind: domain.IntentListInstalled,
			Expr: `\bwhat (?:packages )?(?:do i have|is) installed\b`},
		{ID: "installed.mine", Kind: domain.IntentListInstalled,
			Expr: `\b(?:show me )?my packages\b`},

		{ID: "status.check", Kind: domain.IntentStatus, ExplicitVerb: true,
			Expr: `\b(?:check|show|system)\s+(?:system\s+)?status\b`},
		{ID: "status.health", Kind: domain.IntentStatus,
			Expr: `\b(?:system health|health check|how is my system)\b`},
		{ID: "status.broken", Kind: domain.IntentStatus,
			Expr: `\bwhy is my\b.*\b(?:broken|not working|failing)\b`},

		{ID: "search.verb", Kind: domain.IntentSearch, ExplicitVerb: true,
			Expr: `\b(?:search(?: for)?|find|look for)\b`},
		{ID: "search.isthere", Kind: domain.IntentSearch,
			Expr: `\bis there (?:a|an|any)?\b`},
	}
}
