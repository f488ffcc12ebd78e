package pipeline

import (
	"strings"

	"github.com/google/uuid"

	"github.com/doeshing/nixwish/internal/domain"
)

// operationFor maps a recognized intent to its backend-agnostic operation.
func operationFor(kind domain.IntentKind) (domain.Operation, bool) {
	switch kind {
	case domain.IntentInstall:
		return domain.OpInstall, true
	case domain.IntentRemove:
		return domain.OpRemove, true
	case domain.IntentUpdate:
		return domain.OpUpdate, true
	case domain.IntentRollback:
		return domain.OpRollback, true
	case domain.IntentReconfigure:
		return domain.OpReconfigure, true
	case domain.IntentSearch:
		return domain.OpSearch, true
	case domain.IntentStatus:
		return domain.OpStatus, true
	case domain.IntentListInstalled:
		return domain.OpListInstalled, true
	case domain.IntentListGenerations:
		return domain.OpListGenerations, true
	case domain.IntentGarbageCollect:
		return domain.OpGarbageCollect, true
	}
	return "", false
}

// riskFor classifies an operation. Rollback and reconfigure touch whole
// system generations, so they rank above per-package mutations.
func riskFor(op domain.Operation) domain.RiskLevel {
	switch op {
	case domain.OpSearch, domain.OpStatus, domain.OpListInstalled, domain.OpListGenerations:
		return domain.RiskSafe
	case domain.OpRollback, domain.OpReconfigure:
		return domain.RiskDestructive
	default:
		return domain.RiskModerate
	}
}

// needsTargets reports whether the operation acts on named packages.
func needsTargets(op domain.Operation) bool {
	return op == domain.OpInstall || op == domain.OpRemove
}

// buildPlan assembles the CommandPlan for one classified query. Dry-run is
// decided here, once: mutating plans preview unless the caller asked for real
// execution, and safe plans run outright when configured to.
func buildPlan(
	intent domain.Intent,
	slots []domain.Slot,
	targets []domain.KnowledgeEntry,
	req domain.QueryRequest,
	prefs domain.Preferences,
) (domain.CommandPlan, bool) {
	op, ok := operationFor(intent.Kind)
	if !ok {
		return domain.CommandPlan{}, false
	}

	plan := domain.CommandPlan{
		ID:        uuid.NewString(),
		Operation: op,
		Targets:   targets,
		Risk:      riskFor(op),
	}

	if op == domain.OpSearch {
		// Search terms pass through verbatim; they name things the local
		// knowledge store has never seen.
		terms := make([]string, 0, len(slots))
		for _, s := range slots {
			terms = append(terms, s.Text)
		}
		plan.Query = strings.Join(terms, " ")
	}

	if op.Mutating() {
		return plan.WithDryRun(!req.Execute && prefs.DefaultDryRun), true
	}
	return plan.WithDryRun(!req.Execute && !prefs.AutoExecuteSafe), true
}
