// Package backend implements the tiered execution chain: an in-process native
// store reader, the modern nix CLI, the legacy nix-env CLI, and a
// manual-instruction fallback that executes nothing.
package backend

import (
	"fmt"
	"strings"

	"github.com/doeshing/nixwish/internal/domain"
)

// CommandLine renders the canonical command string for a plan: the modern CLI
// form. Dry runs and the manual fallback show exactly this string, and the
// modern tier executes exactly these argv, which is what guarantees
// preview/execute parity.
func CommandLine(plan domain.CommandPlan) string {
	argv, err := modernArgv(plan)
	if err != nil {
		return ""
	}
	return strings.Join(argv, " ")
}

func modernArgv(plan domain.CommandPlan) ([]string, error) {
	switch plan.Operation {
	case domain.OpInstall:
		argv := []string{"nix", "profile", "install"}
		for _, name := range plan.TargetNames() {
			argv = append(argv, "nixpkgs#"+name)
		}
		return argv, nil
	case domain.OpRemove:
		return append([]string{"nix", "profile", "remove"}, plan.TargetNames()...), nil
	case domain.OpUpdate:
		return []string{"nix", "profile", "upgrade", "--all"}, nil
	case domain.OpRollback:
		return []string{"nix", "profile", "rollback"}, nil
	case domain.OpReconfigure:
		return []string{"nixos-rebuild", "switch"}, nil
	case domain.OpSearch:
		// A bare "search" browses everything; never emit an empty argument.
		if plan.Query == "" {
			return []string{"nix", "search", "nixpkgs", "--json"}, nil
		}
		return []string{"nix", "search", "nixpkgs", plan.Query, "--json"}, nil
	case domain.OpStatus:
		return []string{"nix", "store", "info"}, nil
	case domain.OpListInstalled:
		return []string{"nix", "profile", "list"}, nil
	case domain.OpListGenerations:
		return []string{"nix", "profile", "history"}, nil
	case domain.OpGarbageCollect:
		return []string{"nix", "store", "gc"}, nil
	}
	return nil, fmt.Errorf("no modern command form for %s", plan.Operation)
}

func legacyArgv(plan domain.CommandPlan) ([]string, error) {
	switch plan.Operation {
	case domain.OpInstall:
		argv := []string{"nix-env", "-iA"}
		for _, name := range plan.TargetNames() {
			argv = append(argv, "nixpkgs."+name)
		}
		return argv, nil
	case domain.OpRemove:
		return append([]string{"nix-env", "-e"}, plan.TargetNames()...), nil
	case domain.OpUpdate:
		return []string{"nix-env", "-u"}, nil
	case domain.OpRollback:
		return []string{"nix-env", "--rollback"}, nil
	case domain.OpSearch:
		if plan.Query == "" {
			return []string{"nix-env", "-qaP"}, nil
		}
		return []string{"nix-env", "-qaP", plan.Query}, nil
	case domain.OpListInstalled:
		return []string{"nix-env", "-q"}, nil
	case domain.OpListGenerations:
		return []string{"nix-env", "--list-generations"}, nil
	case domain.OpGarbageCollect:
		return []string{"nix-collect-garbage", "-d"}, nil
	}
	// status and reconfigure have no nix-env form
	return nil, fmt.Errorf("no legacy command form for %s", plan.Operation)
}
