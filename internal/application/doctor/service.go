// Package doctor runs environment diagnostics: configuration, stores, and
// the availability of each execution tier.
package doctor

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/doeshing/nixwish/internal/domain"
	"github.com/doeshing/nixwish/internal/ports"
)

// Service runs environment diagnostics.
type Service struct {
	ConfigProvider ports.ConfigProvider
	Knowledge      ports.KnowledgeStore
	Learning       ports.LearningStore
	Hooks          ports.HookEngine
}

// Run executes checks and returns a report. Tier checks never fail the
// report: a missing tier is what the fallback chain exists for.
func (s *Service) Run(ctx context.Context) (domain.HealthReport, error) {
	var checks []domain.HealthCheck

	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		checks = append(checks, fail("Config file", fmt.Sprintf("load failed: %v", err)))
		return domain.HealthReport{Checks: checks}, err
	}
	checks = append(checks, ok("Config file", fmt.Sprintf("loaded %s", cfg.ConfigFormatVersion)))

	if s.Knowledge != nil {
		if entries, err := s.Knowledge.All(ctx); err != nil {
			checks = append(checks, fail("Knowledge store", err.Error()))
		} else {
			checks = append(checks, ok("Knowledge store", fmt.Sprintf("%d entries", len(entries))))
		}
	}

	if s.Learning != nil {
		if _, err := s.Learning.Records(1); err != nil {
			checks = append(checks, warn("Learning store", err.Error()))
		} else {
			checks = append(checks, ok("Learning store", "reachable"))
		}
	}

	checks = append(checks, tierChecks(cfg.Backend)...)

	if s.Hooks != nil {
		plugins := s.Hooks.Plugins()
		enabled := 0
		for _, p := range plugins {
			if p.Enabled {
				enabled++
			}
		}
		checks = append(checks, ok("Plugins",
			fmt.Sprintf("%d discovered, %d enabled", len(plugins), enabled)))
	}

	return domain.HealthReport{Checks: checks}, nil
}

// tierChecks probes each execution tier's mechanism without running anything.
func tierChecks(cfg domain.BackendSettings) []domain.HealthCheck {
	var checks []domain.HealthCheck

	storeDB := cfg.StoreDBPath
	if storeDB == "" {
		storeDB = "/nix/var/nix/db/db.sqlite"
	}
	if _, err := os.Stat(storeDB); err != nil {
		checks = append(checks, warn("Tier native", fmt.Sprintf("store database not readable: %v", err)))
	} else {
		checks = append(checks, ok("Tier native", storeDB))
	}

	checks = append(checks, binaryCheck("Tier modern-cli", cfg.NixBinary, "nix"))
	checks = append(checks, binaryCheck("Tier legacy-cli", cfg.LegacyBinary, "nix-env"))
	checks = append(checks, ok("Tier manual", "always available"))
	return checks
}

func binaryCheck(name, configured, fallback string) domain.HealthCheck {
	binary := configured
	if binary == "" {
		binary = fallback
	}
	path, err := exec.LookPath(binary)
	if err != nil {
		return warn(name, fmt.Sprintf("%s not on PATH", binary))
	}
	return ok(name, path)
}

func ok(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthOK, Details: details}
}

func warn(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthWarn, Details: details}
}

func fail(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthError, Details: details}
}
