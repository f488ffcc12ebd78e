package doctor

import (
	"context"
	"testing"

	"github.com/doeshing/nixwish/internal/domain"
	"github.com/doeshing/nixwish/internal/infrastructure/knowledge"
)

type stubConfig struct {
	cfg domain.Config
	err error
}

func (s stubConfig) Load(context.Context) (domain.Config, error) { return s.cfg, s.err }

func TestRunReportsKnowledgeAndTierChecks(t *testing.T) {
	svc := &Service{
		ConfigProvider: stubConfig{cfg: domain.Config{ConfigFormatVersion: "1.0"}},
		Knowledge: knowledge.NewMemoryStore(
			domain.KnowledgeEntry{Name: "firefox"},
		),
	}

	report, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	byName := make(map[string]domain.HealthCheck, len(report.Checks))
	for _, c := range report.Checks {
		byName[c.Name] = c
	}
	if got := byName["Knowledge store"]; got.Status != domain.HealthOK || got.Details != "1 entries" {
		t.Fatalf("knowledge check = %+v", got)
	}
	if got := byName["Tier manual"]; got.Status != domain.HealthOK {
		t.Fatalf("manual tier must always be available, got %+v", got)
	}
	if !report.Healthy() {
		t.Fatalf("report unexpectedly unhealthy: %+v", report.Checks)
	}
}

func TestRunSurfacesConfigLoadFailure(t *testing.T) {
	svc := &Service{ConfigProvider: stubConfig{err: context.DeadlineExceeded}}

	report, err := svc.Run(context.Background())
	if err == nil {
		t.Fatal("expected config load error")
	}
	if report.Healthy() {
		t.Fatal("report must be unhealthy when config cannot load")
	}
}
