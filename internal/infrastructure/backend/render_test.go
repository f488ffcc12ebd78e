package backend

import (
	"testing"

	"github.com/doeshing/nixwish/internal/domain"
)

func TestCommandLineInstall(t *testing.T) {
	plan := domain.CommandPlan{
		Operation: domain.OpInstall,
		Targets:   []domain.KnowledgeEntry{{Name: "firefox"}},
	}
	got := CommandLine(plan)
	want := "nix profile install nixpkgs#firefox"
	if got != want {
		t.Fatalf("CommandLine() = %q, want %q", got, want)
	}
}

func TestCommandLineIsDeterministic(t *testing.T) {
	plan := domain.CommandPlan{
		Operation: domain.OpSearch,
		Query:     "markdown editor",
	}
	first := CommandLine(plan)
	second := CommandLine(plan)
	if first != second || first == "" {
		t.Fatalf("CommandLine() not stable: %q vs %q", first, second)
	}
}

func TestSearchWithoutTermsOmitsEmptyArgument(t *testing.T) {
	plan := domain.CommandPlan{Operation: domain.OpSearch}

	if got, want := CommandLine(plan), "nix search nixpkgs --json"; got != want {
		t.Fatalf("CommandLine() = %q, want %q", got, want)
	}
	argv, err := legacyArgv(plan)
	if err != nil {
		t.Fatalf("legacyArgv() error = %v", err)
	}
	for _, a := range argv {
		if a == "" {
			t.Fatalf("legacyArgv() = %q contains an empty element", argv)
		}
	}
}

func TestLegacyArgvForms(t *testing.T) {
	cases := []struct {
		op   domain.Operation
		want string
	}{
		{domain.OpInstall, "nix-env"},
		{domain.OpRemove, "nix-env"},
		{domain.OpGarbageCollect, "nix-collect-garbage"},
	}
	for _, tc := range cases {
		argv, err := legacyArgv(domain.CommandPlan{
			Operation: tc.op,
			Targets:   []domain.KnowledgeEntry{{Name: "vim"}},
		})
		if err != nil {
			t.Fatalf("legacyArgv(%s) error = %v", tc.op, err)
		}
		if argv[0] != tc.want {
			t.Fatalf("legacyArgv(%s)[0] = %q, want %q", tc.op, argv[0], tc.want)
		}
	}
}

func TestLegacyArgvHasNoReconfigureForm(t *testing.T) {
	if _, err := legacyArgv(domain.CommandPlan{Operation: domain.OpReconfigure}); err == nil {
		t.Fatal("nix-env cannot reconfigure; expected an error")
	}
}
