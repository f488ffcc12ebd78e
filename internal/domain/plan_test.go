package domain

import "testing"

func TestConfirmed(t *testing.T) {
	cases := []struct {
		name string
		plan CommandPlan
		tok  string
		want bool
	}{
		{"dry run passes regardless of risk", CommandPlan{Risk: RiskDestructive, DryRun: true}, "", true},
		{"safe passes without a token", CommandPlan{Risk: RiskSafe}, "", true},
		{"moderate blocked without a token", CommandPlan{Risk: RiskModerate}, "", false},
		{"moderate passes with a token", CommandPlan{Risk: RiskModerate}, "yes", true},
		{"destructive blocked without a token", CommandPlan{Risk: RiskDestructive}, "", false},
		{"destructive passes with a token", CommandPlan{Risk: RiskDestructive}, "yes", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.plan.Confirmed(tc.tok); got != tc.want {
				t.Fatalf("Confirmed(%q) = %v, want %v", tc.tok, got, tc.want)
			}
		})
	}
}

func TestWithDryRunReturnsCopy(t *testing.T) {
	original := CommandPlan{Operation: OpInstall, Risk: RiskModerate}
	dry := original.WithDryRun(true)
	if !dry.DryRun {
		t.Fatal("WithDryRun(true) did not set the flag")
	}
	if original.DryRun {
		t.Fatal("WithDryRun must not mutate the receiver")
	}
}
