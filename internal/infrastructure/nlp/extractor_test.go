package nlp

import (
	"testing"

	"github.com/doeshing/nixwish/internal/domain"
)

func classifyAndExtract(t *testing.T, query string) []domain.Slot {
	t.Helper()
	c := mustClassifier(t)
	normalized := Normalize(query)
	intents := c.Classify(normalized)
	if len(intents) == 0 {
		t.Fatalf("query %q not classified", query)
	}
	return NewExtractor().Extract(normalized, intents[0].Span)
}

func TestExtractPackageName(t *testing.T) {
	slots := classifyAndExtract(t, "install firefox")
	if len(slots) != 1 || slots[0].Text != "firefox" {
		t.Fatalf("slots = %+v, want [firefox]", slots)
	}
}

func TestExtractBareTriggerYieldsNoSlots(t *testing.T) {
	// A query that is only a trigger word must never surface the trigger
	// itself as an entity candidate.
	slots := classifyAndExtract(t, "install")
	if len(slots) != 0 {
		t.Fatalf("slots = %+v, want none", slots)
	}
}

func TestExtractStripsFillerPhrases(t *testing.T) {
	slots := classifyAndExtract(t, "can you please install firefox for me")
	if len(slots) != 1 || slots[0].Text != "firefox" {
		t.Fatalf("slots = %+v, want [firefox]", slots)
	}
}

func TestExtractImplicitTrigger(t *testing.T) {
	slots := classifyAndExtract(t, "i need firefox")
	if len(slots) != 1 || slots[0].Text != "firefox" {
		t.Fatalf("slots = %+v, want [firefox], never [need]", slots)
	}
}

func TestExtractMultipleCandidatesOrdered(t *testing.T) {
	slots := classifyAndExtract(t, "remove vim and emacs")
	if len(slots) != 2 {
		t.Fatalf("slots = %+v, want two candidates", slots)
	}
	if slots[0].Text != "vim" || slots[1].Text != "emacs" {
		t.Fatalf("slots out of order: %+v", slots)
	}
}

func TestExtractSpansPointIntoQuery(t *testing.T) {
	normalized := Normalize("install firefox")
	c := mustClassifier(t)
	intents := c.Classify(normalized)
	slots := NewExtractor().Extract(normalized, intents[0].Span)
	if len(slots) != 1 {
		t.Fatalf("slots = %+v", slots)
	}
	span := slots[0].Span
	if normalized[span.Start:span.End] != "firefox" {
		t.Fatalf("span %+v does not cover the token", span)
	}
}
