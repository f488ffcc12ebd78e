package knowledge

import (
	"context"
	"errors"
	"testing"

	"github.com/doeshing/nixwish/internal/domain"
)

func testEntries() []domain.KnowledgeEntry {
	return []domain.KnowledgeEntry{
		{Name: "firefox", Aliases: []string{"browser", "ff"}, Description: "Mozilla Firefox web browser", Category: "web"},
		{Name: "vim", Aliases: []string{"vi"}, Description: "Vim text editor", Category: "editor"},
		{Name: "emacs", Description: "GNU Emacs editor", Category: "editor"},
		{Name: "neovim", Aliases: []string{"nvim"}, Description: "Neovim text editor", Category: "editor"},
	}
}

func newTestResolver(learning *stubLearning) *Resolver {
	return NewResolver(NewMemoryStore(testEntries()...), learning, domain.KnowledgeSettings{}, nil)
}

func TestResolveExactName(t *testing.T) {
	r := newTestResolver(nil)

	res, err := r.Resolve(context.Background(), "firefox", "cli")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if res.Entry.Name != "firefox" || res.Method != domain.ResolvedExact {
		t.Fatalf("Resolve() = %+v, want exact firefox", res)
	}
}

func TestResolveAliasIsDeterministic(t *testing.T) {
	r := newTestResolver(nil)

	for n := 0; n < 5; n++ {
		res, err := r.Resolve(context.Background(), "browser", "cli")
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if res.Entry.Name != "firefox" || res.Method != domain.ResolvedAlias {
			t.Fatalf("alias resolution drifted: %+v", res)
		}
	}
}

func TestResolveCategoryListsAllCandidates(t *testing.T) {
	r := newTestResolver(nil)

	_, err := r.Resolve(context.Background(), "editor", "cli")
	var disambiguation *domain.DisambiguationError
	if !errors.As(err, &disambiguation) {
		t.Fatalf("Resolve(editor) error = %v, want DisambiguationError", err)
	}
	if len(disambiguation.Candidates) != 3 {
		t.Fatalf("candidates = %+v, want exactly the three editors", disambiguation.Candidates)
	}
	names := map[string]bool{}
	for _, c := range disambiguation.Candidates {
		names[c.Name] = true
	}
	for _, want := range []string{"vim", "emacs", "neovim"} {
		if !names[want] {
			t.Fatalf("candidate %s missing from %v", want, names)
		}
	}
}

func TestResolveNothingMatches(t *testing.T) {
	r := newTestResolver(nil)

	_, err := r.Resolve(context.Background(), "xyz123notapackage", "cli")
	var notFound *domain.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("Resolve() error = %v, want NotFoundError", err)
	}
	if len(notFound.Suggestions) != 0 {
		t.Fatalf("suggestions = %v, want empty: nothing is within the similarity threshold", notFound.Suggestions)
	}
}

func TestResolveTypoFuzzyAutoResolves(t *testing.T) {
	r := newTestResolver(nil)

	res, err := r.Resolve(context.Background(), "firefx", "cli")
	if err != nil {
		t.Fatalf("Resolve() error = %v, want a close typo to resolve outright", err)
	}
	if res.Entry.Name != "firefox" || res.Method != domain.ResolvedFuzzy {
		t.Fatalf("Resolve() = %+v, want fuzzy firefox", res)
	}
	if res.Score < resolveScore {
		t.Fatalf("Score = %d, below the auto-resolve floor %d", res.Score, resolveScore)
	}
}

func TestResolveWeakMatchOnlySuggests(t *testing.T) {
	r := newTestResolver(nil)

	// "fir" is similar enough to firefox to mention, not enough to pick.
	_, err := r.Resolve(context.Background(), "fir", "cli")
	var notFound *domain.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("Resolve() error = %v, want NotFoundError", err)
	}
	if len(notFound.Suggestions) != 1 || notFound.Suggestions[0] != "firefox" {
		t.Fatalf("suggestions = %v, want [firefox]", notFound.Suggestions)
	}
}

func TestResolveAmbiguityBrokenByLearningHistory(t *testing.T) {
	learning := &stubLearning{bias: map[string]int{"neovim": 3, "vim": 1}}
	r := newTestResolver(learning)

	res, err := r.Resolve(context.Background(), "editor", "cli")
	if err != nil {
		t.Fatalf("Resolve() error = %v, want history to decide", err)
	}
	if res.Entry.Name != "neovim" {
		t.Fatalf("Resolve() = %+v, want the previously-chosen neovim", res)
	}
}

func TestResolveBiasTieStillDisambiguates(t *testing.T) {
	learning := &stubLearning{bias: map[string]int{"vim": 2, "neovim": 2}}
	r := newTestResolver(learning)

	_, err := r.Resolve(context.Background(), "editor", "cli")
	var disambiguation *domain.DisambiguationError
	if !errors.As(err, &disambiguation) {
		t.Fatalf("Resolve() error = %v, want DisambiguationError on tied history", err)
	}
}

type stubLearning struct {
	bias    map[string]int
	records []domain.LearningRecord
}

func (s *stubLearning) Append(record domain.LearningRecord) error {
	s.records = append(s.records, record)
	return nil
}

func (s *stubLearning) Bias(string, string) (map[string]int, error) {
	if s == nil || s.bias == nil {
		return map[string]int{}, nil
	}
	return s.bias, nil
}

func (s *stubLearning) Records(int) ([]domain.LearningRecord, error) {
	return s.records, nil
}
