package knowledge

import (
	"context"
	"fmt"
	"sort"

	"github.com/sahilm/fuzzy"

	"github.com/doeshing/nixwish/internal/domain"
	"github.com/doeshing/nixwish/internal/ports"
)

const (
	// ambiguityMargin is the score distance under which two fuzzy candidates
	// count as comparably close.
	ambiguityMargin = 15
	// resolveScore is the minimum fuzzy score that can resolve on its own.
	// Matches between the similarity threshold and this score are only ever
	// offered as suggestions.
	resolveScore = 60
)

// Resolver maps raw slot strings to canonical entries: exact name, then alias
// table, then category, then bounded fuzzy search. Ambiguity between
// comparably close candidates is broken by the caller's learning history
// before it is surfaced as a disambiguation request.
type Resolver struct {
	Store ports.KnowledgeStore
	// Learning may be nil; resolution then runs without bias.
	Learning      ports.LearningStore
	Threshold     int
	MaxCandidates int
	Logger        ports.Logger
}

// NewResolver builds a resolver with config-supplied bounds.
func NewResolver(store ports.KnowledgeStore, learning ports.LearningStore, cfg domain.KnowledgeSettings, log ports.Logger) *Resolver {
	threshold := cfg.FuzzyThreshold
	if threshold <= 0 {
		threshold = domain.DefaultFuzzyThreshold
	}
	maxCandidates := cfg.MaxCandidates
	if maxCandidates <= 0 {
		maxCandidates = domain.DefaultMaxCandidates
	}
	return &Resolver{
		Store:         store,
		Learning:      learning,
		Threshold:     threshold,
		MaxCandidates: maxCandidates,
		Logger:        log,
	}
}

// Resolve implements ports.KnowledgeResolver.
func (r *Resolver) Resolve(ctx context.Context, slot, caller string) (domain.Resolution, error) {
	if entry, ok, err := r.Store.Get(ctx, slot); err != nil {
		return domain.Resolution{}, fmt.Errorf("knowledge get: %w", err)
	} else if ok {
		return domain.Resolution{Slot: slot, Entry: entry, Method: domain.ResolvedExact, Score: 100}, nil
	}

	if entry, ok, err := r.Store.ByAlias(ctx, slot); err != nil {
		return domain.Resolution{}, fmt.Errorf("knowledge alias: %w", err)
	} else if ok {
		return domain.Resolution{Slot: slot, Entry: entry, Method: domain.ResolvedAlias, Score: 100}, nil
	}

	entries, err := r.Store.All(ctx)
	if err != nil {
		return domain.Resolution{}, fmt.Errorf("knowledge list: %w", err)
	}

	// A slot naming a whole category ("editor") is a disambiguation request
	// across exactly that category, unless only one entry carries it.
	if byCategory := entriesInCategory(entries, slot); len(byCategory) == 1 {
		return domain.Resolution{Slot: slot, Entry: byCategory[0], Method: domain.ResolvedFuzzy, Score: 100}, nil
	} else if len(byCategory) > 1 {
		return r.disambiguate(slot, caller, byCategory)
	}

	candidates := r.fuzzyCandidates(slot, entries)
	if len(candidates) == 0 {
		return domain.Resolution{}, &domain.NotFoundError{Slot: slot}
	}
	if candidates[0].score < resolveScore {
		names := make([]string, len(candidates))
		for i, c := range candidates {
			names[i] = c.entry.Name
		}
		return domain.Resolution{}, &domain.NotFoundError{Slot: slot, Suggestions: names}
	}

	if len(candidates) == 1 || candidates[0].score-candidates[1].score >= ambiguityMargin {
		return domain.Resolution{Slot: slot, Entry: candidates[0].entry, Method: domain.ResolvedFuzzy, Score: candidates[0].score}, nil
	}

	entriesOnly := make([]domain.KnowledgeEntry, len(candidates))
	for i, c := range candidates {
		entriesOnly[i] = c.entry
	}
	return r.disambiguate(slot, caller, entriesOnly)
}

type scored struct {
	entry domain.KnowledgeEntry
	score int
}

func (r *Resolver) fuzzyCandidates(slot string, entries []domain.KnowledgeEntry) []scored {
	// The haystack holds every name and alias; indexes map back to entries.
	var haystack []string
	var owner []int
	for i, e := range entries {
		haystack = append(haystack, e.Name)
		owner = append(owner, i)
		for _, a := range e.Aliases {
			haystack = append(haystack, a)
			owner = append(owner, i)
		}
	}

	best := make(map[string]scored)
	for _, m := range fuzzy.Find(slot, haystack) {
		if m.Score < r.Threshold {
			continue
		}
		e := entries[owner[m.Index]]
		if prev, ok := best[e.Name]; !ok || m.Score > prev.score {
			best[e.Name] = scored{entry: e, score: m.Score}
		}
	}

	out := make([]scored, 0, len(best))
	for _, s := range best {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].score != out[j].score {
			return out[i].score > out[j].score
		}
		return out[i].entry.Name < out[j].entry.Name
	})
	if len(out) > r.MaxCandidates {
		out = out[:r.MaxCandidates]
	}
	return out
}

// disambiguate applies the learning-log bias: if the caller previously chose
// one of the candidates for this exact slot text strictly more often than any
// other, that entry wins outright. Otherwise the candidate list is returned,
// ordered by bias so front-ends present the likeliest choice first.
func (r *Resolver) disambiguate(slot, caller string, candidates []domain.KnowledgeEntry) (domain.Resolution, error) {
	bias := map[string]int{}
	if r.Learning != nil {
		var err error
		if bias, err = r.Learning.Bias(caller, slot); err != nil {
			if r.Logger != nil {
				r.Logger.Warn("learning bias unavailable", map[string]interface{}{"error": err.Error()})
			}
			bias = map[string]int{}
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return bias[candidates[i].Name] > bias[candidates[j].Name]
	})
	if len(candidates) > 1 && bias[candidates[0].Name] > bias[candidates[1].Name] {
		// History decides; the pipeline is not silently picking, the caller did.
		return domain.Resolution{Slot: slot, Entry: candidates[0], Method: domain.ResolvedFuzzy, Score: 100}, nil
	}
	return domain.Resolution{}, &domain.DisambiguationError{Slot: slot, Candidates: candidates}
}

func entriesInCategory(entries []domain.KnowledgeEntry, category string) []domain.KnowledgeEntry {
	var out []domain.KnowledgeEntry
	for _, e := range entries {
		if e.Category == category {
			out = append(out, e)
		}
	}
	return out
}

var _ ports.KnowledgeResolver = (*Resolver)(nil)
