// Package nlp implements the pattern-based intent classifier and the slot
// extractor. Classification is deterministic: no model calls, no network.
package nlp

import (
	"regexp"
	"sort"
	"strings"

	"github.com/doeshing/nixwish/internal/domain"
	"github.com/doeshing/nixwish/internal/ports"
)

// Classifier scores a normalized query against the registered patterns.
type Classifier struct {
	patterns []Pattern
}

// NewClassifier compiles the given patterns, preserving registration order.
// A nil slice registers the default pattern set.
func NewClassifier(patterns []Pattern) (*Classifier, error) {
	if patterns == nil {
		patterns = DefaultPatterns()
	}
	compiled := make([]Pattern, 0, len(patterns))
	for i, p := range patterns {
		re, err := regexp.Compile(p.Expr)
		if err != nil {
			return nil, err
		}
		p.re = re
		p.order = i
		compiled = append(compiled, p)
	}
	return &Classifier{patterns: compiled}, nil
}

// Classify returns every matching intent ranked best-first. Overlapping
// matches resolve by longest matched span, then explicit verbs over implicit
// phrasing, then registration order. An empty slice means unrecognized.
func (c *Classifier) Classify(normalized string) []domain.Intent {
	type match struct {
		intent  domain.Intent
		spanLen int
		verb    bool
		order   int
	}

	var matches []match
	for _, p := range c.patterns {
		loc := p.re.FindStringIndex(normalized)
		if loc == nil {
			continue
		}
		spanLen := loc[1] - loc[0]
		matches = append(matches, match{
			intent: domain.Intent{
				Kind:      p.Kind,
				PatternID: p.ID,
				Span:      domain.SourceSpan{Start: loc[0], End: loc[1]},
			},
			spanLen: spanLen,
			verb:    p.ExplicitVerb,
			order:   p.order,
		})
	}
	if len(matches) == 0 {
		return nil
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].spanLen != matches[j].spanLen {
			return matches[i].spanLen > matches[j].spanLen
		}
		if matches[i].verb != matches[j].verb {
			return matches[i].verb
		}
		return matches[i].order < matches[j].order
	})

	out := make([]domain.Intent, 0, len(matches))
	seen := make(map[domain.IntentKind]bool, len(matches))
	for rank, m := range matches {
		if seen[m.intent.Kind] {
			continue
		}
		seen[m.intent.Kind] = true
		m.intent.Confidence = confidence(m.spanLen, len(normalized), m.verb, rank)
		out = append(out, m.intent)
	}
	return out
}

// Verbs returns the distinct explicit action verbs, for suggestion rendering
// when nothing matched.
func (c *Classifier) Verbs() []string {
	seen := make(map[string]bool)
	var verbs []string
	for _, p := range c.patterns {
		if !p.ExplicitVerb {
			continue
		}
		v := string(p.Kind)
		if !seen[v] {
			seen[v] = true
			verbs = append(verbs, strings.ReplaceAll(v, "_", " "))
		}
	}
	return verbs
}

func confidence(spanLen, queryLen int, verb bool, rank int) float64 {
	if queryLen == 0 {
		return 0
	}
	score := 0.5 + 0.4*float64(spanLen)/float64(queryLen)
	if verb {
		score += 0.1
	}
	// Lower-ranked alternates decay so callers can threshold on the top one.
	score -= 0.05 * float64(rank)
	if score > 1 {
		score = 1
	}
	if score < 0.05 {
		score = 0.05
	}
	return score
}

var _ ports.IntentClassifier = (*Classifier)(nil)
