package nlp

import (
	"regexp"
	"strings"

	"github.com/doeshing/nixwish/internal/domain"
	"github.com/doeshing/nixwish/internal/ports"
)

// fillerPhrases are stripped from the remainder before tokenizing. Bounded so
// "for me" never bites into "for merge".
var fillerPhrases = []*regexp.Regexp{
	regexp.MustCompile(`\b(?:can|could|would|will) you\b`),
	regexp.MustCompile(`\b(?:for|to) me\b`),
	regexp.MustCompile(`\bi (?:need|want|would like)\b`),
	regexp.MustCompile(`\bright now\b`),
}

// fillerWords are dropped token-by-token after phrase removal.
var fillerWords = map[string]bool{
	"a": true, "an": true, "the": true, "my": true, "me": true,
	"some": true, "to": true, "for": true, "of": true, "on": true,
	"it": true, "that": true, "this": true, "you": true, "i": true, "and": true,
	"please": true, "kindly": true, "anymore": true, "now": true,
	"package": true, "program": true, "app": true, "application": true,
}

// Extractor isolates entity text once the classifier has located the trigger.
type Extractor struct{}

// NewExtractor returns a slot extractor with the default filler set.
func NewExtractor() *Extractor { return &Extractor{} }

// Extract removes the trigger span and filler tokens from the normalized
// query and returns the remaining tokens as ordered entity candidates. A
// query consisting only of a trigger yields zero slots; the trigger text
// itself is never a candidate.
func (e *Extractor) Extract(normalized string, trigger domain.SourceSpan) []domain.Slot {
	if trigger.Start < 0 || trigger.End > len(normalized) || trigger.Start > trigger.End {
		return nil
	}
	before := normalized[:trigger.Start]
	after := normalized[trigger.End:]
	remainder := strings.TrimSpace(before + " " + after)
	if remainder == "" {
		return nil
	}

	for _, phrase := range fillerPhrases {
		remainder = phrase.ReplaceAllString(remainder, " ")
	}

	var slots []domain.Slot
	offset := 0
	for _, tok := range strings.Fields(remainder) {
		tok = strings.Trim(tok, `"'?.,!`)
		if tok == "" || fillerWords[tok] {
			continue
		}
		// Positions are recovered from the original query so spans survive
		// the phrase stripping above.
		start := strings.Index(normalized[offset:], tok)
		span := domain.SourceSpan{}
		if start >= 0 {
			span = domain.SourceSpan{Start: offset + start, End: offset + start + len(tok)}
			offset += start + len(tok)
		}
		slots = append(slots, domain.Slot{Text: tok, Span: span})
	}
	return slots
}

var _ ports.SlotExtractor = (*Extractor)(nil)
