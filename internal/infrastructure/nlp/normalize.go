package nlp

import "github.com/doeshing/nixwish/internal/domain"

// Normalize is the canonical query normalization. Classification, extraction
// and cache keys all operate on this form.
func Normalize(raw string) string {
	return domain.Normalize(raw)
}
