package domain

// KnowledgeEntry is a canonical record mapping names, aliases and a description
// to a resolvable package target. Entries are loaded at startup and only
// superseded, never deleted mid-session.
type KnowledgeEntry struct {
	Name        string   `yaml:"name" json:"name"`
	Aliases     []string `yaml:"aliases" json:"aliases,omitempty"`
	Description string   `yaml:"description" json:"description,omitempty"`
	Category    string   `yaml:"category" json:"category,omitempty"`
}

// ResolutionMethod records how a slot string reached an entry.
type ResolutionMethod string

const (
	ResolvedExact ResolutionMethod = "exact"
	ResolvedAlias ResolutionMethod = "alias"
	ResolvedFuzzy ResolutionMethod = "fuzzy"
)

// Resolution is the outcome of resolving one slot string.
type Resolution struct {
	Slot   string
	Entry  KnowledgeEntry
	Method ResolutionMethod
	Score  int
}
