package assets

import (
	_ "embed"
)

// DefaultKnowledgeYAML contains the embedded knowledge seed: the common
// packages and the everyday names people use for them.
//
//go:embed defaults/knowledge.yaml
var DefaultKnowledgeYAML []byte
