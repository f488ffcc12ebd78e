package knowledge

import (
	"context"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/doeshing/nixwish/internal/domain"
	"github.com/doeshing/nixwish/internal/ports"
)

type seedFile struct {
	Entries []domain.KnowledgeEntry `yaml:"entries"`
}

// Seed loads entries into the store. Existing entries with the same canonical
// name are superseded. It is called with the embedded defaults at startup and
// again with the user seed file when one is configured.
func Seed(ctx context.Context, store ports.KnowledgeStore, data []byte) error {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return err
	}
	for _, entry := range f.Entries {
		if entry.Name == "" {
			continue
		}
		if err := store.Upsert(ctx, entry); err != nil {
			return err
		}
	}
	return nil
}

// SeedFromFile loads a user-maintained YAML seed. A missing file is not an
// error; the embedded defaults already cover the common cases.
func SeedFromFile(ctx context.Context, store ports.KnowledgeStore, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return Seed(ctx, store, data)
}
