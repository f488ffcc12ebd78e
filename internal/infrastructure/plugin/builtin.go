package plugin

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/doeshing/nixwish/internal/domain"
)

// WriteBuiltins materializes the plugins shipped with the binary under dir,
// so they go through the same directory scan as system and user plugins.
// Existing files are overwritten; builtins always match the running binary.
func WriteBuiltins(dir string, src fs.FS) error {
	return fs.WalkDir(src, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		target := filepath.Join(dir, path)
		if d.IsDir() {
			return os.MkdirAll(target, domain.DirectoryPermissions)
		}
		data, err := fs.ReadFile(src, path)
		if err != nil {
			return err
		}
		return os.WriteFile(target, data, 0o644)
	})
}
