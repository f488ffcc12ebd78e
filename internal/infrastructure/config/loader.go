// Package config loads YAML configuration from ~/.nixwish/config.yaml
// (overridable via NIXWISH_CONFIG). A missing file is not an error: the
// defaults are written out on first run so users have something to edit.
package config

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/doeshing/nixwish/internal/domain"
	"github.com/doeshing/nixwish/internal/pkg/filesystem"
	"github.com/doeshing/nixwish/internal/ports"
)

// FileLoader loads YAML configuration from disk.
type FileLoader struct {
	overridePath string
}

// NewFileLoader builds a new loader. An empty path means the default
// location.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{overridePath: path}
}

// Load implements ports.ConfigProvider.
func (l *FileLoader) Load(context.Context) (domain.Config, error) {
	path := l.resolvePath()
	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return domain.Config{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := defaultConfig()
			if err := writeDefault(path, cfg); err != nil {
				return domain.Config{}, err
			}
			return cfg, nil
		}
		return domain.Config{}, err
	}

	var cfg domain.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.Config{}, err
	}
	return hydrateDefaults(cfg), nil
}

func (l *FileLoader) resolvePath() string {
	if l.overridePath != "" {
		return expandPath(l.overridePath)
	}
	if custom := os.Getenv("NIXWISH_CONFIG"); custom != "" {
		return expandPath(custom)
	}
	return filepath.Join(stateDir(), "config.yaml")
}

func writeDefault(path string, cfg domain.Config) error {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, domain.SecureFilePermissions)
}

func defaultConfig() domain.Config {
	dir := stateDir()
	return domain.Config{
		ConfigFormatVersion: "1",
		Preferences: domain.Preferences{
			DefaultDryRun:   true,
			AutoExecuteSafe: true,
			TimeoutSeconds:  int(domain.DefaultQueryTimeout.Seconds()),
		},
		Knowledge: domain.KnowledgeSettings{
			DBPath:         filepath.Join(dir, "knowledge.db"),
			SeedFile:       filepath.Join(dir, "knowledge.yaml"),
			FuzzyThreshold: domain.DefaultFuzzyThreshold,
			MaxCandidates:  domain.DefaultMaxCandidates,
		},
		Cache: domain.CacheSettings{
			Dir:        filepath.Join(dir, "cache"),
			MaxEntries: domain.DefaultMaxCacheEntries,
			TTLSeconds: map[string]int{
				string(domain.IntentSearch):          24 * 60 * 60,
				string(domain.IntentStatus):          60,
				string(domain.IntentListInstalled):   5 * 60,
				string(domain.IntentListGenerations): 5 * 60,
			},
			DefaultTTLSeconds: 60 * 60,
		},
		Learning: domain.LearningSettings{
			DBPath: filepath.Join(dir, "learning.db"),
		},
		Plugins: domain.PluginSettings{
			BuiltinDir:     filepath.Join(dir, "builtin-plugins"),
			UserDir:        filepath.Join(dir, "plugins"),
			SystemDir:      "/etc/nixwish/plugins",
			Enabled:        []string{"diskspace"},
			BudgetSeconds:  2,
			ScratchBaseDir: filepath.Join(dir, "scratch"),
		},
	}
}

// hydrateDefaults fills zero values so hand-edited configs keep working when
// new settings appear.
func hydrateDefaults(cfg domain.Config) domain.Config {
	def := defaultConfig()
	if cfg.ConfigFormatVersion == "" {
		cfg.ConfigFormatVersion = def.ConfigFormatVersion
	}
	if cfg.Preferences.TimeoutSeconds == 0 {
		cfg.Preferences.TimeoutSeconds = def.Preferences.TimeoutSeconds
	}
	if cfg.Knowledge.DBPath == "" {
		cfg.Knowledge.DBPath = def.Knowledge.DBPath
	}
	if cfg.Knowledge.FuzzyThreshold == 0 {
		cfg.Knowledge.FuzzyThreshold = def.Knowledge.FuzzyThreshold
	}
	if cfg.Knowledge.MaxCandidates == 0 {
		cfg.Knowledge.MaxCandidates = def.Knowledge.MaxCandidates
	}
	if cfg.Cache.Dir == "" {
		cfg.Cache.Dir = def.Cache.Dir
	}
	if cfg.Cache.MaxEntries == 0 {
		cfg.Cache.MaxEntries = def.Cache.MaxEntries
	}
	if cfg.Cache.DefaultTTLSeconds == 0 {
		cfg.Cache.DefaultTTLSeconds = def.Cache.DefaultTTLSeconds
	}
	if cfg.Learning.DBPath == "" {
		cfg.Learning.DBPath = def.Learning.DBPath
	}
	if cfg.Plugins.BuiltinDir == "" {
		cfg.Plugins.BuiltinDir = def.Plugins.BuiltinDir
	}
	if cfg.Plugins.UserDir == "" {
		cfg.Plugins.UserDir = def.Plugins.UserDir
	}
	if cfg.Plugins.BudgetSeconds == 0 {
		cfg.Plugins.BudgetSeconds = def.Plugins.BudgetSeconds
	}
	if cfg.Plugins.ScratchBaseDir == "" {
		cfg.Plugins.ScratchBaseDir = def.Plugins.ScratchBaseDir
	}
	return cfg
}

func expandPath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if len(path) > 1 && path[:2] == "~/" {
		return filepath.Join(filesystem.UserHomeDir(), path[2:])
	}
	return filepath.Clean(path)
}

func stateDir() string {
	return filepath.Join(filesystem.UserHomeDir(), ".nixwish")
}

var _ ports.ConfigProvider = (*FileLoader)(nil)
