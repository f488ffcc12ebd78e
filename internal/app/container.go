// Package app wires application services to their infrastructure adapters.
package app

import (
	"context"

	"github.com/doeshing/nixwish/assets"
	"github.com/doeshing/nixwish/internal/application/doctor"
	"github.com/doeshing/nixwish/internal/application/pipeline"
	"github.com/doeshing/nixwish/internal/domain"
	"github.com/doeshing/nixwish/internal/infrastructure/backend"
	"github.com/doeshing/nixwish/internal/infrastructure/cache"
	"github.com/doeshing/nixwish/internal/infrastructure/config"
	"github.com/doeshing/nixwish/internal/infrastructure/knowledge"
	"github.com/doeshing/nixwish/internal/infrastructure/learning"
	"github.com/doeshing/nixwish/internal/infrastructure/nlp"
	"github.com/doeshing/nixwish/internal/infrastructure/plugin"
	"github.com/doeshing/nixwish/internal/pkg/logger"
	"github.com/doeshing/nixwish/internal/ports"
)

// Container holds the constructed dependency graph.
type Container struct {
	Pipeline     *pipeline.Service
	Doctor       *doctor.Service
	ConfigLoader *config.FileLoader
	Knowledge    ports.KnowledgeStore
	Cache        ports.CacheRepository
	Learning     ports.LearningStore
	Hooks        *plugin.Engine
	Logger       ports.Logger

	closers []func()
}

// Close releases held resources. Safe to call once at process exit.
func (c *Container) Close() {
	for _, fn := range c.closers {
		fn()
	}
}

// BuildContainer constructs the dependency graph. Degraded adapters (an
// unwritable database, say) fall back rather than aborting startup: a broken
// learning store should never stop "install firefox" from working.
func BuildContainer(ctx context.Context, verbose bool) (*Container, error) {
	cfgLoader := config.NewFileLoader("")
	cfg, err := cfgLoader.Load(ctx)
	if err != nil {
		return nil, err
	}

	c := &Container{ConfigLoader: cfgLoader}

	var log ports.Logger
	if zl, err := logger.NewZap(verbose || cfg.Preferences.Verbose); err == nil {
		log = zl
		c.closers = append(c.closers, zl.Sync)
	} else {
		log = logger.NewStd(verbose)
	}
	c.Logger = log

	c.Knowledge = buildKnowledgeStore(ctx, cfg, log, c)
	c.Learning = buildLearningStore(cfg, log, c)
	c.Cache = cache.NewFileCache(cfg.Cache.Dir, cfg.Cache)

	builtinDir := cfg.Plugins.BuiltinDir
	if builtinDir != "" {
		if err := plugin.WriteBuiltins(builtinDir, assets.BuiltinPlugins()); err != nil {
			log.Warn("builtin plugins unavailable", map[string]interface{}{
				"dir":   builtinDir,
				"error": err.Error(),
			})
			builtinDir = ""
		}
	}
	c.Hooks = plugin.NewEngine(plugin.Dirs{
		Builtin: builtinDir,
		System:  cfg.Plugins.SystemDir,
		User:    cfg.Plugins.UserDir,
	}, cfg.Plugins, log)

	selector := backend.NewSelector(log, buildTiers(cfg.Backend)...)

	classifier, err := nlp.NewClassifier(nil)
	if err != nil {
		return nil, err
	}

	c.Pipeline = &pipeline.Service{
		ConfigProvider: cfgLoader,
		Classifier:     classifier,
		Extractor:      nlp.NewExtractor(),
		Resolver:       knowledge.NewResolver(c.Knowledge, c.Learning, cfg.Knowledge, log),
		Renderer:       backend.Renderer{},
		Selector:       selector,
		Cache:          c.Cache,
		Learning:       c.Learning,
		Hooks:          c.Hooks,
		Logger:         log,
	}

	c.Doctor = &doctor.Service{
		ConfigProvider: cfgLoader,
		Knowledge:      c.Knowledge,
		Learning:       c.Learning,
		Hooks:          c.Hooks,
	}

	return c, nil
}

func buildKnowledgeStore(ctx context.Context, cfg domain.Config, log ports.Logger, c *Container) ports.KnowledgeStore {
	var store ports.KnowledgeStore
	if sqlStore, err := knowledge.NewSQLiteStore(cfg.Knowledge.DBPath); err == nil {
		store = sqlStore
		c.closers = append(c.closers, func() { _ = sqlStore.Close() })
	} else {
		log.Warn("knowledge database unavailable, using in-memory store", map[string]interface{}{
			"path":  cfg.Knowledge.DBPath,
			"error": err.Error(),
		})
		store = knowledge.NewMemoryStore()
	}

	if err := knowledge.Seed(ctx, store, assets.DefaultKnowledgeYAML); err != nil {
		log.Warn("embedded knowledge seed failed", map[string]interface{}{"error": err.Error()})
	}
	if cfg.Knowledge.SeedFile != "" {
		if err := knowledge.SeedFromFile(ctx, store, cfg.Knowledge.SeedFile); err != nil {
			log.Warn("user knowledge seed failed", map[string]interface{}{
				"path":  cfg.Knowledge.SeedFile,
				"error": err.Error(),
			})
		}
	}
	return store
}

func buildLearningStore(cfg domain.Config, log ports.Logger, c *Container) ports.LearningStore {
	store, err := learning.NewSQLiteStore(cfg.Learning.DBPath)
	if err != nil {
		log.Warn("learning database unavailable, learning disabled", map[string]interface{}{
			"path":  cfg.Learning.DBPath,
			"error": err.Error(),
		})
		return nil
	}
	c.closers = append(c.closers, func() { _ = store.Close() })
	return store
}

// buildTiers assembles the fallback chain in order. Disabled tiers drop out;
// the manual tier stays regardless so the chain always terminates.
func buildTiers(cfg domain.BackendSettings) []ports.Backend {
	disabled := make(map[domain.TierID]bool, len(cfg.DisabledTiers))
	for _, id := range cfg.DisabledTiers {
		disabled[domain.TierID(id)] = true
	}

	var tiers []ports.Backend
	if !disabled[domain.TierNative] {
		tiers = append(tiers, backend.NewNative(cfg))
	}
	if !disabled[domain.TierModern] {
		tiers = append(tiers, backend.NewModernCLI())
	}
	if !disabled[domain.TierLegacy] {
		tiers = append(tiers, backend.NewLegacyCLI())
	}
	tiers = append(tiers, backend.NewManual())
	return tiers
}
