package domain

// Config mirrors ~/.nixwish/config.yaml.
type Config struct {
	ConfigFormatVersion string            `yaml:"config_format_version"`
	Preferences         Preferences       `yaml:"preferences"`
	Knowledge           KnowledgeSettings `yaml:"knowledge"`
	Cache               CacheSettings     `yaml:"cache"`
	Learning            LearningSettings  `yaml:"learning"`
	Plugins             PluginSettings    `yaml:"plugins"`
	Backend             BackendSettings   `yaml:"backend"`
}

// Preferences captures user-level toggles.
type Preferences struct {
	// DefaultDryRun previews mutating operations unless --execute is given.
	DefaultDryRun bool `yaml:"default_dry_run"`
	// AutoExecuteSafe lets read-only plans run without an explicit --execute.
	AutoExecuteSafe bool `yaml:"auto_execute_safe"`
	// TimeoutSeconds bounds a whole request unless overridden per call.
	TimeoutSeconds int  `yaml:"timeout"`
	Verbose        bool `yaml:"verbose"`
}

// KnowledgeSettings locates the knowledge store and its seed data.
type KnowledgeSettings struct {
	DBPath string `yaml:"db_path"`
	// SeedFile supplements the embedded defaults with user entries.
	SeedFile       string `yaml:"seed_file"`
	FuzzyThreshold int    `yaml:"fuzzy_threshold"`
	MaxCandidates  int    `yaml:"max_candidates"`
}

// CacheSettings controls the safe-operation result cache.
type CacheSettings struct {
	Dir        string `yaml:"dir"`
	MaxEntries int    `yaml:"max_entries"`
	// TTLSeconds is keyed by operation kind; missing kinds use Default.
	TTLSeconds        map[string]int `yaml:"ttl_seconds"`
	DefaultTTLSeconds int            `yaml:"default_ttl_seconds"`
}

// LearningSettings locates the append-only learning log.
type LearningSettings struct {
	DBPath string `yaml:"db_path"`
}

// PluginSettings controls discovery sources and the sandbox.
type PluginSettings struct {
	// BuiltinDir is where the plugins shipped with the binary are written.
	BuiltinDir     string   `yaml:"builtin_dir"`
	UserDir        string   `yaml:"user_dir"`
	SystemDir      string   `yaml:"system_dir"`
	Enabled        []string `yaml:"enabled"`
	BudgetSeconds  int      `yaml:"budget_seconds"`
	ScratchBaseDir string   `yaml:"scratch_base_dir"`
}

// BackendSettings configures the execution tier chain.
type BackendSettings struct {
	// DisabledTiers removes tiers from the fallback chain by id.
	DisabledTiers []string `yaml:"disabled_tiers"`
	NixBinary     string   `yaml:"nix_binary"`
	LegacyBinary  string   `yaml:"legacy_binary"`
	// StoreDBPath is the Nix store database read by the native tier.
	StoreDBPath string `yaml:"store_db_path"`
	ProfileDir  string `yaml:"profile_dir"`
}
