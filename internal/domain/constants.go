package domain

import "time"

// File permission constants
const (
	// DirectoryPermissions is the default permission for directories (rwxr-xr-x)
	DirectoryPermissions = 0o755
	// SecureFilePermissions is the permission for sensitive files (rw-------)
	SecureFilePermissions = 0o600
)

// Timeout and duration constants
const (
	// DefaultCommandTimeout bounds a single tier invocation
	DefaultCommandTimeout = 120 * time.Second
	// DefaultQueryTimeout bounds a whole pipeline run
	DefaultQueryTimeout = 5 * time.Minute
)

// Limit constants
const (
	// DefaultMaxCacheEntries is the maximum number of cache entries
	DefaultMaxCacheEntries = 200
	// DefaultFuzzyThreshold is the minimum fuzzy score treated as a suggestion
	DefaultFuzzyThreshold = 20
	// DefaultMaxCandidates bounds fuzzy resolution results
	DefaultMaxCandidates = 5
	// DefaultLearningLimit is the default number of learning records to display
	DefaultLearningLimit = 20
)

// Time formats
const (
	// TimestampFormat is the standard timestamp format
	TimestampFormat = time.RFC3339
)
