package backend

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/doeshing/nixwish/internal/domain"
	"github.com/doeshing/nixwish/internal/ports"
)

const (
	defaultStoreDB    = "/nix/var/nix/db/db.sqlite"
	defaultProfileDir = "/nix/var/nix/profiles"
)

// Native is the in-process tier. It answers read-only operations straight
// from the Nix store database and the profile directory, with no subprocess:
// fastest path, most detailed errors. Mutations and search are not reachable
// in-process and report unavailable so the selector falls through.
type Native struct {
	storeDB    string
	profileDir string
}

// NewNative builds the native tier; empty paths use the system defaults.
func NewNative(cfg domain.BackendSettings) *Native {
	storeDB := cfg.StoreDBPath
	if storeDB == "" {
		storeDB = defaultStoreDB
	}
	profileDir := cfg.ProfileDir
	if profileDir == "" {
		profileDir = defaultProfileDir
	}
	return &Native{storeDB: storeDB, profileDir: profileDir}
}

// ID implements ports.Backend.
func (n *Native) ID() domain.TierID { return domain.TierNative }

// Run implements ports.Backend.
func (n *Native) Run(ctx context.Context, plan domain.CommandPlan) (domain.ExecutionResult, error) {
	start := time.Now()
	var output string
	var err error
	switch plan.Operation {
	case domain.OpStatus:
		output, err = n.storeStatus(ctx)
	case domain.OpListInstalled:
		output, err = n.listInstalled()
	case domain.OpListGenerations:
		output, err = n.listGenerations()
	default:
		return domain.ExecutionResult{}, &domain.UnavailableError{
			Tier:   n.ID(),
			Reason: fmt.Sprintf("%s is not reachable in-process", plan.Operation),
		}
	}
	if err != nil {
		return domain.ExecutionResult{}, err
	}
	return domain.ExecutionResult{
		Tier:       n.ID(),
		Ran:        true,
		Output:     output,
		Duration:   time.Since(start),
		FinishedAt: time.Now(),
	}, nil
}

// storeStatus reads aggregate statistics from the store database. The
// database is opened read-only and immutable so a running nix daemon is never
// disturbed.
func (n *Native) storeStatus(ctx context.Context) (string, error) {
	if _, err := os.Stat(n.storeDB); err != nil {
		return "", &domain.UnavailableError{Tier: n.ID(), Reason: "store database unreadable", Err: err}
	}
	dsn := fmt.Sprintf("file:%s?mode=ro&immutable=1", n.storeDB)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return "", &domain.UnavailableError{Tier: n.ID(), Reason: "store database open failed", Err: err}
	}
	defer db.Close()

	var paths int64
	var size sql.NullInt64
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*), SUM(narSize) FROM ValidPaths`).Scan(&paths, &size); err != nil {
		return "", &domain.UnavailableError{Tier: n.ID(), Reason: "store database query failed", Err: err}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "store: %s\n", filepath.Dir(filepath.Dir(n.storeDB)))
	fmt.Fprintf(&b, "valid paths: %d\n", paths)
	if size.Valid {
		fmt.Fprintf(&b, "store size: %d bytes\n", size.Int64)
	}
	return b.String(), nil
}

// profileManifest mirrors the elements of a profile manifest.json.
type profileManifest struct {
	Elements json.RawMessage `json:"elements"`
}

type manifestElement struct {
	AttrPath   string   `json:"attrPath"`
	StorePaths []string `json:"storePaths"`
}

// listInstalled parses the active profile's manifest.json.
func (n *Native) listInstalled() (string, error) {
	manifestPath := filepath.Join(n.profileDir, "profile", "manifest.json")
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return "", &domain.UnavailableError{Tier: n.ID(), Reason: "profile manifest unreadable", Err: err}
	}
	var manifest profileManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return "", &domain.UnavailableError{Tier: n.ID(), Reason: "profile manifest unparsable", Err: err}
	}

	// The manifest schema changed between versions: elements is a list in
	// version 2 and a name-keyed object in version 3.
	names := elementNames(manifest.Elements)
	if len(names) == 0 {
		return "no packages installed in profile\n", nil
	}
	sort.Strings(names)
	return strings.Join(names, "\n") + "\n", nil
}

func elementNames(raw json.RawMessage) []string {
	var asList []manifestElement
	if err := json.Unmarshal(raw, &asList); err == nil {
		var names []string
		for _, e := range asList {
			if e.AttrPath != "" {
				names = append(names, e.AttrPath)
			} else if len(e.StorePaths) > 0 {
				names = append(names, filepath.Base(e.StorePaths[0]))
			}
		}
		return names
	}
	var asMap map[string]manifestElement
	if err := json.Unmarshal(raw, &asMap); err == nil {
		names := make([]string, 0, len(asMap))
		for name := range asMap {
			names = append(names, name)
		}
		return names
	}
	return nil
}

var generationLink = regexp.MustCompile(`^(.+)-(\d+)-link$`)

// listGenerations scans the profile directory for generation symlinks.
func (n *Native) listGenerations() (string, error) {
	entries, err := os.ReadDir(n.profileDir)
	if err != nil {
		return "", &domain.UnavailableError{Tier: n.ID(), Reason: "profile directory unreadable", Err: err}
	}

	type generation struct {
		number int
		mod    time.Time
	}
	var generations []generation
	for _, e := range entries {
		m := generationLink.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		num, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		generations = append(generations, generation{number: num, mod: info.ModTime()})
	}
	if len(generations) == 0 {
		return "", &domain.UnavailableError{Tier: n.ID(), Reason: "no generation links found"}
	}
	sort.Slice(generations, func(i, j int) bool { return generations[i].number < generations[j].number })

	var b strings.Builder
	for _, g := range generations {
		fmt.Fprintf(&b, "generation %d  %s\n", g.number, g.mod.Format(domain.TimestampFormat))
	}
	return b.String(), nil
}

var _ ports.Backend = (*Native)(nil)
