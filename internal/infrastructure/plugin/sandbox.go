package plugin

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"github.com/doeshing/nixwish/internal/domain"
)

// baseAllowedImports is the stdlib subset hook scripts may import. Anything
// touching the filesystem, processes or the network is absent; plugins reach
// outside only through declared capabilities.
var baseAllowedImports = map[string]bool{
	"strings":         true,
	"strconv":         true,
	"fmt":             true,
	"math":            true,
	"regexp":          true,
	"encoding/json":   true,
	"encoding/base64": true,
	"time":            true,
	"sort":            true,
	"bytes":           true,
	"errors":          true,
	"unicode":         true,
}

// networkImports is additionally allowed when the network capability is
// declared in the manifest.
var networkImports = map[string]bool{
	"net":      true,
	"net/http": true,
	"net/url":  true,
	"io":       true,
}

// handleFunc is the single entry point every hook script must define:
//
//	func Handle(stage, payload string) (string, error)
//
// The payload is stage-specific JSON (or the raw query for pre_intent); the
// returned string is the stage-specific response, empty meaning "no change".
type handleFunc func(stage, payload string) (string, error)

// Sandbox interprets one plugin's hook script inside a restricted yaegi
// interpreter. A Sandbox is built once at enable time and reused per call.
type Sandbox struct {
	plugin  string
	handle  handleFunc
	scratch string
}

// NewSandbox validates the script's imports against the plugin's declared
// capabilities, evaluates it, and resolves the Handle entry point.
func NewSandbox(m Manifest, dir, scratchBase string) (*Sandbox, error) {
	source, err := os.ReadFile(filepath.Join(dir, m.Entry))
	if err != nil {
		return nil, fmt.Errorf("read entry script: %w", err)
	}
	code := string(source)
	if err := validateImports(code, m); err != nil {
		return nil, err
	}

	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("load interpreter symbols: %w", err)
	}

	sb := &Sandbox{plugin: m.Name}
	if m.hasCapability(domain.CapabilityScratchDir) {
		sb.scratch = filepath.Join(scratchBase, m.Name)
		if err := os.MkdirAll(sb.scratch, domain.DirectoryPermissions); err != nil {
			return nil, fmt.Errorf("create scratch dir: %w", err)
		}
		if err := i.Use(sb.scratchSymbols()); err != nil {
			return nil, fmt.Errorf("bind scratch symbols: %w", err)
		}
	}

	if !strings.Contains(code, "package ") {
		code = "package main\n\n" + code
	}
	if _, err := i.Eval(code); err != nil {
		return nil, fmt.Errorf("evaluate hook script: %w", err)
	}

	v, err := i.Eval("main.Handle")
	if err != nil {
		return nil, fmt.Errorf("hook script defines no Handle function: %w", err)
	}
	handle, ok := v.Interface().(func(string, string) (string, error))
	if !ok {
		return nil, fmt.Errorf("Handle must have signature func(stage, payload string) (string, error)")
	}
	sb.handle = handle
	return sb, nil
}

// Run invokes the script's Handle for one stage. The call is bounded by ctx;
// a script that overruns is abandoned and reported as a fault. Panics inside
// the interpreter are contained the same way.
func (s *Sandbox) Run(ctx context.Context, stage domain.HookStage, payload string) (string, error) {
	type reply struct {
		out string
		err error
	}
	ch := make(chan reply, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- reply{err: fmt.Errorf("hook panicked: %v", r)}
			}
		}()
		out, err := s.handle(string(stage), payload)
		ch <- reply{out: out, err: err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			return "", &domain.PluginFault{Plugin: s.plugin, Stage: stage, Err: r.err}
		}
		return r.out, nil
	case <-ctx.Done():
		return "", &domain.PluginFault{Plugin: s.plugin, Stage: stage, Err: ctx.Err()}
	}
}

// scratchSymbols exposes a tiny file API confined to the plugin's scratch
// directory. This is the only filesystem surface a plugin ever sees.
func (s *Sandbox) scratchSymbols() interp.Exports {
	read := func(name string) (string, error) {
		p, err := s.scratchPath(name)
		if err != nil {
			return "", err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	write := func(name, data string) error {
		p, err := s.scratchPath(name)
		if err != nil {
			return err
		}
		return os.WriteFile(p, []byte(data), domain.SecureFilePermissions)
	}
	return interp.Exports{
		"nixwish/scratch/scratch": {
			"Read":  reflect.ValueOf(read),
			"Write": reflect.ValueOf(write),
		},
	}
}

// scratchPath rejects names that would escape the scratch directory.
func (s *Sandbox) scratchPath(name string) (string, error) {
	cleaned := filepath.Clean(name)
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("scratch name %q escapes the scratch directory", name)
	}
	return filepath.Join(s.scratch, cleaned), nil
}

// validateImports scans the script's import statements and rejects any
// package outside the allowed set for this plugin's capabilities.
func validateImports(code string, m Manifest) error {
	allowed := func(pkg string) bool {
		if baseAllowedImports[pkg] {
			return true
		}
		if m.hasCapability(domain.CapabilityNetwork) && networkImports[pkg] {
			return true
		}
		if m.hasCapability(domain.CapabilityScratchDir) && pkg == "nixwish/scratch" {
			return true
		}
		return false
	}

	var forbidden []string
	inBlock := false
	for _, line := range strings.Split(code, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "import ("):
			inBlock = true
		case inBlock && strings.HasPrefix(trimmed, ")"):
			inBlock = false
		case inBlock && trimmed != "":
			if pkg := importPath(trimmed); pkg != "" && !allowed(pkg) {
				forbidden = append(forbidden, pkg)
			}
		case strings.HasPrefix(trimmed, "import "):
			rest := strings.TrimPrefix(trimmed, "import ")
			if pkg := importPath(rest); pkg != "" && !allowed(pkg) {
				forbidden = append(forbidden, pkg)
			}
		}
	}
	if len(forbidden) > 0 {
		return fmt.Errorf("plugin %s imports forbidden packages: %s", m.Name, strings.Join(forbidden, ", "))
	}
	return nil
}

// importPath strips an optional alias and the surrounding quotes from one
// import spec line.
func importPath(spec string) string {
	fields := strings.Fields(spec)
	if len(fields) == 0 {
		return ""
	}
	last := fields[len(fields)-1]
	if !strings.HasPrefix(last, `"`) {
		return ""
	}
	return strings.Trim(last, `"`)
}
