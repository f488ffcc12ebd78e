// Package plugin implements discovery and sandboxed execution of pipeline
// hooks. Discovery loads metadata only; no plugin code runs until a plugin is
// explicitly enabled.
package plugin

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/doeshing/nixwish/internal/domain"
)

// manifestName is the file scanned for in each plugin directory.
const manifestName = "manifest.yaml"

// Manifest mirrors a plugin's manifest.yaml.
type Manifest struct {
	Name         string               `yaml:"name"`
	Version      string               `yaml:"version"`
	Description  string               `yaml:"description"`
	Capabilities []domain.Capability  `yaml:"capabilities"`
	Hooks        []domain.HookBinding `yaml:"hooks"`
	// Entry is the hook script, relative to the plugin directory.
	Entry string `yaml:"entry"`
}

var knownCapabilities = map[domain.Capability]bool{
	domain.CapabilityScratchDir: true,
	domain.CapabilityNetwork:    true,
}

var knownStages = map[domain.HookStage]bool{
	domain.StagePreIntent:   true,
	domain.StagePreExecute:  true,
	domain.StagePostExecute: true,
	domain.StageOnError:     true,
}

// loadManifest reads and validates one manifest. Capabilities and stages are
// checked here, at registration time, never at call time.
func loadManifest(dir string) (Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, manifestName))
	if err != nil {
		return Manifest{}, err
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("parse manifest: %w", err)
	}
	if m.Name == "" {
		return Manifest{}, fmt.Errorf("manifest in %s has no name", dir)
	}
	if m.Entry == "" {
		m.Entry = "hook.go"
	}
	for _, c := range m.Capabilities {
		if !knownCapabilities[c] {
			return Manifest{}, fmt.Errorf("plugin %s declares unknown capability %q", m.Name, c)
		}
	}
	for _, h := range m.Hooks {
		if !knownStages[h.Stage] {
			return Manifest{}, fmt.Errorf("plugin %s registers unknown stage %q", m.Name, h.Stage)
		}
	}
	return m, nil
}

func (m Manifest) hasCapability(c domain.Capability) bool {
	for _, have := range m.Capabilities {
		if have == c {
			return true
		}
	}
	return false
}

func (m Manifest) metadata(source domain.PluginSource, dir string) domain.PluginMetadata {
	return domain.PluginMetadata{
		Name:         m.Name,
		Version:      m.Version,
		Description:  m.Description,
		Capabilities: m.Capabilities,
		Source:       source,
		Dir:          dir,
	}
}
