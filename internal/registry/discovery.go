package registry

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/scrapeworks/discovery/internal/plugin"
)

// Manifest is the metadata record a plugin directory entry carries. The
// class field names a factory symbol published via RegisterFactory; a
// manifest whose symbol is not linked into the binary is skipped.
type Manifest struct {
	Name         string   `yaml:"name"`
	Class        string   `yaml:"class"`
	Type         string   `yaml:"type"`
	Version      string   `yaml:"version"`
	Description  string   `yaml:"description"`
	Dependencies []string `yaml:"dependencies"`
	Capabilities []string `yaml:"capabilities"`
}

// Discover scans dir for plugin manifest files (*.yaml, *.yml) and registers
// each one whose factory symbol resolves. Entries with a leading underscore
// are treated as private and skipped. A failure on one manifest is logged
// and skipped; discovery continues with the rest. Returns the number of
// plugins registered. A missing directory yields zero.
func (r *Registry) Discover(dir string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}

	discovered := 0
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, "_") {
			continue
		}
		ext := filepath.Ext(name)
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		path := filepath.Join(dir, name)
		if err := r.registerManifest(path); err != nil {
			log.Warn().
				Err(err).
				Str("manifest", path).
				Msg("Failed to load plugin, skipping")
			continue
		}
		discovered++
	}

	log.Debug().
		Str("dir", dir).
		Int("discovered", discovered).
		Msg("Plugin discovery complete")
	return discovered
}

func (r *Registry) registerManifest(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return err
	}
	if m.Name == "" || m.Class == "" {
		return ErrIncompleteManifest
	}

	factory, ok := LookupFactory(m.Class)
	if !ok {
		return &LoadError{Name: m.Name, Type: manifestType(m.Type), Err: ErrUnknownSymbol}
	}

	meta := Meta{
		Version:      m.Version,
		Description:  m.Description,
		Dependencies: m.Dependencies,
		Capabilities: m.Capabilities,
	}
	r.RegisterSource(m.Name, manifestType(m.Type), factory, meta, m.Class)
	return nil
}

// manifestType maps the manifest's type string to a bucket, defaulting to
// general for absent or unknown values.
func manifestType(s string) plugin.Type {
	switch plugin.Type(s) {
	case plugin.TypeStrategy:
		return plugin.TypeStrategy
	case plugin.TypeModule:
		return plugin.TypeModule
	case plugin.TypeHook:
		return plugin.TypeHook
	default:
		return plugin.TypeGeneral
	}
}
