package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Default file layout under the resolver's base directory.
const (
	baseConfigFile = "base_config.yaml"
	clientsDirName = "clients"
)

// Resolver loads and merges the configuration layers for a client.
//
// A missing file at any layer contributes nothing. A present but malformed
// file is a hard error: a corrupt layer silently ignored would mask the
// operator's intent.
type Resolver struct {
	// BaseDir is the directory holding base_config.yaml and clients/.
	// Defaults to "config".
	BaseDir string
}

// NewResolver returns a Resolver rooted at baseDir ("config" when empty).
func NewResolver(baseDir string) *Resolver {
	if baseDir == "" {
		baseDir = "config"
	}
	return &Resolver{BaseDir: baseDir}
}

// Resolve builds the effective configuration for clientName. Layers merge in
// increasing precedence: defaults, shared base file, client-specific file,
// explicitPath (when non-empty).
func (r *Resolver) Resolve(clientName, explicitPath string) (Config, error) {
	cfg := Defaults()

	layers := []string{
		filepath.Join(r.BaseDir, baseConfigFile),
		filepath.Join(r.BaseDir, clientsDirName, clientName+".yaml"),
	}
	if explicitPath != "" {
		layers = append(layers, explicitPath)
	}

	for _, path := range layers {
		layer, err := loadFile(path)
		if err != nil {
			return nil, err
		}
		if layer == nil {
			continue
		}
		cfg = Merge(cfg, layer)
		log.Debug().
			Str("client", clientName).
			Str("layer", path).
			Msg("Config layer merged")
	}

	return cfg, nil
}

// loadFile reads one layer. Returns (nil, nil) when the file does not exist.
func loadFile(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var layer Config
	if err := yaml.Unmarshal(raw, &layer); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return layer, nil
}
