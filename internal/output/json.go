// Package output writes catalog runs to disk: normalized JSON entity files,
// CSV exports, and Markdown documentation pages.
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/scrapeworks/discovery/pkg/models"
)

// SavePageJSON writes a compacted JSON export of a single fetched page to
// path. The raw HTML is dropped from the export.
func SavePageJSON(data *models.PageData, path string) error {
	export := *data
	export.HTML = ""

	content, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, content, 0o644)
}

// NormalizedFiles maps entity names to the paths their JSON files were
// written to.
type NormalizedFiles map[string]string

// SaveCatalog writes the normalized catalog to dir: one JSON file per entity
// type plus a combined catalog_complete file. Empty entity slices are
// skipped.
func SaveCatalog(catalog *models.CatalogData, dir string) (NormalizedFiles, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	saved := make(NormalizedFiles)
	stamp := time.Now().Format("20060102_150405")

	write := func(name string, v any) error {
		path := filepath.Join(dir, fmt.Sprintf("%s_%s.json", name, stamp))
		content, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal %s: %w", name, err)
		}
		if err := os.WriteFile(path, content, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
		saved[name] = path
		return nil
	}

	if len(catalog.Products) > 0 {
		if err := write("products", catalog.Products); err != nil {
			return saved, err
		}
	}
	if len(catalog.Media) > 0 {
		if err := write("media", catalog.Media); err != nil {
			return saved, err
		}
	}
	if len(catalog.Documents) > 0 {
		if err := write("documents", catalog.Documents); err != nil {
			return saved, err
		}
	}
	if len(catalog.Categories) > 0 {
		if err := write("categories", catalog.Categories); err != nil {
			return saved, err
		}
	}
	if len(catalog.ProductCategories) > 0 {
		if err := write("product_categories", catalog.ProductCategories); err != nil {
			return saved, err
		}
	}
	if err := write("catalog_complete", catalog); err != nil {
		return saved, err
	}

	log.Info().
		Int("products", len(catalog.Products)).
		Int("media", len(catalog.Media)).
		Int("documents", len(catalog.Documents)).
		Int("categories", len(catalog.Categories)).
		Str("dir", dir).
		Msg("Catalog JSON written")
	return saved, nil
}
