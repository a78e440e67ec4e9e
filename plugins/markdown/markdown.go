// Package markdown renders catalog documentation: per-product Markdown pages
// plus a category-grouped index, and Markdown conversion of product page
// bodies.
package markdown

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/scrapeworks/discovery/internal/config"
	"github.com/scrapeworks/discovery/internal/output"
	"github.com/scrapeworks/discovery/internal/plugin"
	"github.com/scrapeworks/discovery/internal/registry"
	"github.com/scrapeworks/discovery/pkg/models"
)

// Name is the registry name of this plugin.
const Name = "markdown"

func init() {
	factory := plugin.PipelineFactory(func(p plugin.Pipeline, _ config.Config) plugin.Plugin {
		return New(p)
	})
	registry.RegisterFactory("MarkdownPlugin", factory)
	registry.RegisterFactory("extensions.markdown", factory)
	registry.Default.Register(Name, plugin.TypeModule, factory, registry.Meta{
		Version:      "1.0",
		Description:  "Product and index Markdown renderer",
		Capabilities: []string{"markdown_generation"},
	})
}

// Renderer is the markdown_generation plugin. Process accepts either a
// *models.Extraction (returns the page body converted to Markdown) or a
// *models.CatalogData (writes product pages and the index, returns the
// written paths).
type Renderer struct {
	pipe plugin.Pipeline
}

// New builds a Renderer bound to its owning pipeline, which supplies the
// output location.
func New(p plugin.Pipeline) *Renderer { return &Renderer{pipe: p} }

// Setup implements plugin.Plugin.
func (r *Renderer) Setup() error { return nil }

// Supports implements the runtime capability check.
func (r *Renderer) Supports(capability string) bool {
	return capability == "markdown_generation"
}

// Process implements plugin.Plugin.
func (r *Renderer) Process(ctx context.Context, data any) (any, error) {
	switch v := data.(type) {
	case *models.Extraction:
		if v.ContentHTML == "" {
			return "", nil
		}
		return output.ConvertHTML(v.Product.URL, v.ContentHTML)
	case *models.CatalogData:
		return r.renderCatalog(v)
	default:
		return nil, fmt.Errorf("markdown: want *models.Extraction or *models.CatalogData, got %T", data)
	}
}

func (r *Renderer) renderCatalog(catalog *models.CatalogData) (map[string]string, error) {
	dir := r.outputDir()

	docsByProduct := make(map[string][]models.Document, len(catalog.Documents))
	for _, d := range catalog.Documents {
		docsByProduct[d.ProductID] = append(docsByProduct[d.ProductID], d)
	}

	written := make(map[string]string, len(catalog.Products)+1)
	for i := range catalog.Products {
		p := &catalog.Products[i]
		path, err := output.SaveProductMarkdown(p, docsByProduct[p.ProductID], dir)
		if err != nil {
			return written, fmt.Errorf("markdown %s: %w", p.ProductID, err)
		}
		written[p.ProductID] = path
	}

	indexPath, err := output.SaveIndexMarkdown(catalog, r.pipe.ClientName()+" catalog", dir)
	if err != nil {
		return written, fmt.Errorf("markdown index: %w", err)
	}
	written["_index"] = indexPath

	log.Info().
		Int("products", len(catalog.Products)).
		Str("dir", dir).
		Msg("Markdown documentation written")
	return written, nil
}

func (r *Renderer) outputDir() string {
	base, _ := r.pipe.ConfigValue("output.path", "./output").(string)
	return filepath.Join(base, r.pipe.ClientName())
}
