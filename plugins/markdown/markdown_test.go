package markdown

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/scrapeworks/discovery/internal/hooks"
	"github.com/scrapeworks/discovery/pkg/models"
)

type fakePipeline struct {
	name      string
	outputDir string
}

func (f *fakePipeline) ClientName() string { return f.name }
func (f *fakePipeline) ConfigValue(path string, def any) any {
	if path == "output.path" {
		return f.outputDir
	}
	return def
}
func (f *fakePipeline) RegisterHook(string, hooks.Hook) {}

func TestProcessConvertsExtractionBody(t *testing.T) {
	r := New(&fakePipeline{name: "agar"})
	ext := &models.Extraction{
		Product:     models.Product{URL: "https://example.com/product/apc/"},
		ContentHTML: `<h2>Usage</h2><p>See <a href="/docs/pds.pdf">PDS</a>.</p>`,
	}

	out, err := r.Process(context.Background(), ext)
	if err != nil {
		t.Fatal(err)
	}
	got := out.(string)
	if !strings.Contains(got, "## Usage") {
		t.Errorf("markdown = %q", got)
	}
	if !strings.Contains(got, "(https://example.com/docs/pds.pdf)") {
		t.Errorf("link not resolved: %q", got)
	}

	// Empty body is fine, not an error.
	out, err = r.Process(context.Background(), &models.Extraction{})
	if err != nil || out != "" {
		t.Errorf("empty body = %v, %v", out, err)
	}
}

func TestProcessRendersCatalog(t *testing.T) {
	dir := t.TempDir()
	r := New(&fakePipeline{name: "agar", outputDir: dir})

	catalog := &models.CatalogData{
		Products: []models.Product{
			{ProductID: "p1", Name: "Degreaser", URL: "https://example.com/product/degreaser/"},
		},
		Documents: []models.Document{
			{DocumentID: "d1", ProductID: "p1", Type: models.DocPDS, URL: "https://example.com/docs/pds.pdf"},
		},
	}

	out, err := r.Process(context.Background(), catalog)
	if err != nil {
		t.Fatal(err)
	}
	written := out.(map[string]string)

	page := written["p1"]
	if page != filepath.Join(dir, "agar", "products", "degreaser", "degreaser.md") {
		t.Errorf("product page path = %q", page)
	}
	body, err := os.ReadFile(page)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(body), "Product Data Sheet (PDS)") {
		t.Errorf("product page lacks its document:\n%s", body)
	}

	index, err := os.ReadFile(written["_index"])
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(index), "# agar catalog") {
		t.Errorf("index title = %q", index)
	}
}

func TestProcessRejectsWrongType(t *testing.T) {
	r := New(&fakePipeline{name: "agar"})
	if _, err := r.Process(context.Background(), 7); err == nil {
		t.Error("unsupported input should be rejected")
	}
}
