package download

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/scrapeworks/discovery/internal/config"
	"github.com/scrapeworks/discovery/internal/downloader"
	"github.com/scrapeworks/discovery/internal/hooks"
	"github.com/scrapeworks/discovery/pkg/models"
)

type fakePipeline struct{ name string }

func (f *fakePipeline) ClientName() string                { return f.name }
func (f *fakePipeline) ConfigValue(_ string, def any) any { return def }
func (f *fakePipeline) RegisterHook(string, hooks.Hook)   {}

func TestProcessDownloadsPerProduct(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("asset"))
	}))
	defer srv.Close()

	baseDir := t.TempDir()
	cfg := config.Config{
		"downloads": map[string]any{"path": baseDir},
	}
	s := New(&fakePipeline{name: "agar"}, cfg)

	catalog := &models.CatalogData{
		Documents: []models.Document{
			{ProductID: "p1", URL: srv.URL + "/pds.pdf"},
		},
		Media: []models.Media{
			{ProductID: "p1", Type: models.MediaImage, URL: srv.URL + "/front.jpg"},
			{ProductID: "p2", Type: models.MediaImage, URL: srv.URL + "/other.jpg"},
			{ProductID: "p1", Type: models.MediaVideo, URL: "https://www.youtube.com/embed/abc"},
		},
	}

	out, err := s.Process(context.Background(), catalog)
	if err != nil {
		t.Fatal(err)
	}
	results := out.([]*downloader.Result)

	if len(results) != 3 {
		t.Fatalf("results = %d, want documents plus images only", len(results))
	}
	for _, res := range results {
		if !res.Success {
			t.Errorf("download of %s failed: %v", res.URL, res.Err)
		}
	}

	if _, err := os.Stat(filepath.Join(baseDir, "agar", "p1", "pds.pdf")); err != nil {
		t.Errorf("p1 document not grouped under its product dir: %v", err)
	}
	if _, err := os.Stat(filepath.Join(baseDir, "agar", "p2", "other.jpg")); err != nil {
		t.Errorf("p2 image not grouped under its product dir: %v", err)
	}
}

func TestProcessDisabled(t *testing.T) {
	cfg := config.Config{
		"downloads": map[string]any{"enabled": false},
	}
	s := New(&fakePipeline{name: "agar"}, cfg)

	out, err := s.Process(context.Background(), &models.CatalogData{
		Documents: []models.Document{{ProductID: "p1", URL: "https://example.com/x.pdf"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if out != nil {
		t.Errorf("disabled Process = %v, want nil without network activity", out)
	}
}

func TestProcessRejectsWrongType(t *testing.T) {
	s := New(&fakePipeline{name: "agar"}, config.Config{})
	if _, err := s.Process(context.Background(), "nope"); err == nil {
		t.Error("non-CatalogData input should be rejected")
	}
}
