// Package download saves catalog assets (documents and media) to disk
// through the concurrent downloader, honoring the downloads.* configuration
// of the owning pipeline.
package download

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/scrapeworks/discovery/internal/config"
	"github.com/scrapeworks/discovery/internal/downloader"
	"github.com/scrapeworks/discovery/internal/plugin"
	"github.com/scrapeworks/discovery/internal/registry"
	"github.com/scrapeworks/discovery/pkg/models"
)

// Name is the registry name of this plugin.
const Name = "download"

func init() {
	factory := plugin.PipelineFactory(func(p plugin.Pipeline, cfg config.Config) plugin.Plugin {
		return New(p, cfg)
	})
	registry.RegisterFactory("DownloadPlugin", factory)
	registry.RegisterFactory("extensions.download", factory)
	registry.Default.Register(Name, plugin.TypeModule, factory, registry.Meta{
		Version:      "1.0",
		Description:  "Catalog asset downloader",
		Dependencies: []string{"downloader"},
		Capabilities: []string{"file_download"},
	})
}

// Saver is the file_download plugin. Process takes a *models.CatalogData and
// downloads every document plus all image media, grouped per product under
// the downloads directory. It returns the downloader results.
type Saver struct {
	pipe plugin.Pipeline
	pool *downloader.WorkerPool

	enabled     bool
	baseDir     string
	maxSizeMB   int
	showBar     bool
	concurrency int
}

// New builds a Saver from the pipeline's downloads.* configuration.
func New(p plugin.Pipeline, cfg config.Config) *Saver {
	timeoutSec := cfg.GetInt("downloads.timeout_seconds", 30)
	concurrency := cfg.GetInt("crawling.max_concurrent", 5)
	return &Saver{
		pipe:        p,
		pool:        downloader.NewWorkerPool(concurrency, time.Duration(timeoutSec)*time.Second, ""),
		enabled:     cfg.GetBool("downloads.enabled", true),
		baseDir:     cfg.GetString("downloads.path", "./downloads"),
		maxSizeMB:   cfg.GetInt("downloads.max_file_size_mb", 100),
		showBar:     cfg.GetBool("downloads.progress", false),
		concurrency: concurrency,
	}
}

// Setup implements plugin.Plugin.
func (s *Saver) Setup() error { return nil }

// Supports implements the runtime capability check.
func (s *Saver) Supports(capability string) bool {
	return capability == "file_download"
}

// Process downloads the catalog's assets. When downloads are disabled it
// returns nil without touching the network.
func (s *Saver) Process(ctx context.Context, data any) (any, error) {
	catalog, ok := data.(*models.CatalogData)
	if !ok {
		return nil, fmt.Errorf("download: want *models.CatalogData, got %T", data)
	}
	if !s.enabled {
		log.Debug().Msg("Downloads disabled; skipping")
		return nil, nil
	}

	byProduct := make(map[string][]string)
	for _, d := range catalog.Documents {
		byProduct[d.ProductID] = append(byProduct[d.ProductID], d.URL)
	}
	for _, m := range catalog.Media {
		if m.Type == models.MediaImage {
			byProduct[m.ProductID] = append(byProduct[m.ProductID], m.URL)
		}
	}

	var all []*downloader.Result
	failed := 0
	for productID, urls := range byProduct {
		opts := downloader.Options{
			OutputDir:     filepath.Join(s.baseDir, s.pipe.ClientName(), productID),
			MaxFileSizeMB: s.maxSizeMB,
			ShowProgress:  s.showBar,
		}
		results := s.pool.DownloadBatch(ctx, urls, opts)
		for _, res := range results {
			if !res.Success {
				failed++
			}
		}
		all = append(all, results...)

		if err := ctx.Err(); err != nil {
			return all, err
		}
	}

	log.Info().
		Int("files", len(all)).
		Int("failed", failed).
		Msg("Asset downloads complete")
	return all, nil
}
