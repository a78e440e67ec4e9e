// Package fetch implements the page fetchers the framework's plugins build
// on: a raw-HTTP static fetcher, an inline-JS hybrid pass, and a headless
// Chrome fetcher for script-rendered catalogs.
package fetch

import (
	"context"

	"github.com/scrapeworks/discovery/internal/registry"
	"github.com/scrapeworks/discovery/pkg/models"
)

// Announce the fetch engines as integration providers so plugin dependency
// checks can see which are linked into this binary.
func init() {
	registry.MarkAvailable("fetch/static")
	registry.MarkAvailable("fetch/hybrid")
	registry.MarkAvailable("fetch/browser")
}

// Fetcher retrieves a page. All fetchers honor context cancellation.
type Fetcher interface {
	// Fetch retrieves and parses data from the URL in opts.
	Fetch(ctx context.Context, opts models.RequestOptions) (*models.PageData, error)

	// Name returns the fetcher implementation name.
	Name() string
}
