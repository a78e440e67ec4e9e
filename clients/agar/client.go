// Package agar implements the Agar catalog client: it walks a
// WooCommerce-style product catalog, extracts products with the registered
// plugins, and emits normalized JSON, CSV, and Markdown outputs.
package agar

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/scrapeworks/discovery/internal/clients"
	"github.com/scrapeworks/discovery/internal/fetch"
	"github.com/scrapeworks/discovery/internal/output"
	"github.com/scrapeworks/discovery/internal/pipeline"
	"github.com/scrapeworks/discovery/internal/plugin"
	"github.com/scrapeworks/discovery/internal/ratelimit"
	"github.com/scrapeworks/discovery/internal/utils/urlutil"
	"github.com/scrapeworks/discovery/pkg/models"

	"github.com/scrapeworks/discovery/plugins/categories"
	"github.com/scrapeworks/discovery/plugins/extract"
)

// Name is the registry name of this client.
const Name = "agar"

func init() {
	clients.RegisterFactory("agar_client.AgarClient", clients.NamedFactory(New), clients.Meta{
		Description:  "Agar product catalog scraper",
		Version:      "1.0",
		Capabilities: []string{"product_extraction", "markdown_generation", "file_download"},
	})
}

// Client scrapes the Agar catalog. It embeds the base pipeline and delegates
// the domain steps to registered plugins.
type Client struct {
	*pipeline.Base

	fetcher fetch.Fetcher
}

// New constructs the client, resolves its configuration, and wires the
// pipeline. The returned client is ready to Run.
func New(name, configPath string) (clients.Client, error) {
	base, err := pipeline.New(name, configPath)
	if err != nil {
		return nil, err
	}
	c := &Client{Base: base}
	if err := c.SetupPipeline(); err != nil {
		return nil, err
	}
	return c, nil
}

// DefaultExtractionStrategy names the strategy plugin this client extracts
// with.
func (c *Client) DefaultExtractionStrategy() string { return extract.Name }

// SetupPipeline builds the fetch stack, loads the catalog plugins, and
// registers the post_extraction and pre_output hooks.
func (c *Client) SetupPipeline() error {
	cfg := c.Config()

	limiter := ratelimit.NewDomainLimiter(
		cfg.GetFloat("rate_limit.max_requests_per_second", 2),
		5,
	)
	static := fetch.NewStatic(nil, limiter, nil, nil, 30*time.Second, "")
	if cfg.GetBool("extraction.enable_javascript", true) {
		c.fetcher = fetch.NewHybrid(static)
	} else {
		c.fetcher = static
	}

	for _, load := range []struct {
		name string
		typ  plugin.Type
	}{
		{extract.Name, plugin.TypeStrategy},
		{"media", plugin.TypeGeneral},
		{"documents", plugin.TypeGeneral},
		{"categories", plugin.TypeGeneral},
		{"markdown", plugin.TypeModule},
		{"download", plugin.TypeModule},
	} {
		if _, err := c.CreatePlugin(load.name, load.typ, cfg); err != nil {
			return fmt.Errorf("agar: load plugin %s: %w", load.name, err)
		}
	}

	// Attach the rendered page body to the product so the Markdown pages
	// carry the full technical content.
	c.RegisterHook("post_extraction", func(ctx context.Context, v any) (any, error) {
		ext, ok := v.(*models.Extraction)
		if !ok {
			return v, nil
		}
		md, _ := c.Base.Plugin("markdown")
		if md == nil || ext.ContentHTML == "" {
			return v, nil
		}
		rendered, err := md.Process(ctx, ext)
		if err != nil {
			return v, nil
		}
		if s, ok := rendered.(string); ok && s != "" {
			ext.Product.Metadata["content_markdown"] = s
		}
		return v, nil
	})

	c.RegisterHook("pre_output", func(ctx context.Context, v any) (any, error) {
		catalog, ok := v.(*models.CatalogData)
		if !ok {
			return v, nil
		}
		catalog.ScrapedAt = time.Now()
		catalog.TotalProducts = len(catalog.Products)
		return v, nil
	})

	return nil
}

// Run walks the catalog from the base URL: listing pages first, then each
// product page through the plugin chain, then outputs. Recognized args:
// "url" (base URL override) and "max_products" (int cap).
func (c *Client) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	cfg := c.Config()

	baseURL, _ := args["url"].(string)
	if baseURL == "" {
		baseURL = cfg.GetString("client.base_url", "")
	}
	if baseURL == "" {
		return nil, fmt.Errorf("agar: no base URL; set client.base_url or pass url")
	}

	maxProducts := cfg.GetInt("crawling.max_pages", 100)
	if n, ok := args["max_products"].(int); ok && n > 0 {
		maxProducts = n
	}

	productURLs, err := c.discoverProducts(ctx, baseURL, maxProducts)
	if err != nil {
		return nil, err
	}
	log.Info().Int("products", len(productURLs)).Msg("Product URLs discovered")

	catalog, failures := c.scrapeProducts(ctx, productURLs)

	v, err := c.RunHooks(ctx, "pre_output", catalog)
	if err != nil {
		return nil, fmt.Errorf("agar: pre_output hooks: %w", err)
	}
	if updated, ok := v.(*models.CatalogData); ok {
		catalog = updated
	}

	written, err := c.writeOutputs(ctx, catalog)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"products":   len(catalog.Products),
		"media":      len(catalog.Media),
		"documents":  len(catalog.Documents),
		"categories": len(catalog.Categories),
		"failures":   failures,
		"outputs":    written,
	}, nil
}

// discoverProducts walks listing pages breadth-first, following pagination
// and category links on the same host, until the product cap or page budget
// is reached.
func (c *Client) discoverProducts(ctx context.Context, baseURL string, maxProducts int) ([]string, error) {
	maxPages := c.Config().GetInt("crawling.max_pages", 100)
	domain := urlutil.Domain(baseURL)

	queue := []string{baseURL}
	visited := make(map[string]bool)
	var products []string
	seenProduct := make(map[string]bool)

	for len(queue) > 0 && len(visited) < maxPages && len(products) < maxProducts {
		if err := ctx.Err(); err != nil {
			return products, err
		}

		pageURL := queue[0]
		queue = queue[1:]
		if visited[pageURL] {
			continue
		}
		visited[pageURL] = true

		page, err := c.fetcher.Fetch(ctx, models.RequestOptions{URL: pageURL})
		if err != nil {
			log.Warn().Err(err).Str("url", pageURL).Msg("Listing fetch failed; skipping")
			continue
		}
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
		if err != nil {
			continue
		}

		d := extract.DiscoverLinks(pageURL, doc)
		for _, p := range d.ProductLinks {
			if !seenProduct[p] && urlutil.Domain(p) == domain {
				seenProduct[p] = true
				products = append(products, p)
			}
		}
		for _, next := range append(d.PaginationLinks, d.CategoryLinks...) {
			if !visited[next] && urlutil.Domain(next) == domain {
				queue = append(queue, next)
			}
		}
	}

	if len(products) > maxProducts {
		products = products[:maxProducts]
	}
	return products, nil
}

// scrapeProducts runs each product page through extract, the
// post_extraction hooks, and the entity processors, accumulating the
// catalog. Per-product failures are logged and counted, not fatal.
func (c *Client) scrapeProducts(ctx context.Context, productURLs []string) (*models.CatalogData, int) {
	catalog := &models.CatalogData{}
	failures := 0

	extractor, _ := c.Base.Plugin(extract.Name)
	mediaProc, _ := c.Base.Plugin("media")
	docsProc, _ := c.Base.Plugin("documents")
	catsProc, _ := c.Base.Plugin("categories")

	for _, productURL := range productURLs {
		if ctx.Err() != nil {
			break
		}

		ext, err := c.scrapeOne(ctx, productURL, extractor)
		if err != nil {
			log.Warn().Err(err).Str("url", productURL).Msg("Product scrape failed")
			failures++
			continue
		}
		if v, err := mediaProc.Process(ctx, ext); err == nil {
			if items, ok := v.([]models.Media); ok {
				catalog.Media = append(catalog.Media, items...)
			}
		}
		if v, err := docsProc.Process(ctx, ext); err == nil {
			if docs, ok := v.([]models.Document); ok {
				catalog.Documents = append(catalog.Documents, docs...)
			}
		}
		if v, err := catsProc.Process(ctx, ext); err == nil {
			if assign, ok := v.(*categories.Assignment); ok {
				catalog.ProductCategories = append(catalog.ProductCategories, assign.Relations...)
				for _, rel := range assign.Relations {
					ext.Product.CategoryIDs = append(ext.Product.CategoryIDs, rel.CategoryID)
				}
			}
		}

		catalog.Products = append(catalog.Products, ext.Product)
	}

	if mapper, ok := catsProc.(*categories.Mapper); ok {
		catalog.Categories = mapper.All()
	}
	return catalog, failures
}

func (c *Client) scrapeOne(ctx context.Context, productURL string, extractor plugin.Plugin) (*models.Extraction, error) {
	page, err := c.fetcher.Fetch(ctx, models.RequestOptions{URL: productURL})
	if err != nil {
		return nil, err
	}

	v, err := extractor.Process(ctx, page)
	if err != nil {
		return nil, err
	}
	ext, ok := v.(*models.Extraction)
	if !ok {
		return nil, fmt.Errorf("agar: extractor returned %T", v)
	}

	if v, err = c.RunHooks(ctx, "post_extraction", ext); err != nil {
		return nil, err
	} else if updated, ok := v.(*models.Extraction); ok {
		ext = updated
	}
	return ext, nil
}

// writeOutputs emits the configured output formats and runs the download
// plugin when downloads are enabled.
func (c *Client) writeOutputs(ctx context.Context, catalog *models.CatalogData) (map[string]string, error) {
	cfg := c.Config()
	dir := filepath.Join(cfg.GetString("output.path", "./output"), c.ClientName())
	written := make(map[string]string)

	if cfg.GetBool("output.generate_json", true) {
		files, err := output.SaveCatalog(catalog, dir)
		if err != nil {
			return written, fmt.Errorf("agar: json output: %w", err)
		}
		for k, p := range files {
			written[k] = p
		}
	}

	if cfg.GetBool("output.generate_csv", true) {
		csvPath := filepath.Join(dir, "products.csv")
		if err := output.SaveProductsCSV(catalog, csvPath); err != nil {
			return written, fmt.Errorf("agar: csv output: %w", err)
		}
		written["csv"] = csvPath
	}

	if cfg.GetBool("output.generate_markdown", true) {
		if md, ok := c.Base.Plugin("markdown"); ok {
			if v, err := md.Process(ctx, catalog); err == nil {
				if files, ok := v.(map[string]string); ok {
					if idx, ok := files["_index"]; ok {
						written["markdown_index"] = idx
					}
				}
			} else {
				log.Warn().Err(err).Msg("Markdown output failed")
			}
		}
	}

	if dl, ok := c.Base.Plugin("download"); ok && cfg.GetBool("downloads.enabled", true) {
		if _, err := dl.Process(ctx, catalog); err != nil && ctx.Err() == nil {
			log.Warn().Err(err).Msg("Asset downloads failed")
		}
	}

	return written, nil
}
