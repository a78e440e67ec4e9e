// Package extract implements the product-page extraction strategy: CSS
// selector schemas over the fetched DOM that turn a page into a structured
// product harvest.
package extract

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/scrapeworks/discovery/internal/config"
	"github.com/scrapeworks/discovery/internal/plugin"
	"github.com/scrapeworks/discovery/internal/registry"
	"github.com/scrapeworks/discovery/internal/utils/idgen"
	"github.com/scrapeworks/discovery/internal/utils/urlutil"
	"github.com/scrapeworks/discovery/pkg/models"
)

// Name is the registry name of this plugin.
const Name = "extract"

func init() {
	factory := plugin.ConfigFactory(func(cfg config.Config) plugin.Plugin {
		return New(cfg)
	})
	registry.RegisterFactory("ExtractPlugin", factory)
	registry.RegisterFactory("extensions.extract", factory)
	registry.Default.Register(Name, plugin.TypeStrategy, factory, registry.Meta{
		Version:      "1.0",
		Description:  "CSS-schema product page extractor",
		Capabilities: []string{"product_extraction"},
	})
}

// Schema holds the CSS selectors the extractor applies to a product page.
// Zero-value fields fall back to the defaults in DefaultSchema.
type Schema struct {
	Title       string
	Description string
	Content     string
	Images      string
	Attachments string
	Categories  string
}

// DefaultSchema covers WooCommerce-style product pages, the layout the
// catalogs this framework started with all share.
func DefaultSchema() Schema {
	return Schema{
		Title:       "h1.product_title, .product-title h1, .entry-title",
		Description: ".product-description, .woocommerce-product-details__short-description, .product-short-description",
		Content:     ".product-content, .woocommerce-tabs, #tab-description",
		Images:      ".product-images img, .woocommerce-product-gallery img, .product-gallery img",
		Attachments: "a[href*='.pdf'], a[href*='attachment'], .attachments a, .product-attachments a",
		Categories:  ".product-categories a, .posted_in a, .product-meta .posted_in a",
	}
}

// Extractor is the product_extraction strategy plugin. Process takes a
// *models.PageData and returns a *models.Extraction.
type Extractor struct {
	schema Schema
}

// New builds an Extractor, overlaying selector overrides from the
// extraction.selectors.* config keys onto the default schema.
func New(cfg config.Config) *Extractor {
	s := DefaultSchema()
	override := func(key string, dst *string) {
		if v := cfg.GetString("extraction.selectors."+key, ""); v != "" {
			*dst = v
		}
	}
	override("title", &s.Title)
	override("description", &s.Description)
	override("content", &s.Content)
	override("images", &s.Images)
	override("attachments", &s.Attachments)
	override("categories", &s.Categories)
	return &Extractor{schema: s}
}

// Setup implements plugin.Plugin.
func (e *Extractor) Setup() error { return nil }

// Supports implements the runtime capability check.
func (e *Extractor) Supports(capability string) bool {
	return capability == "product_extraction"
}

// Process extracts a product from a fetched page.
func (e *Extractor) Process(ctx context.Context, data any) (any, error) {
	page, ok := data.(*models.PageData)
	if !ok {
		return nil, fmt.Errorf("extract: want *models.PageData, got %T", data)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		return nil, fmt.Errorf("extract %s: parse: %w", page.URL, err)
	}
	return e.ExtractProduct(page.URL, doc)
}

// ExtractProduct applies the selector schema to an already-parsed document.
func (e *Extractor) ExtractProduct(pageURL string, doc *goquery.Document) (*models.Extraction, error) {
	now := time.Now()
	ext := &models.Extraction{
		Product: models.Product{
			ProductID: idgen.ProductID(pageURL),
			URL:       pageURL,
			Metadata:  make(map[string]string),
			CreatedAt: now,
			UpdatedAt: now,
		},
	}

	ext.Product.Name = cleanText(doc.Find(e.schema.Title).First().Text())
	if ext.Product.Name == "" {
		return nil, fmt.Errorf("extract %s: no product title matched", pageURL)
	}
	ext.Product.Description = cleanText(doc.Find(e.schema.Description).First().Text())

	if content := doc.Find(e.schema.Content).First(); content.Length() > 0 {
		if html, err := content.Html(); err == nil {
			ext.ContentHTML = strings.TrimSpace(html)
		}
	}

	doc.Find(e.schema.Images).Each(func(_ int, s *goquery.Selection) {
		src, ok := s.Attr("src")
		if !ok || src == "" {
			return
		}
		ext.ImageURLs = append(ext.ImageURLs, urlutil.Resolve(pageURL, src))
		alt, _ := s.Attr("alt")
		ext.ImageAlts = append(ext.ImageAlts, alt)
	})
	ext.ImageURLs, ext.ImageAlts = dedupeAligned(ext.ImageURLs, ext.ImageAlts)

	doc.Find(e.schema.Attachments).Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok || href == "" {
			return
		}
		ext.AttachmentURLs = append(ext.AttachmentURLs, urlutil.Resolve(pageURL, href))
		ext.AttachmentTexts = append(ext.AttachmentTexts, cleanText(s.Text()))
	})
	ext.AttachmentURLs, ext.AttachmentTexts = dedupeAligned(ext.AttachmentURLs, ext.AttachmentTexts)

	doc.Find(e.schema.Categories).Each(func(_ int, s *goquery.Selection) {
		name := cleanText(s.Text())
		if name == "" {
			return
		}
		ext.CategoryNames = append(ext.CategoryNames, name)
		href, _ := s.Attr("href")
		ext.CategoryLinks = append(ext.CategoryLinks, urlutil.Resolve(pageURL, href))
	})

	log.Debug().
		Str("url", pageURL).
		Str("product", ext.Product.Name).
		Int("images", len(ext.ImageURLs)).
		Int("attachments", len(ext.AttachmentURLs)).
		Msg("Product extracted")
	return ext, nil
}

// DiscoverLinks harvests product, category, and pagination links from a
// catalog listing page.
func DiscoverLinks(pageURL string, doc *goquery.Document) *models.Discovery {
	d := &models.Discovery{}
	collect := func(selector string, dst *[]string) {
		doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
			if href, ok := s.Attr("href"); ok && href != "" {
				*dst = append(*dst, urlutil.Resolve(pageURL, href))
			}
		})
		*dst = urlutil.Unique(*dst)
	}
	collect(".woocommerce-LoopProduct-link, .woocommerce-loop-product__link, a[href*='/product/']", &d.ProductLinks)
	collect(".product-category a, a[href*='/product-category/'], .cat-item a", &d.CategoryLinks)
	collect(".pagination a, .page-numbers a, nav.woocommerce-pagination a", &d.PaginationLinks)
	return d
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// dedupeAligned removes duplicate URLs while keeping the paired texts
// aligned by index.
func dedupeAligned(urls, texts []string) ([]string, []string) {
	seen := make(map[string]bool, len(urls))
	outU := urls[:0]
	outT := texts[:0]
	for i, u := range urls {
		if seen[u] {
			continue
		}
		seen[u] = true
		outU = append(outU, u)
		outT = append(outT, texts[i])
	}
	return outU, outT
}
