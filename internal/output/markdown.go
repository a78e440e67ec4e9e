package output

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	mdplugin "github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/PuerkitoBio/goquery"

	"github.com/scrapeworks/discovery/internal/utils/urlutil"
	"github.com/scrapeworks/discovery/pkg/models"
)

// ConvertHTML converts an HTML fragment to GitHub-flavored Markdown. Relative
// links are resolved against baseURL, and the HTML is sanitized first.
func ConvertHTML(baseURL, htmlContent string) (string, error) {
	converter := md.NewConverter("", true, nil)
	converter.Use(mdplugin.GitHubFlavored())

	converter.AddRules(md.Rule{
		Filter: []string{"a"},
		Replacement: func(content string, selec *goquery.Selection, opt *md.Options) *string {
			href, exists := selec.Attr("href")
			if !exists {
				return nil
			}
			resolved := urlutil.Resolve(baseURL, href)
			var titlePart string
			if title, ok := selec.Attr("title"); ok {
				titlePart = fmt.Sprintf(" %q", title)
			}
			str := fmt.Sprintf("[%s](%s)%s", selec.Text(), resolved, titlePart)
			return &str
		},
	})

	cleaned, err := CleanHTML(htmlContent)
	if err != nil {
		return "", err
	}
	return converter.ConvertString(cleaned)
}

// ProductMarkdown renders the documentation page for one product: product
// information, overview, and attached documents.
func ProductMarkdown(p *models.Product, docs []models.Document) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", p.Name)

	b.WriteString("## Product Information\n")
	for _, field := range []struct{ key, label string }{
		{"codes", "Product Code(s)"},
		{"skus", "SKU(s)"},
		{"sizes", "Available Sizes"},
		{"categories", "Categories"},
		{"tags", "Tags"},
	} {
		if v := p.Metadata[field.key]; v != "" {
			fmt.Fprintf(&b, "- **%s**: %s\n", field.label, v)
		}
	}
	b.WriteString("\n")

	if p.Description != "" {
		b.WriteString("## Overview\n")
		b.WriteString(p.Description)
		b.WriteString("\n\n")
	}

	if len(docs) > 0 {
		b.WriteString("## Documentation\n")
		for _, d := range docs {
			switch d.Type {
			case models.DocSDS:
				fmt.Fprintf(&b, "- [Safety Data Sheet (SDS)](%s)\n", d.URL)
			case models.DocPDS:
				fmt.Fprintf(&b, "- [Product Data Sheet (PDS)](%s)\n", d.URL)
			default:
				name := d.Name
				if name == "" {
					name = "Document"
				}
				fmt.Fprintf(&b, "- [%s](%s)\n", name, d.URL)
			}
		}
		b.WriteString("\n")
	}

	b.WriteString("---\n")
	fmt.Fprintf(&b, "*Last Updated: %s*\n", time.Now().Format("2006-01-02"))
	return b.String()
}

// SaveProductMarkdown writes the product page under dir/products/<slug>/.
// The slug comes from the product URL's last path segment, falling back to a
// slugified product name.
func SaveProductMarkdown(p *models.Product, docs []models.Document, dir string) (string, error) {
	slug := productSlug(p)
	productDir := filepath.Join(dir, "products", slug)
	if err := os.MkdirAll(productDir, 0o755); err != nil {
		return "", fmt.Errorf("create product dir: %w", err)
	}

	path := filepath.Join(productDir, slug+".md")
	if err := os.WriteFile(path, []byte(ProductMarkdown(p, docs)), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// IndexMarkdown renders the catalog index: products grouped by primary
// category, each linking to its documentation page.
func IndexMarkdown(catalog *models.CatalogData, title string) string {
	if title == "" {
		title = "Product Catalog"
	}

	categoryName := make(map[string]string, len(catalog.Categories))
	for _, c := range catalog.Categories {
		categoryName[c.CategoryID] = c.Name
	}
	primary := make(map[string]string, len(catalog.ProductCategories))
	for _, rel := range catalog.ProductCategories {
		if rel.Primary {
			primary[rel.ProductID] = rel.CategoryID
		}
	}

	grouped := make(map[string][]models.Product)
	for _, p := range catalog.Products {
		name := categoryName[primary[p.ProductID]]
		if name == "" {
			name = "Uncategorized"
		}
		grouped[name] = append(grouped[name], p)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "Generated on: %s\n", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Total Products: %d\n\n", len(catalog.Products))

	names := make([]string, 0, len(grouped))
	for name := range grouped {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Fprintf(&b, "## %s\n\n", name)
		products := grouped[name]
		sort.Slice(products, func(i, j int) bool { return products[i].Name < products[j].Name })

		for i := range products {
			p := &products[i]
			slug := productSlug(p)
			fmt.Fprintf(&b, "### [%s](products/%s/%s.md)\n", p.Name, slug, slug)
			if p.Description != "" {
				desc := p.Description
				if len(desc) > 200 {
					desc = desc[:200] + "..."
				}
				b.WriteString(desc + "\n")
			}
			var details []string
			if codes := p.Metadata["codes"]; codes != "" {
				details = append(details, fmt.Sprintf("**Codes**: %s", codes))
			}
			if sizes := p.Metadata["sizes"]; sizes != "" {
				details = append(details, fmt.Sprintf("**Sizes**: %s", sizes))
			}
			if len(details) > 0 {
				b.WriteString(strings.Join(details, " | ") + "\n")
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

// SaveIndexMarkdown writes the catalog index to dir/index.md.
func SaveIndexMarkdown(catalog *models.CatalogData, title, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, "index.md")
	if err := os.WriteFile(path, []byte(IndexMarkdown(catalog, title)), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func productSlug(p *models.Product) string {
	if u, err := url.Parse(p.URL); err == nil {
		segs := strings.Split(strings.Trim(u.Path, "/"), "/")
		if last := segs[len(segs)-1]; last != "" && last != "product" {
			return last
		}
	}
	return urlutil.Slugify(p.Name)
}
