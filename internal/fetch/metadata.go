package fetch

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/scrapeworks/discovery/pkg/models"
)

// extractMetadata fills title, meta tags, links, images, and scripts from a
// parsed document.
func extractMetadata(doc *goquery.Document, data *models.PageData) {
	if doc == nil || data == nil {
		return
	}

	data.Title = strings.TrimSpace(doc.Find("title").First().Text())

	doc.Find("meta").Each(func(_ int, sel *goquery.Selection) {
		content, _ := sel.Attr("content")
		if name, ok := sel.Attr("name"); ok {
			data.Metadata[name] = content
		}
		if property, ok := sel.Attr("property"); ok {
			data.Metadata[property] = content
		}
	})

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		if href, ok := sel.Attr("href"); ok && href != "" {
			data.Links = append(data.Links, href)
		}
	})

	doc.Find("img[src]").Each(func(_ int, sel *goquery.Selection) {
		if src, ok := sel.Attr("src"); ok && src != "" {
			data.Images = append(data.Images, src)
		}
	})

	doc.Find("script[src]").Each(func(_ int, sel *goquery.Selection) {
		if src, ok := sel.Attr("src"); ok && src != "" {
			data.Scripts = append(data.Scripts, src)
		}
	})
}

// extractContent returns the text and HTML for selector, defaulting to the
// document body.
func extractContent(doc *goquery.Document, selector string) (content, html string) {
	if doc == nil {
		return "", ""
	}

	if selector != "" && selector != "body" {
		if sel := doc.Find(selector); sel.Length() > 0 {
			content = strings.TrimSpace(sel.Text())
			html, _ = sel.Html()
			return content, html
		}
	}

	content = strings.TrimSpace(doc.Find("body").Text())
	html, _ = doc.Find("html").Html()
	return content, html
}
