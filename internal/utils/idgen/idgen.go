// Package idgen derives stable, readable identifiers for catalog entities.
// IDs embed a slug for humans and a URL hash for uniqueness, so repeated
// runs over the same catalog produce the same IDs.
package idgen

import (
	"crypto/md5"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var (
	slugJunk  = regexp.MustCompile(`[^a-zA-Z0-9\-_]`)
	nameJunk  = regexp.MustCompile(`[^a-z0-9\s]`)
	nameSpace = regexp.MustCompile(`\s+`)
)

// ProductID derives an identifier from the product page URL, preferring the
// path segment after "product" as the readable part.
func ProductID(productURL string) string {
	slug := "unknown"
	if u, err := url.Parse(productURL); err == nil {
		parts := splitPath(u.Path)
		for i, part := range parts {
			if part == "product" && i+1 < len(parts) {
				slug = parts[i+1]
				break
			}
		}
		if slug == "unknown" && len(parts) > 0 {
			slug = parts[len(parts)-1]
		}
	}
	slug = slugJunk.ReplaceAllString(slug, "")
	return fmt.Sprintf("prod_%s_%s", slug, shortHash(productURL, 8))
}

// MediaID derives an identifier for a media asset within a product.
func MediaID(productID, mediaURL string, sequence int) string {
	return fmt.Sprintf("med_%s_%03d_%s", productID, sequence, shortHash(mediaURL, 8))
}

// DocumentID derives an identifier for a document attached to a product.
func DocumentID(productID, documentURL string) string {
	return fmt.Sprintf("doc_%s_%s", productID, shortHash(documentURL, 8))
}

// CategoryID derives an identifier from a category name.
func CategoryID(name string) string {
	clean := nameJunk.ReplaceAllString(strings.ToLower(name), "")
	clean = nameSpace.ReplaceAllString(strings.TrimSpace(clean), "_")
	return fmt.Sprintf("cat_%s_%s", clean, shortHash(name, 6))
}

func shortHash(s string, n int) string {
	sum := md5.Sum([]byte(s))
	return fmt.Sprintf("%x", sum)[:n]
}

func splitPath(p string) []string {
	var out []string
	for _, part := range strings.Split(p, "/") {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
