// Package urlutil holds URL validation and resolution helpers shared by the
// fetchers and extraction plugins.
package urlutil

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/scrapeworks/discovery/pkg/models"
)

// Validate checks that urlStr is an absolute http(s) URL with a host.
func Validate(urlStr string) error {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme: must be http or https, got %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return fmt.Errorf("invalid URL: missing host")
	}
	return nil
}

// Resolve resolves a possibly-relative href against base. On any parse
// failure the href is returned unchanged.
func Resolve(base, href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if u.IsAbs() {
		return href
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	return baseURL.ResolveReference(u).String()
}

// ResolvePageLinks rewrites all link-like fields of data to absolute URLs
// against the page's own URL.
func ResolvePageLinks(data *models.PageData) {
	for i, link := range data.Links {
		data.Links[i] = Resolve(data.URL, link)
	}
	for i, img := range data.Images {
		data.Images[i] = Resolve(data.URL, img)
	}
	for i, s := range data.Scripts {
		data.Scripts[i] = Resolve(data.URL, s)
	}
}

// Domain extracts the host portion of a URL, tolerating bare hosts.
func Domain(urlStr string) string {
	s := strings.TrimPrefix(strings.TrimPrefix(urlStr, "https://"), "http://")
	if idx := strings.Index(s, "/"); idx > 0 {
		s = s[:idx]
	}
	return s
}

// Unique removes duplicate URLs, preserving first-seen order.
func Unique(urls []string) []string {
	seen := make(map[string]bool, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if !seen[u] {
			seen[u] = true
			out = append(out, u)
		}
	}
	return out
}

// Slugify turns a name into a URL-friendly identifier.
func Slugify(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_' || r == '/':
			b.WriteRune('-')
		}
	}
	return strings.Trim(b.String(), "-")
}
