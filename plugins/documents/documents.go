// Package documents turns attachment links into normalized document
// entities: type detection from filenames and link text, version extraction,
// dedupe, and latest-by-type selection.
package documents

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/scrapeworks/discovery/internal/plugin"
	"github.com/scrapeworks/discovery/internal/registry"
	"github.com/scrapeworks/discovery/internal/utils/idgen"
	"github.com/scrapeworks/discovery/pkg/models"
)

// Name is the registry name of this plugin.
const Name = "documents"

func init() {
	factory := plugin.BareFactory(func() plugin.Plugin { return New() })
	registry.RegisterFactory("DocumentsPlugin", factory)
	registry.RegisterFactory("extensions.documents", factory)
	registry.Default.Register(Name, plugin.TypeGeneral, factory, registry.Meta{
		Version:      "1.0",
		Description:  "Document classifier with version tracking",
		Capabilities: []string{"document_processing"},
	})
}

var (
	pdfLinkPattern = regexp.MustCompile(`(?i)href=["']([^"']*\.pdf[^"']*)["']`)

	versionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`v(\d+(?:\.\d+)*)`),
		regexp.MustCompile(`version[_\s]*(\d+(?:\.\d+)*)`),
		regexp.MustCompile(`rev[_\s]*(\d+)`),
		regexp.MustCompile(`r(\d+)`),
		regexp.MustCompile(`(\d+(?:\.\d+)+)`),
	}
)

// Handler is the document_processing plugin. Process takes a
// *models.Extraction and returns []models.Document.
type Handler struct{}

// New builds a document Handler.
func New() *Handler { return &Handler{} }

// Setup implements plugin.Plugin.
func (h *Handler) Setup() error { return nil }

// Supports implements the runtime capability check.
func (h *Handler) Supports(capability string) bool {
	return capability == "document_processing"
}

// Process extracts the document entities from one product harvest:
// attachment links first, then PDF links embedded in the product body.
func (h *Handler) Process(ctx context.Context, data any) (any, error) {
	ext, ok := data.(*models.Extraction)
	if !ok {
		return nil, fmt.Errorf("documents: want *models.Extraction, got %T", data)
	}

	var docs []models.Document
	for i, docURL := range ext.AttachmentURLs {
		if docURL == "" {
			continue
		}
		var text string
		if i < len(ext.AttachmentTexts) {
			text = ext.AttachmentTexts[i]
		}
		docs = append(docs, buildDocument(ext.Product.ProductID, docURL, text))
	}

	for _, match := range pdfLinkPattern.FindAllStringSubmatch(ext.ContentHTML, -1) {
		docs = append(docs, buildDocument(ext.Product.ProductID, match[1], ""))
	}

	docs = dedupe(docs)
	if len(docs) > 0 {
		log.Debug().
			Str("product", ext.Product.ProductID).
			Int("documents", len(docs)).
			Msg("Documents processed")
	}
	return docs, nil
}

func buildDocument(productID, docURL, linkText string) models.Document {
	filename := "document"
	if u, err := url.Parse(docURL); err == nil && u.Path != "" {
		parts := strings.Split(u.Path, "/")
		filename = parts[len(parts)-1]
	}

	name := strings.Join(strings.Fields(linkText), " ")
	if name == "" {
		name = filename
	}

	docType := DetectType(filename, linkText)
	version := ExtractVersion(filename)
	if version == "" {
		version = ExtractVersion(linkText)
	}

	return models.Document{
		DocumentID: idgen.DocumentID(productID, docURL),
		ProductID:  productID,
		Type:       docType,
		Name:       name,
		URL:        docURL,
		Version:    version,
		CreatedAt:  time.Now(),
	}
}

func dedupe(docs []models.Document) []models.Document {
	seen := make(map[string]bool, len(docs))
	out := docs[:0]
	for _, d := range docs {
		if seen[d.URL] {
			continue
		}
		seen[d.URL] = true
		out = append(out, d)
	}
	return out
}

// DetectType classifies a document by terms in its filename or link text.
func DetectType(filename, linkText string) models.DocumentType {
	haystack := strings.ToLower(filename) + " " + strings.ToLower(linkText)
	contains := func(terms ...string) bool {
		for _, t := range terms {
			if strings.Contains(haystack, t) {
				return true
			}
		}
		return false
	}

	switch {
	case contains("pds", "product data sheet", "product-data-sheet"):
		return models.DocPDS
	case contains("sds", "safety data sheet", "safety-data-sheet", "msds"):
		return models.DocSDS
	case contains("manual", "user guide", "instructions"):
		return models.DocManual
	case contains("spec", "specification", "technical"):
		return models.DocSpec
	case contains("brochure", "flyer", "leaflet"):
		return models.DocBrochure
	case contains("certificate", "cert", "certification"):
		return models.DocCertificate
	default:
		return models.DocOther
	}
}

// ExtractVersion pulls a version string like "1.2" or "v3" out of a
// filename or link text, or returns "".
func ExtractVersion(s string) string {
	lower := strings.ToLower(s)
	for _, pattern := range versionPatterns {
		if m := pattern.FindStringSubmatch(lower); m != nil {
			return m[1]
		}
	}
	return ""
}

// GroupByType buckets documents by their type.
func GroupByType(docs []models.Document) map[models.DocumentType][]models.Document {
	grouped := make(map[models.DocumentType][]models.Document)
	for _, d := range docs {
		grouped[d.Type] = append(grouped[d.Type], d)
	}
	return grouped
}

// SortByVersion orders documents highest version first; unversioned
// documents sort last.
func SortByVersion(docs []models.Document) []models.Document {
	sorted := make([]models.Document, len(docs))
	copy(sorted, docs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return compareVersions(sorted[i].Version, sorted[j].Version) > 0
	})
	return sorted
}

// LatestByType returns the highest-versioned document of the given type, or
// false when the product has none.
func LatestByType(docs []models.Document, docType models.DocumentType) (models.Document, bool) {
	var ofType []models.Document
	for _, d := range docs {
		if d.Type == docType {
			ofType = append(ofType, d)
		}
	}
	if len(ofType) == 0 {
		return models.Document{}, false
	}
	return SortByVersion(ofType)[0], true
}

func compareVersions(a, b string) int {
	pa := versionParts(a)
	pb := versionParts(b)
	for i := 0; i < len(pa) || i < len(pb); i++ {
		var va, vb int
		if i < len(pa) {
			va = pa[i]
		}
		if i < len(pb) {
			vb = pb[i]
		}
		if va != vb {
			if va > vb {
				return 1
			}
			return -1
		}
	}
	return 0
}

func versionParts(v string) []int {
	if v == "" {
		return nil
	}
	fields := strings.Split(v, ".")
	parts := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return parts
		}
		parts = append(parts, n)
	}
	return parts
}
