// Package categories maps the category breadcrumbs of product harvests into
// a deduplicated category hierarchy plus product-category relations. The
// mapper is stateful across products so one run yields one category tree.
package categories

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/scrapeworks/discovery/internal/plugin"
	"github.com/scrapeworks/discovery/internal/registry"
	"github.com/scrapeworks/discovery/internal/utils/idgen"
	"github.com/scrapeworks/discovery/internal/utils/urlutil"
	"github.com/scrapeworks/discovery/pkg/models"
)

// Name is the registry name of this plugin.
const Name = "categories"

func init() {
	factory := plugin.BareFactory(func() plugin.Plugin { return NewMapper() })
	registry.RegisterFactory("CategoriesPlugin", factory)
	registry.RegisterFactory("extensions.categories", factory)
	registry.Default.Register(Name, plugin.TypeGeneral, factory, registry.Meta{
		Version:      "1.0",
		Description:  "Category hierarchy mapper",
		Capabilities: []string{"category_mapping"},
	})
}

// Assignment is the result of mapping one product's breadcrumbs: the
// relations for that product plus any categories first seen on it.
type Assignment struct {
	NewCategories []models.Category
	Relations     []models.ProductCategory
}

// Mapper is the category_mapping plugin. Process takes a *models.Extraction
// and returns an *Assignment. Known categories are cached by name across
// calls, so repeated breadcrumbs map to one category node.
type Mapper struct {
	byName map[string]*models.Category
}

// NewMapper builds an empty category Mapper.
func NewMapper() *Mapper {
	return &Mapper{byName: make(map[string]*models.Category)}
}

// Setup implements plugin.Plugin.
func (m *Mapper) Setup() error { return nil }

// Supports implements the runtime capability check.
func (m *Mapper) Supports(capability string) bool {
	return capability == "category_mapping"
}

// Process maps one product's category breadcrumbs. The first category of a
// product becomes its primary relation.
func (m *Mapper) Process(ctx context.Context, data any) (any, error) {
	ext, ok := data.(*models.Extraction)
	if !ok {
		return nil, fmt.Errorf("categories: want *models.Extraction, got %T", data)
	}

	out := &Assignment{}
	seen := make(map[string]bool, len(ext.CategoryNames))

	for i, name := range ext.CategoryNames {
		name = strings.Join(strings.Fields(name), " ")
		if name == "" {
			continue
		}
		var link string
		if i < len(ext.CategoryLinks) {
			link = ext.CategoryLinks[i]
		}

		cat, isNew := m.getOrCreate(name, link)
		if isNew {
			out.NewCategories = append(out.NewCategories, *cat)
		}
		if seen[cat.CategoryID] {
			continue
		}
		seen[cat.CategoryID] = true
		out.Relations = append(out.Relations, models.ProductCategory{
			ProductID:  ext.Product.ProductID,
			CategoryID: cat.CategoryID,
			Primary:    len(out.Relations) == 0,
		})
	}

	if len(out.Relations) > 0 {
		log.Debug().
			Str("product", ext.Product.ProductID).
			Int("relations", len(out.Relations)).
			Msg("Categories mapped")
	}
	return out, nil
}

// getOrCreate returns the cached category for name, creating it (and
// deriving level and parent from the category URL path) on first sight.
func (m *Mapper) getOrCreate(name, link string) (*models.Category, bool) {
	key := strings.ToLower(name)
	if cat, ok := m.byName[key]; ok {
		return cat, false
	}

	cat := &models.Category{
		CategoryID: idgen.CategoryID(name),
		Name:       name,
		Slug:       urlutil.Slugify(name),
		Level:      levelFromLink(link),
		ParentID:   m.parentFromLink(link),
		CreatedAt:  time.Now(),
	}
	m.byName[key] = cat
	return cat, true
}

// All returns every category seen so far, parents before children.
func (m *Mapper) All() []models.Category {
	out := make([]models.Category, 0, len(m.byName))
	for _, cat := range m.byName {
		out = append(out, *cat)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Level != out[j].Level {
			return out[i].Level < out[j].Level
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Path walks parent links from categoryID up to the root, returning the
// names root-first.
func (m *Mapper) Path(categoryID string) []string {
	byID := make(map[string]*models.Category, len(m.byName))
	for _, cat := range m.byName {
		byID[cat.CategoryID] = cat
	}

	var names []string
	for id := categoryID; id != ""; {
		cat, ok := byID[id]
		if !ok {
			break
		}
		names = append([]string{cat.Name}, names...)
		id = cat.ParentID
	}
	return names
}

// levelFromLink estimates hierarchy depth from the category URL path: each
// extra path segment beyond the category prefix is one level, capped at 3.
func levelFromLink(link string) int {
	parts := categoryPathParts(link)
	if len(parts) > 2 {
		level := len(parts) - 1
		if level > 3 {
			level = 3
		}
		return level
	}
	return 0
}

// parentFromLink finds an already-seen category whose slug is the
// second-to-last path segment of link.
func (m *Mapper) parentFromLink(link string) string {
	parts := categoryPathParts(link)
	if len(parts) < 2 {
		return ""
	}
	parentSlug := parts[len(parts)-2]
	for _, cat := range m.byName {
		if cat.Slug == parentSlug {
			return cat.CategoryID
		}
	}
	return ""
}

func categoryPathParts(link string) []string {
	if link == "" {
		return nil
	}
	u, err := url.Parse(link)
	if err != nil {
		return nil
	}
	var parts []string
	for _, part := range strings.Split(u.Path, "/") {
		if part != "" && part != "product-category" {
			parts = append(parts, part)
		}
	}
	return parts
}
