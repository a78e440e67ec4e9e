package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/scrapeworks/discovery/pkg/models"
)

// SaveProductsCSV writes a flat spreadsheet view of the catalog's products to
// path. Media and document counts are joined in so the file stands on its
// own.
func SaveProductsCSV(catalog *models.CatalogData, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	defer f.Close()

	mediaCount := make(map[string]int, len(catalog.Media))
	for _, m := range catalog.Media {
		mediaCount[m.ProductID]++
	}
	docCount := make(map[string]int, len(catalog.Documents))
	for _, d := range catalog.Documents {
		docCount[d.ProductID]++
	}
	categoryName := make(map[string]string, len(catalog.Categories))
	for _, c := range catalog.Categories {
		categoryName[c.CategoryID] = c.Name
	}

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"product_id", "name", "url", "description", "categories", "media_count", "document_count", "updated_at"}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, p := range catalog.Products {
		names := make([]string, 0, len(p.CategoryIDs))
		for _, id := range p.CategoryIDs {
			if name, ok := categoryName[id]; ok {
				names = append(names, name)
			}
		}
		row := []string{
			p.ProductID,
			p.Name,
			p.URL,
			p.Description,
			strings.Join(names, "; "),
			strconv.Itoa(mediaCount[p.ProductID]),
			strconv.Itoa(docCount[p.ProductID]),
			p.UpdatedAt.Format("2006-01-02"),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}
