package extract

import (
	"context"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/scrapeworks/discovery/internal/config"
	"github.com/scrapeworks/discovery/pkg/models"
)

const productHTML = `<!DOCTYPE html>
<html><body>
<h1 class="product_title">  All-Purpose
Cleaner  </h1>
<div class="woocommerce-product-details__short-description">Cleans everything.</div>
<div class="woocommerce-tabs"><h2>Details</h2><p>Dilute 1:50.</p></div>
<div class="woocommerce-product-gallery">
  <img src="/img/apc-front.jpg" alt="Front">
  <img src="/img/apc-front.jpg" alt="Front again">
  <img src="/img/apc-back.jpg" alt="Back">
</div>
<div class="attachments">
  <a href="/docs/apc-pds.pdf">Product Data Sheet</a>
  <a href="/docs/apc-pds.pdf">PDS duplicate</a>
  <a href="/docs/apc-sds.pdf">Safety Data Sheet</a>
</div>
<span class="posted_in">
  <a href="/product-category/kitchen/">Kitchen</a>
  <a href="/product-category/kitchen/degreasers/">Degreasers</a>
</span>
</body></html>`

func TestProcessExtractsProduct(t *testing.T) {
	e := New(config.Config{})
	page := &models.PageData{URL: "https://example.com/product/all-purpose-cleaner/", HTML: productHTML}

	out, err := e.Process(context.Background(), page)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	ext := out.(*models.Extraction)

	if ext.Product.Name != "All-Purpose Cleaner" {
		t.Errorf("Name = %q, want whitespace collapsed", ext.Product.Name)
	}
	if !strings.HasPrefix(ext.Product.ProductID, "prod_all-purpose-cleaner_") {
		t.Errorf("ProductID = %q", ext.Product.ProductID)
	}
	if ext.Product.Description != "Cleans everything." {
		t.Errorf("Description = %q", ext.Product.Description)
	}
	if !strings.Contains(ext.ContentHTML, "Dilute 1:50.") {
		t.Errorf("ContentHTML = %q", ext.ContentHTML)
	}

	if len(ext.ImageURLs) != 2 {
		t.Fatalf("ImageURLs = %v, want duplicates removed", ext.ImageURLs)
	}
	if ext.ImageURLs[0] != "https://example.com/img/apc-front.jpg" {
		t.Errorf("ImageURLs[0] = %q, want resolved", ext.ImageURLs[0])
	}
	if ext.ImageAlts[0] != "Front" || ext.ImageAlts[1] != "Back" {
		t.Errorf("ImageAlts = %v, want aligned with surviving URLs", ext.ImageAlts)
	}

	if len(ext.AttachmentURLs) != 2 {
		t.Fatalf("AttachmentURLs = %v", ext.AttachmentURLs)
	}
	if ext.AttachmentTexts[0] != "Product Data Sheet" {
		t.Errorf("AttachmentTexts[0] = %q", ext.AttachmentTexts[0])
	}

	if len(ext.CategoryNames) != 2 || ext.CategoryNames[0] != "Kitchen" {
		t.Errorf("CategoryNames = %v", ext.CategoryNames)
	}
	if ext.CategoryLinks[1] != "https://example.com/product-category/kitchen/degreasers/" {
		t.Errorf("CategoryLinks[1] = %q", ext.CategoryLinks[1])
	}
}

func TestProcessFailsWithoutTitle(t *testing.T) {
	e := New(config.Config{})
	page := &models.PageData{URL: "https://example.com/product/x/", HTML: "<html><body><p>nothing here</p></body></html>"}

	if _, err := e.Process(context.Background(), page); err == nil || !strings.Contains(err.Error(), "no product title") {
		t.Errorf("err = %v", err)
	}
}

func TestProcessRejectsWrongType(t *testing.T) {
	e := New(config.Config{})
	if _, err := e.Process(context.Background(), "not a page"); err == nil {
		t.Error("non-PageData input should be rejected")
	}
}

func TestSelectorOverridesFromConfig(t *testing.T) {
	cfg := config.Config{
		"extraction": map[string]any{
			"selectors": map[string]any{
				"title": ".custom-name",
			},
		},
	}
	e := New(cfg)
	page := &models.PageData{
		URL:  "https://example.com/product/custom/",
		HTML: `<html><body><span class="custom-name">Custom Cleaner</span></body></html>`,
	}

	out, err := e.Process(context.Background(), page)
	if err != nil {
		t.Fatal(err)
	}
	if got := out.(*models.Extraction).Product.Name; got != "Custom Cleaner" {
		t.Errorf("Name = %q", got)
	}
}

func TestDiscoverLinks(t *testing.T) {
	listing := `<html><body>
	<a class="woocommerce-LoopProduct-link" href="/product/degreaser/">Degreaser</a>
	<a href="/product/degreaser/">dup</a>
	<a href="/product/window-wash/">Window Wash</a>
	<a href="/product-category/kitchen/">Kitchen</a>
	<nav class="woocommerce-pagination"><a href="/shop/page/2/">2</a></nav>
	</body></html>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(listing))
	if err != nil {
		t.Fatal(err)
	}
	d := DiscoverLinks("https://example.com/shop/", doc)

	if len(d.ProductLinks) != 2 {
		t.Errorf("ProductLinks = %v, want deduped", d.ProductLinks)
	}
	if d.ProductLinks[0] != "https://example.com/product/degreaser/" {
		t.Errorf("ProductLinks[0] = %q", d.ProductLinks[0])
	}
	if len(d.CategoryLinks) != 1 || d.CategoryLinks[0] != "https://example.com/product-category/kitchen/" {
		t.Errorf("CategoryLinks = %v", d.CategoryLinks)
	}
	if len(d.PaginationLinks) != 1 || d.PaginationLinks[0] != "https://example.com/shop/page/2/" {
		t.Errorf("PaginationLinks = %v", d.PaginationLinks)
	}
}
