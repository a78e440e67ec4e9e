package models

import "time"

// MediaType classifies a media asset attached to a product.
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
	MediaAudio MediaType = "audio"
)

// DocumentType classifies a downloadable product document.
type DocumentType string

const (
	DocPDS         DocumentType = "PDS" // Product Data Sheet
	DocSDS         DocumentType = "SDS" // Safety Data Sheet
	DocManual      DocumentType = "manual"
	DocSpec        DocumentType = "specification"
	DocBrochure    DocumentType = "brochure"
	DocCertificate DocumentType = "certificate"
	DocOther       DocumentType = "other"
)

// Product is a single catalog entry extracted from a product page.
type Product struct {
	ProductID   string            `json:"product_id"`
	Name        string            `json:"product_name"`
	URL         string            `json:"product_url"`
	Description string            `json:"description,omitempty"`
	CategoryIDs []string          `json:"category_ids,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// MediaDimensions holds pixel dimensions when known.
type MediaDimensions struct {
	Width  int `json:"width,omitempty"`
	Height int `json:"height,omitempty"`
}

// Media is an image, video, or audio asset associated with a product.
type Media struct {
	MediaID       string           `json:"media_id"`
	ProductID     string           `json:"product_id"`
	Type          MediaType        `json:"media_type"`
	Format        string           `json:"media_format"`
	URL           string           `json:"media_url"`
	SequenceOrder int              `json:"sequence_order"`
	AltText       string           `json:"alt_text,omitempty"`
	Dimensions    *MediaDimensions `json:"dimensions,omitempty"`
	FileSizeKB    int              `json:"file_size_kb,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

// Document is a downloadable file (data sheet, manual, ...) linked from a product page.
type Document struct {
	DocumentID string       `json:"document_id"`
	ProductID  string       `json:"product_id"`
	Type       DocumentType `json:"document_type"`
	Name       string       `json:"document_name"`
	URL        string       `json:"document_url"`
	Version    string       `json:"version,omitempty"`
	UploadedAt *time.Time   `json:"uploaded_at,omitempty"`
	FileSizeKB int          `json:"file_size_kb,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
}

// Category is a node in the product category hierarchy.
type Category struct {
	CategoryID string    `json:"category_id"`
	Name       string    `json:"category_name"`
	ParentID   string    `json:"parent_category_id,omitempty"`
	Slug       string    `json:"slug,omitempty"`
	Level      int       `json:"level"`
	CreatedAt  time.Time `json:"created_at"`
}

// ProductCategory relates a product to a category; one relation per pair.
type ProductCategory struct {
	ProductID  string `json:"product_id"`
	CategoryID string `json:"category_id"`
	Primary    bool   `json:"primary"`
}

// CatalogData aggregates everything a catalog run produced.
type CatalogData struct {
	Products          []Product         `json:"products"`
	Media             []Media           `json:"media"`
	Documents         []Document        `json:"documents"`
	Categories        []Category        `json:"categories"`
	ProductCategories []ProductCategory `json:"product_categories"`
	ScrapedAt         time.Time         `json:"scraped_at"`
	TotalProducts     int               `json:"total_products"`
}
