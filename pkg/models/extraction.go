package models

// Extraction is the raw harvest from one product page: the structured
// product plus the link and media material the downstream processors turn
// into catalog entities.
type Extraction struct {
	Product Product `json:"product"`

	// Gallery images in page order, with their alt texts aligned by index.
	ImageURLs []string `json:"image_urls,omitempty"`
	ImageAlts []string `json:"image_alts,omitempty"`

	// Attachment links (data sheets, manuals) with their anchor texts
	// aligned by index.
	AttachmentURLs  []string `json:"attachment_urls,omitempty"`
	AttachmentTexts []string `json:"attachment_texts,omitempty"`

	// Category breadcrumb names and their links, aligned by index.
	CategoryNames []string `json:"category_names,omitempty"`
	CategoryLinks []string `json:"category_links,omitempty"`

	// ContentHTML is the cleaned product body, kept for markdown rendering
	// and embedded-link scans.
	ContentHTML string `json:"content_html,omitempty"`
}

// Discovery is the link harvest from one catalog listing page.
type Discovery struct {
	ProductLinks    []string `json:"product_links,omitempty"`
	CategoryLinks   []string `json:"category_links,omitempty"`
	PaginationLinks []string `json:"pagination_links,omitempty"`
}
