package models

import "time"

// PageData represents the fetched data from a web page
type PageData struct {
	URL          string            `json:"url"`
	StatusCode   int               `json:"status_code"`
	Title        string            `json:"title,omitempty"`
	Content      string            `json:"content,omitempty"`
	HTML         string            `json:"html,omitempty"`
	Headers      map[string]string `json:"headers,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	Links        []string          `json:"links,omitempty"`
	Images       []string          `json:"images,omitempty"`
	Scripts      []string          `json:"scripts,omitempty"`
	FetchedAt    time.Time         `json:"fetched_at"`
	ResponseTime int64             `json:"response_time_ms"`
}

// FetchMode selects the fetch engine to use
type FetchMode string

const (
	ModeAuto    FetchMode = "auto"
	ModeStatic  FetchMode = "static"
	ModeBrowser FetchMode = "browser"
)

// RequestOptions contains options for fetching a page
type RequestOptions struct {
	URL         string
	Mode        FetchMode
	Selector    string
	Headers     map[string]string
	SessionName string
	Timeout     time.Duration
	Proxy       string
}
