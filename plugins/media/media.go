// Package media turns the raw image and video material of a product harvest
// into normalized media entities: format detection, sequencing, dedupe, and
// embedded-video discovery.
package media

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/scrapeworks/discovery/internal/plugin"
	"github.com/scrapeworks/discovery/internal/registry"
	"github.com/scrapeworks/discovery/internal/utils/idgen"
	"github.com/scrapeworks/discovery/pkg/models"
)

// Name is the registry name of this plugin.
const Name = "media"

func init() {
	factory := plugin.BareFactory(func() plugin.Plugin { return New() })
	registry.RegisterFactory("MediaPlugin", factory)
	registry.RegisterFactory("extensions.media", factory)
	registry.Default.Register(Name, plugin.TypeGeneral, factory, registry.Meta{
		Version:      "1.0",
		Description:  "Media classifier and sequencer",
		Capabilities: []string{"media_processing"},
	})
}

var youtubePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)https?://(?:www\.)?youtube\.com/watch\?v=([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`(?i)https?://(?:www\.)?youtube\.com/embed/([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`(?i)https?://youtu\.be/([a-zA-Z0-9_-]+)`),
}

// Processor is the media_processing plugin. Process takes a
// *models.Extraction and returns []models.Media.
type Processor struct{}

// New builds a media Processor.
func New() *Processor { return &Processor{} }

// Setup implements plugin.Plugin.
func (p *Processor) Setup() error { return nil }

// Supports implements the runtime capability check.
func (p *Processor) Supports(capability string) bool {
	return capability == "media_processing"
}

// Process extracts the media entities from one product harvest.
func (p *Processor) Process(ctx context.Context, data any) (any, error) {
	ext, ok := data.(*models.Extraction)
	if !ok {
		return nil, fmt.Errorf("media: want *models.Extraction, got %T", data)
	}

	items := p.images(ext)
	items = append(items, p.videos(ext, len(items))...)

	if len(items) > 0 {
		log.Debug().
			Str("product", ext.Product.ProductID).
			Int("media", len(items)).
			Msg("Media processed")
	}
	return items, nil
}

// images builds one Media per gallery image, in page order, skipping
// duplicate URLs.
func (p *Processor) images(ext *models.Extraction) []models.Media {
	now := time.Now()
	seen := make(map[string]bool, len(ext.ImageURLs))
	var items []models.Media

	for i, imgURL := range ext.ImageURLs {
		if imgURL == "" || seen[imgURL] {
			continue
		}
		seen[imgURL] = true

		seq := len(items) + 1
		var alt string
		if i < len(ext.ImageAlts) {
			alt = ext.ImageAlts[i]
		}
		items = append(items, models.Media{
			MediaID:       idgen.MediaID(ext.Product.ProductID, imgURL, seq),
			ProductID:     ext.Product.ProductID,
			Type:          models.MediaImage,
			Format:        DetectFormat(imgURL),
			URL:           imgURL,
			SequenceOrder: seq,
			AltText:       alt,
			CreatedAt:     now,
		})
	}
	return items
}

// videos scans the product body for embedded YouTube players.
func (p *Processor) videos(ext *models.Extraction, offset int) []models.Media {
	now := time.Now()
	seen := make(map[string]bool)
	var items []models.Media

	for _, pattern := range youtubePatterns {
		for _, match := range pattern.FindAllStringSubmatch(ext.ContentHTML, -1) {
			videoID := match[1]
			if seen[videoID] {
				continue
			}
			seen[videoID] = true

			seq := offset + len(items) + 1
			embedURL := "https://www.youtube.com/embed/" + videoID
			items = append(items, models.Media{
				MediaID:       idgen.MediaID(ext.Product.ProductID, embedURL, seq),
				ProductID:     ext.Product.ProductID,
				Type:          models.MediaVideo,
				Format:        "youtube",
				URL:           embedURL,
				SequenceOrder: seq,
				CreatedAt:     now,
			})
		}
	}
	return items
}

// DetectFormat infers the media format from the URL's file extension,
// falling back to jpg for extensionless image CDN URLs.
func DetectFormat(mediaURL string) string {
	lower := strings.ToLower(mediaURL)
	if idx := strings.IndexAny(lower, "?#"); idx >= 0 {
		lower = lower[:idx]
	}
	for _, ext := range []string{"png", "jpg", "jpeg", "webp", "gif", "svg", "mp4", "webm", "mp3"} {
		if strings.HasSuffix(lower, "."+ext) {
			return ext
		}
	}
	return "jpg"
}
