// Package downloader streams product documents and media to disk, with
// retry, a size cap, and optional progress reporting.
package downloader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"

	"github.com/scrapeworks/discovery/internal/registry"
	"github.com/scrapeworks/discovery/internal/retry"
)

func init() {
	registry.MarkAvailable("downloader")
}

// Result reports the outcome of one download.
type Result struct {
	URL       string
	FilePath  string
	Size      int64
	Success   bool
	Err       error
	StartTime time.Time
	Duration  time.Duration
}

// Options configures download behavior.
type Options struct {
	OutputDir     string
	Filename      string
	Headers       map[string]string
	MaxFileSizeMB int
	// ShowProgress draws a terminal progress bar per file.
	ShowProgress bool
}

// Downloader streams single files to disk.
type Downloader struct {
	client    *http.Client
	retryCfg  retry.Config
	userAgent string
}

// New creates a Downloader with the given request timeout.
func New(timeout time.Duration, userAgent string) *Downloader {
	if userAgent == "" {
		userAgent = "discovery/1.0 (+https://github.com/scrapeworks/discovery)"
	}
	return &Downloader{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		retryCfg:  retry.DefaultConfig(),
		userAgent: userAgent,
	}
}

// Download streams one file to opts.OutputDir. Failures are reported in the
// Result rather than returned, so batch callers can keep going.
func (d *Downloader) Download(ctx context.Context, fileURL string, opts Options) *Result {
	res := &Result{URL: fileURL, StartTime: time.Now()}
	defer func() { res.Duration = time.Since(res.StartTime) }()

	if _, err := url.Parse(fileURL); err != nil {
		res.Err = fmt.Errorf("invalid URL: %w", err)
		return res
	}
	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		res.Err = fmt.Errorf("create output dir: %w", err)
		return res
	}

	filename := opts.Filename
	if filename == "" {
		filename = fileURL
	}
	res.FilePath = filepath.Join(opts.OutputDir, sanitizeFilename(filename))

	err := retry.WithRetry(ctx, d.retryCfg, func() error {
		return d.fetchToFile(ctx, fileURL, res.FilePath, opts)
	})
	if err != nil {
		res.Err = err
		os.Remove(res.FilePath)
		return res
	}

	if info, err := os.Stat(res.FilePath); err == nil {
		res.Size = info.Size()
	}
	res.Success = true

	log.Debug().
		Str("url", fileURL).
		Str("file", res.FilePath).
		Int64("bytes", res.Size).
		Dur("duration", time.Since(res.StartTime)).
		Msg("Download completed")
	return res
}

func (d *Downloader) fetchToFile(ctx context.Context, fileURL, filePath string, opts Options) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", d.userAgent)
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &retry.StatusError{StatusCode: resp.StatusCode, URL: fileURL}
	}

	maxBytes := int64(opts.MaxFileSizeMB) * 1024 * 1024
	if maxBytes > 0 && resp.ContentLength > maxBytes {
		return fmt.Errorf("file exceeds size cap: %d bytes (max %d)", resp.ContentLength, maxBytes)
	}

	out, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer out.Close()

	var dst io.Writer = out
	if opts.ShowProgress {
		bar := progressbar.DefaultBytes(resp.ContentLength, filepath.Base(filePath))
		dst = io.MultiWriter(out, bar)
	}

	var src io.Reader = resp.Body
	if maxBytes > 0 {
		// Content-Length can lie; enforce the cap while streaming too.
		src = io.LimitReader(resp.Body, maxBytes+1)
	}

	written, err := io.Copy(dst, src)
	if err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	if maxBytes > 0 && written > maxBytes {
		return fmt.Errorf("file exceeds size cap: more than %d bytes", maxBytes)
	}
	return nil
}

// sanitizeFilename derives a safe file name from a URL or name, stripping
// path separators and characters that break filesystems, and hashing the
// query string into the name so distinct URLs stay distinct.
func sanitizeFilename(input string) string {
	var queryHash string
	if u, err := url.Parse(input); err == nil && u.Host != "" {
		parts := strings.Split(u.Path, "/")
		if len(parts) > 0 {
			input = parts[len(parts)-1]
		}
		if u.RawQuery != "" {
			queryHash = "_" + hashString(u.RawQuery)
		}
	}

	replacer := strings.NewReplacer(
		"/", "_", "\\", "_", "..", "_", ":", "_", "*", "_",
		"?", "_", "\"", "_", "<", "_", ">", "_", "|", "_",
	)
	input = strings.Trim(strings.TrimSpace(replacer.Replace(input)), ".")

	ext := filepath.Ext(input)
	stem := strings.TrimSuffix(input, ext)
	if queryHash != "" {
		input = stem + queryHash + ext
	}

	if input == "" {
		input = fmt.Sprintf("download_%d", time.Now().Unix())
	}
	if len(input) > 200 {
		input = input[:200]
	}
	return input
}

func hashString(s string) string {
	hash := 0
	for _, c := range s {
		hash = ((hash << 5) - hash) + int(c)
	}
	if hash < 0 {
		hash = -hash
	}
	return fmt.Sprintf("%x", hash)
}
