package fetch

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"

	"github.com/scrapeworks/discovery/internal/ratelimit"
	"github.com/scrapeworks/discovery/internal/utils/urlutil"
	"github.com/scrapeworks/discovery/pkg/models"
)

// Browser fetches script-rendered pages with headless Chrome. It is the
// slow path: use it only for catalogs the static and hybrid engines cannot
// see.
type Browser struct {
	limiter    ratelimit.RateLimiter
	chromePath string
	headless   bool
	timeout    time.Duration
	userAgent  string
}

// NewBrowser creates a Browser fetcher. chromePath may be empty, in which
// case the executable is located automatically.
func NewBrowser(lim ratelimit.RateLimiter, chromePath string, headless bool, timeout time.Duration, userAgent string) *Browser {
	return &Browser{
		limiter:    lim,
		chromePath: chromePath,
		headless:   headless,
		timeout:    timeout,
		userAgent:  userAgent,
	}
}

// Name returns the fetcher implementation name.
func (b *Browser) Name() string { return "browser" }

// Fetch renders the page in headless Chrome and parses the resulting DOM.
func (b *Browser) Fetch(ctx context.Context, opts models.RequestOptions) (*models.PageData, error) {
	start := time.Now()

	if err := urlutil.Validate(opts.URL); err != nil {
		return nil, err
	}
	if b.limiter != nil {
		if err := b.limiter.Wait(ctx, opts.URL); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = b.timeout
	}
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("headless", b.headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
	)
	if path := b.findChrome(); path != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(path))
	}
	if b.userAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(b.userAgent))
	}
	if opts.Proxy != "" {
		allocOpts = append(allocOpts, chromedp.ProxyServer(opts.Proxy))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer allocCancel()
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	var html string
	var statusCode int64 = 200
	chromedp.ListenTarget(browserCtx, func(ev any) {
		if resp, ok := ev.(*network.EventResponseReceived); ok {
			if resp.Type == network.ResourceTypeDocument && resp.Response.URL == opts.URL {
				statusCode = resp.Response.Status
			}
		}
	})

	actions := []chromedp.Action{
		network.Enable(),
		chromedp.Navigate(opts.URL),
	}
	if opts.Selector != "" && opts.Selector != "body" {
		actions = append(actions, chromedp.WaitVisible(opts.Selector, chromedp.ByQuery))
	} else {
		actions = append(actions, chromedp.WaitReady("body", chromedp.ByQuery))
	}
	actions = append(actions, chromedp.OuterHTML("html", &html, chromedp.ByQuery))

	if err := chromedp.Run(browserCtx, actions...); err != nil {
		return nil, fmt.Errorf("browser fetch %s: %w", opts.URL, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse rendered %s: %w", opts.URL, err)
	}

	data := &models.PageData{
		URL:        opts.URL,
		StatusCode: int(statusCode),
		HTML:       html,
		Metadata:   make(map[string]string),
		FetchedAt:  time.Now(),
	}
	extractMetadata(doc, data)
	data.Content, _ = extractContent(doc, opts.Selector)
	urlutil.ResolvePageLinks(data)
	data.ResponseTime = time.Since(start).Milliseconds()

	log.Debug().
		Str("url", opts.URL).
		Int64("elapsed_ms", data.ResponseTime).
		Msg("Browser fetch complete")
	return data, nil
}

// findChrome locates the Chrome/Chromium executable: explicit path first,
// then CHROME_PATH, then standard per-OS locations, then PATH.
func (b *Browser) findChrome() string {
	if b.chromePath != "" && isExecutable(b.chromePath) {
		return b.chromePath
	}
	if path := os.Getenv("CHROME_PATH"); path != "" && isExecutable(path) {
		return path
	}

	var candidates []string
	switch runtime.GOOS {
	case "darwin":
		candidates = []string{
			"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
			"/Applications/Chromium.app/Contents/MacOS/Chromium",
		}
	case "windows":
		for _, base := range []string{os.Getenv("ProgramFiles"), os.Getenv("ProgramFiles(x86)"), os.Getenv("LocalAppData")} {
			if base != "" {
				candidates = append(candidates,
					filepath.Join(base, `Google\Chrome\Application\chrome.exe`),
					filepath.Join(base, `Chromium\Application\chrome.exe`),
				)
			}
		}
	default:
		candidates = []string{
			"/usr/bin/google-chrome-stable",
			"/usr/bin/google-chrome",
			"/usr/bin/chromium-browser",
			"/usr/bin/chromium",
			"/snap/bin/chromium",
		}
	}
	for _, path := range candidates {
		if isExecutable(path) {
			return path
		}
	}

	for _, name := range []string{"google-chrome", "chromium", "chromium-browser", "chrome"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	log.Debug().Msg("No Chrome executable found; relying on chromedp defaults")
	return ""
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	return runtime.GOOS == "windows" || info.Mode()&0o111 != 0
}
