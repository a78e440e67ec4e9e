package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/scrapeworks/discovery/internal/auth"
	"github.com/scrapeworks/discovery/internal/cache"
	"github.com/scrapeworks/discovery/internal/proxy"
	"github.com/scrapeworks/discovery/internal/ratelimit"
	"github.com/scrapeworks/discovery/internal/retry"
	"github.com/scrapeworks/discovery/internal/utils/urlutil"
	"github.com/scrapeworks/discovery/pkg/models"
)

// Static fetches static HTML pages over raw HTTP and parses them with
// goquery. It is the default engine: fast and dependency-free at runtime.
type Static struct {
	cache     cache.Cache
	limiter   ratelimit.RateLimiter
	client    *http.Client
	proxies   *proxy.Pool
	retryCfg  retry.Config
	timeout   time.Duration
	userAgent string
}

// NewStatic creates a Static fetcher. cache, limiter, and proxies may be
// nil, disabling the respective concern.
func NewStatic(c cache.Cache, lim ratelimit.RateLimiter, client *http.Client, proxies *proxy.Pool, timeout time.Duration, userAgent string) *Static {
	if client == nil {
		client = &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}
	return &Static{
		cache:     c,
		limiter:   lim,
		client:    client,
		proxies:   proxies,
		retryCfg:  retry.DefaultConfig(),
		timeout:   timeout,
		userAgent: userAgent,
	}
}

// Name returns the fetcher implementation name.
func (s *Static) Name() string { return "static" }

// Fetch retrieves and parses a static HTML page.
func (s *Static) Fetch(ctx context.Context, opts models.RequestOptions) (*models.PageData, error) {
	data, _, err := s.FetchWithDoc(ctx, opts)
	return data, err
}

// FetchWithDoc retrieves a page and returns both the page data and the
// parsed document, so callers that re-query the DOM avoid a reparse.
func (s *Static) FetchWithDoc(ctx context.Context, opts models.RequestOptions) (*models.PageData, *goquery.Document, error) {
	start := time.Now()

	if err := urlutil.Validate(opts.URL); err != nil {
		return nil, nil, err
	}

	if s.cache != nil {
		if cached, ok := s.cache.Get(cacheKey(opts)); ok {
			log.Debug().Str("url", opts.URL).Msg("Cache hit")
			return cached, nil, nil
		}
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx, opts.URL); err != nil {
			return nil, nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	req, err := s.buildRequest(ctx, opts)
	if err != nil {
		return nil, nil, err
	}

	var resp *http.Response
	err = retry.WithRetry(ctx, s.retryCfg, func() error {
		r, err := s.do(req, opts)
		if err != nil {
			return err
		}
		if r.StatusCode >= 400 {
			r.Body.Close()
			return &retry.StatusError{StatusCode: r.StatusCode, URL: opts.URL}
		}
		resp = r
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("fetch %s: %w", opts.URL, err)
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("parse %s: %w", opts.URL, err)
	}

	data := &models.PageData{
		URL:        opts.URL,
		StatusCode: resp.StatusCode,
		Headers:    flattenHeaders(resp.Header),
		Metadata:   make(map[string]string),
		FetchedAt:  time.Now(),
	}
	extractMetadata(doc, data)
	data.Content, data.HTML = extractContent(doc, opts.Selector)
	urlutil.ResolvePageLinks(data)
	data.ResponseTime = time.Since(start).Milliseconds()

	if s.cache != nil {
		s.cache.Set(cacheKey(opts), data, 0)
	}

	log.Debug().
		Str("url", opts.URL).
		Int("status", data.StatusCode).
		Int64("elapsed_ms", data.ResponseTime).
		Msg("Static fetch complete")
	return data, doc, nil
}

// do executes the request, routing it through the per-request proxy or the
// next healthy pool proxy. A failing pool proxy is taken out of rotation.
func (s *Static) do(req *http.Request, opts models.RequestOptions) (*http.Response, error) {
	proxyURL := opts.Proxy
	if proxyURL == "" && s.proxies != nil {
		proxyURL = s.proxies.Next()
	}
	if proxyURL == "" {
		return s.client.Do(req)
	}

	parsed, err := url.Parse(proxyURL)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy %s: %w", proxyURL, err)
	}
	client := *s.client
	client.Transport = &http.Transport{Proxy: http.ProxyURL(parsed)}
	resp, err := client.Do(req)
	if err != nil && opts.Proxy == "" && s.proxies != nil {
		s.proxies.MarkFailed(proxyURL)
	}
	return resp, err
}

// buildRequest assembles the GET request: default headers, stored session
// cookies and headers when a session is named, and any per-request headers.
func (s *Static) buildRequest(ctx context.Context, opts models.RequestOptions) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, opts.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	ua := s.userAgent
	if ua == "" {
		ua = "discovery/1.0 (+https://github.com/scrapeworks/discovery)"
	}
	req.Header.Set("User-Agent", ua)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	if opts.SessionName != "" {
		s.attachSession(req, opts)
	}
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}
	return req, nil
}

// attachSession injects stored cookies and headers for the named session.
// A missing or expired session is logged, not fatal.
func (s *Static) attachSession(req *http.Request, opts models.RequestOptions) {
	session, err := auth.Load(opts.SessionName)
	if err != nil {
		log.Warn().Err(err).Str("session", opts.SessionName).Msg("Failed to load session")
		return
	}

	jar, err := cookiejar.New(nil)
	if err == nil {
		parsed, perr := url.Parse(opts.URL)
		if perr == nil {
			var cookies []*http.Cookie
			for _, c := range session.Cookies {
				cookies = append(cookies, &http.Cookie{
					Name:     c.Name,
					Value:    c.Value,
					Domain:   c.Domain,
					Path:     c.Path,
					Expires:  time.Unix(int64(c.Expires), 0),
					HttpOnly: c.HTTPOnly,
					Secure:   c.Secure,
				})
			}
			jar.SetCookies(parsed, cookies)
			s.client.Jar = jar
		}
	}
	for k, v := range session.Headers {
		req.Header.Set(k, v)
	}
}

func cacheKey(opts models.RequestOptions) string {
	return opts.URL + "|" + opts.Selector
}

func flattenHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k := range h {
		out[k] = h.Get(k)
	}
	return out
}
