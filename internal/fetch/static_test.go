package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/scrapeworks/discovery/internal/cache"
	"github.com/scrapeworks/discovery/internal/retry"
	"github.com/scrapeworks/discovery/pkg/models"
)

const productPage = `<!DOCTYPE html>
<html>
<head>
<title>All-Purpose Cleaner</title>
<meta name="description" content="A cleaner for everything">
<meta property="og:type" content="product">
</head>
<body>
<div class="product"><h1>All-Purpose Cleaner</h1></div>
<a href="/product/degreaser">Degreaser</a>
<img src="/img/cleaner.jpg">
<script src="/js/app.js"></script>
</body>
</html>`

func TestStaticFetchExtractsPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); !strings.HasPrefix(ua, "discovery/") {
			t.Errorf("User-Agent = %q", ua)
		}
		w.Write([]byte(productPage))
	}))
	defer srv.Close()

	s := NewStatic(nil, nil, srv.Client(), nil, 5*time.Second, "")
	data, err := s.Fetch(context.Background(), models.RequestOptions{URL: srv.URL})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if data.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d", data.StatusCode)
	}
	if data.Title != "All-Purpose Cleaner" {
		t.Errorf("Title = %q", data.Title)
	}
	if data.Metadata["description"] != "A cleaner for everything" {
		t.Errorf("meta description = %q", data.Metadata["description"])
	}
	if data.Metadata["og:type"] != "product" {
		t.Errorf("og:type = %q", data.Metadata["og:type"])
	}
	if len(data.Links) != 1 || !strings.HasPrefix(data.Links[0], srv.URL) {
		t.Errorf("Links = %v, want resolved against page URL", data.Links)
	}
	if len(data.Images) != 1 || len(data.Scripts) != 1 {
		t.Errorf("Images = %v, Scripts = %v", data.Images, data.Scripts)
	}
	if !strings.Contains(data.Content, "All-Purpose Cleaner") {
		t.Errorf("Content = %q", data.Content)
	}
}

func TestStaticFetchSelector(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(productPage))
	}))
	defer srv.Close()

	s := NewStatic(nil, nil, srv.Client(), nil, 5*time.Second, "")
	data, err := s.Fetch(context.Background(), models.RequestOptions{URL: srv.URL, Selector: ".product"})
	if err != nil {
		t.Fatal(err)
	}
	if data.Content != "All-Purpose Cleaner" {
		t.Errorf("selector content = %q", data.Content)
	}
	if !strings.Contains(data.HTML, "<h1>") {
		t.Errorf("selector HTML = %q", data.HTML)
	}
}

func TestStaticFetchCaches(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte(productPage))
	}))
	defer srv.Close()

	c := cache.NewMemoryCache(1 << 20)
	s := NewStatic(c, nil, srv.Client(), nil, 5*time.Second, "")
	opts := models.RequestOptions{URL: srv.URL}

	if _, err := s.Fetch(context.Background(), opts); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Fetch(context.Background(), opts); err != nil {
		t.Fatal(err)
	}
	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Errorf("server hits = %d, want 1 (second fetch cached)", got)
	}
}

func TestStaticFetchStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	s := NewStatic(nil, nil, srv.Client(), nil, 5*time.Second, "")
	_, err := s.Fetch(context.Background(), models.RequestOptions{URL: srv.URL})
	var se *retry.StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusNotFound {
		t.Errorf("err = %v, want StatusError 404", err)
	}
}

func TestStaticFetchRejectsBadURL(t *testing.T) {
	s := NewStatic(nil, nil, nil, nil, time.Second, "")
	if _, err := s.Fetch(context.Background(), models.RequestOptions{URL: "ftp://nope"}); err == nil {
		t.Error("non-http scheme should be rejected before any request")
	}
}
