package fetch

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dop251/goja"
	"github.com/rs/zerolog/log"

	"github.com/scrapeworks/discovery/pkg/models"
)

// Hybrid fetches with the static engine and then runs inline scripts in a
// lightweight JS interpreter, enough to capture data assignments without a
// browser. Pages needing real rendering should use the browser fetcher.
type Hybrid struct {
	static *Static
}

// NewHybrid wraps a Static fetcher with the inline-JS pass.
func NewHybrid(static *Static) *Hybrid {
	return &Hybrid{static: static}
}

// Name returns the fetcher implementation name.
func (h *Hybrid) Name() string { return "hybrid" }

// Fetch retrieves the page statically and executes inline scripts when any
// are present.
func (h *Hybrid) Fetch(ctx context.Context, opts models.RequestOptions) (*models.PageData, error) {
	data, doc, err := h.static.FetchWithDoc(ctx, opts)
	if err != nil {
		return nil, err
	}

	if len(data.Scripts) > 0 || strings.Contains(data.HTML, "<script") {
		h.executeScripts(data, doc)
	}
	return data, nil
}

// executeScripts runs inline scripts in a minimal mocked browser
// environment. Script failures are expected (no DOM) and ignored.
func (h *Hybrid) executeScripts(data *models.PageData, doc *goquery.Document) {
	vm := goja.New()

	vm.Set("window", vm.GlobalObject())
	vm.Set("self", vm.GlobalObject())
	loc := map[string]any{"href": data.URL}
	vm.Set("document", map[string]any{"location": loc})
	vm.Set("location", loc)
	vm.Set("console", map[string]any{
		"log":   func(call goja.FunctionCall) goja.Value { return nil },
		"error": func(call goja.FunctionCall) goja.Value { return nil },
	})

	if doc == nil {
		var err error
		doc, err = goquery.NewDocumentFromReader(strings.NewReader(data.HTML))
		if err != nil {
			log.Warn().Err(err).Msg("Failed to parse HTML for JS execution")
			return
		}
	}

	executed := 0
	doc.Find("script").Each(func(_ int, sel *goquery.Selection) {
		if _, external := sel.Attr("src"); external {
			return
		}
		src := sel.Text()
		if src == "" {
			return
		}
		if _, err := vm.RunString(src); err == nil {
			executed++
		}
	})

	// Surface captured globals that look like embedded page state.
	for _, key := range []string{"__INITIAL_STATE__", "__NEXT_DATA__", "pageData"} {
		if v := vm.Get(key); v != nil && !goja.IsUndefined(v) && !goja.IsNull(v) {
			data.Metadata["js:"+key] = v.String()
		}
	}

	log.Debug().
		Str("url", data.URL).
		Int("scripts_executed", executed).
		Msg("Inline script pass complete")
}
