package proxy

import "testing"

func TestNextRoundRobin(t *testing.T) {
	p := NewPool([]string{"http://a:8080", "http://b:8080", "http://c:8080"})

	got := []string{p.Next(), p.Next(), p.Next(), p.Next()}
	want := []string{"http://a:8080", "http://b:8080", "http://c:8080", "http://a:8080"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Next()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestNextSkipsFailed(t *testing.T) {
	p := NewPool([]string{"http://a:8080", "http://b:8080"})
	p.MarkFailed("http://a:8080")

	for i := 0; i < 3; i++ {
		if got := p.Next(); got != "http://b:8080" {
			t.Errorf("Next() = %q, want the healthy proxy", got)
		}
	}

	p.MarkHealthy("http://a:8080")
	seen := map[string]bool{p.Next(): true, p.Next(): true}
	if !seen["http://a:8080"] {
		t.Error("recovered proxy never returned to rotation")
	}
}

func TestNextExhausted(t *testing.T) {
	if got := NewPool(nil).Next(); got != "" {
		t.Errorf("empty pool Next() = %q", got)
	}

	p := NewPool([]string{"http://a:8080"})
	p.MarkFailed("http://a:8080")
	if got := p.Next(); got != "" {
		t.Errorf("all-failed pool Next() = %q", got)
	}
	if p.Size() != 1 {
		t.Errorf("Size() = %d", p.Size())
	}
}
