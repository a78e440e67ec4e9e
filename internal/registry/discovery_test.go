package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/scrapeworks/discovery/internal/plugin"
)

func writeManifest(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDiscoverRegistersResolvableManifests(t *testing.T) {
	dir := t.TempDir()
	RegisterFactory("test.DiscoveredPlugin", bare("discovered"))

	writeManifest(t, dir, "cleaner.yaml", `
name: cleaner
class: test.DiscoveredPlugin
type: strategy
version: "2.1"
description: test strategy
capabilities: [product_extraction]
`)

	r := New()
	if got := r.Discover(dir); got != 1 {
		t.Fatalf("Discover = %d, want 1", got)
	}

	d, ok := r.Info("cleaner", plugin.TypeStrategy)
	if !ok {
		t.Fatal("cleaner not registered under strategy")
	}
	if d.Version != "2.1" || d.Source != "test.DiscoveredPlugin" {
		t.Errorf("descriptor = %+v", d)
	}
}

func TestDiscoverSkipsBadEntriesAndContinues(t *testing.T) {
	dir := t.TempDir()
	RegisterFactory("test.GoodPlugin", bare("good"))

	writeManifest(t, dir, "_private.yaml", "name: hidden\nclass: test.GoodPlugin\n")
	writeManifest(t, dir, "notes.txt", "not a manifest")
	writeManifest(t, dir, "broken.yaml", "name: [unclosed")
	writeManifest(t, dir, "incomplete.yaml", "name: partial\n")
	writeManifest(t, dir, "unlinked.yaml", "name: missing\nclass: test.NotLinked\n")
	writeManifest(t, dir, "good.yaml", "name: good\nclass: test.GoodPlugin\n")
	if err := os.Mkdir(filepath.Join(dir, "subdir"), 0o755); err != nil {
		t.Fatal(err)
	}

	r := New()
	if got := r.Discover(dir); got != 1 {
		t.Errorf("Discover = %d, want only the valid manifest", got)
	}
	// Typeless manifests land in the general bucket.
	if _, ok := r.Get("good", plugin.TypeGeneral); !ok {
		t.Error("good plugin missing from general bucket")
	}
	if _, ok := r.Get("hidden", plugin.TypeGeneral); ok {
		t.Error("underscore-prefixed manifest should be skipped")
	}
}

func TestDiscoverMissingDir(t *testing.T) {
	r := New()
	if got := r.Discover(filepath.Join(t.TempDir(), "nope")); got != 0 {
		t.Errorf("Discover on missing dir = %d, want 0", got)
	}
}
