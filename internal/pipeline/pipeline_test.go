package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/scrapeworks/discovery/internal/config"
	"github.com/scrapeworks/discovery/internal/plugin"
	"github.com/scrapeworks/discovery/internal/registry"
)

type recordedPlugin struct {
	setups int
	owner  plugin.Pipeline
}

func (p *recordedPlugin) Setup() error { p.setups++; return nil }
func (p *recordedPlugin) Process(ctx context.Context, data any) (any, error) {
	return data, nil
}

func newTestBase(t *testing.T, clientYAML string) *Base {
	t.Helper()
	dir := t.TempDir()
	if clientYAML != "" {
		if err := os.MkdirAll(filepath.Join(dir, "clients"), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, "clients", "agar.yaml"), []byte(clientYAML), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	b, err := New("agar", "",
		WithResolver(config.NewResolver(dir)),
		WithRegistry(registry.New()),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return b
}

func TestNewResolvesClientLayer(t *testing.T) {
	b := newTestBase(t, "client:\n  base_url: https://example.com\n")

	if b.ClientName() != "agar" {
		t.Errorf("ClientName = %q", b.ClientName())
	}
	if got := b.ConfigValue("client.base_url", ""); got != "https://example.com" {
		t.Errorf("client layer value = %v", got)
	}
	// Built-in defaults shine through.
	if got := b.ConfigValue("crawling.max_pages", 0); got != 100 {
		t.Errorf("default max_pages = %v", got)
	}
}

func TestNewFailsOnMalformedLayer(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "base_config.yaml"), []byte("a: [oops"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := New("agar", "", WithResolver(config.NewResolver(dir)))
	if err == nil {
		t.Fatal("malformed config layer should fail construction")
	}
	if !strings.Contains(err.Error(), "pipeline agar") {
		t.Errorf("error = %v, want client context", err)
	}
}

func TestHooksThreadThroughBase(t *testing.T) {
	b := newTestBase(t, "")
	b.RegisterHook("post_extraction", func(ctx context.Context, v any) (any, error) {
		return v.(string) + "-a", nil
	})
	b.RegisterHook("post_extraction", func(ctx context.Context, v any) (any, error) {
		return v.(string) + "-b", nil
	})

	got, err := b.RunHooks(context.Background(), "post_extraction", "x")
	if err != nil {
		t.Fatal(err)
	}
	if got != "x-a-b" {
		t.Errorf("RunHooks = %v", got)
	}
}

func TestSetConfigValue(t *testing.T) {
	b := newTestBase(t, "")
	b.SetConfigValue("runtime.flag", true)
	if got := b.ConfigValue("runtime.flag", false); got != true {
		t.Errorf("SetConfigValue round trip = %v", got)
	}
}

func TestCreatePluginPassesPipelineAsOwner(t *testing.T) {
	b := newTestBase(t, "")
	b.Registry().Register("rec", plugin.TypeGeneral, plugin.PipelineFactory(func(p plugin.Pipeline, cfg config.Config) plugin.Plugin {
		return &recordedPlugin{owner: p}
	}), registry.Meta{})

	inst, err := b.CreatePlugin("rec", plugin.TypeGeneral, nil)
	if err != nil {
		t.Fatalf("CreatePlugin: %v", err)
	}
	rp := inst.(*recordedPlugin)
	if rp.owner != plugin.Pipeline(b) {
		t.Error("plugin did not receive the owning pipeline")
	}
	if rp.setups != 1 {
		t.Errorf("Setup ran %d times", rp.setups)
	}

	if _, ok := b.Plugin("rec"); !ok {
		t.Error("created plugin not recorded on the pipeline")
	}
	if names := b.Plugins(); len(names) != 1 || names[0] != "rec" {
		t.Errorf("Plugins() = %v", names)
	}
}

func TestOutputPathScoping(t *testing.T) {
	b := newTestBase(t, "")
	root := t.TempDir()
	b.SetConfigValue("output.path", root)
	b.SetConfigValue("downloads.path", root)

	dir, err := b.OutputPath("products")
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(root, "agar", "products")
	if dir != want {
		t.Errorf("OutputPath = %q, want %q", dir, want)
	}
	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		t.Error("OutputPath should create the directory")
	}

	// A trailing file name creates only the parent.
	file, err := b.OutputPath("products", "index.md")
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(file) != "index.md" {
		t.Errorf("OutputPath file = %q", file)
	}
	if _, err := os.Stat(file); !errors.Is(err, os.ErrNotExist) {
		t.Error("file itself must not be created")
	}

	dl, err := b.DownloadPath("assets")
	if err != nil {
		t.Fatal(err)
	}
	if fi, err := os.Stat(dl); err != nil || !fi.IsDir() {
		t.Error("DownloadPath should create the directory")
	}
}

func TestLoadExtensionSearchOrder(t *testing.T) {
	b := newTestBase(t, "")

	registry.RegisterFactory("clients.agar.plugins.localizer", plugin.BareFactory(func() plugin.Plugin {
		return &recordedPlugin{}
	}))

	inst, err := b.LoadExtension("localizer", nil)
	if err != nil {
		t.Fatalf("LoadExtension: %v", err)
	}
	if inst.(*recordedPlugin).setups != 1 {
		t.Error("extension Setup did not run")
	}
	if _, ok := b.Plugin("localizer"); !ok {
		t.Error("extension not recorded on the pipeline")
	}
}

func TestLoadExtensionErrorNamesBothLocations(t *testing.T) {
	b := newTestBase(t, "")

	_, err := b.LoadExtension("does_not_exist", nil)
	var ee *ExtensionError
	if !errors.As(err, &ee) {
		t.Fatalf("err = %v, want ExtensionError", err)
	}
	if len(ee.Attempted) != 2 {
		t.Fatalf("Attempted = %v, want both locations", ee.Attempted)
	}
	if ee.Attempted[0] != "extensions.does_not_exist" ||
		ee.Attempted[1] != "clients.agar.plugins.does_not_exist" {
		t.Errorf("Attempted = %v", ee.Attempted)
	}
}
