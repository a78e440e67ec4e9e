package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/scrapeworks/discovery/internal/config"
	"github.com/scrapeworks/discovery/internal/hooks"
	"github.com/scrapeworks/discovery/internal/plugin"
)

type fakePlugin struct {
	name     string
	setups   int
	cfg      config.Config
	pipe     plugin.Pipeline
	caps     map[string]bool
	setupErr error
}

func (f *fakePlugin) Setup() error { f.setups++; return f.setupErr }
func (f *fakePlugin) Process(ctx context.Context, data any) (any, error) {
	return data, nil
}
func (f *fakePlugin) Supports(capability string) bool { return f.caps[capability] }

type fakePipeline struct{ name string }

func (p *fakePipeline) ClientName() string                     { return p.name }
func (p *fakePipeline) ConfigValue(path string, def any) any   { return def }
func (p *fakePipeline) RegisterHook(name string, h hooks.Hook) {}

func bare(name string) plugin.BareFactory {
	return func() plugin.Plugin { return &fakePlugin{name: name} }
}

func TestBucketsAreIndependentNamespaces(t *testing.T) {
	r := New()
	r.Register("proc", plugin.TypeGeneral, bare("general-proc"), Meta{})
	r.Register("proc", plugin.TypeStrategy, bare("strategy-proc"), Meta{})

	g, ok := r.Info("proc", plugin.TypeGeneral)
	if !ok {
		t.Fatal("general proc not found")
	}
	s, ok := r.Info("proc", plugin.TypeStrategy)
	if !ok {
		t.Fatal("strategy proc not found")
	}
	if g == s {
		t.Error("same descriptor returned for both buckets")
	}
	if _, ok := r.Get("proc", plugin.TypeModule); ok {
		t.Error("module bucket should not hold proc")
	}
}

func TestRegisterOverwritesSameKey(t *testing.T) {
	r := New()
	r.Register("p", plugin.TypeGeneral, bare("first"), Meta{Version: "1.0"})
	r.Register("p", plugin.TypeGeneral, bare("second"), Meta{Version: "2.0"})

	d, _ := r.Info("p", plugin.TypeGeneral)
	if d.Version != "2.0" {
		t.Errorf("Version = %q, want replacement to win", d.Version)
	}
	s := r.Statistics()
	if s.ByType[plugin.TypeGeneral] != 1 {
		t.Errorf("general count = %d, want 1 after overwrite", s.ByType[plugin.TypeGeneral])
	}
}

func TestVersionDefaults(t *testing.T) {
	r := New()
	r.Register("p", plugin.TypeGeneral, bare("p"), Meta{})
	d, _ := r.Info("p", plugin.TypeGeneral)
	if d.Version != "1.0" {
		t.Errorf("Version = %q, want default 1.0", d.Version)
	}
}

func TestCreateInstanceFactoryShapes(t *testing.T) {
	r := New()
	pipe := &fakePipeline{name: "agar"}
	cfg := config.Config{"k": "v"}

	r.Register("with-pipe", plugin.TypeGeneral, plugin.PipelineFactory(func(p plugin.Pipeline, c config.Config) plugin.Plugin {
		return &fakePlugin{pipe: p, cfg: c}
	}), Meta{})
	r.Register("with-cfg", plugin.TypeGeneral, plugin.ConfigFactory(func(c config.Config) plugin.Plugin {
		return &fakePlugin{cfg: c}
	}), Meta{})
	r.Register("niladic", plugin.TypeGeneral, bare("niladic"), Meta{})

	inst, err := r.CreateInstance("with-pipe", plugin.TypeGeneral, pipe, cfg)
	if err != nil {
		t.Fatalf("CreateInstance(with-pipe): %v", err)
	}
	fp := inst.(*fakePlugin)
	if fp.pipe != pipe {
		t.Error("pipeline factory did not receive the owning pipeline")
	}
	if fp.cfg.GetString("k", "") != "v" {
		t.Error("pipeline factory did not receive the config")
	}
	if fp.setups != 1 {
		t.Errorf("Setup ran %d times, want 1", fp.setups)
	}

	inst, err = r.CreateInstance("with-cfg", plugin.TypeGeneral, nil, nil)
	if err != nil {
		t.Fatalf("CreateInstance(with-cfg): %v", err)
	}
	// nil config is replaced by an empty one, never passed through.
	if inst.(*fakePlugin).cfg == nil {
		t.Error("config factory received nil config")
	}

	if _, err := r.CreateInstance("niladic", plugin.TypeGeneral, nil, nil); err != nil {
		t.Fatalf("CreateInstance(niladic): %v", err)
	}
}

func TestCreateInstanceErrors(t *testing.T) {
	r := New()

	_, err := r.CreateInstance("ghost", plugin.TypeGeneral, nil, nil)
	var le *LoadError
	if !errors.As(err, &le) || !errors.Is(err, ErrNotRegistered) {
		t.Errorf("unknown plugin err = %v, want LoadError wrapping ErrNotRegistered", err)
	}

	r.Register("nil-inst", plugin.TypeGeneral, plugin.BareFactory(func() plugin.Plugin { return nil }), Meta{})
	if _, err := r.CreateInstance("nil-inst", plugin.TypeGeneral, nil, nil); !errors.Is(err, ErrNilInstance) {
		t.Errorf("nil instance err = %v, want ErrNilInstance", err)
	}

	setupErr := errors.New("setup failed")
	r.Register("bad-setup", plugin.TypeGeneral, plugin.BareFactory(func() plugin.Plugin {
		return &fakePlugin{setupErr: setupErr}
	}), Meta{})
	if _, err := r.CreateInstance("bad-setup", plugin.TypeGeneral, nil, nil); !errors.Is(err, setupErr) {
		t.Errorf("setup err = %v, want wrapped setup failure", err)
	}
	if _, ok := r.Instance("bad-setup", plugin.TypeGeneral); ok {
		t.Error("failed setup must not cache an instance")
	}
}

func TestInstanceCache(t *testing.T) {
	r := New()
	r.Register("p", plugin.TypeGeneral, bare("p"), Meta{})

	inst, err := r.CreateInstance("p", plugin.TypeGeneral, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	cached, ok := r.Instance("p", plugin.TypeGeneral)
	if !ok || cached != inst {
		t.Error("Instance should return the created instance")
	}
	// Same name in a different bucket has its own cache slot.
	if _, ok := r.Instance("p", plugin.TypeStrategy); ok {
		t.Error("strategy bucket should have no instance for p")
	}
}

func TestCheckDependencies(t *testing.T) {
	r := New()
	MarkAvailable("fetch/static")
	r.Register("helper", plugin.TypeGeneral, bare("helper"), Meta{})
	r.Register("p", plugin.TypeGeneral, bare("p"), Meta{
		Dependencies: []string{"fetch/static", "helper", "no_such_integration"},
	})

	deps := r.CheckDependencies("p", plugin.TypeGeneral)
	if deps == nil {
		t.Fatal("deps = nil for registered plugin")
	}
	if !deps["fetch/static"] {
		t.Error("marked integration should be present")
	}
	if !deps["helper"] {
		t.Error("registered plugin name should count as present")
	}
	if deps["no_such_integration"] {
		t.Error("fabricated dependency should be absent")
	}

	if got := r.CheckDependencies("ghost", plugin.TypeGeneral); got != nil {
		t.Errorf("unknown plugin deps = %v, want nil", got)
	}
}

func TestByCapability(t *testing.T) {
	r := New()
	r.Register("declared", plugin.TypeGeneral, bare("declared"), Meta{
		Capabilities: []string{"media_processing"},
	})
	r.Register("runtime", plugin.TypeModule, plugin.BareFactory(func() plugin.Plugin {
		return &fakePlugin{caps: map[string]bool{"media_processing": true}}
	}), Meta{})
	r.Register("neither", plugin.TypeGeneral, bare("neither"), Meta{})

	// Before instancing, only the declared capability matches.
	if got := len(r.ByCapability("media_processing")); got != 1 {
		t.Errorf("matches before instancing = %d, want 1", got)
	}

	if _, err := r.CreateInstance("runtime", plugin.TypeModule, nil, nil); err != nil {
		t.Fatal(err)
	}
	if got := len(r.ByCapability("media_processing")); got != 2 {
		t.Errorf("matches after instancing = %d, want 2", got)
	}
}

func TestUnregisterDropsInstance(t *testing.T) {
	r := New()
	r.Register("p", plugin.TypeGeneral, bare("p"), Meta{})
	if _, err := r.CreateInstance("p", plugin.TypeGeneral, nil, nil); err != nil {
		t.Fatal(err)
	}

	if !r.Unregister("p", plugin.TypeGeneral) {
		t.Fatal("Unregister returned false for registered plugin")
	}
	if _, ok := r.Get("p", plugin.TypeGeneral); ok {
		t.Error("descriptor survived Unregister")
	}
	if _, ok := r.Instance("p", plugin.TypeGeneral); ok {
		t.Error("instance survived Unregister")
	}
	if r.Unregister("p", plugin.TypeGeneral) {
		t.Error("second Unregister should report nothing removed")
	}
}

func TestReloadFromSourceSymbol(t *testing.T) {
	r := New()
	RegisterFactory("test.reloadable", bare("v1"))
	f, _ := LookupFactory("test.reloadable")
	r.RegisterSource("p", plugin.TypeGeneral, f, Meta{Description: "keep me"}, "test.reloadable")

	if _, err := r.CreateInstance("p", plugin.TypeGeneral, nil, nil); err != nil {
		t.Fatal(err)
	}

	// Swap the symbol, as a newer build of the plugin would.
	RegisterFactory("test.reloadable", bare("v2"))
	if err := r.Reload("p", plugin.TypeGeneral); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	d, _ := r.Info("p", plugin.TypeGeneral)
	if d.Description != "keep me" {
		t.Error("Reload should preserve descriptor metadata")
	}
	if _, ok := r.Instance("p", plugin.TypeGeneral); ok {
		t.Error("Reload should drop the cached instance")
	}

	inst, err := r.CreateInstance("p", plugin.TypeGeneral, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if inst.(*fakePlugin).name != "v2" {
		t.Errorf("instance name = %q, want the reloaded factory's v2", inst.(*fakePlugin).name)
	}
}

func TestReloadErrors(t *testing.T) {
	r := New()
	if err := r.Reload("ghost", plugin.TypeGeneral); !errors.Is(err, ErrNotRegistered) {
		t.Errorf("Reload(ghost) = %v, want ErrNotRegistered", err)
	}

	r.Register("no-source", plugin.TypeGeneral, bare("p"), Meta{})
	if err := r.Reload("no-source", plugin.TypeGeneral); !errors.Is(err, ErrNoSource) {
		t.Errorf("Reload without source = %v, want ErrNoSource", err)
	}
}

func TestStatistics(t *testing.T) {
	r := New()
	r.Register("a", plugin.TypeGeneral, bare("a"), Meta{Dependencies: []string{"x"}})
	r.Register("b", plugin.TypeStrategy, bare("b"), Meta{})
	r.Register("c", plugin.TypeModule, bare("c"), Meta{})
	if _, err := r.CreateInstance("a", plugin.TypeGeneral, nil, nil); err != nil {
		t.Fatal(err)
	}

	s := r.Statistics()
	if s.Total != 3 {
		t.Errorf("Total = %d, want 3", s.Total)
	}
	if s.ByType[plugin.TypeStrategy] != 1 {
		t.Errorf("strategy count = %d, want 1", s.ByType[plugin.TypeStrategy])
	}
	if s.InstancesCreated != 1 {
		t.Errorf("InstancesCreated = %d, want 1", s.InstancesCreated)
	}
	if s.WithDependencies != 1 {
		t.Errorf("WithDependencies = %d, want 1", s.WithDependencies)
	}
}

func TestUnknownTypeFallsBackToGeneral(t *testing.T) {
	r := New()
	r.Register("odd", plugin.Type("exotic"), bare("odd"), Meta{})
	if _, ok := r.Get("odd", plugin.TypeGeneral); !ok {
		t.Error("unknown type should land in the general bucket")
	}
	if _, ok := r.Get("odd", plugin.Type("exotic")); !ok {
		t.Error("lookup with the same unknown type should stay symmetric")
	}
}
