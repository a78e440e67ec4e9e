package registry

// Process-wide tables populated from init functions. They replace runtime
// module importing: an implementation unit announces its factories and the
// integrations it provides when its package is linked into the binary.
// Populate during startup only; the tables carry no locking.

// factories maps a symbol ("extensions.normalizer", "ExtractPlugin") to a
// plugin factory. Manifest discovery and reload resolve symbols here.
var factories = make(map[string]any)

// providers is the set of integration names that are present in this
// process, probed by CheckDependencies. Presence only; no versions.
var providers = make(map[string]struct{})

// RegisterFactory publishes a plugin factory under a symbol. Typically
// called from an init function in the package that defines the plugin.
func RegisterFactory(symbol string, factory any) {
	factories[symbol] = factory
}

// LookupFactory resolves a previously registered symbol.
func LookupFactory(symbol string) (any, bool) {
	f, ok := factories[symbol]
	return f, ok
}

// MarkAvailable records that an integration named dep is linked into this
// process, making CheckDependencies report it as present.
func MarkAvailable(dep string) {
	providers[dep] = struct{}{}
}

// Available reports whether an integration named dep was marked available.
func Available(dep string) bool {
	_, ok := providers[dep]
	return ok
}
