package clients

import (
	"os"
	"strings"

	"github.com/rs/zerolog/log"
)

// The factory table replaces runtime module importing: client packages
// publish their factories under "module.Class"-style keys from init
// functions, and auto-discovery crosses conventional key patterns derived
// from the client name against it.

type factoryEntry struct {
	factory any
	meta    Meta
}

var factories = make(map[string]factoryEntry)

// RegisterFactory publishes a client factory under a table key such as
// "agar_client.AgarClient", together with its descriptor metadata.
// Typically called from an init function in the client's package.
func RegisterFactory(key string, factory any, meta Meta) {
	factories[key] = factoryEntry{factory: factory, meta: meta}
}

func lookupFactory(key string) (factoryEntry, bool) {
	e, ok := factories[key]
	return e, ok
}

// modulePatterns are the conventional module-key stems tried for a client
// name, and classPatterns the conventional class names, mirroring the
// "<name>_client / client / main" and "TitleClient / UPPERCLIENT / Client"
// lookup conventions.
func modulePatterns(name string) []string {
	return []string{name + "_client", "client", "main"}
}

func classPatterns(name string) []string {
	return []string{titleCase(name) + "Client", strings.ToUpper(name) + "Client", "Client"}
}

// autoLoad crosses the module and class patterns for name against the
// factory table and registers the first combination that resolves to a
// valid client factory. Returns whether a client was registered.
func (r *Registry) autoLoad(name string) bool {
	for _, mod := range modulePatterns(name) {
		for _, class := range classPatterns(name) {
			key := mod + "." + class
			entry, ok := lookupFactory(key)
			if !ok {
				continue
			}
			if v := ValidateFactory(entry.factory); !v.Valid {
				log.Debug().
					Str("client", name).
					Str("key", key).
					Strs("errors", v.Errors).
					Msg("Discovery candidate rejected")
				continue
			}
			r.registerSource(name, entry.factory, entry.meta, key)
			return true
		}
	}
	return false
}

// Discover enumerates the subdirectories of dir as candidate client names
// and attempts auto-discovery for each one not already registered.
// Idempotent: registered names are skipped, so a second call adds nothing.
// Returns the number of clients newly registered.
func (r *Registry) Discover(dir string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}

	discovered := 0
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), "_") {
			continue
		}
		name := entry.Name()
		if _, ok := r.clients[name]; ok {
			continue
		}
		if r.autoLoad(name) {
			discovered++
		}
	}

	log.Debug().
		Str("dir", dir).
		Int("discovered", discovered).
		Msg("Client discovery complete")
	return discovered
}

// titleCase uppercases the first rune only; "agar" becomes "Agar".
func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
