// Package config implements layered client configuration.
//
// A resolved Config is the deep merge of, in increasing precedence, the
// built-in defaults, the shared base file, the client-specific file, and an
// optional explicit override file. Values are addressed by dot-separated
// paths such as "browser.headless".
package config

import "strings"

// Config is a nested tree of string keys to scalars, sequences, or nested
// Config nodes. It is owned by a single pipeline instance and is not safe
// for concurrent mutation.
type Config map[string]any

// Get returns the value at a dot-separated path, or def when any traversal
// segment is absent or not a nested node.
func (c Config) Get(path string, def any) any {
	cur := any(c)
	for _, key := range strings.Split(path, ".") {
		node, ok := asNode(cur)
		if !ok {
			return def
		}
		cur, ok = node[key]
		if !ok {
			return def
		}
	}
	return cur
}

// GetString returns the string at path, or def if absent or not a string.
func (c Config) GetString(path, def string) string {
	if s, ok := c.Get(path, def).(string); ok {
		return s
	}
	return def
}

// GetBool returns the bool at path, or def if absent or not a bool.
func (c Config) GetBool(path string, def bool) bool {
	if b, ok := c.Get(path, def).(bool); ok {
		return b
	}
	return def
}

// GetInt returns the int at path, or def if absent or not numeric.
// YAML decodes whole numbers as int, but float64 is accepted too since
// override layers may come from JSON-shaped sources.
func (c Config) GetInt(path string, def int) int {
	switch v := c.Get(path, def).(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return def
}

// GetFloat returns the float at path, or def if absent or not numeric.
func (c Config) GetFloat(path string, def float64) float64 {
	switch v := c.Get(path, def).(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return def
}

// Set stores a value at a dot-separated path, creating intermediate nested
// nodes as needed. An existing non-node value on the path is replaced by a
// node.
func (c Config) Set(path string, value any) {
	keys := strings.Split(path, ".")
	node := c
	for _, key := range keys[:len(keys)-1] {
		child, ok := asNode(node[key])
		if !ok {
			child = Config{}
			node[key] = child
		}
		node = child
	}
	node[keys[len(keys)-1]] = value
}

// Merge deep-merges override onto base and returns the result. Neither input
// is modified. A key present in both merges recursively when both values are
// nested nodes; any other value type overwrites.
func Merge(base, override Config) Config {
	merged := make(Config, len(base)+len(override))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range override {
		bn, bok := asNode(merged[k])
		on, ook := asNode(v)
		if bok && ook {
			merged[k] = Merge(bn, on)
		} else {
			merged[k] = v
		}
	}
	return merged
}

// asNode reports whether v is a nested configuration node. YAML v3 decodes
// nested mappings as map[string]any rather than our named type, so both
// shapes are accepted.
func asNode(v any) (Config, bool) {
	switch n := v.(type) {
	case Config:
		return n, true
	case map[string]any:
		return Config(n), true
	}
	return nil, false
}
