package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
)

// OutputPath returns the client-scoped output directory, optionally joined
// with parts, creating the directory as a side effect. With a trailing file
// name in parts, the parent directory is still created.
func (b *Base) OutputPath(parts ...string) (string, error) {
	root := b.cfg.GetString("output.path", "./output")
	return b.scopedPath(root, parts)
}

// DownloadPath returns the client-scoped download directory, optionally
// joined with parts, creating the full directory as a side effect.
func (b *Base) DownloadPath(parts ...string) (string, error) {
	root := b.cfg.GetString("downloads.path", "./downloads")
	dir := filepath.Join(append([]string{root, b.name}, parts...)...)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create download dir %s: %w", dir, err)
	}
	return dir, nil
}

// scopedPath joins root/<client>/parts, creating the directory portion.
// The last part is treated as a file name when it has an extension.
func (b *Base) scopedPath(root string, parts []string) (string, error) {
	full := filepath.Join(append([]string{root, b.name}, parts...)...)
	dir := full
	if len(parts) > 0 && filepath.Ext(parts[len(parts)-1]) != "" {
		dir = filepath.Dir(full)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir %s: %w", dir, err)
	}
	return full, nil
}
