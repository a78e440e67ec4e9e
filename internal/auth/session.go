// Package auth stores per-client authentication sessions (cookies and
// headers) so authenticated catalogs can be fetched without re-login.
// Sessions live in the OS keyring when one is available, with a file
// fallback for headless environments.
package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zalando/go-keyring"
)

const (
	// KeyringService is the service name for keyring storage.
	KeyringService = "discovery-cli"
	// FallbackDir is the directory for file-based session storage.
	FallbackDir = ".discovery/sessions"
)

// Cookie is one stored HTTP cookie.
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain,omitempty"`
	Path     string  `json:"path,omitempty"`
	Expires  float64 `json:"expires,omitempty"`
	HTTPOnly bool    `json:"http_only,omitempty"`
	Secure   bool    `json:"secure,omitempty"`
}

// Session is a stored authentication session for one client or site.
type Session struct {
	Name      string            `json:"name"`
	URL       string            `json:"url,omitempty"`
	Cookies   []Cookie          `json:"cookies"`
	Headers   map[string]string `json:"headers,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	ExpiresAt time.Time         `json:"expires_at,omitempty"`
}

// fileFallback caches whether the keyring is unusable in this environment
// (CI, containers) so every call does not re-probe it.
var fileFallback *bool

func useFileStorage() bool {
	if fileFallback != nil {
		return *fileFallback
	}
	if os.Getenv("CI") != "" || os.Getenv("CODESPACES") != "" {
		t := true
		fileFallback = &t
		return true
	}

	probe := "_keyring_probe_"
	err := keyring.Set(KeyringService, probe, "ok")
	fallback := err != nil
	if !fallback {
		_ = keyring.Delete(KeyringService, probe)
	}
	fileFallback = &fallback
	return fallback
}

func sessionPath(name string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, FallbackDir)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return filepath.Join(dir, name+".json"), nil
}

// Save stores a session under its name.
func Save(s *Session) error {
	if s.Name == "" {
		return fmt.Errorf("session name is required")
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}

	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", s.Name, err)
	}

	if useFileStorage() {
		path, err := sessionPath(s.Name)
		if err != nil {
			return err
		}
		return os.WriteFile(path, raw, 0o600)
	}
	return keyring.Set(KeyringService, s.Name, string(raw))
}

// Load retrieves a session by name.
func Load(name string) (*Session, error) {
	var raw []byte
	if useFileStorage() {
		path, err := sessionPath(name)
		if err != nil {
			return nil, err
		}
		raw, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("session %s not found: %w", name, err)
		}
	} else {
		val, err := keyring.Get(KeyringService, name)
		if err != nil {
			return nil, fmt.Errorf("session %s not found: %w", name, err)
		}
		raw = []byte(val)
	}

	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", name, err)
	}
	if !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt) {
		return nil, fmt.Errorf("session %s expired at %s", name, s.ExpiresAt)
	}
	return &s, nil
}

// Delete removes a stored session.
func Delete(name string) error {
	if useFileStorage() {
		path, err := sessionPath(name)
		if err != nil {
			return err
		}
		return os.Remove(path)
	}
	return keyring.Delete(KeyringService, name)
}
