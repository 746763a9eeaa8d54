// Package session holds the explicit session context: who is signed in,
// the bearer token every remote call reads, and where the backend
// lives. It replaces scattered logged-in booleans with one value that
// is loaded once, passed to whoever needs it, and cleared by an
// explicit sign-out.
package session

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"crmdeck/internal/model"
)

type Session struct {
	Token string            `json:"token,omitempty"`
	User  model.SessionUser `json:"user,omitempty"`
}

func (s Session) Authenticated() bool { return strings.TrimSpace(s.Token) != "" }

type Config struct {
	ServerURL string   `json:"serverUrl,omitempty"`
	Session   *Session `json:"session,omitempty"`
}

// Current returns the stored session, or a zero (signed-out) one.
func (c *Config) Current() Session {
	if c == nil || c.Session == nil {
		return Session{}
	}
	return *c.Session
}

// SignOut clears the stored session. The token is simply forgotten;
// the backend's tokens are stateless.
func (c *Config) SignOut() { c.Session = nil }

func ConfigDir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.crmdeck).
	if v := strings.TrimSpace(os.Getenv("CRMDECK_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".crmdeck"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// LoadConfig reads the config file; a missing file yields a zero config.
func LoadConfig() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Config{}, nil
	}
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func SaveConfig(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	// Write-then-rename so a crash never leaves a truncated config.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
