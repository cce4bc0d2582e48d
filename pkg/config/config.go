// Package config loads and persists the todo context configuration.
//
// A context names a store directory plus editing preferences. The active
// context decides where items go; TODO_DIR overrides it so the tool works
// without any config file at all.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Environment variables honored by the CLI.
const (
	EnvDir    = "TODO_DIR"    // overrides the active context's directory
	EnvConfig = "TODO_CONFIG" // overrides the config file location
)

// ErrNoContext means no store directory could be resolved.
var ErrNoContext = errors.New("no todo context configured")

// Context is a named todo store: a directory plus editing preferences.
type Context struct {
	Name     string `toml:"name"`
	Dir      string `toml:"dir"`
	Editor   string `toml:"editor,omitempty"`
	Timezone string `toml:"timezone,omitempty"`
}

// Location returns the context's time.Location for deadline parsing,
// falling back to local time.
func (c *Context) Location() *time.Location {
	if c == nil || c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Config holds all contexts and the name of the active one.
type Config struct {
	ActiveContext string    `toml:"active_context"`
	Contexts      []Context `toml:"contexts"`

	// Path the config was loaded from (not serialized)
	Path string `toml:"-"`
}

// DefaultPath returns the OS-appropriate config file location.
//
//   - macOS:   ~/Library/Application Support/todo/config.toml
//   - Linux:   $XDG_CONFIG_HOME/todo/config.toml (fallback ~/.config/todo/config.toml)
//   - Windows: %APPDATA%\todo\config.toml
func DefaultPath() string {
	return defaultPathForOS(runtime.GOOS)
}

func defaultPathForOS(goos string) string {
	home, _ := os.UserHomeDir()

	switch goos {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "todo", "config.toml")
	case "windows":
		if dir := os.Getenv("APPDATA"); dir != "" {
			return filepath.Join(dir, "todo", "config.toml")
		}
		return filepath.Join(home, "todo", "config.toml")
	default: // linux, freebsd, etc.
		if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
			return filepath.Join(dir, "todo", "config.toml")
		}
		return filepath.Join(home, ".config", "todo", "config.toml")
	}
}

// Load reads the config file at path. A missing file yields an empty
// config so `todo config create-context` can bootstrap it.
func Load(path string) (*Config, error) {
	cfg := &Config{Path: path}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.Path = path

	if cfg.ActiveContext != "" && cfg.context(cfg.ActiveContext) == nil {
		return nil, fmt.Errorf("active context %q does not match any context in %s", cfg.ActiveContext, path)
	}
	return cfg, nil
}

// Save writes the config back to its path, creating parent directories.
func (c *Config) Save() error {
	if err := os.MkdirAll(filepath.Dir(c.Path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("serializing config: %w", err)
	}
	return os.WriteFile(c.Path, buf.Bytes(), 0644)
}

// Active returns the active context.
func (c *Config) Active() (*Context, error) {
	if c.ActiveContext == "" {
		return nil, ErrNoContext
	}
	ctx := c.context(c.ActiveContext)
	if ctx == nil {
		return nil, fmt.Errorf("active context %q does not exist: %w", c.ActiveContext, ErrNoContext)
	}
	return ctx, nil
}

// ActiveDir resolves the store directory: TODO_DIR wins, then the active
// context's directory.
func (c *Config) ActiveDir() (string, error) {
	if dir := os.Getenv(EnvDir); dir != "" {
		return dir, nil
	}
	ctx, err := c.Active()
	if err != nil {
		return "", err
	}
	return ctx.Dir, nil
}

// CreateContext adds a context and makes it active.
func (c *Config) CreateContext(ctx Context) error {
	if strings.TrimSpace(ctx.Name) == "" {
		return errors.New("context name must not be empty")
	}
	if strings.TrimSpace(ctx.Dir) == "" {
		return errors.New("context dir must not be empty")
	}
	if c.context(ctx.Name) != nil {
		return fmt.Errorf("context %q already exists", ctx.Name)
	}
	c.Contexts = append(c.Contexts, ctx)
	c.ActiveContext = ctx.Name
	return nil
}

// SetContext switches the active context.
func (c *Config) SetContext(name string) error {
	if c.context(name) == nil {
		return fmt.Errorf("no context named %q", name)
	}
	c.ActiveContext = name
	return nil
}

func (c *Config) context(name string) *Context {
	for i := range c.Contexts {
		if c.Contexts[i].Name == name {
			return &c.Contexts[i]
		}
	}
	return nil
}
