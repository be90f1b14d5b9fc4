package pipeline

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/relboard/pkg/cache"
	"github.com/matzehuels/relboard/pkg/registry"
	"github.com/matzehuels/relboard/pkg/registry/github"
	"github.com/matzehuels/relboard/pkg/release"
)

// =============================================================================
// Config - Single Source of Truth for CLI and Server
// =============================================================================

// Duration is a time.Duration that decodes from TOML strings like "6h"
// or "400ms".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML decoding.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	// Backend is one of file, memory, redis, mongo, or none.
	// Empty means file.
	Backend string `toml:"backend"`

	// Dir is the file backend's root directory. Empty uses the OS
	// user cache dir.
	Dir string `toml:"dir"`

	// Prefix namespaces all keys. Defaults to "relboard".
	Prefix string `toml:"prefix"`

	RedisURL string `toml:"redis_url"`
	MongoURI string `toml:"mongo_uri"`
}

// Config carries every tunable the pipeline uses. Zero values take
// defaults via ValidateAndSetDefaults.
type Config struct {
	// APIBase is the registry API root. Defaults to the public GitHub API.
	APIBase string `toml:"api_base"`

	// TTL is how long a cached entry counts as fresh. 0 means the
	// default; a negative value never expires.
	TTL Duration `toml:"ttl"`

	// Timeout bounds one fetch attempt.
	Timeout Duration `toml:"timeout"`

	// MaxRetries is the number of retries after the first attempt.
	// 0 means the default; a negative value disables retries.
	MaxRetries int `toml:"max_retries"`

	BackoffBase Duration `toml:"backoff_base"`
	BackoffStep Duration `toml:"backoff_step"`

	Cache CacheConfig `toml:"cache"`

	Resources []Resource `toml:"resource"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// ValidBackends is the set of supported cache backends.
var ValidBackends = map[string]bool{
	"":       true,
	"file":   true,
	"memory": true,
	"redis":  true,
	"mongo":  true,
	"none":   true,
}

// ValidateAndSetDefaults checks fields and applies defaults. This method
// is idempotent - calling it multiple times has the same effect as
// calling it once.
func (c *Config) ValidateAndSetDefaults() error {
	if c.validated {
		return nil
	}

	if c.APIBase == "" {
		c.APIBase = github.DefaultBaseURL
	}
	if c.TTL == 0 {
		c.TTL = Duration(registry.DefaultTTL)
	}
	if c.Timeout == 0 {
		c.Timeout = Duration(registry.DefaultTimeout)
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = registry.DefaultMaxRetries
	}
	if c.BackoffBase == 0 {
		c.BackoffBase = Duration(registry.DefaultBackoffBase)
	}
	if c.BackoffStep == 0 {
		c.BackoffStep = Duration(registry.DefaultBackoffStep)
	}

	if !ValidBackends[c.Cache.Backend] {
		return fmt.Errorf("invalid cache backend: %q (must be one of: file, memory, redis, mongo, none)", c.Cache.Backend)
	}
	if c.Cache.Prefix == "" {
		c.Cache.Prefix = "relboard"
	}

	if len(c.Resources) == 0 {
		c.Resources = DefaultResources()
	}
	for i := range c.Resources {
		if err := c.Resources[i].ValidateAndSetDefaults(); err != nil {
			return err
		}
	}

	c.validated = true
	return nil
}

// Policy returns the orchestrator policy the config describes.
func (c *Config) Policy() registry.Policy {
	return registry.Policy{
		TTL:         c.TTL.Std(),
		MaxRetries:  c.MaxRetries,
		BackoffBase: c.BackoffBase.Std(),
		BackoffStep: c.BackoffStep.Std(),
	}
}

// CacheSettings returns the cache.Config the config describes.
func (c *Config) CacheSettings() cache.Config {
	return cache.Config{
		Backend:  c.Cache.Backend,
		Dir:      c.Cache.Dir,
		RedisURL: c.Cache.RedisURL,
		MongoURI: c.Cache.MongoURI,
	}
}

// =============================================================================
// Loading
// =============================================================================

// DefaultConfigPath returns the conventional config location,
// $XDG_CONFIG_HOME/relboard/relboard.toml.
func DefaultConfigPath() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "relboard", "relboard.toml"), nil
}

// LoadConfig reads and validates a TOML config file. An empty path loads
// the default location; a missing file at the default location yields the
// built-in defaults, while a missing explicit path is an error.
func LoadConfig(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultConfigPath()
		if err != nil {
			return nil, fmt.Errorf("locate config: %w", err)
		}
		path = p
	}

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		// No config file, run on defaults
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DefaultResources is the built-in resource set used when the config
// names none, so a zero-config invocation still shows a useful board.
func DefaultResources() []Resource {
	strip := release.Rule{StripV: true}
	return []Resource{
		{Owner: "cli", Repo: "cli", Rule: strip},
		{Owner: "charmbracelet", Repo: "bubbletea", Rule: strip},
		{Owner: "BurntSushi", Repo: "toml", Rule: strip},
		{Owner: "go-chi", Repo: "chi", Rule: strip},
	}
}
