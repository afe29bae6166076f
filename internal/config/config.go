package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultAPIURL is used when neither config nor environment name an API.
	DefaultAPIURL = "http://localhost:3000/api"
	// DefaultCacheTTL bounds how long cached list pages are served.
	DefaultCacheTTL = 5 * time.Minute

	// DefaultGitHubAPIURL is the public GitHub REST API.
	DefaultGitHubAPIURL = "https://api.github.com"

	APIURLEnvVar      = "FOLIO_API_URL"
	SiteURLEnvVar     = "FOLIO_SITE_URL"
	LocaleEnvVar      = "FOLIO_LOCALE"
	GitHubTokenEnvVar = "FOLIO_GITHUB_TOKEN"
	GitHubRepoEnvVar  = "FOLIO_GITHUB_REPO"
)

// Config represents the CLI configuration
type Config struct {
	// Base URL of the portfolio REST API
	APIURL string `yaml:"api_url,omitempty"`

	// Public portfolio URL opened by "folio preview"
	SiteURL string `yaml:"site_url,omitempty"`

	// Default output format (text, json, table, yaml)
	Output string `yaml:"output,omitempty"`

	// Default color mode (auto, always, never)
	Color string `yaml:"color,omitempty"`

	// Locale for table labels and dates (en, es)
	Locale string `yaml:"locale,omitempty"`

	// Default rows per page for tables
	PerPage int `yaml:"per_page,omitempty"`

	Cache CacheConfig `yaml:"cache,omitempty"`

	// Repository whose commits "folio commits" lists
	GitHub GitHubConfig `yaml:"github,omitempty"`

	// Per-resource overrides keyed by resource name
	Resources map[string]ResourceConfig `yaml:"resources,omitempty"`
}

// CacheConfig controls the on-disk list cache
type CacheConfig struct {
	Dir      string `yaml:"dir,omitempty"`
	TTL      string `yaml:"ttl,omitempty"`
	Disabled bool   `yaml:"disabled,omitempty"`
}

// GitHubConfig names the site's source repository
type GitHubConfig struct {
	// owner/name
	Repo   string `yaml:"repo,omitempty"`
	Branch string `yaml:"branch,omitempty"`
	APIURL string `yaml:"api_url,omitempty"`
	Token  string `yaml:"token,omitempty"`
}

// ResourceConfig overrides how one resource is listed
type ResourceConfig struct {
	PerPage int            `yaml:"per_page,omitempty"`
	Columns []ColumnConfig `yaml:"columns,omitempty"`
}

// ColumnConfig declares one table column
type ColumnConfig struct {
	Key   string `yaml:"key"`
	Label string `yaml:"label,omitempty"`
	// auto, text, image, date, flag, longtext, actions
	Kind string `yaml:"kind,omitempty"`
	// yesno or active, for flag columns
	Flag string `yaml:"flag,omitempty"`
}

// configPathFunc is the function used to get the default config path
// It can be overridden for testing
var configPathFunc = defaultConfigPath

// SetConfigPathFunc sets the config path function for testing.
// Returns the original function so it can be restored.
func SetConfigPathFunc(fn func() (string, error)) func() (string, error) {
	orig := configPathFunc
	configPathFunc = fn
	return orig
}

// defaultConfigPath returns ~/.config/folio/config.yaml
func defaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "folio", "config.yaml"), nil
}

// DefaultConfigPath returns ~/.config/folio/config.yaml
func DefaultConfigPath() (string, error) {
	return configPathFunc()
}

// Load loads config from the default path, returns empty config if not found
func Load() (*Config, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return &Config{}, nil
	}
	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Config{}, nil // Return empty config if file doesn't exist
	}
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}
	return &cfg, nil
}

// Save saves config to the default path
func (c *Config) Save() error {
	path, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	return c.SaveToPath(path)
}

// SaveToPath saves config to a specific path
func (c *Config) SaveToPath(path string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// GetAPIURL returns FOLIO_API_URL, the configured URL or DefaultAPIURL.
func (c *Config) GetAPIURL() string {
	if v := strings.TrimSpace(os.Getenv(APIURLEnvVar)); v != "" {
		return strings.TrimRight(v, "/")
	}
	if c.APIURL != "" {
		return strings.TrimRight(c.APIURL, "/")
	}
	return DefaultAPIURL
}

// GetSiteURL returns FOLIO_SITE_URL or the configured public site URL.
func (c *Config) GetSiteURL() string {
	if v := strings.TrimSpace(os.Getenv(SiteURLEnvVar)); v != "" {
		return v
	}
	return c.SiteURL
}

// GetLocale returns FOLIO_LOCALE, the configured locale or LANG.
func (c *Config) GetLocale() string {
	if v := strings.TrimSpace(os.Getenv(LocaleEnvVar)); v != "" {
		return v
	}
	if c.Locale != "" {
		return c.Locale
	}
	return os.Getenv("LANG")
}

// GetOutput returns the effective output format (config default or empty)
func (c *Config) GetOutput() string {
	return c.Output
}

// GetColor returns the effective color mode (config default or empty)
func (c *Config) GetColor() string {
	return c.Color
}

// CacheTTL returns the parsed cache TTL, or DefaultCacheTTL when unset or invalid.
func (c *Config) CacheTTL() time.Duration {
	if c.Cache.TTL == "" {
		return DefaultCacheTTL
	}
	d, err := time.ParseDuration(c.Cache.TTL)
	if err != nil || d < 0 {
		return DefaultCacheTTL
	}
	return d
}

// CacheDir returns the configured cache dir or <user cache dir>/folio.
func (c *Config) CacheDir() string {
	if c.Cache.Dir != "" {
		return c.Cache.Dir
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "folio-cache")
	}
	return filepath.Join(dir, "folio")
}

// GitHubRepo returns FOLIO_GITHUB_REPO or github.repo.
func (c *Config) GitHubRepo() string {
	if v := strings.TrimSpace(os.Getenv(GitHubRepoEnvVar)); v != "" {
		return v
	}
	return c.GitHub.Repo
}

// GitHubToken returns FOLIO_GITHUB_TOKEN or github.token. Empty means
// unauthenticated requests.
func (c *Config) GitHubToken() string {
	if v := strings.TrimSpace(os.Getenv(GitHubTokenEnvVar)); v != "" {
		return v
	}
	return c.GitHub.Token
}

// GitHubAPIURL returns github.api_url or DefaultGitHubAPIURL.
func (c *Config) GitHubAPIURL() string {
	if c.GitHub.APIURL != "" {
		return strings.TrimRight(c.GitHub.APIURL, "/")
	}
	return DefaultGitHubAPIURL
}

// Resource returns the overrides for a resource (zero value if none).
func (c *Config) Resource(name string) ResourceConfig {
	if c.Resources == nil {
		return ResourceConfig{}
	}
	return c.Resources[name]
}

// Keys lists the scalar keys accepted by Get and Set.
func Keys() []string {
	keys := make([]string, 0, len(scalarKeys))
	for k := range scalarKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type scalarKey struct {
	get func(*Config) string
	set func(*Config, string) error
}

var scalarKeys = map[string]scalarKey{
	"api_url": {
		get: func(c *Config) string { return c.APIURL },
		set: func(c *Config, v string) error { c.APIURL = v; return nil },
	},
	"site_url": {
		get: func(c *Config) string { return c.SiteURL },
		set: func(c *Config, v string) error { c.SiteURL = v; return nil },
	},
	"output": {
		get: func(c *Config) string { return c.Output },
		set: func(c *Config, v string) error { c.Output = v; return nil },
	},
	"color": {
		get: func(c *Config) string { return c.Color },
		set: func(c *Config, v string) error {
			switch v {
			case "auto", "always", "never":
				c.Color = v
				return nil
			}
			return fmt.Errorf("invalid color mode %q, must be one of: auto, always, never", v)
		},
	},
	"locale": {
		get: func(c *Config) string { return c.Locale },
		set: func(c *Config, v string) error { c.Locale = v; return nil },
	},
	"per_page": {
		get: func(c *Config) string {
			if c.PerPage == 0 {
				return ""
			}
			return strconv.Itoa(c.PerPage)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 || n > 100 {
				return fmt.Errorf("invalid per_page %q, must be an integer between 1 and 100", v)
			}
			c.PerPage = n
			return nil
		},
	},
	"cache.dir": {
		get: func(c *Config) string { return c.Cache.Dir },
		set: func(c *Config, v string) error { c.Cache.Dir = v; return nil },
	},
	"cache.ttl": {
		get: func(c *Config) string { return c.Cache.TTL },
		set: func(c *Config, v string) error {
			if _, err := time.ParseDuration(v); err != nil {
				return fmt.Errorf("invalid cache.ttl %q: %w", v, err)
			}
			c.Cache.TTL = v
			return nil
		},
	},
	"github.repo": {
		get: func(c *Config) string { return c.GitHub.Repo },
		set: func(c *Config, v string) error {
			owner, name, ok := strings.Cut(v, "/")
			if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
				return fmt.Errorf("invalid github.repo %q, must be owner/name", v)
			}
			c.GitHub.Repo = v
			return nil
		},
	},
	"github.branch": {
		get: func(c *Config) string { return c.GitHub.Branch },
		set: func(c *Config, v string) error { c.GitHub.Branch = v; return nil },
	},
	"github.api_url": {
		get: func(c *Config) string { return c.GitHub.APIURL },
		set: func(c *Config, v string) error { c.GitHub.APIURL = v; return nil },
	},
	"github.token": {
		get: func(c *Config) string { return c.GitHub.Token },
		set: func(c *Config, v string) error { c.GitHub.Token = v; return nil },
	},
	"cache.disabled": {
		get: func(c *Config) string { return strconv.FormatBool(c.Cache.Disabled) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid cache.disabled %q, must be true or false", v)
			}
			c.Cache.Disabled = b
			return nil
		},
	},
}

// Get returns the value of a scalar key.
func (c *Config) Get(key string) (string, error) {
	k, ok := scalarKeys[key]
	if !ok {
		return "", fmt.Errorf("unknown config key %q\n\nSupported keys: %s", key, strings.Join(Keys(), ", "))
	}
	return k.get(c), nil
}

// Set validates and assigns a scalar key.
func (c *Config) Set(key, value string) error {
	k, ok := scalarKeys[key]
	if !ok {
		return fmt.Errorf("unknown config key %q\n\nSupported keys: %s", key, strings.Join(Keys(), ", "))
	}
	return k.set(c, strings.TrimSpace(value))
}
