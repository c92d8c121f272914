package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/shocklateboy92/bonarr/internal/library"
)

// Config represents the application configuration
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Library      LibraryConfig      `yaml:"library"`
	TMDB         TMDBConfig         `yaml:"tmdb"`
	Transmission TransmissionConfig `yaml:"transmission"`
	Sessions     SessionsConfig     `yaml:"sessions"`
	WebDAV       WebDAVConfig       `yaml:"webdav"`
	Logging      LoggingConfig      `yaml:"logging"`
}

type ServerConfig struct {
	HTTPPort    int `yaml:"http_port"`
	WebDAVPort  int `yaml:"webdav_port"`
	MetricsPort int `yaml:"metrics_port"` // 0 disables the metrics server
}

type LibraryConfig struct {
	Root string `yaml:"root"`
	// TorrentFilterPath restricts torrent listings to this download directory
	// and is used as the download directory for new torrents.
	TorrentFilterPath string `yaml:"torrent_filter_path"`
}

type TMDBConfig struct {
	APIKey        string `yaml:"api_key"`
	BaseURL       string `yaml:"base_url"`
	CacheDir      string `yaml:"cache_dir"` // empty keeps the cache in memory
	CacheTTLHours int    `yaml:"cache_ttl_hours"`
}

type TransmissionConfig struct {
	URL            string `yaml:"url"`
	Username       string `yaml:"username"`
	Password       string `yaml:"password"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type SessionsConfig struct {
	Max        int `yaml:"max"`
	TTLMinutes int `yaml:"ttl_minutes"`
}

type WebDAVConfig struct {
	Enabled bool             `yaml:"enabled"`
	Auth    WebDAVAuthConfig `yaml:"auth"`
}

type WebDAVAuthConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type LoggingConfig struct {
	Level      string `yaml:"level"`  // debug, info, warn, error
	Format     string `yaml:"format"` // text or json
	File       string `yaml:"file"`   // empty logs to stderr only
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// DefaultConfig returns configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:    4444,
			WebDAVPort:  36911,
			MetricsPort: 9090,
		},
		TMDB: TMDBConfig{
			BaseURL:       "https://api.themoviedb.org/3",
			CacheDir:      "./data/tmdb-cache",
			CacheTTLHours: 24,
		},
		Transmission: TransmissionConfig{
			URL:            "http://localhost:9091/transmission/rpc",
			TimeoutSeconds: 30,
		},
		Sessions: SessionsConfig{
			Max:        64,
			TTLMinutes: 120,
		},
		WebDAV: WebDAVConfig{
			Enabled: true,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  10,
			MaxBackups: 5,
			MaxAgeDays: 30,
		},
	}
}

// Load reads configuration from a YAML file, then applies a .env file from the
// working directory (if any) and the process environment on top.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	// godotenv never overrides variables that are already set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg.applyEnv(os.LookupEnv)
	return cfg, nil
}

// applyEnv overrides file values with environment variables. The VITE_ prefixed
// names are accepted for compatibility with existing deployments.
func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	first := func(names ...string) (string, bool) {
		for _, name := range names {
			if v, ok := lookup(name); ok && strings.TrimSpace(v) != "" {
				return v, true
			}
		}
		return "", false
	}

	if v, ok := first("LIBRARY_ROOT", "VITE_LIBRARY_ROOT"); ok {
		c.Library.Root = v
	}
	if v, ok := first("TORRENT_FILTER_PATH", "VITE_TORRENT_FILTER_PATH"); ok {
		c.Library.TorrentFilterPath = v
	}
	if v, ok := first("TMDB_API_KEY", "VITE_TMDB_API_KEY"); ok {
		c.TMDB.APIKey = v
	}
	if v, ok := first("TRANSMISSION_URL"); ok {
		c.Transmission.URL = v
	}
	if v, ok := first("TRANSMISSION_USERNAME"); ok {
		c.Transmission.Username = v
	}
	if v, ok := first("TRANSMISSION_PASSWORD"); ok {
		c.Transmission.Password = v
	}
}

// Validate checks the configuration for values the server cannot start without.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Library.Root) == "" {
		return library.ErrLibraryRootMissing
	}
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid http_port %d", c.Server.HTTPPort)
	}
	if c.WebDAV.Enabled && (c.Server.WebDAVPort <= 0 || c.Server.WebDAVPort > 65535) {
		return fmt.Errorf("invalid webdav_port %d", c.Server.WebDAVPort)
	}
	if c.Server.MetricsPort < 0 || c.Server.MetricsPort > 65535 {
		return fmt.Errorf("invalid metrics_port %d", c.Server.MetricsPort)
	}
	if c.Sessions.Max <= 0 {
		return fmt.Errorf("sessions.max must be positive, got %d", c.Sessions.Max)
	}
	if c.WebDAV.Auth.Enabled && c.WebDAV.Auth.Username == "" {
		return errors.New("webdav.auth.username is required when auth is enabled")
	}
	return nil
}

// EnsureDirectories creates required directories
func (c *Config) EnsureDirectories() error {
	var dirs []string
	if c.TMDB.CacheDir != "" {
		dirs = append(dirs, c.TMDB.CacheDir)
	}
	if c.Logging.File != "" {
		dirs = append(dirs, filepath.Dir(c.Logging.File))
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	return nil
}
