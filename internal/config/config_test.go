package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shocklateboy92/bonarr/internal/library"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	require := require.New(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(err)
	require.Equal(4444, cfg.Server.HTTPPort)
	require.Equal(36911, cfg.Server.WebDAVPort)
	require.Equal(24, cfg.TMDB.CacheTTLHours)
	require.Equal(10, cfg.Logging.MaxSizeMB)
}

func TestLoadYAML(t *testing.T) {
	require := require.New(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(os.WriteFile(path, []byte(`
server:
  http_port: 8080
library:
  root: /media/tv
  torrent_filter_path: /downloads/tv
sessions:
  max: 3
webdav:
  enabled: false
`), 0644))

	cfg, err := Load(path)
	require.NoError(err)
	require.Equal(8080, cfg.Server.HTTPPort)
	require.False(cfg.WebDAV.Enabled)
	require.Equal(3, cfg.Sessions.Max)
	// Untouched sections keep their defaults.
	require.Equal(30, cfg.Transmission.TimeoutSeconds)

	// The environment may override these, so only assert when it does not.
	if _, ok := os.LookupEnv("LIBRARY_ROOT"); !ok {
		if _, ok := os.LookupEnv("VITE_LIBRARY_ROOT"); !ok {
			require.Equal("/media/tv", cfg.Library.Root)
		}
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		env   map[string]string
		check func(*require.Assertions, *Config)
	}{
		{
			name: "plain names",
			env: map[string]string{
				"LIBRARY_ROOT":          "/lib",
				"TORRENT_FILTER_PATH":   "/dl",
				"TMDB_API_KEY":          "key",
				"TRANSMISSION_URL":      "http://t:9091/transmission/rpc",
				"TRANSMISSION_USERNAME": "u",
				"TRANSMISSION_PASSWORD": "p",
			},
			check: func(r *require.Assertions, c *Config) {
				r.Equal("/lib", c.Library.Root)
				r.Equal("/dl", c.Library.TorrentFilterPath)
				r.Equal("key", c.TMDB.APIKey)
				r.Equal("http://t:9091/transmission/rpc", c.Transmission.URL)
				r.Equal("u", c.Transmission.Username)
				r.Equal("p", c.Transmission.Password)
			},
		},
		{
			name: "vite names",
			env: map[string]string{
				"VITE_LIBRARY_ROOT":        "/vite/lib",
				"VITE_TORRENT_FILTER_PATH": "/vite/dl",
			},
			check: func(r *require.Assertions, c *Config) {
				r.Equal("/vite/lib", c.Library.Root)
				r.Equal("/vite/dl", c.Library.TorrentFilterPath)
			},
		},
		{
			name: "plain name wins over vite name",
			env: map[string]string{
				"LIBRARY_ROOT":      "/plain",
				"VITE_LIBRARY_ROOT": "/vite",
			},
			check: func(r *require.Assertions, c *Config) {
				r.Equal("/plain", c.Library.Root)
			},
		},
		{
			name: "blank values ignored",
			env:  map[string]string{"LIBRARY_ROOT": "  "},
			check: func(r *require.Assertions, c *Config) {
				r.Equal("/from-file", c.Library.Root)
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			cfg.Library.Root = "/from-file"
			cfg.applyEnv(envMap(tt.env))
			tt.check(require.New(t), cfg)
		})
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	cfg := DefaultConfig()
	require.ErrorIs(cfg.Validate(), library.ErrLibraryRootMissing)

	cfg.Library.Root = "/lib"
	require.NoError(cfg.Validate())

	cfg.Server.HTTPPort = 70000
	require.Error(cfg.Validate())
	cfg.Server.HTTPPort = 4444

	cfg.Sessions.Max = 0
	require.Error(cfg.Validate())
	cfg.Sessions.Max = 1

	cfg.WebDAV.Auth.Enabled = true
	require.Error(cfg.Validate())
	cfg.WebDAV.Auth.Username = "admin"
	require.NoError(cfg.Validate())
}

func TestEnsureDirectories(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	base := t.TempDir()
	cfg := DefaultConfig()
	cfg.TMDB.CacheDir = filepath.Join(base, "cache", "tmdb")
	cfg.Logging.File = filepath.Join(base, "logs", "bonarr.log")

	require.NoError(cfg.EnsureDirectories())
	require.DirExists(cfg.TMDB.CacheDir)
	require.DirExists(filepath.Join(base, "logs"))
}
