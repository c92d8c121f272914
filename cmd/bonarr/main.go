package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/shocklateboy92/bonarr/internal/config"
	"github.com/shocklateboy92/bonarr/internal/library"
	"github.com/shocklateboy92/bonarr/internal/logging"
	"github.com/shocklateboy92/bonarr/internal/service"
	"github.com/shocklateboy92/bonarr/internal/tmdb"
)

func main() {
	app := &cli.App{
		Name:  "bonarr",
		Usage: "match torrent files to TV episodes and hard-link them into a media library",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "config.yaml",
				Usage:   "path to configuration file",
				EnvVars: []string{"BONARR_CONFIG"},
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			matchCommand(),
			checkCommand(),
		},
		DefaultCommand: "serve",
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("bonarr failed", "error", err)
		os.Exit(1)
	}
}

// env bundles the pieces every command needs.
type env struct {
	cfg      *config.Config
	logger   *logging.Logger
	cache    *tmdb.BadgerCache
	tmdb     *tmdb.Client
	resolver *library.Resolver
}

func setup(c *cli.Context) (*env, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("create directories: %w", err)
	}

	rt := &env{cfg: cfg}
	rt.logger = logging.Setup(cfg.Logging)

	rt.resolver, err = library.NewResolver(cfg.Library.Root)
	if err != nil {
		rt.close()
		return nil, err
	}

	ttl := time.Duration(cfg.TMDB.CacheTTLHours) * time.Hour
	rt.cache, err = tmdb.NewBadgerCache(cfg.TMDB.CacheDir, ttl)
	if err != nil {
		rt.close()
		return nil, fmt.Errorf("open metadata cache: %w", err)
	}

	if cfg.TMDB.APIKey == "" {
		slog.Warn("TMDB API key not configured, show lookups will fail")
	}
	rt.tmdb = tmdb.NewClient(cfg.TMDB.APIKey,
		tmdb.WithBaseURL(cfg.TMDB.BaseURL),
		tmdb.WithCache(rt.cache),
	)

	return rt, nil
}

func (rt *env) matchingService(opts ...service.MatchingServiceOption) *service.MatchingService {
	sessions := service.NewSessionStore(
		rt.cfg.Sessions.Max,
		time.Duration(rt.cfg.Sessions.TTLMinutes)*time.Minute,
	)
	opts = append([]service.MatchingServiceOption{service.WithSessionStore(sessions)}, opts...)

	return service.NewMatchingService(
		rt.tmdb,
		library.NewLinker(rt.resolver),
		library.NewChecker(rt.resolver),
		opts...,
	)
}

func (rt *env) close() {
	if rt.cache != nil {
		if err := rt.cache.Close(); err != nil {
			slog.Warn("Failed to close metadata cache", "error", err)
		}
	}
	if rt.logger != nil {
		_ = rt.logger.Close()
	}
}
