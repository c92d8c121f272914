package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v2"

	"github.com/shocklateboy92/bonarr/internal/api"
	"github.com/shocklateboy92/bonarr/internal/metrics"
	"github.com/shocklateboy92/bonarr/internal/service"
	"github.com/shocklateboy92/bonarr/internal/transmission"
	"github.com/shocklateboy92/bonarr/internal/webdav"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "run the REST API, library WebDAV share and metrics endpoint",
		Action: serve,
	}
}

func serve(c *cli.Context) error {
	rt, err := setup(c)
	if err != nil {
		return err
	}
	defer rt.close()
	cfg := rt.cfg

	slog.Info("Starting bonarr", "config", c.String("config"), "library", cfg.Library.Root)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	trans := transmission.New(transmission.Config{
		URL:      cfg.Transmission.URL,
		Username: cfg.Transmission.Username,
		Password: cfg.Transmission.Password,
		Timeout:  time.Duration(cfg.Transmission.TimeoutSeconds) * time.Second,
	})
	slog.Info("Transmission client initialized", "url", cfg.Transmission.URL)

	matching := rt.matchingService(
		service.WithTorrentSource(trans),
		service.WithMetrics(m),
	)
	reg.MustRegister(metrics.NewCollector(trans, matching, cfg.Library.TorrentFilterPath))

	apiServer := api.NewServer(matching, rt.tmdb, trans, cfg.Library.Root, cfg.Library.TorrentFilterPath)
	apiServer.SetTorrentAdder(trans)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler: apiServer.Handler(),
	}

	go func() {
		slog.Info("Starting REST API server", "port", cfg.Server.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("REST API server error", "error", err)
		}
	}()

	var webdavHTTPServer *http.Server
	if cfg.WebDAV.Enabled {
		webdav.WarnWeakConfig(cfg.WebDAV.Auth)
		webdavServer := webdav.NewServer(cfg.Library.Root)
		webdavHTTPServer = &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Server.WebDAVPort),
			Handler: webdav.NewAuthMiddleware(webdavServer.Handler(), cfg.WebDAV.Auth),
		}

		go func() {
			slog.Info("Starting WebDAV server", "port", cfg.Server.WebDAVPort)
			if err := webdavHTTPServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("WebDAV server error", "error", err)
			}
		}()
	}

	var metricsServer *metrics.Server
	if cfg.Server.MetricsPort > 0 {
		metricsServer = metrics.NewServer(cfg.Server.MetricsPort, reg)
		go func() {
			_ = metricsServer.Start()
		}()
	}

	slog.Info("bonarr is ready",
		"api_url", fmt.Sprintf("http://localhost:%d/api", cfg.Server.HTTPPort),
		"webdav_enabled", cfg.WebDAV.Enabled,
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	slog.Info("Received signal, shutting down", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("REST API server shutdown error", "error", err)
	}
	if webdavHTTPServer != nil {
		if err := webdavHTTPServer.Shutdown(ctx); err != nil {
			slog.Error("WebDAV server shutdown error", "error", err)
		}
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(ctx); err != nil {
			slog.Error("Metrics server shutdown error", "error", err)
		}
	}

	slog.Info("bonarr stopped")
	return nil
}
