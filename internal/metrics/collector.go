package metrics

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/shocklateboy92/bonarr/internal/torrent"
)

// SessionCounter reports how many matching sessions are live.
type SessionCounter interface {
	ActiveSessions() int
}

// Collector implements prometheus.Collector for download-client and session state.
// It queries the torrent source lazily on each Prometheus scrape rather than
// maintaining duplicate state.
type Collector struct {
	source     torrent.Source // may be nil
	sessions   SessionCounter // may be nil
	filterPath string
	timeout    time.Duration
	log        *slog.Logger

	// Per-torrent descriptors (labels: id, name)
	sizeBytes     *prometheus.Desc
	progressRatio *prometheus.Desc

	// Aggregate descriptors
	torrentsVisible *prometheus.Desc
	scrapeSuccess   *prometheus.Desc
	sessionsActive  *prometheus.Desc
}

var torrentLabels = []string{"id", "name"}

// NewCollector creates a collector that scrapes torrent and session stats on demand.
// Only torrents below filterPath are reported when it is set.
func NewCollector(source torrent.Source, sessions SessionCounter, filterPath string) *Collector {
	return &Collector{
		source:     source,
		sessions:   sessions,
		filterPath: filterPath,
		timeout:    5 * time.Second,
		log:        slog.With("component", "metrics-collector"),

		sizeBytes: prometheus.NewDesc(
			"bonarr_torrent_size_bytes",
			"Total size of the torrent in bytes.",
			torrentLabels, nil,
		),
		progressRatio: prometheus.NewDesc(
			"bonarr_torrent_progress_ratio",
			"Download progress as a ratio from 0.0 to 1.0.",
			torrentLabels, nil,
		),
		torrentsVisible: prometheus.NewDesc(
			"bonarr_torrents_visible",
			"Number of torrents in the configured download directory.",
			nil, nil,
		),
		scrapeSuccess: prometheus.NewDesc(
			"bonarr_torrent_source_up",
			"Whether the last query of the download client succeeded.",
			nil, nil,
		),
		sessionsActive: prometheus.NewDesc(
			"bonarr_sessions_active",
			"Number of live matching sessions.",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.sizeBytes
	ch <- c.progressRatio
	ch <- c.torrentsVisible
	ch <- c.scrapeSuccess
	ch <- c.sessionsActive
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	if c.sessions != nil {
		ch <- prometheus.MustNewConstMetric(c.sessionsActive, prometheus.GaugeValue, float64(c.sessions.ActiveSessions()))
	}

	if c.source == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	list, err := c.source.ListTorrents(ctx)
	if err != nil {
		c.log.Warn("Torrent scrape failed", "error", err)
		ch <- prometheus.MustNewConstMetric(c.scrapeSuccess, prometheus.GaugeValue, 0)
		return
	}
	ch <- prometheus.MustNewConstMetric(c.scrapeSuccess, prometheus.GaugeValue, 1)

	list = torrent.FilterByDownloadDir(list, c.filterPath)
	for _, t := range list {
		labels := []string{strconv.Itoa(t.ID), t.Name}
		ch <- prometheus.MustNewConstMetric(c.sizeBytes, prometheus.GaugeValue, float64(t.TotalSize), labels...)
		ch <- prometheus.MustNewConstMetric(c.progressRatio, prometheus.GaugeValue, t.PercentDone, labels...)
	}

	ch <- prometheus.MustNewConstMetric(c.torrentsVisible, prometheus.GaugeValue, float64(len(list)))
}
