package metrics

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/shocklateboy92/bonarr/internal/torrent"
)

func TestNilMetricsIsNoop(t *testing.T) {
	t.Parallel()

	var m *Metrics
	m.ObserveLink(true)
	m.ObserveApply(false)
	m.ObserveAutoMatch("high")
	m.ObserveOverride("assign")
	m.ObserveExistenceCheck()
	m.ObserveSessionStarted()
	m.ObserveUpstreamFailure("tmdb")
}

// gather returns the metrics of one family keyed by their joined label values.
func gather(t *testing.T, reg *prometheus.Registry, name string) map[string]float64 {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)

	out := map[string]float64{}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			var labels []string
			for _, lp := range m.GetLabel() {
				labels = append(labels, lp.GetValue())
			}
			key := strings.Join(labels, ",")
			switch {
			case m.GetCounter() != nil:
				out[key] = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				out[key] = m.GetGauge().GetValue()
			}
		}
	}
	return out
}

func TestCounters(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	reg := prometheus.NewRegistry()
	m := New(reg)
	m.ObserveLink(true)
	m.ObserveLink(true)
	m.ObserveLink(false)
	m.ObserveApply(true)
	m.ObserveAutoMatch("high")

	require.Equal(map[string]float64{"success": 2, "error": 1}, gather(t, reg, "bonarr_link_attempts_total"))
	require.Equal(map[string]float64{"success": 1}, gather(t, reg, "bonarr_apply_batches_total"))
	require.Equal(map[string]float64{"high": 1}, gather(t, reg, "bonarr_auto_matches_total"))
}

type stubSource struct {
	list []torrent.Summary
	err  error
}

func (s *stubSource) ListTorrents(context.Context) ([]torrent.Summary, error) {
	return s.list, s.err
}

func (s *stubSource) GetTorrentFiles(context.Context, int) (*torrent.Torrent, error) {
	return nil, torrent.ErrTorrentNotFound
}

type fixedSessions int

func (f fixedSessions) ActiveSessions() int { return int(f) }

func TestCollector(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	src := &stubSource{list: []torrent.Summary{
		{ID: 1, Name: "tv", DownloadDir: "/dl/tv", TotalSize: 100, PercentDone: 0.5},
		{ID: 2, Name: "movie", DownloadDir: "/dl/movies", TotalSize: 50, PercentDone: 1},
	}}

	reg := prometheus.NewRegistry()
	reg.MustRegister(NewCollector(src, fixedSessions(3), "/dl/tv"))

	require.Equal(map[string]float64{"": 3}, gather(t, reg, "bonarr_sessions_active"))
	require.Equal(map[string]float64{"": 1}, gather(t, reg, "bonarr_torrents_visible"))
	require.Equal(map[string]float64{"": 1}, gather(t, reg, "bonarr_torrent_source_up"))
	require.Equal(map[string]float64{"1,tv": 0.5}, gather(t, reg, "bonarr_torrent_progress_ratio"))
	require.Equal(map[string]float64{"1,tv": 100}, gather(t, reg, "bonarr_torrent_size_bytes"))
}

func TestCollectorSourceDown(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	reg.MustRegister(NewCollector(&stubSource{err: errors.New("refused")}, nil, ""))

	require.Equal(t, map[string]float64{"": 0}, gather(t, reg, "bonarr_torrent_source_up"))
	require.Empty(t, gather(t, reg, "bonarr_torrents_visible"))
}
