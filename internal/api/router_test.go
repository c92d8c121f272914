package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shocklateboy92/bonarr/internal/identify"
	"github.com/shocklateboy92/bonarr/internal/library"
	"github.com/shocklateboy92/bonarr/internal/service"
	"github.com/shocklateboy92/bonarr/internal/tmdb"
	"github.com/shocklateboy92/bonarr/internal/torrent"
	"github.com/shocklateboy92/bonarr/internal/transmission"
)

type fakeMetadata struct{}

func (fakeMetadata) GetShow(_ context.Context, id int) (*tmdb.ShowDetails, error) {
	if id != 10 {
		return nil, tmdb.ErrNotFound
	}
	return &tmdb.ShowDetails{Show: tmdb.Show{ID: 10, Name: "My Show"}}, nil
}

func (fakeMetadata) GetSeason(_ context.Context, id int, season int) (*tmdb.Season, error) {
	if id != 10 {
		return nil, tmdb.ErrNotFound
	}
	return &tmdb.Season{SeasonNumber: season, Episodes: []tmdb.Episode{
		{EpisodeNumber: 1, Name: "One"},
		{EpisodeNumber: 2, Name: "Two"},
	}}, nil
}

func (fakeMetadata) SearchShows(_ context.Context, query string) ([]tmdb.Show, error) {
	return []tmdb.Show{{ID: 10, Name: "My Show"}}, nil
}

type fakeTorrents struct {
	downloadDir string
	added       []string
	authFail    bool
}

func (f *fakeTorrents) ListTorrents(context.Context) ([]torrent.Summary, error) {
	if f.authFail {
		return nil, transmission.ErrAuthFailed
	}
	return []torrent.Summary{
		{ID: 2, Name: "Other", DownloadDir: "/elsewhere", AddedDate: 20},
		{ID: 1, Name: "Pack", DownloadDir: f.downloadDir, AddedDate: 10},
	}, nil
}

func (f *fakeTorrents) GetTorrentFiles(_ context.Context, id int) (*torrent.Torrent, error) {
	if id != 1 {
		return nil, torrent.ErrTorrentNotFound
	}
	return &torrent.Torrent{
		Summary: torrent.Summary{ID: 1, Name: "Pack", DownloadDir: f.downloadDir},
		Files: []identify.TorrentFile{
			{Name: "Pack/My.Show.S01E01.mkv", Length: 1, Wanted: true},
			{Name: "Pack/My.Show.S01E02.mkv", Length: 1, Wanted: true},
			{Name: "Pack/extra.nfo", Length: 1, Wanted: true},
		},
	}, nil
}

func (f *fakeTorrents) AddTorrent(_ context.Context, magnet, downloadDir string) (*torrent.Added, error) {
	if _, err := torrent.ExtractInfoHash(magnet); err != nil {
		return nil, err
	}
	f.added = append(f.added, downloadDir)
	return &torrent.Added{ID: 3, Name: "New"}, nil
}

type testEnv struct {
	server   *Server
	torrents *fakeTorrents
	root     string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	base := t.TempDir()
	root := filepath.Join(base, "library")
	downloads := filepath.Join(base, "downloads")
	for _, name := range []string{"Pack/My.Show.S01E01.mkv", "Pack/My.Show.S01E02.mkv", "Pack/extra.nfo"} {
		p := filepath.Join(downloads, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(name), 0644))
	}
	require.NoError(t, os.MkdirAll(root, 0755))

	resolver, err := library.NewResolver(root)
	require.NoError(t, err)

	src := &fakeTorrents{downloadDir: downloads}
	matching := service.NewMatchingService(fakeMetadata{},
		library.NewLinker(resolver),
		library.NewChecker(resolver),
		service.WithTorrentSource(src),
	)

	s := NewServer(matching, fakeMetadata{}, src, root, downloads)
	s.SetTorrentAdder(src)
	return &testEnv{server: s, torrents: src, root: root}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestStatus(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[map[string]interface{}](t, rec)
	require.Equal(t, "ok", body["status"])
	require.Equal(t, env.root, body["libraryRoot"])
}

func TestCORSPreflight(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := env.do(t, http.MethodOptions, "/api/sessions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestListTorrentsFiltered(t *testing.T) {
	t.Parallel()
	require := require.New(t)
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/torrents", nil)
	require.Equal(http.StatusOK, rec.Code)
	list := decode[TorrentListResponse](t, rec)
	require.Len(list.Torrents, 1)
	require.Equal(1, list.Torrents[0].ID)

	rec = env.do(t, http.MethodGet, "/api/torrents?all=true", nil)
	require.Len(decode[TorrentListResponse](t, rec).Torrents, 2)

	env.torrents.authFail = true
	rec = env.do(t, http.MethodGet, "/api/torrents", nil)
	require.Equal(http.StatusBadGateway, rec.Code)
}

func TestAddTorrent(t *testing.T) {
	t.Parallel()
	require := require.New(t)
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/torrents", AddTorrentRequest{
		Magnet: "magnet:?xt=urn:btih:0123456789abcdef0123456789abcdef01234567",
	})
	require.Equal(http.StatusCreated, rec.Code)
	require.Equal([]string{env.server.filterPath}, env.torrents.added)

	rec = env.do(t, http.MethodPost, "/api/torrents", AddTorrentRequest{Magnet: "bogus"})
	require.Equal(http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/torrents", map[string]string{})
	require.Equal(http.StatusBadRequest, rec.Code)
}

func TestSessionFlow(t *testing.T) {
	t.Parallel()
	require := require.New(t)
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/sessions", service.StartSessionRequest{ShowID: 10, SeasonNumber: 1, TorrentID: 1})
	require.Equal(http.StatusCreated, rec.Code, rec.Body.String())
	view := decode[service.SessionView](t, rec)
	require.Len(view.Matches, 2)
	require.Equal(identify.ConfidenceHigh, view.Matches[0].Confidence)
	require.Equal(2, view.Summary.Matched)

	rec = env.do(t, http.MethodGet, "/api/sessions/"+view.ID, nil)
	require.Equal(http.StatusOK, rec.Code)

	// Clear episode 2, then it is skipped on apply.
	rec = env.do(t, http.MethodPut, "/api/sessions/"+view.ID+"/episodes/2", map[string]interface{}{"fileIndex": nil})
	require.Equal(http.StatusOK, rec.Code, rec.Body.String())
	assigned := decode[service.AssignResult](t, rec)
	require.Equal(identify.ConfidenceNone, assigned.Record.Confidence)
	require.Nil(assigned.Next)

	rec = env.do(t, http.MethodPut, "/api/sessions/"+view.ID+"/episodes/1", map[string]interface{}{"fileIndex": 1})
	require.Equal(http.StatusOK, rec.Code)
	assigned = decode[service.AssignResult](t, rec)
	require.Equal(identify.ConfidenceMedium, assigned.Record.Confidence)
	require.Equal(2, assigned.Next.EpisodeNumber)

	rec = env.do(t, http.MethodPut, "/api/sessions/"+view.ID+"/episodes/1", map[string]interface{}{"fileIndex": 9})
	require.Equal(http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/sessions/"+view.ID+"/apply", nil)
	require.Equal(http.StatusOK, rec.Code)
	result := decode[library.ApplyResult](t, rec)
	require.True(result.Success)
	require.Equal(1, result.ProcessedCount)
	require.Equal([]int{2}, result.Skipped)

	rec = env.do(t, http.MethodGet, "/api/sessions/"+view.ID+"/library", nil)
	require.Equal(http.StatusOK, rec.Code)
	files := decode[[]library.ExistingEpisodeFile](t, rec)
	require.Len(files, 2)
	require.True(files[0].Exists)
	require.Equal("My Show - S01E01.mkv", files[0].FileName)
	require.False(files[1].Exists)
}

func TestSessionErrors(t *testing.T) {
	t.Parallel()
	require := require.New(t)
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/sessions/nope", nil)
	require.Equal(http.StatusNotFound, rec.Code)
	require.Contains(decode[map[string]string](t, rec)["error"], "session")

	rec = env.do(t, http.MethodPost, "/api/sessions", service.StartSessionRequest{ShowID: 10, SeasonNumber: 1, TorrentID: 7})
	require.Equal(http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/sessions", service.StartSessionRequest{ShowID: 99, SeasonNumber: 1, TorrentID: 1})
	require.Equal(http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/sessions", map[string]int{"seasonNumber": 1})
	require.Equal(http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPut, "/api/sessions/nope/episodes/x", map[string]interface{}{"fileIndex": nil})
	require.Equal(http.StatusBadRequest, rec.Code)
}

func TestLibraryApplyAndCheck(t *testing.T) {
	t.Parallel()
	require := require.New(t)
	env := newTestEnv(t)

	torrentPath := env.server.filterPath
	req := library.ApplyRequest{
		Matches: []identify.MatchRecord{
			{Episode: identify.Episode{EpisodeNumber: 1, SeasonNumber: 1}, File: &identify.TorrentFile{Name: "Pack/My.Show.S01E01.mkv"}, Confidence: identify.ConfidenceHigh},
			{Episode: identify.Episode{EpisodeNumber: 2, SeasonNumber: 1}, File: &identify.TorrentFile{Name: "Pack/missing.mkv"}, Confidence: identify.ConfidenceLow},
		},
		ShowName:     "My Show",
		ShowID:       10,
		SeasonNumber: 1,
		TorrentPath:  torrentPath,
	}

	rec := env.do(t, http.MethodPost, "/api/library/apply", req)
	require.Equal(http.StatusOK, rec.Code)
	result := decode[library.ApplyResult](t, rec)
	require.False(result.Success)
	require.Equal(1, result.ProcessedCount)
	require.Len(result.Details, 2)
	require.Equal(library.StatusError, result.Details[1].Status)

	rec = env.do(t, http.MethodPost, "/api/library/check", library.CheckRequest{
		ShowName: "My Show", ShowID: 10, SeasonNumber: 1, Episodes: []int{2, 1},
	})
	require.Equal(http.StatusOK, rec.Code)
	files := decode[[]library.ExistingEpisodeFile](t, rec)
	require.Equal(1, files[0].Episode)
	require.True(files[0].Exists)
	require.Equal(2, files[1].Episode)
	require.False(files[1].Exists)

	bad := req
	bad.ShowName = ""
	rec = env.do(t, http.MethodPost, "/api/library/apply", bad)
	require.Equal(http.StatusBadRequest, rec.Code)

	bad = req
	bad.TorrentPath = ""
	rec = env.do(t, http.MethodPost, "/api/library/apply", bad)
	require.Equal(http.StatusBadRequest, rec.Code)
}

func TestShows(t *testing.T) {
	t.Parallel()
	require := require.New(t)
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/shows/search?query=my", nil)
	require.Equal(http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/shows/search", nil)
	require.Equal(http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/shows/10", nil)
	require.Equal(http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/shows/11", nil)
	require.Equal(http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/shows/10/seasons/1", nil)
	require.Equal(http.StatusOK, rec.Code)
	body := decode[struct {
		Episodes []identify.Episode `json:"episodes"`
	}](t, rec)
	require.Len(body.Episodes, 2)
	require.Equal(1, body.Episodes[0].SeasonNumber)
}
