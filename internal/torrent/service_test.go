package torrent

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFilterByDownloadDir(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	all := []Summary{
		{ID: 1, DownloadDir: "/downloads/tv"},
		{ID: 2, DownloadDir: "/downloads/movies"},
		{ID: 3, DownloadDir: "/downloads/tv/anime"},
	}

	require.Equal(all, FilterByDownloadDir(all, ""))

	got := FilterByDownloadDir(all, "/downloads/tv")
	require.Len(got, 2)
	require.Equal(1, got[0].ID)
	require.Equal(3, got[1].ID)

	require.Empty(FilterByDownloadDir(all, "/elsewhere"))
}

func TestStatusJSON(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(Summary{ID: 1, Status: StatusSeeding})
	require.NoError(t, err)
	require.Contains(t, string(data), `"status":"seeding"`)
	require.Equal(t, "unknown", Status(42).String())
}

func TestExtractInfoHash(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	hash, err := ExtractInfoHash("magnet:?xt=urn:btih:0123456789ABCDEF0123456789ABCDEF01234567&dn=Show")
	require.NoError(err)
	require.Equal("0123456789abcdef0123456789abcdef01234567", hash)

	_, err = ExtractInfoHash("https://example.com/not-a-magnet")
	require.ErrorIs(err, ErrInvalidMagnet)
}

func TestStatusRoundTrip(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	var s Status
	require.NoError(s.UnmarshalText([]byte("download-pending")))
	require.Equal(StatusDownloadPending, s)
	require.Error(s.UnmarshalText([]byte("exploded")))
}
