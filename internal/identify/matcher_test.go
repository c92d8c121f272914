package identify

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func files(names ...string) []TorrentFile {
	out := make([]TorrentFile, len(names))
	for i, n := range names {
		out[i] = TorrentFile{Name: n, Length: int64(1000 + i), Wanted: true, Priority: PriorityNormal}
	}
	return out
}

func episodes(numbers ...int) []Episode {
	out := make([]Episode, len(numbers))
	for i, n := range numbers {
		out[i] = Episode{EpisodeNumber: n, SeasonNumber: 1, Name: "Episode"}
	}
	return out
}

func TestIsVideoFile(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	tests := []struct {
		path     string
		expected bool
	}{
		{"video.mkv", true},
		{"video.mp4", true},
		{"video.avi", true},
		{"video.m4v", true},
		{"video.mov", true},
		{"video.wmv", true},
		{"video.flv", true},
		{"video.webm", true},
		{"video.ts", true},
		{"video.m2ts", true},
		{"video.MKV", true},
		{"Show/Season 01/video.mkv", true},
		{"subtitle.srt", false},
		{"info.nfo", false},
		{"poster.jpg", false},
		{"video.vob", false},
		{"video", false},
	}

	for _, tc := range tests {
		require.Equal(tc.expected, IsVideoFile(tc.path), "IsVideoFile(%q)", tc.path)
	}
}

func TestAutoClassifyHighWins(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	tests := []struct {
		name  string
		files []TorrentFile
	}{
		{"low, medium, high", files("random 7.mkv", "Episode 07.mkv", "S01E07.mkv")},
		{"high, low, medium", files("S01E07.mkv", "random 7.mkv", "Episode 07.mkv")},
		{"medium, high, low", files("Episode 07.mkv", "S01E07.mkv", "random 7.mkv")},
	}

	for _, tc := range tests {
		records := AutoClassify(episodes(7), tc.files, 1)
		require.Len(records, 1, tc.name)
		require.NotNil(records[0].File, tc.name)
		require.Equal("S01E07.mkv", records[0].File.Name, tc.name)
		require.Equal(ConfidenceHigh, records[0].Confidence, tc.name)
	}
}

func TestAutoClassifyMediumUpgradesLow(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	records := AutoClassify(episodes(7), files("random 7.mkv", "Episode 07.mkv"), 1)
	require.Equal("Episode 07.mkv", records[0].File.Name)
	require.Equal(ConfidenceMedium, records[0].Confidence)
	require.Equal(1, *records[0].FileIndex)

	// A later low never replaces an earlier medium.
	records = AutoClassify(episodes(7), files("Episode 07.mkv", "random 7.mkv"), 1)
	require.Equal("Episode 07.mkv", records[0].File.Name)
	require.Equal(ConfidenceMedium, records[0].Confidence)
}

func TestAutoClassifyFirstOccurrenceTieBreak(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	a, b := "Show Episode 03 v1.mkv", "Show Episode 03 v2.mkv"

	records := AutoClassify(episodes(3), files(a, b), 1)
	require.Equal(a, records[0].File.Name)
	require.Equal(ConfidenceMedium, records[0].Confidence)

	records = AutoClassify(episodes(3), files(b, a), 1)
	require.Equal(b, records[0].File.Name)

	// Same tie-break among high matches.
	records = AutoClassify(episodes(3), files("S01E03.720p.mkv", "S01E03.1080p.mkv"), 1)
	require.Equal("S01E03.720p.mkv", records[0].File.Name)
}

func TestAutoClassifyFiltersNonVideo(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	fs := files("Show.S01E01.srt", "Show.S01E01.nfo", "readme.txt", "Show.S01E01.mkv")
	records := AutoClassify(episodes(1, 2), fs, 1)

	require.Len(records, 2)
	require.Equal("Show.S01E01.mkv", records[0].File.Name)
	require.Equal(3, *records[0].FileIndex, "index refers to the full torrent file list")

	require.Nil(records[1].File)
	require.Nil(records[1].FileIndex)
	require.Equal(ConfidenceNone, records[1].Confidence)
	require.Equal(2, records[1].Episode.EpisodeNumber)
}

func TestAutoClassifySeasonPack(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	fs := files(
		"Show.S02.1080p/Show.S02E01.1080p.mkv",
		"Show.S02.1080p/Show.S02E02.1080p.mkv",
		"Show.S02.1080p/Subs/Show.S02E01.srt",
		"Show.S02.1080p/Show.S02E03.1080p.mkv",
		"Show.S02.1080p/Sample/sample.mkv",
	)
	eps := []Episode{{EpisodeNumber: 1, SeasonNumber: 2}, {EpisodeNumber: 2, SeasonNumber: 2}, {EpisodeNumber: 3, SeasonNumber: 2}, {EpisodeNumber: 4, SeasonNumber: 2}}

	records := AutoClassify(eps, fs, 2)
	require.Len(records, 4)

	for i, want := range []string{
		"Show.S02.1080p/Show.S02E01.1080p.mkv",
		"Show.S02.1080p/Show.S02E02.1080p.mkv",
		"Show.S02.1080p/Show.S02E03.1080p.mkv",
	} {
		require.NotNil(records[i].File)
		require.Equal(want, records[i].File.Name)
		require.Equal(ConfidenceHigh, records[i].Confidence)
	}
	require.Nil(records[3].File)

	summary := Summarize(records)
	require.Equal(Summary{Total: 4, Matched: 3, High: 3, None: 1}, summary)
}

func TestAutoClassifyDeterministic(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	fs := files("a - 01.mkv", "Episode 2.mp4", "S01E03.avi", "b - 01.mkv", "Episode 02.mkv")
	eps := episodes(1, 2, 3, 4)

	first := AutoClassify(eps, fs, 1)
	for i := 0; i < 10; i++ {
		require.Equal(first, AutoClassify(eps, fs, 1))
	}
}

func TestAutoClassifyDoesNotAliasInput(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	fs := files("S01E01.mkv")
	records := AutoClassify(episodes(1), fs, 1)
	fs[0].Name = "changed.mkv"

	require.Equal("S01E01.mkv", records[0].File.Name)
}

func TestAutoClassifyEmptyInputs(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	require.Empty(AutoClassify(nil, files("S01E01.mkv"), 1))

	records := AutoClassify(episodes(1, 2), nil, 1)
	require.Len(records, 2)
	for _, r := range records {
		require.False(r.HasFile())
		require.Equal(ConfidenceNone, r.Confidence)
	}
}
