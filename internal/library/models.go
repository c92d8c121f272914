package library

import (
	"github.com/shocklateboy92/bonarr/internal/identify"
)

// LinkStatus is the outcome of linking a single episode.
type LinkStatus string

const (
	StatusSuccess LinkStatus = "success"
	StatusError   LinkStatus = "error"
)

// Target is the canonical location of one episode file inside the library.
// It is derived from its inputs and never cached.
type Target struct {
	SanitizedShowName         string `json:"sanitizedShowName"`
	SanitizedShowNameForFiles string `json:"sanitizedShowNameForFiles"`
	ShowDir                   string `json:"showDir"`
	SeasonDir                 string `json:"seasonDir"`
	TargetFileName            string `json:"targetFileName"`
	TargetFile                string `json:"targetFile"`
}

// ApplyRequest describes one batch of matches to link into the library.
type ApplyRequest struct {
	Matches      []identify.MatchRecord `json:"matches"`
	ShowName     string                 `json:"showName"`
	ShowID       int                    `json:"showId"`
	SeasonNumber int                    `json:"seasonNumber"`
	// TorrentPath is the download directory the torrent's file names are relative to.
	TorrentPath string `json:"torrentPath"`
}

// EpisodeLinkDetail reports what happened to one eligible match.
type EpisodeLinkDetail struct {
	Episode    int        `json:"episode"`
	SourceFile string     `json:"sourceFile"`
	TargetFile string     `json:"targetFile"`
	Status     LinkStatus `json:"status"`
	Error      string     `json:"error,omitempty"`
}

// ApplyResult is the transient report of a Linker.Apply call.
type ApplyResult struct {
	Success        bool                `json:"success"`
	ProcessedCount int                 `json:"processedCount"`
	Errors         []string            `json:"errors"`
	Details        []EpisodeLinkDetail `json:"details"`
	// Skipped lists episodes that had no file assigned and were not attempted.
	Skipped []int `json:"skipped"`
}

// Failed returns the details whose link attempt failed.
func (r *ApplyResult) Failed() []EpisodeLinkDetail {
	var out []EpisodeLinkDetail
	for _, d := range r.Details {
		if d.Status == StatusError {
			out = append(out, d)
		}
	}
	return out
}

// CheckRequest asks which episodes of a season already exist in the library.
type CheckRequest struct {
	ShowName     string `json:"showName"`
	ShowID       int    `json:"showId"`
	SeasonNumber int    `json:"seasonNumber"`
	Episodes     []int  `json:"episodes"`
}

// ExistingEpisodeFile is the existence report for one episode.
type ExistingEpisodeFile struct {
	Episode  int    `json:"episode"`
	FileName string `json:"fileName"`
	FilePath string `json:"filePath"`
	Exists   bool   `json:"exists"`
}
