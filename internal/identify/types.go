package identify

import (
	"encoding/json"
	"fmt"
)

// Confidence represents how certain the matcher is that a file is a given episode.
// Values are ordered: none < low < medium < high.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
	ConfidenceNone   Confidence = "none"
)

// Rank returns the ordinal position of the confidence tier.
func (c Confidence) Rank() int {
	switch c {
	case ConfidenceHigh:
		return 3
	case ConfidenceMedium:
		return 2
	case ConfidenceLow:
		return 1
	default:
		return 0
	}
}

// Priority is the download priority Transmission assigns to a torrent file.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityNormal Priority = "normal"
	PriorityLow    Priority = "low"
)

// PriorityFromRPC converts Transmission's numeric priority (1, 0, -1).
func PriorityFromRPC(p int) Priority {
	switch {
	case p > 0:
		return PriorityHigh
	case p < 0:
		return PriorityLow
	default:
		return PriorityNormal
	}
}

// Episode is the slice of provider metadata the matcher consumes.
type Episode struct {
	EpisodeNumber int    `json:"episode_number"`
	SeasonNumber  int    `json:"season_number"`
	Name          string `json:"name"`
	AirDate       string `json:"air_date,omitempty"`
}

// TorrentFile is a single entry inside a torrent.
// Name is the slash-separated path relative to the torrent's download directory.
type TorrentFile struct {
	Name           string   `json:"name"`
	Length         int64    `json:"length"`
	BytesCompleted int64    `json:"bytesCompleted"`
	Wanted         bool     `json:"wanted"`
	Priority       Priority `json:"priority"`
}

// MatchRecord pairs an episode with the torrent file believed to contain it.
type MatchRecord struct {
	Episode    Episode      `json:"episode"`
	File       *TorrentFile `json:"file"`
	Confidence Confidence   `json:"confidence"`
	// FileIndex is the position of File in the torrent's file list.
	// Only set by auto-matching.
	FileIndex *int `json:"fileIndex,omitempty"`
}

// HasFile reports whether the record is eligible for linking.
func (m MatchRecord) HasFile() bool {
	return m.File != nil
}

func (m MatchRecord) String() string {
	if m.File == nil {
		return fmt.Sprintf("E%02d -> (none)", m.Episode.EpisodeNumber)
	}
	return fmt.Sprintf("E%02d -> %s [%s]", m.Episode.EpisodeNumber, m.File.Name, m.Confidence)
}

// UnmarshalJSON maps unknown or empty confidence values to none.
func (c *Confidence) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch Confidence(s) {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
		*c = Confidence(s)
	default:
		*c = ConfidenceNone
	}
	return nil
}
