package identify

import (
	"path/filepath"
	"strings"
)

// Video container extensions considered as match candidates.
var videoExtensions = map[string]bool{
	".mkv": true, ".mp4": true, ".avi": true, ".m4v": true,
	".mov": true, ".wmv": true, ".flv": true, ".webm": true,
	".ts": true, ".m2ts": true,
}

// IsVideoFile checks if the file is a video file based on extension
func IsVideoFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return videoExtensions[ext]
}

// candidate is a video file together with its index in the torrent's file list.
type candidate struct {
	file  *TorrentFile
	index int
}

// videoCandidates filters files down to video files, keeping their original order.
func videoCandidates(files []TorrentFile) []candidate {
	out := make([]candidate, 0, len(files))
	for i := range files {
		if IsVideoFile(files[i].Name) {
			out = append(out, candidate{file: &files[i], index: i})
		}
	}
	return out
}

// shouldReplace decides whether a newly found candidate displaces the current best.
// A first high match wins outright; a medium may upgrade a low; nothing downgrades.
func shouldReplace(haveBest bool, best, next Confidence) bool {
	if !haveBest {
		return true
	}
	if next == ConfidenceHigh && best != ConfidenceHigh {
		return true
	}
	return next == ConfidenceMedium && best == ConfidenceLow
}

// bestFileFor scans the candidates for one episode.
func bestFileFor(patterns *EpisodePatterns, candidates []candidate) (candidate, Confidence, bool) {
	var (
		best     candidate
		bestConf = ConfidenceNone
		found    bool
	)

	for _, c := range candidates {
		conf := patterns.Classify(c.file.Name)
		if conf == ConfidenceNone {
			continue
		}
		if shouldReplace(found, bestConf, conf) {
			best, bestConf, found = c, conf, true
		}
	}

	return best, bestConf, found
}

// AutoClassify matches every episode of a season against the torrent's files.
// It returns one record per episode, in episode order. The result only depends on
// the order of its inputs.
func AutoClassify(episodes []Episode, files []TorrentFile, seasonNumber int) []MatchRecord {
	candidates := videoCandidates(files)
	records := make([]MatchRecord, 0, len(episodes))

	for _, ep := range episodes {
		record := MatchRecord{
			Episode:    ep,
			Confidence: ConfidenceNone,
		}

		patterns := NewEpisodePatterns(seasonNumber, ep.EpisodeNumber)
		if best, conf, ok := bestFileFor(patterns, candidates); ok {
			file := *best.file
			index := best.index
			record.File = &file
			record.Confidence = conf
			record.FileIndex = &index
		}

		records = append(records, record)
	}

	return records
}

// Summary counts records per confidence tier.
type Summary struct {
	Total   int `json:"total"`
	Matched int `json:"matched"`
	High    int `json:"high"`
	Medium  int `json:"medium"`
	Low     int `json:"low"`
	None    int `json:"none"`
}

// Summarize counts matched records and confidence tiers.
func Summarize(records []MatchRecord) Summary {
	s := Summary{Total: len(records)}
	for _, r := range records {
		if r.File != nil {
			s.Matched++
		}
		switch r.Confidence {
		case ConfidenceHigh:
			s.High++
		case ConfidenceMedium:
			s.Medium++
		case ConfidenceLow:
			s.Low++
		default:
			s.None++
		}
	}
	return s
}
