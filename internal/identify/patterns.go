package identify

import (
	"fmt"
	"regexp"
)

// EpisodePatterns holds the compiled recognition patterns for one episode of a season,
// in precedence order.
type EpisodePatterns struct {
	Season  int
	Episode int

	// High confidence
	SxxExx        *regexp.Regexp // S01E05, s1e5, S001E0005
	SeasonEpisode *regexp.Regexp // Season 1 Episode 5, Season.01.Episode.05
	XxYY          *regexp.Regexp // 1x05, 01x005

	// Medium confidence
	EpisodeWord *regexp.Regexp // Episode 5, Episode.05
	EpNumber    *regexp.Regexp // E05 not followed by a digit

	// Low confidence
	BareNumber *regexp.Regexp // 05 at a word boundary, not followed by a digit
}

// NewEpisodePatterns compiles the pattern set for the given season and episode.
// Numbers are formatted with %d so the expressions are always valid.
func NewEpisodePatterns(season, episode int) *EpisodePatterns {
	s, e := fmt.Sprint(season), fmt.Sprint(episode)

	return &EpisodePatterns{
		Season:  season,
		Episode: episode,

		SxxExx:        regexp.MustCompile(`(?i)S0*` + s + `E0*` + e),
		SeasonEpisode: regexp.MustCompile(`(?i)Season.?0*` + s + `.?Episode.?0*` + e),
		XxYY:          regexp.MustCompile(`(?i)0*` + s + `x0*` + e),

		EpisodeWord: regexp.MustCompile(`(?i)Episode.?0*` + e),
		EpNumber:    regexp.MustCompile(`(?i)E0*` + e + `(?:[^0-9]|$)`),

		BareNumber: regexp.MustCompile(`(?i)\b0*` + e + `(?:[^0-9]|$)`),
	}
}

// ordered returns the patterns in precedence order. Index decides the tier.
func (p *EpisodePatterns) ordered() []*regexp.Regexp {
	return []*regexp.Regexp{
		p.SxxExx,
		p.SeasonEpisode,
		p.XxYY,
		p.EpisodeWord,
		p.EpNumber,
		p.BareNumber,
	}
}

// tierForIndex maps a pattern position to its confidence tier.
func tierForIndex(i int) Confidence {
	switch {
	case i < 3:
		return ConfidenceHigh
	case i < 5:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// Classify returns the tier of the first pattern matching filename,
// or ConfidenceNone when nothing matches.
func (p *EpisodePatterns) Classify(filename string) Confidence {
	for i, re := range p.ordered() {
		if re.MatchString(filename) {
			return tierForIndex(i)
		}
	}
	return ConfidenceNone
}

// Classify compiles the patterns for one episode and classifies a single filename.
// Use NewEpisodePatterns directly when testing many files against the same episode.
func Classify(season, episode int, filename string) Confidence {
	return NewEpisodePatterns(season, episode).Classify(filename)
}
