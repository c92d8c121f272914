package library

import (
	"os"
	"sort"
)

// existingExtensions are probed in order when looking for an already linked episode.
// The first entry doubles as the placeholder extension for missing episodes.
var existingExtensions = []string{".mkv", ".mp4", ".avi", ".m4v", ".mov", ".webm"}

// Checker reports which episodes of a season are already present in the library.
// It never modifies the filesystem.
type Checker struct {
	resolver *Resolver
}

// NewChecker creates a checker over the resolver's library root.
func NewChecker(resolver *Resolver) *Checker {
	return &Checker{resolver: resolver}
}

// Check probes the library for each episode number. Results are sorted by
// ascending episode number regardless of input order.
func (c *Checker) Check(req CheckRequest) []ExistingEpisodeFile {
	numbers := make([]int, len(req.Episodes))
	copy(numbers, req.Episodes)
	sort.Ints(numbers)

	results := make([]ExistingEpisodeFile, 0, len(numbers))
	for _, ep := range numbers {
		results = append(results, c.checkEpisode(req.ShowName, req.ShowID, req.SeasonNumber, ep))
	}
	return results
}

func (c *Checker) checkEpisode(showName string, showID, seasonNumber, episode int) ExistingEpisodeFile {
	for _, ext := range existingExtensions {
		target := c.resolver.Resolve(showName, showID, seasonNumber, episode, ext)
		// Any stat error counts as "not there".
		if _, err := os.Stat(target.TargetFile); err == nil {
			return ExistingEpisodeFile{
				Episode:  episode,
				FileName: target.TargetFileName,
				FilePath: target.TargetFile,
				Exists:   true,
			}
		}
	}

	placeholder := c.resolver.Resolve(showName, showID, seasonNumber, episode, existingExtensions[0])
	return ExistingEpisodeFile{
		Episode:  episode,
		FileName: placeholder.TargetFileName,
		FilePath: placeholder.TargetFile,
		Exists:   false,
	}
}

// ExistingCount returns how many reports have Exists set.
func ExistingCount(files []ExistingEpisodeFile) int {
	n := 0
	for _, f := range files {
		if f.Exists {
			n++
		}
	}
	return n
}
