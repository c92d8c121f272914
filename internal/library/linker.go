package library

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"
)

// Linker places matched torrent files into the library using hard links.
// It never copies file data: source and library must share a filesystem.
type Linker struct {
	resolver *Resolver
	log      *slog.Logger
}

// NewLinker creates a linker that writes below the resolver's root.
func NewLinker(resolver *Resolver) *Linker {
	return &Linker{
		resolver: resolver,
		log:      slog.With("component", "library-linker"),
	}
}

// Apply links every match that has a file into the canonical season directory.
//
// Episodes are processed one at a time in input order, and Details follows the same
// order. Per-episode failures are recorded and do not stop the batch; only a failure
// to create the season directory aborts it. Re-applying the same matches replaces
// existing targets, so the call is safe to retry.
func (l *Linker) Apply(req ApplyRequest) *ApplyResult {
	result := &ApplyResult{
		Success: true,
		Errors:  []string{},
		Details: []EpisodeLinkDetail{},
		Skipped: []int{},
	}

	seasonDir := l.resolver.SeasonDir(req.ShowName, req.ShowID, req.SeasonNumber)
	if err := os.MkdirAll(seasonDir, 0755); err != nil {
		l.log.Error("Failed to create season directory", "dir", seasonDir, "error", err)
		result.Success = false
		result.Errors = append(result.Errors, fmt.Sprintf("failed to create directory structure: %v", err))
		return result
	}

	eligible := 0
	for _, match := range req.Matches {
		if match.File == nil {
			result.Skipped = append(result.Skipped, match.Episode.EpisodeNumber)
			continue
		}
		eligible++

		episode := match.Episode.EpisodeNumber
		source := filepath.Join(req.TorrentPath, filepath.FromSlash(match.File.Name))
		target := l.resolver.Resolve(req.ShowName, req.ShowID, req.SeasonNumber, episode, filepath.Ext(match.File.Name))

		detail := EpisodeLinkDetail{
			Episode:    episode,
			SourceFile: source,
			TargetFile: target.TargetFile,
			Status:     StatusSuccess,
		}

		if err := l.linkOne(source, target.TargetFile); err != nil {
			detail.Status = StatusError
			detail.Error = err.Error()
			result.Errors = append(result.Errors, fmt.Sprintf("episode %d: %s", episode, detail.Error))
			result.Success = false

			l.log.Warn("Failed to link episode",
				"episode", episode,
				"source", source,
				"target", target.TargetFile,
				"error", err,
			)
		} else {
			result.ProcessedCount++
			l.log.Info("Linked episode",
				"episode", episode,
				"source", source,
				"target", target.TargetFile,
			)
		}

		result.Details = append(result.Details, detail)
	}

	// A batch that touched nothing is not a success.
	if result.ProcessedCount == 0 && eligible > 0 {
		result.Success = false
	}

	l.log.Info("Apply finished",
		"show", req.ShowName,
		"season", req.SeasonNumber,
		"eligible", eligible,
		"processed", result.ProcessedCount,
		"skipped", len(result.Skipped),
		"success", result.Success,
	)

	return result
}

// linkOne replaces target with a hard link to source.
func (l *Linker) linkOne(source, target string) error {
	if _, err := os.Stat(source); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSourceMissing, source, err)
	}

	if err := os.Remove(target); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s: %v", ErrTargetNotCleared, target, err)
	}

	if err := os.Link(source, target); err != nil {
		if errors.Is(err, syscall.EXDEV) {
			return fmt.Errorf("%w: %v", ErrCrossDevice, err)
		}
		return fmt.Errorf("%w: %v", ErrHardlinkFailed, err)
	}

	return nil
}
