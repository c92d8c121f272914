package library

import (
	"fmt"
	"path/filepath"
	"strings"
)

// hostileChars are replaced in show names so they are safe on every filesystem
// the media server may run on.
const hostileChars = `<>:"/\|?*`

// SanitizeShowName replaces filesystem-hostile characters with '-'.
func SanitizeShowName(name string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(hostileChars, r) {
			return '-'
		}
		return r
	}, name)
}

// SanitizeShowNameForFiles sanitizes a show name for use in episode file names.
// Digits are stripped so a numeric title is never read as a season or episode number,
// then whitespace runs are collapsed and the result trimmed.
func SanitizeShowNameForFiles(name string) string {
	noDigits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return -1
		}
		return r
	}, SanitizeShowName(name))
	return strings.Join(strings.Fields(noDigits), " ")
}

// Resolver computes canonical library paths below a configured root.
type Resolver struct {
	root string
}

// NewResolver creates a resolver for the given library root.
// An empty root is a fatal configuration error.
func NewResolver(root string) (*Resolver, error) {
	if strings.TrimSpace(root) == "" {
		return nil, ErrLibraryRootMissing
	}
	return &Resolver{root: root}, nil
}

// Root returns the library root.
func (r *Resolver) Root() string {
	return r.root
}

// ShowDir returns "{root}/{show} [tmdbid-{id}]".
func (r *Resolver) ShowDir(showName string, showID int) string {
	return filepath.Join(r.root, fmt.Sprintf("%s [tmdbid-%d]", SanitizeShowName(showName), showID))
}

// SeasonDir returns "{showDir}/Season NN".
func (r *Resolver) SeasonDir(showName string, showID, seasonNumber int) string {
	return filepath.Join(r.ShowDir(showName, showID), fmt.Sprintf("Season %02d", seasonNumber))
}

// FileName returns "{show} - SNNEMM{ext}". ext includes the leading dot.
func FileName(showName string, seasonNumber, episodeNumber int, ext string) string {
	return fmt.Sprintf("%s - S%02dE%02d%s", SanitizeShowNameForFiles(showName), seasonNumber, episodeNumber, ext)
}

// Resolve computes the full library target for one episode file.
func (r *Resolver) Resolve(showName string, showID, seasonNumber, episodeNumber int, ext string) Target {
	seasonDir := r.SeasonDir(showName, showID, seasonNumber)
	fileName := FileName(showName, seasonNumber, episodeNumber, ext)

	return Target{
		SanitizedShowName:         SanitizeShowName(showName),
		SanitizedShowNameForFiles: SanitizeShowNameForFiles(showName),
		ShowDir:                   r.ShowDir(showName, showID),
		SeasonDir:                 seasonDir,
		TargetFileName:            fileName,
		TargetFile:                filepath.Join(seasonDir, fileName),
	}
}
