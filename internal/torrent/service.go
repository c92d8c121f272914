package torrent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anacrolix/torrent/metainfo"

	"github.com/shocklateboy92/bonarr/internal/identify"
)

// Common errors
var (
	ErrTorrentNotFound = errors.New("torrent not found")
	ErrInvalidMagnet   = errors.New("invalid magnet URI")
	ErrNoFiles         = errors.New("torrent contains no files")
)

// Status is the download client's torrent state.
type Status int

const (
	StatusStopped Status = iota
	StatusCheckPending
	StatusChecking
	StatusDownloadPending
	StatusDownloading
	StatusSeedPending
	StatusSeeding
)

func (s Status) String() string {
	switch s {
	case StatusStopped:
		return "stopped"
	case StatusCheckPending:
		return "check-pending"
	case StatusChecking:
		return "checking"
	case StatusDownloadPending:
		return "download-pending"
	case StatusDownloading:
		return "downloading"
	case StatusSeedPending:
		return "seed-pending"
	case StatusSeeding:
		return "seeding"
	default:
		return "unknown"
	}
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status name. Unknown names are an error.
func (s *Status) UnmarshalText(text []byte) error {
	for st := StatusStopped; st <= StatusSeeding; st++ {
		if st.String() == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown torrent status %q", text)
}

// Summary describes a torrent without its file list.
type Summary struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	HashString  string  `json:"hashString,omitempty"`
	AddedDate   int64   `json:"addedDate"`
	Status      Status  `json:"status"`
	PercentDone float64 `json:"percentDone"`
	// DownloadDir is the directory the torrent's file names are relative to.
	DownloadDir string `json:"downloadDir"`
	TotalSize   int64  `json:"totalSize"`
	Error       int    `json:"error"`
	ErrorString string `json:"errorString,omitempty"`
}

// Torrent is a torrent together with its ordered file list.
type Torrent struct {
	Summary
	Files []identify.TorrentFile `json:"files"`
}

// Added identifies a torrent returned by an add call.
type Added struct {
	ID         int    `json:"id,omitempty"`
	Name       string `json:"name,omitempty"`
	HashString string `json:"hashString,omitempty"`
	Duplicate  bool   `json:"duplicate"`
}

// Source provides torrents and their files to the matcher.
type Source interface {
	// ListTorrents returns all torrents, newest first.
	ListTorrents(ctx context.Context) ([]Summary, error)

	// GetTorrentFiles returns a torrent with its file list in the client's order.
	// Returns ErrTorrentNotFound if the id is unknown.
	GetTorrentFiles(ctx context.Context, id int) (*Torrent, error)
}

// Adder hands new torrents to a download client.
type Adder interface {
	// AddTorrent adds a torrent by magnet URI. Adding a torrent the client
	// already has is not an error; the existing torrent is returned.
	AddTorrent(ctx context.Context, magnetURI, downloadDir string) (*Added, error)
}

// FilterByDownloadDir keeps torrents whose download directory starts with filterPath.
// An empty filter keeps everything.
func FilterByDownloadDir(torrents []Summary, filterPath string) []Summary {
	if filterPath == "" {
		return torrents
	}
	out := make([]Summary, 0, len(torrents))
	for _, t := range torrents {
		if strings.HasPrefix(t.DownloadDir, filterPath) {
			out = append(out, t)
		}
	}
	return out
}

// ExtractInfoHash returns the lowercase hex info hash of a magnet URI.
func ExtractInfoHash(magnetURI string) (string, error) {
	m, err := metainfo.ParseMagnetUri(magnetURI)
	if err != nil {
		return "", errors.Join(ErrInvalidMagnet, err)
	}
	return strings.ToLower(m.InfoHash.HexString()), nil
}
