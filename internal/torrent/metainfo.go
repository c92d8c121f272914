package torrent

import (
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/anacrolix/torrent/metainfo"

	"github.com/shocklateboy92/bonarr/internal/identify"
)

// LoadMetainfo reads a .torrent file and lists its files the way a download client
// names them: multi-file torrents are prefixed with the torrent's directory name.
// downloadDir is where the content lives on disk; the files are reported as fully
// downloaded only if they exist there at full length.
func LoadMetainfo(filePath, downloadDir string) (*Torrent, error) {
	mi, err := metainfo.LoadFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("load metainfo %s: %w", filePath, err)
	}

	info, err := mi.UnmarshalInfo()
	if err != nil {
		return nil, fmt.Errorf("decode info %s: %w", filePath, err)
	}

	name := info.BestName()
	t := &Torrent{
		Summary: Summary{
			Name:        name,
			HashString:  mi.HashInfoBytes().HexString(),
			AddedDate:   mi.CreationDate,
			DownloadDir: downloadDir,
			TotalSize:   info.TotalLength(),
		},
	}

	if !info.IsDir() {
		t.Files = append(t.Files, newFile(name, info.Length, downloadDir))
	} else {
		for _, fi := range info.UpvertedFiles() {
			rel := path.Join(name, fi.DisplayPath(&info))
			t.Files = append(t.Files, newFile(rel, fi.Length, downloadDir))
		}
	}

	if len(t.Files) == 0 {
		return nil, ErrNoFiles
	}

	var done int64
	for _, f := range t.Files {
		done += f.BytesCompleted
	}
	if t.TotalSize > 0 {
		t.PercentDone = float64(done) / float64(t.TotalSize)
	}
	if done == t.TotalSize {
		t.Status = StatusSeeding
	}

	return t, nil
}

func newFile(name string, length int64, downloadDir string) identify.TorrentFile {
	f := identify.TorrentFile{
		Name:     name,
		Length:   length,
		Wanted:   true,
		Priority: identify.PriorityNormal,
	}
	if downloadDir != "" {
		if st, err := os.Stat(filepath.Join(downloadDir, filepath.FromSlash(name))); err == nil && st.Size() == length {
			f.BytesCompleted = length
		}
	}
	return f
}
