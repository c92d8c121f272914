package webdav

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"path"
	"strings"

	"golang.org/x/net/webdav"
)

// Server exposes the library root over WebDAV, read-only, so media players and
// file managers can browse what has been linked.
type Server struct {
	root    string
	handler *webdav.Handler
}

// NewServer creates a new WebDAV server for the library root
func NewServer(root string) *Server {
	log := slog.With("component", "webdav")

	s := &Server{root: root}
	s.handler = &webdav.Handler{
		Prefix:     "",
		FileSystem: &readOnlyFS{dir: webdav.Dir(root)},
		LockSystem: webdav.NewMemLS(),
		Logger: func(r *http.Request, err error) {
			if err != nil {
				log.Debug("WebDAV request", "method", r.Method, "path", r.URL.Path, "error", err)
			} else {
				log.Debug("WebDAV request", "method", r.Method, "path", r.URL.Path)
			}
		},
	}

	return s
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// readOnlyFS rejects every mutating WebDAV operation.
type readOnlyFS struct {
	dir webdav.Dir
}

func (fs *readOnlyFS) Mkdir(ctx context.Context, name string, perm os.FileMode) error {
	return os.ErrPermission
}

func (fs *readOnlyFS) OpenFile(ctx context.Context, name string, flag int, perm os.FileMode) (webdav.File, error) {
	if flag&(os.O_WRONLY|os.O_RDWR|os.O_APPEND|os.O_CREATE|os.O_TRUNC) != 0 {
		return nil, os.ErrPermission
	}

	f, err := fs.dir.OpenFile(ctx, name, os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	return &libraryFile{File: f}, nil
}

func (fs *readOnlyFS) RemoveAll(ctx context.Context, name string) error {
	return os.ErrPermission
}

func (fs *readOnlyFS) Rename(ctx context.Context, oldName, newName string) error {
	return os.ErrPermission
}

func (fs *readOnlyFS) Stat(ctx context.Context, name string) (os.FileInfo, error) {
	return fs.dir.Stat(ctx, name)
}

// libraryFile is a read-only library entry with media content types.
type libraryFile struct {
	webdav.File
}

func (f *libraryFile) Write(p []byte) (int, error) {
	return 0, os.ErrPermission
}

// ContentType returns the MIME type for the file
func (f *libraryFile) ContentType(ctx context.Context) (string, error) {
	info, err := f.Stat()
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "text/html; charset=utf-8", nil
	}
	return contentType(info.Name()), nil
}

func contentType(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".mp4", ".m4v":
		return "video/mp4"
	case ".mkv":
		return "video/x-matroska"
	case ".avi":
		return "video/x-msvideo"
	case ".mov":
		return "video/quicktime"
	case ".webm":
		return "video/webm"
	case ".srt", ".ass", ".ssa", ".nfo":
		return "text/plain; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}
