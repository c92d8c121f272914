package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/shocklateboy92/bonarr/internal/torrent"
)

// TorrentListResponse contains a list of torrents
type TorrentListResponse struct {
	Torrents   []torrent.Summary `json:"torrents"`
	FilterPath string            `json:"filterPath"`
}

// AddTorrentRequest adds a magnet to the download client
type AddTorrentRequest struct {
	Magnet      string `json:"magnet" binding:"required"`
	DownloadDir string `json:"downloadDir"`
}

// listTorrents returns torrents in the configured download directory, newest first.
// GET /api/torrents?all=true skips the directory filter.
func (s *Server) listTorrents(c *gin.Context) {
	if s.torrents == nil {
		errorResponse(c, http.StatusServiceUnavailable, "Torrent source not available")
		return
	}

	list, err := s.torrents.ListTorrents(c.Request.Context())
	if err != nil {
		errorResponse(c, statusFor(err, http.StatusBadGateway), err.Error())
		return
	}

	filter := s.filterPath
	if c.Query("all") == "true" {
		filter = ""
	}

	c.JSON(http.StatusOK, TorrentListResponse{
		Torrents:   torrent.FilterByDownloadDir(list, filter),
		FilterPath: filter,
	})
}

// getTorrent returns a torrent with its files
// GET /api/torrents/:id
func (s *Server) getTorrent(c *gin.Context) {
	if s.torrents == nil {
		errorResponse(c, http.StatusServiceUnavailable, "Torrent source not available")
		return
	}

	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	t, err := s.torrents.GetTorrentFiles(c.Request.Context(), id)
	if err != nil {
		errorResponse(c, statusFor(err, http.StatusBadGateway), err.Error())
		return
	}

	c.JSON(http.StatusOK, t)
}

// addTorrent adds a magnet link, defaulting the download dir to the filter path
// POST /api/torrents
func (s *Server) addTorrent(c *gin.Context) {
	if s.adder == nil {
		errorResponse(c, http.StatusServiceUnavailable, "Torrent client not available")
		return
	}

	var req AddTorrentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	downloadDir := strings.TrimSpace(req.DownloadDir)
	if downloadDir == "" {
		downloadDir = s.filterPath
	}

	added, err := s.adder.AddTorrent(c.Request.Context(), req.Magnet, downloadDir)
	if err != nil {
		errorResponse(c, statusFor(err, http.StatusBadGateway), err.Error())
		return
	}

	status := http.StatusCreated
	if added.Duplicate {
		status = http.StatusOK
	}
	c.JSON(status, added)
}
