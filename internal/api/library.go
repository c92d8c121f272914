package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/shocklateboy92/bonarr/internal/library"
)

func validateShow(c *gin.Context, showName string, showID, seasonNumber int) bool {
	if strings.TrimSpace(showName) == "" {
		errorResponse(c, http.StatusBadRequest, "showName is required")
		return false
	}
	if showID <= 0 {
		errorResponse(c, http.StatusBadRequest, "showId must be positive")
		return false
	}
	if seasonNumber < 0 {
		errorResponse(c, http.StatusBadRequest, "seasonNumber must not be negative")
		return false
	}
	return true
}

// applyMatches links a batch of matches into the library.
// Per-episode failures are reported in the body with a 200 status.
// POST /api/library/apply
func (s *Server) applyMatches(c *gin.Context) {
	var req library.ApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	if !validateShow(c, req.ShowName, req.ShowID, req.SeasonNumber) {
		return
	}
	if strings.TrimSpace(req.TorrentPath) == "" {
		errorResponse(c, http.StatusBadRequest, "torrentPath is required")
		return
	}

	c.JSON(http.StatusOK, s.matching.Apply(req))
}

// checkExisting reports which episodes already exist in the library
// POST /api/library/check
func (s *Server) checkExisting(c *gin.Context) {
	var req library.CheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	if !validateShow(c, req.ShowName, req.ShowID, req.SeasonNumber) {
		return
	}

	c.JSON(http.StatusOK, s.matching.CheckExisting(req))
}
