package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// searchShows searches TMDB for TV shows
// GET /api/shows/search?query=
func (s *Server) searchShows(c *gin.Context) {
	if s.metadata == nil {
		errorResponse(c, http.StatusServiceUnavailable, "Metadata provider not available")
		return
	}

	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		errorResponse(c, http.StatusBadRequest, "query parameter is required")
		return
	}

	shows, err := s.metadata.SearchShows(c.Request.Context(), query)
	if err != nil {
		errorResponse(c, statusFor(err, http.StatusBadGateway), err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": shows})
}

// getShow returns show details with its seasons
// GET /api/shows/:id
func (s *Server) getShow(c *gin.Context) {
	if s.metadata == nil {
		errorResponse(c, http.StatusServiceUnavailable, "Metadata provider not available")
		return
	}

	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	show, err := s.metadata.GetShow(c.Request.Context(), id)
	if err != nil {
		errorResponse(c, statusFor(err, http.StatusBadGateway), err.Error())
		return
	}

	c.JSON(http.StatusOK, show)
}

// getSeason returns a season's episodes
// GET /api/shows/:id/seasons/:season
func (s *Server) getSeason(c *gin.Context) {
	if s.metadata == nil {
		errorResponse(c, http.StatusServiceUnavailable, "Metadata provider not available")
		return
	}

	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	seasonNumber, ok := parseNumber(c, "season")
	if !ok {
		return
	}

	season, err := s.metadata.GetSeason(c.Request.Context(), id, seasonNumber)
	if err != nil {
		errorResponse(c, statusFor(err, http.StatusBadGateway), err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"seasonNumber": season.SeasonNumber,
		"name":         season.Name,
		"episodes":     season.CoreEpisodes(),
	})
}
