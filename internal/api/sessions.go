package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shocklateboy92/bonarr/internal/service"
)

// AssignEpisodeRequest sets or clears an episode's file. A null fileIndex clears it.
type AssignEpisodeRequest struct {
	FileIndex *int `json:"fileIndex"`
}

// startSession auto-matches a torrent against a season
// POST /api/sessions
func (s *Server) startSession(c *gin.Context) {
	var req service.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.SeasonNumber < 0 {
		errorResponse(c, http.StatusBadRequest, "seasonNumber must not be negative")
		return
	}

	session, err := s.matching.StartSession(c.Request.Context(), req)
	if err != nil {
		errorResponse(c, statusFor(err, http.StatusBadGateway), err.Error())
		return
	}

	c.JSON(http.StatusCreated, session.View())
}

// getSession returns the current state of a session
// GET /api/sessions/:id
func (s *Server) getSession(c *gin.Context) {
	session, err := s.matching.Session(c.Param("id"))
	if err != nil {
		errorResponse(c, statusFor(err, http.StatusInternalServerError), err.Error())
		return
	}

	c.JSON(http.StatusOK, session.View())
}

// assignEpisode manually assigns a file and returns the next episode to pick
// PUT /api/sessions/:id/episodes/:episode
func (s *Server) assignEpisode(c *gin.Context) {
	episode, ok := parseNumber(c, "episode")
	if !ok {
		return
	}

	var req AssignEpisodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.matching.AssignFile(c.Param("id"), episode, req.FileIndex)
	if err != nil {
		errorResponse(c, statusFor(err, http.StatusInternalServerError), err.Error())
		return
	}

	c.JSON(http.StatusOK, result)
}

// applySession links the session's matches into the library
// POST /api/sessions/:id/apply
func (s *Server) applySession(c *gin.Context) {
	result, err := s.matching.ApplySession(c.Param("id"))
	if err != nil {
		errorResponse(c, statusFor(err, http.StatusInternalServerError), err.Error())
		return
	}

	c.JSON(http.StatusOK, result)
}

// sessionLibrary reports which of the session's episodes are already linked
// GET /api/sessions/:id/library
func (s *Server) sessionLibrary(c *gin.Context) {
	files, err := s.matching.SessionLibrary(c.Param("id"))
	if err != nil {
		errorResponse(c, statusFor(err, http.StatusInternalServerError), err.Error())
		return
	}

	c.JSON(http.StatusOK, files)
}
