package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/shocklateboy92/bonarr/internal/identify"
	"github.com/shocklateboy92/bonarr/internal/service"
	"github.com/shocklateboy92/bonarr/internal/tmdb"
	"github.com/shocklateboy92/bonarr/internal/torrent"
	"github.com/shocklateboy92/bonarr/internal/transmission"
)

// MetadataClient is the TMDB surface the API exposes for show lookup.
type MetadataClient interface {
	service.MetadataProvider
	SearchShows(ctx context.Context, query string) ([]tmdb.Show, error)
}

// Compile-time verification
var _ MetadataClient = (*tmdb.Client)(nil)

// Server represents the REST API server
type Server struct {
	router      *gin.Engine
	matching    *service.MatchingService
	metadata    MetadataClient // Optional
	torrents    torrent.Source // Optional
	adder       torrent.Adder  // Optional
	libraryRoot string
	filterPath  string
	log         *slog.Logger
}

// NewServer creates a new API server
func NewServer(
	matching *service.MatchingService,
	metadata MetadataClient,
	torrents torrent.Source,
	libraryRoot string,
	filterPath string, // Optional: restricts torrent listings to this download dir
) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		router:      gin.New(),
		matching:    matching,
		metadata:    metadata,
		torrents:    torrents,
		libraryRoot: libraryRoot,
		filterPath:  filterPath,
		log:         slog.With("component", "api"),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// SetTorrentAdder enables adding torrents through the API.
func (s *Server) SetTorrentAdder(adder torrent.Adder) {
	s.adder = adder
	s.log.Info("Torrent adding enabled")
}

func (s *Server) setupMiddleware() {
	// Recovery middleware
	s.router.Use(gin.Recovery())

	// Logging middleware
	s.router.Use(func(c *gin.Context) {
		c.Next()
		s.log.Info("API request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
		)
	})

	// CORS for development
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	})
}

func (s *Server) setupRoutes() {
	api := s.router.Group("/api")

	// Shows - metadata lookup
	api.GET("/shows/search", s.searchShows)
	api.GET("/shows/:id", s.getShow)
	api.GET("/shows/:id/seasons/:season", s.getSeason)

	// Torrents - download client
	api.GET("/torrents", s.listTorrents)
	api.POST("/torrents", s.addTorrent)
	api.GET("/torrents/:id", s.getTorrent)

	// Matching sessions
	api.POST("/sessions", s.startSession)
	api.GET("/sessions/:id", s.getSession)
	api.PUT("/sessions/:id/episodes/:episode", s.assignEpisode)
	api.POST("/sessions/:id/apply", s.applySession)
	api.GET("/sessions/:id/library", s.sessionLibrary)

	// Library
	api.POST("/library/apply", s.applyMatches)
	api.POST("/library/check", s.checkExisting)

	// Status
	api.GET("/status", s.getStatus)
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Error response helper
func errorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// statusFor maps domain and upstream errors to HTTP status codes.
func statusFor(err error, fallback int) int {
	switch {
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, identify.ErrEpisodeNotFound),
		errors.Is(err, torrent.ErrTorrentNotFound),
		errors.Is(err, tmdb.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrFileIndex),
		errors.Is(err, torrent.ErrInvalidMagnet):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNoSource),
		errors.Is(err, tmdb.ErrMissingAPIKey):
		return http.StatusServiceUnavailable
	case errors.Is(err, transmission.ErrAuthFailed):
		return http.StatusBadGateway
	default:
		return fallback
	}
}

// parseID parses and validates an ID parameter
func parseID(c *gin.Context, param string) (int, bool) {
	id, err := strconv.Atoi(c.Param(param))
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "Invalid ID format")
		return 0, false
	}
	if id <= 0 {
		errorResponse(c, http.StatusBadRequest, "ID must be positive")
		return 0, false
	}
	return id, true
}

// parseNumber parses a season or episode number, which may be zero.
func parseNumber(c *gin.Context, param string) (int, bool) {
	n, err := strconv.Atoi(c.Param(param))
	if err != nil || n < 0 {
		errorResponse(c, http.StatusBadRequest, "Invalid "+param+" number")
		return 0, false
	}
	return n, true
}

func (s *Server) getStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":            "ok",
		"libraryRoot":       s.libraryRoot,
		"torrentFilterPath": s.filterPath,
		"activeSessions":    s.matching.ActiveSessions(),
		"torrentSource":     s.torrents != nil,
		"metadata":          s.metadata != nil,
	})
}
