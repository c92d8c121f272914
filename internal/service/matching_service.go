package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/shocklateboy92/bonarr/internal/identify"
	"github.com/shocklateboy92/bonarr/internal/library"
	"github.com/shocklateboy92/bonarr/internal/metrics"
	"github.com/shocklateboy92/bonarr/internal/tmdb"
	"github.com/shocklateboy92/bonarr/internal/torrent"
)

var (
	ErrSessionNotFound = errors.New("session not found or expired")
	ErrFileIndex       = errors.New("file index out of range")
	ErrNoSource        = errors.New("no torrent source configured")
)

// MetadataProvider defines the show metadata needed to start a session.
type MetadataProvider interface {
	GetShow(ctx context.Context, id int) (*tmdb.ShowDetails, error)
	GetSeason(ctx context.Context, showID int, seasonNumber int) (*tmdb.Season, error)
}

// Compile-time verification
var _ MetadataProvider = (*tmdb.Client)(nil)

// MatchingService runs auto-matching, manual overrides and library linking
// for matching sessions.
type MatchingService struct {
	metadata MetadataProvider
	source   torrent.Source // Optional
	linker   *library.Linker
	checker  *library.Checker
	sessions *SessionStore
	metrics  *metrics.Metrics // Optional
	log      *slog.Logger

	// The library is single-writer; applies never overlap.
	applyMu sync.Mutex
}

// MatchingServiceOption configures optional dependencies.
type MatchingServiceOption func(*MatchingService)

// WithTorrentSource configures where torrents are read from by id.
func WithTorrentSource(src torrent.Source) MatchingServiceOption {
	return func(s *MatchingService) {
		s.source = src
	}
}

// WithMetrics enables instrumentation.
func WithMetrics(m *metrics.Metrics) MatchingServiceOption {
	return func(s *MatchingService) {
		s.metrics = m
	}
}

// WithSessionStore replaces the default session store.
func WithSessionStore(store *SessionStore) MatchingServiceOption {
	return func(s *MatchingService) {
		s.sessions = store
	}
}

// NewMatchingService creates a new MatchingService.
func NewMatchingService(
	metadata MetadataProvider,
	linker *library.Linker,
	checker *library.Checker,
	opts ...MatchingServiceOption,
) *MatchingService {
	s := &MatchingService{
		metadata: metadata,
		linker:   linker,
		checker:  checker,
		sessions: NewSessionStore(64, 0),
		log:      slog.With("component", "matching-service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StartSessionRequest selects the season and torrent to match.
type StartSessionRequest struct {
	ShowID       int `json:"showId" binding:"required"`
	SeasonNumber int `json:"seasonNumber"`
	TorrentID    int `json:"torrentId" binding:"required"`
}

// StartSession loads the season and the torrent's files, auto-matches them and
// stores the result as a new session.
func (s *MatchingService) StartSession(ctx context.Context, req StartSessionRequest) (*Session, error) {
	if s.source == nil {
		return nil, ErrNoSource
	}

	tor, err := s.source.GetTorrentFiles(ctx, req.TorrentID)
	if err != nil {
		if !errors.Is(err, torrent.ErrTorrentNotFound) {
			s.metrics.ObserveUpstreamFailure("transmission")
		}
		return nil, fmt.Errorf("failed to load torrent: %w", err)
	}

	return s.StartSessionWithTorrent(ctx, req.ShowID, req.SeasonNumber, tor)
}

// StartSessionWithTorrent matches an already loaded torrent, such as one read
// from a .torrent file.
func (s *MatchingService) StartSessionWithTorrent(ctx context.Context, showID, seasonNumber int, tor *torrent.Torrent) (*Session, error) {
	show, err := s.metadata.GetShow(ctx, showID)
	if err != nil {
		s.observeMetadataFailure(err)
		return nil, fmt.Errorf("failed to load show: %w", err)
	}

	season, err := s.metadata.GetSeason(ctx, showID, seasonNumber)
	if err != nil {
		s.observeMetadataFailure(err)
		return nil, fmt.Errorf("failed to load season: %w", err)
	}

	records := identify.AutoClassify(season.CoreEpisodes(), tor.Files, seasonNumber)
	for _, r := range records {
		s.metrics.ObserveAutoMatch(string(r.Confidence))
	}

	session := newSession(showID, show.Name, seasonNumber, tor, records)
	s.sessions.Add(session)
	s.metrics.ObserveSessionStarted()

	summary := identify.Summarize(records)
	s.log.Info("Session started",
		"session", session.ID,
		"show", show.Name,
		"season", seasonNumber,
		"torrent", tor.Name,
		"episodes", summary.Total,
		"matched", summary.Matched,
		"high", summary.High,
		"medium", summary.Medium,
		"low", summary.Low,
	)

	return session, nil
}

func (s *MatchingService) observeMetadataFailure(err error) {
	if !errors.Is(err, tmdb.ErrNotFound) {
		s.metrics.ObserveUpstreamFailure("tmdb")
	}
}

// Session returns a live session.
func (s *MatchingService) Session(id string) (*Session, error) {
	session, ok := s.sessions.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// ActiveSessions returns the number of live sessions.
func (s *MatchingService) ActiveSessions() int {
	return s.sessions.Len()
}

// AssignResult is the outcome of a manual assignment.
type AssignResult struct {
	Record identify.MatchRecord `json:"record"`
	// Next is the episode the user should pick a file for next, nil after the last one.
	Next *identify.Episode `json:"next"`
}

// AssignFile manually sets the file of one episode. A nil fileIndex clears the
// assignment. The index refers to the session's full file list.
func (s *MatchingService) AssignFile(sessionID string, episodeNumber int, fileIndex *int) (*AssignResult, error) {
	session, err := s.Session(sessionID)
	if err != nil {
		return nil, err
	}

	var file *identify.TorrentFile
	action := "clear"
	if fileIndex != nil {
		if *fileIndex < 0 || *fileIndex >= len(session.Files) {
			return nil, fmt.Errorf("%w: %d", ErrFileIndex, *fileIndex)
		}
		file = &session.Files[*fileIndex]
		action = "assign"
	}

	record, next, ok, err := session.store.SelectAndAdvance(episodeNumber, file)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveOverride(action)

	result := &AssignResult{Record: record}
	if ok {
		result.Next = &next
	}

	s.log.Debug("Manual assignment",
		"session", sessionID,
		"episode", episodeNumber,
		"action", action,
		"file", record.String(),
	)

	return result, nil
}

// ApplySession links the session's current matches into the library.
func (s *MatchingService) ApplySession(sessionID string) (*library.ApplyResult, error) {
	session, err := s.Session(sessionID)
	if err != nil {
		return nil, err
	}

	return s.Apply(library.ApplyRequest{
		Matches:      session.Records(),
		ShowName:     session.ShowName,
		ShowID:       session.ShowID,
		SeasonNumber: session.SeasonNumber,
		TorrentPath:  session.Torrent.DownloadDir,
	}), nil
}

// Apply links a batch of matches into the library.
func (s *MatchingService) Apply(req library.ApplyRequest) *library.ApplyResult {
	s.applyMu.Lock()
	defer s.applyMu.Unlock()

	result := s.linker.Apply(req)

	for _, d := range result.Details {
		s.metrics.ObserveLink(d.Status == library.StatusSuccess)
	}
	s.metrics.ObserveApply(result.Success)

	return result
}

// CheckExisting reports which episodes are already in the library.
func (s *MatchingService) CheckExisting(req library.CheckRequest) []library.ExistingEpisodeFile {
	s.metrics.ObserveExistenceCheck()
	return s.checker.Check(req)
}

// SessionLibrary reports library presence for every episode of a session.
func (s *MatchingService) SessionLibrary(sessionID string) ([]library.ExistingEpisodeFile, error) {
	session, err := s.Session(sessionID)
	if err != nil {
		return nil, err
	}

	return s.CheckExisting(library.CheckRequest{
		ShowName:     session.ShowName,
		ShowID:       session.ShowID,
		SeasonNumber: session.SeasonNumber,
		Episodes:     session.EpisodeNumbers(),
	}), nil
}
