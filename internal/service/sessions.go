package service

import (
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/shocklateboy92/bonarr/internal/identify"
	"github.com/shocklateboy92/bonarr/internal/torrent"
)

// Session is one user's in-progress matching of a torrent against a season.
// Its records live in a Store that only this session edits.
type Session struct {
	ID           string
	ShowID       int
	ShowName     string
	SeasonNumber int
	Torrent      torrent.Summary
	Files        []identify.TorrentFile
	CreatedAt    time.Time

	store *identify.Store
}

func newSession(showID int, showName string, seasonNumber int, tor *torrent.Torrent, records []identify.MatchRecord) *Session {
	return &Session{
		ID:           uuid.NewString(),
		ShowID:       showID,
		ShowName:     showName,
		SeasonNumber: seasonNumber,
		Torrent:      tor.Summary,
		Files:        tor.Files,
		CreatedAt:    time.Now(),
		store:        identify.NewStore(records),
	}
}

// Records returns the session's current match records in episode order.
func (s *Session) Records() []identify.MatchRecord {
	return s.store.Records()
}

// EpisodeNumbers lists the season's episode numbers in order.
func (s *Session) EpisodeNumbers() []int {
	records := s.store.Records()
	out := make([]int, len(records))
	for i, r := range records {
		out[i] = r.Episode.EpisodeNumber
	}
	return out
}

// SessionView is the JSON shape of a session.
type SessionView struct {
	ID           string                 `json:"id"`
	ShowID       int                    `json:"showId"`
	ShowName     string                 `json:"showName"`
	SeasonNumber int                    `json:"seasonNumber"`
	Torrent      torrent.Summary        `json:"torrent"`
	Files        []identify.TorrentFile `json:"files"`
	Matches      []identify.MatchRecord `json:"matches"`
	Summary      identify.Summary       `json:"summary"`
	CreatedAt    time.Time              `json:"createdAt"`
}

// View snapshots the session for serialization.
func (s *Session) View() SessionView {
	records := s.store.Records()
	return SessionView{
		ID:           s.ID,
		ShowID:       s.ShowID,
		ShowName:     s.ShowName,
		SeasonNumber: s.SeasonNumber,
		Torrent:      s.Torrent,
		Files:        s.Files,
		Matches:      records,
		Summary:      identify.Summarize(records),
		CreatedAt:    s.CreatedAt,
	}
}

// SessionStore keeps recent sessions in memory. Least recently used sessions
// are evicted past the size limit and every session expires after the TTL.
type SessionStore struct {
	cache *lru.LRU[string, *Session]
}

// NewSessionStore creates a store holding at most size sessions for ttl each.
func NewSessionStore(size int, ttl time.Duration) *SessionStore {
	return &SessionStore{
		cache: lru.NewLRU[string, *Session](size, nil, ttl),
	}
}

// Add stores a session under its ID.
func (s *SessionStore) Add(session *Session) {
	s.cache.Add(session.ID, session)
}

// Get returns a live session.
func (s *SessionStore) Get(id string) (*Session, bool) {
	return s.cache.Get(id)
}

// Remove drops a session.
func (s *SessionStore) Remove(id string) bool {
	return s.cache.Remove(id)
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	return s.cache.Len()
}
