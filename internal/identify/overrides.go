package identify

import (
	"errors"
	"sync"
)

// ErrEpisodeNotFound is returned when an override targets an episode outside the season.
var ErrEpisodeNotFound = errors.New("episode not found in match set")

// Store holds the editable match records of one matching session.
// It starts from auto-classification output; manual edits touch one record at a time.
type Store struct {
	mu      sync.RWMutex
	records []MatchRecord
}

// NewStore creates a store seeded with the given records (typically AutoClassify output).
// Records must be in season episode order.
func NewStore(records []MatchRecord) *Store {
	cp := make([]MatchRecord, len(records))
	copy(cp, records)
	return &Store{records: cp}
}

// Records returns a copy of the current records in episode order.
func (s *Store) Records() []MatchRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cp := make([]MatchRecord, len(s.records))
	copy(cp, s.records)
	return cp
}

// Eligible returns the records that have a file assigned.
func (s *Store) Eligible() []MatchRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]MatchRecord, 0, len(s.records))
	for _, r := range s.records {
		if r.File != nil {
			out = append(out, r)
		}
	}
	return out
}

// Record returns the record for an episode number.
func (s *Store) Record(episodeNumber int) (MatchRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexOf(episodeNumber); i >= 0 {
		return s.records[i], true
	}
	return MatchRecord{}, false
}

// AssignManually sets or clears the file of one episode.
// A manual pick is trusted without re-running classification: a file gets medium
// confidence, nil clears the record to none. No other record is modified.
func (s *Store) AssignManually(episodeNumber int, file *TorrentFile) (MatchRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(episodeNumber)
	if i < 0 {
		return MatchRecord{}, ErrEpisodeNotFound
	}

	r := s.records[i]
	r.FileIndex = nil
	if file != nil {
		f := *file
		r.File = &f
		r.Confidence = ConfidenceMedium
	} else {
		r.File = nil
		r.Confidence = ConfidenceNone
	}
	s.records[i] = r

	return r, nil
}

// Next returns the episode following episodeNumber in season order.
func (s *Store) Next(episodeNumber int) (Episode, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(episodeNumber)
	if i < 0 || i >= len(s.records)-1 {
		return Episode{}, false
	}
	return s.records[i+1].Episode, true
}

// SelectAndAdvance assigns a file to an episode and returns the next episode to pick for.
// ok is false when episodeNumber was the last episode of the season.
func (s *Store) SelectAndAdvance(episodeNumber int, file *TorrentFile) (record MatchRecord, next Episode, ok bool, err error) {
	record, err = s.AssignManually(episodeNumber, file)
	if err != nil {
		return MatchRecord{}, Episode{}, false, err
	}
	next, ok = s.Next(episodeNumber)
	return record, next, ok, nil
}

// indexOf must be called with the lock held.
func (s *Store) indexOf(episodeNumber int) int {
	for i := range s.records {
		if s.records[i].Episode.EpisodeNumber == episodeNumber {
			return i
		}
	}
	return -1
}
