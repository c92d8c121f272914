package tmdb

import (
	"errors"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v3"
)

var _ Cache = (*BadgerCache)(nil)

// BadgerCache persists TMDB responses in Badger with a per-entry TTL.
type BadgerCache struct {
	ttl time.Duration
	db  *badger.DB
}

// badgerLogger adapts slog for Badger's logger interface.
type badgerLogger struct {
	log *slog.Logger
}

func (l *badgerLogger) Errorf(f string, v ...interface{}) {
	l.log.Error(f, "args", v)
}

func (l *badgerLogger) Warningf(f string, v ...interface{}) {
	l.log.Warn(f, "args", v)
}

func (l *badgerLogger) Infof(f string, v ...interface{}) {
	l.log.Debug(f, "args", v)
}

func (l *badgerLogger) Debugf(f string, v ...interface{}) {
	l.log.Debug(f, "args", v)
}

// NewBadgerCache opens a response cache at dir. An empty dir keeps the cache in memory.
func NewBadgerCache(dir string, ttl time.Duration) (*BadgerCache, error) {
	log := slog.With("component", "tmdb-cache")

	opts := badger.DefaultOptions(dir).
		WithLogger(&badgerLogger{log: log}).
		WithValueLogFileSize(1<<26 - 1)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	if dir != "" {
		// Run garbage collection
		err = db.RunValueLogGC(0.5)
		if err != nil && !errors.Is(err, badger.ErrNoRewrite) {
			db.Close()
			return nil, err
		}
	}

	return &BadgerCache{db: db, ttl: ttl}, nil
}

// Set stores a response body with the cache TTL.
func (c *BadgerCache) Set(key string, value []byte) error {
	tx := c.db.NewTransaction(true)
	defer tx.Discard()

	e := badger.NewEntry([]byte(key), value)
	if c.ttl > 0 {
		e = e.WithTTL(c.ttl)
	}
	if err := tx.SetEntry(e); err != nil {
		return err
	}

	return tx.Commit()
}

// Get returns the cached body for key. Expired entries are reported as misses.
func (c *BadgerCache) Get(key string) ([]byte, bool, error) {
	tx := c.db.NewTransaction(false)
	defer tx.Discard()

	item, err := tx.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	value, err := item.ValueCopy(nil)
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

// Close shuts down the Badger database.
func (c *BadgerCache) Close() error {
	return c.db.Close()
}
