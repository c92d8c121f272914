package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/shocklateboy92/bonarr/internal/torrent"
)

func TestSessionStoreEvictsOldest(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	store := NewSessionStore(2, time.Hour)
	tor := &torrent.Torrent{}

	a := newSession(1, "A", 1, tor, nil)
	b := newSession(1, "B", 1, tor, nil)
	c := newSession(1, "C", 1, tor, nil)
	require.NotEqual(a.ID, b.ID)

	store.Add(a)
	store.Add(b)
	store.Add(c)

	require.Equal(2, store.Len())
	_, ok := store.Get(a.ID)
	require.False(ok)
	_, ok = store.Get(c.ID)
	require.True(ok)

	require.True(store.Remove(c.ID))
	require.Equal(1, store.Len())
}

func TestSessionStoreExpires(t *testing.T) {
	t.Parallel()

	store := NewSessionStore(4, 20*time.Millisecond)
	s := newSession(1, "A", 1, &torrent.Torrent{}, nil)
	store.Add(s)

	require.Eventually(t, func() bool {
		_, ok := store.Get(s.ID)
		return !ok
	}, 2*time.Second, 10*time.Millisecond)
}
