//go:build integration

package session

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janseva/janseva/internal/faults"
	"github.com/janseva/janseva/internal/testutil"
)

func TestPGSessionVersionConflict(t *testing.T) {
	pool, cleanup := testutil.SetupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	q := NewPGQuerier(pool)

	s := New(30 * time.Minute)
	data, err := json.Marshal(s)
	require.NoError(t, err)
	require.NoError(t, q.InsertSession(ctx, s.ID, data, s.LastActiveAt, s.ExpiresAt))

	// First writer at version 1 succeeds and bumps to 2.
	require.NoError(t, q.UpdateSession(ctx, s.ID, data, 1, s.LastActiveAt, s.ExpiresAt))

	// A writer still holding version 1 must lose.
	err = q.UpdateSession(ctx, s.ID, data, 1, s.LastActiveAt, s.ExpiresAt)
	assert.ErrorIs(t, err, ErrVersionConflict)

	_, version, err := q.GetSession(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)
}

func TestPGSessionRoundTrip(t *testing.T) {
	pool, cleanup := testutil.SetupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewStore(NewPGQuerier(pool), nil)

	s := New(30 * time.Minute)
	s.Topic = TopicSchemeDiscovery
	s.AddTurn("user", "vidhwa pension yojana batao")
	require.NoError(t, store.Save(ctx, s))
	assert.Equal(t, int64(1), s.Version)

	got, err := store.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, TopicSchemeDiscovery, got.Topic)
	require.Len(t, got.History, 1)
	assert.Equal(t, "vidhwa pension yojana batao", got.History[0].Text)

	// A concurrent stale writer still commits via the retry path.
	stale := *got
	got.AddTurn("assistant", "first writer")
	require.NoError(t, store.Save(ctx, got))
	stale.AddTurn("assistant", "slower writer")
	require.NoError(t, store.Save(ctx, &stale))
	assert.Equal(t, int64(3), stale.Version)

	require.NoError(t, store.Delete(ctx, s.ID))
	_, err = store.Get(ctx, s.ID)
	assert.Equal(t, faults.KindNotFound, faults.KindOf(err))
}

func TestPGSessionReapExpired(t *testing.T) {
	pool, cleanup := testutil.SetupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	q := NewPGQuerier(pool)
	store := NewStore(q, nil)

	alive := New(30 * time.Minute)
	dead := New(-time.Minute)
	require.NoError(t, store.Save(ctx, alive))
	require.NoError(t, store.Save(ctx, dead))

	n, err := store.Reap(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, _, err = q.GetSession(ctx, alive.ID)
	assert.NoError(t, err)
	_, _, err = q.GetSession(ctx, dead.ID)
	assert.ErrorIs(t, err, ErrNoSession)
}
