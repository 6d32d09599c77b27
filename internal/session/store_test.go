package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janseva/janseva/internal/faults"
)

type mockQuerier struct {
	blobs    map[string][]byte
	versions map[string]int64

	// conflictOnce forces one version conflict on the next update.
	conflictOnce bool
	updates      int
}

func newMockQuerier() *mockQuerier {
	return &mockQuerier{
		blobs:    make(map[string][]byte),
		versions: make(map[string]int64),
	}
}

func (m *mockQuerier) GetSession(_ context.Context, id string) ([]byte, int64, error) {
	data, ok := m.blobs[id]
	if !ok {
		return nil, 0, ErrNoSession
	}
	return data, m.versions[id], nil
}

func (m *mockQuerier) InsertSession(_ context.Context, id string, data []byte, _, _ time.Time) error {
	m.blobs[id] = data
	m.versions[id] = 1
	return nil
}

func (m *mockQuerier) UpdateSession(_ context.Context, id string, data []byte, expected int64, _, _ time.Time) error {
	m.updates++
	if m.conflictOnce {
		m.conflictOnce = false
		m.versions[id]++ // someone else wrote
		return ErrVersionConflict
	}
	if m.versions[id] != expected {
		return ErrVersionConflict
	}
	m.blobs[id] = data
	m.versions[id] = expected + 1
	return nil
}

func (m *mockQuerier) DeleteSession(_ context.Context, id string) error {
	delete(m.blobs, id)
	delete(m.versions, id)
	return nil
}

func (m *mockQuerier) DeleteExpired(_ context.Context, _ time.Time) (int64, error) {
	return int64(len(m.blobs)), nil
}

func TestSaveThenGetRoundTrip(t *testing.T) {
	q := newMockQuerier()
	store := NewStore(q, nil)

	sess := New(30 * time.Minute)
	sess.Topic = TopicSchemeDiscovery
	sess.AddTurn("user", "pension schemes")
	require.NoError(t, store.Save(context.Background(), sess))
	assert.Equal(t, int64(1), sess.Version)

	got, err := store.Get(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, TopicSchemeDiscovery, got.Topic)
	assert.Len(t, got.History, 1)
	assert.Equal(t, int64(1), got.Version)
}

func TestGetMissingIsNotFound(t *testing.T) {
	store := NewStore(newMockQuerier(), nil)

	_, err := store.Get(context.Background(), "nope")
	assert.Equal(t, faults.KindNotFound, faults.KindOf(err))
}

func TestGetExpiredIsNotFound(t *testing.T) {
	q := newMockQuerier()
	store := NewStore(q, nil)

	sess := New(-time.Minute) // already expired
	require.NoError(t, store.Save(context.Background(), sess))

	_, err := store.Get(context.Background(), sess.ID)
	assert.Equal(t, faults.KindNotFound, faults.KindOf(err))
}

func TestSaveBumpsVersion(t *testing.T) {
	q := newMockQuerier()
	store := NewStore(q, nil)

	sess := New(30 * time.Minute)
	require.NoError(t, store.Save(context.Background(), sess))
	require.NoError(t, store.Save(context.Background(), sess))

	assert.Equal(t, int64(2), sess.Version)
	assert.Equal(t, int64(2), q.versions[sess.ID])
}

func TestSaveRetriesOnceOnConflict(t *testing.T) {
	q := newMockQuerier()
	store := NewStore(q, nil)

	sess := New(30 * time.Minute)
	require.NoError(t, store.Save(context.Background(), sess))

	q.conflictOnce = true
	require.NoError(t, store.Save(context.Background(), sess))

	assert.Equal(t, 2, q.updates, "one conflicted attempt plus the retry")
	assert.Equal(t, int64(3), sess.Version)
}

func TestDeleteThenGetIsNotFound(t *testing.T) {
	q := newMockQuerier()
	store := NewStore(q, nil)

	sess := New(30 * time.Minute)
	require.NoError(t, store.Save(context.Background(), sess))
	require.NoError(t, store.Delete(context.Background(), sess.ID))

	_, err := store.Get(context.Background(), sess.ID)
	assert.Equal(t, faults.KindNotFound, faults.KindOf(err))
}

func TestReapReturnsCount(t *testing.T) {
	q := newMockQuerier()
	store := NewStore(q, nil)

	sess := New(time.Minute)
	require.NoError(t, store.Save(context.Background(), sess))

	n, err := store.Reap(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
