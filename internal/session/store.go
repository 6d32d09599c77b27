package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/janseva/janseva/internal/faults"
)

// Querier defines the database operations the store needs.
type Querier interface {
	// GetSession returns the blob and version for an id, or ErrNoSession.
	GetSession(ctx context.Context, id string) (data []byte, version int64, err error)

	// InsertSession stores a new session at version 1.
	InsertSession(ctx context.Context, id string, data []byte, lastActive, expiresAt time.Time) error

	// UpdateSession overwrites the blob if the stored version still equals
	// expected, bumping it by one. Returns ErrVersionConflict otherwise.
	UpdateSession(ctx context.Context, id string, data []byte, expected int64, lastActive, expiresAt time.Time) error

	// DeleteSession removes one session. Missing ids are not an error.
	DeleteSession(ctx context.Context, id string) error

	// DeleteExpired removes sessions whose TTL passed before now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// Sentinel errors for Querier implementations.
var (
	ErrNoSession       = errors.New("no such session")
	ErrVersionConflict = errors.New("session version conflict")
)

// Store persists sessions with optimistic concurrency.
type Store struct {
	q      Querier
	logger *slog.Logger
}

// NewStore creates a Store.
func NewStore(q Querier, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{q: q, logger: logger}
}

// Get loads a session. Expired and missing sessions are the same not-found
// error; callers create a fresh session either way.
func (s *Store) Get(ctx context.Context, id string) (*Session, error) {
	data, version, err := s.q.GetSession(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNoSession) {
			return nil, faults.NotFoundf("session %q", id)
		}
		return nil, fmt.Errorf("loading session %q: %w", id, err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("unmarshaling session %q: %w", id, err)
	}
	if sess.Expired(time.Now().UTC()) {
		return nil, faults.NotFoundf("session %q", id)
	}
	sess.Version = version
	return &sess, nil
}

// Save persists the session. A version conflict means another request wrote
// the session concurrently; Save retries once against the new version, so
// the slower writer wins the turn it just processed.
func (s *Store) Save(ctx context.Context, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshaling session %q: %w", sess.ID, err)
	}

	if sess.Version == 0 {
		if err := s.q.InsertSession(ctx, sess.ID, data, sess.LastActiveAt, sess.ExpiresAt); err != nil {
			return fmt.Errorf("inserting session %q: %w", sess.ID, err)
		}
		sess.Version = 1
		return nil
	}

	err = s.q.UpdateSession(ctx, sess.ID, data, sess.Version, sess.LastActiveAt, sess.ExpiresAt)
	if errors.Is(err, ErrVersionConflict) {
		s.logger.Warn("concurrent session write, retrying once", "session_id", sess.ID)
		_, version, gerr := s.q.GetSession(ctx, sess.ID)
		if gerr != nil {
			return fmt.Errorf("reloading session %q after conflict: %w", sess.ID, gerr)
		}
		if uerr := s.q.UpdateSession(ctx, sess.ID, data, version, sess.LastActiveAt, sess.ExpiresAt); uerr != nil {
			return fmt.Errorf("saving session %q after conflict: %w", sess.ID, uerr)
		}
		sess.Version = version + 1
		return nil
	}
	if err != nil {
		return fmt.Errorf("saving session %q: %w", sess.ID, err)
	}
	sess.Version++
	return nil
}

// Delete removes a session. Deleting a missing session is a no-op.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.q.DeleteSession(ctx, id); err != nil {
		return fmt.Errorf("deleting session %q: %w", id, err)
	}
	return nil
}

// Reap deletes expired sessions and returns how many were removed.
func (s *Store) Reap(ctx context.Context) (int64, error) {
	n, err := s.q.DeleteExpired(ctx, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("reaping sessions: %w", err)
	}
	return n, nil
}

// RunReaper deletes expired sessions on the given interval until ctx is
// canceled. Run it in its own goroutine.
func (s *Store) RunReaper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.Reap(ctx)
			if err != nil {
				s.logger.Error("session reaper", "error", err)
				continue
			}
			if n > 0 {
				s.logger.Debug("reaped expired sessions", "count", n)
			}
		}
	}
}
