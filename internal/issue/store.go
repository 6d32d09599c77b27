package issue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/janseva/janseva/internal/faults"
)

// Querier defines the database operations the store needs.
type Querier interface {
	// InsertReport stores a new report. Returns ErrDuplicateID when the
	// tracking id is already taken.
	InsertReport(ctx context.Context, r *Report) error

	// GetReport returns a report, or ErrNoIssue.
	GetReport(ctx context.Context, trackingID string) (*Report, error)

	// SetStatus updates the current status of a report.
	SetStatus(ctx context.Context, trackingID string, status Status) error

	// InsertStatusChange appends to the status history.
	InsertStatusChange(ctx context.Context, c StatusChange) error

	// ListStatusChanges returns the history oldest first.
	ListStatusChanges(ctx context.Context, trackingID string) ([]StatusChange, error)

	// InsertFollowup appends a citizen comment.
	InsertFollowup(ctx context.Context, f Followup) error

	// ListFollowups returns the comments oldest first.
	ListFollowups(ctx context.Context, trackingID string) ([]Followup, error)
}

// Sentinel errors for Querier implementations.
var (
	ErrNoIssue     = errors.New("no such issue")
	ErrDuplicateID = errors.New("tracking id already exists")
)

// maxIDAttempts bounds tracking id collision retries.
const maxIDAttempts = 5

// Store manages issue reports.
type Store struct {
	q      Querier
	logger *slog.Logger
	now    func() time.Time
}

// NewStore creates a Store.
func NewStore(q Querier, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{q: q, logger: logger, now: time.Now}
}

// Create files a report. The tracking id and initial status are assigned
// here; anything the caller set in those fields is overwritten.
func (s *Store) Create(ctx context.Context, r *Report) error {
	if err := r.Validate(); err != nil {
		return err
	}

	now := s.now().UTC()
	r.Status = StatusSubmitted
	r.CreatedAt = now

	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		r.TrackingID = NewTrackingID(now)
		err := s.q.InsertReport(ctx, r)
		if err == nil {
			s.logger.Info("issue filed",
				"tracking_id", r.TrackingID, "issue_type", r.IssueType, "city", r.Location.City)
			return nil
		}
		if !errors.Is(err, ErrDuplicateID) {
			return fmt.Errorf("filing issue: %w", err)
		}
	}
	return fmt.Errorf("filing issue: could not allocate a tracking id after %d attempts", maxIDAttempts)
}

// Get returns a report by tracking id.
func (s *Store) Get(ctx context.Context, trackingID string) (*Report, error) {
	if !ValidTrackingID(trackingID) {
		return nil, faults.Validationf("malformed tracking id %q", trackingID)
	}
	r, err := s.q.GetReport(ctx, trackingID)
	if errors.Is(err, ErrNoIssue) {
		return nil, faults.NotFoundf("issue %q", trackingID)
	}
	if err != nil {
		return nil, fmt.Errorf("loading issue %q: %w", trackingID, err)
	}
	return r, nil
}

// ApplyStatusUpdate moves a report to a new status, recording the change.
// Illegal transitions, including any move out of closed, are conflict
// errors; the webhook layer maps them to 409.
func (s *Store) ApplyStatusUpdate(ctx context.Context, trackingID string, next Status, notes string, at time.Time) (*Report, error) {
	if !next.Valid() {
		return nil, faults.Validationf("unknown status %q", next)
	}

	r, err := s.Get(ctx, trackingID)
	if err != nil {
		return nil, err
	}
	if !r.Status.CanTransition(next) {
		return nil, faults.Conflictf("illegal transition %s -> %s for %s", r.Status, next, trackingID)
	}

	if at.IsZero() {
		at = s.now().UTC()
	}
	change := StatusChange{
		TrackingID: trackingID,
		From:       r.Status,
		To:         next,
		Notes:      notes,
		At:         at,
	}
	if err := s.q.SetStatus(ctx, trackingID, next); err != nil {
		return nil, fmt.Errorf("updating status of %q: %w", trackingID, err)
	}
	if err := s.q.InsertStatusChange(ctx, change); err != nil {
		return nil, fmt.Errorf("recording status change of %q: %w", trackingID, err)
	}

	r.Status = next
	s.logger.Info("issue status updated",
		"tracking_id", trackingID, "from", change.From, "to", change.To)
	return r, nil
}

// History returns the status history, oldest first.
func (s *Store) History(ctx context.Context, trackingID string) ([]StatusChange, error) {
	if _, err := s.Get(ctx, trackingID); err != nil {
		return nil, err
	}
	changes, err := s.q.ListStatusChanges(ctx, trackingID)
	if err != nil {
		return nil, fmt.Errorf("loading history of %q: %w", trackingID, err)
	}
	return changes, nil
}

// AddFollowup appends a citizen comment to an existing report.
func (s *Store) AddFollowup(ctx context.Context, trackingID, text string) error {
	if text == "" {
		return faults.Validationf("comment text is required")
	}
	if _, err := s.Get(ctx, trackingID); err != nil {
		return err
	}
	f := Followup{TrackingID: trackingID, Text: text, At: s.now().UTC()}
	if err := s.q.InsertFollowup(ctx, f); err != nil {
		return fmt.Errorf("adding follow-up to %q: %w", trackingID, err)
	}
	return nil
}

// Followups returns the citizen comments, oldest first.
func (s *Store) Followups(ctx context.Context, trackingID string) ([]Followup, error) {
	if _, err := s.Get(ctx, trackingID); err != nil {
		return nil, err
	}
	fs, err := s.q.ListFollowups(ctx, trackingID)
	if err != nil {
		return nil, fmt.Errorf("loading follow-ups of %q: %w", trackingID, err)
	}
	return fs, nil
}
