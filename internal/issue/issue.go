// Package issue manages civic issue reports: creation with generated
// tracking ids, the server-side status lifecycle, append-only status history
// and citizen follow-ups. Status transitions arrive only from the municipal
// case system webhook; citizens read, comment and never mutate status.
package issue

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"time"

	"github.com/janseva/janseva/internal/faults"
)

// Status is an issue's lifecycle state.
type Status string

const (
	StatusSubmitted   Status = "submitted"
	StatusUnderReview Status = "under_review"
	StatusInProgress  Status = "in_progress"
	StatusResolved    Status = "resolved"
	StatusRejected    Status = "rejected"
	StatusClosed      Status = "closed"
)

// transitions is the legal successor set per status. Rejection happens only
// after triage, from in_progress. Closed is terminal.
var transitions = map[Status][]Status{
	StatusSubmitted:   {StatusUnderReview},
	StatusUnderReview: {StatusInProgress},
	StatusInProgress:  {StatusResolved, StatusRejected},
	StatusResolved:    {StatusClosed},
	StatusRejected:    {StatusClosed},
	StatusClosed:      nil,
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// CanTransition reports whether s may move to next.
func (s Status) CanTransition(next Status) bool {
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// Known issue types. Extraction clamps anything else to TypeOther.
const (
	TypePothole     = "pothole"
	TypeStreetlight = "streetlight"
	TypeGarbage     = "garbage"
	TypeWaterSupply = "water_supply"
	TypeSewage      = "sewage"
	TypeRoadDamage  = "road_damage"
	TypeElectricity = "electricity"
	TypeOther       = "other"
)

// IssueTypes lists the accepted issue types.
var IssueTypes = []string{
	TypePothole, TypeStreetlight, TypeGarbage, TypeWaterSupply,
	TypeSewage, TypeRoadDamage, TypeElectricity, TypeOther,
}

// ValidIssueType reports whether t is a known issue type.
func ValidIssueType(t string) bool {
	for _, known := range IssueTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Severity levels. Unknown severities are clamped to medium.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// Location is where the issue was observed. City is the only required
// field; coordinates are present only when the reporting channel had them.
type Location struct {
	Address  string   `json:"address,omitempty"`
	Landmark string   `json:"landmark,omitempty"`
	City     string   `json:"city"`
	State    string   `json:"state,omitempty"`
	Pincode  string   `json:"pincode,omitempty"`
	Lat      *float64 `json:"lat,omitempty"`
	Lon      *float64 `json:"lon,omitempty"`
}

// Report is a citizen's civic issue report.
type Report struct {
	TrackingID  string    `json:"tracking_id"`
	IssueType   string    `json:"issue_type"`
	Description string    `json:"description"`
	Severity    string    `json:"severity,omitempty"`
	Location    Location  `json:"location"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// StatusChange is one entry of the append-only status history.
type StatusChange struct {
	TrackingID string    `json:"tracking_id"`
	From       Status    `json:"from"`
	To         Status    `json:"to"`
	Notes      string    `json:"notes,omitempty"`
	At         time.Time `json:"at"`
}

// Followup is a citizen comment appended to an existing report.
type Followup struct {
	TrackingID string    `json:"tracking_id"`
	Text       string    `json:"text"`
	At         time.Time `json:"at"`
}

// trackingIDRe matches the public tracking id shape, e.g. JS-20250101-00042.
var trackingIDRe = regexp.MustCompile(`^JS-\d{8}-\d{5}$`)

// ValidTrackingID reports whether s has the tracking id shape.
func ValidTrackingID(s string) bool {
	return trackingIDRe.MatchString(s)
}

// FindTrackingID extracts the first tracking id embedded in free text, or "".
var embeddedTrackingIDRe = regexp.MustCompile(`JS-\d{8}-\d{5}`)

func FindTrackingID(text string) string {
	return embeddedTrackingIDRe.FindString(text)
}

// NewTrackingID generates an id of the form JS-YYYYMMDD-NNNNN. The numeric
// suffix is random; the store retries on the rare collision within a day.
func NewTrackingID(now time.Time) string {
	n, err := rand.Int(rand.Reader, big.NewInt(100000))
	if err != nil {
		// crypto/rand only fails when the OS entropy source is broken.
		n = big.NewInt(now.UnixNano() % 100000)
	}
	return fmt.Sprintf("JS-%s-%05d", now.UTC().Format("20060102"), n.Int64())
}

// Validate checks a report has the fields required for filing.
func (r *Report) Validate() error {
	if r.IssueType == "" {
		return faults.Validationf("issue type is required")
	}
	if !ValidIssueType(r.IssueType) {
		return faults.Validationf("unknown issue type %q", r.IssueType)
	}
	if r.Description == "" {
		return faults.Validationf("description is required")
	}
	if r.Location.City == "" {
		return faults.Validationf("city is required")
	}
	return nil
}
