package issue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to Status
		ok       bool
	}{
		{StatusSubmitted, StatusUnderReview, true},
		{StatusSubmitted, StatusRejected, false},
		{StatusSubmitted, StatusResolved, false},
		{StatusUnderReview, StatusInProgress, true},
		{StatusUnderReview, StatusRejected, false},
		{StatusInProgress, StatusResolved, true},
		{StatusInProgress, StatusRejected, true},
		{StatusResolved, StatusClosed, true},
		{StatusRejected, StatusClosed, true},
		{StatusClosed, StatusSubmitted, false},
		{StatusClosed, StatusUnderReview, false},
		{StatusResolved, StatusInProgress, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.ok, tt.from.CanTransition(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestStatusValid(t *testing.T) {
	assert.True(t, StatusSubmitted.Valid())
	assert.True(t, StatusClosed.Valid())
	assert.False(t, Status("escalated").Valid())
}

func TestNewTrackingIDShape(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	id := NewTrackingID(now)

	assert.True(t, ValidTrackingID(id), "generated id %q", id)
	assert.Contains(t, id, "JS-20250101-")
}

func TestValidTrackingID(t *testing.T) {
	assert.True(t, ValidTrackingID("JS-20250101-00042"))
	assert.False(t, ValidTrackingID("JS-2025-42"))
	assert.False(t, ValidTrackingID("js-20250101-00042"))
	assert.False(t, ValidTrackingID("JS-20250101-00042 extra"))
}

func TestFindTrackingID(t *testing.T) {
	assert.Equal(t, "JS-20250101-00042",
		FindTrackingID("mera complaint JS-20250101-00042 ka kya hua"))
	assert.Empty(t, FindTrackingID("koi number nahi hai"))
}

func TestReportValidate(t *testing.T) {
	r := Report{
		IssueType:   "pothole",
		Description: "big pothole near the bus stand",
		Location:    Location{City: "Nagpur"},
	}
	assert.NoError(t, r.Validate())

	missingCity := r
	missingCity.Location.City = ""
	assert.Error(t, missingCity.Validate())

	missingType := r
	missingType.IssueType = ""
	assert.Error(t, missingType.Validate())
}
