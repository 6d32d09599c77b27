package i18n

var englishMessages = map[string]string{
	// Degraded fallbacks
	"fallback.transient": "Sorry, I am having trouble reaching our systems right now. Please try again in a moment.",
	"fallback.capacity":  "We are receiving many requests right now. Please try again in a few minutes.",
	"fallback.generic":   "Sorry, I could not understand that. Could you say it again?",

	// Not-found surfaces
	"notfound.issue":  "I could not find any record for tracking number %s. Please check the number and try again.",
	"notfound.scheme": "I could not find that scheme. Could you tell me its name again?",

	// Clarification questions (one targeted question per missing field)
	"clarify.city":        "Which city or area is this issue in?",
	"clarify.state":       "Which state is this location in?",
	"clarify.issue_type":  "What kind of problem is it? For example a pothole, streetlight, garbage or water supply.",
	"clarify.description": "Please describe the problem briefly so I can register it.",
	"clarify.scheme":      "I could not find matching schemes. Could you tell me a bit more about what kind of help you need?",
	"clarify.tracking_id": "Please tell me your complaint tracking number. It looks like JS-20250101-00042.",

	// Issue reporting
	"issue.created":  "Your complaint has been registered with tracking number %s. You can ask me for its status any time.",
	"issue.status":   "Complaint %s is currently %s.",
	"issue.followup": "Your comment has been added to complaint %s.",

	// Status names spoken to the citizen
	"status.submitted":    "registered and waiting to be picked up",
	"status.under_review": "being reviewed by the municipal office",
	"status.in_progress":  "being worked on",
	"status.resolved":     "resolved",
	"status.rejected":     "rejected by the municipal office",
	"status.closed":       "closed",

	// Scheme discovery
	"scheme.results.intro": "Here are schemes that may help you:",
	"scheme.none":          "I did not find schemes matching that. Could you describe your situation differently?",

	// Eligibility
	"eligibility.eligible":   "Based on what you told me, you appear to be eligible for %s.",
	"eligibility.ineligible": "Based on what you told me, you may not qualify for %s.",

	// Suggestions
	"suggest.scheme": "Find government schemes for me",
	"suggest.issue":  "Report a civic problem",
	"suggest.track":  "Check my complaint status",
}
