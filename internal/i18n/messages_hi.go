package i18n

var hindiMessages = map[string]string{
	// Degraded fallbacks
	"fallback.transient": "क्षमा करें, अभी हमारी प्रणाली से संपर्क नहीं हो पा रहा है। कृपया थोड़ी देर में फिर से प्रयास करें।",
	"fallback.capacity":  "अभी बहुत से अनुरोध आ रहे हैं। कृपया कुछ मिनट बाद फिर से प्रयास करें।",
	"fallback.generic":   "क्षमा करें, मैं समझ नहीं पाया। कृपया दोबारा कहें।",

	// Not-found surfaces
	"notfound.issue":  "ट्रैकिंग नंबर %s का कोई रिकॉर्ड नहीं मिला। कृपया नंबर जांचकर फिर से प्रयास करें।",
	"notfound.scheme": "वह योजना नहीं मिली। कृपया उसका नाम फिर से बताएं।",

	// Clarification questions
	"clarify.city":        "यह समस्या किस शहर या क्षेत्र में है?",
	"clarify.state":       "यह स्थान किस राज्य में है?",
	"clarify.issue_type":  "समस्या किस प्रकार की है — जैसे गड्ढा, स्ट्रीट लाइट, कचरा या पानी की आपूर्ति?",
	"clarify.description": "कृपया समस्या का संक्षिप्त विवरण दें ताकि मैं उसे दर्ज कर सकूं।",
	"clarify.scheme":      "मुझे मेल खाती योजनाएं नहीं मिलीं। कृपया बताएं कि आपको किस तरह की मदद चाहिए?",
	"clarify.tracking_id": "कृपया अपनी शिकायत का ट्रैकिंग नंबर बताएं। यह JS-20250101-00042 जैसा दिखता है।",

	// Issue reporting
	"issue.created":  "आपकी शिकायत ट्रैकिंग नंबर %s के साथ दर्ज हो गई है। आप कभी भी इसकी स्थिति पूछ सकते हैं।",
	"issue.status":   "शिकायत %s की वर्तमान स्थिति है: %s।",
	"issue.followup": "आपकी टिप्पणी शिकायत %s में जोड़ दी गई है।",

	// Status names spoken to the citizen
	"status.submitted":    "दर्ज हो गई है और कार्रवाई की प्रतीक्षा में है",
	"status.under_review": "नगर कार्यालय में समीक्षा में है",
	"status.in_progress":  "पर काम चल रहा है",
	"status.resolved":     "हल हो गई है",
	"status.rejected":     "नगर कार्यालय द्वारा अस्वीकृत कर दी गई है",
	"status.closed":       "बंद कर दी गई है",

	// Scheme discovery
	"scheme.results.intro": "ये योजनाएं आपके काम आ सकती हैं:",
	"scheme.none":          "इससे मेल खाती योजनाएं नहीं मिलीं। कृपया अपनी स्थिति कुछ और तरह से बताएं।",

	// Eligibility
	"eligibility.eligible":   "आपकी जानकारी के आधार पर आप %s के पात्र लगते हैं।",
	"eligibility.ineligible": "आपकी जानकारी के आधार पर शायद आप %s के पात्र नहीं हैं।",

	// Suggestions
	"suggest.scheme": "मेरे लिए सरकारी योजनाएं खोजें",
	"suggest.issue":  "नागरिक समस्या दर्ज करें",
	"suggest.track":  "मेरी शिकायत की स्थिति देखें",
}
