// Package i18n provides the canned citizen-facing message catalogue.
//
// Unlike a process-wide locale, the response language is chosen per request
// by the dialogue orchestrator, so every lookup takes the target language
// explicitly. Hindi serves mixed-language sessions; English is the fallback
// when a key has no translation.
package i18n

import (
	"fmt"

	"github.com/janseva/janseva/internal/language"
)

// messages stores all translations, keyed by language then message key.
var messages = map[language.Language]map[string]string{
	language.English: englishMessages,
	language.Hindi:   hindiMessages,
}

// T returns the message for key in lang. Mixed maps to Hindi (the engine's
// convention for code-switched sessions). Falls back to English, then to the
// key itself so a missing translation is visible rather than silent.
func T(lang language.Language, key string) string {
	if lang == language.Mixed {
		lang = language.Hindi
	}
	if msg, ok := messages[lang][key]; ok {
		return msg
	}
	if msg, ok := messages[language.English][key]; ok {
		return msg
	}
	return key
}

// Sprintf returns the translated and formatted message.
func Sprintf(lang language.Language, key string, args ...any) string {
	return fmt.Sprintf(T(lang, key), args...)
}
