package resolver

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/vira-assistant/server/internal/assistant/slots"
)

var capitalizedWords = regexp.MustCompile(`[A-Z][a-z]+(?: [A-Z][a-z]+)*`)

const maxFreeformWords = 4

// CandidateName guesses which part of an utterance names an employee.
// Utterances that look like an email, a phone number or a confirmation are
// rejected. A run of capitalised words wins; otherwise short utterances are
// taken whole.
func CandidateName(utterance string) (string, bool) {
	text := strings.TrimSpace(utterance)
	if text == "" || strings.Contains(text, "@") || strings.IndexFunc(text, unicode.IsDigit) >= 0 {
		return "", false
	}
	if slots.IsConfirmation(text) {
		return "", false
	}
	if m := capitalizedWords.FindString(text); m != "" {
		return m, true
	}
	if len(strings.Fields(text)) <= maxFreeformWords {
		return text, true
	}
	return "", false
}
