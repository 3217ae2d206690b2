package slots

import "strings"

// confirmWords are accepted as a "yes" to the confirmation summary.
var confirmWords = map[string]struct{}{
	"yes": {}, "haan": {}, "ho": {}, "chalega": {}, "done": {},
	"ok": {}, "okay": {}, "yup": {}, "sure": {}, "si": {},
	"oui": {}, "да": {}, "はい": {}, "evet": {}, "correct": {},
	"confirm": {},
}

// IsConfirmation reports whether text is a bare confirmation word.
func IsConfirmation(text string) bool {
	_, ok := confirmWords[strings.ToLower(strings.TrimSpace(text))]
	return ok
}
