package extract

import (
	"strings"

	"github.com/vira-assistant/server/internal/assistant/model"
)

// Rule pulls a single slot value out of an utterance.
type Rule interface {
	Name() string
	Slot() model.Slot
	Extract(utterance string) (string, bool)
}

// ReasonRule recognises interview appointments.
type ReasonRule struct{}

func (ReasonRule) Name() string     { return "reason_interview" }
func (ReasonRule) Slot() model.Slot { return model.SlotReason }

func (ReasonRule) Extract(u string) (string, bool) {
	if strings.Contains(strings.ToLower(u), "interview") {
		return "Interview", true
	}
	return "", false
}

// TimeRule stores the whole utterance when it mentions am or pm. The result
// is not parsed, so office-hours limits are left to the model's framing.
type TimeRule struct{}

func (TimeRule) Name() string     { return "time_meridiem" }
func (TimeRule) Slot() model.Slot { return model.SlotAppointmentTime }

func (TimeRule) Extract(u string) (string, bool) {
	lower := strings.ToLower(u)
	if !strings.Contains(lower, "am") && !strings.Contains(lower, "pm") {
		return "", false
	}
	v := strings.TrimSpace(u)
	return v, v != ""
}

// EmailRule joins the word before the first "@" with the text after it.
type EmailRule struct{}

func (EmailRule) Name() string     { return "email_at_sign" }
func (EmailRule) Slot() model.Slot { return model.SlotVisitorEmail }

func (EmailRule) Extract(u string) (string, bool) {
	before, after, found := strings.Cut(u, "@")
	if !found {
		return "", false
	}
	// Only the text up to a second "@" belongs to the domain.
	after, _, _ = strings.Cut(after, "@")

	local := strings.Fields(before)
	domain := strings.Fields(after)
	if len(local) == 0 || len(domain) == 0 {
		return "", false
	}
	return local[len(local)-1] + "@" + domain[0], true
}

// VisitorNameRule reads "... name is X, ..." keeping the visitor's casing.
type VisitorNameRule struct{}

func (VisitorNameRule) Name() string     { return "visitor_name_is" }
func (VisitorNameRule) Slot() model.Slot { return model.SlotVisitorName }

const namePhrase = "name is"

func (VisitorNameRule) Extract(u string) (string, bool) {
	// asciiLower keeps byte offsets aligned with u.
	idx := strings.LastIndex(asciiLower(u), namePhrase)
	if idx < 0 {
		return "", false
	}
	rest := u[idx+len(namePhrase):]
	rest, _, _ = strings.Cut(rest, ",")
	name := strings.TrimSpace(rest)
	return name, name != ""
}

// PhoneRule takes the first all-digit token of at least eight characters.
type PhoneRule struct{}

func (PhoneRule) Name() string     { return "phone_digits" }
func (PhoneRule) Slot() model.Slot { return model.SlotVisitorPhone }

const minPhoneDigits = 8

func (PhoneRule) Extract(u string) (string, bool) {
	for _, tok := range strings.Fields(u) {
		if len(tok) >= minPhoneDigits && allDigits(tok) {
			return tok, true
		}
	}
	return "", false
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
