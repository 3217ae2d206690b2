// Package slots decides which conversation fields count as collected.
package slots

import (
	"strings"

	"github.com/vira-assistant/server/internal/assistant/model"
)

// Promptable lists the slots the visitor is asked for, in prompt order.
var Promptable = []model.Slot{
	model.SlotReason,
	model.SlotAppointmentTime,
	model.SlotVisitorName,
	model.SlotVisitorEmail,
	model.SlotVisitorPhone,
}

// required is every slot checked before confirmation. Department follows the
// employee and the date is always set.
var required = append([]model.Slot{model.SlotEmployeeName}, Promptable...)

// IsFilled reports whether v is present and meaningful.
func IsFilled(v string) bool {
	v = strings.TrimSpace(v)
	if v == "" {
		return false
	}
	switch strings.ToLower(v) {
	case "none", "null":
		return false
	}
	return true
}

// AllRequiredFilled reports whether every slot except date and department is filled.
func AllRequiredFilled(s *model.ConversationState) bool {
	if s == nil {
		return false
	}
	for _, slot := range required {
		if !IsFilled(s.Get(slot)) {
			return false
		}
	}
	return true
}

// Missing returns the unfilled promptable slots in prompt order.
func Missing(s *model.ConversationState) []model.Slot {
	var out []model.Slot
	for _, slot := range Promptable {
		if s == nil || !IsFilled(s.Get(slot)) {
			out = append(out, slot)
		}
	}
	return out
}
