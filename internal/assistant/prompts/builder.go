// Package prompts renders the assistant's fixed utterances and the model
// prompts used by the booking dialogue.
package prompts

import (
	"fmt"
	"strings"

	"github.com/vira-assistant/server/internal/assistant/model"
	"github.com/vira-assistant/server/internal/assistant/slots"
)

const (
	// ConfirmationQuestion is appended to the summary while awaiting a yes.
	ConfirmationQuestion = "\nAre all the details correct? (Type yes to confirm)"
	// BookedReply is sent on the turn that finalizes a booking.
	BookedReply = "Appointment booked successfully!"
)

var slotLabels = map[model.Slot]string{
	model.SlotReason:          "reason for appointment",
	model.SlotAppointmentTime: "appointment time",
	model.SlotVisitorName:     "visitor's name",
	model.SlotVisitorEmail:    "visitor's email",
	model.SlotVisitorPhone:    "visitor's phone number",
}

// DynamicPrompt asks for whatever is still missing, or summarises the
// booking when nothing is.
func DynamicPrompt(s *model.ConversationState) string {
	if missing := slots.Missing(s); len(missing) > 0 {
		labels := make([]string, len(missing))
		for i, slot := range missing {
			labels[i] = slotLabels[slot]
		}
		return "Please provide: " + strings.Join(labels, ", ") + "."
	}
	return Summary(s)
}

// Summary lists every collected value for the visitor to check.
func Summary(s *model.ConversationState) string {
	var b strings.Builder
	b.WriteString("Here is a summary. Confirm if this is correct:\n")
	fmt.Fprintf(&b, "Employee: %s (%s)\n", s.EmployeeName, s.Department)
	fmt.Fprintf(&b, "Reason: %s\n", s.Reason)
	fmt.Fprintf(&b, "Time: %s\n", s.AppointmentTime)
	fmt.Fprintf(&b, "Visitor: %s\n", s.VisitorName)
	fmt.Fprintf(&b, "Email: %s\n", s.VisitorEmail)
	fmt.Fprintf(&b, "Phone: %s\n", s.VisitorPhone)
	fmt.Fprintf(&b, "Date: %s (today)", s.AppointmentDate)
	return b.String()
}

// ConfirmationPrompt is the dynamic prompt followed by the confirmation question.
func ConfirmationPrompt(s *model.ConversationState) string {
	return DynamicPrompt(s) + ConfirmationQuestion
}
