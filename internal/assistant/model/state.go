package model

import "time"

// DateLayout is the format of ConversationState.AppointmentDate.
const DateLayout = "2006-01-02"

// Slot names a field of ConversationState.
type Slot string

const (
	SlotEmployeeName    Slot = "employee_name"
	SlotDepartment      Slot = "department"
	SlotReason          Slot = "reason"
	SlotAppointmentTime Slot = "appointment_time"
	SlotVisitorName     Slot = "visitor_name"
	SlotVisitorEmail    Slot = "visitor_email"
	SlotVisitorPhone    Slot = "visitor_phone"
	SlotAppointmentDate Slot = "appointment_date"
)

// ConversationState is the per-session memory of the booking dialogue. The
// empty string means a slot has not been collected yet. Department is only
// ever written together with EmployeeName.
type ConversationState struct {
	EmployeeName    string `json:"employee_name,omitempty"`
	Department      string `json:"department,omitempty"`
	Reason          string `json:"reason,omitempty"`
	AppointmentTime string `json:"appointment_time,omitempty"`
	VisitorName     string `json:"visitor_name,omitempty"`
	VisitorEmail    string `json:"visitor_email,omitempty"`
	VisitorPhone    string `json:"visitor_phone,omitempty"`
	AppointmentDate string `json:"appointment_date"`
}

// NewConversationState returns an empty state dated to now's calendar day.
func NewConversationState(now time.Time) *ConversationState {
	return &ConversationState{AppointmentDate: now.Format(DateLayout)}
}

// Clone returns a copy that shares nothing with s.
func (s *ConversationState) Clone() *ConversationState {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

// Get returns the raw value of slot, or "" for an unknown slot.
func (s *ConversationState) Get(slot Slot) string {
	switch slot {
	case SlotEmployeeName:
		return s.EmployeeName
	case SlotDepartment:
		return s.Department
	case SlotReason:
		return s.Reason
	case SlotAppointmentTime:
		return s.AppointmentTime
	case SlotVisitorName:
		return s.VisitorName
	case SlotVisitorEmail:
		return s.VisitorEmail
	case SlotVisitorPhone:
		return s.VisitorPhone
	case SlotAppointmentDate:
		return s.AppointmentDate
	}
	return ""
}

// Set writes value into slot. Empty values are ignored so that a slot is
// never cleared; the appointment date is fixed for the life of the state.
func (s *ConversationState) Set(slot Slot, value string) bool {
	if value == "" {
		return false
	}
	switch slot {
	case SlotEmployeeName:
		s.EmployeeName = value
	case SlotDepartment:
		s.Department = value
	case SlotReason:
		s.Reason = value
	case SlotAppointmentTime:
		s.AppointmentTime = value
	case SlotVisitorName:
		s.VisitorName = value
	case SlotVisitorEmail:
		s.VisitorEmail = value
	case SlotVisitorPhone:
		s.VisitorPhone = value
	default:
		return false
	}
	return true
}

// SetEmployee writes the employee and department together.
func (s *ConversationState) SetEmployee(name, department string) {
	s.EmployeeName = name
	s.Department = department
}
