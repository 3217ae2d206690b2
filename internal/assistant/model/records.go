package model

import "time"

// EmployeeRecord is a directory entry. Embedding is only read by the
// similarity index.
type EmployeeRecord struct {
	EmployeeName string    `json:"employee_name" yaml:"name"`
	Department   string    `json:"department" yaml:"department"`
	Embedding    []float64 `json:"-" yaml:"-"`
}

// Candidate is one ranked similarity match. Lower rank index means better.
type Candidate struct {
	EmployeeName string  `json:"employee_name"`
	Department   string  `json:"department"`
	Score        float64 `json:"score"`
}

// BookingRecord is the immutable snapshot handed to the caller once a booking
// is confirmed.
type BookingRecord struct {
	ID              string    `json:"id"`
	EmployeeName    string    `json:"employee_name"`
	Department      string    `json:"department"`
	Reason          string    `json:"reason"`
	AppointmentTime string    `json:"appointment_time"`
	VisitorName     string    `json:"visitor_name"`
	VisitorEmail    string    `json:"visitor_email"`
	VisitorPhone    string    `json:"visitor_phone"`
	AppointmentDate string    `json:"appointment_date"`
	CreatedAt       time.Time `json:"created_at"`
}

// NewBookingRecord copies every slot of s into a record.
func NewBookingRecord(id string, s *ConversationState, createdAt time.Time) *BookingRecord {
	return &BookingRecord{
		ID:              id,
		EmployeeName:    s.EmployeeName,
		Department:      s.Department,
		Reason:          s.Reason,
		AppointmentTime: s.AppointmentTime,
		VisitorName:     s.VisitorName,
		VisitorEmail:    s.VisitorEmail,
		VisitorPhone:    s.VisitorPhone,
		AppointmentDate: s.AppointmentDate,
		CreatedAt:       createdAt,
	}
}
