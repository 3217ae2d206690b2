package resolver

import (
	"strings"

	"github.com/vira-assistant/server/internal/assistant/model"
	"github.com/vira-assistant/server/internal/assistant/slots"
)

// ParseChoice reads a "Name | Department" reply. Text before the first pipe
// is the name; everything after it is the department.
func ParseChoice(reply string) (name, department string, ok bool) {
	before, after, found := strings.Cut(reply, "|")
	if !found {
		return "", "", false
	}
	name = strings.TrimSpace(before)
	department = strings.TrimSpace(after)
	if !slots.IsFilled(name) {
		return "", "", false
	}
	return name, department, true
}

// matchCandidate finds the offered candidate equal to name and department,
// ignoring case.
func matchCandidate(candidates []model.Candidate, name, department string) (model.Candidate, bool) {
	for _, c := range candidates {
		if strings.EqualFold(c.EmployeeName, name) && strings.EqualFold(c.Department, department) {
			return c, true
		}
	}
	return model.Candidate{}, false
}
