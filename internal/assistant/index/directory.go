package index

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vira-assistant/server/internal/assistant/model"
)

type directoryFile struct {
	Employees []model.EmployeeRecord `yaml:"employees"`
}

// LoadDirectory reads an employee directory seed file.
func LoadDirectory(path string) ([]model.EmployeeRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open directory: %w", err)
	}
	defer f.Close()
	return ParseDirectory(f)
}

// ParseDirectory decodes
//
//	employees:
//	  - name: Sarah Johnson
//	    department: HR
//
// and drops entries without a name.
func ParseDirectory(r io.Reader) ([]model.EmployeeRecord, error) {
	var df directoryFile
	if err := yaml.NewDecoder(r).Decode(&df); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode directory: %w", err)
	}

	out := make([]model.EmployeeRecord, 0, len(df.Employees))
	for _, e := range df.Employees {
		e.EmployeeName = strings.TrimSpace(e.EmployeeName)
		e.Department = strings.TrimSpace(e.Department)
		if e.EmployeeName == "" {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}
