// Package roster holds the static tables the attendance rules run against:
// the subject set, student credentials, per-class teacher credentials and the
// wireless network a scan must be made from.
package roster

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Student is a roster entry for a student. Exactly one of Password or
// PasswordHash (bcrypt) is expected to be set.
type Student struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	Password     string `yaml:"password,omitempty"`
	PasswordHash string `yaml:"password_hash,omitempty"`
}

// Teacher is the credential allowed to run a single class.
type Teacher struct {
	ClassID      string `yaml:"class_id"`
	Login        string `yaml:"login"`
	Password     string `yaml:"password,omitempty"`
	PasswordHash string `yaml:"password_hash,omitempty"`
}

// Roster is the complete static configuration.
type Roster struct {
	Subjects     []string  `yaml:"subjects"`
	Students     []Student `yaml:"students"`
	Teachers     []Teacher `yaml:"teachers"`
	ExpectedSSID string    `yaml:"expected_ssid"`
}

// Default returns the built-in tables.
func Default() *Roster {
	return &Roster{
		Subjects: []string{"DMS", "COA", "TOC", "DBMS", "OOPSJ", "LMP-2", "LOOPSJ", "LCOA", "LDBMS"},
		Students: []Student{
			{ID: "11", Name: "Arin", Password: "arin"},
			{ID: "28", Name: "Mayank", Password: "mayank"},
			{ID: "19", Name: "Gatik", Password: "gatik"},
		},
		Teachers: []Teacher{
			{ClassID: "DMS", Login: "DMS_teacher", Password: "passDMS"},
			{ClassID: "COA", Login: "COA_teacher", Password: "passCOA"},
			{ClassID: "TOC", Login: "TOC_teacher", Password: "passTOC"},
			{ClassID: "DBMS", Login: "DBMS_teacher", Password: "passDBMS"},
			{ClassID: "OOPSJ", Login: "OOPSJ_teacher", Password: "passOOPSJ"},
			{ClassID: "LMP-2", Login: "LMP2_teacher", Password: "passLMP2"},
			{ClassID: "LOOPSJ", Login: "LOOPSJ_teacher", Password: "passLOOPSJ"},
			{ClassID: "LCOA", Login: "LCOA_teacher", Password: "passLCOA"},
			{ClassID: "LDBMS", Login: "LDBMS_teacher", Password: "passLDBMS"},
		},
		ExpectedSSID: "Mayank",
	}
}

// Load reads a roster from a YAML file. An empty path yields Default().
func Load(path string) (*Roster, error) {
	if path == "" {
		return Default(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}

	r := &Roster{}
	if err := yaml.Unmarshal(raw, r); err != nil {
		return nil, fmt.Errorf("parse roster %s: %w", path, err)
	}
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("roster %s: %w", path, err)
	}
	return r, nil
}

// Validate checks the tables for the properties the attendance rules rely on.
// Student names must be unique because they key the file-backed sheet.
func (r *Roster) Validate() error {
	if len(r.Subjects) == 0 {
		return errors.New("subject set is empty")
	}
	if r.ExpectedSSID == "" {
		return errors.New("expected_ssid is required")
	}

	subjects := make(map[string]struct{}, len(r.Subjects))
	for _, s := range r.Subjects {
		if s == "" {
			return errors.New("empty subject identifier")
		}
		if _, dup := subjects[s]; dup {
			return fmt.Errorf("duplicate subject %q", s)
		}
		subjects[s] = struct{}{}
	}

	ids := make(map[string]struct{}, len(r.Students))
	names := make(map[string]struct{}, len(r.Students))
	for _, st := range r.Students {
		if st.ID == "" || st.Name == "" {
			return errors.New("student id and name are required")
		}
		if st.Password == "" && st.PasswordHash == "" {
			return fmt.Errorf("student %q has no password", st.ID)
		}
		if _, dup := ids[st.ID]; dup {
			return fmt.Errorf("duplicate student id %q", st.ID)
		}
		if _, dup := names[st.Name]; dup {
			return fmt.Errorf("duplicate student name %q", st.Name)
		}
		ids[st.ID] = struct{}{}
		names[st.Name] = struct{}{}
	}

	logins := make(map[string]struct{}, len(r.Teachers))
	for _, t := range r.Teachers {
		if _, ok := subjects[t.ClassID]; !ok {
			return fmt.Errorf("teacher %q assigned to unknown class %q", t.Login, t.ClassID)
		}
		if t.Login == "" {
			return fmt.Errorf("teacher for class %q has no login", t.ClassID)
		}
		if t.Password == "" && t.PasswordHash == "" {
			return fmt.Errorf("teacher %q has no password", t.Login)
		}
		if _, dup := logins[t.Login]; dup {
			return fmt.Errorf("duplicate teacher login %q", t.Login)
		}
		logins[t.Login] = struct{}{}
	}
	return nil
}

// IsSubject reports whether code is a member of the subject set. Exact and case-sensitive.
func (r *Roster) IsSubject(code string) bool {
	for _, s := range r.Subjects {
		if s == code {
			return true
		}
	}
	return false
}

// Student returns the roster entry with the given id.
func (r *Roster) Student(id string) (Student, bool) {
	for _, st := range r.Students {
		if st.ID == id {
			return st, true
		}
	}
	return Student{}, false
}

// TeacherByLogin returns the teacher entry with the given login.
func (r *Roster) TeacherByLogin(login string) (Teacher, bool) {
	for _, t := range r.Teachers {
		if t.Login == login {
			return t, true
		}
	}
	return Teacher{}, false
}

// TeacherForClass returns the teacher login for a class, or "" if none.
func (r *Roster) TeacherForClass(classID string) string {
	for _, t := range r.Teachers {
		if t.ClassID == classID {
			return t.Login
		}
	}
	return ""
}

// StudentNames returns student display names in roster order.
func (r *Roster) StudentNames() []string {
	names := make([]string, 0, len(r.Students))
	for _, st := range r.Students {
		names = append(names, st.Name)
	}
	return names
}
