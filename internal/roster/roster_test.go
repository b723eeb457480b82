package roster

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	r := Default()
	if err := r.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	if len(r.Subjects) != 9 {
		t.Errorf("len(Subjects) = %d, want 9", len(r.Subjects))
	}
	if r.ExpectedSSID != "Mayank" {
		t.Errorf("ExpectedSSID = %q", r.ExpectedSSID)
	}
}

func TestIsSubjectExactMatch(t *testing.T) {
	r := Default()
	tests := []struct {
		code string
		want bool
	}{
		{"DMS", true},
		{"LMP-2", true},
		{"dms", false},
		{"DMS ", false},
		{" DMS", false},
		{"LMP2", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := r.IsSubject(tt.code); got != tt.want {
			t.Errorf("IsSubject(%q) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestLookups(t *testing.T) {
	r := Default()

	st, ok := r.Student("28")
	if !ok || st.Name != "Mayank" {
		t.Fatalf("Student(28) = %+v, %v", st, ok)
	}
	if _, ok := r.Student("99"); ok {
		t.Error("Student(99) found, want missing")
	}

	tc, ok := r.TeacherByLogin("LMP2_teacher")
	if !ok || tc.ClassID != "LMP-2" {
		t.Fatalf("TeacherByLogin(LMP2_teacher) = %+v, %v", tc, ok)
	}
	if _, ok := r.TeacherByLogin("lmp2_teacher"); ok {
		t.Error("TeacherByLogin is case-insensitive, want exact")
	}
	if got := r.TeacherForClass("COA"); got != "COA_teacher" {
		t.Errorf("TeacherForClass(COA) = %q", got)
	}
	if got := strings.Join(r.StudentNames(), ","); got != "Arin,Mayank,Gatik" {
		t.Errorf("StudentNames = %q", got)
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.yaml")
	body := `
subjects: [NET, OS]
expected_ssid: CampusLab
students:
  - id: "1"
    name: Ada
    password: ada
  - id: "2"
    name: Linus
    password_hash: "$2a$10$abcdefghijklmnopqrstuv"
teachers:
  - class_id: NET
    login: net_teacher
    password: netpass
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	r, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !r.IsSubject("OS") || r.IsSubject("DMS") {
		t.Errorf("unexpected subject set %v", r.Subjects)
	}
	if r.ExpectedSSID != "CampusLab" {
		t.Errorf("ExpectedSSID = %q", r.ExpectedSSID)
	}
	if st, _ := r.Student("2"); st.PasswordHash == "" {
		t.Error("password_hash not loaded")
	}
}

func TestLoadEmptyPathUsesDefault(t *testing.T) {
	r, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if !r.IsSubject("LDBMS") {
		t.Error("default roster not returned")
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Roster)
	}{
		{"no subjects", func(r *Roster) { r.Subjects = nil }},
		{"no ssid", func(r *Roster) { r.ExpectedSSID = "" }},
		{"duplicate subject", func(r *Roster) { r.Subjects = append(r.Subjects, "DMS") }},
		{"duplicate student id", func(r *Roster) {
			r.Students = append(r.Students, Student{ID: "11", Name: "Other", Password: "x"})
		}},
		{"duplicate student name", func(r *Roster) {
			r.Students = append(r.Students, Student{ID: "12", Name: "Arin", Password: "x"})
		}},
		{"student without password", func(r *Roster) {
			r.Students = append(r.Students, Student{ID: "12", Name: "Nopass"})
		}},
		{"teacher of unknown class", func(r *Roster) {
			r.Teachers = append(r.Teachers, Teacher{ClassID: "XYZ", Login: "x", Password: "x"})
		}},
		{"duplicate teacher login", func(r *Roster) {
			r.Teachers = append(r.Teachers, Teacher{ClassID: "DMS", Login: "DMS_teacher", Password: "x"})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Default()
			tt.mutate(r)
			if err := r.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

func TestExampleRosterMatchesDefault(t *testing.T) {
	r, err := Load(filepath.Join("..", "..", "roster.example.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	def := Default()
	if strings.Join(r.Subjects, ",") != strings.Join(def.Subjects, ",") {
		t.Errorf("subjects = %v", r.Subjects)
	}
	if len(r.Students) != len(def.Students) || len(r.Teachers) != len(def.Teachers) {
		t.Errorf("students=%d teachers=%d", len(r.Students), len(r.Teachers))
	}
	if r.ExpectedSSID != def.ExpectedSSID {
		t.Errorf("expected_ssid = %q", r.ExpectedSSID)
	}
}
