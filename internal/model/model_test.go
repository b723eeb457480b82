package model

import (
	"testing"
	"time"
)

func TestClassSessionActiveAt(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	s := ClassSession{StartsAt: start, EndsAt: start.Add(time.Hour)}

	if s.ActiveAt(start.Add(-time.Second)) {
		t.Error("active before start")
	}
	if !s.ActiveAt(start) {
		t.Error("inactive at start")
	}
	if !s.ActiveAt(start.Add(59 * time.Minute)) {
		t.Error("inactive inside window")
	}
	if s.ActiveAt(start.Add(time.Hour)) {
		t.Error("active at end, window is half-open")
	}

	closed := start.Add(10 * time.Minute)
	s.ClosedAt = &closed
	if s.ActiveAt(start.Add(5 * time.Minute)) {
		t.Error("closed session reported active")
	}
}

func TestSheetRowOrdered(t *testing.T) {
	sheet := Sheet{
		Subjects: []string{"A", "B"},
		Rows:     []SheetRow{{Name: "Arin", Counts: map[string]int{"B": 2}}},
	}
	row, ok := sheet.Row("Arin")
	if !ok {
		t.Fatal("row missing")
	}
	got := row.Ordered(sheet.Subjects)
	if len(got) != 2 || got[0] != (SubjectCount{"A", 0}) || got[1] != (SubjectCount{"B", 2}) {
		t.Errorf("Ordered = %+v", got)
	}
	if _, ok := sheet.Row("arin"); ok {
		t.Error("Row matched case-insensitively")
	}
}
