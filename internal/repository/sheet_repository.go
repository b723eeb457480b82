package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/stemsi/qrattend-backend/internal/model"
	"github.com/stemsi/qrattend-backend/internal/roster"
)

var (
	ErrSheetRowNotFound    = errors.New("no sheet row for student")
	ErrSheetColumnNotFound = errors.New("no sheet column for class")
	ErrRecordNotFound      = errors.New("attendance record not found")
	ErrMalformedSheet      = errors.New("malformed attendance sheet")
)

const nameColumn = "Name"

// SheetRepository keeps attendance counters in a CSV file with a
// "Name,<subject...>" header and one integer row per student.
type SheetRepository struct {
	mu   sync.Mutex
	path string
}

// NewSheetRepository creates a repository for the file at path.
func NewSheetRepository(path string) *SheetRepository {
	return &SheetRepository{path: path}
}

// Path returns the backing file path.
func (r *SheetRepository) Path() string { return r.path }

// Ensure creates the sheet with zeroed counters for every roster student
// when the file does not exist. An existing file is only checked for shape.
func (r *SheetRepository) Ensure(ros *roster.Roster) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := os.Stat(r.path); err == nil {
		_, err := r.read()
		return err
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat sheet: %w", err)
	}

	sheet := &model.Sheet{Subjects: append([]string(nil), ros.Subjects...)}
	for _, name := range ros.StudentNames() {
		counts := make(map[string]int, len(ros.Subjects))
		for _, s := range ros.Subjects {
			counts[s] = 0
		}
		sheet.Rows = append(sheet.Rows, model.SheetRow{Name: name, Counts: counts})
	}
	return r.write(sheet)
}

// Mark increments the (student name, class) counter by one. Rows are keyed by
// name, so if a hand-edited file repeats a name only the first such row is
// updated. roster.Validate rejects duplicate names, which keeps sheets made
// by Ensure unambiguous.
func (r *SheetRepository) Mark(_ context.Context, student model.Student, classID string, at time.Time) (*model.MarkReceipt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sheet, err := r.read()
	if err != nil {
		return nil, err
	}

	if !hasSubject(sheet.Subjects, classID) {
		return nil, fmt.Errorf("%w: %s", ErrSheetColumnNotFound, classID)
	}
	row, ok := sheet.Row(student.Name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSheetRowNotFound, student.Name)
	}
	row.Counts[classID]++

	if err := r.write(sheet); err != nil {
		return nil, err
	}
	return &model.MarkReceipt{Outcome: model.MarkRecorded, MarkedAt: at}, nil
}

// Sheet returns the whole table.
func (r *SheetRepository) Sheet(_ context.Context) (*model.Sheet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.read()
}

// StudentSheet returns the row for one student.
func (r *SheetRepository) StudentSheet(ctx context.Context, student model.Student) (*model.SheetRow, []string, error) {
	sheet, err := r.Sheet(ctx)
	if err != nil {
		return nil, nil, err
	}
	row, ok := sheet.Row(student.Name)
	if !ok {
		return nil, nil, ErrRecordNotFound
	}
	return row, sheet.Subjects, nil
}

func (r *SheetRepository) read() (*model.Sheet, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("open sheet: %w", err)
	}
	defer f.Close()
	return ReadSheetCSV(f)
}

func (r *SheetRepository) write(sheet *model.Sheet) error {
	dir := filepath.Dir(r.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(r.path)+"-*")
	if err != nil {
		return fmt.Errorf("create temp sheet: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := WriteSheetCSV(tmp, sheet); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync sheet: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close sheet: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("replace sheet: %w", err)
	}
	return nil
}

// ReadSheetCSV parses a sheet from its CSV form.
func ReadSheetCSV(rd io.Reader) (*model.Sheet, error) {
	cr := csv.NewReader(rd)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSheet, err)
	}
	if len(records) == 0 || len(records[0]) == 0 || records[0][0] != nameColumn {
		return nil, fmt.Errorf("%w: missing %s header", ErrMalformedSheet, nameColumn)
	}

	sheet := &model.Sheet{Subjects: append([]string(nil), records[0][1:]...)}
	for i, rec := range records[1:] {
		row := model.SheetRow{Name: rec[0], Counts: make(map[string]int, len(sheet.Subjects))}
		for j, subject := range sheet.Subjects {
			n, err := strconv.Atoi(rec[j+1])
			if err != nil {
				return nil, fmt.Errorf("%w: line %d column %s: %v", ErrMalformedSheet, i+2, subject, err)
			}
			row.Counts[subject] = n
		}
		sheet.Rows = append(sheet.Rows, row)
	}
	return sheet, nil
}

// WriteSheetCSV renders a sheet as CSV, header first.
func WriteSheetCSV(w io.Writer, sheet *model.Sheet) error {
	cw := csv.NewWriter(w)
	header := append([]string{nameColumn}, sheet.Subjects...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write sheet header: %w", err)
	}
	for _, row := range sheet.Rows {
		rec := make([]string, 0, len(header))
		rec = append(rec, row.Name)
		for _, s := range sheet.Subjects {
			rec = append(rec, strconv.Itoa(row.Counts[s]))
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write sheet row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func hasSubject(subjects []string, classID string) bool {
	for _, s := range subjects {
		if s == classID {
			return true
		}
	}
	return false
}
