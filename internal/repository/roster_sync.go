package repository

import (
	"context"
	"fmt"

	"github.com/stemsi/qrattend-backend/internal/model"
	"github.com/stemsi/qrattend-backend/internal/roster"
)

// SyncStats counts the rows touched by SyncRoster.
type SyncStats struct {
	Students    int
	Classes     int
	Enrollments int
}

// SyncRoster mirrors the roster into the database: every subject becomes a
// class, every student is upserted and enrolled in every class. Existing
// attendance is left untouched.
func SyncRoster(ctx context.Context, students *StudentRepository, classes *ClassRepository, r *roster.Roster) (SyncStats, error) {
	var stats SyncStats

	for _, subject := range r.Subjects {
		t := model.Teacher{ClassID: subject, Login: r.TeacherForClass(subject)}
		if err := classes.Upsert(ctx, t); err != nil {
			return stats, fmt.Errorf("upsert class %s: %w", subject, err)
		}
		stats.Classes++
	}

	for _, s := range r.Students {
		if err := students.Upsert(ctx, model.Student{ID: s.ID, Name: s.Name}); err != nil {
			return stats, fmt.Errorf("upsert student %s: %w", s.ID, err)
		}
		stats.Students++

		for _, subject := range r.Subjects {
			if err := students.Enroll(ctx, s.ID, subject); err != nil {
				return stats, fmt.Errorf("enroll %s in %s: %w", s.ID, subject, err)
			}
			stats.Enrollments++
		}
	}
	return stats, nil
}
