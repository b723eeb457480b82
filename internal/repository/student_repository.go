package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/qrattend-backend/internal/model"
)

// StudentRepository handles student and enrollment data access.
type StudentRepository struct {
	pool *pgxpool.Pool
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(pool *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{pool: pool}
}

// Upsert inserts a student or renames an existing one.
func (r *StudentRepository) Upsert(ctx context.Context, s model.Student) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO students (id, name) VALUES ($1, $2)
		 ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name`,
		s.ID, s.Name,
	)
	return err
}

// Enroll adds a student to a class. Enrolling twice is a no-op.
func (r *StudentRepository) Enroll(ctx context.Context, studentID, classID string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO enrollments (student_id, class_code) VALUES ($1, $2)
		 ON CONFLICT DO NOTHING`,
		studentID, classID,
	)
	return err
}

// List retrieves all students ordered by id.
func (r *StudentRepository) List(ctx context.Context) ([]model.Student, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM students ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []model.Student
	for rows.Next() {
		var s model.Student
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	return students, rows.Err()
}
