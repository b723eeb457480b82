package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/qrattend-backend/internal/model"
)

// ClassRepository handles class data access.
type ClassRepository struct {
	pool *pgxpool.Pool
}

// NewClassRepository creates a new ClassRepository.
func NewClassRepository(pool *pgxpool.Pool) *ClassRepository {
	return &ClassRepository{pool: pool}
}

// Upsert inserts a class or reassigns its teacher.
func (r *ClassRepository) Upsert(ctx context.Context, t model.Teacher) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO classes (code, teacher_login) VALUES ($1, $2)
		 ON CONFLICT (code) DO UPDATE SET teacher_login = EXCLUDED.teacher_login`,
		t.ClassID, t.Login,
	)
	return err
}

// List retrieves all classes with their teacher.
func (r *ClassRepository) List(ctx context.Context) ([]model.Teacher, error) {
	rows, err := r.pool.Query(ctx, `SELECT code, teacher_login FROM classes ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var classes []model.Teacher
	for rows.Next() {
		var t model.Teacher
		if err := rows.Scan(&t.ClassID, &t.Login); err != nil {
			return nil, err
		}
		classes = append(classes, t)
	}
	return classes, rows.Err()
}
