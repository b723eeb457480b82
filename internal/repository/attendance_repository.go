package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/qrattend-backend/internal/model"
)

// AttendanceRepository stores one timestamped row per (session, student).
type AttendanceRepository struct {
	pool     *pgxpool.Pool
	sessions *SessionRepository
	subjects []string
}

// NewAttendanceRepository creates a repository. subjects fixes the column
// order of the tallies it returns.
func NewAttendanceRepository(pool *pgxpool.Pool, sessions *SessionRepository, subjects []string) *AttendanceRepository {
	return &AttendanceRepository{pool: pool, sessions: sessions, subjects: subjects}
}

// Mark records the student against the class's active session. The update is
// skipped with a matching outcome when no session is active, the student is
// not enrolled, or a row already exists.
func (r *AttendanceRepository) Mark(ctx context.Context, student model.Student, classID string, at time.Time) (*model.MarkReceipt, error) {
	session, err := r.sessions.Active(ctx, classID, at)
	if errors.Is(err, ErrSessionNotFound) {
		return &model.MarkReceipt{Outcome: model.MarkNoActiveSession}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find active session: %w", err)
	}
	receipt := &model.MarkReceipt{SessionID: session.ID.String()}

	var enrolled bool
	if err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM enrollments WHERE student_id = $1 AND class_code = $2)`,
		student.ID, classID,
	).Scan(&enrolled); err != nil {
		return nil, fmt.Errorf("check enrollment: %w", err)
	}
	if !enrolled {
		receipt.Outcome = model.MarkNotEnrolled
		return receipt, nil
	}

	err = r.pool.QueryRow(ctx,
		`INSERT INTO attendance (session_id, student_id, marked_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (session_id, student_id) DO NOTHING
		 RETURNING marked_at`,
		session.ID, student.ID, at,
	).Scan(&receipt.MarkedAt)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		receipt.Outcome = model.MarkDuplicate
		return receipt, nil
	case pgCode(err) == pgForeignKeyViolation:
		receipt.Outcome = model.MarkNotEnrolled
		return receipt, nil
	case err != nil:
		return nil, fmt.Errorf("insert attendance: %w", err)
	}
	receipt.Outcome = model.MarkRecorded
	return receipt, nil
}

const tallyQuery = `
	SELECT st.id, st.name, c.code, COUNT(a.id)
	FROM students st
	CROSS JOIN classes c
	LEFT JOIN sessions se ON se.class_code = c.code
	LEFT JOIN attendance a ON a.session_id = se.id AND a.student_id = st.id`

// Sheet returns attendance counts per student and class.
func (r *AttendanceRepository) Sheet(ctx context.Context) (*model.Sheet, error) {
	rows, err := r.pool.Query(ctx, tallyQuery+`
		GROUP BY st.id, st.name, c.code
		ORDER BY st.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sheet := &model.Sheet{Subjects: r.subjects}
	index := map[string]int{}
	for rows.Next() {
		var id, name, code string
		var count int
		if err := rows.Scan(&id, &name, &code, &count); err != nil {
			return nil, err
		}
		i, ok := index[id]
		if !ok {
			i = len(sheet.Rows)
			index[id] = i
			sheet.Rows = append(sheet.Rows, model.SheetRow{Name: name, Counts: r.zeroCounts()})
		}
		sheet.Rows[i].Counts[code] = count
	}
	return sheet, rows.Err()
}

// StudentSheet returns one student's counts.
func (r *AttendanceRepository) StudentSheet(ctx context.Context, student model.Student) (*model.SheetRow, []string, error) {
	rows, err := r.pool.Query(ctx, tallyQuery+`
		WHERE st.id = $1
		GROUP BY st.id, st.name, c.code`, student.ID)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var row *model.SheetRow
	for rows.Next() {
		var id, name, code string
		var count int
		if err := rows.Scan(&id, &name, &code, &count); err != nil {
			return nil, nil, err
		}
		if row == nil {
			row = &model.SheetRow{Name: name, Counts: r.zeroCounts()}
		}
		row.Counts[code] = count
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	if row == nil {
		return nil, nil, ErrRecordNotFound
	}
	return row, r.subjects, nil
}

func (r *AttendanceRepository) zeroCounts() map[string]int {
	counts := make(map[string]int, len(r.subjects))
	for _, s := range r.subjects {
		counts[s] = 0
	}
	return counts
}
