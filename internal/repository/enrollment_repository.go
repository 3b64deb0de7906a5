package repository

import (
	"context"
	"errors"

	"github.com/classpoint/engage-backend/internal/model"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrAlreadyEnrolled is returned when the (student, class) unique constraint
// rejects a second enrollment.
var ErrAlreadyEnrolled = errors.New("student is already enrolled in this class")

// EnrollmentRepository handles class enrollment data access.
type EnrollmentRepository struct {
	pool *pgxpool.Pool
}

// NewEnrollmentRepository creates a new EnrollmentRepository.
func NewEnrollmentRepository(pool *pgxpool.Pool) *EnrollmentRepository {
	return &EnrollmentRepository{pool: pool}
}

// GetByStudentAndClass retrieves an enrollment for a (student, class) pair.
func (r *EnrollmentRepository) GetByStudentAndClass(ctx context.Context, studentID, classID int) (*model.Enrollment, error) {
	e := &model.Enrollment{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, student_id, class_id, joined_at FROM enrollments
		 WHERE student_id = $1 AND class_id = $2`, studentID, classID,
	).Scan(&e.ID, &e.StudentID, &e.ClassID, &e.JoinedAt)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Create inserts a new enrollment. Duplicate (student, class) pairs are
// rejected by the unique constraint and surfaced as ErrAlreadyEnrolled.
func (r *EnrollmentRepository) Create(ctx context.Context, e *model.Enrollment) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO enrollments (student_id, class_id) VALUES ($1, $2)
		 RETURNING id, joined_at`,
		e.StudentID, e.ClassID,
	).Scan(&e.ID, &e.JoinedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrAlreadyEnrolled
		}
		return err
	}
	return nil
}

// ListByStudent retrieves all enrollments of a student, newest first.
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID int) ([]model.Enrollment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, student_id, class_id, joined_at FROM enrollments
		 WHERE student_id = $1 ORDER BY joined_at DESC`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var enrollments []model.Enrollment
	for rows.Next() {
		var e model.Enrollment
		if err := rows.Scan(&e.ID, &e.StudentID, &e.ClassID, &e.JoinedAt); err != nil {
			return nil, err
		}
		enrollments = append(enrollments, e)
	}
	return enrollments, rows.Err()
}
