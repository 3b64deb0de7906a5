package repository

import (
	"context"

	"github.com/classpoint/engage-backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// StudentRepository handles student data access.
type StudentRepository struct {
	pool *pgxpool.Pool
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(pool *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{pool: pool}
}

// GetByID retrieves a student by ID.
func (r *StudentRepository) GetByID(ctx context.Context, id int) (*model.Student, error) {
	s := &model.Student{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, full_name, email, joined_at FROM students WHERE id = $1`, id,
	).Scan(&s.ID, &s.FullName, &s.Email, &s.JoinedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetByIdentity retrieves a student by case-insensitive (full_name, email)
// match. If several rows match, the lowest id wins so repeated lookups stay
// deterministic.
func (r *StudentRepository) GetByIdentity(ctx context.Context, fullName, email string) (*model.Student, error) {
	s := &model.Student{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, full_name, email, joined_at FROM students
		 WHERE LOWER(full_name) = LOWER($1) AND LOWER(email) = LOWER($2)
		 ORDER BY id LIMIT 1`, fullName, email,
	).Scan(&s.ID, &s.FullName, &s.Email, &s.JoinedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetOrCreate finds a student by identity or inserts a new record. Email is
// optional; an empty email matches only records without one.
func (r *StudentRepository) GetOrCreate(ctx context.Context, fullName, email string) (*model.Student, error) {
	s := &model.Student{}

	var err error
	if email == "" {
		err = r.pool.QueryRow(ctx,
			`SELECT id, full_name, email, joined_at FROM students
			 WHERE LOWER(full_name) = LOWER($1) AND email IS NULL
			 ORDER BY id LIMIT 1`, fullName,
		).Scan(&s.ID, &s.FullName, &s.Email, &s.JoinedAt)
	} else {
		err = r.pool.QueryRow(ctx,
			`SELECT id, full_name, email, joined_at FROM students
			 WHERE LOWER(full_name) = LOWER($1) AND LOWER(email) = LOWER($2)
			 ORDER BY id LIMIT 1`, fullName, email,
		).Scan(&s.ID, &s.FullName, &s.Email, &s.JoinedAt)
	}
	if err == nil {
		return s, nil
	}

	var emailArg *string
	if email != "" {
		emailArg = &email
	}

	s = &model.Student{FullName: fullName, Email: emailArg}
	err = r.pool.QueryRow(ctx,
		`INSERT INTO students (full_name, email) VALUES ($1, $2)
		 RETURNING id, joined_at`,
		fullName, emailArg,
	).Scan(&s.ID, &s.JoinedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// List retrieves all students, newest first.
func (r *StudentRepository) List(ctx context.Context) ([]model.Student, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, full_name, email, joined_at FROM students ORDER BY joined_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []model.Student
	for rows.Next() {
		var s model.Student
		if err := rows.Scan(&s.ID, &s.FullName, &s.Email, &s.JoinedAt); err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	return students, rows.Err()
}
