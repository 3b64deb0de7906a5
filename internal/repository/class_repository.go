package repository

import (
	"context"
	"errors"

	"github.com/classpoint/engage-backend/internal/model"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrClassCodeTaken is returned when a generated class code collides at
// insert time.
var ErrClassCodeTaken = errors.New("class code already taken")

// ClassRepository handles class data access.
type ClassRepository struct {
	pool *pgxpool.Pool
}

// NewClassRepository creates a new ClassRepository.
func NewClassRepository(pool *pgxpool.Pool) *ClassRepository {
	return &ClassRepository{pool: pool}
}

// GetByID retrieves a class by its ID.
func (r *ClassRepository) GetByID(ctx context.Context, id int) (*model.Class, error) {
	c := &model.Class{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, code, active, teacher_id, created_at FROM classes WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.Code, &c.Active, &c.TeacherID, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// GetActiveByCode retrieves a class by its join code, active classes only.
func (r *ClassRepository) GetActiveByCode(ctx context.Context, code string) (*model.Class, error) {
	c := &model.Class{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, code, active, teacher_id, created_at FROM classes
		 WHERE code = $1 AND active = TRUE`, code,
	).Scan(&c.ID, &c.Name, &c.Code, &c.Active, &c.TeacherID, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListByTeacher retrieves all classes authored by a teacher, newest first.
func (r *ClassRepository) ListByTeacher(ctx context.Context, teacherID int) ([]model.Class, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, code, active, teacher_id, created_at FROM classes
		 WHERE teacher_id = $1 ORDER BY created_at DESC`, teacherID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var classes []model.Class
	for rows.Next() {
		var c model.Class
		if err := rows.Scan(&c.ID, &c.Name, &c.Code, &c.Active, &c.TeacherID, &c.CreatedAt); err != nil {
			return nil, err
		}
		classes = append(classes, c)
	}
	return classes, rows.Err()
}

// Create inserts a new class.
func (r *ClassRepository) Create(ctx context.Context, c *model.Class) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO classes (name, code, active, teacher_id) VALUES ($1, $2, TRUE, $3)
		 RETURNING id, active, created_at`,
		c.Name, c.Code, c.TeacherID,
	).Scan(&c.ID, &c.Active, &c.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrClassCodeTaken
		}
		return err
	}
	return nil
}

// Update modifies a class's name and active flag.
func (r *ClassRepository) Update(ctx context.Context, c *model.Class) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE classes SET name = $1, active = $2 WHERE id = $3`,
		c.Name, c.Active, c.ID)
	return err
}
