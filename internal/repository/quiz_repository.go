package repository

import (
	"context"

	"github.com/classpoint/engage-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// QuizRepository handles quiz data access.
type QuizRepository struct {
	pool *pgxpool.Pool
}

// NewQuizRepository creates a new QuizRepository.
func NewQuizRepository(pool *pgxpool.Pool) *QuizRepository {
	return &QuizRepository{pool: pool}
}

const quizColumns = `id, class_id, title, quiz_type, properties, multi_question_id,
	question_order, show_timer, auto_close_after_seconds, created_at`

func scanQuiz(row interface{ Scan(dest ...any) error }) (*model.Quiz, error) {
	q := &model.Quiz{}
	err := row.Scan(&q.ID, &q.ClassID, &q.Title, &q.QuizType, &q.Properties,
		&q.MultiQuestionID, &q.QuestionOrder, &q.ShowTimer, &q.AutoCloseAfterSeconds, &q.CreatedAt)
	if err != nil {
		return nil, err
	}
	return q, nil
}

// GetByID retrieves a quiz by ID.
func (r *QuizRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Quiz, error) {
	return scanQuiz(r.pool.QueryRow(ctx,
		`SELECT `+quizColumns+` FROM quizzes WHERE id = $1`, id))
}

// Create inserts a new quiz.
func (r *QuizRepository) Create(ctx context.Context, q *model.Quiz) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO quizzes (id, class_id, title, quiz_type, properties, multi_question_id,
		                      question_order, show_timer, auto_close_after_seconds)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING created_at`,
		q.ID, q.ClassID, q.Title, q.QuizType, q.Properties, q.MultiQuestionID,
		q.QuestionOrder, q.ShowTimer, q.AutoCloseAfterSeconds,
	).Scan(&q.CreatedAt)
}

// Update modifies a quiz's mutable fields.
func (r *QuizRepository) Update(ctx context.Context, q *model.Quiz) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE quizzes SET title = $1, properties = $2, question_order = $3,
		        show_timer = $4, auto_close_after_seconds = $5
		 WHERE id = $6`,
		q.Title, q.Properties, q.QuestionOrder, q.ShowTimer, q.AutoCloseAfterSeconds, q.ID)
	return err
}

// Delete removes a quiz by ID.
func (r *QuizRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM quizzes WHERE id = $1`, id)
	return err
}

// ListStandaloneByClass retrieves quizzes of a class that are not part of a
// multi-quiz, newest first.
func (r *QuizRepository) ListStandaloneByClass(ctx context.Context, classID int) ([]model.Quiz, error) {
	return r.list(ctx,
		`SELECT `+quizColumns+` FROM quizzes
		 WHERE class_id = $1 AND multi_question_id IS NULL
		 ORDER BY created_at DESC`, classID)
}

// ListByClass retrieves all quizzes of a class, newest first.
func (r *QuizRepository) ListByClass(ctx context.Context, classID int) ([]model.Quiz, error) {
	return r.list(ctx,
		`SELECT `+quizColumns+` FROM quizzes
		 WHERE class_id = $1 ORDER BY created_at DESC`, classID)
}

// ListMultiQuizIDs retrieves the distinct grouping keys of multi-quizzes in a
// class.
func (r *QuizRepository) ListMultiQuizIDs(ctx context.Context, classID int) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT multi_question_id FROM quizzes
		 WHERE class_id = $1 AND multi_question_id IS NOT NULL`, classID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListByMultiQuizID retrieves the questions of a multi-quiz in explicit
// question order.
func (r *QuizRepository) ListByMultiQuizID(ctx context.Context, multiID uuid.UUID) ([]model.Quiz, error) {
	return r.list(ctx,
		`SELECT `+quizColumns+` FROM quizzes
		 WHERE multi_question_id = $1 ORDER BY question_order`, multiID)
}

func (r *QuizRepository) list(ctx context.Context, query string, args ...any) ([]model.Quiz, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var quizzes []model.Quiz
	for rows.Next() {
		q, err := scanQuiz(rows)
		if err != nil {
			return nil, err
		}
		quizzes = append(quizzes, *q)
	}
	return quizzes, rows.Err()
}
