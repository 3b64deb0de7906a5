package repository

import (
	"context"
	"errors"

	"github.com/classpoint/engage-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrAnswerExists is returned when a submission already carries an answer.
// The UNIQUE(submission_id) constraint on student_answers is the arbiter.
var ErrAnswerExists = errors.New("an answer already exists for this submission")

// SubmissionRepository handles quiz submission and answer data access.
type SubmissionRepository struct {
	pool *pgxpool.Pool
}

// NewSubmissionRepository creates a new SubmissionRepository.
func NewSubmissionRepository(pool *pgxpool.Pool) *SubmissionRepository {
	return &SubmissionRepository{pool: pool}
}

// GetOrCreate finds the submission for a (student, quiz) pair or inserts one.
// The upsert keeps concurrent first submissions from racing each other.
func (r *SubmissionRepository) GetOrCreate(ctx context.Context, studentID int, quizID uuid.UUID) (*model.QuizSubmission, error) {
	s := &model.QuizSubmission{StudentID: studentID, QuizID: quizID}

	// ON CONFLICT DO UPDATE with a no-op assignment so RETURNING always
	// yields the surviving row, inserted or pre-existing.
	err := r.pool.QueryRow(ctx,
		`INSERT INTO quiz_submissions (student_id, quiz_id)
		 VALUES ($1, $2)
		 ON CONFLICT (student_id, quiz_id) DO UPDATE SET student_id = EXCLUDED.student_id
		 RETURNING id, submitted_at, score, is_late`,
		studentID, quizID,
	).Scan(&s.ID, &s.SubmittedAt, &s.Score, &s.IsLate)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetByStudentAndQuiz retrieves the submission for a (student, quiz) pair
// without creating one. Read paths use this so a student who merely looks at
// a quiz never shows up in the teacher's submission list.
func (r *SubmissionRepository) GetByStudentAndQuiz(ctx context.Context, studentID int, quizID uuid.UUID) (*model.QuizSubmission, error) {
	s := &model.QuizSubmission{StudentID: studentID, QuizID: quizID}
	err := r.pool.QueryRow(ctx,
		`SELECT id, submitted_at, score, is_late FROM quiz_submissions
		 WHERE student_id = $1 AND quiz_id = $2`, studentID, quizID,
	).Scan(&s.ID, &s.SubmittedAt, &s.Score, &s.IsLate)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// CreateAnswer attaches the answer to its submission. A second answer for the
// same submission violates the unique constraint and yields ErrAnswerExists.
func (r *SubmissionRepository) CreateAnswer(ctx context.Context, a *model.StudentAnswer) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO student_answers (submission_id, answer_data, uploaded_file)
		 VALUES ($1, $2, $3)
		 RETURNING id, submitted_at`,
		a.SubmissionID, a.AnswerData, a.UploadedFile,
	).Scan(&a.ID, &a.SubmittedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrAnswerExists
		}
		return err
	}
	return nil
}

// GetAnswerBySubmission retrieves the answer attached to a submission.
func (r *SubmissionRepository) GetAnswerBySubmission(ctx context.Context, submissionID int) (*model.StudentAnswer, error) {
	a := &model.StudentAnswer{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, submission_id, answer_data, uploaded_file, submitted_at
		 FROM student_answers WHERE submission_id = $1`, submissionID,
	).Scan(&a.ID, &a.SubmissionID, &a.AnswerData, &a.UploadedFile, &a.SubmittedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// SubmissionResult joins a submission with its student for teacher review.
type SubmissionResult struct {
	model.QuizSubmission
	StudentName string `json:"student_name"`
}

// ListByQuiz retrieves all submissions for a quiz with student names,
// newest first.
func (r *SubmissionRepository) ListByQuiz(ctx context.Context, quizID uuid.UUID) ([]SubmissionResult, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT qs.id, qs.student_id, qs.quiz_id, qs.submitted_at, qs.score, qs.is_late, s.full_name
		 FROM quiz_submissions qs
		 JOIN students s ON qs.student_id = s.id
		 WHERE qs.quiz_id = $1
		 ORDER BY qs.submitted_at DESC`, quizID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []SubmissionResult
	for rows.Next() {
		var sr SubmissionResult
		if err := rows.Scan(&sr.ID, &sr.StudentID, &sr.QuizID, &sr.SubmittedAt, &sr.Score, &sr.IsLate, &sr.StudentName); err != nil {
			return nil, err
		}
		results = append(results, sr)
	}
	return results, rows.Err()
}
