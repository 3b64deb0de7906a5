package service

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/classpoint/engage-backend/internal/config"
	"github.com/classpoint/engage-backend/internal/model"
	"github.com/classpoint/engage-backend/internal/repository"
)

var (
	ErrQuizNotFound        = errors.New("quiz not found")
	ErrAnswerRequired      = errors.New("answer data or uploaded file required")
	ErrUnsupportedQuizType = errors.New("unsupported quiz type")
)

// QuizReader is the slice of the quiz repository AnswerService needs.
type QuizReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Quiz, error)
}

// AnswerStore persists submissions and their answers.
type AnswerStore interface {
	GetOrCreate(ctx context.Context, studentID int, quizID uuid.UUID) (*model.QuizSubmission, error)
	GetByStudentAndQuiz(ctx context.Context, studentID int, quizID uuid.UUID) (*model.QuizSubmission, error)
	CreateAnswer(ctx context.Context, a *model.StudentAnswer) error
	GetAnswerBySubmission(ctx context.Context, submissionID int) (*model.StudentAnswer, error)
}

// gradePayload is the job pushed onto the grading queue for each answer of a
// gradable quiz type. The scoring worker consumes it.
type gradePayload struct {
	SubmissionID int    `json:"submission_id"`
	QuizID       string `json:"quiz_id"`
}

// AnswerService validates and records student answers. Validation is
// dispatched per quiz type through the answerValidators table; gradable
// answers are handed to the scoring worker via Redis.
type AnswerService struct {
	quizzes   QuizReader
	answers   AnswerStore
	rdb       *redis.Client
	uploadDir string
	statFile  func(path string) (int64, error)
	log       zerolog.Logger
}

func NewAnswerService(quizzes QuizReader, answers AnswerStore, rdb *redis.Client, uploadDir string, log zerolog.Logger) *AnswerService {
	s := &AnswerService{
		quizzes:   quizzes,
		answers:   answers,
		rdb:       rdb,
		uploadDir: uploadDir,
		log:       log.With().Str("component", "answer_service").Logger(),
	}
	s.statFile = s.statUpload
	return s
}

// Submit records studentID's answer to the quiz named in req. A submission
// row is created on first contact (get-or-create); a second answer for the
// same submission surfaces repository.ErrAnswerExists.
func (s *AnswerService) Submit(ctx context.Context, studentID int, req *model.SubmitAnswerRequest) (*model.QuizSubmission, *model.StudentAnswer, error) {
	quiz, err := s.quizzes.GetByID(ctx, req.QuizID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrQuizNotFound
		}
		return nil, nil, err
	}

	if len(req.AnswerData) == 0 && req.UploadedFile == "" {
		return nil, nil, ErrAnswerRequired
	}

	validate, ok := answerValidators[quiz.QuizType]
	if !ok {
		return nil, nil, ErrUnsupportedQuizType
	}

	in := &answerInput{Data: req.AnswerData, FilePath: req.UploadedFile}
	if req.UploadedFile != "" {
		size, err := s.statFile(req.UploadedFile)
		if err != nil {
			return nil, nil, rejectf("uploaded file not found")
		}
		in.FileSize = size
	}
	if err := validate(quiz.Properties, in); err != nil {
		return nil, nil, err
	}

	submission, err := s.answers.GetOrCreate(ctx, studentID, quiz.ID)
	if err != nil {
		return nil, nil, err
	}

	answer := &model.StudentAnswer{
		SubmissionID: submission.ID,
		AnswerData:   req.AnswerData,
	}
	if req.UploadedFile != "" {
		answer.UploadedFile = &req.UploadedFile
	}
	if err := s.answers.CreateAnswer(ctx, answer); err != nil {
		return nil, nil, err
	}

	if quiz.QuizType == model.QuizTypeMultipleChoice || quiz.QuizType == model.QuizTypeShortAnswer {
		s.enqueueGrading(ctx, submission.ID, quiz.ID)
	}

	return submission, answer, nil
}

// GetAnswer returns studentID's answer to a quiz, if any. This is a pure
// read: a student who never submitted gets nil back, and no submission row
// is created on their behalf.
func (s *AnswerService) GetAnswer(ctx context.Context, studentID int, quizID uuid.UUID) (*model.QuizSubmission, *model.StudentAnswer, error) {
	if _, err := s.quizzes.GetByID(ctx, quizID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrQuizNotFound
		}
		return nil, nil, err
	}
	submission, err := s.answers.GetByStudentAndQuiz(ctx, studentID, quizID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, nil
		}
		return nil, nil, err
	}
	answer, err := s.answers.GetAnswerBySubmission(ctx, submission.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return submission, nil, nil
		}
		return nil, nil, err
	}
	return submission, answer, nil
}

// enqueueGrading pushes a scoring job. Grading is best effort: a push
// failure is logged, never surfaced to the student, and the answer stays
// recorded with a null score.
func (s *AnswerService) enqueueGrading(ctx context.Context, submissionID int, quizID uuid.UUID) {
	if s.rdb == nil {
		return
	}
	raw, _ := json.Marshal(gradePayload{SubmissionID: submissionID, QuizID: quizID.String()})
	if err := s.rdb.RPush(ctx, config.WorkerKey.GradeAnswersQueue, raw).Err(); err != nil {
		s.log.Error().Err(err).Int("submission_id", submissionID).Msg("failed to enqueue grading job")
	}
}

// statUpload resolves an uploaded-file reference against the upload
// directory. Only the base name is honored so references cannot escape it.
func (s *AnswerService) statUpload(path string) (int64, error) {
	info, err := os.Stat(filepath.Join(s.uploadDir, filepath.Base(path)))
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

var _ AnswerStore = (*repository.SubmissionRepository)(nil)
var _ QuizReader = (*repository.QuizRepository)(nil)
