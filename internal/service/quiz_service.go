package service

import (
	"context"
	"encoding/json"

	"github.com/classpoint/engage-backend/internal/model"
	"github.com/classpoint/engage-backend/internal/repository"
	"github.com/google/uuid"
)

// MultiQuizGroup is one multi-quiz: its grouping key and questions in
// explicit order.
type MultiQuizGroup struct {
	MultiQuestionID uuid.UUID    `json:"multi_question_id"`
	Questions       []model.Quiz `json:"questions"`
}

// QuizService handles quiz authoring and listing.
type QuizService struct {
	quizRepo       *repository.QuizRepository
	submissionRepo *repository.SubmissionRepository
}

// NewQuizService creates a new QuizService.
func NewQuizService(quizRepo *repository.QuizRepository, submissionRepo *repository.SubmissionRepository) *QuizService {
	return &QuizService{quizRepo: quizRepo, submissionRepo: submissionRepo}
}

// Create inserts a new quiz with a fresh UUID. Empty properties are
// normalized to an empty object so per-type rules fall back to defaults.
func (s *QuizService) Create(ctx context.Context, req *model.CreateQuizRequest) (*model.Quiz, error) {
	props := req.Properties
	if len(props) == 0 {
		props = json.RawMessage(`{}`)
	}

	quiz := &model.Quiz{
		ID:                    uuid.New(),
		ClassID:               req.ClassID,
		Title:                 req.Title,
		QuizType:              model.QuizType(req.QuizType),
		Properties:            props,
		MultiQuestionID:       req.MultiQuestionID,
		QuestionOrder:         req.QuestionOrder,
		ShowTimer:             req.ShowTimer,
		AutoCloseAfterSeconds: req.AutoCloseAfterSeconds,
	}
	if err := s.quizRepo.Create(ctx, quiz); err != nil {
		return nil, err
	}
	return quiz, nil
}

// GetByID retrieves a quiz by ID.
func (s *QuizService) GetByID(ctx context.Context, id uuid.UUID) (*model.Quiz, error) {
	return s.quizRepo.GetByID(ctx, id)
}

// Update applies the non-zero fields of the request to a quiz.
func (s *QuizService) Update(ctx context.Context, quiz *model.Quiz, req *model.UpdateQuizRequest) error {
	if req.Title != "" {
		quiz.Title = req.Title
	}
	if len(req.Properties) > 0 {
		quiz.Properties = req.Properties
	}
	if req.QuestionOrder != nil {
		quiz.QuestionOrder = *req.QuestionOrder
	}
	if req.ShowTimer != nil {
		quiz.ShowTimer = *req.ShowTimer
	}
	if req.AutoCloseAfterSeconds != nil {
		quiz.AutoCloseAfterSeconds = req.AutoCloseAfterSeconds
	}
	return s.quizRepo.Update(ctx, quiz)
}

// Delete removes a quiz.
func (s *QuizService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.quizRepo.Delete(ctx, id)
}

// ListForClass retrieves all quizzes of a class.
func (s *QuizService) ListForClass(ctx context.Context, classID int) ([]model.Quiz, error) {
	return s.quizRepo.ListByClass(ctx, classID)
}

// ListStandaloneForClass retrieves the standalone quizzes of a class,
// excluding multi-quiz questions.
func (s *QuizService) ListStandaloneForClass(ctx context.Context, classID int) ([]model.Quiz, error) {
	return s.quizRepo.ListStandaloneByClass(ctx, classID)
}

// ListMultiQuizzes retrieves every multi-quiz of a class with its questions
// in explicit order.
func (s *QuizService) ListMultiQuizzes(ctx context.Context, classID int) ([]MultiQuizGroup, error) {
	ids, err := s.quizRepo.ListMultiQuizIDs(ctx, classID)
	if err != nil {
		return nil, err
	}

	groups := make([]MultiQuizGroup, 0, len(ids))
	for _, id := range ids {
		questions, err := s.quizRepo.ListByMultiQuizID(ctx, id)
		if err != nil {
			return nil, err
		}
		groups = append(groups, MultiQuizGroup{MultiQuestionID: id, Questions: questions})
	}
	return groups, nil
}

// GetMultiQuiz retrieves the questions of one multi-quiz in explicit order.
func (s *QuizService) GetMultiQuiz(ctx context.Context, multiID uuid.UUID) ([]model.Quiz, error) {
	return s.quizRepo.ListByMultiQuizID(ctx, multiID)
}

// ListSubmissions retrieves a quiz's submissions with student names, for
// the teacher-facing results view.
func (s *QuizService) ListSubmissions(ctx context.Context, quizID uuid.UUID) ([]repository.SubmissionResult, error) {
	return s.submissionRepo.ListByQuiz(ctx, quizID)
}
