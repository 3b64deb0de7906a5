package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/classpoint/engage-backend/internal/model"
	"github.com/classpoint/engage-backend/internal/repository"
)

type fakeQuizReader struct {
	quizzes map[uuid.UUID]*model.Quiz
}

func (f *fakeQuizReader) GetByID(_ context.Context, id uuid.UUID) (*model.Quiz, error) {
	q, ok := f.quizzes[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *q
	return &cp, nil
}

type fakeAnswerStore struct {
	nextSubmissionID int
	submissions      map[string]*model.QuizSubmission // "studentID/quizID"
	answers          map[int]*model.StudentAnswer     // by submission ID
}

func newFakeAnswerStore() *fakeAnswerStore {
	return &fakeAnswerStore{
		submissions: make(map[string]*model.QuizSubmission),
		answers:     make(map[int]*model.StudentAnswer),
	}
}

func (f *fakeAnswerStore) GetOrCreate(_ context.Context, studentID int, quizID uuid.UUID) (*model.QuizSubmission, error) {
	key := fmt.Sprintf("%d/%s", studentID, quizID)
	if s, ok := f.submissions[key]; ok {
		cp := *s
		return &cp, nil
	}
	f.nextSubmissionID++
	s := &model.QuizSubmission{ID: f.nextSubmissionID, StudentID: studentID, QuizID: quizID}
	f.submissions[key] = s
	cp := *s
	return &cp, nil
}

func (f *fakeAnswerStore) GetByStudentAndQuiz(_ context.Context, studentID int, quizID uuid.UUID) (*model.QuizSubmission, error) {
	s, ok := f.submissions[fmt.Sprintf("%d/%s", studentID, quizID)]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *s
	return &cp, nil
}

func (f *fakeAnswerStore) CreateAnswer(_ context.Context, a *model.StudentAnswer) error {
	if _, ok := f.answers[a.SubmissionID]; ok {
		return repository.ErrAnswerExists
	}
	a.ID = len(f.answers) + 1
	cp := *a
	f.answers[a.SubmissionID] = &cp
	return nil
}

func (f *fakeAnswerStore) GetAnswerBySubmission(_ context.Context, submissionID int) (*model.StudentAnswer, error) {
	a, ok := f.answers[submissionID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *a
	return &cp, nil
}

type answerFixture struct {
	svc     *AnswerService
	quizzes *fakeQuizReader
	store   *fakeAnswerStore
}

func newAnswerFixture() *answerFixture {
	quizzes := &fakeQuizReader{quizzes: make(map[uuid.UUID]*model.Quiz)}
	store := newFakeAnswerStore()
	svc := NewAnswerService(quizzes, store, nil, "", zerolog.Nop())
	svc.statFile = func(string) (int64, error) { return 1024, nil }
	return &answerFixture{svc: svc, quizzes: quizzes, store: store}
}

func (fx *answerFixture) addQuiz(quizType model.QuizType, props string) *model.Quiz {
	q := &model.Quiz{
		ID:         uuid.New(),
		Title:      "Quiz",
		QuizType:   quizType,
		Properties: json.RawMessage(props),
	}
	fx.quizzes.quizzes[q.ID] = q
	return q
}

func TestSubmitAnswerUnknownQuiz(t *testing.T) {
	fx := newAnswerFixture()
	req := &model.SubmitAnswerRequest{
		QuizID:     uuid.New(),
		AnswerData: json.RawMessage(`{"text":"hi"}`),
	}
	_, _, err := fx.svc.Submit(context.Background(), 1, req)
	if !errors.Is(err, ErrQuizNotFound) {
		t.Errorf("got %v, want ErrQuizNotFound", err)
	}
}

func TestSubmitAnswerRequiresPayload(t *testing.T) {
	fx := newAnswerFixture()
	quiz := fx.addQuiz(model.QuizTypeShortAnswer, `{}`)

	_, _, err := fx.svc.Submit(context.Background(), 1, &model.SubmitAnswerRequest{QuizID: quiz.ID})
	if !errors.Is(err, ErrAnswerRequired) {
		t.Errorf("got %v, want ErrAnswerRequired", err)
	}
}

func TestSubmitAnswerUnsupportedType(t *testing.T) {
	fx := newAnswerFixture()
	quiz := fx.addQuiz(model.QuizType("essay"), `{}`)

	req := &model.SubmitAnswerRequest{QuizID: quiz.ID, AnswerData: json.RawMessage(`{"text":"hi"}`)}
	_, _, err := fx.svc.Submit(context.Background(), 1, req)
	if !errors.Is(err, ErrUnsupportedQuizType) {
		t.Errorf("got %v, want ErrUnsupportedQuizType", err)
	}
}

func TestSubmitAnswerOncePerQuiz(t *testing.T) {
	fx := newAnswerFixture()
	quiz := fx.addQuiz(model.QuizTypeShortAnswer, `{}`)
	req := &model.SubmitAnswerRequest{QuizID: quiz.ID, AnswerData: json.RawMessage(`{"text":"photosynthesis"}`)}

	submission, answer, err := fx.svc.Submit(context.Background(), 7, req)
	if err != nil {
		t.Fatalf("first submit failed: %v", err)
	}
	if submission.StudentID != 7 || answer.SubmissionID != submission.ID {
		t.Errorf("submission/answer not linked: %+v %+v", submission, answer)
	}

	_, _, err = fx.svc.Submit(context.Background(), 7, req)
	if !errors.Is(err, repository.ErrAnswerExists) {
		t.Errorf("second submit: got %v, want ErrAnswerExists", err)
	}

	// A different student is unaffected.
	if _, _, err := fx.svc.Submit(context.Background(), 8, req); err != nil {
		t.Errorf("other student's submit failed: %v", err)
	}
}

func TestSubmitFileAnswer(t *testing.T) {
	fx := newAnswerFixture()
	quiz := fx.addQuiz(model.QuizTypeDrawing, `{"max_file_size_mb":1,"allowed_formats":["png"]}`)

	t.Run("accepted", func(t *testing.T) {
		req := &model.SubmitAnswerRequest{QuizID: quiz.ID, UploadedFile: "/uploads/sketch.png"}
		_, answer, err := fx.svc.Submit(context.Background(), 1, req)
		if err != nil {
			t.Fatalf("submit failed: %v", err)
		}
		if answer.UploadedFile == nil || *answer.UploadedFile != "/uploads/sketch.png" {
			t.Errorf("uploaded file not recorded: %+v", answer)
		}
	})

	t.Run("wrong format", func(t *testing.T) {
		req := &model.SubmitAnswerRequest{QuizID: quiz.ID, UploadedFile: "/uploads/sketch.gif"}
		_, _, err := fx.svc.Submit(context.Background(), 2, req)
		if !errors.Is(err, ErrAnswerRejected) {
			t.Errorf("got %v, want ErrAnswerRejected", err)
		}
	})

	t.Run("oversized", func(t *testing.T) {
		fx.svc.statFile = func(string) (int64, error) { return 2 << 20, nil }
		defer func() { fx.svc.statFile = func(string) (int64, error) { return 1024, nil } }()

		req := &model.SubmitAnswerRequest{QuizID: quiz.ID, UploadedFile: "/uploads/huge.png"}
		_, _, err := fx.svc.Submit(context.Background(), 3, req)
		if !errors.Is(err, ErrAnswerRejected) {
			t.Errorf("got %v, want ErrAnswerRejected", err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		fx.svc.statFile = func(string) (int64, error) { return 0, errors.New("no such file") }
		defer func() { fx.svc.statFile = func(string) (int64, error) { return 1024, nil } }()

		req := &model.SubmitAnswerRequest{QuizID: quiz.ID, UploadedFile: "/uploads/ghost.png"}
		_, _, err := fx.svc.Submit(context.Background(), 4, req)
		if !errors.Is(err, ErrAnswerRejected) {
			t.Errorf("got %v, want ErrAnswerRejected", err)
		}
	})
}

func TestGetAnswer(t *testing.T) {
	fx := newAnswerFixture()
	quiz := fx.addQuiz(model.QuizTypeShortAnswer, `{}`)

	// Before answering: nothing to report, and crucially nothing persisted.
	// The read must not seed a submission row that would surface in the
	// teacher's submission list or the dashboard counters.
	submission, answer, err := fx.svc.GetAnswer(context.Background(), 5, quiz.ID)
	if err != nil {
		t.Fatalf("GetAnswer failed: %v", err)
	}
	if submission != nil || answer != nil {
		t.Errorf("expected nothing before submit, got %+v / %+v", submission, answer)
	}
	if len(fx.store.submissions) != 0 {
		t.Errorf("read-only GetAnswer persisted %d submission(s)", len(fx.store.submissions))
	}

	req := &model.SubmitAnswerRequest{QuizID: quiz.ID, AnswerData: json.RawMessage(`{"text":"mitochondria"}`)}
	if _, _, err := fx.svc.Submit(context.Background(), 5, req); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	submission, answer, err = fx.svc.GetAnswer(context.Background(), 5, quiz.ID)
	if err != nil {
		t.Fatalf("GetAnswer failed: %v", err)
	}
	if submission == nil || answer == nil {
		t.Fatalf("expected submission and answer after submit, got %+v / %+v", submission, answer)
	}
}
