package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// QuizType enumerates the supported quiz answer formats.
type QuizType string

const (
	QuizTypeMultipleChoice QuizType = "multiple_choice"
	QuizTypeShortAnswer    QuizType = "short_answer"
	QuizTypeWordCloud      QuizType = "word_cloud"
	QuizTypeDrawing        QuizType = "drawing"
	QuizTypeImageUpload    QuizType = "image_upload"
)

// Quiz is a question definition. Properties is free-form and interpreted per
// quiz type at answer-validation and grading time. Quizzes sharing a
// MultiQuestionID form a multi-quiz presented in QuestionOrder.
type Quiz struct {
	ID                    uuid.UUID       `json:"id"`
	ClassID               int             `json:"class_id"`
	Title                 string          `json:"title"`
	QuizType              QuizType        `json:"quiz_type"`
	Properties            json.RawMessage `json:"properties"`
	MultiQuestionID       *uuid.UUID      `json:"multi_question_id,omitempty"`
	QuestionOrder         int             `json:"question_order"`
	ShowTimer             bool            `json:"show_timer"`
	AutoCloseAfterSeconds *int            `json:"auto_close_after_seconds,omitempty"`
	CreatedAt             time.Time       `json:"created_at"`
}

// QuizSubmission is one student's attempt at one quiz. At most one exists
// per (student, quiz), enforced by a database unique constraint.
type QuizSubmission struct {
	ID          int       `json:"id"`
	StudentID   int       `json:"student_id"`
	QuizID      uuid.UUID `json:"quiz_id"`
	SubmittedAt time.Time `json:"submitted_at"`
	Score       *float64  `json:"score,omitempty"`
	IsLate      bool      `json:"is_late"`
}

// StudentAnswer holds the answer attached to a submission (one-to-one).
// Either AnswerData or UploadedFile must be present.
type StudentAnswer struct {
	ID           int             `json:"id"`
	SubmissionID int             `json:"submission_id"`
	AnswerData   json.RawMessage `json:"answer_data,omitempty"`
	UploadedFile *string         `json:"uploaded_file,omitempty"`
	SubmittedAt  time.Time       `json:"submitted_at"`
}

// CreateQuizRequest is the payload for creating a quiz.
type CreateQuizRequest struct {
	ClassID               int             `json:"class_id" binding:"required"`
	Title                 string          `json:"title" binding:"required,min=1,max=255"`
	QuizType              string          `json:"quiz_type" binding:"required,oneof=multiple_choice short_answer word_cloud drawing image_upload"`
	Properties            json.RawMessage `json:"properties" binding:"omitempty"`
	MultiQuestionID       *uuid.UUID      `json:"multi_question_id" binding:"omitempty"`
	QuestionOrder         int             `json:"question_order" binding:"min=0"`
	ShowTimer             bool            `json:"show_timer"`
	AutoCloseAfterSeconds *int            `json:"auto_close_after_seconds" binding:"omitempty,min=1"`
}

// UpdateQuizRequest is the payload for updating a quiz.
type UpdateQuizRequest struct {
	Title                 string          `json:"title" binding:"omitempty,min=1,max=255"`
	Properties            json.RawMessage `json:"properties" binding:"omitempty"`
	QuestionOrder         *int            `json:"question_order" binding:"omitempty,min=0"`
	ShowTimer             *bool           `json:"show_timer" binding:"omitempty"`
	AutoCloseAfterSeconds *int            `json:"auto_close_after_seconds" binding:"omitempty,min=1"`
}

// SubmitAnswerRequest is the payload students send for a quiz answer.
// UploadedFile references a path previously returned by the upload endpoint.
type SubmitAnswerRequest struct {
	QuizID       uuid.UUID       `json:"quiz_id" binding:"required"`
	AnswerData   json.RawMessage `json:"answer_data" binding:"omitempty"`
	UploadedFile string          `json:"uploaded_file" binding:"omitempty,max=500"`
}

// ────────────────────────────────────────────────────────────────────────────
// Typed views of Quiz.Properties, decoded per quiz type at validation and
// grading time. Unknown JSON keys are ignored so teachers can store extra
// presentation hints alongside the enforced rules.
// ────────────────────────────────────────────────────────────────────────────

// Choice is one selectable entry of a multiple-choice quiz.
type Choice struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

// MultipleChoiceProperties are the enforced rules of a multiple_choice quiz.
type MultipleChoiceProperties struct {
	Choices              []Choice `json:"choices"`
	AllowMultipleChoices bool     `json:"allow_multiple_choices"`
}

// ShortAnswerProperties are the enforced rules of a short_answer quiz.
type ShortAnswerProperties struct {
	CorrectAnswer    string   `json:"correct_answer"`
	ExpectedKeywords []string `json:"expected_keywords"`
	CaseSensitive    bool     `json:"case_sensitive"`
	MaxLength        int      `json:"max_length"`
}

// WordCloudProperties are the enforced rules of a word_cloud quiz.
type WordCloudProperties struct {
	MaxWordsPerStudent int  `json:"max_words_per_student"`
	AllowDuplicates    bool `json:"allow_duplicates"`
}

// FileAnswerProperties are the enforced rules of drawing and image_upload
// quizzes.
type FileAnswerProperties struct {
	CanvasWidth    int      `json:"canvas_width"`
	CanvasHeight   int      `json:"canvas_height"`
	MaxFileSizeMB  int      `json:"max_file_size_mb"`
	AllowedFormats []string `json:"allowed_formats"`
}
