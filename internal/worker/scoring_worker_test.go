package worker

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/classpoint/engage-backend/internal/model"
)

func TestGradeMultipleChoice(t *testing.T) {
	oneCorrect := `{"choices":[{"text":"A"},{"text":"B","is_correct":true},{"text":"C"}]}`
	twoCorrect := `{"choices":[{"text":"A","is_correct":true},{"text":"B","is_correct":true},{"text":"C"}],"allow_multiple_choices":true}`
	noCorrect := `{"choices":[{"text":"A"},{"text":"B"}]}`

	tests := []struct {
		name  string
		props string
		data  string
		want  float64
	}{
		{"exact match", oneCorrect, `{"selected_choices":[1]}`, 100},
		{"wrong choice", oneCorrect, `{"selected_choices":[0]}`, 0},
		{"half of the correct set", twoCorrect, `{"selected_choices":[0]}`, 50},
		{"full correct set", twoCorrect, `{"selected_choices":[0,1]}`, 100},
		{"correct plus wrong cancels out", twoCorrect, `{"selected_choices":[0,2]}`, 0},
		{"never below zero", oneCorrect, `{"selected_choices":[0,2]}`, 0},
		{"no correct choices configured", noCorrect, `{"selected_choices":[0]}`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := gradeMultipleChoice(json.RawMessage(tt.props), json.RawMessage(tt.data))
			if err != nil {
				t.Fatalf("grade failed: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("score = %v, want %v", got, tt.want)
			}
		})
	}
}

// A job whose stored data can never grade must be classified as droppable,
// not retried. Requeueing it would pin the worker in a tight loop popping
// and re-pushing the same payload.
func TestComputeScoreClassifiesFailures(t *testing.T) {
	valid := `{"choices":[{"text":"A","is_correct":true}]}`

	t.Run("malformed properties are dropped", func(t *testing.T) {
		_, err := computeScore(model.QuizTypeMultipleChoice, json.RawMessage(`{"choices":"nope"}`), json.RawMessage(`{"selected_choices":[0]}`))
		if !errors.Is(err, errDropJob) {
			t.Fatalf("expected errDropJob, got %v", err)
		}
	})

	t.Run("malformed answer data is dropped", func(t *testing.T) {
		_, err := computeScore(model.QuizTypeShortAnswer, json.RawMessage(`{}`), json.RawMessage(`{"text":42}`))
		if !errors.Is(err, errDropJob) {
			t.Fatalf("expected errDropJob, got %v", err)
		}
	})

	t.Run("non-gradable type is skipped silently", func(t *testing.T) {
		score, err := computeScore(model.QuizTypeWordCloud, json.RawMessage(`{}`), json.RawMessage(`{"words":["a"]}`))
		if err != nil || score != nil {
			t.Fatalf("expected nil score and nil error, got %v, %v", score, err)
		}
	})

	t.Run("empty answer data is skipped silently", func(t *testing.T) {
		score, err := computeScore(model.QuizTypeMultipleChoice, json.RawMessage(valid), nil)
		if err != nil || score != nil {
			t.Fatalf("expected nil score and nil error, got %v, %v", score, err)
		}
	})

	t.Run("gradable answer yields a score", func(t *testing.T) {
		score, err := computeScore(model.QuizTypeMultipleChoice, json.RawMessage(valid), json.RawMessage(`{"selected_choices":[0]}`))
		if err != nil {
			t.Fatalf("grade failed: %v", err)
		}
		if score == nil || math.Abs(*score-100) > 1e-9 {
			t.Errorf("score = %v, want 100", score)
		}
	})
}

func TestGradeShortAnswer(t *testing.T) {
	tests := []struct {
		name  string
		props string
		data  string
		want  float64
	}{
		{"exact match", `{"correct_answer":"Paris"}`, `{"text":"paris"}`, 100},
		{"exact match with surrounding space", `{"correct_answer":"Paris"}`, `{"text":"  Paris  "}`, 100},
		{"case sensitive mismatch", `{"correct_answer":"Paris","case_sensitive":true}`, `{"text":"paris"}`, 0},
		{"wrong answer no keywords", `{"correct_answer":"Paris"}`, `{"text":"London"}`, 0},
		{"all keywords found", `{"expected_keywords":["sun","water"]}`, `{"text":"plants need sun and water"}`, 100},
		{"half the keywords found", `{"expected_keywords":["sun","water"]}`, `{"text":"plants need sun"}`, 50},
		{"keywords as fallback after mismatch", `{"correct_answer":"photosynthesis","expected_keywords":["light","chlorophyll"]}`, `{"text":"light hits chlorophyll"}`, 100},
		{"no rules configured", `{}`, `{"text":"anything"}`, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := gradeShortAnswer(json.RawMessage(tt.props), json.RawMessage(tt.data))
			if err != nil {
				t.Fatalf("grade failed: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("score = %v, want %v", got, tt.want)
			}
		})
	}
}
