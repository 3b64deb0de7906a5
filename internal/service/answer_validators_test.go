package service

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/classpoint/engage-backend/internal/model"
)

func runValidator(t *testing.T, quizType model.QuizType, props, data string, in *answerInput) error {
	t.Helper()
	validate, ok := answerValidators[quizType]
	if !ok {
		t.Fatalf("no validator registered for %s", quizType)
	}
	if in == nil {
		in = &answerInput{}
	}
	if data != "" {
		in.Data = json.RawMessage(data)
	}
	return validate(json.RawMessage(props), in)
}

func TestValidateMultipleChoice(t *testing.T) {
	props := `{"choices":[{"text":"A"},{"text":"B","is_correct":true},{"text":"C"}]}`
	multiProps := `{"choices":[{"text":"A"},{"text":"B"}],"allow_multiple_choices":true}`

	tests := []struct {
		name    string
		props   string
		data    string
		wantErr bool
	}{
		{"single selection ok", props, `{"selected_choices":[1]}`, false},
		{"empty selection", props, `{"selected_choices":[]}`, true},
		{"index out of range", props, `{"selected_choices":[3]}`, true},
		{"negative index", props, `{"selected_choices":[-1]}`, true},
		{"multi select without permission", props, `{"selected_choices":[0,1]}`, true},
		{"multi select allowed", multiProps, `{"selected_choices":[0,1]}`, false},
		{"duplicate selection", multiProps, `{"selected_choices":[0,0]}`, true},
		{"malformed data", props, `"just a string"`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := runValidator(t, model.QuizTypeMultipleChoice, tt.props, tt.data, nil)
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrAnswerRejected) {
				t.Errorf("rejection must wrap ErrAnswerRejected, got %v", err)
			}
		})
	}
}

func TestValidateShortAnswer(t *testing.T) {
	tests := []struct {
		name    string
		props   string
		data    string
		wantErr bool
	}{
		{"plain text ok", `{}`, `{"text":"chlorophyll"}`, false},
		{"blank text", `{}`, `{"text":"   "}`, true},
		{"within custom limit", `{"max_length":10}`, `{"text":"short"}`, false},
		{"over custom limit", `{"max_length":10}`, `{"text":"far too long an answer"}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := runValidator(t, model.QuizTypeShortAnswer, tt.props, tt.data, nil)
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	t.Run("default limit applies", func(t *testing.T) {
		long := make([]byte, defaultShortAnswerMaxLength+1)
		for i := range long {
			long[i] = 'a'
		}
		data, _ := json.Marshal(map[string]string{"text": string(long)})
		if err := runValidator(t, model.QuizTypeShortAnswer, `{}`, string(data), nil); err == nil {
			t.Error("text over the default limit must be rejected")
		}
	})
}

func TestValidateWordCloud(t *testing.T) {
	tests := []struct {
		name    string
		props   string
		data    string
		wantErr bool
	}{
		{"single word ok", `{}`, `{"words":["energy"]}`, false},
		{"no words", `{}`, `{"words":[]}`, true},
		{"at default cap", `{}`, `{"words":["a","b","c"]}`, false},
		{"over default cap", `{}`, `{"words":["a","b","c","d"]}`, true},
		{"custom cap", `{"max_words_per_student":1}`, `{"words":["a","b"]}`, true},
		{"case-insensitive duplicate", `{}`, `{"words":["Sun","sun"]}`, true},
		{"duplicates allowed", `{"allow_duplicates":true}`, `{"words":["sun","sun"]}`, false},
		{"blank word", `{}`, `{"words":["  "]}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := runValidator(t, model.QuizTypeWordCloud, tt.props, tt.data, nil)
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateFileAnswer(t *testing.T) {
	const mb = 1024 * 1024

	tests := []struct {
		name    string
		props   string
		in      answerInput
		wantErr bool
	}{
		{"default formats accept png", `{}`, answerInput{FilePath: "/uploads/a.png", FileSize: mb}, false},
		{"default formats accept jpeg", `{}`, answerInput{FilePath: "/uploads/a.JPEG", FileSize: mb}, false},
		{"no file", `{}`, answerInput{}, true},
		{"format outside default list", `{}`, answerInput{FilePath: "/uploads/a.webp", FileSize: mb}, true},
		{"custom format list", `{"allowed_formats":["webp"]}`, answerInput{FilePath: "/uploads/a.webp", FileSize: mb}, false},
		{"at default size cap", `{}`, answerInput{FilePath: "/uploads/a.png", FileSize: defaultMaxFileSizeMB * mb}, false},
		{"over default size cap", `{}`, answerInput{FilePath: "/uploads/a.png", FileSize: defaultMaxFileSizeMB*mb + 1}, true},
		{"custom size cap", `{"max_file_size_mb":1}`, answerInput{FilePath: "/uploads/a.png", FileSize: 2 * mb}, true},
	}

	// drawing and image_upload share the same validator and rules.
	for _, quizType := range []model.QuizType{model.QuizTypeDrawing, model.QuizTypeImageUpload} {
		for _, tt := range tests {
			t.Run(string(quizType)+"/"+tt.name, func(t *testing.T) {
				in := tt.in
				err := runValidator(t, quizType, tt.props, "", &in)
				if (err != nil) != tt.wantErr {
					t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
				}
			})
		}
	}
}
