package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/classpoint/engage-backend/internal/model"
)

// ErrAnswerRejected marks an answer that fails its quiz's type-specific
// rules. The wrapped message carries the concrete reason.
var ErrAnswerRejected = errors.New("answer rejected")

// answerInput is the normalized payload handed to a validator: decoded
// answer data and/or a previously uploaded file with its on-disk size.
type answerInput struct {
	Data     json.RawMessage
	FilePath string
	FileSize int64
}

// answerValidator checks an answer against the rules stored in the quiz's
// properties. Rules are read from the properties at validation time, never
// hardcoded per quiz.
type answerValidator func(props json.RawMessage, in *answerInput) error

// answerValidators routes each quiz type to its validator. Dispatch happens
// through this table only; an absent entry means the type is unsupported.
var answerValidators = map[model.QuizType]answerValidator{
	model.QuizTypeMultipleChoice: validateMultipleChoice,
	model.QuizTypeShortAnswer:    validateShortAnswer,
	model.QuizTypeWordCloud:      validateWordCloud,
	model.QuizTypeDrawing:        validateFileAnswer,
	model.QuizTypeImageUpload:    validateFileAnswer,
}

// Fallbacks applied when a quiz's properties omit a rule.
const (
	defaultShortAnswerMaxLength = 500
	defaultMaxWordsPerStudent   = 3
	defaultMaxFileSizeMB        = 5
)

var defaultAllowedFormats = []string{"png", "jpg", "jpeg"}

func rejectf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrAnswerRejected, fmt.Sprintf(format, args...))
}

func validateMultipleChoice(props json.RawMessage, in *answerInput) error {
	var rules model.MultipleChoiceProperties
	if err := json.Unmarshal(props, &rules); err != nil {
		return fmt.Errorf("decode quiz properties: %w", err)
	}

	var answer struct {
		SelectedChoices []int `json:"selected_choices"`
	}
	if err := json.Unmarshal(in.Data, &answer); err != nil {
		return rejectf("answer data must contain selected_choices")
	}
	if len(answer.SelectedChoices) == 0 {
		return rejectf("at least one choice must be selected")
	}
	if len(answer.SelectedChoices) > 1 && !rules.AllowMultipleChoices {
		return rejectf("this quiz allows only one choice")
	}

	seen := make(map[int]bool, len(answer.SelectedChoices))
	for _, idx := range answer.SelectedChoices {
		if idx < 0 || idx >= len(rules.Choices) {
			return rejectf("choice index %d is out of range", idx)
		}
		if seen[idx] {
			return rejectf("choice index %d selected twice", idx)
		}
		seen[idx] = true
	}
	return nil
}

func validateShortAnswer(props json.RawMessage, in *answerInput) error {
	var rules model.ShortAnswerProperties
	if err := json.Unmarshal(props, &rules); err != nil {
		return fmt.Errorf("decode quiz properties: %w", err)
	}
	maxLength := rules.MaxLength
	if maxLength <= 0 {
		maxLength = defaultShortAnswerMaxLength
	}

	var answer struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(in.Data, &answer); err != nil {
		return rejectf("answer data must contain text")
	}
	text := strings.TrimSpace(answer.Text)
	if text == "" {
		return rejectf("answer text must not be empty")
	}
	if len(text) > maxLength {
		return rejectf("answer text exceeds %d characters", maxLength)
	}
	return nil
}

func validateWordCloud(props json.RawMessage, in *answerInput) error {
	var rules model.WordCloudProperties
	if err := json.Unmarshal(props, &rules); err != nil {
		return fmt.Errorf("decode quiz properties: %w", err)
	}
	maxWords := rules.MaxWordsPerStudent
	if maxWords <= 0 {
		maxWords = defaultMaxWordsPerStudent
	}

	var answer struct {
		Words []string `json:"words"`
	}
	if err := json.Unmarshal(in.Data, &answer); err != nil {
		return rejectf("answer data must contain words")
	}
	if len(answer.Words) == 0 {
		return rejectf("at least one word is required")
	}
	if len(answer.Words) > maxWords {
		return rejectf("at most %d words are allowed", maxWords)
	}

	seen := make(map[string]bool, len(answer.Words))
	for _, word := range answer.Words {
		trimmed := strings.TrimSpace(word)
		if trimmed == "" {
			return rejectf("words must not be empty")
		}
		key := strings.ToLower(trimmed)
		if seen[key] && !rules.AllowDuplicates {
			return rejectf("duplicate word %q", trimmed)
		}
		seen[key] = true
	}
	return nil
}

// validateFileAnswer covers drawing and image_upload quizzes, which share
// file-shaped answers and rules.
func validateFileAnswer(props json.RawMessage, in *answerInput) error {
	var rules model.FileAnswerProperties
	if err := json.Unmarshal(props, &rules); err != nil {
		return fmt.Errorf("decode quiz properties: %w", err)
	}
	maxSizeMB := rules.MaxFileSizeMB
	if maxSizeMB <= 0 {
		maxSizeMB = defaultMaxFileSizeMB
	}
	allowed := rules.AllowedFormats
	if len(allowed) == 0 {
		allowed = defaultAllowedFormats
	}

	if in.FilePath == "" {
		return rejectf("this quiz requires an uploaded file")
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(in.FilePath)), ".")
	formatOK := false
	for _, f := range allowed {
		if strings.ToLower(f) == ext {
			formatOK = true
			break
		}
	}
	if !formatOK {
		return rejectf("format %q not allowed (allowed: %s)", ext, strings.Join(allowed, ", "))
	}

	if in.FileSize > int64(maxSizeMB)*1024*1024 {
		return rejectf("file exceeds %d MB", maxSizeMB)
	}
	return nil
}
