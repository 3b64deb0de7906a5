package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/classpoint/engage-backend/internal/config"
	"github.com/classpoint/engage-backend/internal/model"
)

const (
	GradeBatchSize    = 50
	GradeBatchTimeout = 2 * time.Second
	GradePollTimeout  = 1 * time.Second
)

// ScoringWorker grades answers of auto-gradable quizzes in the background.
// Jobs arrive on a Redis queue; scores are written back in batches.
type ScoringWorker struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
	log  zerolog.Logger
}

func NewScoringWorker(pool *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) *ScoringWorker {
	return &ScoringWorker{
		pool: pool,
		rdb:  rdb,
		log:  log.With().Str("component", "scoring_worker").Logger(),
	}
}

type gradeJob struct {
	SubmissionID int    `json:"submission_id"`
	QuizID       string `json:"quiz_id"`
}

type gradedScore struct {
	SubmissionID int
	Score        float64
}

// errDropJob marks grading failures that cannot succeed on a retry, such as
// a quiz deleted while its job was queued or malformed stored JSON. Jobs
// failing this way are dropped; requeueing them would spin the loop forever.
var errDropJob = errors.New("job cannot be graded")

func dropf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{errDropJob}, args...)...)
}

// ----------------------------------------------------------------
// Worker loop with batching
// ----------------------------------------------------------------

func (w *ScoringWorker) Start(ctx context.Context) {
	w.log.Info().Msg("ScoringWorker started")

	batch := make([]*gradedScore, 0, GradeBatchSize)
	lastFlush := time.Now()

	for {
		// Should flush?
		if len(batch) > 0 &&
			(len(batch) >= GradeBatchSize || time.Since(lastFlush) >= GradeBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, GradePollTimeout, config.WorkerKey.GradeAnswersQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var job gradeJob
			if err := json.Unmarshal([]byte(item[1]), &job); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			graded, err := w.grade(ctx, &job)
			if err != nil {
				if errors.Is(err, errDropJob) {
					w.log.Error().Err(err).
						Int("submission_id", job.SubmissionID).
						Msg("grading failed, dropping job")
					continue
				}
				// Transient failures (connectivity etc.) go back on the queue.
				w.log.Error().Err(err).
					Int("submission_id", job.SubmissionID).
					Msg("grading failed, requeueing")
				w.rdb.RPush(ctx, config.WorkerKey.GradeAnswersQueue, item[1])
				continue
			}
			if graded == nil {
				// Not an auto-gradable type or no answer data. Drop silently.
				continue
			}

			batch = append(batch, graded)
		}
	}
}

// grade loads the quiz rules and the submitted answer, then computes the
// score for auto-gradable types.
func (w *ScoringWorker) grade(ctx context.Context, job *gradeJob) (*gradedScore, error) {
	quizID, err := uuid.Parse(job.QuizID)
	if err != nil {
		return nil, dropf("parse quiz id %q: %v", job.QuizID, err)
	}

	var quizType model.QuizType
	var props json.RawMessage
	err = w.pool.QueryRow(ctx,
		`SELECT quiz_type, properties FROM quizzes WHERE id = $1`, quizID,
	).Scan(&quizType, &props)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dropf("quiz %s no longer exists", job.QuizID)
		}
		return nil, err
	}

	var answerData json.RawMessage
	err = w.pool.QueryRow(ctx,
		`SELECT answer_data FROM student_answers WHERE submission_id = $1`, job.SubmissionID,
	).Scan(&answerData)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dropf("submission %d has no answer", job.SubmissionID)
		}
		return nil, err
	}

	score, err := computeScore(quizType, props, answerData)
	if err != nil {
		return nil, err
	}
	if score == nil {
		return nil, nil
	}
	return &gradedScore{SubmissionID: job.SubmissionID, Score: *score}, nil
}

// computeScore applies the grading rules for auto-gradable quiz types. A nil
// score with a nil error means the answer is not auto-gradable. Malformed
// stored JSON is a dropf failure: it never parses better on retry.
func computeScore(quizType model.QuizType, props, answerData json.RawMessage) (*float64, error) {
	if len(answerData) == 0 {
		return nil, nil
	}

	var score float64
	var err error
	switch quizType {
	case model.QuizTypeMultipleChoice:
		score, err = gradeMultipleChoice(props, answerData)
	case model.QuizTypeShortAnswer:
		score, err = gradeShortAnswer(props, answerData)
	default:
		return nil, nil
	}
	if err != nil {
		return nil, dropf("%v", err)
	}
	return &score, nil
}

// ----------------------------------------------------------------
// Grading rules
// ----------------------------------------------------------------

// gradeMultipleChoice scores 0..100. Each correct selection earns an equal
// share; each wrong selection forfeits one share. The score never drops
// below zero.
func gradeMultipleChoice(props, answerData json.RawMessage) (float64, error) {
	var rules model.MultipleChoiceProperties
	if err := json.Unmarshal(props, &rules); err != nil {
		return 0, err
	}

	var answer struct {
		SelectedChoices []int `json:"selected_choices"`
	}
	if err := json.Unmarshal(answerData, &answer); err != nil {
		return 0, err
	}

	correct := make(map[int]bool)
	for i, choice := range rules.Choices {
		if choice.IsCorrect {
			correct[i] = true
		}
	}
	if len(correct) == 0 {
		return 0, nil
	}

	hits, misses := 0, 0
	for _, idx := range answer.SelectedChoices {
		if correct[idx] {
			hits++
		} else {
			misses++
		}
	}

	raw := float64(hits-misses) / float64(len(correct))
	if raw < 0 {
		raw = 0
	}
	return raw * 100, nil
}

// gradeShortAnswer scores 0..100. An exact match against the reference
// answer earns full marks; otherwise the score is the fraction of expected
// keywords found in the text. With no rules configured everything passes.
func gradeShortAnswer(props, answerData json.RawMessage) (float64, error) {
	var rules model.ShortAnswerProperties
	if err := json.Unmarshal(props, &rules); err != nil {
		return 0, err
	}

	var answer struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(answerData, &answer); err != nil {
		return 0, err
	}

	text := strings.TrimSpace(answer.Text)
	reference := strings.TrimSpace(rules.CorrectAnswer)
	if !rules.CaseSensitive {
		text = strings.ToLower(text)
		reference = strings.ToLower(reference)
	}

	if reference != "" && text == reference {
		return 100, nil
	}

	if len(rules.ExpectedKeywords) == 0 {
		if reference == "" {
			return 100, nil
		}
		return 0, nil
	}

	found := 0
	for _, keyword := range rules.ExpectedKeywords {
		keyword = strings.TrimSpace(keyword)
		if !rules.CaseSensitive {
			keyword = strings.ToLower(keyword)
		}
		if keyword != "" && strings.Contains(text, keyword) {
			found++
		}
	}
	return float64(found) / float64(len(rules.ExpectedKeywords)) * 100, nil
}

// ----------------------------------------------------------------
// Batch update wrapper
// ----------------------------------------------------------------

func (w *ScoringWorker) flushSafe(ctx context.Context, batch []*gradedScore) {
	if len(batch) == 0 {
		return
	}

	if err := w.bulkUpdateScores(ctx, batch); err != nil {
		w.log.Warn().Err(err).Msg("bulk score update failed, using fallback")

		for _, g := range batch {
			if err := w.persistSingle(ctx, g); err != nil {
				w.log.Error().Err(err).
					Int("submission_id", g.SubmissionID).
					Msg("persistSingle failed, score lost")
			}
		}
	}
}

// ----------------------------------------------------------------
// BULK PostgreSQL UPDATE using UNNEST + alias
// ----------------------------------------------------------------

func (w *ScoringWorker) bulkUpdateScores(ctx context.Context, batch []*gradedScore) error {
	n := len(batch)

	submissionIDs := make([]int, 0, n)
	scores := make([]float64, 0, n)
	for _, g := range batch {
		submissionIDs = append(submissionIDs, g.SubmissionID)
		scores = append(scores, g.Score)
	}

	query := `
		UPDATE quiz_submissions AS s
		SET score = t.score
		FROM (
			SELECT u.submission_id, u.score
			FROM UNNEST(
				$1::int[],
				$2::float8[]
			) AS u (submission_id, score)
		) AS t
		WHERE s.id = t.submission_id
	`

	_, err := w.pool.Exec(ctx, query, submissionIDs, scores)
	return err
}

// ----------------------------------------------------------------
// FALLBACK single update
// ----------------------------------------------------------------

func (w *ScoringWorker) persistSingle(ctx context.Context, g *gradedScore) error {
	_, err := w.pool.Exec(ctx,
		`UPDATE quiz_submissions SET score = $1 WHERE id = $2`,
		g.Score, g.SubmissionID,
	)
	return err
}
