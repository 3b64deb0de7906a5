package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/classpoint/engage-backend/internal/config"
	"github.com/classpoint/engage-backend/internal/model"
	"github.com/classpoint/engage-backend/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Common poll errors.
var (
	ErrPollNotFound         = errors.New("poll not found")
	ErrPollClosed           = errors.New("poll is closed")
	ErrInvalidOption        = errors.New("option does not belong to this poll")
	ErrStudentNotRegistered = errors.New("student is not registered")
	ErrUnknownQuestionType  = errors.New("unrecognized question type")
	ErrInvalidOptionCount   = errors.New("option count must be positive for custom polls")
)

// codeRetryLimit caps regeneration attempts when the unique constraint
// reports a collision between the availability check and the insert.
const codeRetryLimit = 100

// PollStore is the persistence surface PollService needs for polls and
// their options.
type PollStore interface {
	GetByCode(ctx context.Context, code string) (*model.Poll, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	Create(ctx context.Context, p *model.Poll) error
	Close(ctx context.Context, code string) (bool, error)
	ListByName(ctx context.Context, name string, exact bool) ([]model.Poll, error)
	CreateOptions(ctx context.Context, pollID int, texts []string) error
	ListOptions(ctx context.Context, pollID int) ([]model.PollOption, error)
	CountOptions(ctx context.Context, pollID int) (int, error)
	GetOptionForPoll(ctx context.Context, optionID, pollID int) (*model.PollOption, error)
}

// VoteStore is the persistence surface for votes. Create must persist the
// vote and the option counter increment atomically and report duplicates
// via repository.ErrDuplicateVote.
type VoteStore interface {
	Create(ctx context.Context, v *model.PollVote) error
	VoterNamesByOption(ctx context.Context, pollID int) (map[int][]string, error)
}

// StudentDirectory resolves registered students at vote time.
type StudentDirectory interface {
	GetByIdentity(ctx context.Context, fullName, email string) (*model.Student, error)
}

// PollService handles quick-poll lifecycle, vote admission and result
// aggregation.
type PollService struct {
	polls     PollStore
	votes     VoteStore
	students  StudentDirectory
	rdb       *redis.Client
	detailTTL time.Duration
	log       zerolog.Logger
}

// NewPollService creates a new PollService. rdb may be nil, in which case the
// poll detail cache is disabled.
func NewPollService(polls PollStore, votes VoteStore, students StudentDirectory, rdb *redis.Client, detailTTL time.Duration, log zerolog.Logger) *PollService {
	return &PollService{
		polls:     polls,
		votes:     votes,
		students:  students,
		rdb:       rdb,
		detailTTL: detailTTL,
		log:       log.With().Str("component", "poll_service").Logger(),
	}
}

// ────────────────────────────────────────────────────────────────────────────
// Lifecycle
// ────────────────────────────────────────────────────────────────────────────

// Create builds a poll with a fresh unique 4-digit code and materializes its
// default options. creatorID is optional; anonymous creation is allowed.
func (s *PollService) Create(ctx context.Context, name string, questionType model.PollQuestionType, optionCount int, creatorID *int) (*model.Poll, []model.PollOption, error) {
	texts, err := defaultOptionTexts(questionType, optionCount)
	if err != nil {
		return nil, nil, err
	}

	poll := &model.Poll{
		Name:         name,
		CreatorID:    creatorID,
		QuestionType: questionType,
		OptionCount:  len(texts),
	}

	for attempt := 0; ; attempt++ {
		code, err := s.generateCode(ctx)
		if err != nil {
			return nil, nil, err
		}
		poll.Code = code

		err = s.polls.Create(ctx, poll)
		if err == nil {
			break
		}
		// The availability check and the insert are not atomic; the unique
		// constraint closes that window. Resample and try again.
		if errors.Is(err, repository.ErrPollCodeTaken) && attempt < codeRetryLimit {
			continue
		}
		return nil, nil, fmt.Errorf("create poll: %w", err)
	}

	// Materialize defaults only when the poll has none, so a repeated
	// initialization cannot double the option set.
	count, err := s.polls.CountOptions(ctx, poll.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("count options: %w", err)
	}
	if count == 0 {
		if err := s.polls.CreateOptions(ctx, poll.ID, texts); err != nil {
			return nil, nil, fmt.Errorf("create options: %w", err)
		}
	}

	options, err := s.polls.ListOptions(ctx, poll.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("list options: %w", err)
	}

	s.log.Info().Str("code", poll.Code).Str("type", string(questionType)).Msg("Poll created")
	return poll, options, nil
}

// Close deactivates a poll by code. Closing an already-closed poll is a
// no-op, not an error.
func (s *PollService) Close(ctx context.Context, code string) error {
	// Existence check first so an unknown code is reported as not found
	// rather than silently ignored.
	if _, err := s.Lookup(ctx, code); err != nil {
		return err
	}

	closedNow, err := s.polls.Close(ctx, code)
	if err != nil {
		return err
	}
	if closedNow {
		s.invalidateDetailCache(ctx, code)
		s.log.Info().Str("code", code).Msg("Poll closed")
	}
	return nil
}

// Lookup retrieves a poll by code.
func (s *PollService) Lookup(ctx context.Context, code string) (*model.Poll, error) {
	poll, err := s.polls.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPollNotFound
		}
		return nil, err
	}
	return poll, nil
}

// ────────────────────────────────────────────────────────────────────────────
// Vote submission gate
// ────────────────────────────────────────────────────────────────────────────

// SubmitVote admits at most one vote per (poll, student). Checks run in a
// fixed order: poll exists, poll active, option belongs to poll, student
// registered. Students are never created implicitly here; registration
// happens in the join flow. Duplicates are rejected by the database unique
// constraint and surfaced as repository.ErrDuplicateVote.
func (s *PollService) SubmitVote(ctx context.Context, pollCode string, optionID int, studentName, studentEmail string) error {
	poll, err := s.polls.GetByCode(ctx, pollCode)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrPollNotFound
		}
		return fmt.Errorf("resolve poll: %w", err)
	}

	if !poll.IsActive {
		return ErrPollClosed
	}

	option, err := s.polls.GetOptionForPoll(ctx, optionID, poll.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrInvalidOption
		}
		return fmt.Errorf("resolve option: %w", err)
	}

	student, err := s.students.GetByIdentity(ctx, studentName, studentEmail)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrStudentNotRegistered
		}
		return fmt.Errorf("resolve student: %w", err)
	}

	vote := &model.PollVote{
		PollID:    poll.ID,
		OptionID:  option.ID,
		StudentID: student.ID,
	}
	if err := s.votes.Create(ctx, vote); err != nil {
		// repository.ErrDuplicateVote passes through untouched.
		return err
	}

	s.log.Debug().Str("code", pollCode).Int("option_id", optionID).Int("student_id", student.ID).Msg("Vote recorded")
	return nil
}

// ────────────────────────────────────────────────────────────────────────────
// Result aggregation
// ────────────────────────────────────────────────────────────────────────────

// GetResults produces the full tally of a poll: every option in creation
// order with its counter and voter names in vote insertion order.
func (s *PollService) GetResults(ctx context.Context, code string) (*model.PollResults, error) {
	poll, err := s.polls.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPollNotFound
		}
		return nil, err
	}

	options, err := s.optionResults(ctx, poll.ID)
	if err != nil {
		return nil, err
	}

	return &model.PollResults{
		PollCode:     poll.Code,
		Name:         poll.Name,
		QuestionType: poll.QuestionType,
		Options:      options,
	}, nil
}

// GetResultsByName produces per-poll tallies for every poll matching the
// name. An empty match set yields an empty slice, not an error.
func (s *PollService) GetResultsByName(ctx context.Context, name string, exact bool) ([]model.NamedPollResults, error) {
	polls, err := s.polls.ListByName(ctx, name, exact)
	if err != nil {
		return nil, err
	}

	results := make([]model.NamedPollResults, 0, len(polls))
	for _, poll := range polls {
		options, err := s.optionResults(ctx, poll.ID)
		if err != nil {
			return nil, err
		}
		results = append(results, model.NamedPollResults{
			PollCode:  poll.Code,
			PollName:  poll.Name,
			CreatedAt: poll.CreatedAt,
			Results:   options,
		})
	}
	return results, nil
}

// GetPollDetails returns the student-facing view of an active poll, without
// vote counts. Inactive and unknown polls are both reported as not found.
func (s *PollService) GetPollDetails(ctx context.Context, code string) (*model.PollDetails, error) {
	if cached := s.cachedDetail(ctx, code); cached != nil {
		return cached, nil
	}

	poll, err := s.polls.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPollNotFound
		}
		return nil, err
	}
	if !poll.IsActive {
		return nil, ErrPollNotFound
	}

	options, err := s.polls.ListOptions(ctx, poll.ID)
	if err != nil {
		return nil, err
	}

	details := &model.PollDetails{
		PollCode:     poll.Code,
		Name:         poll.Name,
		QuestionType: poll.QuestionType,
		Options:      make([]model.PollOptionDetail, 0, len(options)),
	}
	for _, o := range options {
		details.Options = append(details.Options, model.PollOptionDetail{ID: o.ID, Text: o.Text})
	}

	s.cacheDetail(ctx, code, details)
	return details, nil
}

func (s *PollService) optionResults(ctx context.Context, pollID int) ([]model.OptionResult, error) {
	options, err := s.polls.ListOptions(ctx, pollID)
	if err != nil {
		return nil, fmt.Errorf("list options: %w", err)
	}
	voters, err := s.votes.VoterNamesByOption(ctx, pollID)
	if err != nil {
		return nil, fmt.Errorf("list voters: %w", err)
	}

	results := make([]model.OptionResult, 0, len(options))
	for _, o := range options {
		names := voters[o.ID]
		if names == nil {
			names = []string{}
		}
		results = append(results, model.OptionResult{
			Text:   o.Text,
			Count:  o.VoteCount,
			Voters: names,
		})
	}
	return results, nil
}

// ────────────────────────────────────────────────────────────────────────────
// Internals
// ────────────────────────────────────────────────────────────────────────────

// generateCode samples the 4-digit space until a free code is found. The
// space is large relative to live poll volume, so retries are O(1) in
// expectation. The final word still belongs to the unique constraint at
// insert time.
func (s *PollService) generateCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < codeRetryLimit; attempt++ {
		code := fmt.Sprintf("%04d", 1000+rand.Intn(9000))
		exists, err := s.polls.CodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("check code: %w", err)
		}
		if !exists {
			return code, nil
		}
	}
	return "", errors.New("poll code space exhausted")
}

// defaultOptionTexts maps a question type to the options materialized at
// creation. option_count only matters for custom polls.
func defaultOptionTexts(questionType model.PollQuestionType, optionCount int) ([]string, error) {
	switch questionType {
	case model.PollTypeTrueFalse:
		return []string{"True", "False"}, nil
	case model.PollTypeYesNoUnsure:
		return []string{"Yes", "No", "Unsure"}, nil
	case model.PollTypeCustom:
		if optionCount < 1 {
			return nil, ErrInvalidOptionCount
		}
		texts := make([]string, optionCount)
		for i := range texts {
			texts[i] = fmt.Sprintf("Option %d", i+1)
		}
		return texts, nil
	default:
		return nil, ErrUnknownQuestionType
	}
}

func (s *PollService) cachedDetail(ctx context.Context, code string) *model.PollDetails {
	if s.rdb == nil {
		return nil
	}
	raw, err := s.rdb.Get(ctx, config.CacheKey.PollDetailKey(code)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warn().Err(err).Str("code", code).Msg("Poll detail cache read failed")
		}
		return nil
	}
	details := &model.PollDetails{}
	if err := json.Unmarshal([]byte(raw), details); err != nil {
		return nil
	}
	return details
}

func (s *PollService) cacheDetail(ctx context.Context, code string, details *model.PollDetails) {
	if s.rdb == nil {
		return
	}
	raw, err := json.Marshal(details)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, config.CacheKey.PollDetailKey(code), raw, s.detailTTL).Err(); err != nil {
		s.log.Warn().Err(err).Str("code", code).Msg("Poll detail cache write failed")
	}
}

func (s *PollService) invalidateDetailCache(ctx context.Context, code string) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, config.CacheKey.PollDetailKey(code)).Err(); err != nil {
		s.log.Warn().Err(err).Str("code", code).Msg("Poll detail cache invalidation failed")
	}
}

var (
	_ PollStore        = (*repository.PollRepository)(nil)
	_ VoteStore        = (*repository.VoteRepository)(nil)
	_ StudentDirectory = (*repository.StudentRepository)(nil)
)
