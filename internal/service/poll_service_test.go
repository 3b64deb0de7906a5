package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/classpoint/engage-backend/internal/model"
	"github.com/classpoint/engage-backend/internal/repository"
)

// ────────────────────────────────────────────────────────────────────────────
// In-memory fakes
// ────────────────────────────────────────────────────────────────────────────

type fakePollStore struct {
	mu           sync.Mutex
	nextPollID   int
	nextOptionID int
	polls        map[string]*model.Poll
	options      map[int][]model.PollOption

	// createFailures makes the next N Create calls report a code collision.
	createFailures int
}

func newFakePollStore() *fakePollStore {
	return &fakePollStore{
		polls:   make(map[string]*model.Poll),
		options: make(map[int][]model.PollOption),
	}
}

func (f *fakePollStore) GetByCode(_ context.Context, code string) (*model.Poll, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.polls[code]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *p
	return &cp, nil
}

func (f *fakePollStore) CodeExists(_ context.Context, code string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.polls[code]
	return ok, nil
}

func (f *fakePollStore) Create(_ context.Context, p *model.Poll) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createFailures > 0 {
		f.createFailures--
		return repository.ErrPollCodeTaken
	}
	if _, ok := f.polls[p.Code]; ok {
		return repository.ErrPollCodeTaken
	}
	f.nextPollID++
	p.ID = f.nextPollID
	p.IsActive = true
	cp := *p
	f.polls[p.Code] = &cp
	return nil
}

func (f *fakePollStore) Close(_ context.Context, code string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.polls[code]
	if !ok || !p.IsActive {
		return false, nil
	}
	p.IsActive = false
	return true, nil
}

func (f *fakePollStore) ListByName(_ context.Context, name string, exact bool) ([]model.Poll, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Poll
	for _, p := range f.polls {
		if exact && p.Name == name {
			out = append(out, *p)
		}
		if !exact && strings.Contains(strings.ToLower(p.Name), strings.ToLower(name)) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePollStore) CreateOptions(_ context.Context, pollID int, texts []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, text := range texts {
		f.nextOptionID++
		f.options[pollID] = append(f.options[pollID], model.PollOption{
			ID: f.nextOptionID, PollID: pollID, Text: text,
		})
	}
	return nil
}

func (f *fakePollStore) ListOptions(_ context.Context, pollID int) ([]model.PollOption, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.PollOption(nil), f.options[pollID]...), nil
}

func (f *fakePollStore) CountOptions(_ context.Context, pollID int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.options[pollID]), nil
}

func (f *fakePollStore) GetOptionForPoll(_ context.Context, optionID, pollID int) (*model.PollOption, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.options[pollID] {
		if o.ID == optionID {
			cp := o
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakePollStore) incrementCount(pollID, optionID int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	opts := f.options[pollID]
	for i := range opts {
		if opts[i].ID == optionID {
			opts[i].VoteCount++
			return
		}
	}
}

type fakeVote struct {
	optionID    int
	studentName string
}

type fakeVoteStore struct {
	mu    sync.Mutex
	polls *fakePollStore
	names map[int]string       // studentID -> name
	cast  map[string]*fakeVote // "pollID/studentID" -> vote
	order []string             // insertion order of cast keys
}

func newFakeVoteStore(polls *fakePollStore) *fakeVoteStore {
	return &fakeVoteStore{
		polls: polls,
		names: make(map[int]string),
		cast:  make(map[string]*fakeVote),
	}
}

func (f *fakeVoteStore) Create(_ context.Context, v *model.PollVote) error {
	f.mu.Lock()
	key := fmt.Sprintf("%d/%d", v.PollID, v.StudentID)
	if _, ok := f.cast[key]; ok {
		f.mu.Unlock()
		return repository.ErrDuplicateVote
	}
	f.cast[key] = &fakeVote{optionID: v.OptionID, studentName: f.names[v.StudentID]}
	f.order = append(f.order, key)
	f.mu.Unlock()

	f.polls.incrementCount(v.PollID, v.OptionID)
	return nil
}

func (f *fakeVoteStore) VoterNamesByOption(_ context.Context, pollID int) (map[int][]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[int][]string)
	prefix := fmt.Sprintf("%d/", pollID)
	for _, key := range f.order {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		v := f.cast[key]
		out[v.optionID] = append(out[v.optionID], v.studentName)
	}
	return out, nil
}

type fakeStudentDirectory struct {
	mu       sync.Mutex
	nextID   int
	students map[string]*model.Student // "name|email" lowercased
}

func newFakeStudentDirectory() *fakeStudentDirectory {
	return &fakeStudentDirectory{students: make(map[string]*model.Student)}
}

func (f *fakeStudentDirectory) register(name, email string) *model.Student {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	s := &model.Student{ID: f.nextID, FullName: name, Email: &email}
	f.students[strings.ToLower(name)+"|"+strings.ToLower(email)] = s
	return s
}

func (f *fakeStudentDirectory) GetByIdentity(_ context.Context, name, email string) (*model.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.students[strings.ToLower(name)+"|"+strings.ToLower(email)]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *s
	return &cp, nil
}

type pollFixture struct {
	svc      *PollService
	polls    *fakePollStore
	votes    *fakeVoteStore
	students *fakeStudentDirectory
}

func newPollFixture() *pollFixture {
	polls := newFakePollStore()
	votes := newFakeVoteStore(polls)
	students := newFakeStudentDirectory()
	return &pollFixture{
		svc:      NewPollService(polls, votes, students, nil, 0, zerolog.Nop()),
		polls:    polls,
		votes:    votes,
		students: students,
	}
}

func (fx *pollFixture) registerVoter(name, email string) *model.Student {
	s := fx.students.register(name, email)
	fx.votes.names[s.ID] = s.FullName
	return s
}

// ────────────────────────────────────────────────────────────────────────────
// Creation
// ────────────────────────────────────────────────────────────────────────────

func TestCreateDefaultOptions(t *testing.T) {
	tests := []struct {
		name         string
		questionType model.PollQuestionType
		optionCount  int
		want         []string
	}{
		{"true_false", model.PollTypeTrueFalse, 0, []string{"True", "False"}},
		{"yes_no_unsure", model.PollTypeYesNoUnsure, 0, []string{"Yes", "No", "Unsure"}},
		{"custom", model.PollTypeCustom, 4, []string{"Option 1", "Option 2", "Option 3", "Option 4"}},
		{"option count ignored for fixed types", model.PollTypeTrueFalse, 7, []string{"True", "False"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newPollFixture()
			poll, options, err := fx.svc.Create(context.Background(), "Check-in", tt.questionType, tt.optionCount, nil)
			if err != nil {
				t.Fatalf("Create failed: %v", err)
			}
			if poll.OptionCount != len(tt.want) {
				t.Errorf("OptionCount = %d, want %d", poll.OptionCount, len(tt.want))
			}
			if len(options) != len(tt.want) {
				t.Fatalf("got %d options, want %d", len(options), len(tt.want))
			}
			for i, o := range options {
				if o.Text != tt.want[i] {
					t.Errorf("option %d = %q, want %q", i, o.Text, tt.want[i])
				}
			}
		})
	}
}

func TestCreateRejectsBadInput(t *testing.T) {
	fx := newPollFixture()

	_, _, err := fx.svc.Create(context.Background(), "Bad", model.PollTypeCustom, 0, nil)
	if !errors.Is(err, ErrInvalidOptionCount) {
		t.Errorf("custom with zero options: got %v, want ErrInvalidOptionCount", err)
	}

	_, _, err = fx.svc.Create(context.Background(), "Bad", model.PollQuestionType("ranked"), 0, nil)
	if !errors.Is(err, ErrUnknownQuestionType) {
		t.Errorf("unknown type: got %v, want ErrUnknownQuestionType", err)
	}
}

func TestCreateCodeShape(t *testing.T) {
	fx := newPollFixture()
	seen := make(map[string]bool)

	for i := 0; i < 25; i++ {
		poll, _, err := fx.svc.Create(context.Background(), "Poll", model.PollTypeTrueFalse, 0, nil)
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if len(poll.Code) != 4 || poll.Code[0] == '0' {
			t.Fatalf("code %q is not a 4-digit code without leading zero", poll.Code)
		}
		if seen[poll.Code] {
			t.Fatalf("code %q issued twice", poll.Code)
		}
		seen[poll.Code] = true
	}
}

func TestCreateRetriesOnCodeCollision(t *testing.T) {
	fx := newPollFixture()
	fx.polls.createFailures = 3

	poll, _, err := fx.svc.Create(context.Background(), "Contended", model.PollTypeTrueFalse, 0, nil)
	if err != nil {
		t.Fatalf("Create should survive transient code collisions: %v", err)
	}
	if poll.Code == "" {
		t.Fatal("poll has no code after retries")
	}
}

// ────────────────────────────────────────────────────────────────────────────
// Vote gate
// ────────────────────────────────────────────────────────────────────────────

func TestSubmitVoteGate(t *testing.T) {
	ctx := context.Background()
	fx := newPollFixture()
	fx.registerVoter("Ada Lovelace", "ada@example.com")

	poll, options, err := fx.svc.Create(ctx, "Gate", model.PollTypeTrueFalse, 0, nil)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	t.Run("unknown poll", func(t *testing.T) {
		err := fx.svc.SubmitVote(ctx, "0000", options[0].ID, "Ada Lovelace", "ada@example.com")
		if !errors.Is(err, ErrPollNotFound) {
			t.Errorf("got %v, want ErrPollNotFound", err)
		}
	})

	t.Run("foreign option", func(t *testing.T) {
		err := fx.svc.SubmitVote(ctx, poll.Code, 9999, "Ada Lovelace", "ada@example.com")
		if !errors.Is(err, ErrInvalidOption) {
			t.Errorf("got %v, want ErrInvalidOption", err)
		}
	})

	t.Run("unregistered student", func(t *testing.T) {
		err := fx.svc.SubmitVote(ctx, poll.Code, options[0].ID, "Nobody", "nobody@example.com")
		if !errors.Is(err, ErrStudentNotRegistered) {
			t.Errorf("got %v, want ErrStudentNotRegistered", err)
		}
	})

	t.Run("first vote accepted", func(t *testing.T) {
		if err := fx.svc.SubmitVote(ctx, poll.Code, options[0].ID, "Ada Lovelace", "ada@example.com"); err != nil {
			t.Fatalf("vote rejected: %v", err)
		}
	})

	t.Run("second vote rejected", func(t *testing.T) {
		err := fx.svc.SubmitVote(ctx, poll.Code, options[1].ID, "Ada Lovelace", "ada@example.com")
		if !errors.Is(err, repository.ErrDuplicateVote) {
			t.Errorf("got %v, want ErrDuplicateVote", err)
		}
	})

	t.Run("closed poll", func(t *testing.T) {
		if err := fx.svc.Close(ctx, poll.Code); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
		fx.registerVoter("Grace Hopper", "grace@example.com")
		err := fx.svc.SubmitVote(ctx, poll.Code, options[0].ID, "Grace Hopper", "grace@example.com")
		if !errors.Is(err, ErrPollClosed) {
			t.Errorf("got %v, want ErrPollClosed", err)
		}
	})
}

func TestSubmitVoteConcurrentDuplicates(t *testing.T) {
	ctx := context.Background()
	fx := newPollFixture()
	fx.registerVoter("Ada Lovelace", "ada@example.com")

	poll, options, err := fx.svc.Create(ctx, "Race", model.PollTypeTrueFalse, 0, nil)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	const attempts = 32
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = fx.svc.SubmitVote(ctx, poll.Code, options[0].ID, "Ada Lovelace", "ada@example.com")
		}(i)
	}
	wg.Wait()

	accepted := 0
	for _, err := range errs {
		if err == nil {
			accepted++
		} else if !errors.Is(err, repository.ErrDuplicateVote) {
			t.Errorf("unexpected error: %v", err)
		}
	}
	if accepted != 1 {
		t.Errorf("%d votes accepted, want exactly 1", accepted)
	}

	results, err := fx.svc.GetResults(ctx, poll.Code)
	if err != nil {
		t.Fatalf("GetResults failed: %v", err)
	}
	if results.Options[0].Count != 1 {
		t.Errorf("option count = %d, want 1", results.Options[0].Count)
	}
}

// ────────────────────────────────────────────────────────────────────────────
// Results
// ────────────────────────────────────────────────────────────────────────────

func TestGetResultsAggregation(t *testing.T) {
	ctx := context.Background()
	fx := newPollFixture()

	poll, options, err := fx.svc.Create(ctx, "Tally", model.PollTypeYesNoUnsure, 0, nil)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	voters := []struct {
		name   string
		option int
	}{
		{"Ada Lovelace", 0},
		{"Grace Hopper", 0},
		{"Alan Turing", 1},
	}
	for _, v := range voters {
		email := strings.ToLower(strings.ReplaceAll(v.name, " ", ".")) + "@example.com"
		fx.registerVoter(v.name, email)
		if err := fx.svc.SubmitVote(ctx, poll.Code, options[v.option].ID, v.name, email); err != nil {
			t.Fatalf("vote for %s failed: %v", v.name, err)
		}
	}

	results, err := fx.svc.GetResults(ctx, poll.Code)
	if err != nil {
		t.Fatalf("GetResults failed: %v", err)
	}

	if len(results.Options) != 3 {
		t.Fatalf("got %d options, want 3", len(results.Options))
	}
	if results.Options[0].Count != 2 || results.Options[1].Count != 1 || results.Options[2].Count != 0 {
		t.Errorf("counts = %d/%d/%d, want 2/1/0",
			results.Options[0].Count, results.Options[1].Count, results.Options[2].Count)
	}
	if got := results.Options[0].Voters; len(got) != 2 || got[0] != "Ada Lovelace" || got[1] != "Grace Hopper" {
		t.Errorf("voters for option 0 = %v, want insertion order [Ada Lovelace Grace Hopper]", got)
	}
	if results.Options[2].Voters == nil {
		t.Error("voters for an untouched option must be an empty slice, not nil")
	}
}

func TestGetResultsByName(t *testing.T) {
	ctx := context.Background()
	fx := newPollFixture()

	if _, _, err := fx.svc.Create(ctx, "Morning Check", model.PollTypeTrueFalse, 0, nil); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, _, err := fx.svc.Create(ctx, "Morning Check", model.PollTypeTrueFalse, 0, nil); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	results, err := fx.svc.GetResultsByName(ctx, "Morning Check", true)
	if err != nil {
		t.Fatalf("GetResultsByName failed: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("got %d polls, want 2", len(results))
	}

	empty, err := fx.svc.GetResultsByName(ctx, "No Such Poll", true)
	if err != nil {
		t.Fatalf("GetResultsByName failed: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("no matches must yield an empty slice, got %v", empty)
	}
}

// ────────────────────────────────────────────────────────────────────────────
// Lifecycle
// ────────────────────────────────────────────────────────────────────────────

func TestCloseSemantics(t *testing.T) {
	ctx := context.Background()
	fx := newPollFixture()

	poll, _, err := fx.svc.Create(ctx, "Closable", model.PollTypeTrueFalse, 0, nil)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := fx.svc.Close(ctx, poll.Code); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	// Idempotent: a second close is not an error.
	if err := fx.svc.Close(ctx, poll.Code); err != nil {
		t.Errorf("repeated Close failed: %v", err)
	}
	if err := fx.svc.Close(ctx, "0000"); !errors.Is(err, ErrPollNotFound) {
		t.Errorf("closing unknown code: got %v, want ErrPollNotFound", err)
	}

	// Closed polls disappear from the student-facing detail view but keep
	// serving results.
	if _, err := fx.svc.GetPollDetails(ctx, poll.Code); !errors.Is(err, ErrPollNotFound) {
		t.Errorf("details after close: got %v, want ErrPollNotFound", err)
	}
	if _, err := fx.svc.GetResults(ctx, poll.Code); err != nil {
		t.Errorf("results after close failed: %v", err)
	}
}

func TestGetPollDetailsHidesCounts(t *testing.T) {
	ctx := context.Background()
	fx := newPollFixture()

	poll, _, err := fx.svc.Create(ctx, "Hidden", model.PollTypeYesNoUnsure, 0, nil)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	details, err := fx.svc.GetPollDetails(ctx, poll.Code)
	if err != nil {
		t.Fatalf("GetPollDetails failed: %v", err)
	}
	if details.PollCode != poll.Code || len(details.Options) != 3 {
		t.Errorf("details = %+v, want code %s with 3 options", details, poll.Code)
	}
}
