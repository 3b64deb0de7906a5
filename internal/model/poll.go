package model

import "time"

// PollQuestionType enumerates the supported quick-poll question types.
type PollQuestionType string

const (
	PollTypeTrueFalse   PollQuestionType = "true_false"
	PollTypeYesNoUnsure PollQuestionType = "yes_no_unsure"
	PollTypeCustom      PollQuestionType = "custom"
)

// Poll is a short-lived question identified by a generated 4-digit code.
// The code is unique among all polls and immutable after creation.
type Poll struct {
	ID           int              `json:"id"`
	Name         string           `json:"name"`
	Code         string           `json:"code"`
	CreatorID    *int             `json:"creator_id,omitempty"`
	QuestionType PollQuestionType `json:"question_type"`
	OptionCount  int              `json:"option_count"`
	IsActive     bool             `json:"is_active"`
	CreatedAt    time.Time        `json:"created_at"`
	ClosedAt     *time.Time       `json:"closed_at,omitempty"`
}

// PollOption is one selectable answer of a poll. VoteCount is denormalized
// and must always equal the number of poll_votes rows referencing the option.
type PollOption struct {
	ID        int    `json:"id"`
	PollID    int    `json:"poll_id"`
	Text      string `json:"text"`
	VoteCount int    `json:"vote_count"`
}

// PollVote records a single student's choice. At most one vote exists per
// (poll, student), enforced by a database unique constraint.
type PollVote struct {
	ID        int       `json:"id"`
	PollID    int       `json:"poll_id"`
	OptionID  int       `json:"option_id"`
	StudentID int       `json:"student_id"`
	VotedAt   time.Time `json:"voted_at"`
}

// CreatePollRequest is the payload for creating a new quick poll.
// OptionCount is only meaningful for the custom type.
type CreatePollRequest struct {
	Name         string `json:"name" binding:"required,min=1,max=120"`
	QuestionType string `json:"question_type" binding:"required,oneof=true_false yes_no_unsure custom"`
	OptionCount  int    `json:"option_count" binding:"omitempty,min=1,max=26"`
}

// SubmitVoteRequest is the payload for casting a vote on a poll.
type SubmitVoteRequest struct {
	OptionID     int    `json:"option_id" binding:"required"`
	StudentName  string `json:"student_name" binding:"required,min=1,max=255"`
	StudentEmail string `json:"student_email" binding:"required,email"`
}

// OptionResult is one option's tally in a results payload.
type OptionResult struct {
	Text   string   `json:"text"`
	Count  int      `json:"count"`
	Voters []string `json:"voters"`
}

// PollResults is the full tally of one poll.
type PollResults struct {
	PollCode     string           `json:"poll_code"`
	Name         string           `json:"name"`
	QuestionType PollQuestionType `json:"question_type"`
	Options      []OptionResult   `json:"options"`
}

// NamedPollResults is one poll's tally in a search-by-name response.
type NamedPollResults struct {
	PollCode  string         `json:"poll_code"`
	PollName  string         `json:"poll_name"`
	CreatedAt time.Time      `json:"created_at"`
	Results   []OptionResult `json:"results"`
}

// PollOptionDetail is an option exposed in the student-facing detail view.
type PollOptionDetail struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

// PollDetails is the student-facing view of an active poll. Vote counts are
// deliberately omitted so undecided voters are not influenced.
type PollDetails struct {
	PollCode     string             `json:"poll_code"`
	Name         string             `json:"name"`
	QuestionType PollQuestionType   `json:"question_type"`
	Options      []PollOptionDetail `json:"options"`
}
