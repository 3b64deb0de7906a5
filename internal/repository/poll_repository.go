package repository

import (
	"context"
	"errors"

	"github.com/classpoint/engage-backend/internal/model"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrPollCodeTaken is returned when a generated poll code collides with an
// existing one at insert time. Callers retry with a fresh code.
var ErrPollCodeTaken = errors.New("poll code already taken")

// PollRepository handles poll and poll-option data access.
type PollRepository struct {
	pool *pgxpool.Pool
}

// NewPollRepository creates a new PollRepository.
func NewPollRepository(pool *pgxpool.Pool) *PollRepository {
	return &PollRepository{pool: pool}
}

// GetByCode retrieves a poll by its share code.
func (r *PollRepository) GetByCode(ctx context.Context, code string) (*model.Poll, error) {
	p := &model.Poll{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, code, creator_id, question_type, option_count, is_active, created_at, closed_at
		 FROM polls WHERE code = $1`, code,
	).Scan(&p.ID, &p.Name, &p.Code, &p.CreatorID, &p.QuestionType, &p.OptionCount, &p.IsActive, &p.CreatedAt, &p.ClosedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// CodeExists reports whether any poll already uses the given code.
func (r *PollRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM polls WHERE code = $1)`, code,
	).Scan(&exists)
	return exists, err
}

// Create inserts a new poll. The unique constraint on code is the final
// arbiter of code collisions; a 23505 is surfaced as ErrPollCodeTaken.
func (r *PollRepository) Create(ctx context.Context, p *model.Poll) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO polls (name, code, creator_id, question_type, option_count, is_active)
		 VALUES ($1, $2, $3, $4, $5, TRUE)
		 RETURNING id, is_active, created_at`,
		p.Name, p.Code, p.CreatorID, p.QuestionType, p.OptionCount,
	).Scan(&p.ID, &p.IsActive, &p.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrPollCodeTaken
		}
		return err
	}
	return nil
}

// Close deactivates a poll. Returns the number of rows transitioned so the
// caller can distinguish "closed now" from "was already closed"; closed_at is
// only set on the first transition.
func (r *PollRepository) Close(ctx context.Context, code string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE polls SET is_active = FALSE, closed_at = CURRENT_TIMESTAMP
		 WHERE code = $1 AND is_active = TRUE`, code)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ListByName retrieves polls matching the given name, newest first.
// Exact matching is case-sensitive equality; partial matching is a
// case-insensitive substring search.
func (r *PollRepository) ListByName(ctx context.Context, name string, exact bool) ([]model.Poll, error) {
	query := `SELECT id, name, code, creator_id, question_type, option_count, is_active, created_at, closed_at
	          FROM polls WHERE name ILIKE '%' || $1 || '%' ORDER BY created_at DESC`
	if exact {
		query = `SELECT id, name, code, creator_id, question_type, option_count, is_active, created_at, closed_at
		         FROM polls WHERE name = $1 ORDER BY created_at DESC`
	}

	rows, err := r.pool.Query(ctx, query, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var polls []model.Poll
	for rows.Next() {
		var p model.Poll
		if err := rows.Scan(&p.ID, &p.Name, &p.Code, &p.CreatorID, &p.QuestionType, &p.OptionCount, &p.IsActive, &p.CreatedAt, &p.ClosedAt); err != nil {
			return nil, err
		}
		polls = append(polls, p)
	}
	return polls, rows.Err()
}

// CreateOptions inserts poll options in the given order.
func (r *PollRepository) CreateOptions(ctx context.Context, pollID int, texts []string) error {
	for _, text := range texts {
		if _, err := r.pool.Exec(ctx,
			`INSERT INTO poll_options (poll_id, text) VALUES ($1, $2)`, pollID, text,
		); err != nil {
			return err
		}
	}
	return nil
}

// ListOptions retrieves a poll's options in creation order.
func (r *PollRepository) ListOptions(ctx context.Context, pollID int) ([]model.PollOption, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, poll_id, text, vote_count FROM poll_options
		 WHERE poll_id = $1 ORDER BY id`, pollID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var options []model.PollOption
	for rows.Next() {
		var o model.PollOption
		if err := rows.Scan(&o.ID, &o.PollID, &o.Text, &o.VoteCount); err != nil {
			return nil, err
		}
		options = append(options, o)
	}
	return options, rows.Err()
}

// CountOptions returns how many options a poll currently has.
func (r *PollRepository) CountOptions(ctx context.Context, pollID int) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM poll_options WHERE poll_id = $1`, pollID,
	).Scan(&n)
	return n, err
}

// GetOptionForPoll retrieves an option only if it belongs to the given poll.
func (r *PollRepository) GetOptionForPoll(ctx context.Context, optionID, pollID int) (*model.PollOption, error) {
	o := &model.PollOption{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, poll_id, text, vote_count FROM poll_options
		 WHERE id = $1 AND poll_id = $2`, optionID, pollID,
	).Scan(&o.ID, &o.PollID, &o.Text, &o.VoteCount)
	if err != nil {
		return nil, err
	}
	return o, nil
}
