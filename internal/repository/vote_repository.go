package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/classpoint/engage-backend/internal/model"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrDuplicateVote is returned when the (poll, student) unique constraint
// rejects a second vote. The constraint, not an application pre-check, is the
// source of truth under concurrent submissions.
var ErrDuplicateVote = errors.New("student has already voted in this poll")

// VoteRepository handles poll vote data access.
type VoteRepository struct {
	pool *pgxpool.Pool
}

// NewVoteRepository creates a new VoteRepository.
func NewVoteRepository(pool *pgxpool.Pool) *VoteRepository {
	return &VoteRepository{pool: pool}
}

// Create persists a vote and bumps the option's denormalized counter in a
// single transaction. The in-database increment avoids read-modify-write
// races between concurrent submissions for the same option, and either both
// writes commit or neither does.
func (r *VoteRepository) Create(ctx context.Context, v *model.PollVote) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin vote tx: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO poll_votes (poll_id, option_id, student_id)
		 VALUES ($1, $2, $3)
		 RETURNING id, voted_at`,
		v.PollID, v.OptionID, v.StudentID,
	).Scan(&v.ID, &v.VotedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateVote
		}
		return fmt.Errorf("insert vote: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE poll_options SET vote_count = vote_count + 1 WHERE id = $1`,
		v.OptionID,
	); err != nil {
		return fmt.Errorf("increment option counter: %w", err)
	}

	return tx.Commit(ctx)
}

// VoterNamesByOption returns, for every option of the poll, the full names of
// its voters in vote insertion order.
func (r *VoteRepository) VoterNamesByOption(ctx context.Context, pollID int) (map[int][]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT v.option_id, s.full_name
		 FROM poll_votes v
		 JOIN students s ON v.student_id = s.id
		 WHERE v.poll_id = $1
		 ORDER BY v.id`, pollID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	voters := make(map[int][]string)
	for rows.Next() {
		var optionID int
		var name string
		if err := rows.Scan(&optionID, &name); err != nil {
			return nil, err
		}
		voters[optionID] = append(voters[optionID], name)
	}
	return voters, rows.Err()
}
