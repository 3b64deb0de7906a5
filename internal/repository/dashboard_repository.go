package repository

import (
	"context"

	"github.com/classpoint/engage-backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DashboardRepository aggregates cross-entity counts for the teacher
// dashboard.
type DashboardRepository struct {
	pool *pgxpool.Pool
}

// NewDashboardRepository creates a new DashboardRepository.
func NewDashboardRepository(pool *pgxpool.Pool) *DashboardRepository {
	return &DashboardRepository{pool: pool}
}

// DashboardSummary holds headline counts for the dashboard view.
type DashboardSummary struct {
	TotalPolls       int `json:"total_polls"`
	ActivePolls      int `json:"active_polls"`
	TotalVotes       int `json:"total_votes"`
	TotalStudents    int `json:"total_students"`
	TotalQuizzes     int `json:"total_quizzes"`
	TotalSubmissions int `json:"total_submissions"`
}

// GetSummaryCounts retrieves the headline counts in a single round trip.
func (r *DashboardRepository) GetSummaryCounts(ctx context.Context) (*DashboardSummary, error) {
	s := &DashboardSummary{}
	err := r.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM polls),
			(SELECT COUNT(*) FROM polls WHERE is_active),
			(SELECT COUNT(*) FROM poll_votes),
			(SELECT COUNT(*) FROM students),
			(SELECT COUNT(*) FROM quizzes),
			(SELECT COUNT(*) FROM quiz_submissions)`,
	).Scan(&s.TotalPolls, &s.ActivePolls, &s.TotalVotes, &s.TotalStudents, &s.TotalQuizzes, &s.TotalSubmissions)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetRecentPolls retrieves the most recently created polls.
func (r *DashboardRepository) GetRecentPolls(ctx context.Context, limit int) ([]model.Poll, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, code, creator_id, question_type, option_count, is_active, created_at, closed_at
		 FROM polls ORDER BY created_at DESC LIMIT $1`, limit)
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
