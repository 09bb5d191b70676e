package db

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/Krrish0621/Mind-Care-sub000/pkg"
)

// Repository stores screening results in Postgres.  Answers are kept in an
// INTEGER[] column.
type Repository struct {
	DB *sql.DB
}

// NewRepository constructs a new Repository from an existing sql.DB.
// The caller is responsible for managing the DB connection lifecycle.
func NewRepository(db *sql.DB) *Repository { return &Repository{DB: db} }

// SaveResult inserts a completed screening.
func (r *Repository) SaveResult(ctx context.Context, res *pkg.ScreeningResult) error {
	answers := make([]int64, len(res.Answers))
	for i, a := range res.Answers {
		answers[i] = int64(a)
	}
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO screening_results (id, user_token, instrument, answers, total_score, severity, created_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		res.ID, res.UserToken, res.Instrument, pq.Array(answers), res.TotalScore, res.Severity, res.CreatedAt,
	)
	return errors.Wrapf(err, "insert screening result %s", res.ID)
}

// ListResults returns up to limit results for userToken, newest first.
func (r *Repository) ListResults(ctx context.Context, userToken string, limit int) ([]pkg.ScreeningResult, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, user_token, instrument, answers, total_score, severity, created_at
         FROM screening_results
         WHERE user_token = $1
         ORDER BY created_at DESC
         LIMIT $2`, userToken, limit)
	if err != nil {
		return nil, errors.Wrap(err, "query screening results")
	}
	defer rows.Close()
	out := []pkg.ScreeningResult{}
	for rows.Next() {
		var (
			res     pkg.ScreeningResult
			answers pq.Int64Array
		)
		if err := rows.Scan(&res.ID, &res.UserToken, &res.Instrument, &answers, &res.TotalScore, &res.Severity, &res.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan screening result")
		}
		res.Answers = make([]int, len(answers))
		for i, a := range answers {
			res.Answers[i] = int(a)
		}
		out = append(out, res)
	}
	return out, errors.Wrap(rows.Err(), "iterate screening results")
}
