package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/Krrish0621/Mind-Care-sub000/pkg"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS screening_results (
	id          TEXT PRIMARY KEY,
	user_token  TEXT NOT NULL,
	instrument  TEXT NOT NULL,
	answers     TEXT NOT NULL,
	total_score INTEGER NOT NULL,
	severity    TEXT NOT NULL,
	created_at  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS screening_results_user_created_idx
	ON screening_results (user_token, created_at DESC);
`

// sortableTime has a fixed width so that created_at sorts lexically.
const sortableTime = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore keeps screening results in a local SQLite file.  It is meant
// for single-node deployments and development.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path and applies the schema.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	for _, stmt := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000", sqliteSchema} {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, errors.Wrapf(err, "init sqlite: %.40s", stmt)
		}
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveResult inserts a completed screening.
func (s *SQLiteStore) SaveResult(ctx context.Context, res *pkg.ScreeningResult) error {
	answers, err := json.Marshal(res.Answers)
	if err != nil {
		return errors.Wrap(err, "encode answers")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO screening_results (id, user_token, instrument, answers, total_score, severity, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		res.ID, res.UserToken, res.Instrument, string(answers), res.TotalScore, res.Severity,
		res.CreatedAt.UTC().Format(sortableTime),
	)
	return errors.Wrapf(err, "insert screening result %s", res.ID)
}

// ListResults returns up to limit results for userToken, newest first.
func (s *SQLiteStore) ListResults(ctx context.Context, userToken string, limit int) ([]pkg.ScreeningResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_token, instrument, answers, total_score, severity, created_at
		 FROM screening_results
		 WHERE user_token = ?
		 ORDER BY created_at DESC, rowid DESC
		 LIMIT ?`, userToken, limit)
	if err != nil {
		return nil, errors.Wrap(err, "query screening results")
	}
	defer rows.Close()
	out := []pkg.ScreeningResult{}
	for rows.Next() {
		var (
			res       pkg.ScreeningResult
			answers   string
			createdAt string
		)
		if err := rows.Scan(&res.ID, &res.UserToken, &res.Instrument, &answers, &res.TotalScore, &res.Severity, &createdAt); err != nil {
			return nil, errors.Wrap(err, "scan screening result")
		}
		if err := json.Unmarshal([]byte(answers), &res.Answers); err != nil {
			return nil, errors.Wrapf(err, "decode answers of %s", res.ID)
		}
		if res.CreatedAt, err = time.Parse(sortableTime, createdAt); err != nil {
			return nil, errors.Wrapf(err, "parse created_at of %s", res.ID)
		}
		out = append(out, res)
	}
	return out, errors.Wrap(rows.Err(), "iterate screening results")
}
