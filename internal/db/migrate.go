package db

import (
	"context"
	"database/sql"

	_ "embed"

	"github.com/pkg/errors"
)

//go:embed schema.sql
var schemaSQL string

// Migrate applies the Postgres schema.  The statements in schema.sql are
// idempotent, so it is safe to run on every start.
func Migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schemaSQL)
	return errors.Wrap(err, "apply postgres schema")
}
