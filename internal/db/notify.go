package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/pkg/errors"
)

// Notifier publishes high-risk screening results on a Postgres NOTIFY
// channel so the counseling team's tooling can pick them up with LISTEN.
type Notifier struct {
	DB      *sql.DB
	Channel string
}

// NewNotifier constructs a new Notifier for channel.
func NewNotifier(db *sql.DB, channel string) *Notifier {
	return &Notifier{DB: db, Channel: channel}
}

// Notify sends the result id as the notification payload.  NOTIFY does not
// accept bind parameters, so both parts are quoted by the driver helpers.
func (n *Notifier) Notify(ctx context.Context, resultID string) error {
	stmt := fmt.Sprintf("NOTIFY %s, %s", pq.QuoteIdentifier(n.Channel), pq.QuoteLiteral(resultID))
	_, err := n.DB.ExecContext(ctx, stmt)
	return errors.Wrapf(err, "notify channel %s", n.Channel)
}
