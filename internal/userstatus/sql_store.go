package userstatus

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/gamegate/core/logger"
)

// The statements are valid for both SQLite and Postgres; sqlx rebinds the
// placeholders for the connected driver.
const (
	ensureQuery = `INSERT INTO users (user_id) VALUES (?) ON CONFLICT (user_id) DO NOTHING`

	setSubscribedQuery = `INSERT INTO users (user_id, subscribed) VALUES (?, ?)
ON CONFLICT (user_id) DO UPDATE SET subscribed = excluded.subscribed`

	setVerifiedQuery = `INSERT INTO users (user_id, verif_joined) VALUES (?, ?)
ON CONFLICT (user_id) DO UPDATE SET verif_joined = excluded.verif_joined`

	markRegisteredQuery = `INSERT INTO users (user_id, registered) VALUES (?, TRUE)
ON CONFLICT (user_id) DO UPDATE SET registered = TRUE`

	getStatusQuery = `SELECT user_id, subscribed, verif_joined, registered FROM users WHERE user_id = ?`
)

// SQLStore is the Store backed by the users table.
type SQLStore struct {
	db *sqlx.DB

	ensure         string
	setSubscribed  string
	setVerified    string
	markRegistered string
	getStatus      string
}

var _ Store = (*SQLStore)(nil)

// NewSQLStore prepares the statements for db's driver.
func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{
		db:             db,
		ensure:         db.Rebind(ensureQuery),
		setSubscribed:  db.Rebind(setSubscribedQuery),
		setVerified:    db.Rebind(setVerifiedQuery),
		markRegistered: db.Rebind(markRegisteredQuery),
		getStatus:      db.Rebind(getStatusQuery),
	}
}

// Ensure creates an all-false record if none exists.
func (s *SQLStore) Ensure(ctx context.Context, userID int64) error {
	return s.exec(ctx, "ensure", s.ensure, userID)
}

// SetSubscribed overwrites the subscribed flag.
func (s *SQLStore) SetSubscribed(ctx context.Context, userID int64, v bool) error {
	return s.exec(ctx, "set_subscribed", s.setSubscribed, userID, v)
}

// SetVerified overwrites the verif_joined flag.
func (s *SQLStore) SetVerified(ctx context.Context, userID int64, v bool) error {
	return s.exec(ctx, "set_verified", s.setVerified, userID, v)
}

// MarkRegistered sets registered to true.
func (s *SQLStore) MarkRegistered(ctx context.Context, userID int64) error {
	return s.exec(ctx, "mark_registered", s.markRegistered, userID)
}

// GetStatus returns the record or all-false defaults for an unknown user.
func (s *SQLStore) GetStatus(ctx context.Context, userID int64) (Status, error) {
	var st Status
	err := s.db.GetContext(ctx, &st, s.getStatus, userID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return Status{UserID: userID}, nil
	case err != nil:
		logger.LogEvent(ctx, logger.Store, slog.LevelError, "store.get",
			slog.Int64("target_id", userID),
			slog.String("err", err.Error()),
		)
		return Status{}, fmt.Errorf("userstatus: get %d: %w", userID, err)
	}
	return st, nil
}

func (s *SQLStore) exec(ctx context.Context, op, query string, args ...any) error {
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		logger.LogEvent(ctx, logger.Store, slog.LevelError, "store."+op,
			slog.Any("target_id", args[0]),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("userstatus: %s: %w", op, err)
	}
	if logger.ShouldSampleDebug() {
		logger.LogEvent(ctx, logger.Store, slog.LevelDebug, "store."+op,
			slog.Any("target_id", args[0]),
			slog.String("status", "ok"),
		)
	}
	return nil
}
