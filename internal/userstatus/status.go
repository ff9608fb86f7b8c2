// Package userstatus persists the per-user access record: whether the user
// is subscribed to the main channel, has joined the verification group and
// has ever been registered.
package userstatus

import "context"

// Status is the stored record of one user. The zero value (apart from
// UserID) is what an unknown user reads as.
type Status struct {
	UserID      int64 `db:"user_id" json:"user_id"`
	Subscribed  bool  `db:"subscribed" json:"subscribed"`
	VerifJoined bool  `db:"verif_joined" json:"verif_joined"`
	// Registered only ever goes from false to true.
	Registered bool `db:"registered" json:"registered"`
}

// Store reads and updates user records. Every method is a single atomic
// statement; setters create the record when it does not exist yet.
type Store interface {
	// Ensure creates an all-false record if none exists.
	Ensure(ctx context.Context, userID int64) error
	SetSubscribed(ctx context.Context, userID int64, v bool) error
	SetVerified(ctx context.Context, userID int64, v bool) error
	// MarkRegistered sets registered to true; nothing resets it.
	MarkRegistered(ctx context.Context, userID int64) error
	// GetStatus never fails for unknown users; they read as all false.
	GetStatus(ctx context.Context, userID int64) (Status, error)
}
