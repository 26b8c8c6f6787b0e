package main

import (
	"context"
	"time"
)

// Store is the persistence contract used by the tracker and the HTTP layer.
//
// Errors are reported with the package sentinels: ErrNotFound when a user or
// row does not exist, ErrDuplicateEntry when CreateEntry loses the race for
// a (user_id, date) pair, ErrStoreFailure for everything else. Only
// CreateEntry carries a cross-record invariant; every other write replaces a
// single record and is last-writer-wins.
type Store interface {
	// UserByUsername returns the account row including the password hash.
	UserByUsername(ctx context.Context, username string) (user, error)
	// UserIDForToken resolves a bearer token to its user id.
	UserIDForToken(ctx context.Context, token string) (int, error)
	// GetUser returns the user with its profile, goal and calculation.
	GetUser(ctx context.Context, userID int) (userView, error)

	ReplaceProfile(ctx context.Context, userID int, p profile) error
	SaveCalculation(ctx context.Context, userID int, c calculation) error
	ReplaceGoal(ctx context.Context, userID int, g goal) error

	// FindEntry returns the entry for userID on day, or ErrNotFound.
	FindEntry(ctx context.Context, userID int, day time.Time) (entry, error)
	// CreateEntry inserts e atomically. If a row for (e.UserID, e.Date)
	// already exists it returns ErrDuplicateEntry and writes nothing.
	CreateEntry(ctx context.Context, e entry) (entry, error)
	// UpdateEntry overwrites the measurement fields of entry id.
	UpdateEntry(ctx context.Context, id, userID int, m measurement) (entry, error)
	// ListEntries returns all entries for userID ordered by date ascending.
	ListEntries(ctx context.Context, userID int) ([]entry, error)
	// LatestEntry returns the entry with the greatest date, or nil.
	LatestEntry(ctx context.Context, userID int) (*entry, error)

	Ping(ctx context.Context) error
}

// dayKey is the calendar-day key used for the (user_id, date) uniqueness.
func dayKey(day time.Time) string {
	return day.Format("2006-01-02")
}
