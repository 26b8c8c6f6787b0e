package main

import (
	"time"

	"go.uber.org/zap"
)

// tracker holds the domain operations: profile and recommendation, goal
// replacement, and the daily entry ledger. It has no HTTP dependency so each
// operation can be exercised directly against any Store.
type tracker struct {
	store   Store
	loc     *time.Location // reference timezone for calendar days
	now     func() time.Time
	log     *zap.Logger
	metrics *metrics
}

func newTracker(store Store, loc *time.Location, log *zap.Logger, m *metrics) *tracker {
	if loc == nil {
		loc = time.UTC
	}
	return &tracker{store: store, loc: loc, now: time.Now, log: log, metrics: m}
}

// today is the current calendar day in the reference timezone.
func (t *tracker) today() time.Time {
	return calendarDay(t.now(), t.loc)
}
