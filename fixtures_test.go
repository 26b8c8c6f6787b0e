package main

import (
	"testing"
	"time"

	"go.uber.org/zap"
)

// fixedNow is the clock used by tracker tests: midday on 2024-01-10 UTC.
var fixedNow = time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

// newTestTracker returns a tracker over a fresh memStore with one user and
// the clock pinned to fixedNow.
func newTestTracker(t *testing.T) (*tracker, *memStore, int) {
	t.Helper()
	store := newMemStore()
	userID := store.addUser(user{Username: "alice", Email: "alice@example.com", AuthToken: "tok-alice"})
	tr := newTracker(store, time.UTC, zap.NewNop(), newMetrics())
	tr.now = func() time.Time { return fixedNow }
	return tr, store, userID
}

// day parses a YYYY-MM-DD string as a UTC calendar day.
func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		t.Fatalf("bad test date %q: %v", s, err)
	}
	return d
}

func validProfile() profile {
	return profile{
		Gender:          genderMale,
		Age:             30,
		HeightCM:        178,
		WeightKG:        82,
		ActivityLevel:   1.55,
		HealthCondition: "none",
	}
}
