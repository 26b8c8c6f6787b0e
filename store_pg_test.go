package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestMapPgError(t *testing.T) {
	cases := []struct {
		name string
		in   error
		want error
	}{
		{"no rows", pgx.ErrNoRows, ErrNotFound},
		{"wrapped no rows", fmt.Errorf("scan: %w", pgx.ErrNoRows), ErrNotFound},
		{"unique violation", &pgconn.PgError{Code: "23505", ConstraintName: "tracking_entries_user_date_key"}, ErrDuplicateEntry},
		{"foreign key violation", &pgconn.PgError{Code: "23503"}, ErrNotFound},
		{"check violation", &pgconn.PgError{Code: "23514"}, ErrStoreFailure},
		{"connection error", errors.New("connection refused"), ErrStoreFailure},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := mapPgError(tc.in)
			assert.ErrorIs(t, got, tc.want)
			assert.ErrorIs(t, got, tc.in, "the driver error stays reachable for logs")
		})
	}

	assert.NoError(t, mapPgError(nil))
}

func TestDayKey(t *testing.T) {
	assert.Equal(t, "2024-01-05", dayKey(day(t, "2024-01-05")))
}
