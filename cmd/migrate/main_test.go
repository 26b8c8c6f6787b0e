package main

import "testing"

func TestPgx5URL(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"postgres://u:p@localhost:5432/fit?sslmode=disable", "pgx5://u:p@localhost:5432/fit?sslmode=disable"},
		{"postgresql://u@db/fit", "pgx5://u@db/fit"},
		{"pgx5://already", "pgx5://already"},
	}
	for _, tc := range cases {
		if got := pgx5URL(tc.in); got != tc.want {
			t.Errorf("pgx5URL(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
