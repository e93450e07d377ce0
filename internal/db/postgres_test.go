package db_test

import (
	"testing"

	"github.com/civicpulse/request-notifier/internal/db"
)

func TestMigrationURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"postgres://u:p@localhost:5432/civic", "pgx5://u:p@localhost:5432/civic"},
		{"postgresql://u:p@localhost/civic?sslmode=disable", "pgx5://u:p@localhost/civic?sslmode=disable"},
		{"pgx5://localhost/civic", "pgx5://localhost/civic"},
		{"localhost/civic", "pgx5://localhost/civic"},
	}
	for _, tc := range tests {
		if got := db.MigrationURL(tc.in); got != tc.want {
			t.Fatalf("MigrationURL(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
