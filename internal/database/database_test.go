package database

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/lib/pq"
)

func TestIsUniqueViolation(t *testing.T) {
	dup := &pq.Error{Code: "23505", Constraint: "users_email_key"}
	tests := []struct {
		name       string
		err        error
		constraint string
		want       bool
	}{
		{"match", dup, "users_email_key", true},
		{"wrapped", fmt.Errorf("insert: %w", dup), "users_email_key", true},
		{"any constraint", dup, "", true},
		{"other constraint", dup, "notes_pkey", false},
		{"fk violation", &pq.Error{Code: "23503"}, "", false},
		{"plain error", errors.New("duplicate key"), "", false},
		{"nil", nil, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUniqueViolation(tt.err, tt.constraint); got != tt.want {
				t.Errorf("IsUniqueViolation() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMigrationsEmbedded(t *testing.T) {
	for _, name := range []string{"migrations/000001_init.up.sql", "migrations/000001_init.down.sql"} {
		b, err := fs.ReadFile(migrationFS, name)
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if len(b) == 0 {
			t.Errorf("%s is empty", name)
		}
	}
}

func TestConnect_RequiresDSN(t *testing.T) {
	if _, err := Connect(context.Background(), ""); err == nil {
		t.Error("expected error for empty DSN")
	}
}
