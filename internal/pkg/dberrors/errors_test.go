package dberrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestUniqueViolation(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		wantConstraint string
		wantOK         bool
	}{
		{"unique violation", &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}, "users_email_key", true},
		{"wrapped", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"}), "users_username_key", true},
		{"other pg error", &pgconn.PgError{Code: "23503", ConstraintName: "fk"}, "", false},
		{"plain error", errors.New("boom"), "", false},
		{"nil", nil, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := UniqueViolation(tt.err)
			if got != tt.wantConstraint || ok != tt.wantOK {
				t.Errorf("UniqueViolation() = (%q, %v), want (%q, %v)", got, ok, tt.wantConstraint, tt.wantOK)
			}
		})
	}
}
