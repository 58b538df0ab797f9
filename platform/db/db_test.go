package db

import (
	"errors"
	"fmt"
	"testing"

	"wedding_crm_backend/platform/apperr"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestMapError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		kind apperr.Kind
	}{
		{"no rows", fmt.Errorf("scan: %w", pgx.ErrNoRows), apperr.KindNotFound},
		{"foreign key", &pgconn.PgError{Code: "23503"}, apperr.KindValidation},
		{"unique", &pgconn.PgError{Code: "23505"}, apperr.KindConflict},
		{"check", &pgconn.PgError{Code: "23514"}, apperr.KindValidation},
		{"other", errors.New("connection refused"), apperr.KindPersistence},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := MapError("op", tc.err, "lead not found")
			if kind := apperr.GetKind(got); kind != tc.kind {
				t.Fatalf("expected kind %s, got %s", tc.kind, kind)
			}
		})
	}
	if MapError("op", nil, "x") != nil {
		t.Fatal("nil must stay nil")
	}
}

func TestMapErrorNoRowsWithoutMessageIsPersistence(t *testing.T) {
	err := MapError("op", pgx.ErrNoRows, "")
	if !apperr.Is(err, apperr.KindPersistence) {
		t.Fatalf("expected persistence, got %v", err)
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		t.Fatal("driver error must stay in the chain")
	}
}
