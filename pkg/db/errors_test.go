package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsUniqueViolationPgError(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505", ConstraintName: "processed_events_pkey"}

	if !IsUniqueViolation(unique, "processed_events_pkey") {
		t.Fatal("expected match on constraint name")
	}
	if !IsUniqueViolation(unique, "") {
		t.Fatal("expected match without constraint filter")
	}
	if IsUniqueViolation(unique, "client_snapshots_identification_key") {
		t.Fatal("expected mismatch on a different constraint")
	}
	if IsUniqueViolation(&pgconn.PgError{Code: "23503"}, "") {
		t.Fatal("foreign key violation is not a unique violation")
	}
	if !IsUniqueViolation(fmt.Errorf("insert: %w", unique), "processed_events_pkey") {
		t.Fatal("expected match through wrapping")
	}
}

func TestIsUniqueViolationSqliteMessages(t *testing.T) {
	marker := errors.New("UNIQUE constraint failed: processed_events.event_id")
	if !IsUniqueViolation(marker, "processed_events_pkey") {
		t.Fatal("expected sqlite marker violation to match its constraint")
	}

	// a collision on another table must not satisfy the marker constraint
	identification := errors.New("UNIQUE constraint failed: client_snapshots.identification")
	if IsUniqueViolation(identification, "processed_events_pkey") {
		t.Fatal("identification collision misreported as marker violation")
	}
	if !IsUniqueViolation(identification, "") {
		t.Fatal("expected match without constraint filter")
	}

	if IsUniqueViolation(errors.New("connection refused"), "") {
		t.Fatal("unrelated error is not a unique violation")
	}
	if IsUniqueViolation(nil, "") {
		t.Fatal("nil error is not a unique violation")
	}
}
