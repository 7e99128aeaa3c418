package postgresadapter

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestUniqueViolationDetection(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: pendingRequestConstraint}
	wrapped := fmt.Errorf("insert request: %w", pgErr)

	if !isUniqueViolation(wrapped) {
		t.Fatalf("expected wrapped pg error to be a unique violation")
	}
	if got := constraintName(wrapped); got != pendingRequestConstraint {
		t.Fatalf("expected constraint %s, got %s", pendingRequestConstraint, got)
	}
	if isUniqueViolation(&pgconn.PgError{Code: "23503"}) {
		t.Fatalf("foreign key violation must not count as unique violation")
	}
	if isUniqueViolation(errors.New("boom")) || constraintName(errors.New("boom")) != "" {
		t.Fatalf("plain errors carry no constraint")
	}
}

func TestNullableStringHelpers(t *testing.T) {
	if nullableString("  ") != nil {
		t.Fatalf("blank string must map to NULL")
	}
	value := nullableString("7")
	if value == nil || derefString(value) != "7" {
		t.Fatalf("unexpected round trip %v", value)
	}
	if derefString(nil) != "" {
		t.Fatalf("nil must deref to empty string")
	}
}

func TestRuntimeHelpers(t *testing.T) {
	now := SystemClock{}.Now()
	if now.Location().String() != "UTC" || now.Nanosecond()%1000 != 0 {
		t.Fatalf("expected UTC microsecond precision, got %s", now)
	}

	first, err := UUIDGenerator{}.NewID(context.Background())
	if err != nil {
		t.Fatalf("new id: %v", err)
	}
	second, _ := UUIDGenerator{}.NewID(context.Background())
	if first == second || len(first) != 36 || first[14] != '7' {
		t.Fatalf("expected distinct v7 ids, got %s %s", first, second)
	}
}
