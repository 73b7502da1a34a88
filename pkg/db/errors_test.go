package db

import (
	"errors"
	"testing"

	pkgerrors "github.com/angelmondragon/tillpoint/pkg/errors"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func TestIsUniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "tenant_modules_pkey"}
	if !IsUniqueViolation(pgErr, "") {
		t.Fatal("expected pg unique violation")
	}
	if !IsUniqueViolation(pgErr, "tenant_modules_pkey") {
		t.Fatal("expected constraint match")
	}
	if IsUniqueViolation(pgErr, "modules_code_key") {
		t.Fatal("unexpected constraint match")
	}
	if IsUniqueViolation(&pgconn.PgError{Code: "23503"}, "") {
		t.Fatal("foreign key violation is not unique")
	}
	if !IsUniqueViolation(errors.New("UNIQUE constraint failed: modules.code"), "") {
		t.Fatal("expected sqlite unique violation")
	}
	if IsUniqueViolation(nil, "") {
		t.Fatal("nil is not a violation")
	}
}

func TestMapError(t *testing.T) {
	if MapError(nil, "tenant") != nil {
		t.Fatal("expected nil")
	}
	if !pkgerrors.IsCode(MapError(gorm.ErrRecordNotFound, "tenant"), pkgerrors.CodeNotFound) {
		t.Fatal("expected not found")
	}
	if !pkgerrors.IsCode(MapError(&pgconn.PgError{Code: "23505"}, "module"), pkgerrors.CodeConflict) {
		t.Fatal("expected conflict")
	}
	typed := pkgerrors.New(pkgerrors.CodeForbidden, "nope")
	if MapError(typed, "module") != typed {
		t.Fatal("typed errors pass through")
	}
	if !pkgerrors.IsCode(MapError(errors.New("boom"), "module"), pkgerrors.CodeInternal) {
		t.Fatal("expected internal")
	}
}
