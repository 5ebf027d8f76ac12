package dbx_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/Abraxas-365/staffhub/pkg/dbx"
	"github.com/lib/pq"
)

func TestViolationClassification(t *testing.T) {
	unique := &pq.Error{Code: "23505", Constraint: "employees_email_key"}
	fk := &pq.Error{Code: "23503"}

	if !dbx.IsUniqueViolation(fmt.Errorf("insert: %w", unique)) {
		t.Error("wrapped 23505 should be a unique violation")
	}
	if dbx.IsUniqueViolation(fk) {
		t.Error("23503 is not a unique violation")
	}
	if !dbx.IsForeignKeyViolation(fk) {
		t.Error("23503 should be a foreign key violation")
	}
	if dbx.IsUniqueViolation(errors.New("plain")) {
		t.Error("plain errors are never violations")
	}
	if got := dbx.Constraint(unique); got != "employees_email_key" {
		t.Errorf("Constraint() = %q, want employees_email_key", got)
	}
}
