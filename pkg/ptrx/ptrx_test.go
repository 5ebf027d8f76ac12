package ptrx_test

import (
	"testing"

	"github.com/Abraxas-365/staffhub/pkg/ptrx"
)

func TestValueOr(t *testing.T) {
	if got := ptrx.ValueOr[int](nil, 7); got != 7 {
		t.Errorf("ValueOr(nil) = %d, want 7", got)
	}
	if got := ptrx.ValueOr(ptrx.Ptr(3), 7); got != 3 {
		t.Errorf("ValueOr(3) = %d, want 3", got)
	}
	if got := ptrx.Value[string](nil); got != "" {
		t.Errorf("Value(nil) = %q, want empty", got)
	}
}

func TestTrimmedOr(t *testing.T) {
	if got := ptrx.TrimmedOr(nil, "keep"); got != "keep" {
		t.Errorf("TrimmedOr(nil) = %q, want %q", got, "keep")
	}
	if got := ptrx.TrimmedOr(ptrx.String("  "), "keep"); got != "" {
		t.Errorf("TrimmedOr(blank) = %q, want empty", got)
	}
	if !ptrx.Blank(nil) || !ptrx.Blank(ptrx.String(" ")) || ptrx.Blank(ptrx.String("x")) {
		t.Error("Blank() mismatch")
	}
}
