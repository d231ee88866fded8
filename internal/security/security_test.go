package security

import (
	"testing"
	"time"
)

func TestIsSafeMachineID(t *testing.T) {
	valid := []string{"M1", "6f1c2f0e-8d1a-4c55-9f57-1d2b3c4d5e6f", "cell:07", "MIG_01.a"}
	for _, id := range valid {
		if !IsSafeMachineID(id) {
			t.Fatalf("expected %q to be accepted", id)
		}
	}
	invalid := []string{"", "-lead", "a b", "m1;drop", "x'y"}
	for _, id := range invalid {
		if IsSafeMachineID(id) {
			t.Fatalf("expected %q to be rejected", id)
		}
	}
}

func TestAllowsWindow(t *testing.T) {
	limits := DefaultLimits()
	if !limits.AllowsWindow(24 * time.Hour) {
		t.Fatalf("expected one day to be allowed")
	}
	if limits.AllowsWindow(40 * 24 * time.Hour) {
		t.Fatalf("expected forty days to be rejected")
	}
	if !(Limits{}).AllowsWindow(365 * 24 * time.Hour) {
		t.Fatalf("zero max window disables the check")
	}
}
