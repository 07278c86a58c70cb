package utils

import (
	"testing"
)

func TestIsValidEmail(t *testing.T) {
	valid := []string{"a@b.co", "tech.ops+alerts@facility.example.com"}
	for _, email := range valid {
		if !IsValidEmail(email) {
			t.Errorf("IsValidEmail(%q) = false; want true", email)
		}
	}
	invalid := []string{"", "plainaddress", "@no-local.com", "user@", "user@domain"}
	for _, email := range invalid {
		if IsValidEmail(email) {
			t.Errorf("IsValidEmail(%q) = true; want false", email)
		}
	}
}

func TestUniqueSlice(t *testing.T) {
	got := UniqueSlice([]int{3, 1, 3, 2, 1})
	want := []int{3, 1, 2}
	if len(got) != len(want) {
		t.Fatalf("UniqueSlice = %v; want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("UniqueSlice = %v; want %v (order preserved)", got, want)
		}
	}
}

func TestDereferencePtr(t *testing.T) {
	if got := DereferencePtr[int](nil); got != 0 {
		t.Fatalf("nil without default = %d; want 0", got)
	}
	if got := DereferencePtr[int](nil, 7); got != 7 {
		t.Fatalf("nil with default = %d; want 7", got)
	}
	v := 42
	if got := DereferencePtr(&v, 7); got != 42 {
		t.Fatalf("non-nil = %d; want 42", got)
	}
}

func TestParseDecimal(t *testing.T) {
	dec, err := ParseDecimal(" 12.5000 ")
	if err != nil {
		t.Fatalf("ParseDecimal: %v", err)
	}
	if dec.String() != "12.5" {
		t.Fatalf("ParseDecimal = %s; want 12.5", dec)
	}
	if _, err := ParseDecimal(""); err == nil {
		t.Fatalf("empty string: expected error")
	}
	if _, err := ParseDecimal("abc"); err == nil {
		t.Fatalf("garbage: expected error")
	}
}
