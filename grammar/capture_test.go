package grammar

import (
	"errors"
	"testing"
)

func TestCaptureKey(t *testing.T) {
	tests := []struct {
		key    CaptureKey
		str    string
		number bool
		valid  bool
	}{
		{Number(0), "0", true, true},
		{Number(3), "3", true, true},
		{Number(-1), "-1", true, false},
		{Name("ident"), "ident", false, true},
		{Name(""), "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.str, func(t *testing.T) {
			if got := tt.key.String(); got != tt.str {
				t.Errorf("String() = %q, want %q", got, tt.str)
			}

			if got := tt.key.IsNumber(); got != tt.number {
				t.Errorf("IsNumber() = %v, want %v", got, tt.number)
			}

			if got := tt.key.Valid(); got != tt.valid {
				t.Errorf("Valid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestCaptureKey_KindsDistinct(t *testing.T) {
	if Name("") == Number(0) {
		t.Error("empty name and group 0 are the same key")
	}

	var table CaptureTable

	table.Set(Number(0), &Capture{Name: "whole"})

	if _, ok := table.Get(Name("")); ok {
		t.Error("lookup by empty name found group 0")
	}
}

func TestDefineCapture_InvalidKey(t *testing.T) {
	_, p := fixture(t)

	for _, key := range []CaptureKey{Name(""), Number(-2)} {
		_, err := DefineCapture(p, key, "bad.scope", nil)
		if !errors.Is(err, ErrInvalidCaptureKey) {
			t.Errorf("DefineCapture(%q) error = %v, want %v", key, err, ErrInvalidCaptureKey)
		}
	}

	if p.Captures.Len() != 0 {
		t.Errorf("invalid keys were stored: %d captures", p.Captures.Len())
	}

	if _, err := DefineCapture(p, Number(0), "whole.scope", nil); err != nil {
		t.Errorf("DefineCapture(0): %v", err)
	}
}
