package utils

import (
	"testing"
	"time"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in       string
		wantHour int
		wantMin  int
		wantErr  bool
	}{
		{"07:00", 7, 0, false},
		{"23:59", 23, 59, false},
		{"00:00", 0, 0, false},
		{"24:00", 0, 0, true},
		{"7am", 0, 0, true},
		{"", 0, 0, true},
	}

	for _, tt := range tests {
		h, m, err := ParseTimeOfDay(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseTimeOfDay(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && (h != tt.wantHour || m != tt.wantMin) {
			t.Errorf("ParseTimeOfDay(%q) = %d:%d, want %d:%d", tt.in, h, m, tt.wantHour, tt.wantMin)
		}
	}
}

func TestCombineDate(t *testing.T) {
	loc, err := time.LoadLocation("America/Chicago")
	if err != nil {
		t.Fatal(err)
	}

	date := time.Date(2026, 3, 15, 18, 42, 11, 0, loc)
	got := CombineDate(date, 7, 30)

	want := time.Date(2026, 3, 15, 7, 30, 0, 0, loc)
	if !got.Equal(want) {
		t.Errorf("CombineDate = %v, want %v", got, want)
	}
	if got.Location() != loc {
		t.Errorf("CombineDate changed location to %v", got.Location())
	}
}

func TestFormatTimeOfDay(t *testing.T) {
	if got := FormatTimeOfDay(7, 5); got != "07:05" {
		t.Errorf("FormatTimeOfDay(7, 5) = %q, want 07:05", got)
	}
}
