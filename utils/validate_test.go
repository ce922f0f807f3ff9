package utils

import "testing"

func TestValidatePhone(t *testing.T) {
	tests := []struct {
		name  string
		phone string
		want  bool
	}{
		{"bare ten digits", "5551234567", true},
		{"with country code", "+15551234567", true},
		{"leading one no plus", "15551234567", true},
		{"too short", "555123", false},
		{"letters", "555123456a", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidatePhone(tt.phone); got != tt.want {
				t.Errorf("ValidatePhone(%q) = %v, want %v", tt.phone, got, tt.want)
			}
		})
	}
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"5551234567", "+15551234567"},
		{"15551234567", "+15551234567"},
		{"+15551234567", "+15551234567"},
		{"not-a-phone", "not-a-phone"},
	}

	for _, tt := range tests {
		if got := NormalizePhone(tt.in); got != tt.want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidateZipCode(t *testing.T) {
	tests := []struct {
		zip  string
		want bool
	}{
		{"10001", true},
		{"10001-1234", true},
		{"1000", false},
		{"abcde", false},
	}

	for _, tt := range tests {
		if got := ValidateZipCode(tt.zip); got != tt.want {
			t.Errorf("ValidateZipCode(%q) = %v, want %v", tt.zip, got, tt.want)
		}
	}
}

func TestValidateTimezone(t *testing.T) {
	if !ValidateTimezone("America/New_York") {
		t.Error("expected America/New_York to be valid")
	}
	if ValidateTimezone("Mars/Olympus") {
		t.Error("expected Mars/Olympus to be invalid")
	}
	if ValidateTimezone("") {
		t.Error("expected empty timezone to be invalid")
	}
}
