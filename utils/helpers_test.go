package utils

import (
	"testing"
	"time"
)

func TestStartOfWeek(t *testing.T) {
	tests := []struct {
		name  string
		input time.Time
		exp   time.Time
	}{
		{
			name:  "monday maps to itself",
			input: time.Date(2026, 1, 5, 14, 30, 0, 0, time.UTC),
			exp:   time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "wednesday maps to the preceding monday",
			input: time.Date(2026, 1, 7, 9, 0, 0, 0, time.UTC),
			exp:   time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "sunday belongs to the week started the previous monday",
			input: time.Date(2026, 1, 11, 23, 59, 0, 0, time.UTC),
			exp:   time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "week spanning a month boundary",
			input: time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC), // Sunday
			exp:   time.Date(2026, 1, 26, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := StartOfWeek(tc.input); !got.Equal(tc.exp) {
				t.Fatalf("expected %v, got %v", tc.exp, got)
			}
		})
	}
}

func TestEndOfWeek(t *testing.T) {
	input := time.Date(2026, 1, 7, 9, 0, 0, 0, time.UTC)
	exp := time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC)
	if got := EndOfWeek(input); !got.Equal(exp) {
		t.Fatalf("expected %v, got %v", exp, got)
	}
}

func TestIsValidRole(t *testing.T) {
	valid := []string{"admin", "tutor", "student"}
	for _, role := range valid {
		if !IsValidRole(role) {
			t.Fatalf("expected %q to be valid", role)
		}
	}
	invalid := []string{"", "coach", "Admin", "superuser"}
	for _, role := range invalid {
		if IsValidRole(role) {
			t.Fatalf("expected %q to be invalid", role)
		}
	}
}

func TestIsValidCheckInMethod(t *testing.T) {
	if !IsValidCheckInMethod("qr") || !IsValidCheckInMethod("manual") {
		t.Fatalf("qr and manual should be valid methods")
	}
	if IsValidCheckInMethod("") || IsValidCheckInMethod("auto") {
		t.Fatalf("unexpected method accepted")
	}
}

func TestGenerateRandomString(t *testing.T) {
	s, err := GenerateRandomString(16)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s) != 16 {
		t.Fatalf("expected length 16, got %d", len(s))
	}

	other, err := GenerateRandomString(16)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s == other {
		t.Fatalf("two random strings should differ")
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("password123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := CheckPassword("password123", hash); err != nil {
		t.Fatalf("correct password rejected: %v", err)
	}
	if err := CheckPassword("wrong", hash); err == nil {
		t.Fatalf("wrong password accepted")
	}
}

func TestIsValidFileExtension(t *testing.T) {
	allowed := []string{"jpg", "png"}
	if !IsValidFileExtension("photo.JPG", allowed) {
		t.Fatalf("extension match should be case-insensitive")
	}
	if IsValidFileExtension("archive.zip", allowed) {
		t.Fatalf("disallowed extension accepted")
	}
	if IsValidFileExtension("noextension", allowed) || IsValidFileExtension("", allowed) {
		t.Fatalf("filename without extension accepted")
	}
}

func TestSanitizeString(t *testing.T) {
	if got := SanitizeString("  hello\x00 world  "); got != "hello world" {
		t.Fatalf("unexpected sanitized value: %q", got)
	}
}
