package utils

import (
	"testing"

	"classquest_go/models"
)

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name string
		user models.User
		exp  string
	}{
		{
			name: "nickname wins",
			user: models.User{Username: "alice01", FirstName: "Alice", LastName: "Smith", Nickname: "Ali"},
			exp:  "Ali",
		},
		{
			name: "full name when no nickname",
			user: models.User{Username: "alice01", FirstName: "Alice", LastName: "Smith"},
			exp:  "Alice Smith",
		},
		{
			name: "first name only",
			user: models.User{Username: "alice01", FirstName: "Alice"},
			exp:  "Alice",
		},
		{
			name: "username fallback",
			user: models.User{Username: "alice01"},
			exp:  "alice01",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := DisplayName(tc.user); got != tc.exp {
				t.Fatalf("expected %q, got %q", tc.exp, got)
			}
		})
	}
}
