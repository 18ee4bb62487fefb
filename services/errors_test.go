package services

import (
	"errors"
	"fmt"
	"testing"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		exp  int
	}{
		{name: "session not found", err: ErrSessionNotFound, exp: 404},
		{name: "student not found", err: ErrStudentNotFound, exp: 404},
		{name: "not checked in", err: ErrNotCheckedIn, exp: 404},
		{name: "already checked in", err: ErrAlreadyCheckedIn, exp: 409},
		{name: "already participated", err: ErrAlreadyParticipated, exp: 409},
		{name: "report exists", err: ErrReportExists, exp: 409},
		{name: "session expired", err: ErrSessionExpired, exp: 410},
		{name: "item unavailable", err: ErrItemUnavailable, exp: 422},
		{name: "insufficient stock", err: ErrInsufficientStock, exp: 422},
		{name: "insufficient balance", err: ErrInsufficientBalance, exp: 422},
		{name: "unknown error", err: errors.New("boom"), exp: 500},
		{name: "wrapped domain error", err: fmt.Errorf("check-in: %w", ErrAlreadyCheckedIn), exp: 409},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := StatusCode(tc.err); got != tc.exp {
				t.Fatalf("expected status %d, got %d", tc.exp, got)
			}
		})
	}
}
