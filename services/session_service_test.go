package services

import (
	"testing"
	"time"

	"classquest_go/models"
)

func TestJoinRosterStatus(t *testing.T) {
	checkIn := time.Date(2026, 1, 6, 9, 30, 0, 0, time.UTC)
	records := []models.AttendanceRecord{
		{SessionID: 1, StudentID: 5, CheckInTime: checkIn, CheckInMethod: "qr"},
		{SessionID: 1, StudentID: 7, CheckInTime: checkIn.Add(time.Minute), CheckInMethod: "manual"},
	}

	statuses := joinRosterStatus([]uint{4, 5, 6, 7}, records)
	if len(statuses) != 4 {
		t.Fatalf("expected 4 statuses, got %d", len(statuses))
	}

	// Roster order is preserved regardless of record order.
	expOrder := []uint{4, 5, 6, 7}
	for i, id := range expOrder {
		if statuses[i].StudentID != id {
			t.Fatalf("position %d: expected student %d, got %d", i, id, statuses[i].StudentID)
		}
	}

	if statuses[0].CheckedIn || statuses[0].CheckInTime != nil {
		t.Fatalf("student 4 should not be checked in: %+v", statuses[0])
	}
	if !statuses[1].CheckedIn || statuses[1].Method != "qr" {
		t.Fatalf("student 5 should be checked in via qr: %+v", statuses[1])
	}
	if statuses[1].CheckInTime == nil || !statuses[1].CheckInTime.Equal(checkIn) {
		t.Fatalf("student 5 check-in time mismatch: %v", statuses[1].CheckInTime)
	}
	if !statuses[3].CheckedIn || statuses[3].Method != "manual" {
		t.Fatalf("student 7 should be checked in manually: %+v", statuses[3])
	}
}

func TestJoinRosterStatusEmptyRoster(t *testing.T) {
	statuses := joinRosterStatus(nil, []models.AttendanceRecord{{StudentID: 1}})
	if len(statuses) != 0 {
		t.Fatalf("expected no statuses for empty roster, got %d", len(statuses))
	}
}

func TestSessionIsExpired(t *testing.T) {
	ss := NewSessionService()
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name      string
		expiresAt *time.Time
		expired   bool
	}{
		{name: "no expiry set", expiresAt: nil, expired: false},
		{name: "expired an hour ago", expiresAt: &past, expired: true},
		{name: "still valid", expiresAt: &future, expired: false},
		{name: "expires exactly now", expiresAt: &now, expired: false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			session := &models.AttendanceSession{QRCodeExpiresAt: tc.expiresAt}
			if got := ss.IsExpired(session, now); got != tc.expired {
				t.Fatalf("expected expired=%v, got %v", tc.expired, got)
			}
		})
	}
}
