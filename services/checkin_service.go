package services

import (
	"errors"
	"time"

	"classquest_go/config"
	"classquest_go/database"
	"classquest_go/models"

	"gorm.io/gorm"
)

// CheckinService coordinates attendance records and their paired ledger rows.
// The record insert and the points append always commit as one transaction:
// either both exist or neither does. Duplicate check-ins are rejected by the
// (session_id, student_id) unique index, not by a read-then-insert check, so
// two concurrent calls for the same pair produce exactly one winner.
type CheckinService struct {
	sessions *SessionService
	ledger   *LedgerService
}

func NewCheckinService() *CheckinService {
	return &CheckinService{
		sessions: NewSessionService(),
		ledger:   NewLedgerService(),
	}
}

// AttendanceAward returns the configured fixed points award per check-in.
func AttendanceAward() int {
	if config.AppConfig != nil && config.AppConfig.AttendanceAward > 0 {
		return config.AppConfig.AttendanceAward
	}
	return 30
}

// CheckIn records a student as present and awards the fixed attendance points.
// Only QR check-ins are gated by token expiry; a tutor's manual check-in
// bypasses it.
func (cs *CheckinService) CheckIn(sessionID, studentID uint, method string) (*models.AttendanceRecord, error) {
	session, err := cs.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	if method == models.CheckInMethodQR && cs.sessions.IsExpired(session, time.Now()) {
		return nil, ErrSessionExpired
	}

	record := models.AttendanceRecord{
		SessionID:     sessionID,
		StudentID:     studentID,
		CheckInTime:   time.Now(),
		CheckInMethod: method,
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&record).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyCheckedIn
			}
			return err
		}

		relatedSessionID := sessionID
		_, err := cs.ledger.AppendTx(tx, studentID, AttendanceAward(),
			"Attendance check-in: "+session.Title, models.SourceAttendance, &relatedSessionID, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// UndoCheckIn removes the attendance record and its award row as one unit,
// returning balance and record state to exactly what they were before the
// check-in.
func (cs *CheckinService) UndoCheckIn(sessionID, studentID uint) error {
	if _, err := cs.sessions.Get(sessionID); err != nil {
		return err
	}

	return database.DB.Transaction(func(tx *gorm.DB) error {
		// Hard delete: a soft-deleted row would keep occupying the unique
		// index and block the student from checking in again.
		result := tx.Unscoped().
			Where("session_id = ? AND student_id = ?", sessionID, studentID).
			Delete(&models.AttendanceRecord{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotCheckedIn
		}

		return cs.ledger.ReverseAttendanceAward(tx, studentID, sessionID)
	})
}

// BulkResult reports the per-student outcome of a bulk check-in.
type BulkResult struct {
	Succeeded []uint        `json:"succeeded"`
	Failed    []BulkFailure `json:"failed"`
}

// BulkFailure names one student whose check-in was rejected and why.
type BulkFailure struct {
	StudentID uint   `json:"student_id"`
	Reason    string `json:"reason"`
}

// BulkCheckIn applies CheckIn independently per student. One student failing
// (typically already checked in) never aborts the batch; the split result is
// always returned.
func (cs *CheckinService) BulkCheckIn(sessionID uint, studentIDs []uint) (*BulkResult, error) {
	if _, err := cs.sessions.Get(sessionID); err != nil {
		return nil, err
	}

	result := &BulkResult{Succeeded: []uint{}, Failed: []BulkFailure{}}
	for _, studentID := range dedupeIDs(studentIDs) {
		if _, err := cs.CheckIn(sessionID, studentID, models.CheckInMethodManual); err != nil {
			result.Failed = append(result.Failed, BulkFailure{StudentID: studentID, Reason: err.Error()})
			continue
		}
		result.Succeeded = append(result.Succeeded, studentID)
	}
	return result, nil
}

// dedupeIDs drops repeated ids while keeping first-seen order, so a roster
// with duplicates cannot double-report a student in the bulk result.
func dedupeIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
