package services

import (
	"errors"
	"time"

	"classquest_go/database"
	"classquest_go/models"
	"classquest_go/utils"

	"gorm.io/gorm"
)

// SessionService owns the attendance-session lifecycle: creation with a fresh
// QR token, expiry checks, and cascade deletion of attendance records.
type SessionService struct{}

func NewSessionService() *SessionService {
	return &SessionService{}
}

// SessionPatch carries the updatable session fields.
type SessionPatch struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	SessionDate *time.Time `json:"session_date"`
}

// Create stores a new session with a fresh QR token that expires at the end
// of the week covering the session date.
func (ss *SessionService) Create(title, description string, sessionDate time.Time, issuerID uint) (*models.AttendanceSession, error) {
	token, err := utils.GenerateRandomString(32)
	if err != nil {
		return nil, err
	}

	expiresAt := utils.EndOfWeek(sessionDate)
	session := models.AttendanceSession{
		Title:           title,
		Description:     description,
		SessionDate:     sessionDate,
		QRCodeToken:     token,
		QRCodeExpiresAt: &expiresAt,
		CreatedByID:     issuerID,
	}
	if err := database.DB.Create(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// Get loads a session by id.
func (ss *SessionService) Get(id uint) (*models.AttendanceSession, error) {
	var session models.AttendanceSession
	if err := database.DB.First(&session, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

// GetByToken resolves a session from a scanned QR token.
func (ss *SessionService) GetByToken(token string) (*models.AttendanceSession, error) {
	var session models.AttendanceSession
	if err := database.DB.Where("qr_code_token = ?", token).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

// IsExpired reports whether the session's QR token has passed its expiry.
func (ss *SessionService) IsExpired(session *models.AttendanceSession, now time.Time) bool {
	return session.QRCodeExpiresAt != nil && now.After(*session.QRCodeExpiresAt)
}

// Update applies a patch. Changing the session date moves the QR expiry to the
// end of the new date's week.
func (ss *SessionService) Update(id uint, patch SessionPatch) (*models.AttendanceSession, error) {
	session, err := ss.Get(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if patch.Title != nil {
		updates["title"] = *patch.Title
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.SessionDate != nil {
		updates["session_date"] = *patch.SessionDate
		updates["qr_code_expires_at"] = utils.EndOfWeek(*patch.SessionDate)
	}
	if len(updates) == 0 {
		return session, nil
	}

	if err := database.DB.Model(session).Updates(updates).Error; err != nil {
		return nil, err
	}
	return ss.Get(id)
}

// Delete removes a session and cascades its attendance records. Ledger rows
// are left alone: points already awarded survive session deletion unless
// explicitly undone beforehand.
func (ss *SessionService) Delete(id uint) error {
	if _, err := ss.Get(id); err != nil {
		return err
	}

	return database.DB.Transaction(func(tx *gorm.DB) error {
		// Hard deletes: soft-deleted rows would still occupy the
		// (session_id, student_id) unique index.
		if err := tx.Unscoped().Where("session_id = ?", id).Delete(&models.AttendanceRecord{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&models.AttendanceSession{}, id).Error
	})
}

// List returns sessions, newest session date first.
func (ss *SessionService) List(limit, offset int) ([]models.AttendanceSession, int64, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var total int64
	database.DB.Model(&models.AttendanceSession{}).Count(&total)

	var sessions []models.AttendanceSession
	if err := database.DB.Preload("CreatedBy").Preload("Attendances").
		Order("session_date DESC").Offset(offset).Limit(limit).
		Find(&sessions).Error; err != nil {
		return nil, 0, err
	}
	return sessions, total, nil
}

// AttendanceCount reports how many students have checked in to a session.
func (ss *SessionService) AttendanceCount(sessionID uint) (int, error) {
	var count int64
	err := database.DB.Model(&models.AttendanceRecord{}).
		Where("session_id = ?", sessionID).Count(&count).Error
	return int(count), err
}

// AttendeeStatus is one roster row in the check-in overview.
type AttendeeStatus struct {
	StudentID   uint       `json:"student_id"`
	CheckedIn   bool       `json:"checked_in"`
	CheckInTime *time.Time `json:"check_in_time,omitempty"`
	Method      string     `json:"method,omitempty"`
}

// AttendeesWithStatus joins a roster against the session's attendance records.
func (ss *SessionService) AttendeesWithStatus(sessionID uint, roster []uint) ([]AttendeeStatus, error) {
	if _, err := ss.Get(sessionID); err != nil {
		return nil, err
	}

	var records []models.AttendanceRecord
	if err := database.DB.Where("session_id = ?", sessionID).Find(&records).Error; err != nil {
		return nil, err
	}
	return joinRosterStatus(roster, records), nil
}

// joinRosterStatus merges the roster with attendance records, preserving
// roster order. Pure so it can be tested without a database.
func joinRosterStatus(roster []uint, records []models.AttendanceRecord) []AttendeeStatus {
	byStudent := make(map[uint]models.AttendanceRecord, len(records))
	for _, rec := range records {
		byStudent[rec.StudentID] = rec
	}

	statuses := make([]AttendeeStatus, 0, len(roster))
	for _, studentID := range roster {
		status := AttendeeStatus{StudentID: studentID}
		if rec, ok := byStudent[studentID]; ok {
			t := rec.CheckInTime
			status.CheckedIn = true
			status.CheckInTime = &t
			status.Method = rec.CheckInMethod
		}
		statuses = append(statuses, status)
	}
	return statuses
}
