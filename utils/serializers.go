package utils

import (
	"strings"
	"time"

	"classquest_go/models"
)

// Compact representations used across APIs
type UserShort struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Nickname  string `json:"nickname,omitempty"`
	Role      string `json:"role,omitempty"`
}

// ToUserShort maps a models.User to the compact DTO.
func ToUserShort(u models.User) UserShort {
	return UserShort{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Nickname:  u.Nickname,
		Role:      u.Role,
	}
}

// DisplayName returns a best-effort human name for a user
func DisplayName(u models.User) string {
	if u.Nickname != "" {
		return u.Nickname
	}
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name != "" {
		return name
	}
	return u.Username
}

type SessionDTO struct {
	ID              uint       `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	SessionDate     time.Time  `json:"session_date"`
	QRCodeToken     string     `json:"qr_code_token,omitempty"`
	QRCodeExpiresAt *time.Time `json:"qr_code_expires_at,omitempty"`
	CreatedBy       UserShort  `json:"created_by"`
	AttendanceCount int        `json:"attendance_count"`
	CreatedAt       time.Time  `json:"created_at"`
}

// ToSessionDTO maps a session to its API shape. The QR token is only included
// when includeToken is set; students listing sessions never see it.
func ToSessionDTO(s models.AttendanceSession, includeToken bool) SessionDTO {
	dto := SessionDTO{
		ID:              s.ID,
		Title:           s.Title,
		Description:     s.Description,
		SessionDate:     s.SessionDate,
		QRCodeExpiresAt: s.QRCodeExpiresAt,
		CreatedBy:       ToUserShort(s.CreatedBy),
		AttendanceCount: len(s.Attendances),
		CreatedAt:       s.CreatedAt,
	}
	if includeToken {
		dto.QRCodeToken = s.QRCodeToken
	}
	return dto
}

type TransactionDTO struct {
	ID               uint      `json:"id"`
	StudentID        uint      `json:"student_id"`
	Amount           int       `json:"amount"`
	Reason           string    `json:"reason,omitempty"`
	Source           string    `json:"source"`
	RelatedSessionID *uint     `json:"related_session_id,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// ToTransactionDTO maps a ledger row to its API shape.
func ToTransactionDTO(t models.PointsTransaction) TransactionDTO {
	return TransactionDTO{
		ID:               t.ID,
		StudentID:        t.StudentID,
		Amount:           t.Amount,
		Reason:           t.Reason,
		Source:           t.Source,
		RelatedSessionID: t.RelatedSessionID,
		CreatedAt:        t.CreatedAt,
	}
}
