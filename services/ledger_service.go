package services

import (
	"errors"

	"classquest_go/database"
	"classquest_go/models"

	"gorm.io/gorm"
)

// LedgerService owns the append-only points ledger. Balances are derived with
// SUM over the transaction rows on every read; nothing else in the system is
// allowed to write balance state.
type LedgerService struct{}

func NewLedgerService() *LedgerService {
	return &LedgerService{}
}

// Append writes one ledger row. The resulting balance may go negative; the
// ledger itself enforces no floor.
func (ls *LedgerService) Append(studentID uint, amount int, reason, source string, relatedSessionID, createdByID *uint) (*models.PointsTransaction, error) {
	return ls.AppendTx(database.DB, studentID, amount, reason, source, relatedSessionID, createdByID)
}

// AppendTx is Append running inside the caller's transaction, so a ledger row
// can be committed atomically with the domain record that caused it.
func (ls *LedgerService) AppendTx(tx *gorm.DB, studentID uint, amount int, reason, source string, relatedSessionID, createdByID *uint) (*models.PointsTransaction, error) {
	var student models.User
	if err := tx.Where("id = ? AND role = ?", studentID, "student").First(&student).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}

	entry := models.PointsTransaction{
		StudentID:        studentID,
		Amount:           amount,
		Reason:           reason,
		Source:           source,
		RelatedSessionID: relatedSessionID,
		CreatedByID:      createdByID,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// Balance returns the student's current balance as SUM(amount) over their rows.
func (ls *LedgerService) Balance(studentID uint) (int, error) {
	var balance int64
	err := database.DB.Model(&models.PointsTransaction{}).
		Where("student_id = ?", studentID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&balance).Error
	if err != nil {
		return 0, err
	}
	return int(balance), nil
}

// Transactions returns a student's ledger rows, newest first.
func (ls *LedgerService) Transactions(studentID uint, limit, offset int) ([]models.PointsTransaction, int64, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var total int64
	query := database.DB.Model(&models.PointsTransaction{}).Where("student_id = ?", studentID)
	query.Count(&total)

	var entries []models.PointsTransaction
	if err := query.Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// ReverseAttendanceAward removes the attendance award row for the
// (student, session) pair inside the caller's transaction. Attendance undo
// deletes the pair rather than appending a compensating entry, so the ledger
// reads as if the check-in never happened.
func (ls *LedgerService) ReverseAttendanceAward(tx *gorm.DB, studentID, sessionID uint) error {
	result := tx.Unscoped().
		Where("student_id = ? AND source = ? AND related_session_id = ?", studentID, models.SourceAttendance, sessionID).
		Delete(&models.PointsTransaction{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTransactionNotFound
	}
	return nil
}
