package services

import (
	"errors"
	"fmt"
	"time"

	"classquest_go/database"
	"classquest_go/models"
	"classquest_go/utils"

	"gorm.io/gorm"
)

// ReportService handles weekly activity reports: one submission per student
// per week, scored by a tutor, with the score landing in the points ledger.
type ReportService struct {
	ledger *LedgerService
}

func NewReportService() *ReportService {
	return &ReportService{ledger: NewLedgerService()}
}

// Submit stores this week's report for a student. The (student, week_start)
// unique index rejects a second submission.
func (rs *ReportService) Submit(studentID uint, content string, now time.Time) (*models.WeeklyReport, error) {
	report := models.WeeklyReport{
		StudentID: studentID,
		WeekStart: utils.StartOfWeek(now),
		Content:   content,
		Status:    "submitted",
	}
	if err := database.DB.Create(&report).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrReportExists
		}
		return nil, err
	}
	return &report, nil
}

// Review scores a submitted report. The status flip and the ledger row commit
// together so a crash can't leave a reviewed report without its points.
func (rs *ReportService) Review(reportID, reviewerID uint, score int) (*models.WeeklyReport, error) {
	var report models.WeeklyReport
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(lockForUpdate()).First(&report, reportID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReportNotFound
			}
			return err
		}
		if report.Status == "reviewed" {
			return ErrReportReviewed
		}

		now := time.Now()
		updates := map[string]interface{}{
			"status":         "reviewed",
			"score":          score,
			"reviewed_by_id": reviewerID,
			"reviewed_at":    now,
		}
		if err := tx.Model(&report).Updates(updates).Error; err != nil {
			return err
		}

		_, err := rs.ledger.AppendTx(tx, report.StudentID, score,
			fmt.Sprintf("Weekly report %s", report.WeekStart.Format("2006-01-02")),
			models.SourceReport, nil, &reviewerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// ListForWeek returns all reports for the week containing t.
func (rs *ReportService) ListForWeek(t time.Time) ([]models.WeeklyReport, error) {
	weekStart := utils.StartOfWeek(t)
	var reports []models.WeeklyReport
	err := database.DB.Preload("Student").Preload("ReviewedBy").
		Where("week_start = ?", weekStart).
		Order("created_at ASC").Find(&reports).Error
	return reports, err
}

// ListForStudent returns a student's report history, newest week first.
func (rs *ReportService) ListForStudent(studentID uint) ([]models.WeeklyReport, error) {
	var reports []models.WeeklyReport
	err := database.DB.Where("student_id = ?", studentID).
		Order("week_start DESC").Find(&reports).Error
	return reports, err
}

// MissingForWeek returns active students with no report for the week
// containing t. Used by the reminder crons and the missing-reports endpoint.
func (rs *ReportService) MissingForWeek(t time.Time) ([]models.User, error) {
	weekStart := utils.StartOfWeek(t)
	var students []models.User
	err := database.DB.
		Where("role = ? AND status = ?", "student", "active").
		Where("id NOT IN (?)", database.DB.Model(&models.WeeklyReport{}).
			Select("student_id").Where("week_start = ?", weekStart)).
		Find(&students).Error
	return students, err
}
