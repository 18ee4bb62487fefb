package controllers

import (
	"fmt"
	"strconv"
	"time"

	"classquest_go/database"
	"classquest_go/middleware"
	"classquest_go/models"
	"classquest_go/services"
	"classquest_go/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

// ExportController produces xlsx downloads for sessions and ledgers
type ExportController struct {
	sessions *services.SessionService
}

func NewExportController() *ExportController {
	return &ExportController{sessions: services.NewSessionService()}
}

// ExportSessionAttendance writes one attendance sheet for a session:
// every active student on one row with their check-in status.
func (ec *ExportController) ExportSessionAttendance(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid session ID",
		})
	}

	session, err := ec.sessions.Get(uint(id))
	if err != nil {
		return services.ErrorResponse(c, err)
	}

	var students []models.User
	if err := database.DB.Where("role = ? AND status = ?", "student", "active").
		Order("id ASC").Find(&students).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch students",
		})
	}

	roster := make([]uint, 0, len(students))
	byID := map[uint]models.User{}
	for _, s := range students {
		roster = append(roster, s.ID)
		byID[s.ID] = s
	}

	statuses, err := ec.sessions.AttendeesWithStatus(session.ID, roster)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch attendance",
		})
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := "Attendance"
	f.SetSheetName(f.GetSheetName(0), sheet)

	headers := []string{"Student ID", "Username", "Name", "Checked In", "Check-in Time", "Method"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, st := range statuses {
		student := byID[st.StudentID]
		checkedIn := "no"
		checkInTime := ""
		if st.CheckedIn {
			checkedIn = "yes"
			if st.CheckInTime != nil {
				checkInTime = st.CheckInTime.Format("2006-01-02 15:04:05")
			}
		}
		values := []interface{}{
			st.StudentID,
			student.Username,
			utils.DisplayName(student),
			checkedIn,
			checkInTime,
			st.Method,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate spreadsheet",
		})
	}

	middleware.LogActivity(c, "EXPORT", "attendance-sessions", session.ID, fiber.Map{
		"rows": len(statuses),
	})

	filename := fmt.Sprintf("attendance_%s_%d.xlsx", session.SessionDate.Format("2006-01-02"), session.ID)
	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(buf.Bytes())
}

// ExportLedger writes a student's full transaction history to a spreadsheet
func (ec *ExportController) ExportLedger(c *fiber.Ctx) error {
	studentID, err := strconv.ParseUint(c.Params("student_id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid student ID",
		})
	}

	var student models.User
	if err := database.DB.First(&student, uint(studentID)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Student not found",
		})
	}

	var transactions []models.PointsTransaction
	if err := database.DB.Where("student_id = ?", uint(studentID)).
		Order("created_at ASC").Find(&transactions).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch transactions",
		})
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := "Ledger"
	f.SetSheetName(f.GetSheetName(0), sheet)

	headers := []string{"Date", "Amount", "Balance", "Source", "Reason"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	running := 0
	for row, txn := range transactions {
		running += txn.Amount
		values := []interface{}{
			txn.CreatedAt.Format("2006-01-02 15:04:05"),
			txn.Amount,
			running,
			txn.Source,
			txn.Reason,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate spreadsheet",
		})
	}

	filename := fmt.Sprintf("ledger_%s_%s.xlsx", student.Username, time.Now().Format("2006-01-02"))
	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(buf.Bytes())
}
