package controllers

import (
	"strconv"
	"time"

	"classquest_go/middleware"
	"classquest_go/services"
	"classquest_go/utils"

	"github.com/gofiber/fiber/v2"
)

type ReportController struct {
	reports *services.ReportService
}

func NewReportController() *ReportController {
	return &ReportController{reports: services.NewReportService()}
}

// SubmitReportRequest represents the weekly report body
type SubmitReportRequest struct {
	Content string `json:"content" validate:"required"`
}

// SubmitReport stores the authenticated student's report for the current week
func (rc *ReportController) SubmitReport(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "User not found",
		})
	}
	if user.Role != "student" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Only students can submit weekly reports",
		})
	}

	var req SubmitReportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Content == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "content is required",
		})
	}

	report, err := rc.reports.Submit(user.ID, req.Content, time.Now())
	if err != nil {
		return services.ErrorResponse(c, err)
	}

	middleware.LogActivity(c, "CREATE", "weekly-reports", report.ID, fiber.Map{
		"week_start": report.WeekStart,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Report submitted successfully",
		"report":  report,
	})
}

// ReviewReportRequest represents the review body
type ReviewReportRequest struct {
	Score int `json:"score" validate:"required"`
}

// ReviewReport scores a submitted report and credits the points
func (rc *ReportController) ReviewReport(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid report ID",
		})
	}

	claims, err := middleware.GetCurrentClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var req ReviewReportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Score < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "score must not be negative",
		})
	}

	report, err := rc.reports.Review(uint(id), claims.UserID, req.Score)
	if err != nil {
		return services.ErrorResponse(c, err)
	}

	middleware.LogActivity(c, "UPDATE", "weekly-reports", report.ID, fiber.Map{
		"status": "reviewed",
		"score":  req.Score,
	})

	return c.JSON(fiber.Map{
		"message": "Report reviewed successfully",
		"report":  report,
	})
}

// GetReports lists reports. Students get their own history; staff get the
// current week by default or a specific week via ?week=YYYY-MM-DD.
func (rc *ReportController) GetReports(c *fiber.Ctx) error {
	claims, err := middleware.GetCurrentClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	if claims.Role == "student" {
		reports, err := rc.reports.ListForStudent(claims.UserID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to fetch reports",
			})
		}
		return c.JSON(fiber.Map{"reports": reports})
	}

	if studentID := c.Query("student_id"); studentID != "" {
		sid, err := strconv.ParseUint(studentID, 10, 32)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid student_id",
			})
		}
		reports, err := rc.reports.ListForStudent(uint(sid))
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to fetch reports",
			})
		}
		return c.JSON(fiber.Map{"reports": reports})
	}

	week := time.Now()
	if w := c.Query("week"); w != "" {
		parsed, err := time.Parse("2006-01-02", w)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid week format, expected YYYY-MM-DD",
			})
		}
		week = parsed
	}

	reports, err := rc.reports.ListForWeek(week)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch reports",
		})
	}

	return c.JSON(fiber.Map{
		"reports": reports,
	})
}

// GetMissingReports lists active students without a report for the week
func (rc *ReportController) GetMissingReports(c *fiber.Ctx) error {
	week := time.Now()
	if w := c.Query("week"); w != "" {
		parsed, err := time.Parse("2006-01-02", w)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid week format, expected YYYY-MM-DD",
			})
		}
		week = parsed
	}

	students, err := rc.reports.MissingForWeek(week)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch missing reports",
		})
	}

	missing := make([]fiber.Map, 0, len(students))
	for _, s := range students {
		missing = append(missing, fiber.Map{
			"id":       s.ID,
			"username": s.Username,
			"name":     utils.DisplayName(s),
			"tutor_id": s.TutorID,
		})
	}

	return c.JSON(fiber.Map{
		"students": missing,
		"count":    len(missing),
	})
}
