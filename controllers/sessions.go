package controllers

import (
	"fmt"
	"strconv"
	"time"

	"classquest_go/database"
	"classquest_go/middleware"
	"classquest_go/models"
	"classquest_go/services"
	"classquest_go/services/notifications"
	"classquest_go/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type SessionController struct {
	sessions *services.SessionService
	checkins *services.CheckinService
	ledger   *services.LedgerService
}

func NewSessionController() *SessionController {
	return &SessionController{
		sessions: services.NewSessionService(),
		checkins: services.NewCheckinService(),
		ledger:   services.NewLedgerService(),
	}
}

// CreateSessionRequest represents the create session request body
type CreateSessionRequest struct {
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description"`
	SessionDate time.Time `json:"session_date" validate:"required"`
}

// CreateSession creates an attendance session with a fresh QR token
func (sc *SessionController) CreateSession(c *fiber.Ctx) error {
	var req CreateSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Title == "" || req.SessionDate.IsZero() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "title and session_date are required",
		})
	}

	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "User not found",
		})
	}

	session, err := sc.sessions.Create(req.Title, req.Description, req.SessionDate, user.ID)
	if err != nil {
		return services.ErrorResponse(c, err)
	}

	middleware.LogActivity(c, "CREATE", "sessions", session.ID, fiber.Map{
		"title":        session.Title,
		"session_date": session.SessionDate,
	})

	session.CreatedBy = *user
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Session created successfully",
		"session": utils.ToSessionDTO(*session, true),
	})
}

// GetSessions returns sessions with pagination
func (sc *SessionController) GetSessions(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))

	sessions, total, err := sc.sessions.List(limit, (page-1)*limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch sessions",
		})
	}

	claims, _ := middleware.GetCurrentClaims(c)
	includeToken := claims != nil && claims.Role != "student"

	dtos := make([]utils.SessionDTO, 0, len(sessions))
	for _, s := range sessions {
		dtos = append(dtos, utils.ToSessionDTO(s, includeToken))
	}

	return c.JSON(fiber.Map{
		"sessions": dtos,
		"pagination": fiber.Map{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// GetSession returns a session including its attendance records
func (sc *SessionController) GetSession(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid session ID",
		})
	}

	var session models.AttendanceSession
	if err := database.DB.Preload("CreatedBy").Preload("Attendances").
		Preload("Attendances.Student").First(&session, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Session not found",
		})
	}

	claims, _ := middleware.GetCurrentClaims(c)
	includeToken := claims != nil && claims.Role != "student"
	if !includeToken {
		session.QRCodeToken = ""
	}

	return c.JSON(fiber.Map{
		"session": session,
	})
}

// UpdateSession applies a patch to a session
func (sc *SessionController) UpdateSession(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid session ID",
		})
	}

	var patch services.SessionPatch
	if err := c.BodyParser(&patch); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	session, err := sc.sessions.Update(uint(id), patch)
	if err != nil {
		return services.ErrorResponse(c, err)
	}

	middleware.LogActivity(c, "UPDATE", "sessions", session.ID, patch)

	return c.JSON(fiber.Map{
		"message": "Session updated successfully",
		"session": session,
	})
}

// DeleteSession removes a session and its attendance records. Points already
// awarded stay on the ledger.
func (sc *SessionController) DeleteSession(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid session ID",
		})
	}

	if err := sc.sessions.Delete(uint(id)); err != nil {
		return services.ErrorResponse(c, err)
	}

	middleware.LogActivity(c, "DELETE", "sessions", uint(id), nil)

	return c.JSON(fiber.Map{
		"message": "Session deleted successfully",
	})
}

// CheckInRequest represents a manual or QR check-in request body
type CheckInRequest struct {
	StudentID uint   `json:"student_id" validate:"required"`
	Method    string `json:"method" validate:"required"`
}

// CheckIn records one student as present and awards attendance points
func (sc *SessionController) CheckIn(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid session ID",
		})
	}

	var req CheckInRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.StudentID == 0 || !utils.IsValidCheckInMethod(req.Method) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "student_id and a valid method (qr or manual) are required",
		})
	}

	// Students may only check themselves in, and only via QR
	claims, _ := middleware.GetCurrentClaims(c)
	if claims != nil && claims.Role == "student" {
		if req.StudentID != claims.UserID || req.Method != models.CheckInMethodQR {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Students can only QR check-in themselves",
			})
		}
	}

	record, err := sc.checkins.CheckIn(uint(id), req.StudentID, req.Method)
	if err != nil {
		return services.ErrorResponse(c, err)
	}

	middleware.LogActivity(c, "CREATE", "checkins", record.ID, fiber.Map{
		"session_id": record.SessionID,
		"student_id": record.StudentID,
		"method":     record.CheckInMethod,
	})
	sc.notifyAward(record.StudentID, services.AttendanceAward())

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Checked in successfully",
		"record":  record,
		"award":   services.AttendanceAward(),
	})
}

// UndoCheckIn removes a check-in and its points award
func (sc *SessionController) UndoCheckIn(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid session ID",
		})
	}
	studentID, err := strconv.ParseUint(c.Params("student_id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid student ID",
		})
	}

	if err := sc.checkins.UndoCheckIn(uint(id), uint(studentID)); err != nil {
		return services.ErrorResponse(c, err)
	}

	middleware.LogActivity(c, "DELETE", "checkins", uint(id), fiber.Map{
		"session_id": uint(id),
		"student_id": uint(studentID),
	})

	return c.JSON(fiber.Map{
		"message": "Check-in undone successfully",
	})
}

// BulkCheckInRequest represents the bulk check-in request body
type BulkCheckInRequest struct {
	StudentIDs []uint `json:"student_ids" validate:"required"`
}

// BulkCheckIn checks in a set of students; partial failure is reported, never raised
func (sc *SessionController) BulkCheckIn(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid session ID",
		})
	}

	var req BulkCheckInRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if len(req.StudentIDs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "student_ids is required",
		})
	}

	result, err := sc.checkins.BulkCheckIn(uint(id), req.StudentIDs)
	if err != nil {
		return services.ErrorResponse(c, err)
	}

	middleware.LogActivity(c, "CREATE", "checkins", uint(id), fiber.Map{
		"bulk":      true,
		"succeeded": len(result.Succeeded),
		"failed":    len(result.Failed),
	})
	for _, studentID := range result.Succeeded {
		sc.notifyAward(studentID, services.AttendanceAward())
	}

	return c.JSON(fiber.Map{
		"message": "Bulk check-in processed",
		"result":  result,
	})
}

// ScanQR handles a student scanning a session QR code. The token resolves the
// session; the check-in is always method qr for the authenticated student.
func (sc *SessionController) ScanQR(c *fiber.Ctx) error {
	token := c.Params("token")
	if token == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing QR token",
		})
	}

	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "User not found",
		})
	}
	if user.Role != "student" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Only students can scan a session QR code",
		})
	}

	session, err := sc.sessions.GetByToken(token)
	if err != nil {
		return services.ErrorResponse(c, err)
	}

	record, err := sc.checkins.CheckIn(session.ID, user.ID, models.CheckInMethodQR)
	if err != nil {
		return services.ErrorResponse(c, err)
	}

	middleware.LogActivity(c, "CREATE", "checkins", record.ID, fiber.Map{
		"session_id": record.SessionID,
		"student_id": record.StudentID,
		"method":     record.CheckInMethod,
	})
	sc.notifyAward(user.ID, services.AttendanceAward())

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Checked in successfully",
		"session": fiber.Map{"id": session.ID, "title": session.Title},
		"record":  record,
		"award":   services.AttendanceAward(),
	})
}

// GetAttendees joins the active student roster against the session's records
func (sc *SessionController) GetAttendees(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid session ID",
		})
	}

	roster, err := activeStudentIDs(c.Query("tutor_id"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch roster",
		})
	}

	statuses, err := sc.sessions.AttendeesWithStatus(uint(id), roster)
	if err != nil {
		return services.ErrorResponse(c, err)
	}

	count, err := sc.sessions.AttendanceCount(uint(id))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to count attendance",
		})
	}

	return c.JSON(fiber.Map{
		"attendees":        statuses,
		"attendance_count": count,
		"roster_size":      len(roster),
	})
}

// activeStudentIDs loads the ids of active students, optionally scoped to a tutor
func activeStudentIDs(tutorID string) ([]uint, error) {
	query := database.DB.Model(&models.User{}).
		Where("role = ? AND status = ?", "student", "active")
	if tutorID != "" {
		query = query.Where("tutor_id = ?", tutorID)
	}

	var ids []uint
	if err := query.Order("id ASC").Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// notifyAward pushes a points-award notification to the student
func (sc *SessionController) notifyAward(studentID uint, amount int) {
	svc := notifications.NewService()
	n := notifications.Queued(
		"Points awarded",
		fmt.Sprintf("You earned %d points for attendance", amount),
		"success", "normal", "line",
	)
	// Never fail a check-in over a notification
	if err := svc.EnqueueOrCreate([]uint{studentID}, n); err != nil {
		logrus.WithError(err).Warn("Failed to enqueue award notification")
	}
}
