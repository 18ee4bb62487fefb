package controllers

import (
	"strconv"

	"classquest_go/database"
	"classquest_go/middleware"
	"classquest_go/models"
	"classquest_go/services"
	"classquest_go/utils"

	"github.com/gofiber/fiber/v2"
)

type PointsController struct {
	ledger *services.LedgerService
}

func NewPointsController() *PointsController {
	return &PointsController{ledger: services.NewLedgerService()}
}

// GetBalance returns a student's current point balance from the ledger.
// Students may only query their own balance.
func (pc *PointsController) GetBalance(c *fiber.Ctx) error {
	studentID, err := strconv.ParseUint(c.Params("student_id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid student ID",
		})
	}

	claims, _ := middleware.GetCurrentClaims(c)
	if claims != nil && claims.Role == "student" && claims.UserID != uint(studentID) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Students can only view their own balance",
		})
	}

	balance, err := pc.ledger.Balance(uint(studentID))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to compute balance",
		})
	}

	return c.JSON(fiber.Map{
		"student_id": uint(studentID),
		"balance":    balance,
	})
}

// GetTransactions returns a student's ledger history, newest first
func (pc *PointsController) GetTransactions(c *fiber.Ctx) error {
	studentID, err := strconv.ParseUint(c.Params("student_id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid student ID",
		})
	}

	claims, _ := middleware.GetCurrentClaims(c)
	if claims != nil && claims.Role == "student" && claims.UserID != uint(studentID) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Students can only view their own transactions",
		})
	}

	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "50"))

	entries, total, err := pc.ledger.Transactions(uint(studentID), limit, (page-1)*limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch transactions",
		})
	}

	dtos := make([]utils.TransactionDTO, 0, len(entries))
	for _, entry := range entries {
		dtos = append(dtos, utils.ToTransactionDTO(entry))
	}

	return c.JSON(fiber.Map{
		"transactions": dtos,
		"pagination": fiber.Map{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// AwardRequest represents a manual award or penalty request body
type AwardRequest struct {
	StudentID     uint   `json:"student_id" validate:"required"`
	Amount        int    `json:"amount"`
	Reason        string `json:"reason"`
	PointReasonID *uint  `json:"point_reason_id"`
}

// Award appends a manual ledger row. Either a preset point reason or an
// explicit amount must be supplied; the preset wins when both are present.
func (pc *PointsController) Award(c *fiber.Ctx) error {
	var req AwardRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.StudentID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "student_id is required",
		})
	}

	amount := req.Amount
	reason := req.Reason
	if req.PointReasonID != nil {
		var preset models.PointReason
		if err := database.DB.Where("id = ? AND active = ?", *req.PointReasonID, true).First(&preset).Error; err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Point reason not found",
			})
		}
		amount = preset.Amount
		if preset.Category == "penalty" && amount > 0 {
			amount = -amount
		}
		if reason == "" {
			reason = preset.Name
		}
	}
	if amount == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "amount or point_reason_id is required",
		})
	}

	source := models.SourceAdminAward
	if amount < 0 {
		source = models.SourcePenalty
	}

	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "User not found",
		})
	}

	createdBy := user.ID
	entry, err := pc.ledger.Append(req.StudentID, amount, reason, source, nil, &createdBy)
	if err != nil {
		return services.ErrorResponse(c, err)
	}

	middleware.LogActivity(c, "CREATE", "points", entry.ID, fiber.Map{
		"student_id": req.StudentID,
		"amount":     amount,
		"source":     source,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":     "Points recorded successfully",
		"transaction": utils.ToTransactionDTO(*entry),
	})
}
