package controllers

import (
	"errors"
	"strconv"

	"classquest_go/database"
	"classquest_go/middleware"
	"classquest_go/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type PointReasonController struct{}

// GetPointReasons returns preset reasons, optionally filtered by category
func (pr *PointReasonController) GetPointReasons(c *fiber.Ctx) error {
	query := database.DB.Model(&models.PointReason{})

	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if c.Query("include_inactive") != "true" {
		query = query.Where("active = ?", true)
	}

	var reasons []models.PointReason
	if err := query.Order("name ASC").Find(&reasons).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch point reasons",
		})
	}

	return c.JSON(fiber.Map{
		"reasons": reasons,
	})
}

// CreatePointReason creates a preset reason
func (pr *PointReasonController) CreatePointReason(c *fiber.Ctx) error {
	var reason models.PointReason
	if err := c.BodyParser(&reason); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if reason.Name == "" || reason.Amount == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "name and a non-zero amount are required",
		})
	}
	if reason.Category != "award" && reason.Category != "penalty" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "category must be award or penalty",
		})
	}

	if err := database.DB.Create(&reason).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create point reason",
		})
	}

	middleware.LogActivity(c, "CREATE", "point-reasons", reason.ID, reason)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Point reason created successfully",
		"reason":  reason,
	})
}

// UpdatePointReason updates a preset reason
func (pr *PointReasonController) UpdatePointReason(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid point reason ID",
		})
	}

	var reason models.PointReason
	if err := database.DB.First(&reason, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Point reason not found",
		})
	}

	var updateData struct {
		Name     string `json:"name"`
		Amount   *int   `json:"amount"`
		Category string `json:"category"`
		Active   *bool  `json:"active"`
	}
	if err := c.BodyParser(&updateData); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	updates := map[string]interface{}{}
	if updateData.Name != "" {
		updates["name"] = updateData.Name
	}
	if updateData.Amount != nil {
		updates["amount"] = *updateData.Amount
	}
	if updateData.Category != "" {
		if updateData.Category != "award" && updateData.Category != "penalty" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "category must be award or penalty",
			})
		}
		updates["category"] = updateData.Category
	}
	if updateData.Active != nil {
		updates["active"] = *updateData.Active
	}

	if err := database.DB.Model(&reason).Updates(updates).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update point reason",
		})
	}

	middleware.LogActivity(c, "UPDATE", "point-reasons", reason.ID, updates)

	return c.JSON(fiber.Map{
		"message": "Point reason updated successfully",
		"reason":  reason,
	})
}

// DeletePointReason removes a preset reason
func (pr *PointReasonController) DeletePointReason(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid point reason ID",
		})
	}

	reason, err := deletePointReason(database.DB, uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Point reason not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete point reason",
		})
	}

	middleware.LogActivity(c, "DELETE", "point-reasons", reason.ID, reason)

	return c.JSON(fiber.Map{
		"message": "Point reason deleted successfully",
	})
}

// deletePointReason hard-deletes the reason. A soft-deleted row would keep
// its name locked in the unique index and block recreating the preset.
func deletePointReason(db *gorm.DB, id uint) (*models.PointReason, error) {
	var reason models.PointReason
	if err := db.First(&reason, id).Error; err != nil {
		return nil, err
	}
	if err := db.Unscoped().Delete(&reason).Error; err != nil {
		return nil, err
	}
	return &reason, nil
}
