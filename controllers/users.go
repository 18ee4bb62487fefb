package controllers

import (
	"errors"
	"strconv"

	"classquest_go/database"
	"classquest_go/middleware"
	"classquest_go/models"
	"classquest_go/storage"
	"classquest_go/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type UserController struct{}

// GetUsers returns all users with pagination. The student roster for the bulk
// check-in screen comes through here as ?role=student.
func (uc *UserController) GetUsers(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	offset := (page - 1) * limit

	var users []models.User
	var total int64

	// Build query
	query := database.DB.Model(&models.User{})

	// Filter by role if specified
	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}

	// Filter by tutor if specified
	if tutorID := c.Query("tutor_id"); tutorID != "" {
		query = query.Where("tutor_id = ?", tutorID)
	}

	// Filter by status
	status := c.Query("status", "active")
	query = query.Where("status = ?", status)

	// Get total count
	query.Count(&total)

	// Get users with pagination
	if err := query.Preload("Tutor").
		Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch users",
		})
	}

	return c.JSON(fiber.Map{
		"users": users,
		"pagination": fiber.Map{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// GetUser returns a specific user by ID
func (uc *UserController) GetUser(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid user ID",
		})
	}

	var user models.User
	if err := database.DB.Preload("Tutor").First(&user, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	}

	return c.JSON(fiber.Map{
		"user": user,
	})
}

// UpdateUser updates an existing user
func (uc *UserController) UpdateUser(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid user ID",
		})
	}

	var user models.User
	if err := database.DB.First(&user, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	}

	var updateData struct {
		Username  string `json:"username"`
		Email     string `json:"email"`
		Phone     string `json:"phone"`
		LineID    string `json:"line_id"`
		Role      string `json:"role"`
		Status    string `json:"status"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Nickname  string `json:"nickname"`
		TutorID   *uint  `json:"tutor_id"`
	}

	if err := c.BodyParser(&updateData); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	// Validate role if provided
	if updateData.Role != "" && !utils.IsValidRole(updateData.Role) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid role",
		})
	}

	// Validate status if provided
	if updateData.Status != "" && !utils.IsValidStatus(updateData.Status) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid status",
		})
	}

	// Update user
	if err := database.DB.Model(&user).Updates(updateData).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update user",
		})
	}

	// Load relationships
	database.DB.Preload("Tutor").First(&user, user.ID)

	// Log activity
	middleware.LogActivity(c, "UPDATE", "users", user.ID, updateData)

	return c.JSON(fiber.Map{
		"message": "User updated successfully",
		"user":    user,
	})
}

// DeleteUser deletes a user
func (uc *UserController) DeleteUser(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid user ID",
		})
	}

	user, err := deleteUser(database.DB, uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "User not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete user",
		})
	}

	// Log activity
	middleware.LogActivity(c, "DELETE", "users", user.ID, user)

	return c.JSON(fiber.Map{
		"message": "User deleted successfully",
	})
}

// deleteUser hard-deletes the account so its username and email leave the
// unique indexes and can be reused. Ledger and attendance rows keep the bare
// user id for history.
func deleteUser(db *gorm.DB, id uint) (*models.User, error) {
	var user models.User
	if err := db.First(&user, id).Error; err != nil {
		return nil, err
	}
	if err := db.Unscoped().Delete(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UploadAvatar uploads an avatar for a user
func (uc *UserController) UploadAvatar(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid user ID",
		})
	}

	var user models.User
	if err := database.DB.First(&user, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	}

	// Get uploaded file
	file, err := c.FormFile("avatar")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No file uploaded",
		})
	}

	// Initialize storage service
	storageService, err := storage.NewStorageService()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Storage service initialization failed",
		})
	}

	// Upload file
	avatarURL, err := storageService.UploadFile(file, "avatars", user.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to upload avatar",
		})
	}

	// Delete old avatar if exists
	if user.Avatar != "" {
		go storageService.DeleteFile(user.Avatar)
	}

	// Update user avatar
	if err := database.DB.Model(&user).Update("avatar", avatarURL).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update user avatar",
		})
	}

	// Log activity
	middleware.LogActivity(c, "UPDATE", "users", user.ID, fiber.Map{
		"action": "avatar_upload",
		"avatar": avatarURL,
	})

	return c.JSON(fiber.Map{
		"message": "Avatar uploaded successfully",
		"avatar":  avatarURL,
	})
}
