package controllers

import (
	"strconv"

	"classquest_go/database"
	"classquest_go/middleware"
	"classquest_go/models"
	"classquest_go/services"
	"classquest_go/storage"

	"github.com/gofiber/fiber/v2"
)

type StoreController struct {
	redemptions *services.RedemptionService
}

func NewStoreController() *StoreController {
	return &StoreController{redemptions: services.NewRedemptionService()}
}

// GetStoreItems returns store items; students only see active ones
func (st *StoreController) GetStoreItems(c *fiber.Ctx) error {
	query := database.DB.Model(&models.StoreItem{})

	claims, _ := middleware.GetCurrentClaims(c)
	if claims == nil || claims.Role == "student" || c.Query("include_inactive") != "true" {
		query = query.Where("active = ?", true)
	}

	var items []models.StoreItem
	if err := query.Order("price ASC").Find(&items).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch store items",
		})
	}

	return c.JSON(fiber.Map{
		"items": items,
	})
}

// CreateStoreItem creates a store item
func (st *StoreController) CreateStoreItem(c *fiber.Ctx) error {
	var item models.StoreItem
	if err := c.BodyParser(&item); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if item.Name == "" || item.Price <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "name and a positive price are required",
		})
	}

	if err := database.DB.Create(&item).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create store item",
		})
	}

	middleware.LogActivity(c, "CREATE", "store-items", item.ID, item)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Store item created successfully",
		"item":    item,
	})
}

// UpdateStoreItem updates a store item
func (st *StoreController) UpdateStoreItem(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid store item ID",
		})
	}

	var item models.StoreItem
	if err := database.DB.First(&item, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Store item not found",
		})
	}

	var updateData struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Price       *int   `json:"price"`
		Stock       *int   `json:"stock"`
		Active      *bool  `json:"active"`
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
	if updateData.Description != "" {
		updates["description"] = updateData.Description
	}
	if updateData.Price != nil {
		updates["price"] = *updateData.Price
	}
	if updateData.Stock != nil {
		updates["stock"] = *updateData.Stock
	}
	if updateData.Active != nil {
		updates["active"] = *updateData.Active
	}

	if err := database.DB.Model(&item).Updates(updates).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update store item",
		})
	}

	middleware.LogActivity(c, "UPDATE", "store-items", item.ID, updates)

	return c.JSON(fiber.Map{
		"message": "Store item updated successfully",
		"item":    item,
	})
}

// DeleteStoreItem removes a store item
func (st *StoreController) DeleteStoreItem(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid store item ID",
		})
	}

	var item models.StoreItem
	if err := database.DB.First(&item, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Store item not found",
		})
	}

	if err := database.DB.Delete(&item).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete store item",
		})
	}

	middleware.LogActivity(c, "DELETE", "store-items", item.ID, item)

	return c.JSON(fiber.Map{
		"message": "Store item deleted successfully",
	})
}

// UploadItemImage uploads a product image for a store item
func (st *StoreController) UploadItemImage(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid store item ID",
		})
	}

	var item models.StoreItem
	if err := database.DB.First(&item, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Store item not found",
		})
	}

	file, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No file uploaded",
		})
	}

	storageService, err := storage.NewStorageService()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Storage service initialization failed",
		})
	}

	imageURL, err := storageService.UploadFile(file, "store-items", item.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to upload image",
		})
	}

	if item.ImageURL != "" {
		go storageService.DeleteFile(item.ImageURL)
	}

	if err := database.DB.Model(&item).Update("image_url", imageURL).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update store item image",
		})
	}

	middleware.LogActivity(c, "UPDATE", "store-items", item.ID, fiber.Map{
		"action": "image_upload",
		"image":  imageURL,
	})

	return c.JSON(fiber.Map{
		"message": "Image uploaded successfully",
		"image":   imageURL,
	})
}

// RedeemRequest represents the redemption request body
type RedeemRequest struct {
	StoreItemID uint `json:"store_item_id" validate:"required"`
	Quantity    int  `json:"quantity"`
}

// Redeem spends the authenticated student's points on a store item
func (st *StoreController) Redeem(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "User not found",
		})
	}
	if user.Role != "student" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Only students can redeem store items",
		})
	}

	var req RedeemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.StoreItemID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "store_item_id is required",
		})
	}

	redemption, err := st.redemptions.Redeem(user.ID, req.StoreItemID, req.Quantity)
	if err != nil {
		return services.ErrorResponse(c, err)
	}

	middleware.LogActivity(c, "CREATE", "redemptions", redemption.ID, fiber.Map{
		"store_item_id": req.StoreItemID,
		"quantity":      redemption.Quantity,
		"total_price":   redemption.TotalPrice,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":    "Redemption created successfully",
		"redemption": redemption,
	})
}

// GetRedemptions lists redemptions; students only see their own
func (st *StoreController) GetRedemptions(c *fiber.Ctx) error {
	query := database.DB.Model(&models.Redemption{}).
		Preload("Student").Preload("StoreItem")

	claims, _ := middleware.GetCurrentClaims(c)
	if claims != nil && claims.Role == "student" {
		query = query.Where("student_id = ?", claims.UserID)
	} else if studentID := c.Query("student_id"); studentID != "" {
		query = query.Where("student_id = ?", studentID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var redemptions []models.Redemption
	if err := query.Order("created_at DESC").Find(&redemptions).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch redemptions",
		})
	}

	return c.JSON(fiber.Map{
		"redemptions": redemptions,
	})
}

// FulfillRedemption marks a pending redemption as handed out
func (st *StoreController) FulfillRedemption(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid redemption ID",
		})
	}

	redemption, err := st.redemptions.Fulfill(uint(id))
	if err != nil {
		return services.ErrorResponse(c, err)
	}

	middleware.LogActivity(c, "UPDATE", "redemptions", redemption.ID, fiber.Map{
		"status": "fulfilled",
	})

	return c.JSON(fiber.Map{
		"message":    "Redemption fulfilled",
		"redemption": redemption,
	})
}

// CancelRedemption voids a pending redemption and refunds the points
func (st *StoreController) CancelRedemption(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid redemption ID",
		})
	}

	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "User not found",
		})
	}

	redemption, err := st.redemptions.Cancel(uint(id), user.ID)
	if err != nil {
		return services.ErrorResponse(c, err)
	}

	middleware.LogActivity(c, "UPDATE", "redemptions", redemption.ID, fiber.Map{
		"status": "cancelled",
	})

	return c.JSON(fiber.Map{
		"message":    "Redemption cancelled and points refunded",
		"redemption": redemption,
	})
}
