package controllers

import (
	"strconv"
	"time"

	"classquest_go/database"
	"classquest_go/middleware"
	"classquest_go/models"
	"classquest_go/services"

	"github.com/gofiber/fiber/v2"
)

type EventController struct {
	events *services.EventService
}

func NewEventController() *EventController {
	return &EventController{events: services.NewEventService()}
}

// GetEvents lists events, optionally filtered by time window
func (ec *EventController) GetEvents(c *fiber.Ctx) error {
	query := database.DB.Model(&models.Event{}).Preload("CreatedBy")

	if c.Query("upcoming") == "true" {
		query = query.Where("ends_at > ?", time.Now())
	}
	if from := c.Query("from"); from != "" {
		if t, err := time.Parse("2006-01-02", from); err == nil {
			query = query.Where("starts_at >= ?", t)
		}
	}
	if to := c.Query("to"); to != "" {
		if t, err := time.Parse("2006-01-02", to); err == nil {
			query = query.Where("starts_at < ?", t.AddDate(0, 0, 1))
		}
	}

	var events []models.Event
	if err := query.Order("starts_at ASC").Find(&events).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch events",
		})
	}

	return c.JSON(fiber.Map{
		"events": events,
	})
}

// GetEvent returns one event with its participations
func (ec *EventController) GetEvent(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid event ID",
		})
	}

	var event models.Event
	if err := database.DB.Preload("CreatedBy").
		Preload("Participations.Student").
		First(&event, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Event not found",
		})
	}

	return c.JSON(fiber.Map{
		"event": event,
	})
}

// CreateEventRequest represents the event creation body
type CreateEventRequest struct {
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description"`
	StartsAt    time.Time `json:"starts_at" validate:"required"`
	EndsAt      time.Time `json:"ends_at" validate:"required"`
	AwardPoints int       `json:"award_points" validate:"required"`
}

// CreateEvent creates an event
func (ec *EventController) CreateEvent(c *fiber.Ctx) error {
	claims, err := middleware.GetCurrentClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var req CreateEventRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Title == "" || req.StartsAt.IsZero() || req.EndsAt.IsZero() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "title, starts_at and ends_at are required",
		})
	}
	if !req.EndsAt.After(req.StartsAt) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "ends_at must be after starts_at",
		})
	}
	if req.AwardPoints <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "award_points must be positive",
		})
	}

	event := models.Event{
		Title:       req.Title,
		Description: req.Description,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		AwardPoints: req.AwardPoints,
		CreatedByID: claims.UserID,
	}
	if err := database.DB.Create(&event).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create event",
		})
	}

	middleware.LogActivity(c, "CREATE", "events", event.ID, event)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Event created successfully",
		"event":   event,
	})
}

// UpdateEvent updates an event's details. Award points changes only apply
// to future participations; existing ledger entries are immutable.
func (ec *EventController) UpdateEvent(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid event ID",
		})
	}

	var event models.Event
	if err := database.DB.First(&event, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Event not found",
		})
	}

	var updateData struct {
		Title       string     `json:"title"`
		Description string     `json:"description"`
		StartsAt    *time.Time `json:"starts_at"`
		EndsAt      *time.Time `json:"ends_at"`
		AwardPoints *int       `json:"award_points"`
	}
	if err := c.BodyParser(&updateData); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	updates := map[string]interface{}{}
	if updateData.Title != "" {
		updates["title"] = updateData.Title
	}
	if updateData.Description != "" {
		updates["description"] = updateData.Description
	}
	if updateData.StartsAt != nil {
		updates["starts_at"] = *updateData.StartsAt
	}
	if updateData.EndsAt != nil {
		updates["ends_at"] = *updateData.EndsAt
	}
	if updateData.AwardPoints != nil {
		if *updateData.AwardPoints <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "award_points must be positive",
			})
		}
		updates["award_points"] = *updateData.AwardPoints
	}

	if err := database.DB.Model(&event).Updates(updates).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update event",
		})
	}

	middleware.LogActivity(c, "UPDATE", "events", event.ID, updates)

	return c.JSON(fiber.Map{
		"message": "Event updated successfully",
		"event":   event,
	})
}

// DeleteEvent removes an event. Participation awards already in the ledger
// are kept.
func (ec *EventController) DeleteEvent(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid event ID",
		})
	}

	var event models.Event
	if err := database.DB.First(&event, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Event not found",
		})
	}

	if err := database.DB.Delete(&event).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete event",
		})
	}

	middleware.LogActivity(c, "DELETE", "events", event.ID, event)

	return c.JSON(fiber.Map{
		"message": "Event deleted successfully",
	})
}

// ParticipateRequest represents the participation body
type ParticipateRequest struct {
	StudentID uint `json:"student_id" validate:"required"`
}

// AddParticipation records a student's participation and awards the event
// points. Tutors and admins only; attendance at events is staff-confirmed.
func (ec *EventController) AddParticipation(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid event ID",
		})
	}

	claims, err := middleware.GetCurrentClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var req ParticipateRequest
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

	participation, err := ec.events.Participate(uint(id), req.StudentID, claims.UserID)
	if err != nil {
		return services.ErrorResponse(c, err)
	}

	middleware.LogActivity(c, "CREATE", "event-participations", participation.ID, fiber.Map{
		"event_id":   id,
		"student_id": req.StudentID,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":       "Participation recorded",
		"participation": participation,
	})
}
