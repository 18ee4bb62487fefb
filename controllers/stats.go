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

type StatsController struct {
	stats *services.StatsService
}

func NewStatsController() *StatsController {
	return &StatsController{stats: services.NewStatsService()}
}

// LeaderboardEntry is one ranked row with the student's display info attached
type LeaderboardEntry struct {
	Rank       int             `json:"rank"`
	Student    utils.UserShort `json:"student"`
	Experience int             `json:"experience"`
}

// GetLeaderboard returns students ranked by experience, optionally limited
func (sc *StatsController) GetLeaderboard(c *fiber.Ctx) error {
	students, err := sc.stats.FetchStudentExperience()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch student experience",
		})
	}

	ranked := services.Rank(students)

	limit := 0
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > 0 && limit < len(ranked) {
		ranked = ranked[:limit]
	}

	ids := make([]uint, 0, len(ranked))
	for _, s := range ranked {
		ids = append(ids, s.StudentID)
	}
	userByID := map[uint]models.User{}
	if len(ids) > 0 {
		var users []models.User
		if err := database.DB.Where("id IN ?", ids).Find(&users).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to fetch students",
			})
		}
		for _, u := range users {
			userByID[u.ID] = u
		}
	}

	entries := make([]LeaderboardEntry, 0, len(ranked))
	for i, s := range ranked {
		entries = append(entries, LeaderboardEntry{
			Rank:       i + 1,
			Student:    utils.ToUserShort(userByID[s.StudentID]),
			Experience: s.Experience,
		})
	}

	return c.JSON(fiber.Map{
		"leaderboard": entries,
	})
}

// GetSummary returns headline aggregates over all active students
func (sc *StatsController) GetSummary(c *fiber.Ctx) error {
	students, err := sc.stats.FetchStudentExperience()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch student experience",
		})
	}

	return c.JSON(fiber.Map{
		"summary": services.Summarize(students),
	})
}

// GetDistribution buckets students by experience, ?bucket_size= (default 100)
func (sc *StatsController) GetDistribution(c *fiber.Ctx) error {
	bucketSize := 100
	if b := c.Query("bucket_size"); b != "" {
		parsed, err := strconv.Atoi(b)
		if err != nil || parsed <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "bucket_size must be a positive integer",
			})
		}
		bucketSize = parsed
	}

	students, err := sc.stats.FetchStudentExperience()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch student experience",
		})
	}

	buckets := services.Distribute(students, bucketSize)
	// Distribute may widen the buckets to bound the response size; report the
	// size it actually used.
	if len(buckets) > 0 {
		bucketSize = buckets[0].To - buckets[0].From
	}

	return c.JSON(fiber.Map{
		"bucket_size":  bucketSize,
		"distribution": buckets,
	})
}

// GetTutorGroups returns per-tutor student count and average experience
func (sc *StatsController) GetTutorGroups(c *fiber.Ctx) error {
	students, err := sc.stats.FetchStudentExperience()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch student experience",
		})
	}

	groups := services.GroupByTutor(students)

	tutorIDs := make([]uint, 0, len(groups))
	for _, g := range groups {
		if g.TutorID != 0 {
			tutorIDs = append(tutorIDs, g.TutorID)
		}
	}
	tutorByID := map[uint]models.User{}
	if len(tutorIDs) > 0 {
		var tutors []models.User
		if err := database.DB.Where("id IN ?", tutorIDs).Find(&tutors).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to fetch tutors",
			})
		}
		for _, t := range tutors {
			tutorByID[t.ID] = t
		}
	}

	result := make([]fiber.Map, 0, len(groups))
	for _, g := range groups {
		entry := fiber.Map{
			"tutor_id": g.TutorID,
			"count":    g.Count,
			"average":  g.Average,
		}
		if tutor, ok := tutorByID[g.TutorID]; ok {
			entry["tutor"] = utils.ToUserShort(tutor)
		}
		result = append(result, entry)
	}

	return c.JSON(fiber.Map{
		"groups": result,
	})
}

// GetMyRank returns the authenticated student's own rank and experience
func (sc *StatsController) GetMyRank(c *fiber.Ctx) error {
	claims, err := middleware.GetCurrentClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	students, err := sc.stats.FetchStudentExperience()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch student experience",
		})
	}

	ranked := services.Rank(students)
	for i, s := range ranked {
		if s.StudentID == claims.UserID {
			return c.JSON(fiber.Map{
				"rank":       i + 1,
				"experience": s.Experience,
				"total":      len(ranked),
			})
		}
	}

	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error": "Student not ranked",
	})
}
