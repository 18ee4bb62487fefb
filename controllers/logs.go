package controllers

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"classquest_go/database"
	"classquest_go/models"
	"classquest_go/services"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// LogController serves the admin-only activity log browser: filtered listing,
// aggregate stats, retention cleanup, and S3 archive access.
type LogController struct{}

type LogResponse struct {
	ID         uint                   `json:"id"`
	UserID     uint                   `json:"user_id"`
	Action     string                 `json:"action"`
	Resource   string                 `json:"resource"`
	ResourceID uint                   `json:"resource_id"`
	Details    map[string]interface{} `json:"details,omitempty"`
	IPAddress  string                 `json:"ip_address"`
	CreatedAt  time.Time              `json:"created_at"`
	User       *UserBasicInfo         `json:"user,omitempty"`
}

type UserBasicInfo struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

func toLogResponse(log models.ActivityLog) LogResponse {
	resp := LogResponse{
		ID:         log.ID,
		UserID:     log.UserID,
		Action:     log.Action,
		Resource:   log.Resource,
		ResourceID: log.ResourceID,
		IPAddress:  log.IPAddress,
		CreatedAt:  log.CreatedAt,
	}

	if len(log.Details) > 0 {
		var details map[string]interface{}
		if err := json.Unmarshal(log.Details, &details); err == nil {
			resp.Details = details
		}
	}
	if log.User.ID > 0 {
		resp.User = &UserBasicInfo{
			ID:       log.User.ID,
			Username: log.User.Username,
			Role:     log.User.Role,
		}
	}
	return resp
}

// GetLogs retrieves paginated activity logs with filters.
func (lc *LogController) GetLogs(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}

	query := database.DB.Model(&models.ActivityLog{}).Preload("User")

	if userID := c.Query("user_id"); userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	if action := c.Query("action"); action != "" {
		query = query.Where("action = ?", action)
	}
	if resource := c.Query("resource"); resource != "" {
		query = query.Where("resource = ?", resource)
	}
	if startDate := c.Query("start_date"); startDate != "" {
		if parsed, err := time.Parse("2006-01-02", startDate); err == nil {
			query = query.Where("created_at >= ?", parsed)
		}
	}
	if endDate := c.Query("end_date"); endDate != "" {
		if parsed, err := time.Parse("2006-01-02", endDate); err == nil {
			query = query.Where("created_at < ?", parsed.Add(24*time.Hour))
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		logrus.WithError(err).Error("Failed to count logs")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve logs",
		})
	}

	var activityLogs []models.ActivityLog
	if err := query.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&activityLogs).Error; err != nil {
		logrus.WithError(err).Error("Failed to retrieve logs")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve logs",
		})
	}

	logs := make([]LogResponse, len(activityLogs))
	for i, log := range activityLogs {
		logs[i] = toLogResponse(log)
	}

	return c.JSON(fiber.Map{
		"logs":        logs,
		"total":       total,
		"page":        page,
		"limit":       limit,
		"total_pages": (total + int64(limit) - 1) / int64(limit),
	})
}

// GetLogStats returns volume counters, action/resource breakdowns, and the
// most active users of the week.
func (lc *LogController) GetLogStats(c *fiber.Ctx) error {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	thisWeek := today.AddDate(0, 0, -int(today.Weekday()))

	stats := fiber.Map{}

	var total, totalToday, totalWeek int64
	database.DB.Model(&models.ActivityLog{}).Count(&total)
	database.DB.Model(&models.ActivityLog{}).Where("created_at >= ?", today).Count(&totalToday)
	database.DB.Model(&models.ActivityLog{}).Where("created_at >= ?", thisWeek).Count(&totalWeek)
	stats["total"] = total
	stats["total_today"] = totalToday
	stats["total_this_week"] = totalWeek

	var actionStats []struct {
		Action string `json:"action"`
		Count  int64  `json:"count"`
	}
	database.DB.Model(&models.ActivityLog{}).
		Select("action, COUNT(*) as count").
		Group("action").
		Find(&actionStats)
	actions := make(map[string]int64, len(actionStats))
	for _, s := range actionStats {
		actions[s.Action] = s.Count
	}
	stats["action_breakdown"] = actions

	var resourceStats []struct {
		Resource string `json:"resource"`
		Count    int64  `json:"count"`
	}
	database.DB.Model(&models.ActivityLog{}).
		Select("resource, COUNT(*) as count").
		Group("resource").
		Find(&resourceStats)
	resources := make(map[string]int64, len(resourceStats))
	for _, s := range resourceStats {
		resources[s.Resource] = s.Count
	}
	stats["resource_breakdown"] = resources

	var topUsers []struct {
		UserID   uint   `json:"user_id"`
		Username string `json:"username"`
		Role     string `json:"role"`
		Count    int64  `json:"count"`
	}
	database.DB.Model(&models.ActivityLog{}).
		Select("activity_logs.user_id, users.username, users.role, COUNT(*) as count").
		Joins("LEFT JOIN users ON activity_logs.user_id = users.id").
		Where("activity_logs.created_at >= ?", thisWeek).
		Group("activity_logs.user_id, users.username, users.role").
		Order("count DESC").
		Limit(10).
		Find(&topUsers)
	stats["top_users"] = topUsers

	var recentLogs []models.ActivityLog
	database.DB.Preload("User").
		Order("created_at DESC").
		Limit(10).
		Find(&recentLogs)
	recent := make([]LogResponse, len(recentLogs))
	for i, log := range recentLogs {
		recent[i] = toLogResponse(log)
	}
	stats["recent_activity"] = recent

	return c.JSON(stats)
}

// GetLog retrieves a single log entry by ID.
func (lc *LogController) GetLog(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid log ID",
		})
	}

	var activityLog models.ActivityLog
	if err := database.DB.Preload("User").First(&activityLog, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Log not found",
			})
		}
		logrus.WithError(err).Error("Failed to retrieve log")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve log",
		})
	}

	return c.JSON(toLogResponse(activityLog))
}

// DeleteOldLogs removes logs older than the given number of days.
func (lc *LogController) DeleteOldLogs(c *fiber.Ctx) error {
	days, err := strconv.Atoi(c.Query("days", "30"))
	if err != nil || days < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid days parameter",
		})
	}

	cutoff := time.Now().AddDate(0, 0, -days)
	result := database.DB.Where("created_at < ?", cutoff).Delete(&models.ActivityLog{})
	if result.Error != nil {
		logrus.WithError(result.Error).Error("Failed to delete old logs")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete old logs",
		})
	}

	return c.JSON(fiber.Map{
		"message":       "Old logs deleted successfully",
		"deleted_count": result.RowsAffected,
		"cutoff_date":   cutoff,
	})
}

// GetLogArchives lists archived log files stored in S3.
func (lc *LogController) GetLogArchives(c *fiber.Ctx) error {
	archives, err := services.NewLogArchiveService().GetArchivedLogs()
	if err != nil {
		logrus.WithError(err).Error("Failed to list log archives")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list log archives",
		})
	}

	return c.JSON(fiber.Map{"archives": archives})
}

// DownloadLogArchive streams an archived log file from S3.
func (lc *LogController) DownloadLogArchive(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid archive ID",
		})
	}

	reader, fileName, err := services.NewLogArchiveService().DownloadArchivedLogs(uint(id))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	defer reader.Close()

	c.Set("Content-Type", "application/zip")
	c.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, fileName))
	return c.SendStream(reader)
}

// FlushCachedLogs forces the Redis log cache into the database immediately.
func (lc *LogController) FlushCachedLogs(c *fiber.Ctx) error {
	if err := services.NewLogArchiveService().FlushCachedLogsToDatabase(); err != nil {
		logrus.WithError(err).Error("Manual log flush failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to flush cached logs",
		})
	}

	return c.JSON(fiber.Map{"message": "Cached logs flushed to database"})
}
