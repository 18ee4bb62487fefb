package routes

import (
	"classquest_go/controllers"
	"classquest_go/database"
	"classquest_go/handlers"
	"classquest_go/middleware"
	"classquest_go/services"
	"classquest_go/services/websocket"

	"github.com/gofiber/fiber/v2"
	fiberws "github.com/gofiber/websocket/v2"
)

// SetupRoutes configures all application routes
func SetupRoutes(app *fiber.App, wsHub *websocket.Hub) {
	// Initialize controllers
	authController := &controllers.AuthController{}
	userController := &controllers.UserController{}
	sessionController := controllers.NewSessionController()
	pointsController := controllers.NewPointsController()
	reasonController := &controllers.PointReasonController{}
	storeController := controllers.NewStoreController()
	eventController := controllers.NewEventController()
	reportController := controllers.NewReportController()
	statsController := controllers.NewStatsController()
	exportController := controllers.NewExportController()
	notificationController := &controllers.NotificationController{}
	logController := &controllers.LogController{}
	healthController := controllers.NewHealthController(services.NewHealthService("", ""))
	wsController := controllers.NewWebSocketController(wsHub)
	lineWebhook := handlers.NewLineWebhookHandler(database.DB)

	// API group
	api := app.Group("/api")

	// Health check (no authentication)
	api.Get("/health", healthController.GetHealthStatus)

	// LINE platform webhook (signature-validated, no JWT)
	api.Post("/webhooks/line", lineWebhook.Handle)

	// Authentication routes (no middleware)
	auth := api.Group("/auth")
	auth.Post("/login", authController.Login)
	auth.Post("/reset-password-token", authController.ResetPasswordWithToken)
	auth.Get("/profile", middleware.JWTMiddleware(), authController.GetProfile)

	// Protected routes (require authentication)
	protected := api.Group("/", middleware.JWTMiddleware())

	// Profile routes (authenticated users)
	protected.Get("/profile", authController.GetProfile)
	protected.Put("/profile/password", authController.ChangePassword)
	protected.Post("/profile/line-link-code", authController.GenerateLineLinkCode)
	protected.Post("/auth/logout", authController.Logout)

	// Password reset (admin only)
	passwordReset := protected.Group("/password-reset", middleware.RequireAdmin())
	passwordReset.Post("/generate-token", authController.GeneratePasswordResetToken)

	// User management routes
	users := protected.Group("/users")
	users.Get("/", middleware.RequireTutorOrAbove(), userController.GetUsers)
	users.Get("/:id", middleware.RequireTutorOrAbove(), userController.GetUser)
	users.Post("/", middleware.RequireAdmin(), authController.Register)
	users.Put("/:id", middleware.RequireAdmin(), userController.UpdateUser)
	users.Delete("/:id", middleware.RequireAdmin(), userController.DeleteUser)
	users.Post("/:id/avatar", userController.UploadAvatar) // Users can upload their own avatar

	// Attendance session routes
	sessions := protected.Group("/sessions")
	sessions.Post("/", middleware.RequireTutorOrAbove(), sessionController.CreateSession)
	sessions.Get("/", sessionController.GetSessions)
	sessions.Get("/:id", sessionController.GetSession)
	sessions.Put("/:id", middleware.RequireTutorOrAbove(), sessionController.UpdateSession)
	sessions.Delete("/:id", middleware.RequireAdmin(), sessionController.DeleteSession)
	sessions.Get("/:id/attendees", middleware.RequireTutorOrAbove(), sessionController.GetAttendees)
	sessions.Get("/:id/export", middleware.RequireTutorOrAbove(), exportController.ExportSessionAttendance)
	sessions.Post("/:id/checkins", sessionController.CheckIn)
	sessions.Post("/:id/checkins/bulk", middleware.RequireTutorOrAbove(), sessionController.BulkCheckIn)
	sessions.Delete("/:id/checkins/:student_id", middleware.RequireTutorOrAbove(), sessionController.UndoCheckIn)

	// QR scan resolves the session by token for the authenticated student
	protected.Post("/scan/:token", sessionController.ScanQR)

	// Points ledger routes
	points := protected.Group("/points")
	points.Post("/award", middleware.RequireTutorOrAbove(), pointsController.Award)
	points.Get("/:student_id/balance", pointsController.GetBalance)
	points.Get("/:student_id/transactions", pointsController.GetTransactions)
	points.Get("/:student_id/export", middleware.RequireTutorOrAbove(), exportController.ExportLedger)

	// Preset point reasons
	reasons := protected.Group("/point-reasons")
	reasons.Get("/", middleware.RequireTutorOrAbove(), reasonController.GetPointReasons)
	reasons.Post("/", middleware.RequireAdmin(), reasonController.CreatePointReason)
	reasons.Put("/:id", middleware.RequireAdmin(), reasonController.UpdatePointReason)
	reasons.Delete("/:id", middleware.RequireAdmin(), reasonController.DeletePointReason)

	// Store and redemption routes
	store := protected.Group("/store")
	store.Get("/items", storeController.GetStoreItems)
	store.Post("/items", middleware.RequireAdmin(), storeController.CreateStoreItem)
	store.Put("/items/:id", middleware.RequireAdmin(), storeController.UpdateStoreItem)
	store.Delete("/items/:id", middleware.RequireAdmin(), storeController.DeleteStoreItem)
	store.Post("/items/:id/image", middleware.RequireAdmin(), storeController.UploadItemImage)
	store.Post("/redemptions", storeController.Redeem)
	store.Get("/redemptions", storeController.GetRedemptions)
	store.Patch("/redemptions/:id/fulfill", middleware.RequireTutorOrAbove(), storeController.FulfillRedemption)
	store.Patch("/redemptions/:id/cancel", middleware.RequireTutorOrAbove(), storeController.CancelRedemption)

	// Event routes
	events := protected.Group("/events")
	events.Get("/", eventController.GetEvents)
	events.Get("/:id", eventController.GetEvent)
	events.Post("/", middleware.RequireTutorOrAbove(), eventController.CreateEvent)
	events.Put("/:id", middleware.RequireTutorOrAbove(), eventController.UpdateEvent)
	events.Delete("/:id", middleware.RequireAdmin(), eventController.DeleteEvent)
	events.Post("/:id/participations", middleware.RequireTutorOrAbove(), eventController.AddParticipation)

	// Weekly report routes
	reports := protected.Group("/reports")
	reports.Get("/", reportController.GetReports)
	reports.Get("/missing", middleware.RequireTutorOrAbove(), reportController.GetMissingReports)
	reports.Post("/", reportController.SubmitReport)
	reports.Patch("/:id/review", middleware.RequireTutorOrAbove(), reportController.ReviewReport)

	// Stats and leaderboard routes
	stats := protected.Group("/stats")
	stats.Get("/leaderboard", statsController.GetLeaderboard)
	stats.Get("/me", statsController.GetMyRank)
	stats.Get("/summary", middleware.RequireTutorOrAbove(), statsController.GetSummary)
	stats.Get("/distribution", middleware.RequireTutorOrAbove(), statsController.GetDistribution)
	stats.Get("/tutor-groups", middleware.RequireTutorOrAbove(), statsController.GetTutorGroups)

	// Notification management routes
	notifications := protected.Group("/notifications")
	notifications.Get("/", notificationController.GetNotifications)
	notifications.Get("/unread-count", notificationController.GetUnreadCount)
	notifications.Get("/:id", notificationController.GetNotification)
	notifications.Post("/", middleware.RequireTutorOrAbove(), notificationController.CreateNotification)
	notifications.Patch("/:id/read", notificationController.MarkAsRead)
	notifications.Patch("/mark-all-read", notificationController.MarkAllAsRead)
	notifications.Delete("/:id", notificationController.DeleteNotification)

	// Log management routes (admin only)
	logs := protected.Group("/logs", middleware.RequireAdmin())
	logs.Get("/", logController.GetLogs)
	logs.Get("/stats", logController.GetLogStats)
	logs.Get("/archives", logController.GetLogArchives)
	logs.Get("/archives/:id/download", logController.DownloadLogArchive)
	logs.Get("/:id", logController.GetLog)
	logs.Delete("/old", logController.DeleteOldLogs)
	logs.Post("/flush-cache", logController.FlushCachedLogs)

	// WebSocket routes
	ws := protected.Group("/ws")
	ws.Get("/stats", middleware.RequireAdmin(), wsController.GetWebSocketStats)

	// WebSocket connection endpoint - use websocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if fiberws.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", wsController.WebSocketHandler())
}

// SetupStaticRoutes configures static file serving
func SetupStaticRoutes(app *fiber.App) {
	app.Static("/", "./public")
}
