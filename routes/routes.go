package routes

import (
	"linguadesk_go/controllers"
	"linguadesk_go/middleware"
	"linguadesk_go/services"
	"linguadesk_go/services/websocket"

	"github.com/gofiber/fiber/v2"
	fiberws "github.com/gofiber/websocket/v2"
)

// SetupRoutes configures all application routes
func SetupRoutes(app *fiber.App, wsHub *websocket.Hub, logArchive *services.LogArchiveService) {
	authController := &controllers.AuthController{}
	studentController := controllers.NewStudentController()
	teacherController := &controllers.TeacherController{}
	groupController := controllers.NewGroupController()
	enrollmentController := controllers.NewEnrollmentController()
	paymentController := controllers.NewPaymentController()
	discountController := controllers.NewDiscountController()
	attendanceController := controllers.NewAttendanceController()
	eventController := &controllers.EventController{}
	dashboardController := controllers.NewDashboardController()
	notificationController := &controllers.NotificationController{}
	logController := controllers.NewLogController(logArchive)
	exportController := controllers.NewExportController()
	wsController := controllers.NewWebSocketController(wsHub)

	api := app.Group("/api")

	// Authentication routes (no middleware)
	auth := api.Group("/auth")
	auth.Post("/login", authController.Login)
	auth.Get("/profile", middleware.JWTMiddleware(), authController.GetProfile)

	// Protected routes (require authentication)
	protected := api.Group("/", middleware.JWTMiddleware())

	protected.Get("/profile", authController.GetProfile)
	protected.Put("/profile/password", authController.ChangePassword)

	// Staff account management (owner/admin only)
	users := protected.Group("/users", middleware.RequireOwnerOrAdmin())
	users.Post("/", authController.Register)

	// Student management routes
	students := protected.Group("/students")
	students.Get("/", studentController.GetStudents)
	students.Get("/:id", studentController.GetStudent)
	students.Get("/:id/metrics", studentController.GetStudentMetrics)
	students.Post("/", studentController.CreateStudent)
	students.Put("/:id", studentController.UpdateStudent)
	students.Delete("/:id", middleware.RequireOwnerOrAdmin(), studentController.ArchiveStudent)
	students.Post("/:id/restore", middleware.RequireOwnerOrAdmin(), studentController.RestoreStudent)
	students.Get("/:student_id/discounts", discountController.GetStudentDiscounts)

	// Teacher management routes
	teachers := protected.Group("/teachers")
	teachers.Get("/", teacherController.GetTeachers)
	teachers.Get("/:id", teacherController.GetTeacher)
	teachers.Post("/", middleware.RequireOwnerOrAdmin(), teacherController.CreateTeacher)
	teachers.Put("/:id", middleware.RequireOwnerOrAdmin(), teacherController.UpdateTeacher)
	teachers.Delete("/:id", middleware.RequireOwnerOrAdmin(), teacherController.DeleteTeacher)

	// Group management routes
	groups := protected.Group("/groups")
	groups.Get("/", groupController.GetGroups)
	groups.Get("/:id", groupController.GetGroup)
	groups.Post("/", groupController.CreateGroup)
	groups.Put("/:id", groupController.UpdateGroup)
	groups.Post("/:id/deactivate", middleware.RequireOwnerOrAdmin(), groupController.DeactivateGroup)
	groups.Delete("/:id", middleware.RequireOwnerOrAdmin(), groupController.DeleteGroup)

	// Enrollment routes
	enrollments := protected.Group("/enrollments")
	enrollments.Post("/", enrollmentController.Enroll)
	enrollments.Post("/unenroll", enrollmentController.Unenroll)
	enrollments.Post("/move", enrollmentController.Move)

	// Payment ledger routes
	payments := protected.Group("/payments")
	payments.Get("/", paymentController.GetPayments)
	payments.Post("/", paymentController.CreatePayment)
	payments.Post("/quote", paymentController.QuoteDiscount)
	payments.Put("/:id", middleware.RequireOwnerOrAdmin(), paymentController.UpdatePayment)
	payments.Delete("/:id", middleware.RequireOwnerOrAdmin(), paymentController.DeletePayment)
	payments.Get("/summary", paymentController.GetMonthlySummary)

	// Discount routes
	discountsGroup := protected.Group("/discounts")
	discountsGroup.Post("/", discountController.AddDiscount)
	discountsGroup.Delete("/:id", discountController.RemoveDiscount)

	// Attendance routes
	attendance := protected.Group("/attendance")
	attendance.Get("/group/:group_id", attendanceController.GetGroupAttendance)
	attendance.Post("/", attendanceController.RecordAttendance)
	attendance.Put("/:id", attendanceController.EditAttendance)
	attendance.Post("/mark-all", attendanceController.MarkAllAttendance)

	// Event calendar routes
	events := protected.Group("/events")
	events.Get("/", eventController.GetEvents)
	events.Post("/", eventController.CreateEvent)
	events.Put("/:id", eventController.UpdateEvent)
	events.Delete("/:id", eventController.DeleteEvent)

	// Dashboard routes
	dashboard := protected.Group("/dashboard")
	dashboard.Get("/alerts", dashboardController.GetAlerts)
	dashboard.Get("/overview", dashboardController.GetOverview)

	// Notification routes
	notifications := protected.Group("/notifications")
	notifications.Get("/", notificationController.GetNotifications)
	notifications.Get("/unread-count", notificationController.GetUnreadCount)
	notifications.Patch("/:id/read", notificationController.MarkAsRead)
	notifications.Patch("/mark-all-read", notificationController.MarkAllAsRead)

	// Activity log routes (admin/owner only)
	logs := protected.Group("/logs", middleware.RequireOwnerOrAdmin())
	logs.Get("/", logController.GetLogs)
	logs.Get("/archives", logController.GetArchives)
	logs.Post("/flush-cache", logController.FlushCachedLogs)
	logs.Post("/archive", logController.ArchiveOldLogs)

	// Export routes
	exportsGroup := protected.Group("/exports")
	exportsGroup.Get("/students", exportController.ExportStudents)
	exportsGroup.Get("/payments", exportController.ExportPayments)
	exportsGroup.Get("/attendance/:group_id", exportController.ExportGroupAttendance)

	// WebSocket routes
	ws := protected.Group("/ws")
	ws.Get("/stats", middleware.RequireOwnerOrAdmin(), wsController.GetWebSocketStats)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if fiberws.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", wsController.WebSocketHandler())
}
