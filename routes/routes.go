package routes

import (
	"shulebook_go/controllers"
	"shulebook_go/middleware"

	"github.com/gofiber/fiber/v2"
)

// SetupRoutes configures all application routes
func SetupRoutes(app *fiber.App) {
	// Initialize controllers
	authController := &controllers.AuthController{}
	academicsController := &controllers.AcademicsController{}
	studentController := &controllers.StudentController{}
	feeStructureController := &controllers.FeeStructureController{}
	invoiceController := &controllers.InvoiceController{}
	paymentController := &controllers.PaymentController{}
	adjustmentController := &controllers.AdjustmentController{}
	expenseController := &controllers.ExpenseController{}
	statementImportController := &controllers.StatementImportController{}
	logController := &controllers.LogController{}
	healthController := &controllers.HealthController{}

	// API group
	api := app.Group("/api")

	// Health - public
	api.Get("/health", healthController.GetHealthStatus)

	// Authentication routes (no middleware)
	auth := api.Group("/auth")
	auth.Post("/login", authController.Login)
	auth.Get("/profile", middleware.JWTMiddleware(), authController.GetProfile)

	// Protected routes (require authentication)
	protected := api.Group("/", middleware.JWTMiddleware())

	protected.Get("/profile", authController.GetProfile)
	protected.Post("/auth/logout", authController.Logout)

	// User management (owner/admin only)
	users := protected.Group("/users", middleware.RequireOwnerOrAdmin())
	users.Post("/", authController.Register)

	// Academic calendar - read-only lookups for every authenticated user
	academics := protected.Group("/academics")
	academics.Get("/years", academicsController.GetAcademicYears)
	academics.Get("/years/active", academicsController.GetActiveYear)
	academics.Get("/terms", academicsController.GetTerms)
	academics.Get("/classes", academicsController.GetClasses)

	// Student register - read-only
	students := protected.Group("/students")
	students.Get("/", studentController.GetStudents)
	students.Get("/:id", studentController.GetStudent)
	students.Get("/:id/statement", studentController.GetStudentStatement)

	// Fee structure catalog
	fees := protected.Group("/fee-structures")
	fees.Get("/", feeStructureController.GetFeeStructures)
	fees.Get("/:id", feeStructureController.GetFeeStructure)
	fees.Post("/", middleware.RequireOwnerOrAdmin(), feeStructureController.CreateFeeStructure)
	fees.Put("/:id", middleware.RequireOwnerOrAdmin(), feeStructureController.UpdateFeeStructure)
	fees.Delete("/:id", middleware.RequireOwnerOrAdmin(), feeStructureController.DeleteFeeStructure)

	// Invoices
	invoices := protected.Group("/invoices")
	invoices.Get("/dashboard_stats", invoiceController.GetDashboardStats)
	invoices.Get("/", invoiceController.GetInvoices)
	invoices.Get("/:id", invoiceController.GetInvoice)
	invoices.Post("/generate_batch", middleware.RequireBursarOrAbove(), invoiceController.GenerateBatch)
	invoices.Post("/sync_all", middleware.RequireBursarOrAbove(), invoiceController.SyncAll)
	invoices.Post("/send_reminders", middleware.RequireBursarOrAbove(), invoiceController.SendReminders)
	invoices.Post("/:id/void", middleware.RequireOwnerOrAdmin(), invoiceController.VoidInvoice)

	// Payments - clerks and above record money
	payments := protected.Group("/payments")
	payments.Get("/", paymentController.GetPayments)
	payments.Get("/:id", paymentController.GetPayment)
	payments.Post("/", paymentController.CreatePayment)

	// Adjustments - bursar and above
	adjustments := protected.Group("/adjustments", middleware.RequireBursarOrAbove())
	adjustments.Get("/", adjustmentController.GetAdjustments)
	adjustments.Post("/", adjustmentController.CreateAdjustment)

	// Expenses
	expenses := protected.Group("/expenses")
	expenses.Get("/", expenseController.GetExpenses)
	expenses.Post("/", middleware.RequireBursarOrAbove(), expenseController.CreateExpense)
	expenses.Post("/:id/review", middleware.RequireOwnerOrAdmin(), expenseController.ApproveExpense)

	// Statement import - bursar and above
	imports := protected.Group("/import", middleware.RequireBursarOrAbove())
	imports.Post("/statement", statementImportController.Import)

	// Activity logs (owner/admin only)
	logs := protected.Group("/logs", middleware.RequireOwnerOrAdmin())
	logs.Get("/", logController.GetLogs)
	logs.Get("/archives", logController.GetArchives)
	logs.Get("/archives/:id/download", logController.DownloadArchive)
}
