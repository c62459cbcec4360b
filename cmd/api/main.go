package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"perpustakaan-backend/internal/config"
	"perpustakaan-backend/internal/handler"
	"perpustakaan-backend/internal/middleware"
	"perpustakaan-backend/internal/repository"
	"perpustakaan-backend/internal/service"
	authsvc "perpustakaan-backend/internal/service/auth"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	db, err := config.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	redisClient, err := config.NewRedisClient(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	minioClient, err := config.NewMinIOClient(cfg)
	if err != nil {
		log.Printf("Warning: Failed to connect to MinIO: %v (cover upload will not work)", err)
	}

	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, redisClient, minioClient, cfg)
	handlers := handler.NewHandlers(services)

	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/health"
		},
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, PATCH, DELETE, OPTIONS",
	}))

	setupRoutes(app, handlers, services.Auth)

	log.Printf("Server starting on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func setupRoutes(app *fiber.App, h *handler.Handlers, authService authsvc.Service) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	v1 := app.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.Post("/register", h.Auth.Register)
	auth.Post("/login", h.Auth.Login)
	auth.Post("/refresh", h.Auth.RefreshToken)
	auth.Post("/logout", h.Auth.Logout)

	protected := v1.Group("", middleware.AuthRequired(authService))

	protected.Get("/auth/me", h.Auth.Me)

	users := protected.Group("/users")
	users.Get("/", middleware.RequireAdmin(), h.User.List)
	users.Get("/me", h.Auth.Me)
	users.Get("/:id", middleware.RequireStaff(), h.User.Get)
	users.Post("/assign-role", middleware.RequireAdmin(), h.User.AssignRole)
	users.Patch("/:id/status", middleware.RequireAdmin(), h.User.UpdateStatus)

	books := protected.Group("/books")
	books.Get("/", h.Book.List)
	books.Get("/:id", h.Book.Get)
	books.Post("/", middleware.RequireStaff(), h.Book.Create)
	books.Put("/:id", middleware.RequireStaff(), h.Book.Update)
	books.Delete("/:id", middleware.RequireAdmin(), h.Book.Delete)
	books.Post("/:id/cover", middleware.RequireStaff(), h.Book.UploadCover)

	reviews := protected.Group("/books/:bookId/reviews")
	reviews.Post("/", h.Review.Create)
	reviews.Get("/", h.Review.ListByBook)
	protected.Put("/reviews/:id", h.Review.Update)
	protected.Delete("/reviews/:id", h.Review.Delete)

	loans := protected.Group("/loans")
	loans.Post("/", h.Loan.Create)
	loans.Get("/me", h.Loan.ListMine)
	loans.Get("/", middleware.RequireStaff(), h.Loan.List)
	loans.Get("/:id", h.Loan.Get)
	loans.Post("/:id/approve", middleware.RequireStaff(), h.Loan.Approve)
	loans.Post("/:id/reject", middleware.RequireStaff(), h.Loan.Reject)
	loans.Post("/:id/withdraw", middleware.RequireStaff(), h.Loan.Withdraw)
	loans.Post("/:id/return", middleware.RequireStaff(), h.Loan.Return)
	loans.Post("/:id/cancel", h.Loan.Cancel)
	loans.Post("/overdue-sweep", middleware.RequireStaff(), h.Loan.RunOverdueSweep)

	notifications := protected.Group("/notifications")
	notifications.Get("/", h.Notification.List)
	notifications.Get("/unread-count", h.Notification.UnreadCount)
	notifications.Patch("/:id/read", h.Notification.MarkAsRead)
	notifications.Post("/mark-all-read", h.Notification.MarkAllAsRead)

	dashboard := protected.Group("/dashboard", middleware.RequireStaff())
	dashboard.Get("/stats", h.Dashboard.Stats)

	audit := protected.Group("/audit", middleware.RequireAdmin())
	audit.Get("/recent", h.Audit.List)
}
