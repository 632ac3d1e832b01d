package api

import (
	"loyalty-rewards/internal/api/handlers"
	"loyalty-rewards/pkg/auth"
	"loyalty-rewards/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

func SetupRouter(
	authHandler *handlers.AuthHandler,
	receiptHandler *handlers.ReceiptHandler,
	pointsHandler *handlers.PointsHandler,
	promoHandler *handlers.PromotionHandler,
	jwtManager *auth.JWTManager,
	appLogger *zap.Logger,
) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))
	app.Use(logger.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Auth routes (public)
	user := app.Group("/user")
	authRoutes := user.Group("/auth")
	authRoutes.Post("/register", authHandler.Register)
	authRoutes.Post("/login", authHandler.Login)
	authRoutes.Post("/refresh", authHandler.RefreshToken)

	// Protected routes
	protected := app.Group("/api/v1", middleware.AuthMiddleware(jwtManager, appLogger))

	receipts := protected.Group("/receipts")
	receipts.Post("/upload", receiptHandler.UploadReceipt)
	receipts.Post("", receiptHandler.SubmitReceipt)
	receipts.Get("", receiptHandler.ListReceipts)
	receipts.Get("/:id", receiptHandler.GetReceipt)

	points := protected.Group("/points")
	points.Get("/balance", pointsHandler.Balance)
	points.Get("/history", pointsHandler.History)

	protected.Get("/promotions", promoHandler.ListPromotions)

	return app
}
