package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"

	"mailsift/config"
	"mailsift/controllers"
	"mailsift/middleware"
)

// SetupRoutes wires the verification job API.
func SetupRoutes(app *fiber.App, cfg *config.Config, jc *controllers.JobController) {
	app.Use(middleware.CORS())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Post("/upload", middleware.UploadRateLimiter(cfg), jc.Upload)
	app.Get("/progress/:id", jc.GetProgress)
	app.Get("/download/:id", jc.Download)
	app.Get("/verify/email", jc.VerifyEmail)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Not Found",
			"message": "The requested resource was not found",
		})
	})
}
