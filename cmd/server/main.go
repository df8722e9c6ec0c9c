package main

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/example/arepabuelas/internal/config"
	"github.com/example/arepabuelas/internal/database"
	"github.com/example/arepabuelas/internal/routes"
)

func main() {
	cfg := config.Load()
	db := database.Connect(cfg.DatabaseURL)

	app := fiber.New(fiber.Config{
		AppName:      "Arepabuelas Backend",
		ErrorHandler: newErrorHandler(cfg),
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigin,
		AllowCredentials: cfg.CORSOrigin != "*",
	}))

	app.Use("/api", limiter.New(limiter.Config{
		Max:        cfg.RateLimitMax,
		Expiration: cfg.RateLimitWindow,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"message": "too many requests from this IP, please try again later",
			})
		},
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"success": true,
			"message": "Arepabuelas de la esquina - API Backend",
			"version": "1.0.0",
			"endpoints": fiber.Map{
				"auth":     "/api/auth",
				"admin":    "/api/admin",
				"products": "/api/products",
				"checkout": "/api/checkout",
				"orders":   "/api/orders",
				"coupons":  "/api/coupons",
			},
		})
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"success":   true,
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	routes.Register(app, db, cfg)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "route not found",
		})
	})

	log.Printf("Starting server on :%s", cfg.AppPort)
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		log.Fatalf("fiber.Listen error: %v", err)
	}
}

// newErrorHandler renders every error into the response envelope. Expected
// failures carry their own status code; anything else is a 500 whose detail
// is only exposed outside production.
func newErrorHandler(cfg *config.Config) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "internal server error"

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			code = fiberErr.Code
			message = fiberErr.Message
		} else {
			log.Printf("unhandled error on %s %s: %v", c.Method(), c.Path(), err)
			if !cfg.IsProduction() {
				message = err.Error()
			}
		}

		return c.Status(code).JSON(fiber.Map{
			"success": false,
			"message": message,
		})
	}
}
