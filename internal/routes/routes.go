package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"

	"github.com/example/arepabuelas/internal/config"
	"github.com/example/arepabuelas/internal/handlers"
	"github.com/example/arepabuelas/internal/middleware"
)

// Register wires up all HTTP routes, composing guards and rate limiters at
// registration time.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	authHandler := handlers.NewAuthHandler(db, cfg)
	adminHandler := handlers.NewAdminHandler(db)
	productHandler := handlers.NewProductHandler(db)
	commentHandler := handlers.NewCommentHandler(db)
	couponHandler := handlers.NewCouponHandler(db)
	checkoutHandler := handlers.NewCheckoutHandler(db)
	orderHandler := handlers.NewOrderHandler(db)

	authGuard := middleware.Auth(db, cfg)
	optionalAuth := middleware.OptionalAuth(db, cfg)

	registerLimiter := limiter.New(limiter.Config{
		Max:          3,
		Expiration:   time.Hour,
		LimitReached: limitReached("too many registrations from this IP, please try again later"),
	})
	loginLimiter := limiter.New(limiter.Config{
		Max:                    5,
		Expiration:             15 * time.Minute,
		SkipSuccessfulRequests: true,
		LimitReached:           limitReached("too many login attempts, please try again in 15 minutes"),
	})
	checkoutLimiter := limiter.New(limiter.Config{
		Max:          5,
		Expiration:   time.Minute,
		LimitReached: limitReached("too many transactions, please wait a moment"),
	})

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", registerLimiter, authHandler.Register)
	auth.Post("/login", loginLimiter, authHandler.Login)
	auth.Get("/me", authGuard, authHandler.Me)

	admin := api.Group("/admin", authGuard, middleware.RequireAdmin)
	admin.Get("/users", adminHandler.ListUsers)
	admin.Get("/users/pending", adminHandler.ListPendingUsers)
	admin.Patch("/validate/:id", adminHandler.ValidateUser)
	admin.Delete("/users/:id", adminHandler.DeleteUser)

	products := api.Group("/products")
	products.Get("/", optionalAuth, productHandler.ListProducts)
	products.Post("/", authGuard, middleware.RequireAdmin, productHandler.CreateProduct)

	// Comment edit/delete live under /products/comments, registered before
	// the /:id routes so "comments" is not captured as a product id.
	products.Put("/comments/:commentId", authGuard, commentHandler.UpdateComment)
	products.Delete("/comments/:commentId", authGuard, commentHandler.DeleteComment)

	products.Get("/:id", optionalAuth, productHandler.GetProduct)
	products.Put("/:id", authGuard, middleware.RequireAdmin, productHandler.UpdateProduct)
	products.Delete("/:id", authGuard, middleware.RequireAdmin, productHandler.DeleteProduct)
	products.Post("/:id/comments", authGuard, commentHandler.AddComment)
	products.Get("/:id/comments", commentHandler.ListComments)

	coupons := api.Group("/coupons")
	coupons.Get("/available", optionalAuth, couponHandler.ListAvailable)
	coupons.Get("/", authGuard, middleware.RequireAdmin, couponHandler.ListCoupons)
	coupons.Post("/", authGuard, middleware.RequireAdmin, couponHandler.CreateCoupon)
	coupons.Put("/:id", authGuard, middleware.RequireAdmin, couponHandler.UpdateCoupon)
	coupons.Delete("/:id", authGuard, middleware.RequireAdmin, couponHandler.DeleteCoupon)

	checkout := api.Group("/checkout", authGuard)
	checkout.Post("/validate-coupon", checkoutHandler.ValidateCoupon)
	checkout.Post("/simulate-card", checkoutHandler.SimulateCard)
	checkout.Post("/", checkoutLimiter, checkoutHandler.Checkout)

	orders := api.Group("/orders", authGuard)
	orders.Get("/", orderHandler.ListOrders)
	orders.Get("/stats", orderHandler.Stats)
	orders.Get("/admin/all", middleware.RequireAdmin, orderHandler.AdminListOrders)
	orders.Patch("/admin/:id/status", middleware.RequireAdmin, orderHandler.AdminUpdateStatus)
	orders.Get("/:id", orderHandler.GetOrder)
	orders.Patch("/:id/cancel", orderHandler.CancelOrder)
}

func limitReached(message string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"success": false,
			"message": message,
		})
	}
}
