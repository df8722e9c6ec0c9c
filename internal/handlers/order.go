package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/arepabuelas/internal/middleware"
	"github.com/example/arepabuelas/internal/models"
	"github.com/example/arepabuelas/internal/utils"
)

// OrderHandler manages order history, cancellation and the admin order views.
type OrderHandler struct {
	db *gorm.DB
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(db *gorm.DB) *OrderHandler {
	return &OrderHandler{db: db}
}

// ListOrders returns the acting user's orders.
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Order{}).Where("user_id = ?", user.ID)

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var orders []models.Order
	if err := query.Preload("Items").Preload("Payment").
		Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&orders).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"orders": orders, "total": total},
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

type orderStats struct {
	TotalOrders     int64           `json:"total_orders"`
	TotalSpent      decimal.Decimal `json:"total_spent"`
	AverageOrder    decimal.Decimal `json:"average_order"`
	CompletedOrders int64           `json:"completed_orders"`
	PendingOrders   int64           `json:"pending_orders"`
	CancelledOrders int64           `json:"cancelled_orders"`
}

type topProduct struct {
	ID                  uuid.UUID       `json:"id"`
	Name                string          `json:"name"`
	ImageURL            string          `json:"image_url"`
	TimesPurchased      int64           `json:"times_purchased"`
	TotalSpentOnProduct decimal.Decimal `json:"total_spent_on_product"`
}

type usedCoupon struct {
	Code        string          `json:"code"`
	Discount    decimal.Decimal `json:"discount"`
	Description string          `json:"description"`
	UsedAt      string          `json:"used_at"`
}

// Stats returns the acting user's purchase statistics.
func (h *OrderHandler) Stats(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	var stats orderStats
	if err := h.db.Model(&models.Order{}).
		Select(`COUNT(*) AS total_orders,
			COALESCE(SUM(final_total), 0) AS total_spent,
			COALESCE(AVG(final_total), 0) AS average_order,
			COUNT(CASE WHEN status = 'completed' THEN 1 END) AS completed_orders,
			COUNT(CASE WHEN status = 'pending' THEN 1 END) AS pending_orders,
			COUNT(CASE WHEN status = 'cancelled' THEN 1 END) AS cancelled_orders`).
		Where("user_id = ?", user.ID).
		Scan(&stats).Error; err != nil {
		return err
	}

	var topProducts []topProduct
	if err := h.db.Table("order_items").
		Select(`products.id, products.name, products.image_url,
			SUM(order_items.quantity) AS times_purchased,
			SUM(order_items.subtotal) AS total_spent_on_product`).
		Joins("JOIN products ON products.id = order_items.product_id").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.user_id = ? AND orders.status = ?", user.ID, models.OrderStatusCompleted).
		Group("products.id, products.name, products.image_url").
		Order("times_purchased desc").
		Limit(5).
		Scan(&topProducts).Error; err != nil {
		return err
	}

	var couponsUsed []usedCoupon
	if err := h.db.Table("coupon_usages").
		Select("coupons.code, coupons.discount, coupons.description, coupon_usages.used_at").
		Joins("JOIN coupons ON coupons.id = coupon_usages.coupon_id").
		Where("coupon_usages.user_id = ?", user.ID).
		Order("coupon_usages.used_at desc").
		Scan(&couponsUsed).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"stats":        stats,
			"top_products": topProducts,
			"coupons_used": couponsUsed,
		},
	})
}

// GetOrder returns one order; owners see their own, admins see any and also
// get the buyer attached.
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var order models.Order
	if err := h.db.Preload("Payment").
		Preload("Items.Product", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "image_url", "price", "stock", "active")
		}).
		First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return err
	}

	if order.UserID != user.ID && !user.IsAdmin() {
		return fiber.NewError(fiber.StatusForbidden, "you cannot view this order")
	}

	data := fiber.Map{"order": order, "items": order.Items}

	if user.IsAdmin() {
		var buyer models.User
		if err := h.db.Select("id", "name", "email", "photo").
			First(&buyer, "id = ?", order.UserID).Error; err == nil {
			data["user"] = buyer
		}
	}

	return c.JSON(fiber.Map{"success": true, "data": data})
}

// CancelOrder cancels a pending order and restores its stock, all inside one
// transaction.
func (h *OrderHandler) CancelOrder(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&order, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "order not found")
			}
			return err
		}

		if order.UserID != user.ID {
			return fiber.NewError(fiber.StatusForbidden, "you cannot cancel this order")
		}

		if !order.CanCancel() {
			return fiber.NewError(fiber.StatusBadRequest, "only pending orders can be cancelled")
		}

		var items []models.OrderItem
		if err := tx.Where("order_id = ?", order.ID).Find(&items).Error; err != nil {
			return err
		}

		for _, item := range items {
			if err := tx.Model(&models.Product{}).
				Where("id = ?", item.ProductID).
				UpdateColumn("stock", gorm.Expr("stock + ?", item.Quantity)).Error; err != nil {
				return err
			}
		}

		return tx.Model(&order).Update("status", models.OrderStatusCancelled).Error
	})
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "order cancelled"})
}

// AdminListOrders returns all orders with buyer and payment info.
func (h *OrderHandler) AdminListOrders(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Order{})

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	if v := c.Query("user_id"); v != "" {
		if userID, err := uuid.Parse(v); err == nil {
			query = query.Where("user_id = ?", userID)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var orders []models.Order
	if err := query.
		Preload("User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "email")
		}).
		Preload("Items").Preload("Payment").
		Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&orders).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"orders": orders, "total": total},
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// AdminUpdateStatus sets an order's status to any valid value.
func (h *OrderHandler) AdminUpdateStatus(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req updateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if !models.ValidOrderStatus(req.Status) {
		return fiber.NewError(fiber.StatusBadRequest,
			"invalid status, must be one of: pending, processing, completed, cancelled")
	}

	var order models.Order
	if err := h.db.First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return err
	}

	if err := h.db.Model(&order).Update("status", req.Status).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "order status updated",
		"data":    fiber.Map{"order": order},
	})
}
