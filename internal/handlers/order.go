package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/example/orderdesk/internal/models"
	"github.com/example/orderdesk/internal/services"
	"github.com/example/orderdesk/internal/utils"
)

// OrderHandler manages order endpoints. All mutations are forwarded to the
// order service, which owns the transactional workflow.
type OrderHandler struct {
	db     *gorm.DB
	orders *services.OrderService
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(db *gorm.DB, orders *services.OrderService) *OrderHandler {
	return &OrderHandler{db: db, orders: orders}
}

type orderItemRequest struct {
	ProductID string           `json:"product_id"`
	Quantity  int              `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
}

type createOrderRequest struct {
	CustomerID             string             `json:"customer_id"`
	Items                  []orderItemRequest `json:"items"`
	OrderType              string             `json:"order_type"`
	ShippingMethod         string             `json:"shipping_method"`
	PaymentMethod          string             `json:"payment_method"`
	VoucherCode            string             `json:"voucher_code"`
	DeliveryAddress        string             `json:"delivery_address"`
	DeliveryNotes          string             `json:"delivery_notes"`
	DeliveryDatePreference *time.Time         `json:"delivery_date_preference"`
}

// CreateOrder places an order through the placement workflow.
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	var req createOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.PaymentMethod == "" {
		return fiber.NewError(fiber.StatusBadRequest, "payment_method is required")
	}

	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid customer_id")
	}

	input := services.PlaceOrderInput{
		CustomerID:             customerID,
		OrderType:              req.OrderType,
		ShippingMethod:         req.ShippingMethod,
		PaymentMethod:          req.PaymentMethod,
		VoucherCode:            req.VoucherCode,
		DeliveryAddress:        req.DeliveryAddress,
		DeliveryNotes:          req.DeliveryNotes,
		DeliveryDatePreference: req.DeliveryDatePreference,
	}

	for _, item := range req.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid product_id")
		}
		if item.UnitPrice == nil {
			return fiber.NewError(fiber.StatusBadRequest, "unit_price is required")
		}
		input.Items = append(input.Items, services.OrderItemInput{
			ProductID: productID,
			Quantity:  item.Quantity,
			UnitPrice: *item.UnitPrice,
		})
	}

	order, err := h.orders.PlaceOrder(c.Context(), input)
	if err != nil {
		return serviceError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": order})
}

// ListOrders returns paginated orders, optionally filtered by status.
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Order{})

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var orders []models.Order
	if err := query.Preload("Items").Preload("Customer").Preload("Voucher").
		Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&orders).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    orders,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// GetOrder returns a single order by ID.
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var order models.Order
	if err := h.db.Preload("Items").Preload("Customer").Preload("Voucher").
		First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus transitions an order between statuses. Cancelling restores
// stock for every line item, once.
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req updateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	order, err := h.orders.UpdateStatus(c.Context(), id, req.Status)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

type addItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// AddItem appends a line item to an existing order at the product's current
// price.
func (h *OrderHandler) AddItem(c *fiber.Ctx) error {
	orderID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req addItemRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid product_id")
	}

	item, err := h.orders.AddItem(c.Context(), orderID, productID, req.Quantity)
	if err != nil {
		return serviceError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": item})
}
