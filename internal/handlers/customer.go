package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/orderdesk/internal/models"
	"github.com/example/orderdesk/internal/utils"
)

// CustomerHandler manages customer endpoints.
type CustomerHandler struct {
	db *gorm.DB
}

// NewCustomerHandler constructs CustomerHandler.
func NewCustomerHandler(db *gorm.DB) *CustomerHandler {
	return &CustomerHandler{db: db}
}

// ListCustomers returns paginated customers with an optional search across
// name, email and mobile.
func (h *CustomerHandler) ListCustomers(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Customer{})

	if search := c.Query("search"); search != "" {
		term := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(mobile) LIKE ?",
			term, term, term, term)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var customers []models.Customer
	if err := query.Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&customers).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    customers,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// GetCustomer returns a single customer by ID.
func (h *CustomerHandler) GetCustomer(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var customer models.Customer
	if err := h.db.First(&customer, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "customer not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": customer})
}

type customerRequest struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	Mobile      string `json:"mobile"`
	AddressText string `json:"address_text"`
}

// CreateCustomer persists a new customer.
func (h *CustomerHandler) CreateCustomer(c *fiber.Ctx) error {
	var req customerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.FirstName == "" || req.LastName == "" || req.Email == "" || req.Mobile == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing required fields")
	}

	customer := models.Customer{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Mobile:      req.Mobile,
		AddressText: req.AddressText,
	}

	if err := h.db.Create(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fiber.NewError(fiber.StatusConflict, "email already registered")
		}
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": customer})
}

// UpdateCustomer updates the provided fields of an existing customer.
func (h *CustomerHandler) UpdateCustomer(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var customer models.Customer
	if err := h.db.First(&customer, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "customer not found")
		}
		return err
	}

	var req customerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	updates := map[string]interface{}{}
	if req.FirstName != "" {
		updates["first_name"] = req.FirstName
	}
	if req.LastName != "" {
		updates["last_name"] = req.LastName
	}
	if req.Email != "" {
		updates["email"] = req.Email
	}
	if req.Mobile != "" {
		updates["mobile"] = req.Mobile
	}
	if req.AddressText != "" {
		updates["address_text"] = req.AddressText
	}

	if len(updates) > 0 {
		if err := h.db.Model(&customer).Updates(updates).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fiber.NewError(fiber.StatusConflict, "email already registered")
			}
			return err
		}
	}

	return c.JSON(fiber.Map{"success": true, "data": customer})
}

// DeleteCustomer removes a customer and, through the cascade, their orders.
func (h *CustomerHandler) DeleteCustomer(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	result := h.db.Delete(&models.Customer{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "customer not found")
	}

	return c.SendStatus(fiber.StatusNoContent)
}
