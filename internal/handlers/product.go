package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/example/orderdesk/internal/models"
	"github.com/example/orderdesk/internal/utils"
)

// ProductHandler manages product endpoints.
type ProductHandler struct {
	db *gorm.DB
}

// NewProductHandler constructs ProductHandler.
func NewProductHandler(db *gorm.DB) *ProductHandler {
	return &ProductHandler{db: db}
}

// ListProducts returns paginated products, optionally filtered by category
// or a case-insensitive name search.
func (h *ProductHandler) ListProducts(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Product{})

	if categoryID := c.Query("category_id"); categoryID != "" {
		id, err := uuid.Parse(categoryID)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid category_id")
		}
		query = query.Where("category_id = ?", id)
	}

	if search := c.Query("search"); search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var products []models.Product
	if err := query.Preload("Category").
		Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&products).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    products,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// GetProduct returns a single product by ID.
func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var product models.Product
	if err := h.db.Preload("Category").First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": product})
}

type productRequest struct {
	Name          string           `json:"name"`
	Description   string           `json:"description"`
	Price         *decimal.Decimal `json:"price"`
	CategoryID    string           `json:"category_id"`
	ProductType   string           `json:"product_type"`
	PhotoURL      *string          `json:"photo_url"`
	StockQuantity *int             `json:"stock_quantity"`
}

// CreateProduct persists a new product.
func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Name == "" || req.Price == nil || req.CategoryID == "" || req.StockQuantity == nil {
		return fiber.NewError(fiber.StatusBadRequest, "missing required fields")
	}
	if !req.Price.IsPositive() {
		return fiber.NewError(fiber.StatusBadRequest, "price must be greater than zero")
	}
	if *req.StockQuantity < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "stock_quantity cannot be negative")
	}

	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid category_id")
	}
	var category models.Category
	if err := h.db.First(&category, "id = ?", categoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "category not found")
		}
		return err
	}

	productType := req.ProductType
	if productType == "" {
		productType = models.ProductTypePhysical
	}
	if productType != models.ProductTypePhysical && productType != models.ProductTypeDigital {
		return fiber.NewError(fiber.StatusBadRequest, "product_type must be physical or digital")
	}

	product := models.Product{
		Name:          req.Name,
		Description:   req.Description,
		Price:         *req.Price,
		CategoryID:    categoryID,
		ProductType:   productType,
		StockQuantity: *req.StockQuantity,
	}
	if req.PhotoURL != nil {
		product.PhotoURL = *req.PhotoURL
	}

	if err := h.db.Create(&product).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": product})
}

// UpdateProduct updates the provided fields of an existing product. A
// photo_url key may be present with an empty value to clear the photo.
func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var product models.Product
	if err := h.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.Price != nil {
		if !req.Price.IsPositive() {
			return fiber.NewError(fiber.StatusBadRequest, "price must be greater than zero")
		}
		updates["price"] = *req.Price
	}
	if req.CategoryID != "" {
		categoryID, err := uuid.Parse(req.CategoryID)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid category_id")
		}
		updates["category_id"] = categoryID
	}
	if req.ProductType != "" {
		if req.ProductType != models.ProductTypePhysical && req.ProductType != models.ProductTypeDigital {
			return fiber.NewError(fiber.StatusBadRequest, "product_type must be physical or digital")
		}
		updates["product_type"] = req.ProductType
	}
	if req.PhotoURL != nil {
		updates["photo_url"] = *req.PhotoURL
	}
	if req.StockQuantity != nil {
		if *req.StockQuantity < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "stock_quantity cannot be negative")
		}
		updates["stock_quantity"] = *req.StockQuantity
	}

	if len(updates) > 0 {
		if err := h.db.Model(&product).Updates(updates).Error; err != nil {
			return err
		}
	}

	return c.JSON(fiber.Map{"success": true, "data": product})
}

// DeleteProduct removes a product by ID.
func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	result := h.db.Delete(&models.Product{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "product not found")
	}

	return c.SendStatus(fiber.StatusNoContent)
}
