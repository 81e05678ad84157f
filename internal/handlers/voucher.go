package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/example/orderdesk/internal/models"
	"github.com/example/orderdesk/internal/utils"
)

// VoucherHandler manages voucher endpoints.
type VoucherHandler struct {
	db *gorm.DB
}

// NewVoucherHandler constructs VoucherHandler.
func NewVoucherHandler(db *gorm.DB) *VoucherHandler {
	return &VoucherHandler{db: db}
}

// ListVouchers returns paginated vouchers. By default only currently
// available ones (active, unexpired) are listed; pass active_only=false for
// everything.
func (h *VoucherHandler) ListVouchers(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Voucher{})

	if c.Query("active_only", "true") != "false" {
		query = query.Where("active = ?", true).
			Where("expires_at IS NULL OR expires_at > ?", time.Now())
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var vouchers []models.Voucher
	if err := query.Order("name asc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&vouchers).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    vouchers,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// ValidateVoucher resolves a code and reports whether it can be applied,
// along with the discount it would grant on the supplied subtotal.
func (h *VoucherHandler) ValidateVoucher(c *fiber.Ctx) error {
	code := c.Query("code")
	if code == "" {
		return fiber.NewError(fiber.StatusBadRequest, "code is required")
	}

	subtotal := decimal.Zero
	if raw := c.Query("subtotal"); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid subtotal")
		}
		subtotal = parsed
	}

	var voucher models.Voucher
	err := h.db.First(&voucher, "code = ?", models.NormalizeVoucherCode(code)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(fiber.Map{"success": true, "valid": false})
		}
		return err
	}

	if !voucher.ValidForUse() {
		return c.JSON(fiber.Map{"success": true, "valid": false})
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"valid":    true,
		"data":     voucher,
		"discount": voucher.CalculateDiscount(subtotal),
	})
}

type voucherRequest struct {
	Code          string           `json:"code"`
	Name          string           `json:"name"`
	DiscountType  string           `json:"discount_type"`
	DiscountValue *decimal.Decimal `json:"discount_value"`
	ExpiresAt     *time.Time       `json:"expires_at"`
	Active        *bool            `json:"active"`
	UsageLimit    *int             `json:"usage_limit"`
}

// CreateVoucher persists a new voucher.
func (h *VoucherHandler) CreateVoucher(c *fiber.Ctx) error {
	var req voucherRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Code == "" || req.Name == "" || req.DiscountValue == nil {
		return fiber.NewError(fiber.StatusBadRequest, "missing required fields")
	}
	if req.DiscountType != models.DiscountTypePercentage && req.DiscountType != models.DiscountTypeFixedAmount {
		return fiber.NewError(fiber.StatusBadRequest, "discount_type must be percentage or fixed_amount")
	}
	if !req.DiscountValue.IsPositive() {
		return fiber.NewError(fiber.StatusBadRequest, "discount_value must be greater than zero")
	}
	if req.UsageLimit != nil && *req.UsageLimit < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "usage_limit cannot be negative")
	}

	voucher := models.Voucher{
		Code:          req.Code,
		Name:          req.Name,
		DiscountType:  req.DiscountType,
		DiscountValue: *req.DiscountValue,
		ExpiresAt:     req.ExpiresAt,
		Active:        true,
		UsageLimit:    req.UsageLimit,
	}
	if req.Active != nil {
		voucher.Active = *req.Active
	}

	if err := h.db.Create(&voucher).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fiber.NewError(fiber.StatusConflict, "voucher code already exists")
		}
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": voucher})
}

// UpdateVoucher updates the provided fields of an existing voucher.
func (h *VoucherHandler) UpdateVoucher(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var voucher models.Voucher
	if err := h.db.First(&voucher, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "voucher not found")
		}
		return err
	}

	var req voucherRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.DiscountType != "" {
		if req.DiscountType != models.DiscountTypePercentage && req.DiscountType != models.DiscountTypeFixedAmount {
			return fiber.NewError(fiber.StatusBadRequest, "discount_type must be percentage or fixed_amount")
		}
		updates["discount_type"] = req.DiscountType
	}
	if req.DiscountValue != nil {
		if !req.DiscountValue.IsPositive() {
			return fiber.NewError(fiber.StatusBadRequest, "discount_value must be greater than zero")
		}
		updates["discount_value"] = *req.DiscountValue
	}
	if req.ExpiresAt != nil {
		updates["expires_at"] = *req.ExpiresAt
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}
	if req.UsageLimit != nil {
		if *req.UsageLimit < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "usage_limit cannot be negative")
		}
		updates["usage_limit"] = *req.UsageLimit
	}

	if len(updates) > 0 {
		if err := h.db.Model(&voucher).Updates(updates).Error; err != nil {
			return err
		}
	}

	return c.JSON(fiber.Map{"success": true, "data": voucher})
}

// DeleteVoucher removes a voucher; dependent orders keep their recorded
// discount but lose the reference (SET NULL).
func (h *VoucherHandler) DeleteVoucher(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	result := h.db.Delete(&models.Voucher{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "voucher not found")
	}

	return c.SendStatus(fiber.StatusNoContent)
}
