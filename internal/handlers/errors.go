package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/orderdesk/internal/services"
)

// serviceError maps service-layer errors onto HTTP statuses: validation to
// 400, missing entities to 404, conflicts (stock, vouchers, duplicate keys)
// to 409. Anything unrecognized bubbles up to fiber's error handler as a 500.
func serviceError(err error) error {
	var stockErr *services.ErrInsufficientStock
	if errors.As(err, &stockErr) {
		return fiber.NewError(fiber.StatusConflict, stockErr.Error())
	}

	switch {
	case errors.Is(err, services.ErrVoucherInvalid),
		errors.Is(err, gorm.ErrDuplicatedKey):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, services.ErrOrderNotFound),
		errors.Is(err, services.ErrCustomerNotFound),
		errors.Is(err, services.ErrProductNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrEmptyOrder),
		errors.Is(err, services.ErrInvalidQuantity),
		errors.Is(err, services.ErrInvalidUnitPrice),
		errors.Is(err, services.ErrInvalidStatus):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	return err
}
