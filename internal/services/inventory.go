package services

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/orderdesk/internal/models"
)

// ErrInsufficientStock is returned when a reservation asks for more units
// than the product row holds at the time of the locked check.
type ErrInsufficientStock struct {
	ProductID   uuid.UUID
	ProductName string
	Available   int
	Requested   int
}

func (e *ErrInsufficientStock) Error() string {
	return fmt.Sprintf("insufficient stock for %s: available %d, requested %d",
		e.ProductName, e.Available, e.Requested)
}

// ReserveStock decrements a product's stock by quantity inside the caller's
// transaction. The product row is locked for update first and the stock level
// re-checked under the lock, so two concurrent reservations for the same
// product serialize and the second one validates against the committed value.
// A failed check leaves the row untouched and aborts the transaction.
func ReserveStock(tx *gorm.DB, productID uuid.UUID, quantity int) error {
	var product models.Product
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&product, "id = ?", productID).Error; err != nil {
		return err
	}

	if product.StockQuantity < quantity {
		return &ErrInsufficientStock{
			ProductID:   product.ID,
			ProductName: product.Name,
			Available:   product.StockQuantity,
			Requested:   quantity,
		}
	}

	return tx.Model(&product).
		UpdateColumn("stock_quantity", product.StockQuantity-quantity).Error
}

// ReleaseStock returns quantity units to a product's stock under the same
// row lock. Used when a line item is destroyed or its order is cancelled.
func ReleaseStock(tx *gorm.DB, productID uuid.UUID, quantity int) error {
	var product models.Product
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&product, "id = ?", productID).Error; err != nil {
		return err
	}

	return tx.Model(&product).
		UpdateColumn("stock_quantity", product.StockQuantity+quantity).Error
}
