package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product types.
const (
	ProductTypePhysical = "physical"
	ProductTypeDigital  = "digital"
)

// Product is a sellable item. StockQuantity is only ever changed through
// the inventory service, which holds a row lock for the read-check-write.
type Product struct {
	BaseModel
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `gorm:"type:numeric" json:"price"`
	CategoryID    uuid.UUID       `gorm:"type:uuid;index" json:"category_id"`
	Category      *Category       `json:"category,omitempty"`
	ProductType   string          `gorm:"default:physical" json:"product_type"`
	PhotoURL      string          `json:"photo_url"`
	StockQuantity int             `json:"stock_quantity"`
}
