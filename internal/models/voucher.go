package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Voucher discount types.
const (
	DiscountTypePercentage  = "percentage"
	DiscountTypeFixedAmount = "fixed_amount"
)

// Voucher is a discount code. Codes are stored upper-cased so lookups are
// case-insensitive.
type Voucher struct {
	BaseModel
	Code          string          `gorm:"uniqueIndex" json:"code"`
	Name          string          `json:"name"`
	DiscountType  string          `json:"discount_type"`
	DiscountValue decimal.Decimal `gorm:"type:numeric" json:"discount_value"`
	ExpiresAt     *time.Time      `json:"expires_at"`
	Active        bool            `gorm:"default:true" json:"active"`
	UsageLimit    *int            `json:"usage_limit"`
	UsageCount    int             `gorm:"default:0" json:"usage_count"`
}

// NormalizeVoucherCode trims and upper-cases a code the way it is stored.
func NormalizeVoucherCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// BeforeSave keeps the stored code in its normalized form.
func (v *Voucher) BeforeSave(tx *gorm.DB) error {
	v.Code = NormalizeVoucherCode(v.Code)
	return nil
}

// Expired reports whether the voucher has an expiry in the past.
func (v *Voucher) Expired() bool {
	return v.ExpiresAt != nil && v.ExpiresAt.Before(time.Now())
}

// ValidForUse reports whether the voucher can be applied to an order:
// active, not expired, and under its usage limit if one is set.
func (v *Voucher) ValidForUse() bool {
	if !v.Active || v.Expired() {
		return false
	}
	if v.UsageLimit == nil {
		return true
	}
	return v.UsageCount < *v.UsageLimit
}

// CalculateDiscount returns the discount this voucher grants on the given
// subtotal, rounded to two decimals. An unusable voucher grants nothing, and
// a fixed amount is capped at the subtotal so totals never go negative.
func (v *Voucher) CalculateDiscount(subtotal decimal.Decimal) decimal.Decimal {
	if !v.ValidForUse() {
		return decimal.Zero
	}

	switch v.DiscountType {
	case DiscountTypePercentage:
		return subtotal.Mul(v.DiscountValue).Div(decimal.NewFromInt(100)).Round(2)
	case DiscountTypeFixedAmount:
		if v.DiscountValue.GreaterThan(subtotal) {
			return subtotal.Round(2)
		}
		return v.DiscountValue.Round(2)
	default:
		return decimal.Zero
	}
}
