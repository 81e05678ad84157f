package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func timePtr(t time.Time) *time.Time { return &t }

func TestNormalizeVoucherCode(t *testing.T) {
	assert.Equal(t, "SAVE500", NormalizeVoucherCode("  save500 "))
	assert.Equal(t, "WELCOME10", NormalizeVoucherCode("welcome10"))
}

func TestVoucher_ValidForUse(t *testing.T) {
	future := timePtr(time.Now().Add(24 * time.Hour))
	past := timePtr(time.Now().Add(-1 * time.Hour))

	tests := []struct {
		name    string
		voucher Voucher
		want    bool
	}{
		{"active without limit or expiry", Voucher{Active: true}, true},
		{"inactive", Voucher{Active: false}, false},
		{"expired", Voucher{Active: true, ExpiresAt: past}, false},
		{"unexpired", Voucher{Active: true, ExpiresAt: future}, true},
		{"under usage limit", Voucher{Active: true, UsageLimit: intPtr(5), UsageCount: 4}, true},
		{"at usage limit", Voucher{Active: true, UsageLimit: intPtr(1), UsageCount: 1}, false},
		{"over usage limit", Voucher{Active: true, UsageLimit: intPtr(1), UsageCount: 2}, false},
		{"inactive trumps unlimited", Voucher{Active: false, UsageLimit: nil}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.voucher.ValidForUse())
		})
	}
}

func TestVoucher_CalculateDiscount_Percentage(t *testing.T) {
	v := Voucher{
		Active:        true,
		DiscountType:  DiscountTypePercentage,
		DiscountValue: decimal.NewFromInt(15),
	}

	discount := v.CalculateDiscount(decimal.NewFromFloat(199.99))
	assert.True(t, discount.Equal(decimal.NewFromFloat(30.00)), "got %s", discount)

	discount = v.CalculateDiscount(decimal.NewFromInt(100))
	assert.True(t, discount.Equal(decimal.NewFromInt(15)), "got %s", discount)
}

func TestVoucher_CalculateDiscount_FixedAmountCappedAtSubtotal(t *testing.T) {
	// SAVE500 worth 500 on a 300 subtotal grants exactly 300.
	v := Voucher{
		Active:        true,
		Code:          "SAVE500",
		DiscountType:  DiscountTypeFixedAmount,
		DiscountValue: decimal.NewFromInt(500),
	}

	subtotal := decimal.NewFromInt(300)
	discount := v.CalculateDiscount(subtotal)
	assert.True(t, discount.Equal(subtotal), "got %s", discount)
	assert.True(t, subtotal.Sub(discount).IsZero())
}

func TestVoucher_CalculateDiscount_FixedAmountBelowSubtotal(t *testing.T) {
	v := Voucher{
		Active:        true,
		DiscountType:  DiscountTypeFixedAmount,
		DiscountValue: decimal.NewFromInt(50),
	}

	discount := v.CalculateDiscount(decimal.NewFromInt(300))
	assert.True(t, discount.Equal(decimal.NewFromInt(50)), "got %s", discount)
}

func TestVoucher_CalculateDiscount_UnusableVoucherGrantsNothing(t *testing.T) {
	v := Voucher{
		Active:        false,
		DiscountType:  DiscountTypePercentage,
		DiscountValue: decimal.NewFromInt(50),
	}

	assert.True(t, v.CalculateDiscount(decimal.NewFromInt(100)).IsZero())
}

func TestVoucher_CalculateDiscount_UnknownTypeGrantsNothing(t *testing.T) {
	v := Voucher{
		Active:        true,
		DiscountType:  "bogo",
		DiscountValue: decimal.NewFromInt(50),
	}

	assert.True(t, v.CalculateDiscount(decimal.NewFromInt(100)).IsZero())
}
