package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestOrderItem_LineTotal(t *testing.T) {
	item := OrderItem{
		Quantity:  3,
		UnitPrice: decimal.NewFromFloat(19.99),
	}

	assert.True(t, item.LineTotal().Equal(decimal.NewFromFloat(59.97)),
		"got %s", item.LineTotal())
}

func TestCustomer_FullName(t *testing.T) {
	c := Customer{FirstName: "Ada", LastName: "Lovelace"}
	assert.Equal(t, "Ada Lovelace", c.FullName())
}
