package services

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/orderdesk/internal/models"
)

func placeInput(customer *models.Customer, product *models.Product, quantity int) PlaceOrderInput {
	return PlaceOrderInput{
		CustomerID:    customer.ID,
		PaymentMethod: "cash",
		Items: []OrderItemInput{
			{ProductID: product.ID, Quantity: quantity, UnitPrice: product.Price},
		},
	}
}

func TestPlaceOrder_DecrementsStockAndComputesTotals(t *testing.T) {
	cleanup(t)
	svc := NewOrderService(testDB, nil)

	customer := createTestCustomer(t)
	product := createTestProduct(t, "Widget", 100, 5)

	order, err := svc.PlaceOrder(context.Background(), placeInput(customer, product, 3))
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Regexp(t, regexp.MustCompile(`^ORD-\d{8}-[0-9A-F]{8}$`), order.ReferenceNumber)
	require.Len(t, order.Items, 1)
	assert.True(t, order.Subtotal.Equal(decimal.NewFromInt(300)), "subtotal %s", order.Subtotal)
	assert.True(t, order.DiscountAmount.IsZero())
	assert.True(t, order.Total.Equal(decimal.NewFromInt(300)), "total %s", order.Total)
	assert.True(t, order.Items[0].TotalPrice.Equal(decimal.NewFromInt(300)))

	assert.Equal(t, 2, productStock(t, product))
}

func TestPlaceOrder_InsufficientStockRollsBackEverything(t *testing.T) {
	cleanup(t)
	svc := NewOrderService(testDB, nil)

	customer := createTestCustomer(t)
	product := createTestProduct(t, "Scarce", 50, 2)

	_, err := svc.PlaceOrder(context.Background(), placeInput(customer, product, 3))
	require.Error(t, err)

	var stockErr *ErrInsufficientStock
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "Scarce", stockErr.ProductName)
	assert.Equal(t, 2, stockErr.Available)

	var orderCount int64
	require.NoError(t, testDB.Model(&models.Order{}).Count(&orderCount).Error)
	assert.Zero(t, orderCount)
	assert.Equal(t, 2, productStock(t, product))
}

func TestPlaceOrder_MultiItemPartialShortageLeavesNoPartialState(t *testing.T) {
	cleanup(t)
	svc := NewOrderService(testDB, nil)

	customer := createTestCustomer(t)
	plenty := createTestProduct(t, "Plenty", 10, 100)
	scarce := createTestProduct(t, "Short", 10, 1)

	input := PlaceOrderInput{
		CustomerID:    customer.ID,
		PaymentMethod: "cash",
		Items: []OrderItemInput{
			{ProductID: plenty.ID, Quantity: 5, UnitPrice: plenty.Price},
			{ProductID: scarce.ID, Quantity: 2, UnitPrice: scarce.Price},
		},
	}

	_, err := svc.PlaceOrder(context.Background(), input)
	var stockErr *ErrInsufficientStock
	require.ErrorAs(t, err, &stockErr)

	assert.Equal(t, 100, productStock(t, plenty))
	assert.Equal(t, 1, productStock(t, scarce))

	var itemCount int64
	require.NoError(t, testDB.Model(&models.OrderItem{}).Count(&itemCount).Error)
	assert.Zero(t, itemCount)
}

func TestPlaceOrder_FixedVoucherNeverExceedsSubtotal(t *testing.T) {
	cleanup(t)
	svc := NewOrderService(testDB, nil)

	customer := createTestCustomer(t)
	product := createTestProduct(t, "Trinket", 300, 10)

	voucher := &models.Voucher{
		Code:          "SAVE500",
		Name:          "Save 500",
		DiscountType:  models.DiscountTypeFixedAmount,
		DiscountValue: decimal.NewFromInt(500),
		Active:        true,
	}
	require.NoError(t, testDB.Create(voucher).Error)

	input := placeInput(customer, product, 1)
	input.VoucherCode = "save500"

	order, err := svc.PlaceOrder(context.Background(), input)
	require.NoError(t, err)

	assert.True(t, order.DiscountAmount.Equal(decimal.NewFromInt(300)), "discount %s", order.DiscountAmount)
	assert.True(t, order.Total.IsZero(), "total %s", order.Total)

	var fresh models.Voucher
	require.NoError(t, testDB.First(&fresh, "id = ?", voucher.ID).Error)
	assert.Equal(t, 1, fresh.UsageCount)
}

func TestPlaceOrder_PercentageVoucher(t *testing.T) {
	cleanup(t)
	svc := NewOrderService(testDB, nil)

	customer := createTestCustomer(t)
	product := createTestProduct(t, "Gadget", 200, 10)

	voucher := &models.Voucher{
		Code:          "TEN",
		Name:          "Ten percent",
		DiscountType:  models.DiscountTypePercentage,
		DiscountValue: decimal.NewFromInt(10),
		Active:        true,
	}
	require.NoError(t, testDB.Create(voucher).Error)

	input := placeInput(customer, product, 2)
	input.VoucherCode = "TEN"

	order, err := svc.PlaceOrder(context.Background(), input)
	require.NoError(t, err)

	assert.True(t, order.DiscountAmount.Equal(decimal.NewFromInt(40)), "discount %s", order.DiscountAmount)
	assert.True(t, order.Total.Equal(decimal.NewFromInt(360)), "total %s", order.Total)
}

func TestPlaceOrder_ExhaustedVoucherFails(t *testing.T) {
	cleanup(t)
	svc := NewOrderService(testDB, nil)

	customer := createTestCustomer(t)
	product := createTestProduct(t, "Bauble", 100, 10)

	limit := 1
	voucher := &models.Voucher{
		Code:          "ONCE",
		Name:          "Single use",
		DiscountType:  models.DiscountTypeFixedAmount,
		DiscountValue: decimal.NewFromInt(10),
		Active:        true,
		UsageLimit:    &limit,
	}
	require.NoError(t, testDB.Create(voucher).Error)

	first := placeInput(customer, product, 1)
	first.VoucherCode = "ONCE"
	_, err := svc.PlaceOrder(context.Background(), first)
	require.NoError(t, err)

	second := placeInput(customer, product, 1)
	second.VoucherCode = "ONCE"
	_, err = svc.PlaceOrder(context.Background(), second)
	assert.ErrorIs(t, err, ErrVoucherInvalid)
}

func TestPlaceOrder_UnknownVoucherFails(t *testing.T) {
	cleanup(t)
	svc := NewOrderService(testDB, nil)

	customer := createTestCustomer(t)
	product := createTestProduct(t, "Doohickey", 100, 10)

	input := placeInput(customer, product, 1)
	input.VoucherCode = "NOPE"

	_, err := svc.PlaceOrder(context.Background(), input)
	assert.ErrorIs(t, err, ErrVoucherInvalid)

	assert.Equal(t, 10, productStock(t, product))
}

func TestUpdateStatus_CancelRestoresStockOnce(t *testing.T) {
	cleanup(t)
	svc := NewOrderService(testDB, nil)

	customer := createTestCustomer(t)
	product := createTestProduct(t, "Returnable", 100, 5)

	order, err := svc.PlaceOrder(context.Background(), placeInput(customer, product, 3))
	require.NoError(t, err)
	require.Equal(t, 2, productStock(t, product))

	_, err = svc.UpdateStatus(context.Background(), order.ID, models.OrderStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, 5, productStock(t, product))

	// Cancelling an already cancelled order must not restore again.
	_, err = svc.UpdateStatus(context.Background(), order.ID, models.OrderStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, 5, productStock(t, product))
}

func TestUpdateStatus_LeavingCancelledDoesNotReverse(t *testing.T) {
	cleanup(t)
	svc := NewOrderService(testDB, nil)

	customer := createTestCustomer(t)
	product := createTestProduct(t, "OneWay", 100, 5)

	order, err := svc.PlaceOrder(context.Background(), placeInput(customer, product, 2))
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), order.ID, models.OrderStatusCancelled)
	require.NoError(t, err)
	require.Equal(t, 5, productStock(t, product))

	_, err = svc.UpdateStatus(context.Background(), order.ID, models.OrderStatusPending)
	require.NoError(t, err)
	assert.Equal(t, 5, productStock(t, product))
}

func TestUpdateStatus_RejectsUnknownStatus(t *testing.T) {
	cleanup(t)
	svc := NewOrderService(testDB, nil)

	customer := createTestCustomer(t)
	product := createTestProduct(t, "Statusy", 100, 5)

	order, err := svc.PlaceOrder(context.Background(), placeInput(customer, product, 1))
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), order.ID, "misplaced")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestAddItem_UsesCurrentPriceAndRecomputesTotal(t *testing.T) {
	cleanup(t)
	svc := NewOrderService(testDB, nil)

	customer := createTestCustomer(t)
	product := createTestProduct(t, "Original", 100, 10)
	extra := createTestProduct(t, "Extra", 25, 10)

	order, err := svc.PlaceOrder(context.Background(), placeInput(customer, product, 1))
	require.NoError(t, err)

	item, err := svc.AddItem(context.Background(), order.ID, extra.ID, 2)
	require.NoError(t, err)
	assert.True(t, item.UnitPrice.Equal(extra.Price))
	assert.True(t, item.TotalPrice.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, 8, productStock(t, extra))

	var fresh models.Order
	require.NoError(t, testDB.First(&fresh, "id = ?", order.ID).Error)
	assert.True(t, fresh.Subtotal.Equal(decimal.NewFromInt(150)), "subtotal %s", fresh.Subtotal)
	assert.True(t, fresh.Total.Equal(decimal.NewFromInt(150)), "total %s", fresh.Total)
}

func TestAddItem_InsufficientStockFails(t *testing.T) {
	cleanup(t)
	svc := NewOrderService(testDB, nil)

	customer := createTestCustomer(t)
	product := createTestProduct(t, "Primary", 100, 10)
	scarce := createTestProduct(t, "Rare", 25, 1)

	order, err := svc.PlaceOrder(context.Background(), placeInput(customer, product, 1))
	require.NoError(t, err)

	_, err = svc.AddItem(context.Background(), order.ID, scarce.ID, 2)
	var stockErr *ErrInsufficientStock
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 1, productStock(t, scarce))
}

func TestPlaceOrder_ConcurrentLastUnit(t *testing.T) {
	cleanup(t)
	svc := NewOrderService(testDB, nil)

	customer := createTestCustomer(t)
	product := createTestProduct(t, "LastOne", 100, 1)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = svc.PlaceOrder(context.Background(), placeInput(customer, product, 1))
		}(i)
	}
	wg.Wait()

	var successes, stockFailures int
	for _, err := range results {
		if err == nil {
			successes++
			continue
		}
		var stockErr *ErrInsufficientStock
		if errors.As(err, &stockErr) {
			stockFailures++
		} else {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, stockFailures)
	assert.Equal(t, 0, productStock(t, product))
}
