package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/orderdesk/internal/models"
	"github.com/example/orderdesk/internal/utils"
)

var (
	ErrEmptyOrder       = errors.New("order must contain at least one item")
	ErrInvalidQuantity  = errors.New("quantity must be greater than zero")
	ErrInvalidUnitPrice = errors.New("unit price must be greater than zero")
	ErrInvalidStatus    = errors.New("unknown order status")
	ErrCustomerNotFound = errors.New("customer not found")
	ErrProductNotFound  = errors.New("product not found")
	ErrOrderNotFound    = errors.New("order not found")
	ErrVoucherInvalid   = errors.New("voucher not found or invalid")
)

// OrderService runs the order placement workflow and status transitions.
type OrderService struct {
	db     *gorm.DB
	mailer *MailerService
}

// NewOrderService constructs OrderService. The mailer may be nil.
func NewOrderService(db *gorm.DB, mailer *MailerService) *OrderService {
	return &OrderService{db: db, mailer: mailer}
}

// OrderItemInput is one requested line of a placement attempt. The unit price
// is taken from the caller as a point-in-time price lock.
type OrderItemInput struct {
	ProductID uuid.UUID
	Quantity  int
	UnitPrice decimal.Decimal
}

// PlaceOrderInput carries everything a single placement attempt needs.
type PlaceOrderInput struct {
	CustomerID             uuid.UUID
	Items                  []OrderItemInput
	OrderType              string
	ShippingMethod         string
	PaymentMethod          string
	VoucherCode            string
	DeliveryAddress        string
	DeliveryNotes          string
	DeliveryDatePreference *time.Time
}

// PlaceOrder executes the whole placement as one transaction: stock
// preflight, voucher application, order creation, line-item materialization
// with locked stock decrements, and total finalization from the persisted
// items. Any failure rolls all of it back. Voucher consumption and the
// confirmation email run after the commit and never undo the order.
func (s *OrderService) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*models.Order, error) {
	if len(input.Items) == 0 {
		return nil, ErrEmptyOrder
	}
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		if !item.UnitPrice.IsPositive() {
			return nil, ErrInvalidUnitPrice
		}
	}

	var order models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var customer models.Customer
		if err := tx.First(&customer, "id = ?", input.CustomerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCustomerNotFound
			}
			return err
		}

		// Advisory preflight: fail fast before any write. The authoritative
		// check happens under the row lock when items are materialized.
		for _, item := range input.Items {
			var product models.Product
			if err := tx.First(&product, "id = ?", item.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrProductNotFound
				}
				return err
			}
			if item.Quantity > product.StockQuantity {
				return &ErrInsufficientStock{
					ProductID:   product.ID,
					ProductName: product.Name,
					Available:   product.StockQuantity,
					Requested:   item.Quantity,
				}
			}
		}

		subtotal := decimal.Zero
		for _, item := range input.Items {
			subtotal = subtotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}

		var voucher *models.Voucher
		discount := decimal.Zero
		if input.VoucherCode != "" {
			var found models.Voucher
			code := models.NormalizeVoucherCode(input.VoucherCode)
			if err := tx.First(&found, "code = ?", code).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrVoucherInvalid
				}
				return err
			}
			if !found.ValidForUse() {
				return ErrVoucherInvalid
			}
			voucher = &found
			discount = found.CalculateDiscount(subtotal)
		}

		orderType := input.OrderType
		if orderType == "" {
			orderType = "online"
		}

		order = models.Order{
			CustomerID:             customer.ID,
			Status:                 models.OrderStatusPending,
			OrderType:              orderType,
			ShippingMethod:         input.ShippingMethod,
			PaymentMethod:          input.PaymentMethod,
			Subtotal:               subtotal,
			DiscountAmount:         discount,
			Total:                  subtotal.Sub(discount),
			DeliveryAddress:        input.DeliveryAddress,
			DeliveryNotes:          input.DeliveryNotes,
			DeliveryDatePreference: input.DeliveryDatePreference,
		}
		if voucher != nil {
			order.VoucherID = &voucher.ID
		}

		if err := createWithReference(tx, &order); err != nil {
			return err
		}

		for _, item := range input.Items {
			line := models.OrderItem{
				OrderID:   order.ID,
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice,
			}
			line.TotalPrice = line.LineTotal()
			if err := tx.Create(&line).Error; err != nil {
				return err
			}
			if err := ReserveStock(tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		return finalizeTotals(tx, &order)
	})
	if err != nil {
		return nil, err
	}

	// Consumed only once the order is durably committed. A failure here is
	// logged, never rolled back.
	if order.VoucherID != nil {
		if err := s.db.WithContext(ctx).Model(&models.Voucher{}).
			Where("id = ?", *order.VoucherID).
			UpdateColumn("usage_count", gorm.Expr("usage_count + 1")).Error; err != nil {
			log.Printf("[Order] voucher usage increment failed for %s: %v", order.ReferenceNumber, err)
		}
	}

	if s.mailer != nil {
		go s.sendConfirmation(order.ID)
	}

	return s.getOrder(ctx, order.ID)
}

// UpdateStatus transitions an order, releasing stock for every line item
// exactly once when the order moves into cancelled. The order row is locked
// so concurrent transitions serialize and a second cancel sees the already
// cancelled status.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, status string) (*models.Order, error) {
	switch status {
	case models.OrderStatusPending, models.OrderStatusConfirmed,
		models.OrderStatusShipped, models.OrderStatusDelivered,
		models.OrderStatusCancelled:
	default:
		return nil, ErrInvalidStatus
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&order, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}

		if status == models.OrderStatusCancelled && order.Status != models.OrderStatusCancelled {
			var items []models.OrderItem
			if err := tx.Find(&items, "order_id = ?", order.ID).Error; err != nil {
				return err
			}
			for _, item := range items {
				if err := ReleaseStock(tx, item.ProductID, item.Quantity); err != nil {
					return err
				}
			}
		}

		return tx.Model(&order).Update("status", status).Error
	})
	if err != nil {
		return nil, err
	}

	return s.getOrder(ctx, orderID)
}

// AddItem appends a line to an existing order at the product's current price
// and recomputes the order totals. Manager-only at the access layer.
func (s *OrderService) AddItem(ctx context.Context, orderID, productID uuid.UUID, quantity int) (*models.OrderItem, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	var line models.OrderItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&order, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}

		var product models.Product
		if err := tx.First(&product, "id = ?", productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}

		line = models.OrderItem{
			OrderID:   order.ID,
			ProductID: product.ID,
			Quantity:  quantity,
			UnitPrice: product.Price,
		}
		line.TotalPrice = line.LineTotal()
		if err := tx.Create(&line).Error; err != nil {
			return err
		}

		if err := ReserveStock(tx, product.ID, quantity); err != nil {
			return err
		}

		return finalizeTotals(tx, &order)
	})
	if err != nil {
		return nil, err
	}

	return &line, nil
}

// finalizeTotals recomputes subtotal and total from the persisted line items
// and writes them back, defending against drift between the preflight
// subtotal and what actually materialized.
func finalizeTotals(tx *gorm.DB, order *models.Order) error {
	var lineSum decimal.Decimal
	row := tx.Model(&models.OrderItem{}).
		Where("order_id = ?", order.ID).
		Select("COALESCE(SUM(total_price), 0)").
		Row()
	if err := row.Scan(&lineSum); err != nil {
		return err
	}

	total := lineSum.Sub(order.DiscountAmount)
	if err := tx.Model(order).Updates(map[string]interface{}{
		"subtotal": lineSum,
		"total":    total,
	}).Error; err != nil {
		return err
	}

	order.Subtotal = lineSum
	order.Total = total
	return nil
}

// createWithReference inserts the order with a generated reference number.
// On a unique-key collision the number is regenerated and the insert retried
// once; a second collision surfaces as a creation failure. The insert runs
// under a savepoint because Postgres aborts the enclosing transaction on a
// failed statement.
func createWithReference(tx *gorm.DB, order *models.Order) error {
	for attempt := 0; attempt < 2; attempt++ {
		ref, err := utils.GenerateReferenceNumber()
		if err != nil {
			return err
		}
		order.ReferenceNumber = ref

		if err := tx.SavePoint("order_insert").Error; err != nil {
			return err
		}
		err = tx.Create(order).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
		if err := tx.RollbackTo("order_insert").Error; err != nil {
			return err
		}
	}
	return gorm.ErrDuplicatedKey
}

func (s *OrderService) getOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).
		Preload("Items").Preload("Customer").Preload("Voucher").
		First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (s *OrderService) sendConfirmation(orderID uuid.UUID) {
	order, err := s.getOrder(context.Background(), orderID)
	if err != nil {
		log.Printf("[Order] confirmation lookup failed for %s: %v", orderID, err)
		return
	}
	if err := s.mailer.SendOrderConfirmation(order); err != nil {
		log.Printf("[Order] confirmation email failed for %s: %v", order.ReferenceNumber, err)
	}
}
