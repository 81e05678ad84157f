package services

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/example/orderdesk/internal/database"
	"github.com/example/orderdesk/internal/models"
)

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		fmt.Println("TEST_DATABASE_URL not set, skipping integration tests")
		os.Exit(0)
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect to test database: %v\n", err)
		os.Exit(1)
	}

	if err := database.Migrate(testDB); err != nil {
		fmt.Fprintf(os.Stderr, "failed to migrate test database: %v\n", err)
		os.Exit(1)
	}

	os.Exit(m.Run())
}

func cleanup(t *testing.T) {
	t.Helper()
	for _, table := range []string{"order_items", "orders", "vouchers", "products", "categories", "customers", "users"} {
		require.NoError(t, testDB.Exec("DELETE FROM "+table).Error)
	}
}

func createTestCustomer(t *testing.T) *models.Customer {
	t.Helper()
	customer := &models.Customer{
		FirstName: "Test",
		LastName:  "Customer",
		Email:     fmt.Sprintf("customer-%d@example.com", time.Now().UnixNano()),
		Mobile:    "5550100",
	}
	require.NoError(t, testDB.Create(customer).Error)
	return customer
}

func createTestProduct(t *testing.T, name string, price float64, stock int) *models.Product {
	t.Helper()
	category := &models.Category{Name: "Category for " + name}
	require.NoError(t, testDB.Create(category).Error)

	product := &models.Product{
		Name:          name,
		Price:         decimal.NewFromFloat(price),
		CategoryID:    category.ID,
		ProductType:   models.ProductTypePhysical,
		StockQuantity: stock,
	}
	require.NoError(t, testDB.Create(product).Error)
	return product
}

func productStock(t *testing.T, product *models.Product) int {
	t.Helper()
	var fresh models.Product
	require.NoError(t, testDB.First(&fresh, "id = ?", product.ID).Error)
	return fresh.StockQuantity
}
