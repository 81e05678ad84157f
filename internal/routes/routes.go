package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/orderdesk/internal/config"
	"github.com/example/orderdesk/internal/handlers"
	"github.com/example/orderdesk/internal/middleware"
	"github.com/example/orderdesk/internal/services"
)

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	mailer := services.NewMailerService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.MailFrom)
	orderService := services.NewOrderService(db, mailer)

	authHandler := handlers.NewAuthHandler(db, cfg)
	catalogHandler := handlers.NewCatalogHandler(db)
	productHandler := handlers.NewProductHandler(db)
	customerHandler := handlers.NewCustomerHandler(db)
	voucherHandler := handlers.NewVoucherHandler(db)
	orderHandler := handlers.NewOrderHandler(db, orderService)
	uploadHandler := handlers.NewUploadHandler(cfg)

	app.Get("/uploads/:filename", uploadHandler.Show)

	api := app.Group("/api")

	api.Post("/auth/login", authHandler.Login)

	authed := api.Group("", middleware.AuthMiddleware(db, cfg))
	manager := authed.Group("", middleware.RequireManager())

	manager.Post("/auth/register", authHandler.Register)

	authed.Get("/categories", catalogHandler.ListCategories)
	authed.Get("/categories/:id", catalogHandler.GetCategory)
	manager.Post("/categories", catalogHandler.CreateCategory)
	manager.Put("/categories/:id", catalogHandler.UpdateCategory)
	manager.Delete("/categories/:id", catalogHandler.DeleteCategory)

	authed.Get("/products", productHandler.ListProducts)
	authed.Get("/products/:id", productHandler.GetProduct)
	manager.Post("/products", productHandler.CreateProduct)
	manager.Put("/products/:id", productHandler.UpdateProduct)
	manager.Delete("/products/:id", productHandler.DeleteProduct)

	authed.Get("/customers", customerHandler.ListCustomers)
	authed.Get("/customers/:id", customerHandler.GetCustomer)
	authed.Post("/customers", customerHandler.CreateCustomer)
	manager.Put("/customers/:id", customerHandler.UpdateCustomer)
	manager.Delete("/customers/:id", customerHandler.DeleteCustomer)

	authed.Get("/vouchers", voucherHandler.ListVouchers)
	authed.Get("/vouchers/validate", voucherHandler.ValidateVoucher)
	manager.Post("/vouchers", voucherHandler.CreateVoucher)
	manager.Put("/vouchers/:id", voucherHandler.UpdateVoucher)
	manager.Delete("/vouchers/:id", voucherHandler.DeleteVoucher)

	authed.Get("/orders", orderHandler.ListOrders)
	authed.Get("/orders/:id", orderHandler.GetOrder)
	authed.Post("/orders", orderHandler.CreateOrder)
	manager.Patch("/orders/:id/status", orderHandler.UpdateStatus)
	manager.Post("/orders/:id/items", orderHandler.AddItem)

	manager.Post("/uploads", uploadHandler.Create)
}
