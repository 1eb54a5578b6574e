package router

import (
	"store-service/internal/handlers"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Handlers struct {
	Orders   *handlers.OrderHandler
	Carts    *handlers.CartHandler
	Catalog  *handlers.CatalogHandler
	Accounts *handlers.AccountHandler
}

func Router(db *gorm.DB, h Handlers, log *zap.Logger) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// readiness завязан на БД: без неё сервис бесполезен
	r.GET("/ready", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			log.Warn("readiness: БД недоступна", zap.Error(err))
			c.JSON(503, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")

	api.POST("/checkout", h.Orders.Checkout)

	orders := api.Group("/orders")
	{
		orders.GET("", h.Orders.ListSummaries)
		orders.GET("/:id", h.Orders.GetByID)
		orders.GET("/number/:number", h.Orders.GetByNumber)
		orders.POST("/:id/payments", h.Orders.RecordPayment)
		orders.POST("/:id/pay", h.Orders.MarkPaid)
		orders.POST("/:id/process", h.Orders.StartProcessing)
		orders.POST("/:id/ship", h.Orders.Ship)
		orders.POST("/:id/deliver", h.Orders.MarkDelivered)
		orders.POST("/:id/cancel", h.Orders.Cancel)
		orders.POST("/:id/refund", h.Orders.Refund)
	}

	carts := api.Group("/carts")
	{
		carts.POST("", h.Carts.GetOrCreate)
		carts.GET("/:id", h.Carts.Get)
		carts.POST("/:id/items", h.Carts.AddItem)
		carts.PUT("/:id/items/:product_id", h.Carts.SetItemQuantity)
		carts.DELETE("/:id/items/:product_id", h.Carts.RemoveItem)
	}

	products := api.Group("/products")
	{
		products.POST("", h.Catalog.CreateProduct)
		products.GET("", h.Catalog.ListProducts)
		products.GET("/:id", h.Catalog.GetProduct)
		products.PATCH("/:id", h.Catalog.UpdateProduct)
		products.DELETE("/:id", h.Catalog.DeleteProduct)
		products.GET("/:id/stock", h.Catalog.GetStock)
		products.GET("/:id/availability", h.Catalog.GetAvailability)
		products.POST("/:id/restock", h.Catalog.Restock)
		products.POST("/:id/adjust", h.Catalog.AdjustStock)
	}

	users := api.Group("/users")
	{
		users.POST("", h.Accounts.CreateUser)
		users.GET("/by-email", h.Accounts.GetUserByEmail)
		users.GET("/:id/roles", h.Accounts.ListRoles)
		users.PUT("/:id/roles/:role", h.Accounts.AssignRole)
		users.DELETE("/:id/roles/:role", h.Accounts.RevokeRole)
		users.POST("/:id/addresses", h.Accounts.CreateAddress)
		users.GET("/:id/addresses", h.Accounts.ListAddresses)
		users.PUT("/:id/addresses/:address_id/default-shipping", h.Accounts.SetDefaultShipping)
		users.PUT("/:id/addresses/:address_id/default-billing", h.Accounts.SetDefaultBilling)
		users.DELETE("/:id/addresses/:address_id", h.Accounts.DeleteAddress)
	}

	return r
}
