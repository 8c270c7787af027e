package httpserver

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/storefront/backend/internal/handlers"
	"github.com/storefront/backend/internal/handlers/cart"
	authmw "github.com/storefront/backend/internal/middleware/auth"
)

type Deps struct {
	DB             *gorm.DB
	AuthHandler    *handlers.AuthHandler
	ProductHandler *handlers.ProductHandler
	CartHandler    *cart.CartHandler
	SearchHandler  *handlers.SearchHandler
	Auth           *authmw.Middleware
}

func Register(e *echo.Echo, d *Deps) {
	e.HTTPErrorHandler = ErrorHandler()

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	e.POST("/auth/login", d.AuthHandler.Login)
	e.POST("/auth/logout", d.AuthHandler.Logout)
	e.GET("/auth/me", d.AuthHandler.Me, d.Auth.RequireSession)

	e.GET("/products", d.ProductHandler.GetProducts)
	if d.SearchHandler != nil {
		e.GET("/products/search", d.SearchHandler.Handler)
	}
	e.GET("/products/:id", d.ProductHandler.GetProduct)
	e.POST("/products/create", d.ProductHandler.CreateProduct, d.Auth.StaffOnly)
	e.POST("/products/update", d.ProductHandler.UpdateProduct, d.Auth.StaffOnly)
	e.POST("/products/delete", d.ProductHandler.DeleteProduct, d.Auth.StaffOnly)

	e.GET("/carts", d.CartHandler.ListCarts, d.Auth.RequireSession)
	e.POST("/cart", d.CartHandler.CreateCart, d.Auth.RequireSession)
	e.POST("/cart/update", d.CartHandler.UpdateCart, d.Auth.RequireSession)
	e.POST("/cart/delete", d.CartHandler.DeleteCart, d.Auth.RequireSession)
}
