package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/sweetshop/backend/internal/handlers"
	"github.com/sweetshop/backend/internal/middleware/auth"
)

type Deps struct {
	DB            *gorm.DB
	AuthHandler   *handlers.AuthHandler
	SweetHandler  *handlers.SweetHandler
	SearchHandler *handlers.SearchHandler
	Gate          *auth.Gate
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"message": "Sweet Shop API",
			"version": "1.0.0",
			"health":  "/health",
		})
	})
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "healthy", "service": "sweet-shop-backend"})
	})

	api := e.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/register", d.AuthHandler.Register)
	authGroup.POST("/login", d.AuthHandler.Login)

	sweets := api.Group("/sweets")
	sweets.GET("", d.SweetHandler.ListSweets)
	sweets.GET("/search", d.SearchHandler.Search)
	sweets.POST("/:id/purchase", d.SweetHandler.PurchaseSweet, d.Gate.RequireUser)

	admin := sweets.Group("", d.Gate.RequireUser, d.Gate.AdminOnly)
	admin.POST("", d.SweetHandler.CreateSweet)
	admin.PUT("/:id", d.SweetHandler.UpdateSweet)
	admin.DELETE("/:id", d.SweetHandler.DeleteSweet)
}
