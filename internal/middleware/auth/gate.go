package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/sweetshop/backend/internal/models"
	"github.com/sweetshop/backend/internal/token"
)

const userContextKey = "currentUser"

// Gate resolves a bearer token to a user row and enforces the admin
// flag on protected routes.
type Gate struct {
	DB     *gorm.DB
	Tokens *token.Service
}

func (g *Gate) RequireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		const prefix = "Bearer "
		if header == "" || !strings.HasPrefix(header, prefix) {
			return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
		}

		email, err := g.Tokens.Verify(header[len(prefix):])
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
		}

		var user models.User
		if err := g.DB.Where("email = ?", email).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return echo.NewHTTPError(http.StatusUnauthorized, "user not found")
			}
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}

		c.Set(userContextKey, &user)
		return next(c)
	}
}

// AdminOnly must be chained after RequireUser.
func (g *Gate) AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user := CurrentUser(c)
		if user == nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
		}
		if !user.IsAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "admin only")
		}
		return next(c)
	}
}

func CurrentUser(c echo.Context) *models.User {
	if user, ok := c.Get(userContextKey).(*models.User); ok {
		return user
	}
	return nil
}
