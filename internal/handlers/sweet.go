package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/sweetshop/backend/internal/models"
	"github.com/sweetshop/backend/internal/mykafka"
	"github.com/sweetshop/backend/internal/service/search"
)

type SweetHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
	Indexer  *search.Indexer
}

func (h *SweetHandler) publish(c echo.Context, event map[string]any) {
	if h.Producer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "sweet_events", fmt.Sprint(event["sweetID"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

func (h *SweetHandler) reindex(c echo.Context, sweet *models.Sweet) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Indexer.IndexSweet(ctx, sweet); err != nil {
		c.Logger().Errorf("ES index error: %v", err)
	}
}

func (h *SweetHandler) ListSweets(c echo.Context) error {
	var sweets []models.Sweet
	if err := h.DB.Find(&sweets).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, sweets)
}

func (h *SweetHandler) CreateSweet(c echo.Context) error {
	var req struct {
		Name     string  `json:"name"`
		Category string  `json:"category"`
		Price    float64 `json:"price"`
		Quantity int     `json:"quantity"`
	}

	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}
	if req.Category == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "category is required")
	}
	if req.Price < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "price cannot be negative")
	}
	if req.Quantity < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "quantity cannot be negative")
	}

	sweet := models.Sweet{
		Name:     req.Name,
		Category: req.Category,
		Price:    req.Price,
		Quantity: req.Quantity,
	}
	if err := h.DB.Create(&sweet).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, map[string]any{
		"type":    "sweet_created",
		"sweetID": sweet.ID,
		"name":    sweet.Name,
	})
	h.reindex(c, &sweet)

	return c.JSON(http.StatusCreated, sweet)
}

func (h *SweetHandler) UpdateSweet(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	// Pointer fields distinguish "absent" from "zero"; only fields
	// present in the request are applied.
	var req struct {
		Name     *string  `json:"name"`
		Category *string  `json:"category"`
		Price    *float64 `json:"price"`
		Quantity *int     `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Price != nil && *req.Price < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "price cannot be negative")
	}
	if req.Quantity != nil && *req.Quantity < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "quantity cannot be negative")
	}

	var sweet models.Sweet
	if err := h.DB.First(&sweet, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "sweet not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if req.Name != nil {
		sweet.Name = *req.Name
	}
	if req.Category != nil {
		sweet.Category = *req.Category
	}
	if req.Price != nil {
		sweet.Price = *req.Price
	}
	if req.Quantity != nil {
		sweet.Quantity = *req.Quantity
	}

	if err := h.DB.Save(&sweet).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, map[string]any{
		"type":    "sweet_updated",
		"sweetID": sweet.ID,
		"name":    sweet.Name,
	})
	h.reindex(c, &sweet)

	return c.JSON(http.StatusOK, sweet)
}

func (h *SweetHandler) DeleteSweet(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	result := h.DB.Delete(&models.Sweet{}, id)
	if result.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, result.Error.Error())
	}
	if result.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "sweet not found")
	}

	h.publish(c, map[string]any{
		"type":    "sweet_deleted",
		"sweetID": id,
	})

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Indexer.DeleteSweet(ctx, uint(id)); err != nil {
		c.Logger().Errorf("ES delete error: %v", err)
	}

	return c.JSON(http.StatusOK, echo.Map{"msg": "deleted"})
}

func (h *SweetHandler) PurchaseSweet(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Quantity < 1 {
		req.Quantity = 1
	}

	// Conditional decrement keeps the check and the write in one
	// statement, so two racing purchases can never drive the stock
	// negative.
	result := h.DB.Model(&models.Sweet{}).
		Where("id = ? AND quantity >= ?", id, req.Quantity).
		UpdateColumn("quantity", gorm.Expr("quantity - ?", req.Quantity))
	if result.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, result.Error.Error())
	}

	var sweet models.Sweet
	if result.RowsAffected == 0 {
		if err := h.DB.First(&sweet, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return echo.NewHTTPError(http.StatusNotFound, "sweet not found")
			}
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, "insufficient quantity")
	}

	if err := h.DB.First(&sweet, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, map[string]any{
		"type":      "sweet_purchased",
		"sweetID":   sweet.ID,
		"quantity":  req.Quantity,
		"remaining": sweet.Quantity,
	})
	h.reindex(c, &sweet)

	return c.JSON(http.StatusOK, echo.Map{
		"id":        sweet.ID,
		"name":      sweet.Name,
		"category":  sweet.Category,
		"price":     sweet.Price,
		"quantity":  sweet.Quantity,
		"purchased": req.Quantity,
	})
}
