package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/storefront/backend/internal/models"
	"github.com/storefront/backend/internal/mykafka"
	"github.com/storefront/backend/internal/service/search"
)

type ProductHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
	ES       *elasticsearch.Client
	ESIndex  string
}

type productResponse struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	ImageURL string  `json:"image_url"`
}

func serializeProduct(p models.Product) productResponse {
	return productResponse{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price.InexactFloat64(),
		ImageURL: p.ImageURL,
	}
}

func (h *ProductHandler) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "product_events", fmt.Sprint(event["productID"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

func (h *ProductHandler) indexES(c echo.Context, p models.Product) {
	if h.ES == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := search.IndexProduct(ctx, h.ES, h.ESIndex, p); err != nil {
		c.Logger().Errorf("ES index error: %v", err)
	}
}

func (h *ProductHandler) removeES(c echo.Context, id int) {
	if h.ES == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := search.DeleteProduct(ctx, h.ES, h.ESIndex, id); err != nil {
		c.Logger().Errorf("ES delete error: %v", err)
	}
}

// GetProducts is public: the whole catalog, name ascending.
func (h *ProductHandler) GetProducts(c echo.Context) error {
	var products []models.Product
	if err := h.DB.Order("name ASC").Find(&products).Error; err != nil {
		return err
	}

	resp := make([]productResponse, len(products))
	for i, p := range products {
		resp[i] = serializeProduct(p)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Product not found")
	}

	var product models.Product
	if err := h.DB.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Product not found")
		}
		return err
	}

	return c.JSON(http.StatusOK, serializeProduct(product))
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	payload, err := getPayload(c)
	if err != nil {
		return err
	}

	name := strings.TrimSpace(fmt.Sprint(payload["name"]))
	if payload["name"] == nil || name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Name is required")
	}

	price, ok := coerceDecimal(payload["price"])
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "Price must be a number")
	}
	if !price.IsPositive() {
		return echo.NewHTTPError(http.StatusBadRequest, "Price must be greater than 0")
	}

	imageURL := ""
	if v, ok := payload["image_url"].(string); ok {
		imageURL = strings.TrimSpace(v)
	}

	product := models.Product{
		Name:     name,
		Price:    price,
		ImageURL: imageURL,
	}
	if err := h.DB.Create(&product).Error; err != nil {
		return err
	}

	h.publish(c, map[string]any{
		"type":      "product_created",
		"productID": product.ID,
		"name":      product.Name,
	})
	h.indexES(c, product)

	return c.JSON(http.StatusCreated, serializeProduct(product))
}

// UpdateProduct mutates only the fields present in the payload.
func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	payload, err := getPayload(c)
	if err != nil {
		return err
	}

	id, ok := coerceInt(payload["id"])
	if !ok || id == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Product id is required")
	}

	var product models.Product
	if err := h.DB.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Product not found")
		}
		return err
	}

	if raw, present := payload["name"]; present {
		name := strings.TrimSpace(fmt.Sprint(raw))
		if raw == nil || name == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "Name is required")
		}
		product.Name = name
	}

	if raw, present := payload["price"]; present {
		price, ok := coerceDecimal(raw)
		if !ok {
			return echo.NewHTTPError(http.StatusBadRequest, "Price must be a number")
		}
		if !price.IsPositive() {
			return echo.NewHTTPError(http.StatusBadRequest, "Price must be greater than 0")
		}
		product.Price = price
	}

	if raw, present := payload["image_url"]; present {
		product.ImageURL = strings.TrimSpace(fmt.Sprint(raw))
	}

	if err := h.DB.Save(&product).Error; err != nil {
		return err
	}

	h.publish(c, map[string]any{
		"type":      "product_updated",
		"productID": product.ID,
		"name":      product.Name,
	})
	h.indexES(c, product)

	return c.JSON(http.StatusOK, serializeProduct(product))
}

// DeleteProduct removes the product and every cart line that references
// it, in one transaction.
func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	payload, err := getPayload(c)
	if err != nil {
		return err
	}

	id, ok := coerceInt(payload["id"])
	if !ok || id == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Product id is required")
	}

	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.First(&product, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return echo.NewHTTPError(http.StatusNotFound, "Product not found")
			}
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Product{}, id).Error
	})
	if txErr != nil {
		return txErr
	}

	h.publish(c, map[string]any{
		"type":      "product_deleted",
		"productID": id,
	})
	h.removeES(c, id)

	return c.JSON(http.StatusOK, map[string]string{"detail": "Product deleted"})
}
