package cart

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/storefront/backend/internal/models"
	"github.com/storefront/backend/internal/mykafka"
)

const dateLayout = "2006-01-02"

type CartHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
}

// resolveProducts batch-loads every distinct referenced product; a
// shortfall means at least one id is unknown and nothing may be written.
func resolveProducts(tx *gorm.DB, items []itemInput) error {
	ids := distinctProductIDs(items)

	var count int64
	if err := tx.Model(&models.Product{}).Where("id IN ?", ids).Count(&count).Error; err != nil {
		return err
	}
	if count != int64(len(ids)) {
		return echo.NewHTTPError(http.StatusNotFound, "One or more products not found")
	}
	return nil
}

func asHTTPError(err error) error {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}
	return err
}

// CreateCart builds a cart and its full item set atomically: either the
// cart row and every line item land, or nothing does.
func (h *CartHandler) CreateCart(c echo.Context) error {
	var req struct {
		Items any `json:"items"`
	}
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	normalized, err := normalizeItems(req.Items)
	if err != nil {
		return err
	}

	var cart models.Cart
	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := resolveProducts(tx, normalized); err != nil {
			return err
		}

		cart = models.Cart{}
		if err := tx.Create(&cart).Error; err != nil {
			return err
		}
		for _, it := range normalized {
			item := models.CartItem{
				CartID:    cart.ID,
				ProductID: it.ProductID,
				Quantity:  it.Quantity,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return asHTTPError(txErr)
	}

	resp, err := serializeCart(h.DB, cart)
	if err != nil {
		return err
	}

	h.publish(c, map[string]any{
		"type":   "cart_created",
		"cartID": cart.ID,
		"items":  len(normalized),
	})

	return c.JSON(http.StatusCreated, resp)
}

// UpdateCart replaces the cart's whole item set; there is no merging and
// no per-item patching. Concurrent updates are last-write-wins.
func (h *CartHandler) UpdateCart(c echo.Context) error {
	var req struct {
		ID    any `json:"id"`
		Items any `json:"items"`
	}
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	cartID, ok := coerceInt(req.ID)
	if !ok || cartID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Cart id is required")
	}

	var cart models.Cart
	if err := h.DB.First(&cart, cartID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Cart not found")
		}
		return err
	}

	normalized, err := normalizeItems(req.Items)
	if err != nil {
		return err
	}

	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := resolveProducts(tx, normalized); err != nil {
			return err
		}

		if err := tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		for _, it := range normalized {
			item := models.CartItem{
				CartID:    cart.ID,
				ProductID: it.ProductID,
				Quantity:  it.Quantity,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return asHTTPError(txErr)
	}

	resp, err := serializeCart(h.DB, cart)
	if err != nil {
		return err
	}

	h.publish(c, map[string]any{
		"type":   "cart_updated",
		"cartID": cart.ID,
		"items":  len(normalized),
	})

	return c.JSON(http.StatusOK, resp)
}

func (h *CartHandler) DeleteCart(c echo.Context) error {
	var req struct {
		ID any `json:"id"`
	}
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	cartID, ok := coerceInt(req.ID)
	if !ok || cartID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Cart id is required")
	}

	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		var cart models.Cart
		if err := tx.First(&cart, cartID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return echo.NewHTTPError(http.StatusNotFound, "Cart not found")
			}
			return err
		}
		if err := tx.Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Cart{}, cartID).Error
	})
	if txErr != nil {
		return asHTTPError(txErr)
	}

	h.publish(c, map[string]any{
		"type":   "cart_deleted",
		"cartID": cartID,
	})

	return c.JSON(http.StatusOK, map[string]string{"detail": "Cart deleted"})
}

type listFilters struct {
	productID *int
	from      *time.Time
	to        *time.Time
}

func (h *CartHandler) filteredQuery(f listFilters) *gorm.DB {
	query := h.DB.Model(&models.Cart{})
	if f.productID != nil {
		sub := h.DB.Model(&models.CartItem{}).
			Select("cart_id").
			Where("product_id = ?", *f.productID)
		query = query.Where("id IN (?)", sub)
	}
	if f.from != nil {
		query = query.Where("created_at >= ?", *f.from)
	}
	if f.to != nil {
		// to_date is inclusive
		query = query.Where("created_at < ?", f.to.Add(24*time.Hour))
	}
	return query
}

// ListCarts pages through matching carts newest-first; total counts every
// match regardless of the requested page.
func (h *CartHandler) ListCarts(c echo.Context) error {
	page := 1
	if raw := c.QueryParam("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid pagination")
		}
		page = n
	}
	pageSize := 10
	if raw := c.QueryParam("page_size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid pagination")
		}
		pageSize = n
	}

	var filters listFilters
	if raw := c.QueryParam("product_id"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Product id must be a number")
		}
		filters.productID = &n
	}
	if raw := c.QueryParam("from_date"); raw != "" {
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid date filter")
		}
		filters.from = &t
	}
	if raw := c.QueryParam("to_date"); raw != "" {
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid date filter")
		}
		filters.to = &t
	}

	var total int64
	if err := h.filteredQuery(filters).Count(&total).Error; err != nil {
		return err
	}

	offset := (page - 1) * pageSize
	var carts []models.Cart
	if err := h.filteredQuery(filters).
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&carts).Error; err != nil {
		return err
	}

	results, err := serializeCarts(h.DB, carts)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"page":      page,
		"page_size": pageSize,
		"total":     total,
		"results":   results,
	})
}
