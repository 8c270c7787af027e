package cart

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

type itemInput struct {
	ProductID int
	Quantity  int
}

func bindJSON(c echo.Context, dst any) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid JSON payload")
	}
	if len(bytes.TrimSpace(body)) == 0 {
		body = []byte("{}")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid JSON payload")
	}
	return nil
}

func coerceInt(v any) (int, bool) {
	switch t := v.(type) {
	case float64:
		return int(t), true
	case int:
		return t, true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// normalizeItems runs the fixed validation order for a cart payload:
// list present and non-empty, every entry an object, product_id set,
// quantity numeric, quantity positive. The first violation wins.
func normalizeItems(raw any) ([]itemInput, error) {
	list, ok := raw.([]any)
	if !ok || len(list) == 0 {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Items are required")
	}

	normalized := make([]itemInput, 0, len(list))
	for _, elem := range list {
		obj, ok := elem.(map[string]any)
		if !ok {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid item format")
		}

		productID, ok := coerceInt(obj["product_id"])
		if !ok || productID == 0 {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "Product id is required")
		}

		quantity, ok := coerceInt(obj["quantity"])
		if !ok {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "Quantity must be a number")
		}
		if quantity <= 0 {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "Quantity must be greater than 0")
		}

		normalized = append(normalized, itemInput{ProductID: productID, Quantity: quantity})
	}
	return normalized, nil
}

func distinctProductIDs(items []itemInput) []int {
	seen := make(map[int]struct{}, len(items))
	ids := make([]int, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it.ProductID]; ok {
			continue
		}
		seen[it.ProductID] = struct{}{}
		ids = append(ids, it.ProductID)
	}
	return ids
}
