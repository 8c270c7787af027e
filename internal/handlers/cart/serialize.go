package cart

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/storefront/backend/internal/models"
)

type itemResponse struct {
	ProductID   int     `json:"product_id"`
	ProductName string  `json:"product_name"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}

type cartResponse struct {
	ID        int            `json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	Items     []itemResponse `json:"items"`
	Total     float64        `json:"total"`
}

// serializeCarts builds responses for a batch of carts with one items
// query and one products query; totals are derived at read time.
func serializeCarts(db *gorm.DB, carts []models.Cart) ([]cartResponse, error) {
	cartIDs := make([]int, len(carts))
	for i, ct := range carts {
		cartIDs[i] = ct.ID
	}

	var items []models.CartItem
	if len(cartIDs) > 0 {
		if err := db.Where("cart_id IN ?", cartIDs).Order("id ASC").Find(&items).Error; err != nil {
			return nil, err
		}
	}

	productIDs := make([]int, 0, len(items))
	seen := make(map[int]struct{}, len(items))
	for _, it := range items {
		if _, ok := seen[it.ProductID]; ok {
			continue
		}
		seen[it.ProductID] = struct{}{}
		productIDs = append(productIDs, it.ProductID)
	}

	products := make(map[int]models.Product, len(productIDs))
	if len(productIDs) > 0 {
		var rows []models.Product
		if err := db.Where("id IN ?", productIDs).Find(&rows).Error; err != nil {
			return nil, err
		}
		for _, p := range rows {
			products[p.ID] = p
		}
	}

	byCart := make(map[int][]models.CartItem, len(carts))
	for _, it := range items {
		byCart[it.CartID] = append(byCart[it.CartID], it)
	}

	resp := make([]cartResponse, len(carts))
	for i, ct := range carts {
		out := cartResponse{
			ID:        ct.ID,
			CreatedAt: ct.CreatedAt,
			Items:     []itemResponse{},
		}
		total := decimal.Zero
		for _, it := range byCart[ct.ID] {
			product, ok := products[it.ProductID]
			if !ok {
				continue
			}
			out.Items = append(out.Items, itemResponse{
				ProductID:   it.ProductID,
				ProductName: product.Name,
				Price:       product.Price.InexactFloat64(),
				Quantity:    it.Quantity,
			})
			total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
		}
		out.Total = total.InexactFloat64()
		resp[i] = out
	}
	return resp, nil
}

func serializeCart(db *gorm.DB, ct models.Cart) (cartResponse, error) {
	resp, err := serializeCarts(db, []models.Cart{ct})
	if err != nil {
		return cartResponse{}, err
	}
	return resp[0], nil
}
