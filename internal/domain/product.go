package domain

import (
	"slices"

	"github.com/shopspring/decimal"
)

// CategoryAll is the list filter that matches every product.
const CategoryAll = "all"

// Categories is the fixed set of accepted category values, in display order.
// "all" is also accepted when creating a product.
var Categories = []string{"kayak", "equip", "boots", CategoryAll}

// PriceRange is an inclusive price band for a category.
type PriceRange struct {
	Min decimal.Decimal
	Max decimal.Decimal
}

// PriceRanges maps each sellable category to its allowed price band.
var PriceRanges = map[string]PriceRange{
	"boots": {Min: decimal.NewFromInt(50), Max: decimal.NewFromInt(300)},
	"kayak": {Min: decimal.NewFromInt(100), Max: decimal.NewFromInt(500)},
	"equip": {Min: decimal.NewFromInt(20), Max: decimal.NewFromInt(150)},
}

// NewProduct is a product submission before the store assigns an id.
type NewProduct struct {
	Name        string          `json:"Name"`
	Description string          `json:"Description"`
	Price       decimal.Decimal `json:"Price"`
	Category    string          `json:"Category"`
	ImageURL    string          `json:"ImageUrl"`
}

// Product is the catalog view of a stored product.
type Product struct {
	ID int `json:"Id"`
	NewProduct
}

// IsValidCategory reports whether category is one of Categories.
func IsValidCategory(category string) bool {
	return slices.Contains(Categories, category)
}

// PriceInRange reports whether price fits the band for category.
// Categories without a band accept any price.
func PriceInRange(category string, price decimal.Decimal) bool {
	r, ok := PriceRanges[category]
	if !ok {
		return true
	}
	return price.GreaterThanOrEqual(r.Min) && price.LessThanOrEqual(r.Max)
}
