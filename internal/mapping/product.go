// Package mapping converts between catalog view models and persisted entities.
package mapping

import (
	"carvedrock/internal/domain"
	"carvedrock/internal/entity"
)

// NewProductToEntity copies a submission into an entity. The id is left for the store.
func NewProductToEntity(p domain.NewProduct) *entity.Product {
	return &entity.Product{
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Category:    p.Category,
		ImageURL:    p.ImageURL,
	}
}

// EntityToProduct copies a stored entity into its view model.
func EntityToProduct(e *entity.Product) *domain.Product {
	return &domain.Product{
		ID: e.ID,
		NewProduct: domain.NewProduct{
			Name:        e.Name,
			Description: e.Description,
			Price:       e.Price,
			Category:    e.Category,
			ImageURL:    e.ImageURL,
		},
	}
}

// ProductToEntity is the reverse of EntityToProduct.
func ProductToEntity(p *domain.Product) *entity.Product {
	e := NewProductToEntity(p.NewProduct)
	e.ID = p.ID
	return e
}

// EntitiesToProducts maps a result set, keeping its order.
func EntitiesToProducts(rows []entity.Product) []domain.Product {
	products := make([]domain.Product, 0, len(rows))
	for i := range rows {
		products = append(products, *EntityToProduct(&rows[i]))
	}
	return products
}
