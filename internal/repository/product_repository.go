package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"carvedrock/internal/domain"
	"carvedrock/internal/entity"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	CreateProduct(ctx context.Context, product *entity.Product) (*entity.Product, error)
	GetProductByID(ctx context.Context, id int) (*entity.Product, error)
	ListProducts(ctx context.Context, category string) ([]entity.Product, error)
	IsProductNameUnique(ctx context.Context, name string) (bool, error)
}

type productRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *gorm.DB, logger *zap.Logger) ProductRepository {
	return &productRepository{db: db, logger: logger}
}

// CreateProduct inserts the product and returns it with the store-assigned id
func (r *productRepository) CreateProduct(ctx context.Context, product *entity.Product) (*entity.Product, error) {
	r.logger.Info("Saving product", zap.String("name", product.Name))

	product.Name = strings.TrimSpace(product.Name)
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return product, nil
}

// GetProductByID retrieves a product by primary key
func (r *productRepository) GetProductByID(ctx context.Context, id int) (*entity.Product, error) {
	r.logger.Info("Retrieving product", zap.Int("id", id))

	var product entity.Product
	if err := r.db.WithContext(ctx).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return &product, nil
}

// ListProducts returns the products of a category, or all of them for "all".
// Every failure, including an unsupported category, comes back as a *domain.DatabaseError.
func (r *productRepository) ListProducts(ctx context.Context, category string) ([]entity.Product, error) {
	r.logger.Info("Retrieving products for category", zap.String("category", category))

	products, err := r.listProducts(ctx, category)
	if err != nil {
		r.logger.Error("Failed to list products",
			zap.String("category", category),
			zap.Error(err),
		)
		return nil, &domain.DatabaseError{Category: category, Err: err}
	}

	return products, nil
}

func (r *productRepository) listProducts(ctx context.Context, category string) ([]entity.Product, error) {
	if !domain.IsValidCategory(category) {
		return nil, fmt.Errorf("unsupported category %q", category)
	}

	query := r.db.WithContext(ctx).Order("id")
	if category != domain.CategoryAll {
		query = query.Where("category = ?", category)
	}

	products := []entity.Product{}
	if err := query.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	return products, nil
}

// IsProductNameUnique reports whether no stored product has exactly this name
func (r *productRepository) IsProductNameUnique(ctx context.Context, name string) (bool, error) {
	r.logger.Info("Checking product name uniqueness", zap.String("name", name))

	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Product{}).
		Where("name = ?", name).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check product name: %w", err)
	}

	return count == 0, nil
}
