package service

import (
	"context"
	"strings"

	"carvedrock/internal/domain"
	"carvedrock/internal/events"
	"carvedrock/internal/mapping"
	"carvedrock/internal/repository"

	"go.uber.org/zap"
)

// ProductService defines the catalog operations exposed to the API.
// Submissions are expected to be validated before CreateProduct is called.
type ProductService interface {
	CreateProduct(ctx context.Context, product domain.NewProduct) (*domain.Product, error)
	GetProductByID(ctx context.Context, id int) (*domain.Product, error)
	ListProductsByCategory(ctx context.Context, category string) ([]domain.Product, error)
}

type productService struct {
	repo      repository.ProductRepository
	publisher events.Publisher
	logger    *zap.Logger
}

// NewProductService creates a new instance of ProductService
func NewProductService(repo repository.ProductRepository, publisher events.Publisher, logger *zap.Logger) ProductService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &productService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

// CreateProduct persists the submission and returns it with its new id
func (s *productService) CreateProduct(ctx context.Context, product domain.NewProduct) (*domain.Product, error) {
	product.Name = strings.TrimSpace(product.Name)

	saved, err := s.repo.CreateProduct(ctx, mapping.NewProductToEntity(product))
	if err != nil {
		return nil, err
	}

	created := mapping.EntityToProduct(saved)

	if err := s.publisher.PublishProductCreated(ctx, *created); err != nil {
		s.logger.Warn("Failed to publish product created event",
			zap.Int("product_id", created.ID),
			zap.Error(err),
		)
	}

	return created, nil
}

// GetProductByID returns domain.ErrProductNotFound when no product has the id
func (s *productService) GetProductByID(ctx context.Context, id int) (*domain.Product, error) {
	product, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return mapping.EntityToProduct(product), nil
}

// ListProductsByCategory returns every product for "all", otherwise exact category matches
func (s *productService) ListProductsByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	products, err := s.repo.ListProducts(ctx, category)
	if err != nil {
		return nil, err
	}
	return mapping.EntitiesToProducts(products), nil
}
