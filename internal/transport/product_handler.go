package transport

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"carvedrock/internal/domain"
	"carvedrock/internal/middleware"
	"carvedrock/internal/service"
	"carvedrock/internal/validation"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ProductHandler handles HTTP requests for catalog operations
type ProductHandler struct {
	productService service.ProductService
	validator      validation.Validator
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService service.ProductService, validator validation.Validator, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		validator:      validator,
		logger:         logger,
	}
}

// RegisterRoutes registers the catalog routes. writeMiddleware guards product creation.
func (h *ProductHandler) RegisterRoutes(r chi.Router, writeMiddleware ...func(http.Handler) http.Handler) {
	r.Route("/api/product", func(r chi.Router) {
		r.Get("/", h.ListProducts)
		r.Get("/{id}", h.GetProduct)

		r.Group(func(r chi.Router) {
			r.Use(writeMiddleware...)
			r.Post("/", h.CreateProduct)
		})
	})
}

// ListProducts handles GET /api/product?Category=
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	category := query.Get("Category")
	if category == "" {
		category = query.Get("category")
	}
	if category == "" {
		category = domain.CategoryAll
	}

	products, err := h.productService.ListProductsByCategory(r.Context(), category)
	if err != nil {
		var dbErr *domain.DatabaseError
		if errors.As(err, &dbErr) {
			h.logger.Warn("Product listing failed", zap.String("category", dbErr.Category))
		}
		middleware.RespondWithInternalError(w, r, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// GetProduct handles GET /api/product/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, r, http.StatusBadRequest, "invalid product id")
		return
	}

	product, err := h.productService.GetProductByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			middleware.RespondWithError(w, r, http.StatusNotFound, fmt.Sprintf("product %d was not found", id))
			return
		}
		middleware.RespondWithInternalError(w, r, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// CreateProduct handles POST /api/product
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var submission domain.NewProduct
	if err := middleware.DecodeJSON(w, r, &submission); err != nil {
		h.logger.Debug("Invalid product body", zap.Error(err))
		middleware.RespondWithError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validator.Validate(r.Context(), submission); err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			middleware.RespondWithValidationErrors(w, r, verr)
			return
		}
		middleware.RespondWithInternalError(w, r, h.logger, err)
		return
	}

	product, err := h.productService.CreateProduct(r.Context(), submission)
	if err != nil {
		middleware.RespondWithInternalError(w, r, h.logger, err)
		return
	}

	userID, _ := middleware.GetUserID(r.Context())
	h.logger.Info("Product created",
		zap.Int("product_id", product.ID),
		zap.String("user_id", userID),
	)

	w.Header().Set("Location", fmt.Sprintf("/api/product/%d", product.ID))
	middleware.RespondWithJSON(w, http.StatusCreated, product)
}
