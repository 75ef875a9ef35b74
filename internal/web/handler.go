// Package web serves the browser-facing catalog routes on top of the API client.
package web

import (
	"net/http"
	"strconv"

	"carvedrock/internal/client"
	"carvedrock/internal/domain"
	"carvedrock/internal/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AccessTokenCookie carries the bearer token when the browser does not send an Authorization header.
const AccessTokenCookie = "access_token"

// Handler forwards browser requests to the catalog API
type Handler struct {
	products client.ProductClient
	logger   *zap.Logger
}

func NewHandler(products client.ProductClient, logger *zap.Logger) *Handler {
	return &Handler{products: products, logger: logger}
}

// RegisterRoutes registers the front-end routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		r.Use(forwardAccessToken)
		r.Get("/", h.ListProducts)
		r.Get("/{id}", h.GetProduct)
		r.Post("/", h.CreateProduct)
	})
}

// forwardAccessToken copies the caller's token into the request context for the API client
func forwardAccessToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := middleware.BearerToken(r)
		if !ok {
			if cookie, err := r.Cookie(AccessTokenCookie); err == nil {
				token = cookie.Value
			}
		}
		if token != "" {
			r = r.WithContext(client.WithAccessToken(r.Context(), token))
		}
		next.ServeHTTP(w, r)
	})
}

// ListProducts handles GET /products?category=
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if category == "" {
		category = domain.CategoryAll
	}

	products, err := h.products.ListProducts(r.Context(), category)
	if err != nil {
		middleware.RespondWithInternalError(w, r, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// GetProduct handles GET /products/{id}
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, r, http.StatusBadRequest, "invalid product id")
		return
	}

	product, err := h.products.GetProductByID(r.Context(), id)
	if err != nil {
		middleware.RespondWithInternalError(w, r, h.logger, err)
		return
	}

	// the client reports a missing product as the zero value
	if product.ID == 0 {
		middleware.RespondWithError(w, r, http.StatusNotFound, "product was not found")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// CreateProduct handles POST /products
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var submission domain.NewProduct
	if err := middleware.DecodeJSON(w, r, &submission); err != nil {
		middleware.RespondWithError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	errs, err := h.products.CreateProduct(r.Context(), submission)
	if err != nil {
		middleware.RespondWithInternalError(w, r, h.logger, err)
		return
	}

	if len(errs) > 0 {
		middleware.RespondWithJSON(w, http.StatusBadRequest, map[string]interface{}{"errors": errs})
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, map[string]interface{}{})
}
