package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"carvedrock/internal/domain"
	"carvedrock/internal/entity"
	"carvedrock/internal/events"
	"carvedrock/internal/middleware"
	"carvedrock/internal/service"
	"carvedrock/internal/validation"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

// mockProductRepository keeps products in memory
type mockProductRepository struct {
	mu       sync.Mutex
	products []entity.Product
	failWith error
}

func (m *mockProductRepository) CreateProduct(ctx context.Context, product *entity.Product) (*entity.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	product.ID = len(m.products) + 1
	product.Name = strings.TrimSpace(product.Name)
	m.products = append(m.products, *product)
	return product, nil
}

func (m *mockProductRepository) GetProductByID(ctx context.Context, id int) (*entity.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.products {
		if p.ID == id {
			found := p
			return &found, nil
		}
	}
	return nil, domain.ErrProductNotFound
}

func (m *mockProductRepository) ListProducts(ctx context.Context, category string) ([]entity.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !domain.IsValidCategory(category) {
		return nil, &domain.DatabaseError{Category: category, Err: fmt.Errorf("unsupported category %q", category)}
	}
	if m.failWith != nil {
		return nil, &domain.DatabaseError{Category: category, Err: m.failWith}
	}
	out := []entity.Product{}
	for _, p := range m.products {
		if category == domain.CategoryAll || p.Category == category {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockProductRepository) IsProductNameUnique(ctx context.Context, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.products {
		if p.Name == name {
			return false, nil
		}
	}
	return true, nil
}

func newTestRouter(repo *mockProductRepository, writeRoles []string) http.Handler {
	logger := zap.NewNop()
	svc := service.NewProductService(repo, events.NopPublisher{}, logger)
	handler := NewProductHandler(svc, validation.NewProductValidator(repo, logger), logger)

	r := chi.NewRouter()
	handler.RegisterRoutes(r,
		middleware.AuthMiddleware(testSecret, logger),
		middleware.RequireRole(writeRoles, logger),
	)
	return r
}

func bearer(t *testing.T, role string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "user-1",
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + token
}

func postProduct(t *testing.T, router http.Handler, body interface{}, auth string) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/product", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func trailBoot() map[string]interface{} {
	return map[string]interface{}{
		"Name":        "Trail Boot",
		"Description": "Sturdy boot",
		"Price":       120,
		"Category":    "boots",
		"ImageUrl":    "https://example.com/a.jpg",
	}
}

func TestCreateProduct_Created(t *testing.T) {
	router := newTestRouter(&mockProductRepository{}, nil)

	w := postProduct(t, router, trailBoot(), bearer(t, "user"))

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "/api/product/1", w.Header().Get("Location"))

	var product domain.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &product))
	assert.Equal(t, 1, product.ID)
	assert.Equal(t, "Trail Boot", product.Name)
	assert.True(t, product.Price.Equal(decimal.NewFromInt(120)))

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	for _, key := range []string{"Id", "Name", "Description", "Price", "Category", "ImageUrl"} {
		assert.Contains(t, raw, key)
	}
}

func TestCreateProduct_ValidationProblem(t *testing.T) {
	router := newTestRouter(&mockProductRepository{}, nil)
	body := trailBoot()
	body["Price"] = 400
	body["ImageUrl"] = "not a url"

	w := postProduct(t, router, body, bearer(t, "user"))

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, middleware.ProblemContentType, w.Header().Get("Content-Type"))

	var problem map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &problem))
	assert.Equal(t, float64(400), problem["status"])
	assert.NotEmpty(t, problem["traceId"])
	assert.Equal(t, []interface{}{"Price for boots must be between $50.00 and $300.00."}, problem["Price"])
	assert.Equal(t, []interface{}{"ImageUrl must be a valid URL."}, problem["ImageUrl"])
}

func TestCreateProduct_DuplicateName(t *testing.T) {
	router := newTestRouter(&mockProductRepository{}, nil)

	require.Equal(t, http.StatusCreated, postProduct(t, router, trailBoot(), bearer(t, "user")).Code)
	w := postProduct(t, router, trailBoot(), bearer(t, "user"))

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "A product with the same name already exists.")
}

func TestCreateProduct_RequiresToken(t *testing.T) {
	repo := &mockProductRepository{}
	router := newTestRouter(repo, nil)

	w := postProduct(t, router, trailBoot(), "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, repo.products)
}

func TestCreateProduct_RoleGate(t *testing.T) {
	router := newTestRouter(&mockProductRepository{}, []string{"admin"})

	assert.Equal(t, http.StatusForbidden, postProduct(t, router, trailBoot(), bearer(t, "user")).Code)
	assert.Equal(t, http.StatusCreated, postProduct(t, router, trailBoot(), bearer(t, "admin")).Code)
}

func TestCreateProduct_MalformedBody(t *testing.T) {
	router := newTestRouter(&mockProductRepository{}, nil)

	req := httptest.NewRequest("POST", "/api/product", strings.NewReader(`{"Name":`))
	req.Header.Set("Authorization", bearer(t, "user"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateProduct_StoreFailureIsGeneric(t *testing.T) {
	router := newTestRouter(&mockProductRepository{failWith: errors.New("disk full")}, nil)

	w := postProduct(t, router, trailBoot(), bearer(t, "user"))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), middleware.GenericErrorDetail)
	assert.NotContains(t, w.Body.String(), "disk full")
}

func TestGetProduct(t *testing.T) {
	router := newTestRouter(&mockProductRepository{}, nil)
	require.Equal(t, http.StatusCreated, postProduct(t, router, trailBoot(), bearer(t, "user")).Code)

	tests := []struct {
		path string
		want int
	}{
		{"/api/product/1", http.StatusOK},
		{"/api/product/99", http.StatusNotFound},
		{"/api/product/abc", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest("GET", tt.path, nil))
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestListProducts(t *testing.T) {
	repo := &mockProductRepository{}
	router := newTestRouter(repo, nil)
	for _, p := range []map[string]interface{}{
		{"Name": "Lake Kayak", "Description": "Calm water", "Price": 300, "Category": "kayak", "ImageUrl": "https://example.com/k.jpg"},
		{"Name": "Trail Boot", "Description": "Sturdy boot", "Price": 120, "Category": "boots", "ImageUrl": "https://example.com/b.jpg"},
	} {
		require.Equal(t, http.StatusCreated, postProduct(t, router, p, bearer(t, "user")).Code)
	}

	tests := []struct {
		query string
		want  int
	}{
		{"", 2},
		{"?Category=all", 2},
		{"?Category=kayak", 1},
		{"?category=boots", 1},
		{"?Category=equip", 0},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest("GET", "/api/product"+tt.query, nil))
			require.Equal(t, http.StatusOK, w.Code)

			var products []domain.Product
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &products))
			assert.Len(t, products, tt.want)
		})
	}
}

func TestListProducts_UnknownCategoryIsServerError(t *testing.T) {
	router := newTestRouter(&mockProductRepository{}, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/product?Category=skis", nil))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), middleware.GenericErrorDetail)
	assert.NotContains(t, w.Body.String(), "skis")
}

// Property: a created product is readable at its Location with identical fields
func TestProperty_CreatedProductsAreReadable(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("POST then GET Location returns the same product", prop.ForAll(
		func(name string, dollars int64) bool {
			router := newTestRouter(&mockProductRepository{}, nil)
			body := trailBoot()
			body["Name"] = name
			body["Price"] = dollars

			created := postProduct(t, router, body, bearer(t, "user"))
			if created.Code != http.StatusCreated {
				return false
			}

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest("GET", created.Header().Get("Location"), nil))
			if w.Code != http.StatusOK {
				return false
			}

			var product domain.Product
			if err := json.Unmarshal(w.Body.Bytes(), &product); err != nil {
				return false
			}
			return product.Name == name &&
				product.Category == "boots" &&
				product.Price.Equal(decimal.NewFromInt(dollars))
		},
		gen.RegexMatch(`[A-Z][a-z]{2,30}`),
		gen.Int64Range(50, 300),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
