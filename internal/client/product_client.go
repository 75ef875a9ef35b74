// Package client calls the catalog API on behalf of the web front-end.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"carvedrock/internal/domain"
	"carvedrock/internal/middleware"

	"go.uber.org/zap"
)

// APIError is returned for any unexpected non-2xx response from the catalog API.
type APIError struct {
	Path       string
	StatusCode int
	TraceID    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API call failed. %s (status %d, trace %s)", e.Path, e.StatusCode, e.TraceID)
}

// IsAPIError checks if an error is an APIError
func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}

type tokenKey struct{}

// WithAccessToken attaches the caller's bearer token to ctx
func WithAccessToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func accessToken(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey{}).(string)
	return token, ok && token != ""
}

// ProductClient is the web tier's view of the catalog API
type ProductClient interface {
	ListProducts(ctx context.Context, category string) ([]domain.Product, error)
	GetProductByID(ctx context.Context, id int) (domain.Product, error)
	CreateProduct(ctx context.Context, product domain.NewProduct) (map[string]string, error)
}

type productClient struct {
	baseURL *url.URL
	http    *http.Client
	logger  *zap.Logger
}

// NewProductClient creates a client for the API rooted at baseURL (e.g. http://localhost:8080/api/)
func NewProductClient(baseURL string, timeout time.Duration, logger *zap.Logger) (ProductClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid API base URL: %w", err)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}

	return &productClient{
		baseURL: u,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}, nil
}

// ListProducts fetches the products of a category
func (c *productClient) ListProducts(ctx context.Context, category string) ([]domain.Product, error) {
	c.logger.Info("Retrieving products", zap.String("category", category))

	path := "product?" + url.Values{"category": {category}}.Encode()
	resp, fullPath, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return nil, c.failure(resp, fullPath)
	}

	products := []domain.Product{}
	if err := json.NewDecoder(resp.Body).Decode(&products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, nil
}

// GetProductByID fetches a single product. A 404 yields the zero Product and no error.
func (c *productClient) GetProductByID(ctx context.Context, id int) (domain.Product, error) {
	c.logger.Info("Retrieving product by id", zap.Int("id", id))

	resp, fullPath, err := c.do(ctx, http.MethodGet, fmt.Sprintf("product/%d", id), nil)
	if err != nil {
		return domain.Product{}, err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		apiErr := c.failure(resp, fullPath)
		if resp.StatusCode == http.StatusNotFound {
			return domain.Product{}, nil
		}
		return domain.Product{}, apiErr
	}

	var product domain.Product
	if err := json.NewDecoder(resp.Body).Decode(&product); err != nil {
		return domain.Product{}, fmt.Errorf("failed to decode product: %w", err)
	}
	return product, nil
}

// CreateProduct posts a submission. Validation failures come back as a field -> message map;
// an empty map means the product was created.
func (c *productClient) CreateProduct(ctx context.Context, product domain.NewProduct) (map[string]string, error) {
	c.logger.Info("Creating product", zap.String("name", product.Name))

	body, err := json.Marshal(product)
	if err != nil {
		return nil, fmt.Errorf("failed to encode product: %w", err)
	}

	resp, fullPath, err := c.do(ctx, http.MethodPost, "product", body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if isSuccess(resp.StatusCode) {
		return map[string]string{}, nil
	}

	if resp.StatusCode != http.StatusBadRequest {
		return nil, c.failure(resp, fullPath)
	}

	// a 400 without field errors is not a validation result
	problem, err := readProblem(resp.Body)
	if err == nil {
		if errs := validationErrors(problem); len(errs) > 0 {
			return errs, nil
		}
	}

	return nil, c.apiError(fullPath, resp.StatusCode, problem)
}

func (c *productClient) do(ctx context.Context, method, path string, body []byte) (*http.Response, string, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, "", fmt.Errorf("invalid API path %q: %w", path, err)
	}
	fullPath := c.baseURL.ResolveReference(ref).String()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullPath, reader)
	if err != nil {
		return nil, fullPath, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token, ok := accessToken(ctx); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fullPath, fmt.Errorf("API call to %s failed: %w", fullPath, err)
	}
	return resp, fullPath, nil
}

// failure logs a non-2xx response with its trace id and returns it as an *APIError
func (c *productClient) failure(resp *http.Response, fullPath string) *APIError {
	problem, _ := readProblem(resp.Body)
	return c.apiError(fullPath, resp.StatusCode, problem)
}

func (c *productClient) apiError(fullPath string, status int, problem middleware.ProblemDetails) *APIError {
	c.logger.Warn("API failure",
		zap.String("path", fullPath),
		zap.Int("status", status),
		zap.String("trace_id", problem.TraceID),
	)

	return &APIError{Path: fullPath, StatusCode: status, TraceID: problem.TraceID}
}

func readProblem(body io.Reader) (middleware.ProblemDetails, error) {
	var problem middleware.ProblemDetails
	data, err := io.ReadAll(io.LimitReader(body, middleware.MaxBodyBytes))
	if err != nil {
		return problem, err
	}
	if len(data) == 0 {
		return problem, nil
	}
	err = json.Unmarshal(data, &problem)
	return problem, err
}

// validationErrors flattens the extension members of a 400 problem, skipping the standard members
func validationErrors(problem middleware.ProblemDetails) map[string]string {
	out := make(map[string]string, len(problem.Extensions))
	for key, value := range problem.Extensions {
		if middleware.IsProblemMember(key) {
			continue
		}
		out[key] = flatten(value)
	}
	return out
}

func flatten(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case []interface{}:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, flatten(item))
		}
		return strings.Join(parts, " ")
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
