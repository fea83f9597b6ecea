package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/candleworks/storefront/internal/models"
	"github.com/go-chi/chi/v5"
)

//go:generate mockgen -destination=mocks/mock_catalog_service.go -package=mocks . CatalogService

type CatalogService interface {
	// ListProducts returns products available for sale
	ListProducts(ctx context.Context) ([]models.Product, error)
	// GetProduct returns product by id
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	// CreateProduct adds product to the catalog
	CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error)
	// UpdateProduct updates product attributes
	UpdateProduct(ctx context.Context, product models.Product) error
	// RemoveProduct deactivates product
	RemoveProduct(ctx context.Context, id string) error
}

// CatalogHandler represents HTTP handler for catalog-related requests
type CatalogHandler struct {
	svc CatalogService
}

// NewCatalogHandler creates new CatalogHandler instance
func NewCatalogHandler(svc CatalogService) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

type productResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	Currency    string `json:"currency"`
	Stock       int64  `json:"stock"`
	Active      bool   `json:"active"`
}

func toProductResponse(p models.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price,
		Currency:    p.Currency,
		Stock:       p.Stock,
		Active:      p.Active,
	}
}

// ListProducts returns catalog for the storefront
// 200 — success
func (ch *CatalogHandler) ListProducts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		products, err := ch.svc.ListProducts(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		resp := make([]productResponse, 0, len(products))
		for _, p := range products {
			resp = append(resp, toProductResponse(p))
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if err := json.NewEncoder(w).Encode(resp); err != nil {
			return
		}
	}
}

// GetProduct returns one product
// 200 — success
// 404 — product not found
func (ch *CatalogHandler) GetProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		product, err := ch.svc.GetProduct(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			if errors.Is(err, models.ErrDataNotFound) {
				http.Error(w, "product not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if err := json.NewEncoder(w).Encode(toProductResponse(*product)); err != nil {
			return
		}
	}
}

type productRequest struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	Currency    string `json:"currency"`
	Stock       int64  `json:"stock"`
	Active      bool   `json:"active"`
}

// CreateProduct adds product to the catalog
// 201 — product created
// 400 — malformed request
// 409 — product id already exists
func (ch *CatalogHandler) CreateProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req productRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		product, err := ch.svc.CreateProduct(r.Context(), &models.Product{
			ID:          req.ID,
			Title:       req.Title,
			Description: req.Description,
			Price:       req.Price,
			Currency:    req.Currency,
			Stock:       req.Stock,
			Active:      req.Active,
		})
		if err != nil {
			switch {
			case errors.Is(err, models.ErrValidation):
				http.Error(w, "bad request", http.StatusBadRequest)
			case errors.Is(err, models.ErrConflictData):
				http.Error(w, "product already exists", http.StatusConflict)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)

		if err := json.NewEncoder(w).Encode(toProductResponse(*product)); err != nil {
			return
		}
	}
}

// UpdateProduct updates product attributes
// 200 — success
// 400 — malformed request
// 404 — product not found
func (ch *CatalogHandler) UpdateProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req productRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		err := ch.svc.UpdateProduct(r.Context(), models.Product{
			ID:          chi.URLParam(r, "id"),
			Title:       req.Title,
			Description: req.Description,
			Price:       req.Price,
			Currency:    req.Currency,
			Stock:       req.Stock,
			Active:      req.Active,
		})
		if err != nil {
			switch {
			case errors.Is(err, models.ErrValidation):
				http.Error(w, "bad request", http.StatusBadRequest)
			case errors.Is(err, models.ErrDataNotFound):
				http.Error(w, "product not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}

// DeleteProduct deactivates product
// 200 — success
// 404 — product not found
func (ch *CatalogHandler) DeleteProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := ch.svc.RemoveProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
			if errors.Is(err, models.ErrDataNotFound) {
				http.Error(w, "product not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}
