package service

import (
	"context"

	"github.com/candleworks/storefront/internal/models"
)

// ProductRepository is interface for interacting with product-related data
type ProductRepository interface {
	// CreateProduct inserts new product to database
	CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error)
	// GetProductByID returns product by id
	GetProductByID(ctx context.Context, id string) (*models.Product, error)
	// GetActiveProducts returns products available for sale
	GetActiveProducts(ctx context.Context) ([]models.Product, error)
	// UpdateProduct updates product attributes
	UpdateProduct(ctx context.Context, product models.Product) error
	// DeactivateProduct soft-removes product from the catalog
	DeactivateProduct(ctx context.Context, id string) error
}

// CatalogService implements CatalogService interface
type CatalogService struct {
	repo ProductRepository
}

// NewCatalogService creates new CatalogService instance
func NewCatalogService(repo ProductRepository) *CatalogService {
	return &CatalogService{repo: repo}
}

// ListProducts returns products available for sale
func (cs *CatalogService) ListProducts(ctx context.Context) ([]models.Product, error) {
	return cs.repo.GetActiveProducts(ctx)
}

// GetProduct returns product by id
func (cs *CatalogService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	return cs.repo.GetProductByID(ctx, id)
}

// CreateProduct adds product to the catalog
func (cs *CatalogService) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if product.ID == "" || product.Title == "" || product.Price <= 0 {
		return nil, models.ErrValidation
	}
	return cs.repo.CreateProduct(ctx, product)
}

// UpdateProduct updates product attributes
func (cs *CatalogService) UpdateProduct(ctx context.Context, product models.Product) error {
	if product.Price <= 0 || product.Stock < 0 {
		return models.ErrValidation
	}
	return cs.repo.UpdateProduct(ctx, product)
}

// RemoveProduct deactivates product. Orders referencing it keep their
// snapshotted items.
func (cs *CatalogService) RemoveProduct(ctx context.Context, id string) error {
	return cs.repo.DeactivateProduct(ctx, id)
}
