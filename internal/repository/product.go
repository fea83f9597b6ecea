package repository

import (
	"context"
	"errors"

	"github.com/candleworks/storefront/internal/models"
	"github.com/candleworks/storefront/internal/repository/postgres"
	"github.com/jackc/pgx/v5"
)

const (
	insertProductQuery = `
						INSERT INTO products (id, title, description, price, currency, stock, active)
						VALUES ($1, $2, $3, $4, $5, $6, $7)
						RETURNING created_at, updated_at
`
	selectProductByIDQuery = `
						SELECT id, title, description, price, currency, stock, active, created_at, updated_at
						FROM products
						WHERE id = $1
`
	selectActiveProductsQuery = `
						SELECT id, title, description, price, currency, stock, active, created_at, updated_at
						FROM products
						WHERE active
						ORDER BY created_at DESC
`
	updateProductQuery = `
						UPDATE products
						SET title = $2, description = $3, price = $4, stock = $5, active = $6, updated_at = now()
						WHERE id = $1
`
	deactivateProductQuery = `
						UPDATE products
						SET active = FALSE, updated_at = now()
						WHERE id = $1
`
)

// ProductRepository implements ProductRepository interface
type ProductRepository struct {
	db *postgres.DB
}

// NewProductRepository creates new ProductRepository instance
func NewProductRepository(db *postgres.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// CreateProduct inserts new product to database
func (pr *ProductRepository) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	err := pr.db.QueryRow(ctx, insertProductQuery,
		product.ID, product.Title, product.Description, product.Price, product.Currency, product.Stock, product.Active,
	).Scan(&product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		if errCode := pr.db.ErrorCode(err); errCode == pgErrUniqueViolationCode {
			return nil, models.ErrConflictData
		}
		return nil, err
	}

	return product, nil
}

// GetProductByID returns product by id
func (pr *ProductRepository) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	product := models.Product{}
	err := pr.db.QueryRow(ctx, selectProductByIDQuery, id).Scan(
		&product.ID, &product.Title, &product.Description, &product.Price, &product.Currency,
		&product.Stock, &product.Active, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrDataNotFound
		}
		return nil, err
	}

	return &product, nil
}

// GetActiveProducts returns products available for sale
func (pr *ProductRepository) GetActiveProducts(ctx context.Context) ([]models.Product, error) {
	rows, err := pr.db.Query(ctx, selectActiveProductsQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []models.Product{}

	for rows.Next() {
		product := models.Product{}
		err = rows.Scan(&product.ID, &product.Title, &product.Description, &product.Price, &product.Currency,
			&product.Stock, &product.Active, &product.CreatedAt, &product.UpdatedAt)
		if err != nil {
			continue
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return products, nil
}

// UpdateProduct updates product attributes
func (pr *ProductRepository) UpdateProduct(ctx context.Context, product models.Product) error {
	cmd, err := pr.db.Exec(ctx, updateProductQuery,
		product.ID, product.Title, product.Description, product.Price, product.Stock, product.Active)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return models.ErrDataNotFound
	}

	return nil
}

// DeactivateProduct soft-removes product from the catalog
func (pr *ProductRepository) DeactivateProduct(ctx context.Context, id string) error {
	cmd, err := pr.db.Exec(ctx, deactivateProductQuery, id)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return models.ErrDataNotFound
	}

	return nil
}
