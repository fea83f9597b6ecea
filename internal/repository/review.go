package repository

import (
	"context"

	"github.com/candleworks/storefront/internal/models"
	"github.com/candleworks/storefront/internal/repository/postgres"
)

const (
	insertReviewQuery = `
						INSERT INTO reviews (product_id, customer_id, author, rating, comment)
						VALUES ($1, $2, $3, $4, $5)
						RETURNING id, created_at
`
	selectReviewsByProductIDQuery = `
						SELECT id, product_id, customer_id, author, rating, comment, created_at FROM reviews
						WHERE product_id = $1
						ORDER BY created_at DESC
`
	deleteReviewQuery = `DELETE FROM reviews WHERE id = $1`
)

// ReviewRepository implements ReviewRepository interface
type ReviewRepository struct {
	db *postgres.DB
}

// NewReviewRepository creates new ReviewRepository instance
func NewReviewRepository(db *postgres.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// CreateReview inserts new review to database
func (rr *ReviewRepository) CreateReview(ctx context.Context, review *models.Review) (*models.Review, error) {
	err := rr.db.QueryRow(ctx, insertReviewQuery,
		review.ProductID, review.CustomerID, review.Author, review.Rating, review.Comment,
	).Scan(&review.ID, &review.CreatedAt)
	if err != nil {
		return nil, err
	}

	return review, nil
}

// GetReviewsByProductID returns product reviews
func (rr *ReviewRepository) GetReviewsByProductID(ctx context.Context, productID string) ([]models.Review, error) {
	rows, err := rr.db.Query(ctx, selectReviewsByProductIDQuery, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reviews := []models.Review{}

	for rows.Next() {
		review := models.Review{}
		err = rows.Scan(&review.ID, &review.ProductID, &review.CustomerID, &review.Author,
			&review.Rating, &review.Comment, &review.CreatedAt)
		if err != nil {
			continue
		}
		reviews = append(reviews, review)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return reviews, nil
}

// DeleteReview removes review by id
func (rr *ReviewRepository) DeleteReview(ctx context.Context, id uint64) error {
	cmd, err := rr.db.Exec(ctx, deleteReviewQuery, id)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return models.ErrDataNotFound
	}

	return nil
}
