package service

import (
	"context"

	"github.com/candleworks/storefront/internal/models"
)

// ReviewRepository is interface for interacting with review-related data
type ReviewRepository interface {
	// CreateReview inserts new review to database
	CreateReview(ctx context.Context, review *models.Review) (*models.Review, error)
	// GetReviewsByProductID returns product reviews
	GetReviewsByProductID(ctx context.Context, productID string) ([]models.Review, error)
	// DeleteReview removes review by id
	DeleteReview(ctx context.Context, id uint64) error
}

// ReviewService implements ReviewService interface
type ReviewService struct {
	repo     ReviewRepository
	products ProductReader
}

// NewReviewService creates new ReviewService instance
func NewReviewService(repo ReviewRepository, products ProductReader) *ReviewService {
	return &ReviewService{repo: repo, products: products}
}

// AddReview creates review for an existing product
func (rs *ReviewService) AddReview(ctx context.Context, review *models.Review) (*models.Review, error) {
	if review.Rating < 1 || review.Rating > 5 {
		return nil, models.ErrValidation
	}

	if _, err := rs.products.GetProductByID(ctx, review.ProductID); err != nil {
		return nil, err
	}

	return rs.repo.CreateReview(ctx, review)
}

// ListReviews returns product reviews
func (rs *ReviewService) ListReviews(ctx context.Context, productID string) ([]models.Review, error) {
	return rs.repo.GetReviewsByProductID(ctx, productID)
}

// RemoveReview deletes review by id
func (rs *ReviewService) RemoveReview(ctx context.Context, id uint64) error {
	return rs.repo.DeleteReview(ctx, id)
}
