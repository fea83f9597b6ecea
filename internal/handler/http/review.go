package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/candleworks/storefront/internal/models"
	"github.com/go-chi/chi/v5"
)

//go:generate mockgen -destination=mocks/mock_review_service.go -package=mocks . ReviewService

type ReviewService interface {
	// AddReview creates review for an existing product
	AddReview(ctx context.Context, review *models.Review) (*models.Review, error)
	// ListReviews returns product reviews
	ListReviews(ctx context.Context, productID string) ([]models.Review, error)
	// RemoveReview deletes review by id
	RemoveReview(ctx context.Context, id uint64) error
}

// ReviewHandler represents HTTP handler for review-related requests
type ReviewHandler struct {
	svc ReviewService
}

// NewReviewHandler creates new ReviewHandler instance
func NewReviewHandler(svc ReviewService) *ReviewHandler {
	return &ReviewHandler{svc: svc}
}

type createReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// CreateReview adds review to a product by the authenticated customer
// 201 — review created
// 400 — malformed request
// 401 — unauthorized
// 404 — product not found
func (rh *ReviewHandler) CreateReview() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := getAuthPayload(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createReviewRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		_, err := rh.svc.AddReview(r.Context(), &models.Review{
			ProductID:  chi.URLParam(r, "id"),
			CustomerID: payload.CustomerID,
			Author:     payload.Email,
			Rating:     req.Rating,
			Comment:    req.Comment,
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

		w.WriteHeader(http.StatusCreated)
	}
}

type reviewResponse struct {
	ID        uint64 `json:"id"`
	Author    string `json:"author"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
	CreatedAt string `json:"created_at"`
}

// ListReviews returns product reviews
// 200 — success
func (rh *ReviewHandler) ListReviews() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reviews, err := rh.svc.ListReviews(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		resp := make([]reviewResponse, 0, len(reviews))
		for _, review := range reviews {
			resp = append(resp, reviewResponse{
				ID:        review.ID,
				Author:    review.Author,
				Rating:    review.Rating,
				Comment:   review.Comment,
				CreatedAt: review.CreatedAt.Format(time.RFC3339),
			})
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if err := json.NewEncoder(w).Encode(resp); err != nil {
			return
		}
	}
}

// DeleteReview removes review, admin only
// 200 — success
// 400 — malformed review id
// 404 — review not found
func (rh *ReviewHandler) DeleteReview() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		if err := rh.svc.RemoveReview(r.Context(), id); err != nil {
			if errors.Is(err, models.ErrDataNotFound) {
				http.Error(w, "review not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}
