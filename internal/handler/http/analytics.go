package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/candleworks/storefront/internal/models"
)

type AnalyticsService interface {
	// TrackEvent stores a client analytics event
	TrackEvent(ctx context.Context, eventType, path, referrer, sessionID string) error
	// Subscribe adds an email to the newsletter list
	Subscribe(ctx context.Context, email string) (*models.Subscriber, error)
}

// AnalyticsHandler represents HTTP handler for analytics-related requests
type AnalyticsHandler struct {
	svc AnalyticsService
}

// NewAnalyticsHandler creates new AnalyticsHandler instance
func NewAnalyticsHandler(svc AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{svc: svc}
}

type trackEventRequest struct {
	Event     string `json:"event"`
	Path      string `json:"path"`
	Referrer  string `json:"referrer"`
	SessionID string `json:"session_id"`
}

// TrackEvent accepts a fire-and-forget client event
// 202 — event accepted
// 400 — malformed request
func (ah *AnalyticsHandler) TrackEvent() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req trackEventRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		if err := ah.svc.TrackEvent(r.Context(), req.Event, req.Path, req.Referrer, req.SessionID); err != nil {
			if errors.Is(err, models.ErrValidation) {
				http.Error(w, "bad request", http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusAccepted)
	}
}

type subscribeRequest struct {
	Email string `json:"email"`
}

// Subscribe signs an email up for the newsletter
// 201 — subscribed
// 400 — malformed request
// 409 — already subscribed
func (ah *AnalyticsHandler) Subscribe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req subscribeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		_, err := ah.svc.Subscribe(r.Context(), req.Email)
		if err != nil {
			switch {
			case errors.Is(err, models.ErrValidation):
				http.Error(w, "bad request", http.StatusBadRequest)
			case errors.Is(err, models.ErrConflictData):
				http.Error(w, "already subscribed", http.StatusConflict)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		w.WriteHeader(http.StatusCreated)
	}
}
