package service

import (
	"context"
	"time"

	"github.com/candleworks/storefront/internal/models"
	"github.com/google/uuid"
)

// AnalyticsRepository is interface for interacting with analytics data
type AnalyticsRepository interface {
	// CreateEvent inserts analytics event to database
	CreateEvent(ctx context.Context, event models.AnalyticsEvent) error
	// CreateSubscriber inserts newsletter subscriber to database
	CreateSubscriber(ctx context.Context, subscriber *models.Subscriber) (*models.Subscriber, error)
}

// AnalyticsService implements AnalyticsService interface
type AnalyticsService struct {
	repo AnalyticsRepository
}

// NewAnalyticsService creates new AnalyticsService instance
func NewAnalyticsService(repo AnalyticsRepository) *AnalyticsService {
	return &AnalyticsService{repo: repo}
}

// TrackEvent stores a client analytics event
func (as *AnalyticsService) TrackEvent(ctx context.Context, eventType, path, referrer, sessionID string) error {
	if eventType == "" {
		return models.ErrValidation
	}

	return as.repo.CreateEvent(ctx, models.AnalyticsEvent{
		ID:         uuid.NewString(),
		EventType:  eventType,
		Path:       path,
		Referrer:   referrer,
		SessionID:  sessionID,
		OccurredAt: time.Now(),
	})
}

// Subscribe adds an email to the newsletter list
func (as *AnalyticsService) Subscribe(ctx context.Context, email string) (*models.Subscriber, error) {
	if email == "" {
		return nil, models.ErrValidation
	}

	return as.repo.CreateSubscriber(ctx, &models.Subscriber{Email: email})
}
