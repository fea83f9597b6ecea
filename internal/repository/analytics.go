package repository

import (
	"context"

	"github.com/candleworks/storefront/internal/models"
	"github.com/candleworks/storefront/internal/repository/postgres"
)

const (
	insertEventQuery = `
						INSERT INTO analytics_events (id, event_type, path, referrer, session_id, occurred_at)
						VALUES ($1, $2, $3, $4, $5, $6)
`
	insertSubscriberQuery = `
						INSERT INTO newsletter_subscribers (email)
						VALUES ($1)
						RETURNING id, subscribed_at
`
)

// AnalyticsRepository implements AnalyticsRepository interface
type AnalyticsRepository struct {
	db *postgres.DB
}

// NewAnalyticsRepository creates new AnalyticsRepository instance
func NewAnalyticsRepository(db *postgres.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

// CreateEvent inserts analytics event to database
func (ar *AnalyticsRepository) CreateEvent(ctx context.Context, event models.AnalyticsEvent) error {
	_, err := ar.db.Exec(ctx, insertEventQuery,
		event.ID, event.EventType, event.Path, event.Referrer, event.SessionID, event.OccurredAt)
	return err
}

// CreateSubscriber inserts newsletter subscriber to database
func (ar *AnalyticsRepository) CreateSubscriber(ctx context.Context, subscriber *models.Subscriber) (*models.Subscriber, error) {
	err := ar.db.QueryRow(ctx, insertSubscriberQuery, subscriber.Email).Scan(&subscriber.ID, &subscriber.SubscribedAt)
	if err != nil {
		if errCode := ar.db.ErrorCode(err); errCode == pgErrUniqueViolationCode {
			return nil, models.ErrConflictData
		}
		return nil, err
	}

	return subscriber, nil
}
