package models

import "time"

// AnalyticsEvent is a fire-and-forget client event (page view, add to cart).
type AnalyticsEvent struct {
	ID         string
	EventType  string
	Path       string
	Referrer   string
	SessionID  string
	OccurredAt time.Time
}

// Subscriber is newsletter signup entity
type Subscriber struct {
	ID           uint64
	Email        string
	SubscribedAt time.Time
}
