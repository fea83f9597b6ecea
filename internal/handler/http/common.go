package handler

import (
	"context"

	"github.com/candleworks/storefront/internal/middleware"
	"github.com/candleworks/storefront/internal/models"
)

// getAuthPayload extracts authorization token payload from context
func getAuthPayload(ctx context.Context) (*models.TokenPayload, bool) {
	payload, ok := ctx.Value(middleware.AuthPayloadKey).(*models.TokenPayload)
	return payload, ok
}
