package domain

import (
	"context"
	"time"
)

// MetricsProvider - external ads/analytics API supplying raw daily rows
type MetricsProvider interface {
	GetDailyStats(ctx context.Context, accountID string, campaignID int64, dateFrom, dateTo time.Time) ([]DailyStat, error)
}

// CreativeUpdater swaps the listing's primary image on the marketplace
type CreativeUpdater interface {
	SetPrimaryImage(ctx context.Context, accountID string, listingID int64, imageRef string) error
}

type BudgetProvider interface {
	GetRemainingBudget(ctx context.Context, accountID string, campaignID int64) (float64, error)
	Deposit(ctx context.Context, accountID string, campaignID int64, amount float64) error
}

// NotificationSink - fire-and-forget side channel, caller never observes failures
type NotificationSink interface {
	Send(text string)
}
