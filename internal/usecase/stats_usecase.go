package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/LavaJover/shvark-rotation-service/internal/domain"
	statsdto "github.com/LavaJover/shvark-rotation-service/internal/usecase/dto/stats"
)

type CampaignStatsUsecase interface {
	CumulativeImpressions(ctx context.Context, accountID string, campaignID int64, since time.Time) (int64, error)
	CollectCampaignStats(ctx context.Context, accountID string, campaignID int64, dateFrom, dateTo time.Time) error
	GetCampaignStats(ctx context.Context, accountID string, campaignID int64, dateFrom, dateTo time.Time) (*statsdto.CampaignStatsOutput, error)
	RunSweep(ctx context.Context) error
}

type StatsOptions struct {
	CallPause time.Duration
}

type DefaultCampaignStatsUsecase struct {
	Provider    domain.MetricsProvider
	StatsRepo   domain.CampaignStatsRepository
	SessionRepo domain.RotationSessionRepository
	Opts        StatsOptions
}

func NewDefaultCampaignStatsUsecase(
	provider domain.MetricsProvider,
	statsRepo domain.CampaignStatsRepository,
	sessionRepo domain.RotationSessionRepository,
	opts StatsOptions) *DefaultCampaignStatsUsecase {

	return &DefaultCampaignStatsUsecase{
		Provider:    provider,
		StatsRepo:   statsRepo,
		SessionRepo: sessionRepo,
		Opts:        opts,
	}
}

// CumulativeImpressions sums the provider's daily rows from `since` to now.
// A provider failure is returned as an error, never reported as zero views
func (uc *DefaultCampaignStatsUsecase) CumulativeImpressions(ctx context.Context, accountID string, campaignID int64, since time.Time) (int64, error) {
	rows, err := uc.Provider.GetDailyStats(ctx, accountID, campaignID, since, time.Now())
	if err != nil {
		return 0, fmt.Errorf("daily stats for campaign %d: %w", campaignID, err)
	}

	var total int64
	for _, row := range rows {
		total += row.Impressions
	}
	return total, nil
}

// CollectCampaignStats pulls daily rows from the provider and upserts them,
// so repeating a range only overwrites the same (campaign, date) rows
func (uc *DefaultCampaignStatsUsecase) CollectCampaignStats(ctx context.Context, accountID string, campaignID int64, dateFrom, dateTo time.Time) error {
	rows, err := uc.Provider.GetDailyStats(ctx, accountID, campaignID, dateFrom, dateTo)
	if err != nil {
		return fmt.Errorf("daily stats for campaign %d: %w", campaignID, err)
	}

	for _, row := range rows {
		record := &domain.CampaignStatsRecord{
			AccountID:   accountID,
			CampaignID:  campaignID,
			Date:        row.Date,
			Impressions: row.Impressions,
			Clicks:      row.Clicks,
			Conversions: row.Conversions,
			Spend:       row.Spend,
		}
		if err := uc.StatsRepo.UpsertDailyStats(record); err != nil {
			return fmt.Errorf("upsert stats for campaign %d date %s: %w",
				campaignID, row.Date.Format("2006-01-02"), err)
		}
	}
	return nil
}

// GetCampaignStats reads the stored daily rows and attaches a summary
func (uc *DefaultCampaignStatsUsecase) GetCampaignStats(ctx context.Context, accountID string, campaignID int64, dateFrom, dateTo time.Time) (*statsdto.CampaignStatsOutput, error) {
	records, err := uc.StatsRepo.GetDailyStats(accountID, campaignID, dateFrom, dateTo)
	if err != nil {
		return nil, err
	}

	output := &statsdto.CampaignStatsOutput{
		AccountID:  accountID,
		CampaignID: campaignID,
		Days:       make([]statsdto.DailyStatsOutput, 0, len(records)),
	}
	for _, record := range records {
		output.Days = append(output.Days, statsdto.DailyStatsOutput{
			Date:        record.Date.Format("2006-01-02"),
			Impressions: record.Impressions,
			Clicks:      record.Clicks,
			Conversions: record.Conversions,
			Spend:       record.Spend,
		})
		output.Summary.Impressions += record.Impressions
		output.Summary.Clicks += record.Clicks
		output.Summary.Conversions += record.Conversions
		output.Summary.Spend += record.Spend
	}
	if output.Summary.Impressions > 0 {
		output.Summary.CTR = float64(output.Summary.Clicks) / float64(output.Summary.Impressions) * 100
	}
	return output, nil
}

// RunSweep refreshes yesterday-and-today stats for every campaign that
// still has a non-terminal session
func (uc *DefaultCampaignStatsUsecase) RunSweep(ctx context.Context) error {
	start := time.Now()
	sessions, err := uc.SessionRepo.FindNonTerminalSessions()
	if err != nil {
		return fmt.Errorf("find non-terminal sessions: %w", err)
	}

	dateTo := start
	dateFrom := start.AddDate(0, 0, -1)

	type campaignKey struct {
		accountID  string
		campaignID int64
	}
	seen := make(map[campaignKey]bool)

	first := true
	for _, session := range sessions {
		key := campaignKey{session.AccountID, session.CampaignID}
		if seen[key] {
			continue
		}
		seen[key] = true

		if !first && uc.Opts.CallPause > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(uc.Opts.CallPause):
			}
		}
		first = false

		if err := uc.CollectCampaignStats(ctx, session.AccountID, session.CampaignID, dateFrom, dateTo); err != nil {
			slog.Error("failed to collect campaign stats",
				"campaign_id", session.CampaignID, "error", err.Error())
		}
	}

	slog.Info("stats sweep finished", "campaigns", len(seen), "took", time.Since(start).String())
	return nil
}
