package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	statsdto "github.com/LavaJover/shvark-rotation-service/internal/usecase/dto/stats"
)

type stubStatsUsecase struct {
	collected bool
	output    *statsdto.CampaignStatsOutput
}

func (s *stubStatsUsecase) CumulativeImpressions(ctx context.Context, accountID string, campaignID int64, since time.Time) (int64, error) {
	return 0, nil
}

func (s *stubStatsUsecase) CollectCampaignStats(ctx context.Context, accountID string, campaignID int64, dateFrom, dateTo time.Time) error {
	s.collected = true
	return nil
}

func (s *stubStatsUsecase) GetCampaignStats(ctx context.Context, accountID string, campaignID int64, dateFrom, dateTo time.Time) (*statsdto.CampaignStatsOutput, error) {
	if s.output == nil {
		s.output = &statsdto.CampaignStatsOutput{AccountID: accountID, CampaignID: campaignID}
	}
	return s.output, nil
}

func (s *stubStatsUsecase) RunSweep(ctx context.Context) error { return nil }

func TestCollectCampaignStats_RejectsReversedDates(t *testing.T) {
	stats := &stubStatsUsecase{}
	handler := NewStatsHandler(stats)

	req := httptest.NewRequest(http.MethodPost,
		"/campaigns/42/stats/collect?account_id=acc-1&date_from=2026-08-20&date_to=2026-08-10", nil)
	req.SetPathValue("id", "42")
	recorder := httptest.NewRecorder()

	handler.CollectCampaignStats(recorder, req)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", recorder.Code)
	}
	if stats.collected {
		t.Error("collection must not run when date_to precedes date_from")
	}
}

func TestCollectCampaignStats_Accepted(t *testing.T) {
	stats := &stubStatsUsecase{}
	handler := NewStatsHandler(stats)

	req := httptest.NewRequest(http.MethodPost,
		"/campaigns/42/stats/collect?account_id=acc-1&date_from=2026-08-10&date_to=2026-08-20", nil)
	req.SetPathValue("id", "42")
	recorder := httptest.NewRecorder()

	handler.CollectCampaignStats(recorder, req)

	if recorder.Code != http.StatusAccepted {
		t.Errorf("expected status 202, got %d", recorder.Code)
	}
	if !stats.collected {
		t.Error("expected collection to run")
	}
}

func TestGetCampaignStats_RejectsReversedDates(t *testing.T) {
	handler := NewStatsHandler(&stubStatsUsecase{})

	req := httptest.NewRequest(http.MethodGet,
		"/campaigns/42/stats?account_id=acc-1&date_from=2026-08-20&date_to=2026-08-10", nil)
	req.SetPathValue("id", "42")
	recorder := httptest.NewRecorder()

	handler.GetCampaignStats(recorder, req)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", recorder.Code)
	}
}
