package dto

import (
	"time"

	rotationdto "github.com/LavaJover/shvark-rotation-service/internal/usecase/dto/rotation"
	statsdto "github.com/LavaJover/shvark-rotation-service/internal/usecase/dto/stats"
)

type SessionResponse struct {
	ID               string     `json:"id"`
	AccountID        string     `json:"account_id"`
	CampaignID       int64      `json:"campaign_id"`
	ListingID        int64      `json:"listing_id"`
	Creatives        []string   `json:"creatives"`
	ViewsPerStep     int64      `json:"views_per_step"`
	CurrentStep      int        `json:"current_step"`
	ViewsAtStepStart int64      `json:"views_at_step_start"`
	CumulativeViews  int64      `json:"cumulative_views"`
	Status           string     `json:"status"`
	NextCheckAt      *time.Time `json:"next_check_at,omitempty"`
	LastCheckAt      *time.Time `json:"last_check_at,omitempty"`
	AutoTopUp        bool       `json:"auto_top_up"`
	TopUpThreshold   float64    `json:"top_up_threshold"`
	TopUpAmount      float64    `json:"top_up_amount"`
	CreatedAt        time.Time  `json:"created_at"`
}

func SessionFromOutput(out *rotationdto.SessionOutput) *SessionResponse {
	return &SessionResponse{
		ID:               out.ID,
		AccountID:        out.AccountID,
		CampaignID:       out.CampaignID,
		ListingID:        out.ListingID,
		Creatives:        out.Creatives,
		ViewsPerStep:     out.ViewsPerStep,
		CurrentStep:      out.CurrentStep,
		ViewsAtStepStart: out.ViewsAtStepStart,
		CumulativeViews:  out.CumulativeViews,
		Status:           out.Status,
		NextCheckAt:      out.NextCheckAt,
		LastCheckAt:      out.LastCheckAt,
		AutoTopUp:        out.AutoTopUp,
		TopUpThreshold:   out.TopUpThreshold,
		TopUpAmount:      out.TopUpAmount,
		CreatedAt:        out.CreatedAt,
	}
}

type CheckResponse struct {
	SessionID       string `json:"session_id"`
	Rotated         bool   `json:"rotated"`
	Completed       bool   `json:"completed"`
	Skipped         bool   `json:"skipped"`
	SkipReason      string `json:"skip_reason,omitempty"`
	Step            int    `json:"step"`
	CumulativeViews int64  `json:"cumulative_views"`
}

func CheckFromOutcome(out *rotationdto.CheckOutcome) *CheckResponse {
	return &CheckResponse{
		SessionID:       out.SessionID,
		Rotated:         out.Rotated,
		Completed:       out.Completed,
		Skipped:         out.Skipped,
		SkipReason:      out.SkipReason,
		Step:            out.Step,
		CumulativeViews: out.CumulativeViews,
	}
}

type StepResultResponse struct {
	StepIndex       int     `json:"step_index"`
	CreativeRef     string  `json:"creative_ref"`
	ViewsCollected  int64   `json:"views_collected"`
	DurationSeconds float64 `json:"duration_seconds"`
	AvgViewsPerHour float64 `json:"avg_views_per_hour"`
	IsWinner        bool    `json:"is_winner"`
}

type WinnerResponse struct {
	StepIndex   int    `json:"step_index"`
	CreativeRef string `json:"creative_ref"`
	Reason      string `json:"reason"`
}

type SessionResultsResponse struct {
	Session *SessionResponse     `json:"session"`
	Steps   []StepResultResponse `json:"steps"`
	Winner  *WinnerResponse      `json:"winner,omitempty"`
}

func ResultsFromOutput(out *rotationdto.SessionResults) *SessionResultsResponse {
	resp := &SessionResultsResponse{
		Session: SessionFromOutput(out.Session),
		Steps:   make([]StepResultResponse, 0, len(out.Steps)),
	}
	for _, step := range out.Steps {
		resp.Steps = append(resp.Steps, StepResultResponse{
			StepIndex:       step.StepIndex,
			CreativeRef:     step.CreativeRef,
			ViewsCollected:  step.ViewsCollected,
			DurationSeconds: step.Duration.Seconds(),
			AvgViewsPerHour: step.AvgViewsPerHour,
			IsWinner:        step.IsWinner,
		})
	}
	if out.Winner != nil {
		resp.Winner = &WinnerResponse{
			StepIndex:   out.Winner.StepIndex,
			CreativeRef: out.Winner.CreativeRef,
			Reason:      out.Winner.Reason,
		}
	}
	return resp
}

type DailyStatsResponse struct {
	Date        string  `json:"date"`
	Impressions int64   `json:"impressions"`
	Clicks      int64   `json:"clicks"`
	Conversions int64   `json:"conversions"`
	Spend       float64 `json:"spend"`
}

type StatsSummaryResponse struct {
	Impressions int64   `json:"impressions"`
	Clicks      int64   `json:"clicks"`
	Conversions int64   `json:"conversions"`
	Spend       float64 `json:"spend"`
	CTR         float64 `json:"ctr"`
}

type CampaignStatsResponse struct {
	AccountID  string               `json:"account_id"`
	CampaignID int64                `json:"campaign_id"`
	Days       []DailyStatsResponse `json:"days"`
	Summary    StatsSummaryResponse `json:"summary"`
}

func StatsFromOutput(out *statsdto.CampaignStatsOutput) *CampaignStatsResponse {
	resp := &CampaignStatsResponse{
		AccountID:  out.AccountID,
		CampaignID: out.CampaignID,
		Days:       make([]DailyStatsResponse, 0, len(out.Days)),
		Summary: StatsSummaryResponse{
			Impressions: out.Summary.Impressions,
			Clicks:      out.Summary.Clicks,
			Conversions: out.Summary.Conversions,
			Spend:       out.Summary.Spend,
			CTR:         out.Summary.CTR,
		},
	}
	for _, day := range out.Days {
		resp.Days = append(resp.Days, DailyStatsResponse{
			Date:        day.Date,
			Impressions: day.Impressions,
			Clicks:      day.Clicks,
			Conversions: day.Conversions,
			Spend:       day.Spend,
		})
	}
	return resp
}
