package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/LavaJover/shvark-rotation-service/internal/delivery/http/dto"
	"github.com/LavaJover/shvark-rotation-service/internal/usecase"
)

type StatsHandler struct {
	statsUC usecase.CampaignStatsUsecase
}

func NewStatsHandler(statsUC usecase.CampaignStatsUsecase) *StatsHandler {
	return &StatsHandler{statsUC: statsUC}
}

// GetCampaignStats handles GET /campaigns/{id}/stats?account_id=&date_from=&date_to=
func (h *StatsHandler) GetCampaignStats(w http.ResponseWriter, r *http.Request) {
	campaignID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || campaignID <= 0 {
		ErrorResponse(w, http.StatusBadRequest, "campaign id must be a positive number")
		return
	}
	accountID := r.URL.Query().Get("account_id")
	if accountID == "" {
		ErrorResponse(w, http.StatusBadRequest, "account_id is required")
		return
	}

	now := time.Now()
	dateFrom := now.AddDate(0, 0, -7)
	dateTo := now
	if raw := r.URL.Query().Get("date_from"); raw != "" {
		dateFrom, err = time.Parse("2006-01-02", raw)
		if err != nil {
			ErrorResponse(w, http.StatusBadRequest, "date_from must be YYYY-MM-DD")
			return
		}
	}
	if raw := r.URL.Query().Get("date_to"); raw != "" {
		dateTo, err = time.Parse("2006-01-02", raw)
		if err != nil {
			ErrorResponse(w, http.StatusBadRequest, "date_to must be YYYY-MM-DD")
			return
		}
	}
	if dateTo.Before(dateFrom) {
		ErrorResponse(w, http.StatusBadRequest, "date_to must not precede date_from")
		return
	}

	output, err := h.statsUC.GetCampaignStats(r.Context(), accountID, campaignID, dateFrom, dateTo)
	if err != nil {
		DomainErrorResponse(w, err)
		return
	}
	JSONResponse(w, http.StatusOK, dto.StatsFromOutput(output))
}

// CollectCampaignStats handles POST /campaigns/{id}/stats/collect?account_id=&date_from=&date_to=
func (h *StatsHandler) CollectCampaignStats(w http.ResponseWriter, r *http.Request) {
	campaignID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || campaignID <= 0 {
		ErrorResponse(w, http.StatusBadRequest, "campaign id must be a positive number")
		return
	}
	accountID := r.URL.Query().Get("account_id")
	if accountID == "" {
		ErrorResponse(w, http.StatusBadRequest, "account_id is required")
		return
	}

	now := time.Now()
	dateFrom := now.AddDate(0, 0, -1)
	dateTo := now
	if raw := r.URL.Query().Get("date_from"); raw != "" {
		dateFrom, err = time.Parse("2006-01-02", raw)
		if err != nil {
			ErrorResponse(w, http.StatusBadRequest, "date_from must be YYYY-MM-DD")
			return
		}
	}
	if raw := r.URL.Query().Get("date_to"); raw != "" {
		dateTo, err = time.Parse("2006-01-02", raw)
		if err != nil {
			ErrorResponse(w, http.StatusBadRequest, "date_to must be YYYY-MM-DD")
			return
		}
	}
	if dateTo.Before(dateFrom) {
		ErrorResponse(w, http.StatusBadRequest, "date_to must not precede date_from")
		return
	}

	if err := h.statsUC.CollectCampaignStats(r.Context(), accountID, campaignID, dateFrom, dateTo); err != nil {
		DomainErrorResponse(w, err)
		return
	}
	JSONResponse(w, http.StatusAccepted, map[string]string{"status": "collected"})
}
