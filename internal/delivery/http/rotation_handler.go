package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/LavaJover/shvark-rotation-service/internal/delivery/http/dto"
	"github.com/LavaJover/shvark-rotation-service/internal/infrastructure/kafka"
	"github.com/LavaJover/shvark-rotation-service/internal/usecase"
	rotationdto "github.com/LavaJover/shvark-rotation-service/internal/usecase/dto/rotation"
)

// JobEnqueuer pushes an out-of-band check request to the job queue
type JobEnqueuer interface {
	PublishRotateJob(topic string, job kafka.RotateJob) error
}

type RotationHandler struct {
	rotationUC usecase.RotationUsecase
	enqueuer   JobEnqueuer
	jobsTopic  string
}

func NewRotationHandler(rotationUC usecase.RotationUsecase, enqueuer JobEnqueuer, jobsTopic string) *RotationHandler {
	return &RotationHandler{rotationUC: rotationUC, enqueuer: enqueuer, jobsTopic: jobsTopic}
}

// StartSession handles POST /sessions
func (h *RotationHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	var req dto.StartSessionRequest
	if err := ParseJSONBody(r, &req); err != nil {
		ErrorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	output, err := h.rotationUC.StartSession(r.Context(), &rotationdto.StartSessionInput{
		AccountID:      req.AccountID,
		CampaignID:     req.CampaignID,
		ListingID:      req.ListingID,
		Creatives:      req.Creatives,
		ViewsPerStep:   req.ViewsPerStep,
		AutoTopUp:      req.AutoTopUp,
		TopUpThreshold: req.TopUpThreshold,
		TopUpAmount:    req.TopUpAmount,
		Draft:          req.Draft,
	})
	if err != nil {
		DomainErrorResponse(w, err)
		return
	}

	JSONResponse(w, http.StatusCreated, dto.SessionFromOutput(output))
}

// GetSession handles GET /sessions/{id}
func (h *RotationHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		ErrorResponse(w, http.StatusBadRequest, "session id is required")
		return
	}

	output, err := h.rotationUC.GetSession(r.Context(), sessionID)
	if err != nil {
		DomainErrorResponse(w, err)
		return
	}
	JSONResponse(w, http.StatusOK, dto.SessionFromOutput(output))
}

// PauseSession handles POST /sessions/{id}/pause
func (h *RotationHandler) PauseSession(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.rotationUC.PauseSession)
}

// ResumeSession handles POST /sessions/{id}/resume
func (h *RotationHandler) ResumeSession(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.rotationUC.ResumeSession)
}

// StopSession handles POST /sessions/{id}/stop
func (h *RotationHandler) StopSession(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.rotationUC.StopSession)
}

func (h *RotationHandler) transition(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, sessionID string) error) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		ErrorResponse(w, http.StatusBadRequest, "session id is required")
		return
	}

	if err := op(r.Context(), sessionID); err != nil {
		DomainErrorResponse(w, err)
		return
	}

	output, err := h.rotationUC.GetSession(r.Context(), sessionID)
	if err != nil {
		DomainErrorResponse(w, err)
		return
	}
	JSONResponse(w, http.StatusOK, dto.SessionFromOutput(output))
}

// CheckSession handles POST /sessions/{id}/check
func (h *RotationHandler) CheckSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		ErrorResponse(w, http.StatusBadRequest, "session id is required")
		return
	}

	outcome, err := h.rotationUC.CheckSession(r.Context(), sessionID)
	if err != nil {
		DomainErrorResponse(w, err)
		return
	}
	JSONResponse(w, http.StatusOK, dto.CheckFromOutcome(outcome))
}

// EnqueueCheck handles POST /sessions/{id}/enqueue-check: pushes the check
// onto the job queue instead of running it inline
func (h *RotationHandler) EnqueueCheck(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		ErrorResponse(w, http.StatusBadRequest, "session id is required")
		return
	}
	if h.enqueuer == nil || h.jobsTopic == "" {
		ErrorResponse(w, http.StatusServiceUnavailable, "job queue is not configured")
		return
	}

	if err := h.enqueuer.PublishRotateJob(h.jobsTopic, kafka.RotateJob{SessionID: sessionID}); err != nil {
		slog.Error("failed to enqueue rotate job", "session_id", sessionID, "error", err.Error())
		ErrorResponse(w, http.StatusBadGateway, "failed to enqueue check")
		return
	}
	JSONResponse(w, http.StatusAccepted, map[string]string{"status": "enqueued", "session_id": sessionID})
}

// GetSessionResults handles GET /sessions/{id}/results
func (h *RotationHandler) GetSessionResults(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		ErrorResponse(w, http.StatusBadRequest, "session id is required")
		return
	}

	results, err := h.rotationUC.GetSessionResults(r.Context(), sessionID)
	if err != nil {
		DomainErrorResponse(w, err)
		return
	}
	JSONResponse(w, http.StatusOK, dto.ResultsFromOutput(results))
}
