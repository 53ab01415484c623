package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/LavaJover/shvark-rotation-service/internal/domain"
	"github.com/LavaJover/shvark-rotation-service/internal/infrastructure/metrics"
	rotationdto "github.com/LavaJover/shvark-rotation-service/internal/usecase/dto/rotation"
)

const (
	minCreatives = 2
	maxCreatives = 5
)

type RotationUsecase interface {
	StartSession(ctx context.Context, input *rotationdto.StartSessionInput) (*rotationdto.SessionOutput, error)
	PauseSession(ctx context.Context, sessionID string) error
	ResumeSession(ctx context.Context, sessionID string) error
	StopSession(ctx context.Context, sessionID string) error
	CheckSession(ctx context.Context, sessionID string) (*rotationdto.CheckOutcome, error)
	CheckCampaign(ctx context.Context, accountID string, campaignID int64) (*rotationdto.CheckOutcome, error)
	GetSession(ctx context.Context, sessionID string) (*rotationdto.SessionOutput, error)
	GetSessionResults(ctx context.Context, sessionID string) (*rotationdto.SessionResults, error)
	RunSweep(ctx context.Context) error
}

// MetricsAggregator - cumulative impressions view over the raw provider data
type MetricsAggregator interface {
	CumulativeImpressions(ctx context.Context, accountID string, campaignID int64, since time.Time) (int64, error)
}

type RotationOptions struct {
	CheckInterval         time.Duration
	CallPause             time.Duration
	EventsTopic           string
	DefaultViewsPerStep   int64
	DefaultTopUpThreshold float64
	DefaultTopUpAmount    float64
}

type DefaultRotationUsecase struct {
	SessionRepo     domain.RotationSessionRepository
	StepRepo        domain.StepRecordRepository
	Aggregator      MetricsAggregator
	CreativeUpdater domain.CreativeUpdater
	BudgetProvider  domain.BudgetProvider
	Notifier        domain.NotificationSink
	Publisher       domain.PublisherPort
	Metrics         *metrics.RotationMetrics
	Opts            RotationOptions
}

func NewDefaultRotationUsecase(
	sessionRepo domain.RotationSessionRepository,
	stepRepo domain.StepRecordRepository,
	aggregator MetricsAggregator,
	creativeUpdater domain.CreativeUpdater,
	budgetProvider domain.BudgetProvider,
	notifier domain.NotificationSink,
	publisher domain.PublisherPort,
	rotationMetrics *metrics.RotationMetrics,
	opts RotationOptions) *DefaultRotationUsecase {

	if opts.CheckInterval <= 0 {
		opts.CheckInterval = 15 * time.Minute
	}
	if opts.DefaultViewsPerStep <= 0 {
		opts.DefaultViewsPerStep = 1500
	}
	if opts.DefaultTopUpThreshold <= 0 {
		opts.DefaultTopUpThreshold = 1000
	}
	if opts.DefaultTopUpAmount <= 0 {
		opts.DefaultTopUpAmount = 5000
	}

	return &DefaultRotationUsecase{
		SessionRepo:     sessionRepo,
		StepRepo:        stepRepo,
		Aggregator:      aggregator,
		CreativeUpdater: creativeUpdater,
		BudgetProvider:  budgetProvider,
		Notifier:        notifier,
		Publisher:       publisher,
		Metrics:         rotationMetrics,
		Opts:            opts,
	}
}

func (uc *DefaultRotationUsecase) StartSession(ctx context.Context, input *rotationdto.StartSessionInput) (*rotationdto.SessionOutput, error) {
	if err := validateStartInput(input); err != nil {
		return nil, err
	}

	if _, err := uc.SessionRepo.GetActiveSession(input.AccountID, input.CampaignID); err == nil {
		return nil, fmt.Errorf("%w: campaign %d", domain.ErrSessionExists, input.CampaignID)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	viewsPerStep := input.ViewsPerStep
	if viewsPerStep == 0 {
		viewsPerStep = uc.Opts.DefaultViewsPerStep
	}
	topUpThreshold := input.TopUpThreshold
	if topUpThreshold == 0 {
		topUpThreshold = uc.Opts.DefaultTopUpThreshold
	}
	topUpAmount := input.TopUpAmount
	if topUpAmount == 0 {
		topUpAmount = uc.Opts.DefaultTopUpAmount
	}

	now := time.Now()
	session := &domain.RotationSession{
		AccountID:      input.AccountID,
		CampaignID:     input.CampaignID,
		ListingID:      input.ListingID,
		Creatives:      input.Creatives,
		ViewsPerStep:   viewsPerStep,
		Status:         domain.StatusRunning,
		AutoTopUp:      input.AutoTopUp,
		TopUpThreshold: topUpThreshold,
		TopUpAmount:    topUpAmount,
	}

	var opening *domain.StepRecord
	if input.Draft {
		session.Status = domain.StatusDraft
	} else {
		// Put the first creative live before persisting anything, so a
		// failed swap leaves no session behind
		if err := uc.CreativeUpdater.SetPrimaryImage(ctx, input.AccountID, input.ListingID, input.Creatives[0]); err != nil {
			return nil, err
		}
		firstCheck := now.Add(uc.Opts.CheckInterval)
		session.NextCheckAt = &firstCheck
		opening = &domain.StepRecord{
			StepIndex:    0,
			CreativeRef:  input.Creatives[0],
			ViewsAtStart: 0,
			StartedAt:    now,
		}
	}

	// Сессия и её первый step record создаются одной транзакцией
	if err := uc.SessionRepo.CreateSession(session, opening); err != nil {
		if strings.Contains(err.Error(), "uniq_active_session") || strings.Contains(err.Error(), "duplicate key") {
			return nil, fmt.Errorf("%w: campaign %d", domain.ErrSessionExists, input.CampaignID)
		}
		return nil, err
	}

	if uc.Metrics != nil {
		uc.Metrics.RecordSessionStarted(input.AccountID)
	}

	return sessionToOutput(session), nil
}

func validateStartInput(input *rotationdto.StartSessionInput) error {
	if input.AccountID == "" {
		return fmt.Errorf("%w: account id is required", domain.ErrValidation)
	}
	if input.CampaignID <= 0 {
		return fmt.Errorf("%w: campaign id must be positive", domain.ErrValidation)
	}
	if input.ListingID <= 0 {
		return fmt.Errorf("%w: listing id must be positive", domain.ErrValidation)
	}
	if len(input.Creatives) < minCreatives || len(input.Creatives) > maxCreatives {
		return fmt.Errorf("%w: need %d-%d creatives, got %d", domain.ErrValidation, minCreatives, maxCreatives, len(input.Creatives))
	}
	for _, creative := range input.Creatives {
		if creative == "" {
			return fmt.Errorf("%w: empty creative ref", domain.ErrValidation)
		}
	}
	if input.ViewsPerStep < 0 {
		return fmt.Errorf("%w: views per step must be positive", domain.ErrValidation)
	}
	if input.TopUpThreshold < 0 || input.TopUpAmount < 0 {
		return fmt.Errorf("%w: top-up threshold and amount must be positive", domain.ErrValidation)
	}
	return nil
}

func (uc *DefaultRotationUsecase) PauseSession(ctx context.Context, sessionID string) error {
	session, err := uc.SessionRepo.GetSessionByID(sessionID)
	if err != nil {
		return err
	}
	if session.Status != domain.StatusRunning {
		return fmt.Errorf("%w: cannot pause session in status %s", domain.ErrValidation, session.Status)
	}

	return uc.SessionRepo.UpdateStatus(sessionID, domain.StatusPaused, nil)
}

func (uc *DefaultRotationUsecase) ResumeSession(ctx context.Context, sessionID string) error {
	session, err := uc.SessionRepo.GetSessionByID(sessionID)
	if err != nil {
		return err
	}
	if session.Status != domain.StatusPaused && session.Status != domain.StatusDraft {
		return fmt.Errorf("%w: cannot resume session in status %s", domain.ErrValidation, session.Status)
	}

	now := time.Now()
	if session.Status == domain.StatusDraft {
		// A draft never went live: put the first creative up and open
		// its step record before the session starts running
		if err := uc.CreativeUpdater.SetPrimaryImage(ctx, session.AccountID, session.ListingID, session.Creatives[0]); err != nil {
			return err
		}
		stepRecord := &domain.StepRecord{
			SessionID:    session.ID,
			StepIndex:    0,
			CreativeRef:  session.Creatives[0],
			ViewsAtStart: 0,
			StartedAt:    now,
		}
		if err := uc.StepRepo.CreateStepRecord(stepRecord); err != nil {
			return err
		}
	}

	nextCheckAt := now.Add(uc.Opts.CheckInterval)
	return uc.SessionRepo.UpdateStatus(sessionID, domain.StatusRunning, &nextCheckAt)
}

func (uc *DefaultRotationUsecase) StopSession(ctx context.Context, sessionID string) error {
	session, err := uc.SessionRepo.GetSessionByID(sessionID)
	if err != nil {
		return err
	}
	if session.Status.Terminal() {
		return fmt.Errorf("%w: session already %s", domain.ErrValidation, session.Status)
	}

	// Close the open step record with the last metric we know about
	if err := uc.StepRepo.CloseOpenStepRecord(sessionID, session.CumulativeViews, time.Now()); err != nil {
		return err
	}

	return uc.SessionRepo.UpdateStatus(sessionID, domain.StatusStopped, nil)
}

func (uc *DefaultRotationUsecase) GetSession(ctx context.Context, sessionID string) (*rotationdto.SessionOutput, error) {
	session, err := uc.SessionRepo.GetSessionByID(sessionID)
	if err != nil {
		return nil, err
	}
	return sessionToOutput(session), nil
}

func sessionToOutput(session *domain.RotationSession) *rotationdto.SessionOutput {
	return &rotationdto.SessionOutput{
		ID:               session.ID,
		AccountID:        session.AccountID,
		CampaignID:       session.CampaignID,
		ListingID:        session.ListingID,
		Creatives:        session.Creatives,
		ViewsPerStep:     session.ViewsPerStep,
		CurrentStep:      session.CurrentStep,
		ViewsAtStepStart: session.ViewsAtStepStart,
		CumulativeViews:  session.CumulativeViews,
		Status:           string(session.Status),
		NextCheckAt:      session.NextCheckAt,
		LastCheckAt:      session.LastCheckAt,
		AutoTopUp:        session.AutoTopUp,
		TopUpThreshold:   session.TopUpThreshold,
		TopUpAmount:      session.TopUpAmount,
		CreatedAt:        session.CreatedAt,
	}
}
