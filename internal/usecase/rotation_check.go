package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/LavaJover/shvark-rotation-service/internal/domain"
	"github.com/LavaJover/shvark-rotation-service/internal/infrastructure/kafka"
	rotationdto "github.com/LavaJover/shvark-rotation-service/internal/usecase/dto/rotation"
)

// CheckSession runs one decision cycle for the session: fetch cumulative
// views, decide the required step and either record the check or rotate
func (uc *DefaultRotationUsecase) CheckSession(ctx context.Context, sessionID string) (*rotationdto.CheckOutcome, error) {
	session, err := uc.SessionRepo.GetSessionByID(sessionID)
	if err != nil {
		return nil, err
	}
	return uc.checkSession(ctx, session)
}

// CheckCampaign resolves the active session for the campaign and checks it
func (uc *DefaultRotationUsecase) CheckCampaign(ctx context.Context, accountID string, campaignID int64) (*rotationdto.CheckOutcome, error) {
	session, err := uc.SessionRepo.GetActiveSession(accountID, campaignID)
	if err != nil {
		return nil, err
	}
	return uc.checkSession(ctx, session)
}

func (uc *DefaultRotationUsecase) checkSession(ctx context.Context, session *domain.RotationSession) (*rotationdto.CheckOutcome, error) {
	if session.Status != domain.StatusRunning {
		return &rotationdto.CheckOutcome{
			SessionID:       session.ID,
			Skipped:         true,
			SkipReason:      fmt.Sprintf("session is %s", session.Status),
			Step:            session.CurrentStep,
			CumulativeViews: session.CumulativeViews,
		}, nil
	}

	views, err := uc.Aggregator.CumulativeImpressions(ctx, session.AccountID, session.CampaignID, session.CreatedAt)
	if err != nil {
		// Скипаем тик целиком: lastCheckAt/nextCheckAt не трогаем,
		// следующий обход попробует снова
		if uc.Metrics != nil {
			uc.Metrics.RecordTickSkipped(session.AccountID, "provider_error")
			uc.Metrics.RecordProviderError(errorClass(err))
		}
		return nil, fmt.Errorf("fetch cumulative views for session %s: %w", session.ID, err)
	}

	now := time.Now()
	nextCheckAt := now.Add(uc.Opts.CheckInterval)
	lastIndex := len(session.Creatives) - 1

	rawRequired := views / session.ViewsPerStep
	target := int(rawRequired)
	if target > lastIndex {
		target = lastIndex
	}
	completed := rawRequired > int64(lastIndex)

	if target <= session.CurrentStep && !completed {
		// Ничего не изменилось - фиксируем просмотры и время проверки
		if err := uc.SessionRepo.RecordCheck(session.ID, views, now, &nextCheckAt); err != nil {
			return nil, err
		}
		if session.AutoTopUp {
			uc.maybeTopUp(ctx, session)
		}
		return &rotationdto.CheckOutcome{
			SessionID:       session.ID,
			Step:            session.CurrentStep,
			CumulativeViews: views,
		}, nil
	}

	// Swap the live image first. If the marketplace call fails the session
	// state stays untouched and the next tick retries the same transition
	if !completed || target != session.CurrentStep {
		if err := uc.CreativeUpdater.SetPrimaryImage(ctx, session.AccountID, session.ListingID, session.Creatives[target]); err != nil {
			if uc.Metrics != nil {
				uc.Metrics.RecordProviderError(errorClass(err))
			}
			return nil, fmt.Errorf("set primary image for session %s (step %d -> %d): %w", session.ID, session.CurrentStep, target, err)
		}
	}

	adv := &domain.SessionAdvance{
		SessionID: session.ID,
		FromStep:  session.CurrentStep,
		ToStep:    target,
		Views:     views,
		Completed: completed,
		Now:       now,
	}
	if !completed {
		adv.NextCheckAt = &nextCheckAt
	}

	if err := uc.SessionRepo.AdvanceSession(adv); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			// Конкурентная проверка уже продвинула сессию - это не ошибка
			if uc.Metrics != nil {
				uc.Metrics.RecordConflict(session.AccountID)
			}
			return &rotationdto.CheckOutcome{
				SessionID:       session.ID,
				Skipped:         true,
				SkipReason:      "already advanced by a concurrent check",
				Step:            session.CurrentStep,
				CumulativeViews: views,
			}, nil
		}
		return nil, err
	}

	rotated := target != session.CurrentStep
	if uc.Metrics != nil {
		if rotated {
			uc.Metrics.RecordRotation(session.AccountID)
		}
		if completed {
			uc.Metrics.RecordSessionCompleted(session.AccountID)
		}
	}

	uc.notifyRotation(session, target, views, completed)
	uc.publishRotation(session, target, views, completed, now)

	if session.AutoTopUp && !completed {
		uc.maybeTopUp(ctx, session)
	}

	return &rotationdto.CheckOutcome{
		SessionID:       session.ID,
		Rotated:         rotated,
		Completed:       completed,
		Step:            target,
		CumulativeViews: views,
	}, nil
}

// RunSweep checks every due session sequentially with a pause between
// provider calls. A failed session never aborts the sweep
func (uc *DefaultRotationUsecase) RunSweep(ctx context.Context) error {
	start := time.Now()
	sessions, err := uc.SessionRepo.FindDueSessions(start)
	if err != nil {
		return fmt.Errorf("find due sessions: %w", err)
	}

	for i, session := range sessions {
		if i > 0 && uc.Opts.CallPause > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(uc.Opts.CallPause):
			}
		}

		if _, err := uc.checkSession(ctx, session); err != nil {
			slog.Error("failed to check rotation session",
				"session_id", session.ID,
				"campaign_id", session.CampaignID,
				"error", err.Error())
		}
	}

	if uc.Metrics != nil {
		uc.Metrics.RecordSweepDuration("rotation", time.Since(start).Seconds())
	}
	slog.Info("rotation sweep finished", "sessions", len(sessions), "took", time.Since(start).String())
	return nil
}

// maybeTopUp deposits into the campaign budget when it drops below the
// session threshold. Best effort: failures are logged and swallowed
func (uc *DefaultRotationUsecase) maybeTopUp(ctx context.Context, session *domain.RotationSession) {
	budget, err := uc.BudgetProvider.GetRemainingBudget(ctx, session.AccountID, session.CampaignID)
	if err != nil {
		slog.Error("failed to fetch campaign budget",
			"campaign_id", session.CampaignID, "error", err.Error())
		return
	}
	if budget >= session.TopUpThreshold {
		return
	}

	if err := uc.BudgetProvider.Deposit(ctx, session.AccountID, session.CampaignID, session.TopUpAmount); err != nil {
		slog.Error("failed to top up campaign budget",
			"campaign_id", session.CampaignID,
			"amount", session.TopUpAmount,
			"error", err.Error())
		return
	}

	if uc.Metrics != nil {
		uc.Metrics.RecordTopUp(session.AccountID, session.TopUpAmount)
	}
	slog.Info("campaign budget topped up",
		"campaign_id", session.CampaignID,
		"amount", session.TopUpAmount,
		"was", budget)
}

func (uc *DefaultRotationUsecase) notifyRotation(session *domain.RotationSession, target int, views int64, completed bool) {
	if uc.Notifier == nil {
		return
	}
	var text string
	if completed {
		text = fmt.Sprintf(
			"✅ <b>РОТАЦИЯ ЗАВЕРШЕНА</b>\nКампания: <code>%d</code>\nАртикул: <code>%d</code>\nПросмотров: <b>%d</b>\nПоказаны все %d креативов",
			session.CampaignID, session.ListingID, views, len(session.Creatives))
	} else {
		text = fmt.Sprintf(
			"🔄 <b>АВТО-СМЕНА ТИТУЛЬНИКА</b>\nКампания: <code>%d</code>\nАртикул: <code>%d</code>\nШаг: <b>%d → %d</b> из %d\nПросмотров: <b>%d</b> (порог %d)\nКреатив: <code>%s</code>",
			session.CampaignID, session.ListingID, session.CurrentStep, target, len(session.Creatives), views, session.ViewsPerStep, session.Creatives[target])
	}
	uc.Notifier.Send(text)
}

func (uc *DefaultRotationUsecase) publishRotation(session *domain.RotationSession, target int, views int64, completed bool, now time.Time) {
	if uc.Publisher == nil || uc.Opts.EventsTopic == "" {
		return
	}

	event := kafka.RotationEvent{
		SessionID:       session.ID,
		AccountID:       session.AccountID,
		CampaignID:      session.CampaignID,
		ListingID:       session.ListingID,
		Step:            target,
		TotalCreatives:  len(session.Creatives),
		CumulativeViews: views,
		CreativeRef:     session.Creatives[target],
		Completed:       completed,
		OccurredAt:      now.UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		slog.Error("failed to marshal rotation event", "error", err.Error())
		return
	}

	if err := uc.Publisher.Publish(uc.Opts.EventsTopic, domain.Message{
		Key:   []byte(session.ID),
		Value: payload,
	}); err != nil {
		slog.Error("failed to publish rotation event",
			"session_id", session.ID, "error", err.Error())
	}
}

func errorClass(err error) string {
	switch {
	case errors.Is(err, domain.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, domain.ErrExternalService):
		return "external_service"
	default:
		return "unknown"
	}
}
