package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/LavaJover/shvark-rotation-service/internal/domain"
	"github.com/LavaJover/shvark-rotation-service/internal/infrastructure/postgres/models"
	"github.com/google/uuid"
	"github.com/jaevor/go-nanoid"
	"gorm.io/gorm"
)

type DefaultRotationSessionRepository struct {
	DB *gorm.DB
}

func NewDefaultRotationSessionRepository(db *gorm.DB) *DefaultRotationSessionRepository {
	return &DefaultRotationSessionRepository{DB: db}
}

func sessionToDomain(m *models.RotationSessionModel) *domain.RotationSession {
	return &domain.RotationSession{
		ID:               m.ID,
		AccountID:        m.AccountID,
		CampaignID:       m.CampaignID,
		ListingID:        m.ListingID,
		Creatives:        []string(m.Creatives),
		ViewsPerStep:     m.ViewsPerStep,
		CurrentStep:      m.CurrentStep,
		ViewsAtStepStart: m.ViewsAtStepStart,
		CumulativeViews:  m.CumulativeViews,
		Status:           m.Status,
		NextCheckAt:      m.NextCheckAt,
		LastCheckAt:      m.LastCheckAt,
		AutoTopUp:        m.AutoTopUp,
		TopUpThreshold:   m.TopUpThreshold,
		TopUpAmount:      m.TopUpAmount,
		CreatedAt:        m.CreatedAt,
	}
}

// CreateSession inserts the session and, for sessions started live, the
// step record opening creative #0 in the same transaction, so a crash
// cannot leave a running session without its open step record
func (r *DefaultRotationSessionRepository) CreateSession(session *domain.RotationSession, opening *domain.StepRecord) error {
	sessionModel := models.RotationSessionModel{
		ID:               uuid.New().String(),
		AccountID:        session.AccountID,
		CampaignID:       session.CampaignID,
		ListingID:        session.ListingID,
		Creatives:        session.Creatives,
		ViewsPerStep:     session.ViewsPerStep,
		CurrentStep:      session.CurrentStep,
		ViewsAtStepStart: session.ViewsAtStepStart,
		CumulativeViews:  session.CumulativeViews,
		Status:           session.Status,
		NextCheckAt:      session.NextCheckAt,
		AutoTopUp:        session.AutoTopUp,
		TopUpThreshold:   session.TopUpThreshold,
		TopUpAmount:      session.TopUpAmount,
	}

	err := r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&sessionModel).Error; err != nil {
			return err
		}
		if opening == nil {
			return nil
		}

		idGenerator, err := nanoid.Standard(15)
		if err != nil {
			return err
		}
		stepModel := models.StepRecordModel{
			ID:           idGenerator(),
			SessionID:    sessionModel.ID,
			StepIndex:    opening.StepIndex,
			CreativeRef:  opening.CreativeRef,
			ViewsAtStart: opening.ViewsAtStart,
			StartedAt:    opening.StartedAt,
		}
		if err := tx.Create(&stepModel).Error; err != nil {
			return err
		}

		opening.ID = stepModel.ID
		opening.SessionID = stepModel.SessionID
		return nil
	})
	if err != nil {
		return err
	}

	session.ID = sessionModel.ID
	session.CreatedAt = sessionModel.CreatedAt
	return nil
}

func (r *DefaultRotationSessionRepository) GetSessionByID(sessionID string) (*domain.RotationSession, error) {
	var sessionModel models.RotationSessionModel
	if err := r.DB.Where("id = ?", sessionID).First(&sessionModel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: session %s", domain.ErrNotFound, sessionID)
		}
		return nil, err
	}

	return sessionToDomain(&sessionModel), nil
}

func (r *DefaultRotationSessionRepository) GetActiveSession(accountID string, campaignID int64) (*domain.RotationSession, error) {
	var sessionModel models.RotationSessionModel
	err := r.DB.
		Where("account_id = ? AND campaign_id = ? AND status IN ?", accountID, campaignID,
			[]domain.SessionStatus{domain.StatusDraft, domain.StatusRunning, domain.StatusPaused}).
		First(&sessionModel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no active session for campaign %d", domain.ErrNotFound, campaignID)
		}
		return nil, err
	}

	return sessionToDomain(&sessionModel), nil
}

func (r *DefaultRotationSessionRepository) FindDueSessions(now time.Time) ([]*domain.RotationSession, error) {
	var sessionModels []models.RotationSessionModel
	err := r.DB.
		Where("status = ? AND (next_check_at IS NULL OR next_check_at <= ?)", domain.StatusRunning, now).
		Order("next_check_at ASC NULLS FIRST").
		Find(&sessionModels).Error
	if err != nil {
		return nil, err
	}

	sessions := make([]*domain.RotationSession, len(sessionModels))
	for i := range sessionModels {
		sessions[i] = sessionToDomain(&sessionModels[i])
	}

	return sessions, nil
}

func (r *DefaultRotationSessionRepository) FindNonTerminalSessions() ([]*domain.RotationSession, error) {
	var sessionModels []models.RotationSessionModel
	err := r.DB.
		Where("status IN ?", []domain.SessionStatus{domain.StatusDraft, domain.StatusRunning, domain.StatusPaused}).
		Find(&sessionModels).Error
	if err != nil {
		return nil, err
	}

	sessions := make([]*domain.RotationSession, len(sessionModels))
	for i := range sessionModels {
		sessions[i] = sessionToDomain(&sessionModels[i])
	}

	return sessions, nil
}

// RecordCheck updates the fresh metric and check timestamps.
// GREATEST keeps cumulative_views monotone even if the provider
// returns a smaller value than a concurrent writer already stored
func (r *DefaultRotationSessionRepository) RecordCheck(sessionID string, views int64, lastCheckAt time.Time, nextCheckAt *time.Time) error {
	updateData := map[string]interface{}{
		"cumulative_views": gorm.Expr("GREATEST(cumulative_views, ?)", views),
		"last_check_at":    lastCheckAt,
		"next_check_at":    nextCheckAt,
	}

	return r.DB.Model(&models.RotationSessionModel{}).
		Where("id = ?", sessionID).
		Updates(updateData).Error
}

// AdvanceSession - the single conditional write of the rotation engine.
// The session row update, closing the open step record and opening the
// next one happen in one transaction, guarded by current_step/status,
// so concurrent attempts cannot both advance
func (r *DefaultRotationSessionRepository) AdvanceSession(adv *domain.SessionAdvance) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		newStatus := domain.StatusRunning
		if adv.Completed {
			newStatus = domain.StatusCompleted
		}

		updateData := map[string]interface{}{
			"current_step":        adv.ToStep,
			"views_at_step_start": adv.Views,
			"cumulative_views":    gorm.Expr("GREATEST(cumulative_views, ?)", adv.Views),
			"status":              newStatus,
			"last_check_at":       adv.Now,
			"next_check_at":       adv.NextCheckAt,
		}

		result := tx.Model(&models.RotationSessionModel{}).
			Where("id = ? AND current_step = ? AND status = ?", adv.SessionID, adv.FromStep, domain.StatusRunning).
			Updates(updateData)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.ErrConflict
		}

		// Close the step record for the step we are leaving
		err := tx.Model(&models.StepRecordModel{}).
			Where("session_id = ? AND completed_at IS NULL", adv.SessionID).
			Updates(map[string]interface{}{
				"views_at_end": adv.Views,
				"completed_at": adv.Now,
			}).Error
		if err != nil {
			return err
		}

		if adv.Completed && adv.ToStep == adv.FromStep {
			// Final threshold crossed while already on the last creative
			return nil
		}

		var sessionModel models.RotationSessionModel
		if err := tx.Where("id = ?", adv.SessionID).First(&sessionModel).Error; err != nil {
			return err
		}

		creativeRef := ""
		if adv.ToStep >= 0 && adv.ToStep < len(sessionModel.Creatives) {
			creativeRef = sessionModel.Creatives[adv.ToStep]
		}

		idGenerator, err := nanoid.Standard(15)
		if err != nil {
			return err
		}

		stepRecord := models.StepRecordModel{
			ID:           idGenerator(),
			SessionID:    adv.SessionID,
			StepIndex:    adv.ToStep,
			CreativeRef:  creativeRef,
			ViewsAtStart: adv.Views,
			StartedAt:    adv.Now,
		}
		if adv.Completed {
			// The last creative's window is already over
			stepRecord.ViewsAtEnd = &adv.Views
			stepRecord.CompletedAt = &adv.Now
		}

		return tx.Create(&stepRecord).Error
	})
}

func (r *DefaultRotationSessionRepository) UpdateStatus(sessionID string, status domain.SessionStatus, nextCheckAt *time.Time) error {
	updateData := map[string]interface{}{
		"status":        status,
		"next_check_at": nextCheckAt,
	}

	result := r.DB.Model(&models.RotationSessionModel{}).
		Where("id = ?", sessionID).
		Updates(updateData)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: session %s", domain.ErrNotFound, sessionID)
	}

	return nil
}
