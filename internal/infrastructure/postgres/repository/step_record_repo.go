package repository

import (
	"github.com/LavaJover/shvark-rotation-service/internal/domain"
	"github.com/LavaJover/shvark-rotation-service/internal/infrastructure/postgres/models"
	"github.com/jaevor/go-nanoid"
	"gorm.io/gorm"
	"time"
)

type DefaultStepRecordRepository struct {
	DB *gorm.DB
}

func NewDefaultStepRecordRepository(db *gorm.DB) *DefaultStepRecordRepository {
	return &DefaultStepRecordRepository{DB: db}
}

func (r *DefaultStepRecordRepository) CreateStepRecord(record *domain.StepRecord) error {
	idGenerator, err := nanoid.Standard(15)
	if err != nil {
		return err
	}

	recordModel := models.StepRecordModel{
		ID:           idGenerator(),
		SessionID:    record.SessionID,
		StepIndex:    record.StepIndex,
		CreativeRef:  record.CreativeRef,
		ViewsAtStart: record.ViewsAtStart,
		StartedAt:    record.StartedAt,
	}

	if err := r.DB.Create(&recordModel).Error; err != nil {
		return err
	}

	record.ID = recordModel.ID
	return nil
}

func (r *DefaultStepRecordRepository) CloseOpenStepRecord(sessionID string, viewsAtEnd int64, completedAt time.Time) error {
	return r.DB.Model(&models.StepRecordModel{}).
		Where("session_id = ? AND completed_at IS NULL", sessionID).
		Updates(map[string]interface{}{
			"views_at_end": viewsAtEnd,
			"completed_at": completedAt,
		}).Error
}

func (r *DefaultStepRecordRepository) GetStepRecords(sessionID string) ([]*domain.StepRecord, error) {
	var recordModels []models.StepRecordModel
	err := r.DB.
		Where("session_id = ?", sessionID).
		Order("step_index ASC").
		Find(&recordModels).Error
	if err != nil {
		return nil, err
	}

	records := make([]*domain.StepRecord, len(recordModels))
	for i, recordModel := range recordModels {
		records[i] = &domain.StepRecord{
			ID:           recordModel.ID,
			SessionID:    recordModel.SessionID,
			StepIndex:    recordModel.StepIndex,
			CreativeRef:  recordModel.CreativeRef,
			ViewsAtStart: recordModel.ViewsAtStart,
			ViewsAtEnd:   recordModel.ViewsAtEnd,
			StartedAt:    recordModel.StartedAt,
			CompletedAt:  recordModel.CompletedAt,
		}
	}

	return records, nil
}
