package repository

import (
	"time"

	"github.com/LavaJover/shvark-rotation-service/internal/domain"
	"github.com/LavaJover/shvark-rotation-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DefaultCampaignStatsRepository struct {
	DB *gorm.DB
}

func NewDefaultCampaignStatsRepository(db *gorm.DB) *DefaultCampaignStatsRepository {
	return &DefaultCampaignStatsRepository{DB: db}
}

// UpsertDailyStats overwrites on conflict, so re-collecting a date is idempotent
func (r *DefaultCampaignStatsRepository) UpsertDailyStats(record *domain.CampaignStatsRecord) error {
	statsModel := models.CampaignStatsModel{
		AccountID:   record.AccountID,
		CampaignID:  record.CampaignID,
		Date:        record.Date,
		Impressions: record.Impressions,
		Clicks:      record.Clicks,
		Conversions: record.Conversions,
		Spend:       record.Spend,
	}

	return r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "account_id"}, {Name: "campaign_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"impressions", "clicks", "conversions", "spend", "updated_at"}),
	}).Create(&statsModel).Error
}

func (r *DefaultCampaignStatsRepository) GetDailyStats(accountID string, campaignID int64, dateFrom, dateTo time.Time) ([]*domain.CampaignStatsRecord, error) {
	var statsModels []models.CampaignStatsModel
	err := r.DB.
		Where("account_id = ? AND campaign_id = ? AND date >= ? AND date <= ?", accountID, campaignID, dateFrom, dateTo).
		Order("date ASC").
		Find(&statsModels).Error
	if err != nil {
		return nil, err
	}

	records := make([]*domain.CampaignStatsRecord, len(statsModels))
	for i, statsModel := range statsModels {
		records[i] = &domain.CampaignStatsRecord{
			AccountID:   statsModel.AccountID,
			CampaignID:  statsModel.CampaignID,
			Date:        statsModel.Date,
			Impressions: statsModel.Impressions,
			Clicks:      statsModel.Clicks,
			Conversions: statsModel.Conversions,
			Spend:       statsModel.Spend,
		}
	}

	return records, nil
}
