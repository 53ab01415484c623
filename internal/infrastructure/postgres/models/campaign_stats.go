package models

import "time"

type CampaignStatsModel struct {
	AccountID   string    `gorm:"primaryKey"`
	CampaignID  int64     `gorm:"primaryKey"`
	Date        time.Time `gorm:"primaryKey;type:date"`
	Impressions int64
	Clicks      int64
	Conversions int64
	Spend       float64
	UpdatedAt   time.Time
}

func (CampaignStatsModel) TableName() string {
	return "campaign_stats"
}
