package models

import (
	"time"

	"github.com/LavaJover/shvark-rotation-service/internal/domain"
	"github.com/lib/pq"
)

type RotationSessionModel struct {
	ID               string               `gorm:"primaryKey;type:uuid"`
	AccountID        string               `gorm:"index:idx_account_campaign"`
	CampaignID       int64                `gorm:"index:idx_account_campaign"`
	ListingID        int64
	Creatives        pq.StringArray       `gorm:"type:text[]"`
	ViewsPerStep     int64
	CurrentStep      int
	ViewsAtStepStart int64
	CumulativeViews  int64
	Status           domain.SessionStatus `gorm:"index:idx_status_next_check"`
	NextCheckAt      *time.Time           `gorm:"index:idx_status_next_check"`
	LastCheckAt      *time.Time
	AutoTopUp        bool
	TopUpThreshold   float64
	TopUpAmount      float64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (RotationSessionModel) TableName() string {
	return "rotation_sessions"
}
