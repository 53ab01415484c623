package models

import "time"

type StepRecordModel struct {
	ID           string `gorm:"primaryKey"`
	SessionID    string `gorm:"type:uuid;index:idx_step_session"`
	StepIndex    int
	CreativeRef  string
	ViewsAtStart int64
	ViewsAtEnd   *int64
	StartedAt    time.Time
	CompletedAt  *time.Time `gorm:"index:idx_step_open"`
}

func (StepRecordModel) TableName() string {
	return "step_records"
}
