package domain

import "time"

type RotationSessionRepository interface {
	// CreateSession persists the session and, when opening is non-nil,
	// its first step record in the same transaction
	CreateSession(session *RotationSession, opening *StepRecord) error
	GetSessionByID(sessionID string) (*RotationSession, error)
	GetActiveSession(accountID string, campaignID int64) (*RotationSession, error)
	FindDueSessions(now time.Time) ([]*RotationSession, error)
	FindNonTerminalSessions() ([]*RotationSession, error)
	// RecordCheck stores a fresh metric without a step transition.
	// CumulativeViews never decreases
	RecordCheck(sessionID string, views int64, lastCheckAt time.Time, nextCheckAt *time.Time) error
	// AdvanceSession performs the conditional step transition together with
	// the StepRecord bookkeeping in one transaction. Returns ErrConflict
	// if another writer already advanced the session
	AdvanceSession(adv *SessionAdvance) error
	UpdateStatus(sessionID string, status SessionStatus, nextCheckAt *time.Time) error
}

type StepRecordRepository interface {
	CreateStepRecord(record *StepRecord) error
	CloseOpenStepRecord(sessionID string, viewsAtEnd int64, completedAt time.Time) error
	GetStepRecords(sessionID string) ([]*StepRecord, error)
}

type CampaignStatsRepository interface {
	// UpsertDailyStats overwrites an existing (account, campaign, date) row,
	// so re-collecting the same date is safely retryable
	UpsertDailyStats(record *CampaignStatsRecord) error
	GetDailyStats(accountID string, campaignID int64, dateFrom, dateTo time.Time) ([]*CampaignStatsRecord, error)
}
