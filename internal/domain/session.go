package domain

import "time"

type SessionStatus string

const (
	StatusDraft     SessionStatus = "draft"
	StatusRunning   SessionStatus = "running"
	StatusPaused    SessionStatus = "paused"
	StatusStopped   SessionStatus = "stopped"
	StatusCompleted SessionStatus = "completed"
)

// Terminal reports whether the session can never be checked again
func (s SessionStatus) Terminal() bool {
	return s == StatusStopped || s == StatusCompleted
}

// RotationSession - one creative-rotation test for a given advert campaign.
// Exactly one non-terminal session may exist per (AccountID, CampaignID)
type RotationSession struct {
	ID               string
	AccountID        string
	CampaignID       int64
	ListingID        int64
	Creatives        []string
	ViewsPerStep     int64
	CurrentStep      int
	ViewsAtStepStart int64
	CumulativeViews  int64
	Status           SessionStatus
	NextCheckAt      *time.Time
	LastCheckAt      *time.Time
	AutoTopUp        bool
	TopUpThreshold   float64
	TopUpAmount      float64
	CreatedAt        time.Time
}

// StepRecord - stats for one creative actually shown. Closed
// (ViewsAtEnd/CompletedAt set) when the session advances past the step
// or is stopped early
type StepRecord struct {
	ID           string
	SessionID    string
	StepIndex    int
	CreativeRef  string
	ViewsAtStart int64
	ViewsAtEnd   *int64
	StartedAt    time.Time
	CompletedAt  *time.Time
}

// SessionAdvance describes one atomic step transition. The persisted update
// is conditional on FromStep and a running status, so only one of two
// concurrent rotation attempts can win
type SessionAdvance struct {
	SessionID   string
	FromStep    int
	ToStep      int
	Views       int64
	Completed   bool
	NextCheckAt *time.Time
	Now         time.Time
}
