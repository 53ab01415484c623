package rotationdto

import "time"

type SessionOutput struct {
	ID               string
	AccountID        string
	CampaignID       int64
	ListingID        int64
	Creatives        []string
	ViewsPerStep     int64
	CurrentStep      int
	ViewsAtStepStart int64
	CumulativeViews  int64
	Status           string
	NextCheckAt      *time.Time
	LastCheckAt      *time.Time
	AutoTopUp        bool
	TopUpThreshold   float64
	TopUpAmount      float64
	CreatedAt        time.Time
}

// CheckOutcome describes what a single decision-engine invocation did
type CheckOutcome struct {
	SessionID       string
	Rotated         bool
	Completed       bool
	Skipped         bool
	SkipReason      string
	Step            int
	CumulativeViews int64
}

type StepResult struct {
	StepIndex       int
	CreativeRef     string
	ViewsCollected  int64
	Duration        time.Duration
	AvgViewsPerHour float64
	IsWinner        bool
}

type Winner struct {
	StepIndex   int
	CreativeRef string
	Reason      string
}

type SessionResults struct {
	Session *SessionOutput
	Steps   []StepResult
	Winner  *Winner
}
