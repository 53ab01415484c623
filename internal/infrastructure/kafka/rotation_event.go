package kafka

import "time"

// RotationEvent is published after every persisted step transition
type RotationEvent struct {
	SessionID       string    `json:"session_id"`
	AccountID       string    `json:"account_id"`
	CampaignID      int64     `json:"campaign_id"`
	ListingID       int64     `json:"listing_id"`
	Step            int       `json:"step"`
	TotalCreatives  int       `json:"total_creatives"`
	CumulativeViews int64     `json:"cumulative_views"`
	CreativeRef     string    `json:"creative_ref"`
	Completed       bool      `json:"completed"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// RotateJob - at-least-once out-of-band trigger for a single session check.
// Either SessionID or the (AccountID, CampaignID) pair identifies the session
type RotateJob struct {
	SessionID  string `json:"session_id,omitempty"`
	AccountID  string `json:"account_id,omitempty"`
	CampaignID int64  `json:"campaign_id,omitempty"`
}
