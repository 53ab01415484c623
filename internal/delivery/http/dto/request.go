package dto

type StartSessionRequest struct {
	AccountID      string   `json:"account_id"`
	CampaignID     int64    `json:"campaign_id"`
	ListingID      int64    `json:"listing_id"`
	Creatives      []string `json:"creatives"`
	ViewsPerStep   int64    `json:"views_per_step,omitempty"`
	AutoTopUp      bool     `json:"auto_top_up,omitempty"`
	TopUpThreshold float64  `json:"top_up_threshold,omitempty"`
	TopUpAmount    float64  `json:"top_up_amount,omitempty"`
	Draft          bool     `json:"draft,omitempty"`
}
