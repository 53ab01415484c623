package domain

import "time"

// CampaignStatsRecord - raw daily stats for (AccountID, CampaignID, Date)
type CampaignStatsRecord struct {
	AccountID   string
	CampaignID  int64
	Date        time.Time
	Impressions int64
	Clicks      int64
	Conversions int64
	Spend       float64
}

// DailyStat is one normalized day row from the provider
type DailyStat struct {
	Date        time.Time
	Impressions int64
	Clicks      int64
	Conversions int64
	Spend       float64
}
