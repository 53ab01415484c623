package statsdto

type DailyStatsOutput struct {
	Date        string
	Impressions int64
	Clicks      int64
	Conversions int64
	Spend       float64
}

type StatsSummary struct {
	Impressions int64
	Clicks      int64
	Conversions int64
	Spend       float64
	CTR         float64
}

type CampaignStatsOutput struct {
	AccountID  string
	CampaignID int64
	Days       []DailyStatsOutput
	Summary    StatsSummary
}
