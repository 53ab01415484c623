package rotationdto

type StartSessionInput struct {
	AccountID      string
	CampaignID     int64
	ListingID      int64
	Creatives      []string
	ViewsPerStep   int64
	AutoTopUp      bool
	TopUpThreshold float64
	TopUpAmount    float64
	Draft          bool
}
