package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CampaignRecordResponse struct {
	CampaignID  string `json:"campaign_id"`
	FounderID   string `json:"founder_id"`
	Title       string `json:"title"`
	FundingGoal int64  `json:"funding_goal"`
	CreatedAt   string `json:"created_at"`
}

type FounderCampaignsResponse struct {
	FounderID string                   `json:"founder_id"`
	Campaigns []CampaignRecordResponse `json:"campaigns"`
}
