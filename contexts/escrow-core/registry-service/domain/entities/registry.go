package entities

import "time"

// CampaignRecord is one denormalised row of the founder index. It carries just
// enough of the campaign to render discovery listings without calling back
// into the escrow service.
type CampaignRecord struct {
	CampaignID  string
	FounderID   string
	Title       string
	FundingGoal int64
	CreatedAt   time.Time
}
