package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type MilestonePlanRequest struct {
	Description  string `json:"description"`
	ReleaseBps   int64  `json:"release_bps"`
	DeadlineDays int    `json:"deadline_days"`
}

type CreateCampaignRequest struct {
	Title          string                 `json:"title"`
	Description    string                 `json:"description"`
	FundingGoal    int64                  `json:"funding_goal"`
	PlatformFeeBps int64                  `json:"platform_fee_bps"`
	Milestones     []MilestonePlanRequest `json:"milestones"`
}

type ContributeRequest struct {
	Amount      int64  `json:"amount"`
	RiskProfile string `json:"risk_profile"`
}

type ContributeResponse struct {
	CampaignID  string `json:"campaign_id"`
	FunderID    string `json:"funder_id"`
	Amount      int64  `json:"amount"`
	Committed   int64  `json:"committed"`
	Reserve     int64  `json:"reserve"`
	TotalRaised int64  `json:"total_raised"`
	Replayed    bool   `json:"replayed"`
}

type SubmitEvidenceRequest struct {
	EvidenceRef string `json:"evidence_ref"`
}

type SubmitEvidenceResponse struct {
	CampaignID     string `json:"campaign_id"`
	MilestoneIndex int    `json:"milestone_index"`
	Status         string `json:"status"`
	VotingDeadline string `json:"voting_deadline,omitempty"`
	CampaignFailed bool   `json:"campaign_failed"`
}

type CastVoteRequest struct {
	Support bool `json:"support"`
}

type CastVoteResponse struct {
	CampaignID     string `json:"campaign_id"`
	FunderID       string `json:"funder_id"`
	MilestoneIndex int    `json:"milestone_index"`
	Support        bool   `json:"support"`
	Weight         int64  `json:"weight"`
}

type ResolveResponse struct {
	CampaignID        string `json:"campaign_id"`
	MilestoneIndex    int    `json:"milestone_index"`
	Approved          bool   `json:"approved"`
	ReleaseAmount     int64  `json:"release_amount"`
	ReserveAmount     int64  `json:"reserve_amount"`
	YesWeight         int64  `json:"yes_weight"`
	NoWeight          int64  `json:"no_weight"`
	TotalWeight       int64  `json:"total_weight"`
	CampaignFailed    bool   `json:"campaign_failed"`
	CampaignCompleted bool   `json:"campaign_completed"`
}

type ClaimRefundResponse struct {
	CampaignID string `json:"campaign_id"`
	FunderID   string `json:"funder_id"`
	Amount     int64  `json:"amount"`
}

type EmergencyRequest struct {
	Reason string `json:"reason"`
}

type MilestoneResponse struct {
	Index          int    `json:"index"`
	Description    string `json:"description"`
	ReleaseBps     int64  `json:"release_bps"`
	DeadlineAt     string `json:"deadline_at"`
	Status         string `json:"status"`
	VotingDeadline string `json:"voting_deadline,omitempty"`
	EvidenceRef    string `json:"evidence_ref,omitempty"`
	YesWeight      int64  `json:"yes_weight"`
	NoWeight       int64  `json:"no_weight"`
	TotalWeight    int64  `json:"total_weight"`
	Rejections     int    `json:"rejections"`
}

type CampaignResponse struct {
	CampaignID         string              `json:"campaign_id"`
	FounderID          string              `json:"founder_id"`
	Title              string              `json:"title"`
	Description        string              `json:"description"`
	FundingGoal        int64               `json:"funding_goal"`
	TotalRaised        int64               `json:"total_raised"`
	TotalCommittedPool int64               `json:"total_committed_pool"`
	TotalReservePool   int64               `json:"total_reserve_pool"`
	TotalReleased      int64               `json:"total_released"`
	CurrentMilestone   int                 `json:"current_milestone"`
	Status             string              `json:"status"`
	PlatformFeeBps     int64               `json:"platform_fee_bps"`
	FunderCount        int                 `json:"funder_count"`
	Milestones         []MilestoneResponse `json:"milestones"`
}

type TransferResponse struct {
	CampaignID  string `json:"campaign_id"`
	RecipientID string `json:"recipient_id"`
	Amount      int64  `json:"amount"`
	Reason      string `json:"reason"`
	SentAt      string `json:"sent_at"`
}

type FunderResponse struct {
	FunderID          string `json:"funder_id"`
	TotalContribution int64  `json:"total_contribution"`
	Committed         int64  `json:"committed"`
	Reserve           int64  `json:"reserve"`
	RiskProfile       string `json:"risk_profile"`
	VoteWeight        int64  `json:"vote_weight"`
	MissedVotes       int    `json:"missed_votes"`
	Delinquent        bool   `json:"delinquent"`
	RefundClaimed     bool   `json:"refund_claimed"`
	PendingRefund     int64  `json:"pending_refund"`
	RefundableNow     bool   `json:"refundable_now"`
}
