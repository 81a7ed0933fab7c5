package postgresadapter

import (
	"encoding/json"
	"strings"
	"time"

	"fundlock/contexts/escrow-core/campaign-service/domain/entities"
	"fundlock/contexts/escrow-core/campaign-service/ports"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

type campaignModel struct {
	ID                 string    `gorm:"column:id;primaryKey"`
	FounderID          string    `gorm:"column:founder_id"`
	Title              string    `gorm:"column:title"`
	Description        string    `gorm:"column:description"`
	FundingGoal        int64     `gorm:"column:funding_goal"`
	TotalRaised        int64     `gorm:"column:total_raised"`
	TotalCommittedPool int64     `gorm:"column:total_committed_pool"`
	TotalReservePool   int64     `gorm:"column:total_reserve_pool"`
	TotalReleased      int64     `gorm:"column:total_released"`
	CurrentMilestone   int       `gorm:"column:current_milestone"`
	Status             string    `gorm:"column:status"`
	PlatformFeeBps     int64     `gorm:"column:platform_fee_bps"`
	CreatedAt          time.Time `gorm:"column:created_at"`
}

func (campaignModel) TableName() string {
	return "escrow_campaigns"
}

func campaignModelFromEntity(campaign entities.Campaign) campaignModel {
	return campaignModel{
		ID:                 strings.TrimSpace(campaign.CampaignID),
		FounderID:          strings.TrimSpace(campaign.FounderID),
		Title:              campaign.Title,
		Description:        campaign.Description,
		FundingGoal:        campaign.FundingGoal,
		TotalRaised:        campaign.TotalRaised,
		TotalCommittedPool: campaign.TotalCommittedPool,
		TotalReservePool:   campaign.TotalReservePool,
		TotalReleased:      campaign.TotalReleased,
		CurrentMilestone:   campaign.CurrentMilestone,
		Status:             string(campaign.Status),
		PlatformFeeBps:     campaign.PlatformFeeBps,
		CreatedAt:          campaign.CreatedAt.UTC(),
	}
}

func (m campaignModel) toEntity() entities.Campaign {
	return entities.Campaign{
		CampaignID:         m.ID,
		FounderID:          m.FounderID,
		Title:              m.Title,
		Description:        m.Description,
		FundingGoal:        m.FundingGoal,
		TotalRaised:        m.TotalRaised,
		TotalCommittedPool: m.TotalCommittedPool,
		TotalReservePool:   m.TotalReservePool,
		TotalReleased:      m.TotalReleased,
		CurrentMilestone:   m.CurrentMilestone,
		Status:             entities.CampaignStatus(m.Status),
		PlatformFeeBps:     m.PlatformFeeBps,
		CreatedAt:          m.CreatedAt,
	}
}

type milestoneModel struct {
	CampaignID     string     `gorm:"column:campaign_id;primaryKey"`
	MilestoneIndex int        `gorm:"column:milestone_index;primaryKey"`
	Description    string     `gorm:"column:description"`
	ReleaseBps     int64      `gorm:"column:release_bps"`
	DeadlineAt     time.Time  `gorm:"column:deadline_at"`
	Status         string     `gorm:"column:status"`
	VotingDeadline *time.Time `gorm:"column:voting_deadline"`
	YesWeight      int64      `gorm:"column:yes_weight"`
	NoWeight       int64      `gorm:"column:no_weight"`
	TotalWeight    int64      `gorm:"column:total_weight"`
	EvidenceRef    string     `gorm:"column:evidence_ref"`
	Rejections     int        `gorm:"column:rejections"`
	SubmittedAt    *time.Time `gorm:"column:submitted_at"`
}

func (milestoneModel) TableName() string {
	return "escrow_milestones"
}

func milestoneModelFromEntity(campaignID string, index int, milestone entities.Milestone) milestoneModel {
	row := milestoneModel{
		CampaignID:     strings.TrimSpace(campaignID),
		MilestoneIndex: index,
		Description:    milestone.Description,
		ReleaseBps:     milestone.ReleaseBps,
		DeadlineAt:     milestone.DeadlineAt.UTC(),
		Status:         string(milestone.Status),
		YesWeight:      milestone.YesWeight,
		NoWeight:       milestone.NoWeight,
		TotalWeight:    milestone.TotalWeight,
		EvidenceRef:    milestone.EvidenceRef,
		Rejections:     milestone.Rejections,
	}
	if !milestone.VotingDeadline.IsZero() {
		deadline := milestone.VotingDeadline.UTC()
		row.VotingDeadline = &deadline
	}
	if !milestone.SubmittedAt.IsZero() {
		submitted := milestone.SubmittedAt.UTC()
		row.SubmittedAt = &submitted
	}
	return row
}

func (m milestoneModel) toEntity() entities.Milestone {
	milestone := entities.Milestone{
		Description: m.Description,
		ReleaseBps:  m.ReleaseBps,
		DeadlineAt:  m.DeadlineAt,
		Status:      entities.MilestoneStatus(m.Status),
		YesWeight:   m.YesWeight,
		NoWeight:    m.NoWeight,
		TotalWeight: m.TotalWeight,
		EvidenceRef: m.EvidenceRef,
		Rejections:  m.Rejections,
	}
	if m.VotingDeadline != nil {
		milestone.VotingDeadline = m.VotingDeadline.UTC()
	}
	if m.SubmittedAt != nil {
		milestone.SubmittedAt = m.SubmittedAt.UTC()
	}
	return milestone
}

type funderModel struct {
	CampaignID         string    `gorm:"column:campaign_id;primaryKey"`
	FunderID           string    `gorm:"column:funder_id;primaryKey"`
	RosterPosition     int       `gorm:"column:roster_position"`
	TotalContribution  int64     `gorm:"column:total_contribution"`
	Committed          int64     `gorm:"column:committed"`
	Reserve            int64     `gorm:"column:reserve"`
	RiskProfile        string    `gorm:"column:risk_profile"`
	VotedBitmap        string    `gorm:"column:voted_bitmap"`
	MissedVotes        int       `gorm:"column:missed_votes"`
	Delinquent         bool      `gorm:"column:delinquent"`
	RefundClaimed      bool      `gorm:"column:refund_claimed"`
	FirstContributedAt time.Time `gorm:"column:first_contributed_at"`
}

func (funderModel) TableName() string {
	return "escrow_funders"
}

func funderModelFromEntity(campaignID string, position int, funder entities.Funder) funderModel {
	bitmap, _ := json.Marshal(funder.VotedMilestones)
	return funderModel{
		CampaignID:         strings.TrimSpace(campaignID),
		FunderID:           strings.TrimSpace(funder.FunderID),
		RosterPosition:     position,
		TotalContribution:  funder.TotalContribution,
		Committed:          funder.Committed,
		Reserve:            funder.Reserve,
		RiskProfile:        string(funder.Profile),
		VotedBitmap:        string(bitmap),
		MissedVotes:        funder.MissedVotes,
		Delinquent:         funder.Delinquent,
		RefundClaimed:      funder.RefundClaimed,
		FirstContributedAt: funder.FirstContributedAt.UTC(),
	}
}

func (m funderModel) toEntity() entities.Funder {
	funder := entities.Funder{
		FunderID:           m.FunderID,
		TotalContribution:  m.TotalContribution,
		Committed:          m.Committed,
		Reserve:            m.Reserve,
		Profile:            entities.RiskProfile(m.RiskProfile),
		MissedVotes:        m.MissedVotes,
		Delinquent:         m.Delinquent,
		RefundClaimed:      m.RefundClaimed,
		FirstContributedAt: m.FirstContributedAt,
	}
	if m.VotedBitmap != "" {
		_ = json.Unmarshal([]byte(m.VotedBitmap), &funder.VotedMilestones)
	}
	return funder
}

type idempotencyModel struct {
	Key         string    `gorm:"column:key;primaryKey"`
	RequestHash string    `gorm:"column:request_hash"`
	CampaignID  string    `gorm:"column:campaign_id"`
	ExpiresAt   time.Time `gorm:"column:expires_at"`
}

func (idempotencyModel) TableName() string {
	return "escrow_idempotency_keys"
}

type outboxModel struct {
	ID           string     `gorm:"column:id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "escrow_outbox"
}

func marshalEnvelope(envelope ports.EventEnvelope) ([]byte, error) {
	return json.Marshal(envelope)
}
