package entities

import (
	"strings"
	"time"
)

type CampaignStatus string

const (
	CampaignStatusActive    CampaignStatus = "active"
	CampaignStatusCompleted CampaignStatus = "completed"
	CampaignStatusFailed    CampaignStatus = "failed"
	CampaignStatusCancelled CampaignStatus = "cancelled"
)

const (
	// BasisPointDenominator is the integer fraction base: 10000 == 100%.
	BasisPointDenominator int64 = 10000

	// MilestoneCount is fixed at construction; the release schedule is a
	// five-slot array, never a dynamic list.
	MilestoneCount = 5

	// WhaleCapBps caps any single voter's weight at 20% of total raised.
	WhaleCapBps int64 = 2000

	// ApprovalThresholdBps is the yes-share a milestone needs to pass.
	ApprovalThresholdBps int64 = 6000

	// MaxRejections makes the second rejection of a milestone terminal.
	MaxRejections = 2

	// VotingWindow is the fixed voting period opened on evidence submission.
	VotingWindow = 7 * 24 * time.Hour

	// DelinquencyThreshold is the consecutive-missed-vote count at which a
	// funder is credited as an implicit yes during resolution sweeps.
	DelinquencyThreshold = 2
)

// Campaign is the escrow aggregate: ledger totals, the fixed milestone
// schedule, and per-funder records keyed by identity plus an append-only
// roster preserving first-contribution order.
type Campaign struct {
	CampaignID         string
	FounderID          string
	Title              string
	Description        string
	FundingGoal        int64
	TotalRaised        int64
	TotalCommittedPool int64
	TotalReservePool   int64
	TotalReleased      int64
	CurrentMilestone   int
	Status             CampaignStatus
	PlatformFeeBps     int64
	CreatedAt          time.Time
	Milestones         [MilestoneCount]Milestone
	Funders            map[string]Funder
	Roster             []string
}

// Clone deep-copies the aggregate so commands can stage mutations and discard
// them wholesale when an external transfer fails.
func (c Campaign) Clone() Campaign {
	out := c
	out.Funders = make(map[string]Funder, len(c.Funders))
	for id, funder := range c.Funders {
		out.Funders[id] = funder
	}
	out.Roster = append([]string(nil), c.Roster...)
	return out
}

func (c Campaign) IsActive() bool {
	return c.Status == CampaignStatusActive
}

func (c Campaign) IsFounder(callerID string) bool {
	return strings.EqualFold(strings.TrimSpace(callerID), strings.TrimSpace(c.FounderID))
}

// VoteWeight is the funder's live voting weight: raw contribution capped at
// WhaleCapBps of the current total raised. The cap tracks TotalRaised at call
// time, it is never frozen at contribution time.
func (c Campaign) VoteWeight(funder Funder) int64 {
	cap := c.TotalRaised * WhaleCapBps / BasisPointDenominator
	if funder.TotalContribution > cap {
		return cap
	}
	return funder.TotalContribution
}

// ReleaseAmount is the founder payout for one milestone, floored against the
// committed pool prevailing right now. Contributions arriving after a
// milestone resolves never enlarge earlier releases.
func (c Campaign) ReleaseAmount(index int) int64 {
	return c.TotalCommittedPool * c.Milestones[index].ReleaseBps / BasisPointDenominator
}

// RefundAmount is the fee-adjusted amount owed to one funder once the
// campaign can no longer complete: the committed slice not yet released
// through completed milestones, plus the full reserve slice.
func (c Campaign) RefundAmount(funder Funder) int64 {
	released := int64(0)
	for i := 0; i < c.CurrentMilestone; i++ {
		if c.Milestones[i].Status == MilestoneStatusCompleted {
			released += funder.Committed * c.Milestones[i].ReleaseBps / BasisPointDenominator
		}
	}
	unreleased := funder.Committed - released
	return (unreleased + funder.Reserve) * (BasisPointDenominator - c.PlatformFeeBps) / BasisPointDenominator
}

// ApprovalReached applies the 60% integer basis-point rule. Zero participating
// weight is never an approval.
func ApprovalReached(yesWeight int64, noWeight int64) bool {
	total := yesWeight + noWeight
	if total == 0 {
		return false
	}
	return yesWeight*BasisPointDenominator/total >= ApprovalThresholdBps
}
