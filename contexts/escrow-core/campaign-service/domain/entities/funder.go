package entities

import "time"

type RiskProfile string

const (
	RiskProfileConservative RiskProfile = "conservative"
	RiskProfileBalanced     RiskProfile = "balanced"
	RiskProfileAggressive   RiskProfile = "aggressive"
)

// CommittedBps maps a risk profile to the committed fraction of each
// contribution; the remainder is reserve. The profile locks in on the
// identity's first contribution.
func (p RiskProfile) CommittedBps() (int64, bool) {
	switch p {
	case RiskProfileConservative:
		return 5000, true
	case RiskProfileBalanced:
		return 7000, true
	case RiskProfileAggressive:
		return 9000, true
	default:
		return 0, false
	}
}

// SplitContribution floors the committed slice and assigns the remainder to
// reserve so the two always sum exactly to the contributed amount.
func SplitContribution(amount int64, committedBps int64) (int64, int64) {
	committed := amount * committedBps / BasisPointDenominator
	return committed, amount - committed
}

// Funder is the per-identity ledger record inside a campaign. Records are
// created on first contribution and logically closed, never deleted, once a
// refund is claimed.
type Funder struct {
	FunderID           string
	TotalContribution  int64
	Committed          int64
	Reserve            int64
	Profile            RiskProfile
	VotedMilestones    [MilestoneCount]bool
	MissedVotes        int
	Delinquent         bool
	RefundClaimed      bool
	FirstContributedAt time.Time
}
