package entities

import "time"

type MilestoneStatus string

const (
	MilestoneStatusPending   MilestoneStatus = "pending"
	MilestoneStatusVoting    MilestoneStatus = "voting"
	MilestoneStatusApproved  MilestoneStatus = "approved"
	MilestoneStatusRejected  MilestoneStatus = "rejected"
	MilestoneStatusCompleted MilestoneStatus = "completed"
)

// Milestone is one slot of the fixed release schedule. DeadlineAt is absolute,
// resolved from the relative plan at construction. The vote accumulators are
// reset each time a voting window opens.
type Milestone struct {
	Description    string
	ReleaseBps     int64
	DeadlineAt     time.Time
	Status         MilestoneStatus
	VotingDeadline time.Time
	YesWeight      int64
	NoWeight       int64
	TotalWeight    int64
	EvidenceRef    string
	Rejections     int
	SubmittedAt    time.Time
}

// MilestonePlan is the construction-time shape of one milestone: release
// fraction in basis points and a deadline relative to campaign creation.
type MilestonePlan struct {
	Description  string
	ReleaseBps   int64
	DeadlineDays int
}

// ValidMilestonePlans checks exactly five slots, positive strictly increasing
// deadlines, and release fractions summing to exactly 10000.
func ValidMilestonePlans(plans []MilestonePlan) bool {
	if len(plans) != MilestoneCount {
		return false
	}
	sum := int64(0)
	lastDeadline := 0
	for _, plan := range plans {
		if plan.ReleaseBps <= 0 || plan.DeadlineDays <= lastDeadline {
			return false
		}
		sum += plan.ReleaseBps
		lastDeadline = plan.DeadlineDays
	}
	return sum == BasisPointDenominator
}
