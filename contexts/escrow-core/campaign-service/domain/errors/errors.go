package errors

import "errors"

var (
	ErrCampaignNotFound       = errors.New("campaign not found")
	ErrCampaignNotActive      = errors.New("campaign is not active")
	ErrCampaignNotRefundable  = errors.New("campaign is not in a refundable state")
	ErrNotFounder             = errors.New("caller is not the campaign founder")
	ErrNotFunder              = errors.New("caller is not a funder of this campaign")
	ErrInvalidCampaignInput   = errors.New("invalid campaign input")
	ErrInvalidAmount          = errors.New("contribution amount must be positive")
	ErrGoalExceeded           = errors.New("contribution would exceed the funding goal")
	ErrInvalidRiskProfile     = errors.New("unknown risk profile")
	ErrRiskProfileLocked      = errors.New("risk profile is immutable after first contribution")
	ErrWrongMilestone         = errors.New("milestone index does not match the campaign pointer")
	ErrMilestoneNotPending    = errors.New("milestone is not pending")
	ErrMilestoneNotVoting     = errors.New("milestone is not in voting")
	ErrVotingClosed           = errors.New("voting deadline has passed")
	ErrVotingStillOpen        = errors.New("voting deadline has not passed")
	ErrAlreadyVoted           = errors.New("funder already voted on this milestone")
	ErrRefundAlreadyClaimed   = errors.New("refund already claimed")
	ErrNothingToRefund        = errors.New("computed refund is zero")
	ErrCancelNotAllowed       = errors.New("campaign can no longer be cancelled")
	ErrTransferFailed         = errors.New("external transfer failed")
	ErrConflict               = errors.New("campaign state conflict")
	ErrIdempotencyKeyRequired = errors.New("idempotency key is required")
	ErrIdempotencyConflict    = errors.New("idempotency key conflict")
)
