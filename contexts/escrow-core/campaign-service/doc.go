// Package campaignservice implements the milestone-gated escrow core inside
// the escrow-core context.
//
// The module owns the campaign ledger (per-funder committed/reserve
// accounting), the sequential milestone state machine, whale-capped vote
// tallying with delinquency auto-resolution, and the settlement math for
// founder releases and funder refunds. Business rules live in the
// application/domain layers; infrastructure stays behind ports and adapters.
package campaignservice
