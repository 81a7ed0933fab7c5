// Package registryservice maintains the founder campaign index inside the
// escrow-core context.
//
// The module is pure bookkeeping: it consumes campaign creation events from
// the escrow service through a dedup-protected worker and serves the
// founder's ordered campaign list. It never mutates escrow state.
package registryservice
