package models

import (
	"math/big"

	"fc-pro-backend/internal/platform/chain"
)

const (
	// ProTierID is the only tier sold through the mini app.
	ProTierID = 1
	// ProDurationDays is the fixed subscription length per purchase.
	ProDurationDays = 30
	// ExtraFeeUnits is the fixed service fee: 0.5 token units at 6 decimals.
	ExtraFeeUnits = 500_000
)

// Snapshot is an immutable per-fetch view of the pro tier's pricing.
// It is re-derived whenever any underlying read refreshes.
type Snapshot struct {
	Tier     *chain.TierInfo `json:"tier"`
	Decimals uint8           `json:"decimals"`
	// Quote is the registry price for (ProTierID, ProDurationDays), smallest units.
	Quote *big.Int `json:"quote"`
	// TotalCost is Quote plus ExtraFeeUnits, smallest units.
	TotalCost *big.Int `json:"total_cost"`
}

// Loaded reports whether the snapshot carries everything the purchase gate needs.
func (s *Snapshot) Loaded() bool {
	return s != nil && s.Tier != nil && s.Quote != nil && s.Quote.Sign() > 0 && s.TotalCost != nil
}
