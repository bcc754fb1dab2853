package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// SimulationKey is the full set of inputs for one run. Two keys with
// structurally equal contents identify the same cache entry regardless of
// identity, so the key carries everything the engine reads, including the
// reserve snapshot taken at request time.
type SimulationKey struct {
	MarketKey         string        `json:"marketKey"`
	InitialInvestment float64       `json:"initialInvestment"`
	MaxLTV            float64       `json:"maxLtv"`
	Leverage          float64       `json:"leverage"`
	Allocations       AllocationMap `json:"allocations"`
	Reserves          ReserveMap    `json:"reserves"`
	FromDate          int64         `json:"fromDate"`
	RiskFreeRate      float64       `json:"riskFreeRate"`
	SwapFee           float64       `json:"swapFee"`
}

// Hash returns a stable identifier for the key's contents. encoding/json
// emits map keys in sorted order, so structurally equal keys always produce
// the same digest.
func (k SimulationKey) Hash() string {
	bytes, err := json.Marshal(k)
	if err != nil {
		// the key is plain data; marshaling it cannot fail
		panic(err)
	}
	digest := sha256.Sum256(bytes)
	return hex.EncodeToString(digest[:])
}
