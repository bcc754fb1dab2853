package domain

// AssetAllocation describes how much of the leveraged capital goes into one
// asset. Percentages are raw slider values (0-100); the engine normalizes each
// by dividing by 100, never by the sum across assets, so an omitted asset
// simply holds 0% of leveraged capital.
type AssetAllocation struct {
	SupplyPct  float64 `json:"supplyPct" yaml:"supplyPct"`
	BorrowPct  float64 `json:"borrowPct" yaml:"borrowPct"`
	StakingAPR float64 `json:"stakingApr" yaml:"stakingApr"`
}

type AllocationMap map[string]AssetAllocation

// ReserveInfo is the per-asset protocol metadata used by sizing and the
// liquidation check. All rates and ratios are decimals (0.05 = 5%).
type ReserveInfo struct {
	Symbol               string  `json:"symbol"`
	UnderlyingAsset      string  `json:"underlyingAsset"`
	BaseLTV              float64 `json:"baseLtv"`
	LiquidationThreshold float64 `json:"liquidationThreshold"`
	LiquidationBonus     float64 `json:"liquidationBonus"`
	SupplyAPR            float64 `json:"supplyApr"`
	VariableBorrowAPR    float64 `json:"variableBorrowApr"`
}

type ReserveMap map[string]ReserveInfo

type PricePoint struct {
	Timestamp int64   `json:"timestamp"`
	Price     float64 `json:"price"`
}

// PriceSeries is one entry per simulated day, index-aligned with every other
// series in the same simulation.
type PriceSeries []PricePoint

type RatePoint struct {
	Timestamp  int64   `json:"timestamp"`
	SupplyRate float64 `json:"supplyRate"`
	BorrowRate float64 `json:"borrowRate"`
}

type RateSeries []RatePoint

// MarketData bundles the aligned history inputs for one simulation run.
type MarketData struct {
	Prices map[string]PriceSeries
	Rates  map[string]RateSeries
}

// Snapshot is one time-indexed sample of aggregate long/short USD value.
type Snapshot struct {
	Timestamp     int64   `json:"timestamp" csv:"timestamp"`
	LongTotalUSD  float64 `json:"longTotalUsd" csv:"long_total_usd"`
	ShortTotalUSD float64 `json:"shortTotalUsd" csv:"short_total_usd"`
}

// SimulationResult is the terminal outcome of one run. SharpeRatio is set only
// when the position survived the whole series.
type SimulationResult struct {
	Liquidated     bool       `json:"liquidated"`
	FinalTimestamp int64      `json:"finalTimestamp"`
	Snapshots      []Snapshot `json:"snapshots"`
	SharpeRatio    *float64   `json:"sharpeRatio,omitempty"`
}
