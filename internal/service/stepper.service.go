package service

import (
	"math"

	"levsim/internal/domain"
)

// Aave compounds per second from APR inputs, so one daily step applies 86400
// compoundings at apr/31536000.
const (
	secondsPerDay  = 86400
	secondsPerYear = 31536000
)

// liquidationEpsilon pads the health-factor breach check by one ulp of 1.0 so
// a position sitting exactly on the threshold counts as breached.
var liquidationEpsilon = math.Nextafter(1, 2) - 1

// StepperState is the run state of a daily stepper.
type StepperState int

const (
	StateRunning StepperState = iota
	StateLiquidated
	StateComplete
)

// Stepper advances a set of simulation legs one aligned day at a time,
// compounding interest and staking yield, accumulating per-leg return samples
// and emitting one snapshot per day. Steps are processed strictly in
// increasing index order.
type Stepper struct {
	longs  []*Leg
	shorts []*Leg

	steps     int
	nextIndex int
	state     StepperState
	snapshots []domain.Snapshot
}

func NewStepper(longs, shorts []*Leg, steps int) *Stepper {
	return &Stepper{
		longs:     longs,
		shorts:    shorts,
		steps:     steps,
		state:     StateRunning,
		snapshots: []domain.Snapshot{},
	}
}

func (s *Stepper) State() StepperState {
	return s.state
}

func (s *Stepper) Snapshots() []domain.Snapshot {
	return s.snapshots
}

// FinalTimestamp is the timestamp of the last processed step.
func (s *Stepper) FinalTimestamp() int64 {
	if len(s.snapshots) == 0 {
		return 0
	}
	return s.snapshots[len(s.snapshots)-1].Timestamp
}

// advance compounds one day of interest into the leg and returns its USD
// value at that day's price.
func (l *Leg) advance(i int) (float64, error) {
	if i >= len(l.Prices) {
		return 0, StepError{Index: i, Symbol: l.Symbol, Reason: "missing price sample"}
	}
	if i >= len(l.Rates) {
		return 0, StepError{Index: i, Symbol: l.Symbol, Reason: "missing rate sample"}
	}

	rate := l.Rates[i].SupplyRate
	if l.Short {
		rate = l.Rates[i].BorrowRate
	}
	l.Units *= math.Pow(1+rate/secondsPerYear, secondsPerDay)

	// staking rewards accrue on collateral only, approximated as one daily
	// compounding of the configured APR
	if !l.Short && l.StakingAPR != 0 {
		l.Units *= 1 + l.StakingAPR/365
	}

	price := l.Prices[i].Price
	value := l.Units * price

	previous := l.prevUnits * l.prevPrice
	ret := 0.0
	if previous != 0 {
		ret = value/previous - 1
	}
	if l.Short {
		ret = -ret
	}
	l.Returns = append(l.Returns, ret)

	l.prevUnits = l.Units
	l.prevPrice = price

	return value, nil
}

// Step processes the next aligned index: every leg compounds and is revalued,
// a snapshot is recorded, and the liquidation condition
//
//	sum(value_i * threshold_i) / shortTotal < 1 + epsilon
//
// is evaluated. A breach halts the run with this step's timestamp as the
// final timestamp; zero debt means no liquidation risk by construction.
func (s *Stepper) Step() (StepperState, error) {
	if s.state != StateRunning {
		return s.state, nil
	}
	i := s.nextIndex

	longTotal := 0.0
	weightedThresholdSum := 0.0
	for _, leg := range s.longs {
		value, err := leg.advance(i)
		if err != nil {
			return s.state, err
		}
		longTotal += value
		weightedThresholdSum += value * leg.LiquidationThreshold
	}

	shortTotal := 0.0
	for _, leg := range s.shorts {
		value, err := leg.advance(i)
		if err != nil {
			return s.state, err
		}
		shortTotal += value
	}

	timestamp := s.timestampAt(i)
	s.snapshots = append(s.snapshots, domain.Snapshot{
		Timestamp:     timestamp,
		LongTotalUSD:  longTotal,
		ShortTotalUSD: shortTotal,
	})
	s.nextIndex++

	if shortTotal > 0 && weightedThresholdSum/shortTotal < 1+liquidationEpsilon {
		s.state = StateLiquidated
		return s.state, nil
	}

	if s.nextIndex >= s.steps {
		s.state = StateComplete
	}
	return s.state, nil
}

// Run drives the stepper to completion or liquidation.
func (s *Stepper) Run() (StepperState, error) {
	for s.state == StateRunning {
		if _, err := s.Step(); err != nil {
			return s.state, err
		}
	}
	return s.state, nil
}

// timestampAt reads the step's timestamp from the first leg carrying a sample
// at that index. Series are validated as aligned before the run starts, so
// any leg's series is authoritative.
func (s *Stepper) timestampAt(i int) int64 {
	for _, leg := range append(append([]*Leg{}, s.longs...), s.shorts...) {
		if i < len(leg.Rates) {
			return leg.Rates[i].Timestamp
		}
		if i < len(leg.Prices) {
			return leg.Prices[i].Timestamp
		}
	}
	return 0
}
