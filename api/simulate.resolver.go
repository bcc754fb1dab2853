package api

import (
	"context"
	"errors"
	"time"

	"levsim/internal/app"
	"levsim/internal/domain"
	"levsim/internal/recorder"
	"levsim/internal/service"

	"github.com/gin-gonic/gin"
)

type AllocationInput struct {
	SupplyPct  float64 `json:"supplyPct"`
	BorrowPct  float64 `json:"borrowPct"`
	StakingAPR float64 `json:"stakingApr"`
}

type SimulateRequest struct {
	MarketKey         string                     `json:"marketKey"`
	InitialInvestment float64                    `json:"initialInvestment"`
	MaxLtv            float64                    `json:"maxLtv"`
	Leverage          float64                    `json:"leverage"`
	Allocations       map[string]AllocationInput `json:"allocations"`
	FromDate          string                     `json:"fromDate"` // 2006-01-02
	RiskFreeRate      float64                    `json:"riskFreeRate"`
	SwapFee           float64                    `json:"swapFee"`
}

type SimulateResponse struct {
	KeyHash        string            `json:"keyHash"`
	Liquidated     bool              `json:"liquidated"`
	FinalTimestamp int64             `json:"finalTimestamp"`
	SharpeRatio    *float64          `json:"sharpeRatio,omitempty"`
	Snapshots      []domain.Snapshot `json:"snapshots"`
}

func (r SimulateRequest) toAppRequest() (app.SimulationRequest, error) {
	fromDate, err := time.Parse(time.DateOnly, r.FromDate)
	if err != nil {
		return app.SimulationRequest{}, app.ValidationError{Reason: "invalid fromDate " + r.FromDate}
	}

	allocations := domain.AllocationMap{}
	for symbol, input := range r.Allocations {
		allocations[symbol] = domain.AssetAllocation{
			SupplyPct:  input.SupplyPct,
			BorrowPct:  input.BorrowPct,
			StakingAPR: input.StakingAPR,
		}
	}

	return app.SimulationRequest{
		MarketKey:         r.MarketKey,
		InitialInvestment: r.InitialInvestment,
		MaxLTV:            r.MaxLtv,
		Leverage:          r.Leverage,
		Allocations:       allocations,
		FromDate:          fromDate,
		RiskFreeRate:      r.RiskFreeRate,
		SwapFee:           r.SwapFee,
	}, nil
}

// runSimulation is the shared path behind the HTTP and websocket resolvers:
// assemble inputs, dispatch (deduplicated), record the outcome.
func (m ApiHandler) runSimulation(ctx context.Context, requestBody SimulateRequest) (string, *domain.SimulationResult, error) {
	appRequest, err := requestBody.toAppRequest()
	if err != nil {
		return "", nil, err
	}

	key, data, err := m.RequestService.Assemble(ctx, appRequest)
	if err != nil {
		return "", nil, err
	}
	hash := key.Hash()

	start := time.Now()
	result, err := m.DispatchService.RunOrDedupe(ctx, key, data)
	if err != nil {
		return hash, nil, err
	}

	record := &recorder.RunRecord{
		KeyHash:        hash,
		MarketKey:      key.MarketKey,
		Liquidated:     result.Liquidated,
		SharpeRatio:    result.SharpeRatio,
		Days:           len(result.Snapshots),
		FinalTimestamp: result.FinalTimestamp,
		DurationMs:     time.Since(start).Milliseconds(),
	}
	if err := m.Recorder.RecordRun(record); err != nil {
		m.Logger.Warnw("failed to record simulation run", "keyHash", hash, "error", err)
	}

	return hash, result, nil
}

func statusCodeForError(err error) int {
	var validationErr app.ValidationError
	var notFoundErr service.AssetNotFoundError
	if errors.As(err, &validationErr) || errors.As(err, &notFoundErr) {
		return 400
	}
	return 500
}

func (m ApiHandler) simulate(c *gin.Context) {
	var requestBody SimulateRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		returnErrorJsonCode(err, c, 400)
		return
	}

	hash, result, err := m.runSimulation(c.Request.Context(), requestBody)
	if err != nil {
		returnErrorJsonCode(err, c, statusCodeForError(err))
		return
	}

	c.JSON(200, SimulateResponse{
		KeyHash:        hash,
		Liquidated:     result.Liquidated,
		FinalTimestamp: result.FinalTimestamp,
		SharpeRatio:    result.SharpeRatio,
		Snapshots:      result.Snapshots,
	})
}
