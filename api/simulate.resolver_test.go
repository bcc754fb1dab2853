package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"levsim/internal/app"
	"levsim/internal/domain"
	"levsim/internal/recorder"
	"levsim/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubReserveRepository struct{}

func (stubReserveRepository) Get(_ context.Context, _ string) (domain.ReserveMap, error) {
	return domain.ReserveMap{
		"USDC": {Symbol: "USDC", UnderlyingAsset: "0xusdc", LiquidationThreshold: 0.85},
	}, nil
}

func (stubReserveRepository) Refresh(_ context.Context, _ string) error {
	return nil
}

type stubPriceRepository struct{}

func (stubPriceRepository) List(_ context.Context, symbol string, _ time.Time) (domain.PriceSeries, error) {
	if symbol != "USDC" {
		return nil, errors.New("no price series")
	}
	series := make(domain.PriceSeries, 5)
	for i := range series {
		series[i] = domain.PricePoint{Timestamp: 1672531200 + int64(i)*86400, Price: 1}
	}
	return series, nil
}

type stubRateRepository struct{}

func (stubRateRepository) List(_ context.Context, _ string, _ string, _ int64) (domain.RateSeries, error) {
	series := make(domain.RateSeries, 5)
	for i := range series {
		series[i] = domain.RatePoint{Timestamp: 1672531200 + int64(i)*86400, SupplyRate: 0.05}
	}
	return series, nil
}

func newTestHandler() ApiHandler {
	gin.SetMode(gin.TestMode)
	return ApiHandler{
		DispatchService: service.NewDispatchService(app.NewSimulationService(), service.NewMemoryResultCache(), 0),
		RequestService: app.RequestService{
			ReserveRepository:      stubReserveRepository{},
			PriceHistoryRepository: stubPriceRepository{},
			RateHistoryRepository:  stubRateRepository{},
		},
		ReserveRepository: stubReserveRepository{},
		Recorder:          recorder.NoopRecorder{},
		Logger:            zap.NewNop().Sugar(),
	}
}

func postSimulate(t *testing.T, router *gin.Engine, body SimulateRequest) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	request := httptest.NewRequest(http.MethodPost, "/simulate", bytes.NewReader(payload))
	request.Header.Set("Content-Type", "application/json")
	response := httptest.NewRecorder()
	router.ServeHTTP(response, request)
	return response
}

func validSimulateRequest() SimulateRequest {
	return SimulateRequest{
		MarketKey:         "ethereumV3",
		InitialInvestment: 1000,
		MaxLtv:            0.8,
		Leverage:          1,
		Allocations:       map[string]AllocationInput{"USDC": {SupplyPct: 100}},
		FromDate:          "2023-01-01",
		RiskFreeRate:      0.01,
	}
}

func Test_Simulate(t *testing.T) {
	t.Run("valid request returns the run outcome", func(t *testing.T) {
		router := newTestHandler().Router()

		response := postSimulate(t, router, validSimulateRequest())
		require.Equal(t, 200, response.Code)

		var body SimulateResponse
		require.NoError(t, json.Unmarshal(response.Body.Bytes(), &body))
		require.NotEmpty(t, body.KeyHash)
		require.False(t, body.Liquidated)
		require.Len(t, body.Snapshots, 5)
		require.NotNil(t, body.SharpeRatio)
	})

	t.Run("repeated request hits the cache with the same hash", func(t *testing.T) {
		handler := newTestHandler()
		router := handler.Router()

		first := postSimulate(t, router, validSimulateRequest())
		second := postSimulate(t, router, validSimulateRequest())
		require.Equal(t, 200, first.Code)
		require.Equal(t, 200, second.Code)

		var firstBody, secondBody SimulateResponse
		require.NoError(t, json.Unmarshal(first.Body.Bytes(), &firstBody))
		require.NoError(t, json.Unmarshal(second.Body.Bytes(), &secondBody))
		require.Equal(t, firstBody.KeyHash, secondBody.KeyHash)

		_, ok := handler.DispatchService.Cached(firstBody.KeyHash)
		require.True(t, ok)
	})

	t.Run("malformed body is a 400", func(t *testing.T) {
		router := newTestHandler().Router()

		request := httptest.NewRequest(http.MethodPost, "/simulate", bytes.NewReader([]byte("{not json")))
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)
		require.Equal(t, 400, response.Code)
	})

	t.Run("invalid fromDate is a 400", func(t *testing.T) {
		body := validSimulateRequest()
		body.FromDate = "01/01/2023"

		response := postSimulate(t, newTestHandler().Router(), body)
		require.Equal(t, 400, response.Code)
	})

	t.Run("unknown market is a 400", func(t *testing.T) {
		body := validSimulateRequest()
		body.MarketKey = "moonbaseAlpha"

		response := postSimulate(t, newTestHandler().Router(), body)
		require.Equal(t, 400, response.Code)
	})

	t.Run("eviction removes the cached run", func(t *testing.T) {
		handler := newTestHandler()
		router := handler.Router()

		response := postSimulate(t, router, validSimulateRequest())
		require.Equal(t, 200, response.Code)
		var body SimulateResponse
		require.NoError(t, json.Unmarshal(response.Body.Bytes(), &body))

		request := httptest.NewRequest(http.MethodDelete, "/simulations/"+body.KeyHash, nil)
		deleteResponse := httptest.NewRecorder()
		router.ServeHTTP(deleteResponse, request)
		require.Equal(t, 204, deleteResponse.Code)

		_, ok := handler.DispatchService.Cached(body.KeyHash)
		require.False(t, ok)
	})
}

func Test_ListMarkets(t *testing.T) {
	router := newTestHandler().Router()

	request := httptest.NewRequest(http.MethodGet, "/markets", nil)
	response := httptest.NewRecorder()
	router.ServeHTTP(response, request)
	require.Equal(t, 200, response.Code)

	var body struct {
		Markets []domain.Market `json:"markets"`
	}
	require.NoError(t, json.Unmarshal(response.Body.Bytes(), &body))
	require.Len(t, body.Markets, len(domain.V3Markets))
}

func Test_ListReserves(t *testing.T) {
	router := newTestHandler().Router()

	t.Run("known market returns its reserves", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/markets/ethereumV3/reserves", nil)
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)
		require.Equal(t, 200, response.Code)

		var body struct {
			Market   string            `json:"market"`
			Reserves domain.ReserveMap `json:"reserves"`
		}
		require.NoError(t, json.Unmarshal(response.Body.Bytes(), &body))
		require.Equal(t, "ethereumV3", body.Market)
		require.Contains(t, body.Reserves, "USDC")
	})

	t.Run("unknown market is a 404", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/markets/terraClassic/reserves", nil)
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)
		require.Equal(t, 404, response.Code)
	})
}
