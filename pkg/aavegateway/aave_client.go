package aavegateway_client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"levsim/internal/domain"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

// Client talks to the Aave data gateway (aave-api-v2 style endpoints) for
// reserve metadata and historical rates.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
		limiter:    rate.NewLimiter(rate.Limit(2), 4),
	}
}

func (c *Client) getBytes(ctx context.Context, url string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	response, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	responseBytes, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("received status code %d and failed to read body: %w", response.StatusCode, err)
	}
	if response.StatusCode != 200 {
		return nil, fmt.Errorf("failed with status code %d: %s", response.StatusCode, string(responseBytes))
	}

	return responseBytes, nil
}

type reservePayload struct {
	Symbol               string `json:"symbol"`
	UnderlyingAsset      string `json:"underlyingAsset"`
	BaseLTVasCollateral  string `json:"baseLTVasCollateral"`
	LiquidationThreshold string `json:"reserveLiquidationThreshold"`
	LiquidationBonus     string `json:"reserveLiquidationBonus"`
	LiquidityRate        string `json:"liquidityRate"`
	VariableBorrowRate   string `json:"variableBorrowRate"`
}

func parseDecimal(field, raw string) (float64, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s value %q: %w", field, raw, err)
	}
	return d.InexactFloat64(), nil
}

// GetReserves fetches the current reserve metadata snapshot for one market.
func (c *Client) GetReserves(ctx context.Context, market domain.Market) (domain.ReserveMap, error) {
	url := fmt.Sprintf("%s/markets-data?poolAddressesProvider=%s&chainId=%d", c.baseURL, market.PoolAddressesProvider, market.ChainID)
	responseBytes, err := c.getBytes(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to get reserves for %s: %w", market.Key, err)
	}

	payloads := []reservePayload{}
	if err := json.Unmarshal(responseBytes, &payloads); err != nil {
		return nil, fmt.Errorf("failed to parse reserves for %s: %w", market.Key, err)
	}

	reserves := domain.ReserveMap{}
	for _, p := range payloads {
		info := domain.ReserveInfo{
			Symbol:          p.Symbol,
			UnderlyingAsset: p.UnderlyingAsset,
		}
		fields := []struct {
			name string
			raw  string
			dst  *float64
		}{
			{"baseLTVasCollateral", p.BaseLTVasCollateral, &info.BaseLTV},
			{"reserveLiquidationThreshold", p.LiquidationThreshold, &info.LiquidationThreshold},
			{"reserveLiquidationBonus", p.LiquidationBonus, &info.LiquidationBonus},
			{"liquidityRate", p.LiquidityRate, &info.SupplyAPR},
			{"variableBorrowRate", p.VariableBorrowRate, &info.VariableBorrowAPR},
		}
		for _, f := range fields {
			value, err := parseDecimal(f.name, f.raw)
			if err != nil {
				return nil, err
			}
			*f.dst = value
		}
		reserves[p.Symbol] = info
	}

	return reserves, nil
}

type rateHistoryEntry struct {
	LiquidityRateAvg      float64 `json:"liquidityRate_avg"`
	VariableBorrowRateAvg float64 `json:"variableBorrowRate_avg"`
	UtilizationRateAvg    float64 `json:"utilizationRate_avg"`
	StableBorrowRateAvg   float64 `json:"stableBorrowRate_avg"`
	X                     struct {
		Year  int `json:"year"`
		Month int `json:"month"`
		Date  int `json:"date"`
		Hours int `json:"hours"`
	} `json:"x"`
}

// GetRateHistory returns daily-resolution rate samples for one reserve from
// the given unix timestamp to now, oldest first. The gateway timestamps use
// zero-based months.
func (c *Client) GetRateHistory(ctx context.Context, reserveID string, fromUnix int64) (domain.RateSeries, error) {
	url := fmt.Sprintf("%s/rates-history?reserveId=%s&from=%d&resolutionInHours=24", c.baseURL, reserveID, fromUnix)
	responseBytes, err := c.getBytes(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to get rate history: %w", err)
	}

	entries := []rateHistoryEntry{}
	if err := json.Unmarshal(responseBytes, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse rate history: %w", err)
	}

	series := domain.RateSeries{}
	for _, e := range entries {
		timestamp := time.Date(e.X.Year, time.Month(e.X.Month+1), e.X.Date, e.X.Hours, 0, 0, 0, time.UTC).Unix()
		series = append(series, domain.RatePoint{
			Timestamp:  timestamp,
			SupplyRate: e.LiquidityRateAvg,
			BorrowRate: e.VariableBorrowRateAvg,
		})
	}
	return series, nil
}
