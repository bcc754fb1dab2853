package coingecko_client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"levsim/internal/domain"

	"golang.org/x/time/rate"
)

// Client is a thin wrapper around the CoinGecko v3 REST API. The public API
// is aggressively rate limited, so every request passes through a token
// bucket.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewClient(baseURL string, requestsPerSec float64, burst int) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSec), burst),
	}
}

type Coin struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
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

// ListCoins returns the full id/symbol/name listing.
func (c *Client) ListCoins(ctx context.Context) ([]Coin, error) {
	responseBytes, err := c.getBytes(ctx, fmt.Sprintf("%s/coins/list", c.baseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to list coins: %w", err)
	}

	coins := []Coin{}
	if err := json.Unmarshal(responseBytes, &coins); err != nil {
		return nil, fmt.Errorf("failed to parse coin list: %w", err)
	}
	return coins, nil
}

type marketChartResponse struct {
	// [[timestampMs, price], ...]
	Prices [][]float64 `json:"prices"`
}

// GetMarketChart returns the daily price series for a coin over the trailing
// number of days, oldest first.
func (c *Client) GetMarketChart(ctx context.Context, coinID string, vsCurrency string, days int) (domain.PriceSeries, error) {
	url := fmt.Sprintf(
		"%s/coins/%s/market_chart?vs_currency=%s&days=%s&interval=daily",
		c.baseURL, coinID, vsCurrency, strconv.Itoa(days),
	)
	responseBytes, err := c.getBytes(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to get market chart for %s: %w", coinID, err)
	}

	chart := marketChartResponse{}
	if err := json.Unmarshal(responseBytes, &chart); err != nil {
		return nil, fmt.Errorf("failed to parse market chart for %s: %w", coinID, err)
	}

	series := domain.PriceSeries{}
	for _, pair := range chart.Prices {
		if len(pair) != 2 {
			continue
		}
		series = append(series, domain.PricePoint{
			Timestamp: int64(pair[0]) / 1000,
			Price:     pair[1],
		})
	}
	return series, nil
}
