package aavegateway_client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"levsim/internal/domain"

	"github.com/stretchr/testify/require"
)

func Test_GetReserves(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/markets-data", r.URL.Path)
		require.Equal(t, "0xprovider", r.URL.Query().Get("poolAddressesProvider"))
		require.Equal(t, "137", r.URL.Query().Get("chainId"))

		w.Write([]byte(`[
			{
				"symbol": "USDC",
				"underlyingAsset": "0xusdc",
				"baseLTVasCollateral": "0.77",
				"reserveLiquidationThreshold": "0.8",
				"reserveLiquidationBonus": "0.05",
				"liquidityRate": "0.031",
				"variableBorrowRate": "0.045"
			}
		]`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	market := domain.Market{Key: "polygonV3", ChainID: 137, PoolAddressesProvider: "0xprovider"}

	reserves, err := client.GetReserves(context.Background(), market)
	require.NoError(t, err)
	require.Len(t, reserves, 1)

	usdc := reserves["USDC"]
	require.Equal(t, "0xusdc", usdc.UnderlyingAsset)
	require.Equal(t, 0.77, usdc.BaseLTV)
	require.Equal(t, 0.8, usdc.LiquidationThreshold)
	require.Equal(t, 0.031, usdc.SupplyAPR)
	require.Equal(t, 0.045, usdc.VariableBorrowAPR)
}

func Test_GetReserves_BadDecimal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[{"symbol": "USDC", "baseLTVasCollateral": "not-a-number"}]`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL).GetReserves(context.Background(), domain.Market{Key: "polygonV3"})
	require.ErrorContains(t, err, "baseLTVasCollateral")
}

func Test_GetRateHistory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rates-history", r.URL.Path)
		require.Equal(t, "0xres", r.URL.Query().Get("reserveId"))
		require.Equal(t, "24", r.URL.Query().Get("resolutionInHours"))

		// the gateway reports zero-based months: month 0 is January
		w.Write([]byte(`[
			{"liquidityRate_avg": 0.02, "variableBorrowRate_avg": 0.04, "x": {"year": 2023, "month": 0, "date": 1, "hours": 0}},
			{"liquidityRate_avg": 0.021, "variableBorrowRate_avg": 0.041, "x": {"year": 2023, "month": 0, "date": 2, "hours": 0}}
		]`))
	}))
	defer server.Close()

	series, err := NewClient(server.URL).GetRateHistory(context.Background(), "0xres", 1672531200)
	require.NoError(t, err)
	require.Len(t, series, 2)

	require.Equal(t, int64(1672531200), series[0].Timestamp) // 2023-01-01 UTC
	require.Equal(t, 0.02, series[0].SupplyRate)
	require.Equal(t, 0.04, series[0].BorrowRate)
	require.Equal(t, int64(1672617600), series[1].Timestamp)
}

func Test_GetRateHistory_UpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(502)
		w.Write([]byte("bad gateway"))
	}))
	defer server.Close()

	_, err := NewClient(server.URL).GetRateHistory(context.Background(), "0xres", 1672531200)
	require.ErrorContains(t, err, "status code 502")
}
