package domain

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Market_ReserveID(t *testing.T) {
	market := V3Markets["polygonV3"]
	require.Equal(t,
		"0xdead0xa97684ead0e402dC232d5A977953DF7ECBaB3CDb137",
		market.ReserveID("0xdead"),
	)
}

func Test_ListMarkets(t *testing.T) {
	markets := ListMarkets()
	require.Len(t, markets, len(V3Markets))
	require.True(t, sort.SliceIsSorted(markets, func(i, j int) bool {
		return markets[i].Key < markets[j].Key
	}))
}
