package domain

import (
	"sort"
	"strconv"
)

// Market identifies one Aave v3 deployment.
type Market struct {
	Key                   string `json:"key"`
	Name                  string `json:"name"`
	ChainID               int    `json:"chainId"`
	PoolAddressesProvider string `json:"poolAddressesProvider"`
}

// ReserveID is the identifier the rates-history API expects for a reserve:
// asset address + pool addresses provider + chain id, concatenated.
func (m Market) ReserveID(assetAddress string) string {
	return assetAddress + m.PoolAddressesProvider + strconv.Itoa(m.ChainID)
}

// V3Markets is the hardcoded list of supported markets.
var V3Markets = map[string]Market{
	"ethereumV3":  {Key: "ethereumV3", Name: "Ethereum V3", ChainID: 1, PoolAddressesProvider: "0x2f39d218133AFaB8F2B819B1066c7E434Ad94E9e"},
	"arbitrumV3":  {Key: "arbitrumV3", Name: "Arbitrum V3", ChainID: 42161, PoolAddressesProvider: "0xa97684ead0e402dC232d5A977953DF7ECBaB3CDb"},
	"avalancheV3": {Key: "avalancheV3", Name: "Avalanche V3", ChainID: 43114, PoolAddressesProvider: "0xa97684ead0e402dC232d5A977953DF7ECBaB3CDb"},
	"fantomV3":    {Key: "fantomV3", Name: "Fantom V3", ChainID: 250, PoolAddressesProvider: "0xa97684ead0e402dC232d5A977953DF7ECBaB3CDb"},
	"harmonyV3":   {Key: "harmonyV3", Name: "Harmony V3", ChainID: 1666600000, PoolAddressesProvider: "0xa97684ead0e402dC232d5A977953DF7ECBaB3CDb"},
	"optimismV3":  {Key: "optimismV3", Name: "Optimism V3", ChainID: 10, PoolAddressesProvider: "0xa97684ead0e402dC232d5A977953DF7ECBaB3CDb"},
	"polygonV3":   {Key: "polygonV3", Name: "Polygon V3", ChainID: 137, PoolAddressesProvider: "0xa97684ead0e402dC232d5A977953DF7ECBaB3CDb"},
	"metisV3":     {Key: "metisV3", Name: "Metis V3", ChainID: 1088, PoolAddressesProvider: "0xB9FABbE1c05524a4FB2C32Ab5846243b5A28DD28"},
}

// ListMarkets returns the supported markets sorted by key.
func ListMarkets() []Market {
	out := []Market{}
	for _, m := range V3Markets {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Key < out[j].Key
	})
	return out
}
