package openocean

import (
	"encoding/json"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// envelope is the API's uniform response wrapper. code 200 means success;
// anything else is an application failure regardless of the HTTP status.
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type tokenData struct {
	Address  string          `json:"address"`
	Symbol   string          `json:"symbol"`
	Name     string          `json:"name"`
	Decimals uint8           `json:"decimals"`
	USD      decimal.Decimal `json:"usd"`
}

type quoteData struct {
	InToken      tokenData       `json:"inToken"`
	OutToken     tokenData       `json:"outToken"`
	InAmount     string          `json:"inAmount"`
	OutAmount    string          `json:"outAmount"`
	EstimatedGas json.Number     `json:"estimatedGas"`
	PriceImpact  string          `json:"price_impact"`
	Route        []hopData       `json:"route"`
	Save         decimal.Decimal `json:"save"`
}

// hopData is one route hop as the API reports it.
type hopData struct {
	DexName             string `json:"dexName"`
	TokenIn             string `json:"tokenIn"`
	TokenOut            string `json:"tokenOut"`
	Percent             int    `json:"percent"`
	FeeTier             int64  `json:"feeTier"`
	HasFeeOnTransfer    bool   `json:"hasFeeOnTransfer"`
	FeeOnTransferAmount string `json:"feeOnTransferAmount"`
}

type gasPriceData struct {
	Standard json.Number `json:"standard"`
	Fast     json.Number `json:"fast"`
	Instant  json.Number `json:"instant"`
}

type swapData struct {
	To           string      `json:"to"`
	Data         string      `json:"data"`
	Value        string      `json:"value"`
	EstimatedGas json.Number `json:"estimatedGas"`
	MinOutAmount string      `json:"minOutAmount"`
}

type balanceData struct {
	TokenAddress string `json:"tokenAddress"`
	Symbol       string `json:"symbol"`
	Raw          string `json:"raw"`
}

// parseBigInt reads a decimal integer string, empty as zero.
func parseBigInt(s string) (*big.Int, bool) {
	if s == "" {
		return big.NewInt(0), true
	}
	return new(big.Int).SetString(s, 10)
}

// parsePercent reads impact strings like "1.25%" into a decimal percent.
func parsePercent(s string) decimal.Decimal {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
