package domain

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/nftlaunchme/rooswap-router/internal/asset"
)

// QuoteRequest asks for the best route from TokenIn to TokenOut. Tokens are
// always ERC20 here; native in/out is expressed through the wrapped native
// token with the flags set, and surfaces again at swap construction.
type QuoteRequest struct {
	TokenIn     *asset.Asset
	TokenOut    *asset.Asset
	AmountIn    *big.Int
	SlippageBps int64
	NativeIn    bool
	NativeOut   bool
}

// CacheKey identifies one venue quote for this request.
func (r QuoteRequest) CacheKey(dexName string) string {
	return fmt.Sprintf("%s|%s|%s|%s",
		dexName,
		r.TokenIn.Address().Hex(),
		r.TokenOut.Address().Hex(),
		r.AmountIn.String(),
	)
}

// RawQuote is the unevaluated on-chain quoting result for one venue: the
// full-amount output plus a one-unit reference used as the spot baseline.
type RawQuote struct {
	AmountOut  *big.Int
	SpotUnitIn *big.Int
	SpotOut    *big.Int
	FeeTier    int64
	Path       []common.Address
}

// DexQuote is an evaluated venue quote.
type DexQuote struct {
	DexName         string
	Router          common.Address
	AmountOut       *big.Int
	EffectiveOutput *big.Int
	GasCostOutUnits *big.Int
	GasEstimate     uint64
	PriceImpact     decimal.Decimal
	FeeTier         int64
	Path            []common.Address
	Splits          []SplitLeg
	Timestamp       time.Time
}

// IsSplit reports whether this quote routes across multiple venues.
func (q *DexQuote) IsSplit() bool {
	return len(q.Splits) > 0
}

// SplitLeg is one venue's share of a split route.
type SplitLeg struct {
	DexName   string
	Router    common.Address
	Percent   int
	AmountOut *big.Int
	Impact    decimal.Decimal
	FeeTier   int64
}

// DexError is a per-venue quoting failure. Failures are data, not control
// flow: one venue failing never aborts the fetch of the others.
type DexError struct {
	DexName string
	Code    string
	Message string
}

func (e *DexError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", e.DexName, e.Message, e.Code)
}

// SourceResult is the outcome of quoting one venue, exactly one of Quote
// and Err set.
type SourceResult struct {
	DexName string
	Quote   *DexQuote
	Err     *DexError
}

// RouteHop is one hop of a route in its serialized form. It marshals
// directly to the wire shape, so it is encoded exactly once.
type RouteHop struct {
	DexName             string `json:"dexName"`
	TokenIn             string `json:"tokenIn"`
	TokenOut            string `json:"tokenOut"`
	Percent             int    `json:"percent"`
	FeeTier             int64  `json:"feeTier,omitempty"`
	HasFeeOnTransfer    bool   `json:"hasFeeOnTransfer,omitempty"`
	FeeOnTransferAmount string `json:"feeOnTransferAmount,omitempty"`
}

// AggregatorQuote is a normalized aggregator API quote.
type AggregatorQuote struct {
	InAmount     *big.Int
	OutAmount    *big.Int
	EstimatedGas uint64
	PriceImpact  decimal.Decimal
	InTokenUSD   decimal.Decimal
	OutTokenUSD  decimal.Decimal
	Route        []RouteHop
	Timestamp    time.Time
}

// AggregatorSwap is executable call data returned by the aggregator.
type AggregatorSwap struct {
	To           common.Address
	Data         []byte
	Value        *big.Int
	EstimatedGas uint64
	MinOutAmount *big.Int
}

// TokenInfo is an entry of the aggregator's token list.
type TokenInfo struct {
	Address  common.Address
	Symbol   string
	Name     string
	Decimals uint8
	UsdPrice decimal.Decimal
}

// TokenBalance is one account balance reported by the aggregator.
type TokenBalance struct {
	Address common.Address
	Symbol  string
	Raw     *big.Int
}

// Quote is the selected best route in normalized form.
type Quote struct {
	Source       string
	InAmount     *big.Int
	OutAmount    *big.Int
	Price        decimal.Decimal
	PriceImpact  decimal.Decimal
	GasPriceWei  *big.Int
	EstimatedGas uint64
	GasUSD       decimal.Decimal
	AmountInUSD  decimal.Decimal
	AmountOutUSD decimal.Decimal
	Router       common.Address
	Route        []RouteHop
	Splits       []SplitLeg
	Timestamp    time.Time
}

// SourceAggregator marks quotes served by the aggregator API; any other
// Source value is a venue name or SourceSplit.
const (
	SourceAggregator = "openocean"
	SourceSplit      = "split"
)

// SwapTransaction is a ready-to-sign transaction skeleton.
type SwapTransaction struct {
	To           common.Address
	Data         []byte
	Value        *big.Int
	GasPrice     *big.Int
	GasLimit     uint64
	MinAmountOut *big.Int
	Deadline     *big.Int
}
