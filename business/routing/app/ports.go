// Package app contains application services and port definitions for the
// routing context.
package app

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/nftlaunchme/rooswap-router/business/routing/domain"
	"github.com/nftlaunchme/rooswap-router/internal/asset"
)

// DexQuoter quotes a single venue on-chain.
type DexQuoter interface {
	// QuoteExactIn returns the full-amount output and a one-unit spot
	// reference for the request on the given venue.
	QuoteExactIn(ctx context.Context, dex domain.Dex, req domain.QuoteRequest) (*domain.RawQuote, error)
}

// AggregatorClient talks to an off-chain aggregation API. Quote and
// SwapQuote return nil results on upstream failure so the caller can
// degrade to on-chain routes.
type AggregatorClient interface {
	Quote(ctx context.Context, req domain.QuoteRequest) (*domain.AggregatorQuote, error)
	GasPrice(ctx context.Context) (*big.Int, error)
	SwapQuote(ctx context.Context, req domain.QuoteRequest, account common.Address) (*domain.AggregatorSwap, error)
	TokenList(ctx context.Context) ([]domain.TokenInfo, error)
	Balances(ctx context.Context, account common.Address, tokens []common.Address) ([]domain.TokenBalance, error)
	// CancelPending aborts any in-flight quote superseded by a newer one.
	CancelPending()
}

// GasOracle provides the current chain gas price in wei.
type GasOracle interface {
	GasPriceWei(ctx context.Context) (*big.Int, error)
}

// PriceOracle provides USD prices for the native coin and tokens. A zero
// price means unknown; callers degrade rather than fail.
type PriceOracle interface {
	NativeUSD(ctx context.Context) (decimal.Decimal, error)
	TokenUSD(ctx context.Context, token *asset.Asset) (decimal.Decimal, error)
}

// SwapEncoder builds router calldata for direct venue swaps.
type SwapEncoder interface {
	EncodeV2Swap(req V2SwapParams) ([]byte, error)
	EncodeV3Swap(req V3SwapParams) ([]byte, error)
}

// V2SwapParams parameterizes a v2 router swap.
type V2SwapParams struct {
	AmountIn     *big.Int
	AmountOutMin *big.Int
	Path         []common.Address
	Recipient    common.Address
	Deadline     *big.Int
	NativeIn     bool
	NativeOut    bool
}

// V3SwapParams parameterizes a v3 exact-input single-pool swap.
type V3SwapParams struct {
	TokenIn      common.Address
	TokenOut     common.Address
	FeeTier      int64
	AmountIn     *big.Int
	AmountOutMin *big.Int
	Recipient    common.Address
	Deadline     *big.Int
}
