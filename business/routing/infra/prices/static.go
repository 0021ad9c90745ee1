// Package prices provides a constant-fallback price oracle. It knows the
// configured native price and pins well-known stablecoins to a dollar;
// everything else is unpriced and callers skip their USD checks.
package prices

import (
	"context"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/nftlaunchme/rooswap-router/business/routing/app"
	"github.com/nftlaunchme/rooswap-router/internal/asset"
)

// Ensure Static implements PriceOracle.
var _ app.PriceOracle = (*Static)(nil)

// Static resolves USD prices from configuration and symbol conventions.
type Static struct {
	nativeUSD     decimal.Decimal
	wrappedNative common.Address
	stableSymbols map[string]struct{}
}

// NewStatic creates an oracle with the given native price and wrapped
// native address.
func NewStatic(nativeUSD decimal.Decimal, wrappedNative common.Address) *Static {
	return &Static{
		nativeUSD:     nativeUSD,
		wrappedNative: wrappedNative,
		stableSymbols: map[string]struct{}{
			"USDC": {},
			"USDT": {},
			"DAI":  {},
			"BUSD": {},
		},
	}
}

// NativeUSD returns the configured native coin price.
func (s *Static) NativeUSD(context.Context) (decimal.Decimal, error) {
	return s.nativeUSD, nil
}

// TokenUSD returns the token's USD price, zero when unknown.
func (s *Static) TokenUSD(_ context.Context, token *asset.Asset) (decimal.Decimal, error) {
	if token == nil {
		return decimal.Zero, nil
	}

	if token.IsNative() ||
		token.Address() == s.wrappedNative ||
		asset.IsNativePlaceholder(token.Address()) {
		return s.nativeUSD, nil
	}

	if _, ok := s.stableSymbols[strings.ToUpper(token.Symbol())]; ok {
		return decimal.NewFromInt(1), nil
	}

	return decimal.Zero, nil
}
