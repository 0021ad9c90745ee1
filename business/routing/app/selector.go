package app

import (
	"context"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/nftlaunchme/rooswap-router/business/routing/domain"
	"github.com/nftlaunchme/rooswap-router/internal/apperror"
	"github.com/nftlaunchme/rooswap-router/internal/logger"
)

// SelectorConfig tunes route validation and selection.
type SelectorConfig struct {
	MaxImpactPct    decimal.Decimal
	MinOutputUSD    decimal.Decimal
	MinLiquidityUSD decimal.Decimal
}

// PriceContext carries the USD and gas pricing the selector needs. Zero
// USD prices mean unknown; USD-denominated validations are skipped for
// unpriced tokens rather than rejecting the route.
type PriceContext struct {
	TokenInUSD  decimal.Decimal
	TokenOutUSD decimal.Decimal
	NativeUSD   decimal.Decimal
	GasPriceWei *big.Int
}

// Selector validates candidate routes and picks the winner between the
// best on-chain route and the aggregator by net-of-gas output. Ties go to
// the on-chain route.
type Selector struct {
	cfg SelectorConfig
	log logger.LoggerInterface
}

func NewSelector(cfg SelectorConfig, log logger.LoggerInterface) *Selector {
	return &Selector{cfg: cfg, log: log}
}

// Select returns the best valid route or CodeNoValidRoutes.
func (s *Selector) Select(
	ctx context.Context,
	req domain.QuoteRequest,
	onchain []*domain.DexQuote,
	agg *domain.AggregatorQuote,
	px PriceContext,
) (*domain.Quote, error) {
	bestOnchain := s.bestValidOnchain(ctx, req, onchain, px)

	var aggQuote *domain.Quote
	if agg != nil {
		aggQuote = s.validateAggregator(ctx, req, agg, px)
	}

	switch {
	case bestOnchain == nil && aggQuote == nil:
		return nil, apperror.New(apperror.CodeNoValidRoutes)
	case bestOnchain == nil:
		return aggQuote, nil
	case aggQuote == nil:
		return bestOnchain, nil
	}

	// Aggregator must strictly beat the on-chain route after gas.
	if s.netOutputUSD(aggQuote).GreaterThan(s.netOutputUSD(bestOnchain)) {
		return aggQuote, nil
	}
	return bestOnchain, nil
}

func (s *Selector) bestValidOnchain(
	ctx context.Context,
	req domain.QuoteRequest,
	quotes []*domain.DexQuote,
	px PriceContext,
) *domain.Quote {
	var best *domain.DexQuote
	for _, q := range quotes {
		if !s.validate(ctx, req, q.PriceImpact, q.AmountOut, px) {
			continue
		}
		if best == nil || q.EffectiveOutput.Cmp(best.EffectiveOutput) > 0 {
			best = q
		}
	}
	if best == nil {
		return nil
	}
	return s.normalizeOnchain(req, best, px)
}

// validate applies the acceptance rules shared by on-chain and aggregator
// routes.
func (s *Selector) validate(
	ctx context.Context,
	req domain.QuoteRequest,
	impact decimal.Decimal,
	amountOut *big.Int,
	px PriceContext,
) bool {
	if amountOut == nil || amountOut.Sign() == 0 {
		return false
	}
	if impact.GreaterThan(s.cfg.MaxImpactPct) {
		s.log.Debug(ctx, "route rejected: impact above ceiling", "impact", impact.String())
		return false
	}

	inUSD := usdValue(req.AmountIn, req.TokenIn.Decimals(), px.TokenInUSD)
	outUSD := usdValue(amountOut, req.TokenOut.Decimals(), px.TokenOutUSD)

	// USD validations run only when both legs are priced.
	if inUSD.IsZero() || outUSD.IsZero() {
		return true
	}

	if outUSD.LessThan(s.cfg.MinOutputUSD) {
		s.log.Debug(ctx, "route rejected: dust output", "outUSD", outUSD.String())
		return false
	}

	liquidity := domain.ImpliedLiquidityUSD(inUSD, outUSD)
	if liquidity.LessThan(s.cfg.MinLiquidityUSD) {
		s.log.Debug(ctx, "route rejected: implied liquidity too low",
			"liquidityUSD", liquidity.String())
		return false
	}

	return true
}

func (s *Selector) normalizeOnchain(req domain.QuoteRequest, q *domain.DexQuote, px PriceContext) *domain.Quote {
	source := q.DexName
	route := s.routeHops(req, q)

	return &domain.Quote{
		Source:       source,
		InAmount:     req.AmountIn,
		OutAmount:    q.AmountOut,
		Price:        wholeUnitPrice(req, q.AmountOut),
		PriceImpact:  q.PriceImpact,
		GasPriceWei:  px.GasPriceWei,
		EstimatedGas: q.GasEstimate,
		GasUSD:       gasUSD(px, q.GasEstimate),
		AmountInUSD:  usdValue(req.AmountIn, req.TokenIn.Decimals(), px.TokenInUSD),
		AmountOutUSD: usdValue(q.AmountOut, req.TokenOut.Decimals(), px.TokenOutUSD),
		Router:       q.Router,
		Route:        route,
		Splits:       q.Splits,
		Timestamp:    q.Timestamp,
	}
}

func (s *Selector) validateAggregator(
	ctx context.Context,
	req domain.QuoteRequest,
	agg *domain.AggregatorQuote,
	px PriceContext,
) *domain.Quote {
	// The aggregator reports its own USD prices; prefer them when present.
	aggPx := px
	if !agg.InTokenUSD.IsZero() {
		aggPx.TokenInUSD = agg.InTokenUSD
	}
	if !agg.OutTokenUSD.IsZero() {
		aggPx.TokenOutUSD = agg.OutTokenUSD
	}

	if !s.validate(ctx, req, agg.PriceImpact, agg.OutAmount, aggPx) {
		return nil
	}

	return &domain.Quote{
		Source:       domain.SourceAggregator,
		InAmount:     req.AmountIn,
		OutAmount:    agg.OutAmount,
		Price:        wholeUnitPrice(req, agg.OutAmount),
		PriceImpact:  agg.PriceImpact,
		GasPriceWei:  px.GasPriceWei,
		EstimatedGas: agg.EstimatedGas,
		GasUSD:       gasUSD(aggPx, agg.EstimatedGas),
		AmountInUSD:  usdValue(req.AmountIn, req.TokenIn.Decimals(), aggPx.TokenInUSD),
		AmountOutUSD: usdValue(agg.OutAmount, req.TokenOut.Decimals(), aggPx.TokenOutUSD),
		Route:        agg.Route,
		Timestamp:    agg.Timestamp,
	}
}

// netOutputUSD is the comparison metric between sources: output value
// minus gas. Unpriced quotes compare at zero and lose against priced ones.
func (s *Selector) netOutputUSD(q *domain.Quote) decimal.Decimal {
	return q.AmountOutUSD.Sub(q.GasUSD)
}

func (s *Selector) routeHops(req domain.QuoteRequest, q *domain.DexQuote) []domain.RouteHop {
	if q.IsSplit() {
		hops := make([]domain.RouteHop, len(q.Splits))
		for i, leg := range q.Splits {
			hops[i] = domain.RouteHop{
				DexName:  leg.DexName,
				TokenIn:  req.TokenIn.Address().Hex(),
				TokenOut: req.TokenOut.Address().Hex(),
				Percent:  leg.Percent,
				FeeTier:  leg.FeeTier,
			}
		}
		return hops
	}

	return []domain.RouteHop{{
		DexName:  q.DexName,
		TokenIn:  req.TokenIn.Address().Hex(),
		TokenOut: req.TokenOut.Address().Hex(),
		Percent:  100,
		FeeTier:  q.FeeTier,
	}}
}

func usdValue(amount *big.Int, decimals uint8, price decimal.Decimal) decimal.Decimal {
	if amount == nil || price.IsZero() {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(amount, -int32(decimals)).Mul(price)
}

func gasUSD(px PriceContext, gasLimit uint64) decimal.Decimal {
	if px.GasPriceWei == nil || px.NativeUSD.IsZero() || gasLimit == 0 {
		return decimal.Zero
	}
	totalWei := new(big.Int).Mul(px.GasPriceWei, new(big.Int).SetUint64(gasLimit))
	return decimal.NewFromBigInt(totalWei, -18).Mul(px.NativeUSD)
}

func wholeUnitPrice(req domain.QuoteRequest, amountOut *big.Int) decimal.Decimal {
	inDec := decimal.NewFromBigInt(req.AmountIn, -int32(req.TokenIn.Decimals()))
	if inDec.IsZero() {
		return decimal.Zero
	}
	outDec := decimal.NewFromBigInt(amountOut, -int32(req.TokenOut.Decimals()))
	return outDec.Div(inDec)
}
