package app

import (
	"context"
	"math/big"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nftlaunchme/rooswap-router/business/routing/domain"
	"github.com/nftlaunchme/rooswap-router/internal/apperror"
	"github.com/nftlaunchme/rooswap-router/internal/logger"
)

// Evaluator turns raw venue quotes into evaluated ones: it prices impact
// against the spot baseline, charges the venue's gas cost in output-token
// units, and rejects quotes that are unusable.
type Evaluator struct {
	quoter       DexQuoter
	gas          GasOracle
	prices       PriceOracle
	maxImpactPct decimal.Decimal
	log          logger.LoggerInterface
}

func NewEvaluator(
	quoter DexQuoter,
	gas GasOracle,
	prices PriceOracle,
	maxImpactPct decimal.Decimal,
	log logger.LoggerInterface,
) *Evaluator {
	return &Evaluator{
		quoter:       quoter,
		gas:          gas,
		prices:       prices,
		maxImpactPct: maxImpactPct,
		log:          log,
	}
}

// Evaluate quotes one venue and applies the acceptance rules.
func (e *Evaluator) Evaluate(ctx context.Context, dex domain.Dex, req domain.QuoteRequest) (*domain.DexQuote, error) {
	raw, err := e.quoter.QuoteExactIn(ctx, dex, req)
	if err != nil {
		return nil, err
	}

	if raw.AmountOut == nil || raw.AmountOut.Sign() == 0 {
		return nil, apperror.New(apperror.CodeInsufficientLiquidity,
			apperror.WithContext("venue returned zero output"))
	}

	impact := domain.PriceImpactPct(req.AmountIn, raw.SpotUnitIn, raw.SpotOut, raw.AmountOut)
	if impact.GreaterThan(e.maxImpactPct) {
		return nil, apperror.New(apperror.CodePriceImpactTooHigh,
			apperror.WithContext("impact "+impact.StringFixed(2)+"% on "+dex.Name))
	}

	gasCostOut := e.gasCostInOutputToken(ctx, dex, req)

	effective := new(big.Int).Sub(raw.AmountOut, gasCostOut)
	if effective.Sign() < 0 {
		return nil, apperror.New(apperror.CodeInvalidQuote,
			apperror.WithContext("gas cost exceeds output on "+dex.Name))
	}

	return &domain.DexQuote{
		DexName:         dex.Name,
		Router:          dex.Router,
		AmountOut:       raw.AmountOut,
		EffectiveOutput: effective,
		GasCostOutUnits: gasCostOut,
		GasEstimate:     dex.GasEstimate,
		PriceImpact:     impact,
		FeeTier:         raw.FeeTier,
		Path:            raw.Path,
		Timestamp:       time.Now(),
	}, nil
}

// gasCostInOutputToken prices the venue's estimated gas in output-token
// smallest units. Any missing input degrades to zero cost; a venue is
// never rejected because pricing data was unavailable.
func (e *Evaluator) gasCostInOutputToken(ctx context.Context, dex domain.Dex, req domain.QuoteRequest) *big.Int {
	gasPrice, err := e.gas.GasPriceWei(ctx)
	if err != nil {
		e.log.Warn(ctx, "gas price unavailable, quoting without gas cost",
			"dex", dex.Name, "error", err)
		return big.NewInt(0)
	}

	nativeUSD, err := e.prices.NativeUSD(ctx)
	if err != nil {
		e.log.Warn(ctx, "native price unavailable, quoting without gas cost", "error", err)
		return big.NewInt(0)
	}

	tokenUSD, err := e.prices.TokenUSD(ctx, req.TokenOut)
	if err != nil || tokenUSD.IsZero() {
		return big.NewInt(0)
	}

	totalWei := new(big.Int).Mul(gasPrice, new(big.Int).SetUint64(dex.GasEstimate))
	return domain.GasCostInToken(totalWei, nativeUSD, tokenUSD, req.TokenOut.Decimals())
}
