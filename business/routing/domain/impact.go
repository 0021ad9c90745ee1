package domain

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// PriceImpactPct computes the relative output shortfall against the spot
// baseline, in percent. The baseline is the output a trade of amountIn
// would produce at the marginal rate observed for spotUnitIn input:
//
//	expected = amountIn * spotOut / spotUnitIn
//	impact   = (expected - actual) / expected * 100
//
// A zero baseline yields zero impact; the caller rejects zero-output quotes
// separately.
func PriceImpactPct(amountIn, spotUnitIn, spotOut, actualOut *big.Int) decimal.Decimal {
	if spotUnitIn == nil || spotUnitIn.Sign() == 0 || spotOut == nil || spotOut.Sign() == 0 {
		return decimal.Zero
	}

	expected := new(big.Int).Mul(amountIn, spotOut)
	expected.Div(expected, spotUnitIn)
	if expected.Sign() == 0 {
		return decimal.Zero
	}

	diff := new(big.Int).Sub(expected, actualOut)
	if diff.Sign() < 0 {
		// Better than spot, no impact.
		return decimal.Zero
	}

	return decimal.NewFromBigInt(diff, 0).
		Div(decimal.NewFromBigInt(expected, 0)).
		Mul(decimal.NewFromInt(100))
}

// GasCostInToken converts a gas cost in wei into smallest units of the
// output token, going through USD. Native has 18 decimals. An unknown
// token price (zero) yields a zero cost so the quote stays usable.
func GasCostInToken(gasWei *big.Int, nativeUSD, tokenUSD decimal.Decimal, tokenDecimals uint8) *big.Int {
	if gasWei == nil || gasWei.Sign() == 0 || nativeUSD.IsZero() || tokenUSD.IsZero() {
		return big.NewInt(0)
	}

	gasNative := decimal.NewFromBigInt(gasWei, -18)
	gasUSD := gasNative.Mul(nativeUSD)

	tokens := gasUSD.Div(tokenUSD)
	return tokens.Shift(int32(tokenDecimals)).Truncate(0).BigInt()
}

// BlendedImpact is the input-share-weighted average of per-leg impacts.
// Each leg's Impact is already the impact experienced at the leg's size;
// weighting by the leg's input percent gives the whole trade's shortfall.
func BlendedImpact(legs []SplitLeg) decimal.Decimal {
	blended := decimal.Zero
	for _, leg := range legs {
		weight := decimal.NewFromInt(int64(leg.Percent)).Div(decimal.NewFromInt(100))
		blended = blended.Add(leg.Impact.Mul(weight))
	}
	return blended
}

// ImprovesByBps reports whether candidate exceeds baseline by at least
// bps basis points, in exact integer math:
//
//	candidate * 10000 >= baseline * (10000 + bps)
func ImprovesByBps(candidate, baseline *big.Int, bps int64) bool {
	if candidate == nil || baseline == nil {
		return false
	}

	lhs := new(big.Int).Mul(candidate, big.NewInt(10000))
	rhs := new(big.Int).Mul(baseline, big.NewInt(10000+bps))
	return lhs.Cmp(rhs) >= 0
}

// ImpliedLiquidityUSD estimates pool depth from trade legs in USD:
//
//	sqrt(amountInUSD * amountOutUSD) * 100
//
// computed exactly on micro-dollar integers.
func ImpliedLiquidityUSD(amountInUSD, amountOutUSD decimal.Decimal) decimal.Decimal {
	if amountInUSD.Sign() <= 0 || amountOutUSD.Sign() <= 0 {
		return decimal.Zero
	}

	inMicro := amountInUSD.Shift(6).Truncate(0).BigInt()
	outMicro := amountOutUSD.Shift(6).Truncate(0).BigInt()

	product := new(big.Int).Mul(inMicro, outMicro)
	root := new(big.Int).Sqrt(product)

	// root is in micro-dollars; scale by 100
	return decimal.NewFromBigInt(root, -6).Mul(decimal.NewFromInt(100))
}
