package domain

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
)

func TestPriceImpactPct(t *testing.T) {
	// Spot: 1 unit in (1e18) yields 100 out. Trading 10 units should yield
	// 1000 at spot; actual 950 is a 5% impact.
	spotUnitIn := big.NewInt(1e18)
	spotOut := big.NewInt(100)
	amountIn := new(big.Int).Mul(big.NewInt(10), spotUnitIn)
	actualOut := big.NewInt(950)

	impact := PriceImpactPct(amountIn, spotUnitIn, spotOut, actualOut)

	if !impact.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("impact = %s, want 5", impact)
	}
}

func TestPriceImpactPctBetterThanSpot(t *testing.T) {
	spotUnitIn := big.NewInt(1e18)
	spotOut := big.NewInt(100)
	amountIn := new(big.Int).Mul(big.NewInt(10), spotUnitIn)

	impact := PriceImpactPct(amountIn, spotUnitIn, spotOut, big.NewInt(1001))
	if !impact.IsZero() {
		t.Fatalf("impact = %s, want 0 when actual beats spot", impact)
	}
}

func TestPriceImpactPctZeroSpot(t *testing.T) {
	impact := PriceImpactPct(big.NewInt(1000), big.NewInt(0), big.NewInt(0), big.NewInt(500))
	if !impact.IsZero() {
		t.Fatalf("impact = %s, want 0 for missing spot reference", impact)
	}
}

func TestGasCostInToken(t *testing.T) {
	// 0.01 native at $0.08 = $0.0008; output token at $1 with 6 decimals
	// gives 800 smallest units.
	gasWei := new(big.Int).Mul(big.NewInt(1e16), big.NewInt(1)) // 0.01 * 1e18

	got := GasCostInToken(gasWei, decimal.NewFromFloat(0.08), decimal.NewFromInt(1), 6)

	if got.Cmp(big.NewInt(800)) != 0 {
		t.Fatalf("got %s, want 800", got)
	}
}

func TestGasCostInTokenUnknownPrice(t *testing.T) {
	got := GasCostInToken(big.NewInt(1e18), decimal.NewFromFloat(0.08), decimal.Zero, 6)
	if got.Sign() != 0 {
		t.Fatalf("got %s, want 0 for unpriced token", got)
	}
}

func TestBlendedImpact(t *testing.T) {
	legs := []SplitLeg{
		{Percent: 60, Impact: decimal.NewFromInt(2)},
		{Percent: 40, Impact: decimal.NewFromInt(7)},
	}

	// 2*0.6 + 7*0.4 = 4
	got := BlendedImpact(legs)
	if !got.Equal(decimal.NewFromInt(4)) {
		t.Fatalf("blended = %s, want 4", got)
	}
}

func TestImprovesByBps(t *testing.T) {
	base := big.NewInt(1_000_000)

	// exactly +0.5%
	if !ImprovesByBps(big.NewInt(1_005_000), base, 50) {
		t.Error("1.005x should meet the 50 bps threshold")
	}
	if ImprovesByBps(big.NewInt(1_004_999), base, 50) {
		t.Error("just below 1.005x should fail the 50 bps threshold")
	}
	if !ImprovesByBps(big.NewInt(1_100_000), base, 50) {
		t.Error("1.1x should pass")
	}
}

func TestImpliedLiquidityUSD(t *testing.T) {
	// sqrt(100 * 100) * 100 = 10000
	got := ImpliedLiquidityUSD(decimal.NewFromInt(100), decimal.NewFromInt(100))
	if !got.Equal(decimal.NewFromInt(10000)) {
		t.Fatalf("got %s, want 10000", got)
	}

	// Unpriced legs yield zero
	if !ImpliedLiquidityUSD(decimal.Zero, decimal.NewFromInt(100)).IsZero() {
		t.Error("expected zero for unpriced input leg")
	}
}

func TestDexCanQuoteDirect(t *testing.T) {
	v2 := Dex{Name: "v2", Kind: KindV2}
	if v2.CanQuoteDirect() {
		t.Error("v2 without factory should not quote directly")
	}

	v3 := Dex{Name: "v3", Kind: KindV3}
	if v3.CanQuoteDirect() {
		t.Error("v3 without quoter should not quote directly")
	}
}
