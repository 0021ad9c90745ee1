package app

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/nftlaunchme/rooswap-router/business/routing/domain"
)

func splitQuote(name string, amountOut int64, impact string) *domain.DexQuote {
	return &domain.DexQuote{
		DexName:         name,
		AmountOut:       big.NewInt(amountOut),
		EffectiveOutput: big.NewInt(amountOut),
		GasCostOutUnits: big.NewInt(0),
		PriceImpact:     decimal.RequireFromString(impact),
		GasEstimate:     150_000,
	}
}

func defaultSplitterConfig() SplitterConfig {
	return SplitterConfig{
		CandidateImpactPct: decimal.NewFromInt(10),
		MaxImpactPct:       decimal.NewFromInt(15),
		MinImprovementBps:  50,
	}
}

func TestOptimizeAcceptsImprovingSplit(t *testing.T) {
	// Two equal venues at 8% impact. Splitting 60/40 drops each leg's
	// impact below the full-size quote, so the combined output wins.
	quotes := []*domain.DexQuote{
		splitQuote("vvs", 920_000, "8"),
		splitQuote("mmf", 920_000, "8"),
	}

	got := NewSplitter(defaultSplitterConfig()).Optimize(quotes)

	if len(got) != 3 {
		t.Fatalf("len = %d, want 3 (split prepended)", len(got))
	}
	split := got[0]
	if split.DexName != domain.SourceSplit {
		t.Fatalf("got[0].DexName = %q, want %q", split.DexName, domain.SourceSplit)
	}
	// No-impact expected output per venue: 920000 / 0.92 = 1000000.
	// 60% leg: impact 8 * 0.60 = 4.8, out 1000000 * 0.6 * (1 - 0.048) = 571200
	// 40% leg: impact 8 * 0.40 = 3.2, out 1000000 * 0.4 * (1 - 0.032) = 387200
	if split.AmountOut.Cmp(big.NewInt(958_400)) != 0 {
		t.Errorf("AmountOut = %s, want 958400", split.AmountOut)
	}
	if len(split.Splits) != 2 || split.Splits[0].Percent != 60 || split.Splits[1].Percent != 40 {
		t.Fatalf("legs = %+v, want 60/40", split.Splits)
	}
	legWant := []struct {
		out    int64
		impact string
	}{
		{571_200, "4.8"},
		{387_200, "3.2"},
	}
	for i, want := range legWant {
		leg := split.Splits[i]
		if leg.AmountOut.Cmp(big.NewInt(want.out)) != 0 {
			t.Errorf("leg %d AmountOut = %s, want %d", i, leg.AmountOut, want.out)
		}
		if !leg.Impact.Equal(decimal.RequireFromString(want.impact)) {
			t.Errorf("leg %d Impact = %s, want %s", i, leg.Impact, want.impact)
		}
	}
	// Blended = 4.8*0.6 + 3.2*0.4, the input-share-weighted leg impact.
	if want := decimal.RequireFromString("4.16"); !split.PriceImpact.Equal(want) {
		t.Errorf("PriceImpact = %s, want %s", split.PriceImpact, want)
	}
}

func TestOptimizeRejectsInsufficientImprovement(t *testing.T) {
	// The second venue is too small for the split to beat the best
	// single route by the required margin.
	quotes := []*domain.DexQuote{
		splitQuote("vvs", 920_000, "8"),
		splitQuote("mmf", 500_000, "8"),
	}

	got := NewSplitter(defaultSplitterConfig()).Optimize(quotes)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2 (no split)", len(got))
	}
}

func TestOptimizeSkipsHighImpactCandidates(t *testing.T) {
	quotes := []*domain.DexQuote{
		splitQuote("vvs", 920_000, "8"),
		splitQuote("mmf", 920_000, "12"),
	}

	got := NewSplitter(defaultSplitterConfig()).Optimize(quotes)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2 (one candidate cannot split)", len(got))
	}
}

func TestOptimizeRejectsBlendedImpactAboveCeiling(t *testing.T) {
	cfg := defaultSplitterConfig()
	cfg.MaxImpactPct = decimal.NewFromInt(4)

	quotes := []*domain.DexQuote{
		splitQuote("vvs", 920_000, "8"),
		splitQuote("mmf", 920_000, "8"),
	}

	got := NewSplitter(cfg).Optimize(quotes)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2 (blended 4.16 over ceiling 4)", len(got))
	}
}

func TestOptimizeEmptyInput(t *testing.T) {
	if got := NewSplitter(defaultSplitterConfig()).Optimize(nil); got != nil {
		t.Fatalf("got %v, want nil", got)
	}
}

func TestOptimizeThreeWaySplit(t *testing.T) {
	quotes := []*domain.DexQuote{
		splitQuote("vvs", 920_000, "8"),
		splitQuote("mmf", 920_000, "8"),
		splitQuote("crona", 920_000, "8"),
	}

	got := NewSplitter(defaultSplitterConfig()).Optimize(quotes)

	var legCounts []int
	for _, q := range got {
		if q.IsSplit() {
			legCounts = append(legCounts, len(q.Splits))
		}
	}
	if len(legCounts) != 2 || legCounts[0] != 2 || legCounts[1] != 3 {
		t.Fatalf("split leg counts = %v, want [2 3]", legCounts)
	}
}
