package app

import (
	"math/big"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nftlaunchme/rooswap-router/business/routing/domain"
)

// splitPatterns are the input percentage allocations tried, best venue
// first.
var splitPatterns = [][]int{
	{60, 40},
	{50, 30, 20},
}

// SplitterConfig tunes split-route construction.
type SplitterConfig struct {
	// CandidateImpactPct is the per-venue impact ceiling for split legs.
	CandidateImpactPct decimal.Decimal
	// MaxImpactPct is the blended impact ceiling for an assembled split.
	MaxImpactPct decimal.Decimal
	// MinImprovementBps is how much a split must beat the best single
	// route to be worth the extra transactions.
	MinImprovementBps int64
}

// Splitter assembles multi-venue routes from single-venue quotes. A leg
// that takes pct% of the input sees roughly pct% of the venue's full-size
// impact, so each leg is projected from the venue's no-impact expected
// output with the impact rescaled to the leg size. Every leg still pays
// its venue's full gas cost, one transaction per leg.
type Splitter struct {
	cfg SplitterConfig
}

func NewSplitter(cfg SplitterConfig) *Splitter {
	return &Splitter{cfg: cfg}
}

// Optimize returns quotes with any accepted split routes prepended.
func (s *Splitter) Optimize(quotes []*domain.DexQuote) []*domain.DexQuote {
	best := bestEffective(quotes)
	if best == nil {
		return quotes
	}

	candidates := s.splitCandidates(quotes)

	var splits []*domain.DexQuote
	for _, pattern := range splitPatterns {
		if len(candidates) < len(pattern) {
			continue
		}
		if split := s.assemble(pattern, candidates, best); split != nil {
			splits = append(splits, split)
		}
	}

	if len(splits) == 0 {
		return quotes
	}
	return append(splits, quotes...)
}

// splitCandidates returns low-impact quotes sorted by effective output,
// best first.
func (s *Splitter) splitCandidates(quotes []*domain.DexQuote) []*domain.DexQuote {
	var candidates []*domain.DexQuote
	for _, q := range quotes {
		if q.PriceImpact.LessThan(s.cfg.CandidateImpactPct) {
			candidates = append(candidates, q)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].EffectiveOutput.Cmp(candidates[j].EffectiveOutput) > 0
	})
	return candidates
}

func (s *Splitter) assemble(pattern []int, candidates []*domain.DexQuote, best *domain.DexQuote) *domain.DexQuote {
	hundred := decimal.NewFromInt(100)

	legs := make([]domain.SplitLeg, len(pattern))
	totalOut := new(big.Int)
	totalEffective := new(big.Int)
	var totalGas uint64

	for i, pct := range pattern {
		c := candidates[i]
		pctDec := decimal.NewFromInt(int64(pct))

		// Back out the no-impact expected output, then re-apply the
		// impact scaled down to the leg's share of the input.
		impactFrac := c.PriceImpact.Div(hundred)
		if impactFrac.GreaterThanOrEqual(decimal.NewFromInt(1)) {
			return nil
		}
		expected := decimal.NewFromBigInt(c.AmountOut, 0).
			Div(decimal.NewFromInt(1).Sub(impactFrac))

		legImpact := c.PriceImpact.Mul(pctDec).Div(hundred)
		legOut := expected.Mul(pctDec).Div(hundred).
			Mul(decimal.NewFromInt(1).Sub(legImpact.Div(hundred))).
			Truncate(0).BigInt()

		legs[i] = domain.SplitLeg{
			DexName:   c.DexName,
			Router:    c.Router,
			Percent:   pct,
			AmountOut: legOut,
			Impact:    legImpact,
			FeeTier:   c.FeeTier,
		}

		totalOut.Add(totalOut, legOut)
		totalEffective.Add(totalEffective, new(big.Int).Sub(legOut, c.GasCostOutUnits))
		totalGas += c.GasEstimate
	}

	blended := domain.BlendedImpact(legs)
	if blended.GreaterThanOrEqual(s.cfg.MaxImpactPct) {
		return nil
	}
	if !domain.ImprovesByBps(totalEffective, best.EffectiveOutput, s.cfg.MinImprovementBps) {
		return nil
	}

	return &domain.DexQuote{
		DexName:         domain.SourceSplit,
		AmountOut:       totalOut,
		EffectiveOutput: totalEffective,
		GasCostOutUnits: new(big.Int).Sub(totalOut, totalEffective),
		GasEstimate:     totalGas,
		PriceImpact:     blended,
		Splits:          legs,
		Timestamp:       time.Now(),
	}
}

func bestEffective(quotes []*domain.DexQuote) *domain.DexQuote {
	var best *domain.DexQuote
	for _, q := range quotes {
		if best == nil || q.EffectiveOutput.Cmp(best.EffectiveOutput) > 0 {
			best = q
		}
	}
	return best
}
