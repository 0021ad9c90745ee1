package app

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nftlaunchme/rooswap-router/business/routing/domain"
	"github.com/nftlaunchme/rooswap-router/internal/apperror"
)

func defaultSelectorConfig() SelectorConfig {
	return SelectorConfig{
		MaxImpactPct:    decimal.NewFromInt(15),
		MinOutputUSD:    decimal.RequireFromString("0.001"),
		MinLiquidityUSD: decimal.NewFromInt(1000),
	}
}

// selectorRequest trades 100 units of the input token, $100 at the test
// prices, comfortably above the implied liquidity floor.
func selectorRequest() domain.QuoteRequest {
	req := testRequest()
	req.AmountIn, _ = new(big.Int).SetString("100000000000000000000", 10)
	return req
}

func selectorPrices() PriceContext {
	return PriceContext{
		TokenInUSD:  decimal.NewFromInt(1),
		TokenOutUSD: decimal.NewFromInt(1),
		NativeUSD:   decimal.RequireFromString("0.10"),
	}
}

func onchainQuote(name string, amountOut int64, impact string) *domain.DexQuote {
	return &domain.DexQuote{
		DexName:         name,
		AmountOut:       big.NewInt(amountOut),
		EffectiveOutput: big.NewInt(amountOut),
		GasCostOutUnits: big.NewInt(0),
		PriceImpact:     decimal.RequireFromString(impact),
		Timestamp:       time.Now(),
	}
}

func TestSelectPicksBestOnchain(t *testing.T) {
	s := NewSelector(defaultSelectorConfig(), testLogger())
	quotes := []*domain.DexQuote{
		onchainQuote("vvs", 95_000_000, "1"),
		onchainQuote("mmf", 99_000_000, "1"),
	}

	got, err := s.Select(context.Background(), selectorRequest(), quotes, nil, selectorPrices())
	if err != nil {
		t.Fatalf("Select: %v", err)
	}

	if got.Source != "mmf" {
		t.Errorf("Source = %q, want mmf", got.Source)
	}
	if len(got.Route) != 1 || got.Route[0].Percent != 100 {
		t.Errorf("Route = %+v, want single 100%% hop", got.Route)
	}
	if !got.AmountOutUSD.Equal(decimal.NewFromInt(99)) {
		t.Errorf("AmountOutUSD = %s, want 99", got.AmountOutUSD)
	}
}

func TestSelectNoRoutes(t *testing.T) {
	s := NewSelector(defaultSelectorConfig(), testLogger())

	_, err := s.Select(context.Background(), selectorRequest(), nil, nil, selectorPrices())
	if apperror.GetCode(err) != apperror.CodeNoValidRoutes {
		t.Fatalf("code = %s, want %s", apperror.GetCode(err), apperror.CodeNoValidRoutes)
	}
}

func TestSelectRejectsHighImpact(t *testing.T) {
	s := NewSelector(defaultSelectorConfig(), testLogger())
	quotes := []*domain.DexQuote{onchainQuote("vvs", 99_000_000, "20")}

	_, err := s.Select(context.Background(), selectorRequest(), quotes, nil, selectorPrices())
	if apperror.GetCode(err) != apperror.CodeNoValidRoutes {
		t.Fatalf("code = %s, want %s", apperror.GetCode(err), apperror.CodeNoValidRoutes)
	}
}

func TestSelectRejectsDustOutput(t *testing.T) {
	s := NewSelector(defaultSelectorConfig(), testLogger())
	// $0.0005 of output against a $100 input.
	quotes := []*domain.DexQuote{onchainQuote("vvs", 500, "1")}

	_, err := s.Select(context.Background(), selectorRequest(), quotes, nil, selectorPrices())
	if apperror.GetCode(err) != apperror.CodeNoValidRoutes {
		t.Fatalf("code = %s, want %s", apperror.GetCode(err), apperror.CodeNoValidRoutes)
	}
}

func TestSelectRejectsThinLiquidity(t *testing.T) {
	s := NewSelector(defaultSelectorConfig(), testLogger())
	// sqrt(100 * 0.5) * 100 is about 707, under the floor of 1000.
	quotes := []*domain.DexQuote{onchainQuote("vvs", 500_000, "1")}

	_, err := s.Select(context.Background(), selectorRequest(), quotes, nil, selectorPrices())
	if apperror.GetCode(err) != apperror.CodeNoValidRoutes {
		t.Fatalf("code = %s, want %s", apperror.GetCode(err), apperror.CodeNoValidRoutes)
	}
}

func TestSelectSkipsUSDChecksWhenUnpriced(t *testing.T) {
	s := NewSelector(defaultSelectorConfig(), testLogger())
	quotes := []*domain.DexQuote{onchainQuote("vvs", 500_000, "1")}

	// Same thin route as above, but with unknown token prices the USD
	// validations cannot run and the route stands.
	got, err := s.Select(context.Background(), selectorRequest(), quotes, nil, PriceContext{})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if got.Source != "vvs" {
		t.Errorf("Source = %q, want vvs", got.Source)
	}
}

func TestSelectAggregatorMustStrictlyBeat(t *testing.T) {
	s := NewSelector(defaultSelectorConfig(), testLogger())
	quotes := []*domain.DexQuote{onchainQuote("vvs", 99_000_000, "1")}

	agg := &domain.AggregatorQuote{
		OutAmount:   big.NewInt(99_000_000),
		PriceImpact: decimal.NewFromInt(1),
		Timestamp:   time.Now(),
	}

	got, err := s.Select(context.Background(), selectorRequest(), quotes, agg, selectorPrices())
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	// Equal net output is a tie, and ties go on-chain.
	if got.Source != "vvs" {
		t.Errorf("Source = %q, want vvs on tie", got.Source)
	}

	agg.OutAmount = big.NewInt(100_000_000)
	got, err = s.Select(context.Background(), selectorRequest(), quotes, agg, selectorPrices())
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if got.Source != domain.SourceAggregator {
		t.Errorf("Source = %q, want %q", got.Source, domain.SourceAggregator)
	}
}

func TestSelectAggregatorOnlyFallback(t *testing.T) {
	s := NewSelector(defaultSelectorConfig(), testLogger())

	agg := &domain.AggregatorQuote{
		OutAmount:   big.NewInt(99_000_000),
		PriceImpact: decimal.NewFromInt(1),
		Route: []domain.RouteHop{
			{DexName: "vvs", Percent: 70},
			{DexName: "mmf", Percent: 30},
		},
		Timestamp: time.Now(),
	}

	got, err := s.Select(context.Background(), selectorRequest(), nil, agg, selectorPrices())
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if got.Source != domain.SourceAggregator {
		t.Errorf("Source = %q, want %q", got.Source, domain.SourceAggregator)
	}
	if len(got.Route) != 2 {
		t.Errorf("Route = %+v, want aggregator route passed through", got.Route)
	}
}

func TestSelectUsesAggregatorReportedPrices(t *testing.T) {
	cfg := defaultSelectorConfig()
	s := NewSelector(cfg, testLogger())

	// Selector has no prices of its own; the aggregator's reported USD
	// prices drive the USD fields.
	agg := &domain.AggregatorQuote{
		OutAmount:   big.NewInt(99_000_000),
		PriceImpact: decimal.NewFromInt(1),
		InTokenUSD:  decimal.NewFromInt(1),
		OutTokenUSD: decimal.NewFromInt(1),
		Timestamp:   time.Now(),
	}

	got, err := s.Select(context.Background(), selectorRequest(), nil, agg, PriceContext{})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if !got.AmountInUSD.Equal(decimal.NewFromInt(100)) {
		t.Errorf("AmountInUSD = %s, want 100", got.AmountInUSD)
	}
	if !got.AmountOutUSD.Equal(decimal.NewFromInt(99)) {
		t.Errorf("AmountOutUSD = %s, want 99", got.AmountOutUSD)
	}
}
