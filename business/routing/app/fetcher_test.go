package app

import (
	"context"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/nftlaunchme/rooswap-router/business/routing/domain"
	"github.com/nftlaunchme/rooswap-router/internal/apperror"
	"github.com/nftlaunchme/rooswap-router/internal/cache"
)

type fakeEvaluator struct {
	mu     sync.Mutex
	calls  int
	delays map[string]time.Duration
	errs   map[string]error
}

func (f *fakeEvaluator) Evaluate(ctx context.Context, dex domain.Dex, _ domain.QuoteRequest) (*domain.DexQuote, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if d, ok := f.delays[dex.Name]; ok {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(d):
		}
	}
	if err, ok := f.errs[dex.Name]; ok {
		return nil, err
	}
	return &domain.DexQuote{
		DexName:         dex.Name,
		AmountOut:       big.NewInt(1_000_000),
		EffectiveOutput: big.NewInt(1_000_000),
		GasCostOutUnits: big.NewInt(0),
		Timestamp:       time.Now(),
	}, nil
}

func (f *fakeEvaluator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newTestFetcher(eval *fakeEvaluator, cfg BatchedFetcherConfig) *BatchedFetcher {
	results := cache.New[string, domain.SourceResult](0)
	return NewBatchedFetcher(eval, results, cfg, testLogger())
}

func TestFetchAllPreservesVenueOrder(t *testing.T) {
	dexes := []domain.Dex{
		testDex("vvs", domain.KindV2),
		testDex("mmf", domain.KindV2),
		testDex("crona", domain.KindV2),
	}
	// The first venue finishes last; order must not depend on timing.
	eval := &fakeEvaluator{delays: map[string]time.Duration{
		"vvs": 30 * time.Millisecond,
	}}
	f := newTestFetcher(eval, BatchedFetcherConfig{BatchSize: 3})

	results := f.FetchAll(context.Background(), dexes, testRequest())
	if len(results) != len(dexes) {
		t.Fatalf("len(results) = %d, want %d", len(results), len(dexes))
	}
	for i, r := range results {
		if r.DexName != dexes[i].Name {
			t.Errorf("results[%d] = %q, want %q", i, r.DexName, dexes[i].Name)
		}
		if r.Quote == nil {
			t.Errorf("results[%d] has no quote", i)
		}
	}
}

func TestFetchAllVenueFailureIsData(t *testing.T) {
	dexes := []domain.Dex{
		testDex("vvs", domain.KindV2),
		testDex("mmf", domain.KindV2),
	}
	eval := &fakeEvaluator{errs: map[string]error{
		"mmf": apperror.New(apperror.CodeInsufficientLiquidity),
	}}
	f := newTestFetcher(eval, BatchedFetcherConfig{BatchSize: 2})

	results := f.FetchAll(context.Background(), dexes, testRequest())

	if results[0].Quote == nil || results[0].Err != nil {
		t.Errorf("vvs should have a quote, got %+v", results[0])
	}
	if results[1].Err == nil {
		t.Fatalf("mmf should carry its failure, got %+v", results[1])
	}
	if results[1].Err.Code != string(apperror.CodeInsufficientLiquidity) {
		t.Errorf("error code = %q, want %q", results[1].Err.Code, apperror.CodeInsufficientLiquidity)
	}
}

func TestFetchAllCachesOutcomes(t *testing.T) {
	dexes := []domain.Dex{
		testDex("vvs", domain.KindV2),
		testDex("mmf", domain.KindV2),
	}
	// Failures are cached too; a broken venue is not re-quoted each call.
	eval := &fakeEvaluator{errs: map[string]error{
		"mmf": apperror.New(apperror.CodeContractCallFailed),
	}}
	f := newTestFetcher(eval, BatchedFetcherConfig{BatchSize: 2, CacheTTL: time.Minute})

	req := testRequest()
	f.FetchAll(context.Background(), dexes, req)
	f.FetchAll(context.Background(), dexes, req)

	if got := eval.callCount(); got != len(dexes) {
		t.Errorf("evaluator calls = %d, want %d", got, len(dexes))
	}
}

func TestFetchAllPausesBetweenBatches(t *testing.T) {
	dexes := []domain.Dex{
		testDex("vvs", domain.KindV2),
		testDex("mmf", domain.KindV2),
		testDex("crona", domain.KindV2),
	}
	delay := 40 * time.Millisecond
	f := newTestFetcher(&fakeEvaluator{}, BatchedFetcherConfig{BatchSize: 1, BatchDelay: delay})

	start := time.Now()
	f.FetchAll(context.Background(), dexes, testRequest())
	elapsed := time.Since(start)

	// Three batches of one mean two pauses.
	if elapsed < 2*delay {
		t.Errorf("elapsed = %v, want at least %v", elapsed, 2*delay)
	}
}

func TestFetchAllCancelledMidway(t *testing.T) {
	dexes := []domain.Dex{
		testDex("vvs", domain.KindV2),
		testDex("mmf", domain.KindV2),
	}
	f := newTestFetcher(&fakeEvaluator{}, BatchedFetcherConfig{BatchSize: 1, BatchDelay: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := f.FetchAll(ctx, dexes, testRequest())

	// The first batch runs before any pause; the rest is filled in as
	// cancelled without waiting out the delay.
	if results[1].Err == nil || results[1].Err.Code != string(apperror.CodeQuoteFailed) {
		t.Fatalf("results[1] = %+v, want cancelled error", results[1])
	}
	if results[1].DexName != "mmf" {
		t.Errorf("results[1].DexName = %q, want mmf", results[1].DexName)
	}
}
