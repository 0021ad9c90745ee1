package app

import (
	"context"
	"sync"
	"time"

	"github.com/nftlaunchme/rooswap-router/business/routing/domain"
	"github.com/nftlaunchme/rooswap-router/internal/apperror"
	"github.com/nftlaunchme/rooswap-router/internal/cache"
	"github.com/nftlaunchme/rooswap-router/internal/logger"
)

// VenueEvaluator produces an evaluated quote for one venue.
type VenueEvaluator interface {
	Evaluate(ctx context.Context, dex domain.Dex, req domain.QuoteRequest) (*domain.DexQuote, error)
}

// BatchedFetcherConfig tunes quote fan-out.
type BatchedFetcherConfig struct {
	BatchSize  int
	BatchDelay time.Duration
	CacheTTL   time.Duration
}

// BatchedFetcher quotes venues in small parallel batches with a pause
// between batches so public RPC endpoints are not hammered. Results come
// back in venue order regardless of completion order, and each venue's
// outcome (quote or error) is cached.
type BatchedFetcher struct {
	evaluator VenueEvaluator
	results   *cache.Cache[string, domain.SourceResult]
	cfg       BatchedFetcherConfig
	log       logger.LoggerInterface
}

func NewBatchedFetcher(
	evaluator VenueEvaluator,
	results *cache.Cache[string, domain.SourceResult],
	cfg BatchedFetcherConfig,
	log logger.LoggerInterface,
) *BatchedFetcher {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 2
	}
	return &BatchedFetcher{
		evaluator: evaluator,
		results:   results,
		cfg:       cfg,
		log:       log,
	}
}

// FetchAll quotes every venue for the request. results[i] always
// corresponds to dexes[i].
func (f *BatchedFetcher) FetchAll(ctx context.Context, dexes []domain.Dex, req domain.QuoteRequest) []domain.SourceResult {
	results := make([]domain.SourceResult, len(dexes))

	// Serve cached outcomes first, collect the rest for fetching.
	var pending []int
	for i, dex := range dexes {
		if cached, ok := f.results.Get(ctx, req.CacheKey(dex.Name)); ok {
			results[i] = cached
			continue
		}
		pending = append(pending, i)
	}

	for start := 0; start < len(pending); start += f.cfg.BatchSize {
		if start > 0 && f.cfg.BatchDelay > 0 {
			select {
			case <-ctx.Done():
				f.fillCancelled(results, pending[start:], dexes)
				return results
			case <-time.After(f.cfg.BatchDelay):
			}
		}

		end := start + f.cfg.BatchSize
		if end > len(pending) {
			end = len(pending)
		}

		var wg sync.WaitGroup
		for _, idx := range pending[start:end] {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				results[idx] = f.fetchOne(ctx, dexes[idx], req)
			}(idx)
		}
		wg.Wait()
	}

	return results
}

func (f *BatchedFetcher) fetchOne(ctx context.Context, dex domain.Dex, req domain.QuoteRequest) domain.SourceResult {
	var result domain.SourceResult
	result.DexName = dex.Name

	quote, err := f.evaluator.Evaluate(ctx, dex, req)
	if err != nil {
		result.Err = &domain.DexError{
			DexName: dex.Name,
			Code:    string(apperror.GetCode(err)),
			Message: err.Error(),
		}
		f.log.Debug(ctx, "venue quote failed", "dex", dex.Name, "error", err)
	} else {
		result.Quote = quote
	}

	f.results.Set(ctx, req.CacheKey(dex.Name), result, f.cfg.CacheTTL)
	return result
}

func (f *BatchedFetcher) fillCancelled(results []domain.SourceResult, remaining []int, dexes []domain.Dex) {
	for _, idx := range remaining {
		results[idx] = domain.SourceResult{
			DexName: dexes[idx].Name,
			Err: &domain.DexError{
				DexName: dexes[idx].Name,
				Code:    string(apperror.CodeQuoteFailed),
				Message: "quote cancelled",
			},
		}
	}
}
