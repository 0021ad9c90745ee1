package app

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"

	"github.com/nftlaunchme/rooswap-router/business/routing/domain"
	"github.com/nftlaunchme/rooswap-router/internal/apperror"
	"github.com/nftlaunchme/rooswap-router/internal/logger"
)

// RouterServiceConfig tunes swap construction.
type RouterServiceConfig struct {
	SlippageBps     int64
	DeadlineMinutes int
}

// RouterService answers quote requests by racing on-chain venues against
// the aggregator API and picking the better route. The aggregator is
// optional; when it is absent or failing, routing degrades to on-chain
// venues only.
type RouterService struct {
	dexes      []domain.Dex
	fetcher    *BatchedFetcher
	splitter   *Splitter
	selector   *Selector
	aggregator AggregatorClient
	gas        GasOracle
	prices     PriceOracle
	encoder    SwapEncoder
	cfg        RouterServiceConfig
	log        logger.LoggerInterface
}

func NewRouterService(
	dexes []domain.Dex,
	fetcher *BatchedFetcher,
	splitter *Splitter,
	selector *Selector,
	aggregator AggregatorClient,
	gas GasOracle,
	prices PriceOracle,
	encoder SwapEncoder,
	cfg RouterServiceConfig,
	log logger.LoggerInterface,
) *RouterService {
	return &RouterService{
		dexes:      dexes,
		fetcher:    fetcher,
		splitter:   splitter,
		selector:   selector,
		aggregator: aggregator,
		gas:        gas,
		prices:     prices,
		encoder:    encoder,
		cfg:        cfg,
		log:        log,
	}
}

// GetQuote returns the best route for the request, split routes included.
func (s *RouterService) GetQuote(ctx context.Context, req domain.QuoteRequest) (*domain.Quote, error) {
	return s.quote(ctx, req, true)
}

func (s *RouterService) quote(ctx context.Context, req domain.QuoteRequest, allowSplits bool) (*domain.Quote, error) {
	if req.AmountIn == nil || req.AmountIn.Sign() == 0 {
		return nil, apperror.New(apperror.CodeNoValidRoutes,
			apperror.WithContext("zero input amount"))
	}
	if req.SlippageBps == 0 {
		req.SlippageBps = s.cfg.SlippageBps
	}

	direct := s.directVenues()

	var (
		onchain []*domain.DexQuote
		agg     *domain.AggregatorQuote
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		results := s.fetcher.FetchAll(gctx, direct, req)
		for _, r := range results {
			if r.Quote != nil {
				onchain = append(onchain, r.Quote)
			}
		}
		return nil
	})

	if s.aggregator != nil {
		g.Go(func() error {
			// A new request supersedes any quote still in flight.
			s.aggregator.CancelPending()
			q, err := s.aggregator.Quote(gctx, req)
			if err != nil {
				s.log.Warn(gctx, "aggregator quote unavailable", "error", err)
				return nil
			}
			agg = q
			return nil
		})
	}

	// Neither branch returns an error; the group exists for the shared
	// cancellation context.
	_ = g.Wait()

	if allowSplits {
		onchain = s.splitter.Optimize(onchain)
	}

	px := s.priceContext(ctx, req)

	best, err := s.selector.Select(ctx, req, onchain, agg, px)
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "route selected",
		"source", best.Source,
		"amountOut", best.OutAmount.String(),
		"impact", best.PriceImpact.StringFixed(4),
	)
	return best, nil
}

// BuildSwapTransaction turns the best currently executable route into a
// ready-to-sign transaction. Split routes are a quoting construct, not an
// executable one, so the route is re-derived over single venues and the
// aggregator only.
func (s *RouterService) BuildSwapTransaction(
	ctx context.Context,
	req domain.QuoteRequest,
	account common.Address,
) (*domain.SwapTransaction, error) {
	if req.SlippageBps == 0 {
		req.SlippageBps = s.cfg.SlippageBps
	}

	best, err := s.quote(ctx, req, false)
	if err != nil {
		return nil, err
	}

	if best.Source == domain.SourceAggregator {
		return s.buildAggregatorSwap(ctx, req, account)
	}
	return s.buildDirectSwap(ctx, req, account, best)
}

func (s *RouterService) buildAggregatorSwap(
	ctx context.Context,
	req domain.QuoteRequest,
	account common.Address,
) (*domain.SwapTransaction, error) {
	swap, err := s.aggregator.SwapQuote(ctx, req, account)
	if err != nil {
		return nil, apperror.New(apperror.CodeTransactionBuildFailed,
			apperror.WithContext("aggregator swap quote failed"),
			apperror.WithCause(err))
	}

	gasPrice, err := s.gas.GasPriceWei(ctx)
	if err != nil {
		return nil, apperror.New(apperror.CodeTransactionBuildFailed,
			apperror.WithContext("gas price unavailable"),
			apperror.WithCause(err))
	}

	return &domain.SwapTransaction{
		To:           swap.To,
		Data:         swap.Data,
		Value:        swap.Value,
		GasPrice:     gasPrice,
		GasLimit:     swap.EstimatedGas,
		MinAmountOut: swap.MinOutAmount,
		Deadline:     s.deadline(),
	}, nil
}

func (s *RouterService) buildDirectSwap(
	ctx context.Context,
	req domain.QuoteRequest,
	account common.Address,
	best *domain.Quote,
) (*domain.SwapTransaction, error) {
	dex, ok := s.dexByName(best.Source)
	if !ok {
		return nil, apperror.New(apperror.CodeTransactionBuildFailed,
			apperror.WithContext("unknown venue "+best.Source))
	}

	minOut := MinAmountOut(best.OutAmount, req.SlippageBps)
	deadline := s.deadline()

	var (
		data []byte
		err  error
	)
	switch dex.Kind {
	case domain.KindV3:
		data, err = s.encoder.EncodeV3Swap(V3SwapParams{
			TokenIn:      req.TokenIn.Address(),
			TokenOut:     req.TokenOut.Address(),
			FeeTier:      feeTier(best),
			AmountIn:     req.AmountIn,
			AmountOutMin: minOut,
			Recipient:    account,
			Deadline:     deadline,
		})
	default:
		path := []common.Address{req.TokenIn.Address(), req.TokenOut.Address()}
		data, err = s.encoder.EncodeV2Swap(V2SwapParams{
			AmountIn:     req.AmountIn,
			AmountOutMin: minOut,
			Path:         path,
			Recipient:    account,
			Deadline:     deadline,
			NativeIn:     req.NativeIn,
			NativeOut:    req.NativeOut,
		})
	}
	if err != nil {
		return nil, apperror.New(apperror.CodeTransactionBuildFailed,
			apperror.WithContext("calldata encoding failed for "+dex.Name),
			apperror.WithCause(err))
	}

	gasPrice, err := s.gas.GasPriceWei(ctx)
	if err != nil {
		return nil, apperror.New(apperror.CodeTransactionBuildFailed,
			apperror.WithContext("gas price unavailable"),
			apperror.WithCause(err))
	}

	value := big.NewInt(0)
	if req.NativeIn {
		value = new(big.Int).Set(req.AmountIn)
	}

	return &domain.SwapTransaction{
		To:           dex.Router,
		Data:         data,
		Value:        value,
		GasPrice:     gasPrice,
		GasLimit:     dex.GasEstimate,
		MinAmountOut: minOut,
		Deadline:     deadline,
	}, nil
}

// priceContext gathers gas and USD pricing for selection. Every input is
// optional; selection copes with zeros.
func (s *RouterService) priceContext(ctx context.Context, req domain.QuoteRequest) PriceContext {
	var px PriceContext

	if gasPrice, err := s.gas.GasPriceWei(ctx); err == nil {
		px.GasPriceWei = gasPrice
	}
	if nativeUSD, err := s.prices.NativeUSD(ctx); err == nil {
		px.NativeUSD = nativeUSD
	}
	if inUSD, err := s.prices.TokenUSD(ctx, req.TokenIn); err == nil {
		px.TokenInUSD = inUSD
	}
	if outUSD, err := s.prices.TokenUSD(ctx, req.TokenOut); err == nil {
		px.TokenOutUSD = outUSD
	}
	return px
}

func (s *RouterService) directVenues() []domain.Dex {
	direct := make([]domain.Dex, 0, len(s.dexes))
	for _, d := range s.dexes {
		if d.CanQuoteDirect() {
			direct = append(direct, d)
		}
	}
	return direct
}

func (s *RouterService) dexByName(name string) (domain.Dex, bool) {
	for _, d := range s.dexes {
		if d.Name == name {
			return d, true
		}
	}
	return domain.Dex{}, false
}

func (s *RouterService) deadline() *big.Int {
	minutes := s.cfg.DeadlineMinutes
	if minutes <= 0 {
		minutes = 20
	}
	return big.NewInt(time.Now().Add(time.Duration(minutes) * time.Minute).Unix())
}

// MinAmountOut applies slippage tolerance at per-mille precision, the
// granularity the venue routers are quoted against.
func MinAmountOut(amountOut *big.Int, slippageBps int64) *big.Int {
	factor := big.NewInt(1_000 - slippageBps/10)
	min := new(big.Int).Mul(amountOut, factor)
	return min.Div(min, big.NewInt(1_000))
}

func feeTier(q *domain.Quote) int64 {
	if len(q.Route) > 0 {
		return q.Route[0].FeeTier
	}
	return 0
}
