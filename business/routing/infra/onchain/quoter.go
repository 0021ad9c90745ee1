// Package onchain quotes and encodes swaps against the venues' own router
// and quoter contracts.
package onchain

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/nftlaunchme/rooswap-router/business/routing/app"
	"github.com/nftlaunchme/rooswap-router/business/routing/domain"
	"github.com/nftlaunchme/rooswap-router/internal/apperror"
	"github.com/nftlaunchme/rooswap-router/internal/asset"
	"github.com/nftlaunchme/rooswap-router/internal/circuitbreaker"
	"github.com/nftlaunchme/rooswap-router/internal/logger"
)

const (
	tracerName = "routing.onchain"
	meterName  = "routing.onchain"
)

// EthCaller is the slice of ethclient.Client used for read-only calls.
type EthCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Ensure Quoter implements DexQuoter.
var _ app.DexQuoter = (*Quoter)(nil)

// quoterMetrics holds OTEL metric instruments.
type quoterMetrics struct {
	quotesTotal  metric.Int64Counter
	quoteLatency metric.Float64Histogram
	quoteErrors  metric.Int64Counter
}

// Quoter reads venue quotes straight from chain: getAmountsOut for v2
// routers, QuoterV2 for v3. Every quote also fetches a one-unit reference
// so impact can be measured against spot.
type Quoter struct {
	client    EthCaller
	v2ABI     abi.ABI
	quoterABI abi.ABI

	logger logger.LoggerInterface
	cb     *circuitbreaker.CircuitBreaker[[]byte]

	tracer  trace.Tracer
	metrics *quoterMetrics
}

// NewQuoter creates an on-chain quoter over the given caller.
func NewQuoter(client EthCaller, log logger.LoggerInterface) (*Quoter, error) {
	v2ABI, err := abi.JSON(strings.NewReader(V2RouterABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse v2 router ABI: %w", err)
	}
	quoterABI, err := abi.JSON(strings.NewReader(QuoterV2ABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse quoter ABI: %w", err)
	}

	q := &Quoter{
		client:    client,
		v2ABI:     v2ABI,
		quoterABI: quoterABI,
		logger:    log,
		tracer:    otel.Tracer(tracerName),
	}

	q.cb = circuitbreaker.New[[]byte](circuitbreaker.DefaultConfig("onchain-quoter"))

	if err := q.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to init metrics: %w", err)
	}

	return q, nil
}

func (q *Quoter) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	q.metrics = &quoterMetrics{}

	q.metrics.quotesTotal, err = meter.Int64Counter(
		"onchain_quotes_total",
		metric.WithDescription("Total on-chain quote requests"),
	)
	if err != nil {
		return err
	}

	q.metrics.quoteLatency, err = meter.Float64Histogram(
		"onchain_quote_latency_ms",
		metric.WithDescription("On-chain quote latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	q.metrics.quoteErrors, err = meter.Int64Counter(
		"onchain_quote_errors_total",
		metric.WithDescription("Total on-chain quote errors"),
	)
	if err != nil {
		return err
	}

	return nil
}

// QuoteExactIn quotes the full request amount and a one-unit spot
// reference on the given venue.
func (q *Quoter) QuoteExactIn(ctx context.Context, dex domain.Dex, req domain.QuoteRequest) (*domain.RawQuote, error) {
	ctx, span := q.tracer.Start(ctx, "onchain.quote_exact_in",
		trace.WithAttributes(
			attribute.String("dex", dex.Name),
			attribute.String("token_in", req.TokenIn.Address().Hex()),
			attribute.String("token_out", req.TokenOut.Address().Hex()),
			attribute.String("amount_in", req.AmountIn.String()),
		),
	)
	defer span.End()

	start := time.Now()
	q.metrics.quotesTotal.Add(ctx, 1)

	var (
		raw *domain.RawQuote
		err error
	)
	switch dex.Kind {
	case domain.KindV2:
		raw, err = q.quoteV2(ctx, dex, req)
	case domain.KindV3:
		raw, err = q.quoteV3(ctx, dex, req)
	default:
		err = apperror.New(apperror.CodeInvalidInput,
			apperror.WithContext("unknown venue kind "+string(dex.Kind)))
	}

	q.metrics.quoteLatency.Record(ctx, float64(time.Since(start).Milliseconds()))

	if err != nil {
		q.metrics.quoteErrors.Add(ctx, 1)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("amount_out", raw.AmountOut.String()))
	span.SetStatus(codes.Ok, "quote received")

	q.logger.Debug(ctx, "onchain quote",
		"dex", dex.Name,
		"amount_in", req.AmountIn.String(),
		"amount_out", raw.AmountOut.String(),
		"fee_tier", raw.FeeTier,
	)

	return raw, nil
}

func (q *Quoter) quoteV2(ctx context.Context, dex domain.Dex, req domain.QuoteRequest) (*domain.RawQuote, error) {
	path := []common.Address{req.TokenIn.Address(), req.TokenOut.Address()}

	amountOut, err := q.getAmountsOut(ctx, dex.Router, req.AmountIn, path)
	if err != nil {
		return nil, err
	}

	oneUnit := asset.OneUnit(req.TokenIn).Raw()
	spotOut, err := q.getAmountsOut(ctx, dex.Router, oneUnit, path)
	if err != nil {
		return nil, err
	}

	return &domain.RawQuote{
		AmountOut:  amountOut,
		SpotUnitIn: oneUnit,
		SpotOut:    spotOut,
		Path:       path,
	}, nil
}

func (q *Quoter) quoteV3(ctx context.Context, dex domain.Dex, req domain.QuoteRequest) (*domain.RawQuote, error) {
	// Try every fee tier and keep the highest output.
	var (
		bestOut  *big.Int
		bestTier int64
	)
	for _, tier := range feeTiers {
		out, err := q.quoteExactInputSingle(ctx, dex.Quoter, req.TokenIn.Address(), req.TokenOut.Address(), req.AmountIn, tier)
		if err != nil {
			continue
		}
		if bestOut == nil || out.Cmp(bestOut) > 0 {
			bestOut = out
			bestTier = tier
		}
	}
	if bestOut == nil {
		return nil, apperror.New(apperror.CodePoolNotFound,
			apperror.WithContext("no pool in any fee tier on "+dex.Name))
	}

	oneUnit := asset.OneUnit(req.TokenIn).Raw()
	spotOut, err := q.quoteExactInputSingle(ctx, dex.Quoter, req.TokenIn.Address(), req.TokenOut.Address(), oneUnit, bestTier)
	if err != nil {
		return nil, err
	}

	return &domain.RawQuote{
		AmountOut:  bestOut,
		SpotUnitIn: oneUnit,
		SpotOut:    spotOut,
		FeeTier:    bestTier,
		Path:       []common.Address{req.TokenIn.Address(), req.TokenOut.Address()},
	}, nil
}

func (q *Quoter) getAmountsOut(ctx context.Context, router common.Address, amountIn *big.Int, path []common.Address) (*big.Int, error) {
	callData, err := q.v2ABI.Pack("getAmountsOut", amountIn, path)
	if err != nil {
		return nil, fmt.Errorf("failed to encode call: %w", err)
	}

	result, err := q.call(ctx, router, callData)
	if err != nil {
		return nil, err
	}

	outputs, err := q.v2ABI.Unpack("getAmountsOut", result)
	if err != nil {
		return nil, fmt.Errorf("failed to decode result: %w", err)
	}
	amounts, ok := outputs[0].([]*big.Int)
	if !ok || len(amounts) != len(path) {
		return nil, apperror.New(apperror.CodeContractCallFailed,
			apperror.WithContext("malformed getAmountsOut result"))
	}

	return amounts[len(amounts)-1], nil
}

func (q *Quoter) quoteExactInputSingle(ctx context.Context, quoter, tokenIn, tokenOut common.Address, amountIn *big.Int, feeTier int64) (*big.Int, error) {
	callData, err := q.quoterABI.Pack("quoteExactInputSingle", QuoteExactInputSingleParams{
		TokenIn:           tokenIn,
		TokenOut:          tokenOut,
		AmountIn:          amountIn,
		Fee:               big.NewInt(feeTier),
		SqrtPriceLimitX96: big.NewInt(0),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode call: %w", err)
	}

	result, err := q.call(ctx, quoter, callData)
	if err != nil {
		return nil, err
	}

	var quoted QuoteResult
	if err := q.quoterABI.UnpackIntoInterface(&quoted, "quoteExactInputSingle", result); err != nil {
		return nil, fmt.Errorf("failed to decode result: %w", err)
	}
	if quoted.AmountOut == nil {
		return nil, apperror.New(apperror.CodeContractCallFailed,
			apperror.WithContext("malformed quoteExactInputSingle result"))
	}

	return quoted.AmountOut, nil
}

func (q *Quoter) call(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	result, err := q.cb.Execute(func() ([]byte, error) {
		return q.client.CallContract(ctx, ethereum.CallMsg{
			To:   &to,
			Data: data,
		}, nil)
	})
	if err != nil {
		return nil, apperror.New(apperror.CodeContractCallFailed,
			apperror.WithCause(err),
			apperror.WithContext("contract call to "+to.Hex()+" failed"))
	}
	return result, nil
}
