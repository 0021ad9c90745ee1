// Package openocean implements the aggregator API client. Every upstream
// failure is reported as an error the caller drops, so routing degrades to
// on-chain quotes rather than failing the request.
package openocean

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"

	"github.com/nftlaunchme/rooswap-router/business/routing/app"
	"github.com/nftlaunchme/rooswap-router/business/routing/domain"
	"github.com/nftlaunchme/rooswap-router/internal/apperror"
	"github.com/nftlaunchme/rooswap-router/internal/config"
	"github.com/nftlaunchme/rooswap-router/internal/httpclient"
	"github.com/nftlaunchme/rooswap-router/internal/logger"
	"github.com/nftlaunchme/rooswap-router/internal/ratelimit"
)

// The API enforces a referrer fee floor; values below it are rejected.
const (
	minReferrerFeePct = 0.01
	maxReferrerFeePct = 3.0
)

const defaultGasFallbackGwei = 5

// Ensure Client implements AggregatorClient.
var _ app.AggregatorClient = (*Client)(nil)

// Client talks to an OpenOcean-compatible aggregator API.
type Client struct {
	http httpclient.Client
	cfg  config.OpenOceanConfig

	limiter *ratelimit.Limiter
	logger  logger.LoggerInterface

	// cancel aborts the in-flight quote; replaced atomically per request.
	mu     sync.Mutex
	cancel context.CancelFunc
	gen    uint64
}

// New creates an aggregator client from configuration.
func New(cfg config.OpenOceanConfig, log logger.LoggerInterface) (*Client, error) {
	httpClient, err := httpclient.NewInstrumentedClient(
		httpclient.WithProviderName("openocean"),
		httpclient.WithBaseURL(cfg.BaseURL),
		httpclient.WithRequestTimeout(cfg.RequestTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http client: %w", err)
	}

	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 2
	}

	return &Client{
		http:    httpClient,
		cfg:     cfg,
		limiter: ratelimit.New(rps),
		logger:  log,
	}, nil
}

// Quote fetches a comparison quote for the request.
func (c *Client) Quote(ctx context.Context, req domain.QuoteRequest) (*domain.AggregatorQuote, error) {
	ctx, release := c.track(ctx)
	defer release()

	params := map[string]string{
		"inTokenAddress":  req.TokenIn.Address().Hex(),
		"outTokenAddress": req.TokenOut.Address().Hex(),
		"amount":          wholeUnits(req.AmountIn, req.TokenIn.Decimals()),
		"gasPrice":        c.gasPriceGwei(ctx),
		"slippage":        slippagePct(req.SlippageBps),
		"referrer":        c.cfg.ReferrerAddress,
		"referrerFee":     c.referrerFee(),
	}

	var data quoteData
	if err := c.getJSON(ctx, c.path("quote"), params, &data); err != nil {
		return nil, err
	}

	outAmount, ok := parseBigInt(data.OutAmount)
	if !ok {
		return nil, apperror.New(apperror.CodeAggregatorBadEnvelope,
			apperror.WithContext("unparsable outAmount "+data.OutAmount))
	}
	inAmount, ok := parseBigInt(data.InAmount)
	if !ok {
		inAmount = new(big.Int).Set(req.AmountIn)
	}
	estimatedGas, _ := data.EstimatedGas.Int64()

	quote := &domain.AggregatorQuote{
		InAmount:     inAmount,
		OutAmount:    outAmount,
		EstimatedGas: uint64(estimatedGas),
		PriceImpact:  parsePercent(data.PriceImpact),
		InTokenUSD:   data.InToken.USD,
		OutTokenUSD:  data.OutToken.USD,
		Route:        toRouteHops(data.Route),
		Timestamp:    time.Now(),
	}

	c.logger.Debug(ctx, "aggregator quote",
		"out_amount", quote.OutAmount.String(),
		"impact", quote.PriceImpact.String(),
		"hops", len(quote.Route),
	)
	return quote, nil
}

// GasPrice fetches the chain gas price in wei.
func (c *Client) GasPrice(ctx context.Context) (*big.Int, error) {
	var data gasPriceData
	if err := c.getJSON(ctx, c.path("gasPrice"), nil, &data); err != nil {
		return nil, err
	}

	gwei, err := decimal.NewFromString(data.Standard.String())
	if err != nil || gwei.Sign() <= 0 {
		return nil, apperror.New(apperror.CodeAggregatorBadEnvelope,
			apperror.WithContext("unparsable gas price "+data.Standard.String()))
	}

	return gwei.Shift(9).Truncate(0).BigInt(), nil
}

// SwapQuote fetches prebuilt call data for the request. The aggregator is
// the authority on its own call format, so nothing is encoded locally.
func (c *Client) SwapQuote(ctx context.Context, req domain.QuoteRequest, account common.Address) (*domain.AggregatorSwap, error) {
	params := map[string]string{
		"inTokenAddress":  req.TokenIn.Address().Hex(),
		"outTokenAddress": req.TokenOut.Address().Hex(),
		"amount":          wholeUnits(req.AmountIn, req.TokenIn.Decimals()),
		"gasPrice":        c.gasPriceGwei(ctx),
		"slippage":        slippagePct(req.SlippageBps),
		"account":         account.Hex(),
		"referrer":        c.cfg.ReferrerAddress,
		"referrerFee":     c.referrerFee(),
	}

	var data swapData
	if err := c.getJSON(ctx, c.path("swap_quote"), params, &data); err != nil {
		return nil, err
	}

	callData, err := hexutil.Decode(data.Data)
	if err != nil {
		return nil, apperror.New(apperror.CodeAggregatorBadEnvelope,
			apperror.WithContext("unparsable call data"),
			apperror.WithCause(err))
	}
	value, ok := parseBigInt(data.Value)
	if !ok {
		value = big.NewInt(0)
	}
	minOut, ok := parseBigInt(data.MinOutAmount)
	if !ok {
		minOut = big.NewInt(0)
	}
	estimatedGas, _ := data.EstimatedGas.Int64()

	return &domain.AggregatorSwap{
		To:           common.HexToAddress(data.To),
		Data:         callData,
		Value:        value,
		EstimatedGas: uint64(estimatedGas),
		MinOutAmount: minOut,
	}, nil
}

// TokenList fetches the aggregator's token catalog for the chain.
func (c *Client) TokenList(ctx context.Context) ([]domain.TokenInfo, error) {
	var data []tokenData
	if err := c.getJSON(ctx, c.path("tokenList"), nil, &data); err != nil {
		return nil, err
	}

	tokens := make([]domain.TokenInfo, 0, len(data))
	for _, t := range data {
		tokens = append(tokens, domain.TokenInfo{
			Address:  common.HexToAddress(t.Address),
			Symbol:   t.Symbol,
			Name:     t.Name,
			Decimals: t.Decimals,
			UsdPrice: t.USD,
		})
	}
	return tokens, nil
}

// Balances fetches account balances for the given tokens.
func (c *Client) Balances(ctx context.Context, account common.Address, tokens []common.Address) ([]domain.TokenBalance, error) {
	inTokens := ""
	for i, t := range tokens {
		if i > 0 {
			inTokens += ","
		}
		inTokens += t.Hex()
	}

	params := map[string]string{
		"account":        account.Hex(),
		"inTokenAddress": inTokens,
	}

	var data []balanceData
	if err := c.getJSON(ctx, c.path("getBalance"), params, &data); err != nil {
		return nil, err
	}

	balances := make([]domain.TokenBalance, 0, len(data))
	for _, b := range data {
		raw, ok := parseBigInt(b.Raw)
		if !ok {
			continue
		}
		balances = append(balances, domain.TokenBalance{
			Address: common.HexToAddress(b.TokenAddress),
			Symbol:  b.Symbol,
			Raw:     raw,
		})
	}
	return balances, nil
}

// CancelPending aborts the in-flight quote, if any. A newer request
// supersedes the older one.
func (c *Client) CancelPending() {
	c.mu.Lock()
	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// track wires the request context into the cancel handle.
func (c *Client) track(parent context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancel(parent)

	c.mu.Lock()
	prev := c.cancel
	c.cancel = cancel
	c.gen++
	gen := c.gen
	c.mu.Unlock()
	if prev != nil {
		prev()
	}

	release := func() {
		c.mu.Lock()
		// Only clear the handle if a newer request has not replaced it.
		if c.gen == gen {
			c.cancel = nil
		}
		c.mu.Unlock()
		cancel()
	}
	return ctx, release
}

// gasPriceGwei returns the gas price query value, falling back to the
// configured constant when the endpoint is unavailable.
func (c *Client) gasPriceGwei(ctx context.Context) string {
	wei, err := c.GasPrice(ctx)
	if err == nil {
		return decimal.NewFromBigInt(wei, -9).String()
	}

	fallback := c.cfg.GasPriceFallbackGwei
	if fallback <= 0 {
		fallback = defaultGasFallbackGwei
	}
	c.logger.Warn(ctx, "gas price endpoint unavailable, using fallback",
		"fallback_gwei", fallback, "error", err)
	return decimal.NewFromFloat(fallback).String()
}

func (c *Client) referrerFee() string {
	fee := c.cfg.ReferrerFeePct
	if fee < minReferrerFeePct {
		fee = minReferrerFeePct
	}
	if fee > maxReferrerFeePct {
		fee = maxReferrerFeePct
	}
	return decimal.NewFromFloat(fee).String()
}

func (c *Client) path(endpoint string) string {
	return "/" + c.cfg.ChainName + "/" + endpoint
}

// getJSON performs a rate-limited GET and unwraps the response envelope.
func (c *Client) getJSON(ctx context.Context, path string, params map[string]string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return apperror.New(apperror.CodeAggregatorUnavailable,
			apperror.WithContext("rate limiter wait aborted"),
			apperror.WithCause(err))
	}

	req := c.http.NewRequest()
	if params != nil {
		req.SetQueryParams(params)
	}

	var env envelope
	resp, err := req.SetResult(&env).Get(ctx, path)
	if err != nil {
		return apperror.New(apperror.CodeAggregatorUnavailable,
			apperror.WithContext("GET "+path+" failed"),
			apperror.WithCause(err))
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return apperror.New(apperror.CodeAggregatorRateLimited,
			apperror.WithContext("GET "+path+" throttled"))
	}
	if resp.IsError() {
		return apperror.New(apperror.CodeAggregatorAPIError,
			apperror.WithContext(fmt.Sprintf("GET %s returned status %d", path, resp.StatusCode)))
	}
	if resp.Result() == nil {
		return apperror.New(apperror.CodeAggregatorBadEnvelope,
			apperror.WithContext("GET "+path+" returned a non-JSON body"))
	}

	// code 200 inside the envelope is the real success signal.
	if env.Code != 200 {
		return apperror.New(apperror.CodeAggregatorAPIError,
			apperror.WithContext(fmt.Sprintf("GET %s returned code %d: %s", path, env.Code, env.Message)))
	}

	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return apperror.New(apperror.CodeAggregatorBadEnvelope,
				apperror.WithContext("GET "+path+" returned a malformed payload"),
				apperror.WithCause(err))
		}
	}
	return nil
}

func toRouteHops(hops []hopData) []domain.RouteHop {
	if len(hops) == 0 {
		return nil
	}
	out := make([]domain.RouteHop, len(hops))
	for i, h := range hops {
		out[i] = domain.RouteHop{
			DexName:             h.DexName,
			TokenIn:             h.TokenIn,
			TokenOut:            h.TokenOut,
			Percent:             h.Percent,
			FeeTier:             h.FeeTier,
			HasFeeOnTransfer:    h.HasFeeOnTransfer,
			FeeOnTransferAmount: h.FeeOnTransferAmount,
		}
	}
	return out
}

func wholeUnits(raw *big.Int, decimals uint8) string {
	return decimal.NewFromBigInt(raw, -int32(decimals)).String()
}

func slippagePct(bps int64) string {
	return decimal.New(bps, -2).String()
}
