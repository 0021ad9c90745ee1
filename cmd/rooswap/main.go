// Package main is the entry point for the RooSwap route aggregation CLI.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"

	"github.com/nftlaunchme/rooswap-router/business/blockchain"
	"github.com/nftlaunchme/rooswap-router/business/routing"
	routingDI "github.com/nftlaunchme/rooswap-router/business/routing/di"
	"github.com/nftlaunchme/rooswap-router/business/routing/domain"
	"github.com/nftlaunchme/rooswap-router/internal/apm"
	"github.com/nftlaunchme/rooswap-router/internal/asset"
	"github.com/nftlaunchme/rooswap-router/internal/config"
	"github.com/nftlaunchme/rooswap-router/internal/health"
	"github.com/nftlaunchme/rooswap-router/internal/logger"
	"github.com/nftlaunchme/rooswap-router/internal/metrics"
	"github.com/nftlaunchme/rooswap-router/internal/monolith"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

type cliArgs struct {
	tokenIn     string
	tokenOut    string
	amount      string
	slippageBps int64
	buildSwap   bool
	account     string
}

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	configPath := flag.String("config", "", "Path to configuration file")
	showVersion := flag.Bool("version", false, "Show version information")
	tokenIn := flag.String("in", "", "Input token (symbol or address)")
	tokenOut := flag.String("out", "", "Output token (symbol or address)")
	amount := flag.String("amount", "", "Input amount in whole token units")
	slippageBps := flag.Int64("slippage", 0, "Slippage tolerance in basis points")
	buildSwap := flag.Bool("build", false, "Build a ready-to-sign swap transaction")
	account := flag.String("account", "", "Sender address, required with -build")
	flag.Parse()

	if *showVersion {
		fmt.Printf("rooswap-router %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	args := cliArgs{
		tokenIn:     *tokenIn,
		tokenOut:    *tokenOut,
		amount:      *amount,
		slippageBps: *slippageBps,
		buildSwap:   *buildSwap,
		account:     *account,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Fprintf(os.Stderr, "received shutdown signal: %v\n", sig)
		cancel()
	}()

	if err := run(ctx, *configPath, args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string, args cliArgs) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logLevel := logger.LevelInfo
	switch cfg.App.LogLevel {
	case "debug":
		logLevel = logger.LevelDebug
	case "warn":
		logLevel = logger.LevelWarn
	case "error":
		logLevel = logger.LevelError
	}

	log := logger.New(os.Stderr, logLevel, cfg.App.Name, nil)
	log.Info(ctx, "starting rooswap router",
		"version", version,
		"environment", cfg.App.Environment,
	)

	var traceProvider apm.TraceProvider
	if cfg.Telemetry.Enabled {
		traceProvider = apm.NewTraceProvider(
			cfg.Telemetry.ServiceName,
			apm.WithProvider(apm.OTLPGRPCProvider, apm.ProviderConfig{
				ServiceName: cfg.Telemetry.ServiceName,
				Endpoint:    cfg.Telemetry.OTLPEndpoint,
				Headers:     cfg.Telemetry.OTLPHeaders,
			}, log),
		)
		log.Info(ctx, "tracing initialized", "endpoint", cfg.Telemetry.OTLPEndpoint)

		metrics.NewMetricProvider(
			metrics.WithServiceName(cfg.Telemetry.ServiceName),
			metrics.WithProviderConfig(metrics.NewPrometheusConfig()),
		)

		port := cfg.Telemetry.PrometheusPort
		if port == 0 {
			port = 9090
		}
		go metrics.ServePrometheusMetrics(metrics.WithPort(strconv.Itoa(port)))
		log.Info(ctx, "prometheus metrics server started", "port", port)
	}
	defer func() {
		if traceProvider != nil {
			traceProvider.Stop()
		}
	}()

	healthPort := cfg.Telemetry.HealthPort
	if healthPort == 0 {
		healthPort = 8081
	}
	healthServer := health.NewServer(healthPort, version)
	if err := healthServer.Start(); err != nil {
		log.Warn(ctx, "failed to start health server", "error", err)
		healthServer = nil
	} else {
		log.Info(ctx, "health server started", "port", healthPort)
		defer healthServer.Stop(ctx)
	}

	mono, err := monolith.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create monolith: %w", err)
	}
	defer mono.Close()

	// Blockchain first, routing depends on its eth client and gas oracle.
	modules := []monolith.Module{
		&blockchain.Module{},
		&routing.Module{},
	}

	if err := mono.RegisterModules(modules...); err != nil {
		return fmt.Errorf("failed to register modules: %w", err)
	}
	if err := mono.StartModules(ctx, modules...); err != nil {
		return fmt.Errorf("failed to start modules: %w", err)
	}

	if healthServer != nil {
		registerHealthChecks(healthServer, mono, cfg)
	}

	req, err := buildRequest(cfg, mono.AssetRegistry(), args)
	if err != nil {
		return err
	}

	router := routingDI.GetRouterService(mono.Services())

	if args.buildSwap {
		if !common.IsHexAddress(args.account) {
			return fmt.Errorf("-build requires a valid -account address")
		}
		tx, err := router.BuildSwapTransaction(ctx, req, common.HexToAddress(args.account))
		if err != nil {
			return err
		}
		return printJSON(swapView(tx))
	}

	quote, err := router.GetQuote(ctx, req)
	if err != nil {
		return err
	}
	return printJSON(quoteView(quote))
}

func registerHealthChecks(srv *health.Server, mono monolith.Monolith, cfg *config.Config) {
	srv.RegisterCheck("rpc", func(ctx context.Context) (bool, string) {
		if _, err := mono.EthClient().ChainID(ctx); err != nil {
			return false, err.Error()
		}
		return true, "connected"
	})

	if cfg.OpenOcean.Enabled {
		aggregator := routingDI.GetAggregatorClient(mono.Services())
		srv.RegisterCheck("aggregator", func(ctx context.Context) (bool, string) {
			if _, err := aggregator.GasPrice(ctx); err != nil {
				return false, err.Error()
			}
			return true, "reachable"
		})
	}
}

// buildRequest resolves the CLI token arguments against the asset registry
// and parses the whole-unit amount into raw units.
func buildRequest(cfg *config.Config, registry *asset.Registry, args cliArgs) (domain.QuoteRequest, error) {
	var req domain.QuoteRequest

	if args.tokenIn == "" || args.tokenOut == "" || args.amount == "" {
		return req, fmt.Errorf("-in, -out and -amount are required (see -h)")
	}

	tokenIn, nativeIn, err := resolveToken(cfg, registry, args.tokenIn)
	if err != nil {
		return req, fmt.Errorf("input token: %w", err)
	}
	tokenOut, nativeOut, err := resolveToken(cfg, registry, args.tokenOut)
	if err != nil {
		return req, fmt.Errorf("output token: %w", err)
	}

	amount, err := asset.ParseString(tokenIn, args.amount)
	if err != nil {
		return req, fmt.Errorf("invalid amount %q: %w", args.amount, err)
	}

	return domain.QuoteRequest{
		TokenIn:     tokenIn,
		TokenOut:    tokenOut,
		AmountIn:    amount.Raw(),
		SlippageBps: args.slippageBps,
		NativeIn:    nativeIn,
		NativeOut:   nativeOut,
	}, nil
}

// resolveToken accepts a symbol or a hex address. The native coin (by symbol
// or sentinel address) resolves to the wrapped token with the native flag set;
// quoting always runs against the wrapped representation.
func resolveToken(cfg *config.Config, registry *asset.Registry, s string) (*asset.Asset, bool, error) {
	wrapped := cfg.Chain.WrappedNativeHex()

	native := strings.EqualFold(s, cfg.Chain.NativeSymbol)
	if common.IsHexAddress(s) {
		addr := common.HexToAddress(s)
		if asset.IsNativePlaceholder(addr) {
			native = true
			addr = wrapped
		}
		a, ok := registry.GetToken(cfg.Chain.ChainID, addr)
		if !ok {
			return nil, false, fmt.Errorf("unknown token %s on chain %d", addr.Hex(), cfg.Chain.ChainID)
		}
		return a, native, nil
	}

	if native {
		a, ok := registry.GetToken(cfg.Chain.ChainID, wrapped)
		if !ok {
			return nil, false, fmt.Errorf("wrapped native token %s not registered", wrapped.Hex())
		}
		return a, true, nil
	}

	a, ok := registry.GetBySymbolAndChain(strings.ToUpper(s), cfg.Chain.ChainID)
	if !ok {
		return nil, false, fmt.Errorf("unknown token symbol %q on chain %d", s, cfg.Chain.ChainID)
	}
	return a, false, nil
}

type splitLegView struct {
	Dex       string `json:"dex"`
	Router    string `json:"router"`
	Percent   int    `json:"percent"`
	AmountOut string `json:"amountOut"`
	Impact    string `json:"priceImpact"`
	FeeTier   int64  `json:"feeTier,omitempty"`
}

type quoteViewJSON struct {
	Source       string            `json:"source"`
	InAmount     string            `json:"inAmount"`
	OutAmount    string            `json:"outAmount"`
	Price        string            `json:"price"`
	PriceImpact  string            `json:"priceImpact"`
	GasPriceWei  string            `json:"gasPriceWei,omitempty"`
	EstimatedGas uint64            `json:"estimatedGas,omitempty"`
	GasUSD       string            `json:"gasUSD"`
	AmountInUSD  string            `json:"amountInUSD"`
	AmountOutUSD string            `json:"amountOutUSD"`
	Router       string            `json:"router,omitempty"`
	Route        []domain.RouteHop `json:"route"`
	Splits       []splitLegView    `json:"splits,omitempty"`
	Timestamp    string            `json:"timestamp"`
}

type swapViewJSON struct {
	To           string `json:"to"`
	Data         string `json:"data"`
	Value        string `json:"value"`
	GasPriceWei  string `json:"gasPriceWei,omitempty"`
	GasLimit     uint64 `json:"gasLimit"`
	MinAmountOut string `json:"minAmountOut"`
	Deadline     string `json:"deadline,omitempty"`
}

func quoteView(q *domain.Quote) quoteViewJSON {
	view := quoteViewJSON{
		Source:       q.Source,
		InAmount:     q.InAmount.String(),
		OutAmount:    q.OutAmount.String(),
		Price:        q.Price.String(),
		PriceImpact:  q.PriceImpact.String(),
		EstimatedGas: q.EstimatedGas,
		GasUSD:       q.GasUSD.String(),
		AmountInUSD:  q.AmountInUSD.String(),
		AmountOutUSD: q.AmountOutUSD.String(),
		Timestamp:    q.Timestamp.UTC().Format(time.RFC3339),
	}
	if q.GasPriceWei != nil {
		view.GasPriceWei = q.GasPriceWei.String()
	}
	if (q.Router != common.Address{}) {
		view.Router = q.Router.Hex()
	}
	view.Route = append(view.Route, q.Route...)
	for _, l := range q.Splits {
		view.Splits = append(view.Splits, splitLegView{
			Dex:       l.DexName,
			Router:    l.Router.Hex(),
			Percent:   l.Percent,
			AmountOut: l.AmountOut.String(),
			Impact:    l.Impact.String(),
			FeeTier:   l.FeeTier,
		})
	}
	return view
}

func swapView(tx *domain.SwapTransaction) swapViewJSON {
	view := swapViewJSON{
		To:           tx.To.Hex(),
		Data:         "0x" + common.Bytes2Hex(tx.Data),
		GasLimit:     tx.GasLimit,
		MinAmountOut: tx.MinAmountOut.String(),
	}
	if tx.Value != nil {
		view.Value = tx.Value.String()
	} else {
		view.Value = "0"
	}
	if tx.GasPrice != nil {
		view.GasPriceWei = tx.GasPrice.String()
	}
	if tx.Deadline != nil {
		view.Deadline = tx.Deadline.String()
	}
	return view
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
