// Package routing implements the route aggregation bounded context: it
// quotes venues and the aggregator, evaluates and splits routes, and
// builds swap transactions.
package routing

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"

	blockchainApp "github.com/nftlaunchme/rooswap-router/business/blockchain/app"
	blockchainDI "github.com/nftlaunchme/rooswap-router/business/blockchain/di"
	"github.com/nftlaunchme/rooswap-router/business/routing/app"
	routingDI "github.com/nftlaunchme/rooswap-router/business/routing/di"
	"github.com/nftlaunchme/rooswap-router/business/routing/domain"
	"github.com/nftlaunchme/rooswap-router/business/routing/infra/onchain"
	"github.com/nftlaunchme/rooswap-router/business/routing/infra/openocean"
	"github.com/nftlaunchme/rooswap-router/business/routing/infra/prices"
	"github.com/nftlaunchme/rooswap-router/internal/asset"
	"github.com/nftlaunchme/rooswap-router/internal/cache"
	"github.com/nftlaunchme/rooswap-router/internal/config"
	"github.com/nftlaunchme/rooswap-router/internal/di"
	"github.com/nftlaunchme/rooswap-router/internal/logger"
	"github.com/nftlaunchme/rooswap-router/internal/monolith"
)

// Module implements the routing bounded context.
type Module struct{}

// RegisterServices registers all routing services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, routingDI.DexQuoter, func(sr di.ServiceRegistry) app.DexQuoter {
		client := sr.Get("ethClient").(*ethclient.Client)
		log := sr.Get("logger").(logger.LoggerInterface)

		quoter, err := onchain.NewQuoter(client, log)
		if err != nil {
			panic("failed to create onchain quoter: " + err.Error())
		}
		return quoter
	})

	di.RegisterToken(c, routingDI.SwapEncoder, func(sr di.ServiceRegistry) app.SwapEncoder {
		encoder, err := onchain.NewEncoder()
		if err != nil {
			panic("failed to create swap encoder: " + err.Error())
		}
		return encoder
	})

	di.RegisterToken(c, routingDI.PriceOracle, func(sr di.ServiceRegistry) app.PriceOracle {
		cfg := sr.Get("config").(*config.Config)
		return prices.NewStatic(cfg.Chain.NativeUSDFallbackDecimal(), cfg.Chain.WrappedNativeHex())
	})

	di.RegisterToken(c, routingDI.GasOracle, func(sr di.ServiceRegistry) app.GasOracle {
		return gasOracleAdapter{svc: blockchainDI.GetBlockchainService(sr)}
	})

	di.RegisterToken(c, routingDI.AggregatorClient, func(sr di.ServiceRegistry) app.AggregatorClient {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		client, err := openocean.New(cfg.OpenOcean, log)
		if err != nil {
			panic("failed to create aggregator client: " + err.Error())
		}
		return client
	})

	di.RegisterToken(c, routingDI.RouterService, func(sr di.ServiceRegistry) *app.RouterService {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		evaluator := app.NewEvaluator(
			routingDI.GetDexQuoter(sr),
			routingDI.GetGasOracle(sr),
			routingDI.GetPriceOracle(sr),
			cfg.Routing.MaxPriceImpactDecimal(),
			log,
		)

		fetcher := app.NewBatchedFetcher(
			evaluator,
			cache.New[string, domain.SourceResult](time.Minute),
			app.BatchedFetcherConfig{
				BatchSize:  cfg.Routing.BatchSize,
				BatchDelay: cfg.Routing.BatchDelay,
				CacheTTL:   cfg.Routing.CacheTTL,
			},
			log,
		)

		splitter := app.NewSplitter(app.SplitterConfig{
			CandidateImpactPct: cfg.Routing.SplitCandidateImpactDecimal(),
			MaxImpactPct:       cfg.Routing.MaxPriceImpactDecimal(),
			MinImprovementBps:  int64(cfg.Routing.MinOutputImprovementPct * 100),
		})

		selector := app.NewSelector(app.SelectorConfig{
			MaxImpactPct:    cfg.Routing.MaxPriceImpactDecimal(),
			MinOutputUSD:    cfg.Routing.MinOutputUSDDecimal(),
			MinLiquidityUSD: cfg.Routing.MinLiquidityUSDDecimal(),
		}, log)

		var aggregator app.AggregatorClient
		if cfg.OpenOcean.Enabled {
			aggregator = routingDI.GetAggregatorClient(sr)
		}

		return app.NewRouterService(
			dexesFromConfig(cfg),
			fetcher,
			splitter,
			selector,
			aggregator,
			routingDI.GetGasOracle(sr),
			routingDI.GetPriceOracle(sr),
			routingDI.GetSwapEncoder(sr),
			app.RouterServiceConfig{
				SlippageBps:     cfg.Routing.SlippageBps,
				DeadlineMinutes: cfg.Routing.DeadlineMinutes,
			},
			log,
		)
	})

	return nil
}

// Startup warms the asset registry from the aggregator's token list.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()
	cfg := mono.Config()

	if cfg.OpenOcean.Enabled {
		client := routingDI.GetAggregatorClient(mono.Services())
		tokens, err := client.TokenList(ctx)
		if err != nil {
			// Static registry entries still cover the well-known tokens.
			log.Warn(ctx, "failed to fetch aggregator token list", "error", err)
		} else {
			registry := mono.AssetRegistry()
			added := 0
			for _, t := range tokens {
				// The static table already holds the well-known tokens.
				if _, exists := registry.GetToken(cfg.Chain.ChainID, t.Address); exists {
					continue
				}
				registry.Register(asset.NewToken(cfg.Chain.ChainID, t.Address, t.Symbol, t.Name, t.Decimals))
				added++
			}
			log.Info(ctx, "token registry warmed", "tokens", added)
		}
	}

	log.Info(ctx, "routing module started", "venues", len(dexesFromConfig(cfg)))
	return nil
}

// gasOracleAdapter narrows the blockchain context's service to the gas
// price read the routing context needs.
type gasOracleAdapter struct {
	svc *blockchainApp.BlockchainService
}

func (a gasOracleAdapter) GasPriceWei(ctx context.Context) (*big.Int, error) {
	price, err := a.svc.GetGasPrice(ctx)
	if err != nil {
		return nil, err
	}
	return price.Wei, nil
}

func dexesFromConfig(cfg *config.Config) []domain.Dex {
	dexes := make([]domain.Dex, 0, len(cfg.Dexes))
	for _, d := range cfg.Dexes {
		dexes = append(dexes, domain.Dex{
			Name:        d.Name,
			Kind:        domain.DexKind(d.Kind),
			Router:      d.RouterHex(),
			Factory:     d.FactoryHex(),
			Quoter:      d.QuoterHex(),
			GasEstimate: d.GasEstimate,
		})
	}
	return dexes
}
