// Package blockchain implements the blockchain bounded context for chain
// node integration.
package blockchain

import (
	"context"
	"math/big"

	"github.com/nftlaunchme/rooswap-router/business/blockchain/app"
	blockchainDI "github.com/nftlaunchme/rooswap-router/business/blockchain/di"
	"github.com/nftlaunchme/rooswap-router/business/blockchain/infra/ethereum"
	"github.com/nftlaunchme/rooswap-router/internal/config"
	"github.com/nftlaunchme/rooswap-router/internal/di"
	"github.com/nftlaunchme/rooswap-router/internal/logger"
	"github.com/nftlaunchme/rooswap-router/internal/monolith"
)

// Module implements the blockchain bounded context.
type Module struct{}

// RegisterServices registers all blockchain services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, blockchainDI.GasOracle, func(sr di.ServiceRegistry) app.GasOracle {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		oracleCfg := ethereum.DefaultGasOracleConfig(cfg.Chain.HTTPURL)
		if cfg.Chain.MaxGasPriceGwei > 0 {
			maxWei := new(big.Float).Mul(
				big.NewFloat(cfg.Chain.MaxGasPriceGwei),
				big.NewFloat(1e9),
			)
			oracleCfg.MaxGasPrice, _ = maxWei.Int(nil)
		}

		oracle, err := ethereum.NewGasOracle(oracleCfg, log)
		if err != nil {
			panic("failed to create gas oracle: " + err.Error())
		}
		return oracle
	})

	di.RegisterToken(c, blockchainDI.BlockchainService, func(sr di.ServiceRegistry) *app.BlockchainService {
		return app.NewBlockchainService(blockchainDI.GetGasOracle(sr))
	})

	return nil
}

// Startup connects the gas oracle.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()

	oracle := blockchainDI.GetGasOracle(mono.Services())
	if connector, ok := oracle.(interface{ Connect(context.Context) error }); ok {
		if err := connector.Connect(ctx); err != nil {
			// Quotes degrade to configured gas estimates, so startup proceeds.
			log.Error(ctx, "failed to connect gas oracle", "error", err)
		}
	}

	log.Info(ctx, "blockchain module started")
	return nil
}
