// Package di contains dependency injection tokens for the routing context.
package di

import (
	"github.com/nftlaunchme/rooswap-router/business/routing/app"
	"github.com/nftlaunchme/rooswap-router/internal/di"
)

// Public service tokens - exposed to other modules
var (
	RouterService = di.NewToken[*app.RouterService]("routing.RouterService")
)

// Private dependency tokens - internal to routing module
var (
	DexQuoter        = di.NewToken[app.DexQuoter]("routing:dexQuoter")
	SwapEncoder      = di.NewToken[app.SwapEncoder]("routing:swapEncoder")
	PriceOracle      = di.NewToken[app.PriceOracle]("routing:priceOracle")
	GasOracle        = di.NewToken[app.GasOracle]("routing:gasOracle")
	AggregatorClient = di.NewToken[app.AggregatorClient]("routing:aggregatorClient")
)

// Helper functions for type-safe access
func GetRouterService(c di.ServiceRegistry) *app.RouterService {
	return di.GetToken(c, RouterService)
}

func GetDexQuoter(c di.ServiceRegistry) app.DexQuoter {
	return di.GetToken(c, DexQuoter)
}

func GetSwapEncoder(c di.ServiceRegistry) app.SwapEncoder {
	return di.GetToken(c, SwapEncoder)
}

func GetPriceOracle(c di.ServiceRegistry) app.PriceOracle {
	return di.GetToken(c, PriceOracle)
}

func GetGasOracle(c di.ServiceRegistry) app.GasOracle {
	return di.GetToken(c, GasOracle)
}

func GetAggregatorClient(c di.ServiceRegistry) app.AggregatorClient {
	return di.GetToken(c, AggregatorClient)
}
