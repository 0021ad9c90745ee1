package app

import (
	"context"
	"io"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/nftlaunchme/rooswap-router/business/routing/domain"
	"github.com/nftlaunchme/rooswap-router/internal/asset"
	"github.com/nftlaunchme/rooswap-router/internal/logger"
)

func testLogger() logger.LoggerInterface {
	return logger.New(io.Discard, logger.LevelError, "test", nil)
}

func testToken(last byte, symbol string, decimals uint8) *asset.Asset {
	var addr common.Address
	addr[19] = last
	return asset.NewToken(asset.ChainIDCronos, addr, symbol, symbol, decimals)
}

// testRequest swaps 1 unit of an 18-decimal token for a 6-decimal one.
func testRequest() domain.QuoteRequest {
	return domain.QuoteRequest{
		TokenIn:     testToken(0x11, "AAA", 18),
		TokenOut:    testToken(0x22, "BBB", 6),
		AmountIn:    big.NewInt(1_000_000_000_000_000_000),
		SlippageBps: 50,
	}
}

func testDex(name string, kind domain.DexKind) domain.Dex {
	d := domain.Dex{
		Name:        name,
		Kind:        kind,
		Router:      common.HexToAddress("0x1000000000000000000000000000000000000001"),
		GasEstimate: 150_000,
	}
	if kind == domain.KindV3 {
		d.Quoter = common.HexToAddress("0x2000000000000000000000000000000000000002")
	} else {
		d.Factory = common.HexToAddress("0x3000000000000000000000000000000000000003")
	}
	return d
}

type fakeQuoter struct {
	mu     sync.Mutex
	quotes map[string]*domain.RawQuote
	errs   map[string]error
	calls  []string
}

func (f *fakeQuoter) QuoteExactIn(_ context.Context, dex domain.Dex, _ domain.QuoteRequest) (*domain.RawQuote, error) {
	f.mu.Lock()
	f.calls = append(f.calls, dex.Name)
	f.mu.Unlock()

	if err, ok := f.errs[dex.Name]; ok {
		return nil, err
	}
	return f.quotes[dex.Name], nil
}

type fakeGas struct {
	wei *big.Int
	err error
}

func (f *fakeGas) GasPriceWei(context.Context) (*big.Int, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.wei, nil
}

type fakePrices struct {
	native decimal.Decimal
	tokens map[common.Address]decimal.Decimal
	err    error
}

func (f *fakePrices) NativeUSD(context.Context) (decimal.Decimal, error) {
	if f.err != nil {
		return decimal.Zero, f.err
	}
	return f.native, nil
}

func (f *fakePrices) TokenUSD(_ context.Context, token *asset.Asset) (decimal.Decimal, error) {
	if f.err != nil {
		return decimal.Zero, f.err
	}
	return f.tokens[token.Address()], nil
}

type fakeAggregator struct {
	mu       sync.Mutex
	quote    *domain.AggregatorQuote
	quoteErr error
	swap     *domain.AggregatorSwap
	swapErr  error
	cancels  int
	lastReq  domain.QuoteRequest
	quotes   int
}

func (f *fakeAggregator) Quote(_ context.Context, req domain.QuoteRequest) (*domain.AggregatorQuote, error) {
	f.mu.Lock()
	f.lastReq = req
	f.quotes++
	f.mu.Unlock()
	return f.quote, f.quoteErr
}

func (f *fakeAggregator) GasPrice(context.Context) (*big.Int, error) {
	return big.NewInt(5_000_000_000), nil
}

func (f *fakeAggregator) SwapQuote(context.Context, domain.QuoteRequest, common.Address) (*domain.AggregatorSwap, error) {
	return f.swap, f.swapErr
}

func (f *fakeAggregator) TokenList(context.Context) ([]domain.TokenInfo, error) {
	return nil, nil
}

func (f *fakeAggregator) Balances(context.Context, common.Address, []common.Address) ([]domain.TokenBalance, error) {
	return nil, nil
}

func (f *fakeAggregator) CancelPending() {
	f.mu.Lock()
	f.cancels++
	f.mu.Unlock()
}

type fakeEncoder struct {
	lastV2 *V2SwapParams
	lastV3 *V3SwapParams
	err    error
}

func (f *fakeEncoder) EncodeV2Swap(p V2SwapParams) ([]byte, error) {
	f.lastV2 = &p
	return []byte{0x02, 0x02}, f.err
}

func (f *fakeEncoder) EncodeV3Swap(p V3SwapParams) ([]byte, error) {
	f.lastV3 = &p
	return []byte{0x03, 0x03}, f.err
}
