package openocean

import (
	"context"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/nftlaunchme/rooswap-router/business/routing/domain"
	"github.com/nftlaunchme/rooswap-router/internal/apperror"
	"github.com/nftlaunchme/rooswap-router/internal/asset"
	"github.com/nftlaunchme/rooswap-router/internal/config"
	"github.com/nftlaunchme/rooswap-router/internal/logger"
)

func testClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := New(config.OpenOceanConfig{
		BaseURL:           baseURL,
		ChainName:         "cronos",
		ReferrerFeePct:    0.05,
		RequestTimeout:    5 * time.Second,
		RequestsPerSecond: 100,
	}, logger.New(io.Discard, logger.LevelError, "test", nil))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func testQuoteRequest() domain.QuoteRequest {
	var in, out common.Address
	in[19] = 0x11
	out[19] = 0x22
	return domain.QuoteRequest{
		TokenIn:     asset.NewToken(asset.ChainIDCronos, in, "AAA", "AAA", 18),
		TokenOut:    asset.NewToken(asset.ChainIDCronos, out, "BBB", "BBB", 6),
		AmountIn:    big.NewInt(1_000_000_000_000_000_000),
		SlippageBps: 50,
	}
}

const quotePayload = `{
	"code": 200,
	"data": {
		"inToken": {"address": "0x0000000000000000000000000000000000000011", "symbol": "AAA", "decimals": 18, "usd": "1.00"},
		"outToken": {"address": "0x0000000000000000000000000000000000000022", "symbol": "BBB", "decimals": 6, "usd": "0.99"},
		"inAmount": "1000000000000000000",
		"outAmount": "995000",
		"estimatedGas": 210000,
		"price_impact": "0.42%",
		"route": [
			{"dexName": "vvs", "percent": 70},
			{"dexName": "mmf", "percent": 30, "hasFeeOnTransfer": true, "feeOnTransferAmount": "100"}
		]
	}
}`

func quoteServer(t *testing.T, gasStatus int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/cronos/gasPrice", func(w http.ResponseWriter, r *http.Request) {
		if gasStatus != http.StatusOK {
			w.WriteHeader(gasStatus)
			return
		}
		w.Write([]byte(`{"code": 200, "data": {"standard": 4000}}`))
	})
	mux.HandleFunc("/cronos/quote", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(quotePayload))
	})
	return httptest.NewServer(mux)
}

func TestQuote(t *testing.T) {
	srv := quoteServer(t, http.StatusOK)
	defer srv.Close()

	c := testClient(t, srv.URL)
	got, err := c.Quote(context.Background(), testQuoteRequest())
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}

	if got.OutAmount.Cmp(big.NewInt(995_000)) != 0 {
		t.Errorf("OutAmount = %s, want 995000", got.OutAmount)
	}
	if want := decimal.RequireFromString("0.42"); !got.PriceImpact.Equal(want) {
		t.Errorf("PriceImpact = %s, want %s", got.PriceImpact, want)
	}
	if !got.OutTokenUSD.Equal(decimal.RequireFromString("0.99")) {
		t.Errorf("OutTokenUSD = %s, want 0.99", got.OutTokenUSD)
	}
	if len(got.Route) != 2 {
		t.Fatalf("Route = %+v, want 2 hops", got.Route)
	}
	if got.Route[0].DexName != "vvs" || got.Route[0].Percent != 70 {
		t.Errorf("Route[0] = %+v, want vvs 70%%", got.Route[0])
	}
	if !got.Route[1].HasFeeOnTransfer || got.Route[1].FeeOnTransferAmount != "100" {
		t.Errorf("Route[1] = %+v, want fee-on-transfer hop", got.Route[1])
	}
	if got.EstimatedGas != 210_000 {
		t.Errorf("EstimatedGas = %d, want 210000", got.EstimatedGas)
	}
}

func TestQuoteUsesGasFallback(t *testing.T) {
	var gasParam string
	mux := http.NewServeMux()
	mux.HandleFunc("/cronos/gasPrice", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	mux.HandleFunc("/cronos/quote", func(w http.ResponseWriter, r *http.Request) {
		gasParam = r.URL.Query().Get("gasPrice")
		w.Write([]byte(quotePayload))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := testClient(t, srv.URL)
	if _, err := c.Quote(context.Background(), testQuoteRequest()); err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if gasParam != "5" {
		t.Errorf("gasPrice param = %q, want fallback 5", gasParam)
	}
}

func TestQuoteEnvelopeFailureCode(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/cronos/gasPrice", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code": 200, "data": {"standard": 4000}}`))
	})
	mux.HandleFunc("/cronos/quote", func(w http.ResponseWriter, r *http.Request) {
		// HTTP 200 but an application-level failure.
		w.Write([]byte(`{"code": 500, "message": "insufficient liquidity"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := testClient(t, srv.URL)
	_, err := c.Quote(context.Background(), testQuoteRequest())
	if apperror.GetCode(err) != apperror.CodeAggregatorAPIError {
		t.Fatalf("code = %s, want %s", apperror.GetCode(err), apperror.CodeAggregatorAPIError)
	}
}

func TestQuoteMalformedBody(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/cronos/gasPrice", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code": 200, "data": {"standard": 4000}}`))
	})
	mux.HandleFunc("/cronos/quote", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>gateway error</html>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := testClient(t, srv.URL)
	_, err := c.Quote(context.Background(), testQuoteRequest())
	if apperror.GetCode(err) != apperror.CodeAggregatorBadEnvelope {
		t.Fatalf("code = %s, want %s", apperror.GetCode(err), apperror.CodeAggregatorBadEnvelope)
	}
}

func TestQuoteRateLimited(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/cronos/gasPrice", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code": 200, "data": {"standard": 4000}}`))
	})
	mux.HandleFunc("/cronos/quote", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := testClient(t, srv.URL)
	_, err := c.Quote(context.Background(), testQuoteRequest())
	if apperror.GetCode(err) != apperror.CodeAggregatorRateLimited {
		t.Fatalf("code = %s, want %s", apperror.GetCode(err), apperror.CodeAggregatorRateLimited)
	}
}

func TestCancelPendingAbortsInflight(t *testing.T) {
	started := make(chan struct{})
	mux := http.NewServeMux()
	mux.HandleFunc("/cronos/gasPrice", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code": 200, "data": {"standard": 4000}}`))
	})
	mux.HandleFunc("/cronos/quote", func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-r.Context().Done()
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := testClient(t, srv.URL)

	errCh := make(chan error, 1)
	go func() {
		_, err := c.Quote(context.Background(), testQuoteRequest())
		errCh <- err
	}()

	<-started
	c.CancelPending()

	select {
	case err := <-errCh:
		if err == nil {
			t.Fatal("Quote should fail after cancellation")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Quote did not return after cancellation")
	}
}

func TestSwapQuote(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/cronos/gasPrice", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code": 200, "data": {"standard": 4000}}`))
	})
	mux.HandleFunc("/cronos/swap_quote", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("account"); got == "" {
			t.Error("account param missing")
		}
		w.Write([]byte(`{
			"code": 200,
			"data": {
				"to": "0x00000000000000000000000000000000000000cc",
				"data": "0xdeadbeef",
				"value": "0",
				"estimatedGas": 250000,
				"minOutAmount": "990000"
			}
		}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := testClient(t, srv.URL)
	account := common.HexToAddress("0x00000000000000000000000000000000000000aa")

	got, err := c.SwapQuote(context.Background(), testQuoteRequest(), account)
	if err != nil {
		t.Fatalf("SwapQuote: %v", err)
	}

	if got.To != common.HexToAddress("0x00000000000000000000000000000000000000cc") {
		t.Errorf("To = %s", got.To)
	}
	if len(got.Data) != 4 {
		t.Errorf("Data = %x, want 4 bytes", got.Data)
	}
	if got.MinOutAmount.Cmp(big.NewInt(990_000)) != 0 {
		t.Errorf("MinOutAmount = %s, want 990000", got.MinOutAmount)
	}
}

func TestGasPriceConvertsToWei(t *testing.T) {
	srv := quoteServer(t, http.StatusOK)
	defer srv.Close()

	c := testClient(t, srv.URL)
	got, err := c.GasPrice(context.Background())
	if err != nil {
		t.Fatalf("GasPrice: %v", err)
	}

	want := new(big.Int).Mul(big.NewInt(4000), big.NewInt(1_000_000_000))
	if got.Cmp(want) != 0 {
		t.Errorf("GasPrice = %s, want %s", got, want)
	}
}
