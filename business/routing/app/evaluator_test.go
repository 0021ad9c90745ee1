package app

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/nftlaunchme/rooswap-router/business/routing/domain"
	"github.com/nftlaunchme/rooswap-router/internal/apperror"
)

func newTestEvaluator(quoter *fakeQuoter, gas *fakeGas, prices *fakePrices) *Evaluator {
	return NewEvaluator(quoter, gas, prices, decimal.NewFromInt(15), testLogger())
}

func TestEvaluateHappyPath(t *testing.T) {
	req := testRequest()
	dex := testDex("vvs", domain.KindV2)

	quoter := &fakeQuoter{quotes: map[string]*domain.RawQuote{
		"vvs": {
			AmountOut:  big.NewInt(990_000),
			SpotUnitIn: big.NewInt(1_000_000_000_000_000_000),
			SpotOut:    big.NewInt(1_000_000),
		},
	}}
	gas := &fakeGas{err: errors.New("rpc down")}

	e := newTestEvaluator(quoter, gas, &fakePrices{})
	got, err := e.Evaluate(context.Background(), dex, req)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	if got.AmountOut.Cmp(big.NewInt(990_000)) != 0 {
		t.Errorf("AmountOut = %s, want 990000", got.AmountOut)
	}
	// Gas price unavailable degrades to zero cost, never to rejection.
	if got.EffectiveOutput.Cmp(got.AmountOut) != 0 {
		t.Errorf("EffectiveOutput = %s, want %s", got.EffectiveOutput, got.AmountOut)
	}
	if want := decimal.NewFromInt(1); !got.PriceImpact.Equal(want) {
		t.Errorf("PriceImpact = %s, want 1", got.PriceImpact)
	}
}

func TestEvaluateChargesGasInOutputUnits(t *testing.T) {
	req := testRequest()
	dex := testDex("vvs", domain.KindV2)
	dex.GasEstimate = 100_000

	quoter := &fakeQuoter{quotes: map[string]*domain.RawQuote{
		"vvs": {
			AmountOut:  big.NewInt(1_000_000),
			SpotUnitIn: big.NewInt(1_000_000_000_000_000_000),
			SpotOut:    big.NewInt(1_000_000),
		},
	}}
	// 100k gas at 1000 gwei is 0.1 native, worth $0.01 at $0.10, which is
	// 10000 smallest units of a $1 six-decimal token.
	gas := &fakeGas{wei: big.NewInt(1_000_000_000_000)}
	prices := &fakePrices{
		native: decimal.RequireFromString("0.10"),
		tokens: map[common.Address]decimal.Decimal{
			req.TokenOut.Address(): decimal.NewFromInt(1),
		},
	}

	e := newTestEvaluator(quoter, gas, prices)
	got, err := e.Evaluate(context.Background(), dex, req)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	if got.GasCostOutUnits.Cmp(big.NewInt(10_000)) != 0 {
		t.Errorf("GasCostOutUnits = %s, want 10000", got.GasCostOutUnits)
	}
	if got.EffectiveOutput.Cmp(big.NewInt(990_000)) != 0 {
		t.Errorf("EffectiveOutput = %s, want 990000", got.EffectiveOutput)
	}
}

func TestEvaluateRejectsZeroOutput(t *testing.T) {
	req := testRequest()
	quoter := &fakeQuoter{quotes: map[string]*domain.RawQuote{
		"vvs": {
			AmountOut:  big.NewInt(0),
			SpotUnitIn: big.NewInt(1_000_000_000_000_000_000),
			SpotOut:    big.NewInt(1_000_000),
		},
	}}

	e := newTestEvaluator(quoter, &fakeGas{err: errors.New("down")}, &fakePrices{})
	_, err := e.Evaluate(context.Background(), testDex("vvs", domain.KindV2), req)
	if apperror.GetCode(err) != apperror.CodeInsufficientLiquidity {
		t.Fatalf("code = %s, want %s", apperror.GetCode(err), apperror.CodeInsufficientLiquidity)
	}
}

func TestEvaluateRejectsHighImpact(t *testing.T) {
	req := testRequest()
	quoter := &fakeQuoter{quotes: map[string]*domain.RawQuote{
		"vvs": {
			AmountOut:  big.NewInt(800_000),
			SpotUnitIn: big.NewInt(1_000_000_000_000_000_000),
			SpotOut:    big.NewInt(1_000_000),
		},
	}}

	e := newTestEvaluator(quoter, &fakeGas{err: errors.New("down")}, &fakePrices{})
	_, err := e.Evaluate(context.Background(), testDex("vvs", domain.KindV2), req)
	if apperror.GetCode(err) != apperror.CodePriceImpactTooHigh {
		t.Fatalf("code = %s, want %s", apperror.GetCode(err), apperror.CodePriceImpactTooHigh)
	}
}

func TestEvaluateRejectsGasAboveOutput(t *testing.T) {
	req := testRequest()
	dex := testDex("vvs", domain.KindV2)
	dex.GasEstimate = 100_000

	quoter := &fakeQuoter{quotes: map[string]*domain.RawQuote{
		"vvs": {
			AmountOut:  big.NewInt(5_000),
			SpotUnitIn: big.NewInt(1_000_000_000_000_000_000),
			SpotOut:    big.NewInt(5_000),
		},
	}}
	gas := &fakeGas{wei: big.NewInt(1_000_000_000_000)}
	prices := &fakePrices{
		native: decimal.RequireFromString("0.10"),
		tokens: map[common.Address]decimal.Decimal{
			req.TokenOut.Address(): decimal.NewFromInt(1),
		},
	}

	e := newTestEvaluator(quoter, gas, prices)
	_, err := e.Evaluate(context.Background(), dex, req)
	if apperror.GetCode(err) != apperror.CodeInvalidQuote {
		t.Fatalf("code = %s, want %s", apperror.GetCode(err), apperror.CodeInvalidQuote)
	}
}

func TestEvaluatePropagatesQuoterError(t *testing.T) {
	quoter := &fakeQuoter{errs: map[string]error{
		"vvs": apperror.New(apperror.CodeContractCallFailed),
	}}

	e := newTestEvaluator(quoter, &fakeGas{err: errors.New("down")}, &fakePrices{})
	_, err := e.Evaluate(context.Background(), testDex("vvs", domain.KindV2), testRequest())
	if apperror.GetCode(err) != apperror.CodeContractCallFailed {
		t.Fatalf("code = %s, want %s", apperror.GetCode(err), apperror.CodeContractCallFailed)
	}
}
