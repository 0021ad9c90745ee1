package prices

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/nftlaunchme/rooswap-router/internal/asset"
)

func TestTokenUSD(t *testing.T) {
	wcro := common.HexToAddress("0x5C7F8A570d578ED84E63fdFA7b1eE72dEae1AE23")
	oracle := NewStatic(decimal.RequireFromString("0.12"), wcro)

	ctx := context.Background()

	usdc := asset.NewToken(asset.ChainIDCronos, common.HexToAddress("0x00000000000000000000000000000000000000a1"), "USDC", "USD Coin", 6)
	got, err := oracle.TokenUSD(ctx, usdc)
	if err != nil {
		t.Fatalf("TokenUSD: %v", err)
	}
	if !got.Equal(decimal.NewFromInt(1)) {
		t.Errorf("USDC = %s, want 1", got)
	}

	wrapped := asset.NewToken(asset.ChainIDCronos, wcro, "WCRO", "Wrapped CRO", 18)
	got, _ = oracle.TokenUSD(ctx, wrapped)
	if !got.Equal(decimal.RequireFromString("0.12")) {
		t.Errorf("WCRO = %s, want 0.12", got)
	}

	unknown := asset.NewToken(asset.ChainIDCronos, common.HexToAddress("0x00000000000000000000000000000000000000a2"), "MEME", "Meme", 18)
	got, _ = oracle.TokenUSD(ctx, unknown)
	if !got.IsZero() {
		t.Errorf("unknown token = %s, want 0", got)
	}
}

func TestNativeUSD(t *testing.T) {
	oracle := NewStatic(decimal.RequireFromString("0.12"), common.Address{})
	got, err := oracle.NativeUSD(context.Background())
	if err != nil {
		t.Fatalf("NativeUSD: %v", err)
	}
	if !got.Equal(decimal.RequireFromString("0.12")) {
		t.Errorf("NativeUSD = %s, want 0.12", got)
	}
}
