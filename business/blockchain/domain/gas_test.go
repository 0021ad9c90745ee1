package domain

import (
	"math/big"
	"testing"
)

func TestNewGasPrice(t *testing.T) {
	// 5 gwei
	p := NewGasPrice(big.NewInt(5_000_000_000))

	if p.Wei.Cmp(big.NewInt(5_000_000_000)) != 0 {
		t.Fatalf("wei = %s", p.Wei)
	}
	if p.Gwei() != 5.0 {
		t.Fatalf("gwei = %f, want 5", p.Gwei())
	}
}

func TestNewGasPriceDefensiveCopy(t *testing.T) {
	wei := big.NewInt(1_000_000_000)
	p := NewGasPrice(wei)

	wei.SetInt64(0)

	if p.Wei.Sign() == 0 {
		t.Fatal("GasPrice shares caller's big.Int")
	}
}

func TestNewGasEstimate(t *testing.T) {
	price := NewGasPrice(big.NewInt(5_000_000_000))
	est := NewGasEstimate(150_000, price)

	// 150000 * 5 gwei = 750_000 gwei = 7.5e14 wei
	want := new(big.Int).Mul(big.NewInt(150_000), big.NewInt(5_000_000_000))
	if est.TotalWei.Cmp(want) != 0 {
		t.Fatalf("total = %s, want %s", est.TotalWei, want)
	}
	if est.GasLimit != 150_000 {
		t.Fatalf("gas limit = %d", est.GasLimit)
	}
}
