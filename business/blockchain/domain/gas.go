// Package domain contains the core domain types for the blockchain context.
package domain

import (
	"math/big"
	"time"
)

var weiPerGwei = big.NewInt(1_000_000_000)

// GasPrice is a gas price observation. Wei is the exact value; Gwei is for
// display and metrics only.
type GasPrice struct {
	Wei       *big.Int
	Timestamp time.Time
}

// NewGasPrice creates a GasPrice from wei.
func NewGasPrice(wei *big.Int) *GasPrice {
	return &GasPrice{
		Wei:       new(big.Int).Set(wei),
		Timestamp: time.Now(),
	}
}

// Gwei returns the price in gwei for display.
func (p *GasPrice) Gwei() float64 {
	gwei := new(big.Float).SetInt(p.Wei)
	gwei.Quo(gwei, new(big.Float).SetInt(weiPerGwei))
	f, _ := gwei.Float64()
	return f
}

// GasEstimate is the estimated gas cost of one transaction.
type GasEstimate struct {
	GasLimit uint64
	GasPrice *GasPrice
	TotalWei *big.Int
}

// NewGasEstimate computes the total cost for gasLimit units at price.
func NewGasEstimate(gasLimit uint64, price *GasPrice) *GasEstimate {
	return &GasEstimate{
		GasLimit: gasLimit,
		GasPrice: price,
		TotalWei: new(big.Int).Mul(price.Wei, new(big.Int).SetUint64(gasLimit)),
	}
}
