// Package domain contains the core domain types for the routing context.
package domain

import "github.com/ethereum/go-ethereum/common"

// DexKind distinguishes constant-product routers from concentrated
// liquidity ones.
type DexKind string

const (
	KindV2 DexKind = "v2"
	KindV3 DexKind = "v3"
)

// Dex describes one on-chain venue.
type Dex struct {
	Name        string
	Kind        DexKind
	Router      common.Address
	Factory     common.Address
	Quoter      common.Address
	GasEstimate uint64
}

// CanQuoteDirect reports whether the venue has the contracts needed for
// direct on-chain quoting: a factory for v2, a quoter for v3.
func (d Dex) CanQuoteDirect() bool {
	switch d.Kind {
	case KindV2:
		return d.Factory != (common.Address{})
	case KindV3:
		return d.Quoter != (common.Address{})
	}
	return false
}
