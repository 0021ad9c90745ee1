// Package asset provides a type-safe model for crypto and fiat assets.
// On-chain quantities use big.Int; decimal.Decimal appears only at
// boundaries such as parsing and display.
package asset

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// AssetID uniquely identifies an asset by chain and contract address.
// For native coins the address is zero. Identity is the pair, never the
// symbol.
type AssetID struct {
	chainID uint64
	address common.Address
}

// NewNativeAssetID creates an AssetID for a chain's native coin.
func NewNativeAssetID(chainID uint64) AssetID {
	return AssetID{chainID: chainID}
}

// NewTokenAssetID creates an AssetID for an ERC20 token.
func NewTokenAssetID(chainID uint64, addr common.Address) AssetID {
	if addr == (common.Address{}) {
		panic("token address cannot be zero - use NewNativeAssetID for native coins")
	}
	return AssetID{chainID: chainID, address: addr}
}

// NewFiatAssetID creates an AssetID for a fiat currency. Chain ID 0 marks
// off-chain assets; the address is derived from the symbol for uniqueness.
func NewFiatAssetID(symbol string) AssetID {
	addr := common.BytesToAddress(common.RightPadBytes([]byte(symbol), 20))
	return AssetID{chainID: 0, address: addr}
}

// ChainID returns the chain ID (0 for fiat).
func (id AssetID) ChainID() uint64 { return id.chainID }

// Address returns the contract address (zero for native coins).
func (id AssetID) Address() common.Address { return id.address }

// IsNative reports whether this is a chain's native coin.
func (id AssetID) IsNative() bool {
	return id.chainID != 0 && id.address == (common.Address{})
}

// IsToken reports whether this is an ERC20 token.
func (id AssetID) IsToken() bool {
	return id.chainID != 0 && id.address != (common.Address{})
}

// IsFiat reports whether this is an off-chain fiat currency.
func (id AssetID) IsFiat() bool { return id.chainID == 0 }

func (id AssetID) String() string {
	if id.IsFiat() {
		return fmt.Sprintf("fiat:%s", id.address.Hex()[:10])
	}
	if id.IsNative() {
		return fmt.Sprintf("chain:%d/native", id.chainID)
	}
	return fmt.Sprintf("chain:%d/%s", id.chainID, id.address.Hex())
}

// Equals compares two AssetIDs.
func (id AssetID) Equals(other AssetID) bool {
	return id.chainID == other.chainID && id.address == other.address
}
