package asset

import "github.com/ethereum/go-ethereum/common"

// Asset is the metadata of a crypto or fiat asset. Identity is the AssetID;
// the symbol is display metadata only.
type Asset struct {
	id       AssetID
	symbol   string
	name     string
	decimals uint8
}

// NewAsset creates an Asset.
func NewAsset(id AssetID, symbol string, decimals uint8) *Asset {
	if symbol == "" {
		panic("asset: empty symbol")
	}
	if decimals > 30 {
		panic("asset: suspicious decimals (>30)")
	}

	return &Asset{id: id, symbol: symbol, decimals: decimals}
}

// NewAssetWithName creates an Asset with a human-readable name.
func NewAssetWithName(id AssetID, symbol, name string, decimals uint8) *Asset {
	a := NewAsset(id, symbol, decimals)
	a.name = name
	return a
}

// NewToken creates an ERC20 token asset.
func NewToken(chainID uint64, address common.Address, symbol, name string, decimals uint8) *Asset {
	return NewAssetWithName(NewTokenAssetID(chainID, address), symbol, name, decimals)
}

// NewNative creates a native coin asset.
func NewNative(chainID uint64, symbol, name string, decimals uint8) *Asset {
	return NewAssetWithName(NewNativeAssetID(chainID), symbol, name, decimals)
}

// ID returns the unique identifier.
func (a *Asset) ID() AssetID { return a.id }

// Symbol returns the ticker symbol.
func (a *Asset) Symbol() string { return a.symbol }

// Name returns the human-readable name, falling back to the symbol.
func (a *Asset) Name() string {
	if a.name == "" {
		return a.symbol
	}
	return a.name
}

// Decimals returns the number of decimal places.
func (a *Asset) Decimals() uint8 { return a.decimals }

// ChainID returns the chain ID (0 for fiat).
func (a *Asset) ChainID() uint64 { return a.id.ChainID() }

// Address returns the contract address (zero for native coins).
func (a *Asset) Address() common.Address { return a.id.Address() }

// IsNative reports whether this is a native coin.
func (a *Asset) IsNative() bool { return a.id.IsNative() }

// IsToken reports whether this is an ERC20 token.
func (a *Asset) IsToken() bool { return a.id.IsToken() }

// IsFiat reports whether this is a fiat currency.
func (a *Asset) IsFiat() bool { return a.id.IsFiat() }

func (a *Asset) String() string { return a.symbol }

// Equals compares two Assets by ID.
func (a *Asset) Equals(other *Asset) bool {
	if a == nil || other == nil {
		return a == other
	}
	return a.id.Equals(other.id)
}
