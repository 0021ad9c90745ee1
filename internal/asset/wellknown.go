package asset

import "github.com/ethereum/go-ethereum/common"

// Chain IDs
const (
	ChainIDCronos        = 25
	ChainIDCronosTestnet = 338
	ChainIDFiat          = 0
)

// NativePlaceholder is the sentinel address aggregator APIs use to denote
// the chain's native coin in token positions.
var NativePlaceholder = common.HexToAddress("0xEeeeeEeeeEeEeeEeEeEeeEEEeeeeEeeeeeeeEEeE")

// IsNativePlaceholder reports whether addr is the native coin sentinel.
func IsNativePlaceholder(addr common.Address) bool {
	return addr == NativePlaceholder
}

// Well-known token addresses on Cronos mainnet
var (
	AddrWCROCronos = common.HexToAddress("0x5C7F8A570d578ED84E63fdFA7b1eE72dEae1AE23")
	AddrUSDCCronos = common.HexToAddress("0xc21223249CA28397B4B6541dfFaEcC539BfF0c59")
	AddrUSDTCronos = common.HexToAddress("0x66e428c3f67a68878562e79A0234c1F83c208770")
	AddrWETHCronos = common.HexToAddress("0xe44Fd7fCb2b1581822D0c862B68222998a0c299a")
	AddrWBTCCronos = common.HexToAddress("0x062E66477Faf219F25D27dCED647BF57C3107d52")
)

// Well-known AssetIDs
var (
	IDCronosCRO  = NewNativeAssetID(ChainIDCronos)
	IDCronosWCRO = NewTokenAssetID(ChainIDCronos, AddrWCROCronos)
	IDCronosUSDC = NewTokenAssetID(ChainIDCronos, AddrUSDCCronos)
	IDCronosUSDT = NewTokenAssetID(ChainIDCronos, AddrUSDTCronos)
	IDCronosWETH = NewTokenAssetID(ChainIDCronos, AddrWETHCronos)
	IDCronosWBTC = NewTokenAssetID(ChainIDCronos, AddrWBTCCronos)

	IDUSD = NewFiatAssetID("USD")
)

// Well-known assets
var (
	CRO  = NewAssetWithName(IDCronosCRO, "CRO", "Cronos", 18)
	WCRO = NewAssetWithName(IDCronosWCRO, "WCRO", "Wrapped CRO", 18)
	USDC = NewAssetWithName(IDCronosUSDC, "USDC", "USD Coin", 6)
	USDT = NewAssetWithName(IDCronosUSDT, "USDT", "Tether USD", 6)
	WETH = NewAssetWithName(IDCronosWETH, "WETH", "Wrapped Ether", 18)
	WBTC = NewAssetWithName(IDCronosWBTC, "WBTC", "Wrapped Bitcoin", 8)

	USD = NewAssetWithName(IDUSD, "USD", "US Dollar", 2)
)

// DefaultRegistry returns a registry pre-populated with well-known Cronos
// assets plus USD.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register(CRO)
	r.Register(WCRO)
	r.Register(USDC)
	r.Register(USDT)
	r.Register(WETH)
	r.Register(WBTC)

	r.Register(USD)

	return r
}
