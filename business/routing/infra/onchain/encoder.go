package onchain

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"

	"github.com/nftlaunchme/rooswap-router/business/routing/app"
)

// Ensure Encoder implements SwapEncoder.
var _ app.SwapEncoder = (*Encoder)(nil)

// Encoder packs router calldata for direct swaps. The v2 function is
// picked by the native flags: native input pays the router in coin value,
// native output unwraps on the way out.
type Encoder struct {
	v2ABI abi.ABI
	v3ABI abi.ABI
}

func NewEncoder() (*Encoder, error) {
	v2ABI, err := abi.JSON(strings.NewReader(V2RouterABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse v2 router ABI: %w", err)
	}
	v3ABI, err := abi.JSON(strings.NewReader(V3RouterABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse v3 router ABI: %w", err)
	}
	return &Encoder{v2ABI: v2ABI, v3ABI: v3ABI}, nil
}

func (e *Encoder) EncodeV2Swap(p app.V2SwapParams) ([]byte, error) {
	switch {
	case p.NativeIn:
		return e.v2ABI.Pack("swapExactETHForTokens",
			p.AmountOutMin, p.Path, p.Recipient, p.Deadline)
	case p.NativeOut:
		return e.v2ABI.Pack("swapExactTokensForETH",
			p.AmountIn, p.AmountOutMin, p.Path, p.Recipient, p.Deadline)
	default:
		return e.v2ABI.Pack("swapExactTokensForTokens",
			p.AmountIn, p.AmountOutMin, p.Path, p.Recipient, p.Deadline)
	}
}

func (e *Encoder) EncodeV3Swap(p app.V3SwapParams) ([]byte, error) {
	return e.v3ABI.Pack("exactInputSingle", ExactInputSingleParams{
		TokenIn:           p.TokenIn,
		TokenOut:          p.TokenOut,
		Fee:               big.NewInt(p.FeeTier),
		Recipient:         p.Recipient,
		Deadline:          p.Deadline,
		AmountIn:          p.AmountIn,
		AmountOutMinimum:  p.AmountOutMin,
		SqrtPriceLimitX96: big.NewInt(0),
	})
}
