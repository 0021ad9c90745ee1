package app

import (
	"context"

	"github.com/nftlaunchme/rooswap-router/business/blockchain/domain"
)

// BlockchainService coordinates chain-level queries for other contexts.
type BlockchainService struct {
	gasOracle GasOracle
}

func NewBlockchainService(gasOracle GasOracle) *BlockchainService {
	return &BlockchainService{gasOracle: gasOracle}
}

// GetGasPrice retrieves the current gas price.
func (s *BlockchainService) GetGasPrice(ctx context.Context) (*domain.GasPrice, error) {
	return s.gasOracle.GetGasPrice(ctx)
}

// EstimateGas estimates gas for calldata against a contract.
func (s *BlockchainService) EstimateGas(ctx context.Context, data []byte, to string) (uint64, error) {
	return s.gasOracle.EstimateGas(ctx, data, to)
}

// GetGasEstimate returns the full cost estimate for gasLimit units at the
// current price.
func (s *BlockchainService) GetGasEstimate(ctx context.Context, gasLimit uint64) (*domain.GasEstimate, error) {
	price, err := s.gasOracle.GetGasPrice(ctx)
	if err != nil {
		return nil, err
	}
	return domain.NewGasEstimate(gasLimit, price), nil
}
