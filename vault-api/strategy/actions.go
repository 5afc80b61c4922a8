package strategy

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	contractabi "github.com/mirailabs-co/partnr-defai-evm/vault-api/chainio/abi"
	"github.com/mirailabs-co/partnr-defai-evm/vault-api/chainio/types"
)

const bpsDenominator = 10_000

// MaxUint256 is the unlimited approval amount.
var MaxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// DeployedAmount is amount minus the share held back in the vault, amount * reserveBps / 10000.
func DeployedAmount(amount *big.Int, reserveBps uint16) (*big.Int, error) {
	if reserveBps > bpsDenominator {
		return nil, fmt.Errorf("%w: %d", ErrInvalidReserve, reserveBps)
	}
	reserve := new(big.Int).Mul(amount, big.NewInt(int64(reserveBps)))
	reserve.Quo(reserve, big.NewInt(bpsDenominator))
	return new(big.Int).Sub(amount, reserve), nil
}

// ApproveMax grants spender unlimited allowance over asset.
func ApproveMax(asset, spender common.Address) (types.Execution, error) {
	return NewExecution(asset, contractabi.ERC20, "approve", spender, MaxUint256)
}

// NewExecution packs a call to one of the bundled contract interfaces.
func NewExecution(target common.Address, contract, method string, args ...interface{}) (types.Execution, error) {
	input, err := contractabi.Pack(contract, method, args...)
	if err != nil {
		return types.Execution{}, err
	}
	return types.Execution{Target: target, Params: input}, nil
}
