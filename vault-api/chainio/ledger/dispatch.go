package ledger

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	contractabi "github.com/mirailabs-co/partnr-defai-evm/vault-api/chainio/abi"
)

// MaxUint256 is the infinite allowance sentinel.
var MaxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// DecodeCall resolves the method of input against a bundled ABI and unpacks its arguments.
func DecodeCall(contractName string, input []byte) (*abi.Method, []interface{}, error) {
	if len(input) < 4 {
		return nil, nil, ErrShortInput
	}
	parsed, err := contractabi.GetContractABI(contractName)
	if err != nil {
		return nil, nil, err
	}
	method, err := parsed.MethodById(input[:4])
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %x", ErrUnknownMethod, input[:4])
	}
	args, err := method.Inputs.Unpack(input[4:])
	if err != nil {
		return nil, nil, fmt.Errorf("decode %s arguments: %w", method.Name, err)
	}
	return method, args, nil
}

func balanceOf(m map[common.Address]*big.Int, key common.Address) *big.Int {
	if v, ok := m[key]; ok {
		return v
	}
	return new(big.Int)
}

func cloneBalances(m map[common.Address]*big.Int) map[common.Address]*big.Int {
	out := make(map[common.Address]*big.Int, len(m))
	for k, v := range m {
		out[k] = new(big.Int).Set(v)
	}
	return out
}
