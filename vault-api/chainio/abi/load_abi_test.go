package abi

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetContractABI(t *testing.T) {
	for _, name := range []string{ERC20, MoneyMarket, Gateway, ERC1271} {
		parsed, err := GetContractABI(name)
		require.NoError(t, err, name)
		again, err := GetContractABI(name)
		require.NoError(t, err)
		assert.Same(t, parsed, again, "abi is cached")
	}

	_, err := GetContractABI("Unknown")
	assert.Error(t, err)
}

func TestPackTransfer(t *testing.T) {
	to := common.HexToAddress("0x1111111111111111111111111111111111111111")
	input, err := Pack(ERC20, "transfer", to, big.NewInt(5))
	require.NoError(t, err)
	// transfer(address,uint256)
	assert.Equal(t, []byte{0xa9, 0x05, 0x9c, 0xbb}, input[:4])
	assert.Len(t, input, 4+64)

	method, err := MustContractABI(ERC20).MethodById(input[:4])
	require.NoError(t, err)
	args, err := method.Inputs.Unpack(input[4:])
	require.NoError(t, err)
	assert.Equal(t, to, args[0])
	assert.Equal(t, big.NewInt(5), args[1])

	_, err = Pack(ERC20, "transfer", to)
	assert.Error(t, err)
}
