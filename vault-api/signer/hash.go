package signer

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/mirailabs-co/partnr-defai-evm/vault-api/chainio/types"
)

var feeListArgs = func() abi.Arguments {
	feeList, err := abi.NewType("tuple[]", "", []abi.ArgumentMarshaling{
		{Name: "feeType", Type: "uint8"},
		{Name: "amount", Type: "uint256"},
		{Name: "receiver", Type: "address"},
	})
	if err != nil {
		panic(err)
	}
	return abi.Arguments{{Type: feeList}}
}()

type feeTuple struct {
	FeeType  uint8
	Amount   *big.Int
	Receiver common.Address
}

// HashFees is keccak256(abi.encode(fees)) over (uint8 feeType, uint256 amount, address receiver)[].
func HashFees(fees []types.Fee) (common.Hash, error) {
	tuples := make([]feeTuple, len(fees))
	for i, fee := range fees {
		amount := fee.Amount
		if amount == nil {
			amount = new(big.Int)
		}
		if amount.Sign() < 0 {
			return common.Hash{}, fmt.Errorf("fee %d: negative amount", i)
		}
		tuples[i] = feeTuple{FeeType: uint8(fee.FeeType), Amount: amount, Receiver: fee.Receiver}
	}
	encoded, err := feeListArgs.Pack(tuples)
	if err != nil {
		return common.Hash{}, fmt.Errorf("encode fees: %w", err)
	}
	return crypto.Keccak256Hash(encoded), nil
}

// HashTargets is keccak256 over the targets, each left padded to 32 bytes.
func HashTargets(actions []types.Execution) common.Hash {
	packed := make([]byte, 0, 32*len(actions))
	for _, action := range actions {
		packed = append(packed, common.LeftPadBytes(action.Target.Bytes(), 32)...)
	}
	return crypto.Keccak256Hash(packed)
}

// HashParams is keccak256 over the concatenated keccak256 of each payload.
func HashParams(actions []types.Execution) common.Hash {
	packed := make([]byte, 0, 32*len(actions))
	for _, action := range actions {
		packed = append(packed, crypto.Keccak256(action.Params)...)
	}
	return crypto.Keccak256Hash(packed)
}

// NewWithdrawMessage hashes fees into the message.
func NewWithdrawMessage(amount *big.Int, receiver common.Address, fees []types.Fee) (WithdrawMessage, error) {
	feesHash, err := HashFees(fees)
	if err != nil {
		return WithdrawMessage{}, err
	}
	return WithdrawMessage{Amount: amount, Receiver: receiver, FeesHash: feesHash}, nil
}

func NewExecuteMessage(vault common.Address, actions []types.Execution) ExecuteMessage {
	return ExecuteMessage{Vault: vault, TargetsHash: HashTargets(actions), ParamsHash: HashParams(actions)}
}

func NewClaimMessage(requestID types.RequestID, receiver, intermediateWallet common.Address, totalAmount *big.Int, fees []types.Fee) (ClaimMessage, error) {
	feesHash, err := HashFees(fees)
	if err != nil {
		return ClaimMessage{}, err
	}
	return ClaimMessage{
		RequestID:          requestID,
		Receiver:           receiver,
		IntermediateWallet: intermediateWallet,
		TotalAmount:        totalAmount,
		FeesHash:           feesHash,
	}, nil
}
