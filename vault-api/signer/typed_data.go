package signer

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	ethmath "github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	"github.com/mirailabs-co/partnr-defai-evm/vault-api/chainio/types"
)

const (
	DomainName    = "PartnrVault"
	DomainVersion = "1"
)

// Field order of every type below is part of the protocol; reordering changes every digest.
var typedDataTypes = apitypes.Types{
	"EIP712Domain": {
		{Name: "name", Type: "string"},
		{Name: "version", Type: "string"},
		{Name: "chainId", Type: "uint256"},
		{Name: "verifyingContract", Type: "address"},
	},
	"Withdraw": {
		{Name: "amount", Type: "uint256"},
		{Name: "receiver", Type: "address"},
		{Name: "feesHash", Type: "bytes32"},
		{Name: "deadline", Type: "uint256"},
	},
	"Execute": {
		{Name: "vault", Type: "address"},
		{Name: "targetsHash", Type: "bytes32"},
		{Name: "paramsHash", Type: "bytes32"},
		{Name: "deadline", Type: "uint256"},
	},
	"RequestWithdraw": {
		{Name: "requestId", Type: "bytes16"},
		{Name: "deadline", Type: "uint256"},
	},
	"Claim": {
		{Name: "requestId", Type: "bytes16"},
		{Name: "receiver", Type: "address"},
		{Name: "intermediateWallet", Type: "address"},
		{Name: "totalAmount", Type: "uint256"},
		{Name: "feesHash", Type: "bytes32"},
		{Name: "deadline", Type: "uint256"},
	},
}

// Domain binds digests to one vault on one chain.
type Domain struct {
	ChainID           *big.Int
	VerifyingContract common.Address
}

func NewDomain(chainID *big.Int, vault common.Address) Domain {
	return Domain{ChainID: new(big.Int).Set(chainID), VerifyingContract: vault}
}

func (d Domain) typed() apitypes.TypedDataDomain {
	return apitypes.TypedDataDomain{
		Name:              DomainName,
		Version:           DomainVersion,
		ChainId:           (*ethmath.HexOrDecimal256)(new(big.Int).Set(d.ChainID)),
		VerifyingContract: d.VerifyingContract.Hex(),
	}
}

// Separator is the EIP-712 domain separator.
func (d Domain) Separator() (common.Hash, error) {
	td := apitypes.TypedData{Types: typedDataTypes, Domain: d.typed()}
	sep, err := td.HashStruct("EIP712Domain", td.Domain.Map())
	if err != nil {
		return common.Hash{}, fmt.Errorf("hash domain: %w", err)
	}
	return common.BytesToHash(sep), nil
}

// Message is one authorized action. Deadline is appended when hashing.
type Message interface {
	PrimaryType() string
	fields() apitypes.TypedDataMessage
}

type WithdrawMessage struct {
	Amount   *big.Int
	Receiver common.Address
	FeesHash common.Hash
}

func (WithdrawMessage) PrimaryType() string { return "Withdraw" }

func (m WithdrawMessage) fields() apitypes.TypedDataMessage {
	return apitypes.TypedDataMessage{
		"amount":   uintString(m.Amount),
		"receiver": m.Receiver.Hex(),
		"feesHash": m.FeesHash.Bytes(),
	}
}

type ExecuteMessage struct {
	Vault       common.Address
	TargetsHash common.Hash
	ParamsHash  common.Hash
}

func (ExecuteMessage) PrimaryType() string { return "Execute" }

func (m ExecuteMessage) fields() apitypes.TypedDataMessage {
	return apitypes.TypedDataMessage{
		"vault":       m.Vault.Hex(),
		"targetsHash": m.TargetsHash.Bytes(),
		"paramsHash":  m.ParamsHash.Bytes(),
	}
}

type RequestWithdrawMessage struct {
	RequestID types.RequestID
}

func (RequestWithdrawMessage) PrimaryType() string { return "RequestWithdraw" }

func (m RequestWithdrawMessage) fields() apitypes.TypedDataMessage {
	return apitypes.TypedDataMessage{
		"requestId": m.RequestID[:],
	}
}

type ClaimMessage struct {
	RequestID          types.RequestID
	Receiver           common.Address
	IntermediateWallet common.Address
	TotalAmount        *big.Int
	FeesHash           common.Hash
}

func (ClaimMessage) PrimaryType() string { return "Claim" }

func (m ClaimMessage) fields() apitypes.TypedDataMessage {
	return apitypes.TypedDataMessage{
		"requestId":          m.RequestID[:],
		"receiver":           m.Receiver.Hex(),
		"intermediateWallet": m.IntermediateWallet.Hex(),
		"totalAmount":        uintString(m.TotalAmount),
		"feesHash":           m.FeesHash.Bytes(),
	}
}

// TypedData renders msg with deadline as an EIP-712 document, e.g. for eth_signTypedData_v4.
func (d Domain) TypedData(msg Message, deadline *big.Int) apitypes.TypedData {
	message := msg.fields()
	message["deadline"] = uintString(deadline)
	return apitypes.TypedData{
		Types:       typedDataTypes,
		PrimaryType: msg.PrimaryType(),
		Domain:      d.typed(),
		Message:     message,
	}
}

// StructHash is the hash of msg alone, before domain binding.
func (d Domain) StructHash(msg Message, deadline *big.Int) (common.Hash, error) {
	td := d.TypedData(msg, deadline)
	h, err := td.HashStruct(td.PrimaryType, td.Message)
	if err != nil {
		return common.Hash{}, fmt.Errorf("hash %s: %w", td.PrimaryType, err)
	}
	return common.BytesToHash(h), nil
}

// Digest is keccak256(0x19 || 0x01 || separator || structHash).
func (d Domain) Digest(msg Message, deadline *big.Int) (common.Hash, error) {
	if deadline == nil || deadline.Sign() < 0 {
		return common.Hash{}, types.ErrDeadlineOutOfRange
	}
	hash, _, err := apitypes.TypedDataAndHash(d.TypedData(msg, deadline))
	if err != nil {
		return common.Hash{}, fmt.Errorf("digest %s: %w", msg.PrimaryType(), err)
	}
	return common.BytesToHash(hash), nil
}

func uintString(x *big.Int) string {
	if x == nil {
		return "0"
	}
	return x.String()
}
