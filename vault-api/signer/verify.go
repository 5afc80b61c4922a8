package signer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	contractabi "github.com/mirailabs-co/partnr-defai-evm/vault-api/chainio/abi"
	"github.com/mirailabs-co/partnr-defai-evm/vault-api/chainio/types"
)

var (
	ErrSignatureExpired = errors.New("signature expired")
	ErrSignatureInvalid = errors.New("invalid signature")
)

// ERC1271MagicValue is returned by isValidSignature on acceptance.
var ERC1271MagicValue = [4]byte{0x16, 0x26, 0xba, 0x7e}

// Chain is what verification needs from the host: code presence and read-only calls.
type Chain interface {
	HasCode(addr common.Address) bool
	StaticCall(ctx context.Context, caller, target common.Address, input []byte) ([]byte, error)
}

// CheckDeadline accepts deadline == now.
func CheckDeadline(deadline *big.Int, now uint64) error {
	if deadline == nil {
		return fmt.Errorf("%w: missing deadline", ErrSignatureInvalid)
	}
	if deadline.Cmp(new(big.Int).SetUint64(now)) < 0 {
		return fmt.Errorf("%w: deadline %s before %d", ErrSignatureExpired, deadline, now)
	}
	return nil
}

// Recover returns the individual key that produced cred over digest.
func Recover(digest common.Hash, cred types.Credential) (common.Address, error) {
	if cred.V != 27 && cred.V != 28 {
		return common.Address{}, fmt.Errorf("%w: v=%d", ErrSignatureInvalid, cred.V)
	}
	r := new(big.Int).SetBytes(cred.R[:])
	s := new(big.Int).SetBytes(cred.S[:])
	if !crypto.ValidateSignatureValues(cred.V-27, r, s, true) {
		return common.Address{}, fmt.Errorf("%w: malleable or out of range r/s", ErrSignatureInvalid)
	}
	sig := cred.Signature()
	sig[64] -= 27
	pub, err := crypto.SigToPub(digest.Bytes(), sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %w", ErrSignatureInvalid, err)
	}
	signer := crypto.PubkeyToAddress(*pub)
	if signer == (common.Address{}) {
		return common.Address{}, fmt.Errorf("%w: zero signer", ErrSignatureInvalid)
	}
	return signer, nil
}

// Verifier checks credentials against one domain.
type Verifier struct {
	domain Domain
	chain  Chain
}

func NewVerifier(domain Domain, chain Chain) *Verifier {
	return &Verifier{domain: domain, chain: chain}
}

func (v *Verifier) Domain() Domain {
	return v.domain
}

// Verify checks that expected authorized msg with cred at time now and returns the digest.
func (v *Verifier) Verify(ctx context.Context, msg Message, cred types.Credential, expected common.Address, now uint64) (common.Hash, error) {
	if err := CheckDeadline(cred.Deadline, now); err != nil {
		return common.Hash{}, err
	}
	digest, err := v.domain.Digest(msg, cred.Deadline)
	if err != nil {
		return common.Hash{}, err
	}
	if err := VerifyDigest(ctx, v.chain, v.domain.VerifyingContract, digest, cred, expected); err != nil {
		return digest, err
	}
	return digest, nil
}

// VerifyDigest accepts cred when expected is a contract that returns the ERC-1271 magic
// value for it, or an individual key that recovers to exactly expected.
func VerifyDigest(ctx context.Context, chain Chain, caller common.Address, digest common.Hash, cred types.Credential, expected common.Address) error {
	if expected == (common.Address{}) {
		return fmt.Errorf("%w: zero authorizer", ErrSignatureInvalid)
	}
	if chain != nil && chain.HasCode(expected) {
		return verifyContractSignature(ctx, chain, caller, digest, cred, expected)
	}
	signer, err := Recover(digest, cred)
	if err != nil {
		return err
	}
	if signer != expected {
		return fmt.Errorf("%w: signed by %s, expected %s", ErrSignatureInvalid, signer.Hex(), expected.Hex())
	}
	return nil
}

func verifyContractSignature(ctx context.Context, chain Chain, caller common.Address, digest common.Hash, cred types.Credential, wallet common.Address) error {
	input, err := contractabi.Pack(contractabi.ERC1271, "isValidSignature", [32]byte(digest), cred.Signature())
	if err != nil {
		return err
	}
	out, err := chain.StaticCall(ctx, caller, wallet, input)
	if err != nil {
		return fmt.Errorf("%w: isValidSignature reverted: %w", ErrSignatureInvalid, err)
	}
	if len(out) < 4 || !bytes.Equal(out[:4], ERC1271MagicValue[:]) {
		return fmt.Errorf("%w: rejected by contract signer %s", ErrSignatureInvalid, wallet.Hex())
	}
	return nil
}
