package types

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/google/uuid"
)

// CredentialLength is v(1) || r(32) || s(32) || deadline(32).
const CredentialLength = 97

var (
	ErrCredentialLength   = errors.New("credential must be 97 bytes")
	ErrSignatureLength    = errors.New("signature must be 65 bytes")
	ErrDeadlineOutOfRange = errors.New("deadline must fit in 256 bits")
)

// Credential authorizes one action until Deadline (unix seconds, inclusive).
type Credential struct {
	V        uint8
	R        [32]byte
	S        [32]byte
	Deadline *big.Int
}

// SignatureID is the replay key of a credential: the first 16 bytes of r||s.
type SignatureID [16]byte

func (id SignatureID) String() string {
	return hexutil.Encode(id[:])
}

func (c Credential) ID() SignatureID {
	var id SignatureID
	copy(id[:], c.R[:16])
	return id
}

// NewCredential builds a credential from a 65 byte r||s||v signature, v as 0/1 or 27/28.
func NewCredential(sig []byte, deadline *big.Int) (Credential, error) {
	if len(sig) != 65 {
		return Credential{}, ErrSignatureLength
	}
	if err := checkDeadline(deadline); err != nil {
		return Credential{}, err
	}
	c := Credential{V: sig[64], Deadline: new(big.Int).Set(deadline)}
	if c.V < 27 {
		c.V += 27
	}
	copy(c.R[:], sig[:32])
	copy(c.S[:], sig[32:64])
	return c, nil
}

// Signature returns r||s||v with v as stored.
func (c Credential) Signature() []byte {
	sig := make([]byte, 65)
	copy(sig[:32], c.R[:])
	copy(sig[32:64], c.S[:])
	sig[64] = c.V
	return sig
}

func (c Credential) Bytes() []byte {
	out := make([]byte, 0, CredentialLength)
	out = append(out, c.V)
	out = append(out, c.R[:]...)
	out = append(out, c.S[:]...)
	var deadline [32]byte
	if c.Deadline != nil {
		c.Deadline.FillBytes(deadline[:])
	}
	return append(out, deadline[:]...)
}

func (c Credential) Hex() string {
	return hexutil.Encode(c.Bytes())
}

func CredentialFromBytes(b []byte) (Credential, error) {
	if len(b) != CredentialLength {
		return Credential{}, ErrCredentialLength
	}
	c := Credential{V: b[0], Deadline: new(big.Int).SetBytes(b[65:])}
	copy(c.R[:], b[1:33])
	copy(c.S[:], b[33:65])
	return c, nil
}

func ParseCredential(s string) (Credential, error) {
	b, err := hexutil.Decode(s)
	if err != nil {
		return Credential{}, fmt.Errorf("decode credential: %w", err)
	}
	return CredentialFromBytes(b)
}

func checkDeadline(deadline *big.Int) error {
	if deadline == nil || deadline.Sign() < 0 || deadline.BitLen() > 256 {
		return ErrDeadlineOutOfRange
	}
	return nil
}

// RequestID keys an async withdrawal request. It has the size and layout of a UUID.
type RequestID [16]byte

func NewRequestID() RequestID {
	return RequestID(uuid.New())
}

// ParseRequestID accepts either a canonical UUID or 0x-prefixed 16 byte hex.
func ParseRequestID(s string) (RequestID, error) {
	if u, err := uuid.Parse(s); err == nil {
		return RequestID(u), nil
	}
	b, err := hexutil.Decode(s)
	if err != nil {
		return RequestID{}, fmt.Errorf("invalid request id %q", s)
	}
	if len(b) != 16 {
		return RequestID{}, fmt.Errorf("request id must be 16 bytes, got %d", len(b))
	}
	var id RequestID
	copy(id[:], b)
	return id, nil
}

func (id RequestID) String() string {
	return uuid.UUID(id).String()
}

func (id RequestID) Hex() string {
	return hexutil.Encode(id[:])
}

func (id RequestID) IsZero() bool {
	return id == RequestID{}
}

// ZeroAddress reports whether a is the null identity.
func ZeroAddress(a common.Address) bool {
	return a == (common.Address{})
}
