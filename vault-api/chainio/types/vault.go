package types

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Execution is a single external call: target address plus ABI encoded payload.
type Execution struct {
	Target common.Address `json:"target"`
	Params hexutil.Bytes  `json:"params"`
}

type FeeType uint8

const (
	FeeTypeWithdraw FeeType = iota
	FeeTypePlatform
	FeeTypePerformance
)

var feeTypeNames = []string{"withdraw", "platform", "performance"}

func (t FeeType) String() string {
	if int(t) < len(feeTypeNames) {
		return feeTypeNames[t]
	}
	return fmt.Sprintf("fee_type(%d)", uint8(t))
}

func (t FeeType) MarshalText() ([]byte, error) {
	if int(t) >= len(feeTypeNames) {
		return nil, fmt.Errorf("unknown fee type %d", uint8(t))
	}
	return []byte(t.String()), nil
}

func (t *FeeType) UnmarshalText(text []byte) error {
	ft, err := ParseFeeType(string(text))
	if err != nil {
		return err
	}
	*t = ft
	return nil
}

func ParseFeeType(s string) (FeeType, error) {
	for i, name := range feeTypeNames {
		if strings.EqualFold(s, name) {
			return FeeType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown fee type %q", s)
}

// Fee is supplied per withdraw/claim call and never persisted.
type Fee struct {
	FeeType  FeeType        `json:"fee_type"`
	Amount   *big.Int       `json:"amount"`
	Receiver common.Address `json:"receiver"`
}

// WithdrawalRequest is created by RequestWithdraw and flipped to claimed once.
type WithdrawalRequest struct {
	Owner     common.Address `json:"owner"`
	Assets    *big.Int       `json:"assets"`
	Claimed   bool           `json:"claimed"`
	CreatedAt uint64         `json:"created_at"`
}

func (r WithdrawalRequest) Copy() WithdrawalRequest {
	r.Assets = new(big.Int).Set(r.Assets)
	return r
}
