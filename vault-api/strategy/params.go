package strategy

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

type Kind uint8

const (
	KindMoneyMarket Kind = iota + 1
	KindGateway
)

func (k Kind) String() string {
	switch k {
	case KindMoneyMarket:
		return "money-market"
	case KindGateway:
		return "gateway"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

func ParseKind(s string) (Kind, error) {
	switch s {
	case "money-market", "moneymarket":
		return KindMoneyMarket, nil
	case "gateway":
		return KindGateway, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Params is the protocol configuration of a vault, one variant per strategy kind.
type Params interface {
	Kind() Kind
	Encode() ([]byte, error)
	Clone() Params
}

// MoneyMarketParams configures a cToken style market.
type MoneyMarketParams struct {
	Market     common.Address
	Asset      common.Address
	ReserveBps uint16
}

func (MoneyMarketParams) Kind() Kind { return KindMoneyMarket }

func (p MoneyMarketParams) Clone() Params { return p }

func (p MoneyMarketParams) Encode() ([]byte, error) {
	body, err := moneyMarketArgs.Pack(p.Market, p.Asset, p.ReserveBps)
	if err != nil {
		return nil, err
	}
	return append([]byte{byte(KindMoneyMarket)}, body...), nil
}

// GatewayParams configures a bridge gateway. The totals are filled in by composition.
type GatewayParams struct {
	Gateway       common.Address
	Asset         common.Address
	ReserveBps    uint16
	TotalDeposit  *big.Int
	TotalWithdraw *big.Int
}

func (GatewayParams) Kind() Kind { return KindGateway }

func (p GatewayParams) Clone() Params {
	p.TotalDeposit = cloneInt(p.TotalDeposit)
	p.TotalWithdraw = cloneInt(p.TotalWithdraw)
	return p
}

func (p GatewayParams) Encode() ([]byte, error) {
	body, err := gatewayArgs.Pack(p.Gateway, p.Asset, p.ReserveBps, cloneInt(p.TotalDeposit), cloneInt(p.TotalWithdraw))
	if err != nil {
		return nil, err
	}
	return append([]byte{byte(KindGateway)}, body...), nil
}

// DecodeParams reads the kind byte and the ABI encoded fields that follow it.
func DecodeParams(blob []byte) (Params, error) {
	if len(blob) == 0 {
		return nil, fmt.Errorf("%w: empty params", ErrUnknownKind)
	}
	switch Kind(blob[0]) {
	case KindMoneyMarket:
		values, err := moneyMarketArgs.Unpack(blob[1:])
		if err != nil {
			return nil, fmt.Errorf("decode money market params: %w", err)
		}
		return MoneyMarketParams{
			Market:     values[0].(common.Address),
			Asset:      values[1].(common.Address),
			ReserveBps: values[2].(uint16),
		}, nil
	case KindGateway:
		values, err := gatewayArgs.Unpack(blob[1:])
		if err != nil {
			return nil, fmt.Errorf("decode gateway params: %w", err)
		}
		return GatewayParams{
			Gateway:       values[0].(common.Address),
			Asset:         values[1].(common.Address),
			ReserveBps:    values[2].(uint16),
			TotalDeposit:  values[3].(*big.Int),
			TotalWithdraw: values[4].(*big.Int),
		}, nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownKind, blob[0])
}

var (
	moneyMarketArgs = arguments("address", "address", "uint16")
	gatewayArgs     = arguments("address", "address", "uint16", "uint256", "uint256")
)

func arguments(typeNames ...string) abi.Arguments {
	args := make(abi.Arguments, len(typeNames))
	for i, name := range typeNames {
		t, err := abi.NewType(name, "", nil)
		if err != nil {
			panic(err)
		}
		args[i] = abi.Argument{Type: t}
	}
	return args
}

func cloneInt(x *big.Int) *big.Int {
	if x == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(x)
}
