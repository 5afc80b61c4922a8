package sign

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/mirailabs-co/partnr-defai-evm/vault-api/chainio/types"
	"github.com/mirailabs-co/partnr-defai-evm/vault-cli/commands/units"
)

func ParseAddress(name, s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("%s %q is not a hex address", name, s)
	}
	return common.HexToAddress(s), nil
}

// ParseFee reads "type:amount:receiver", e.g. "withdraw:1000:0xabc...".
func ParseFee(s string, decimals uint8) (types.Fee, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return types.Fee{}, fmt.Errorf("fee %q must be type:amount:receiver", s)
	}
	feeType, err := types.ParseFeeType(parts[0])
	if err != nil {
		return types.Fee{}, err
	}
	amount, err := units.ParseUnits(parts[1], decimals)
	if err != nil {
		return types.Fee{}, err
	}
	receiver, err := ParseAddress("fee receiver", parts[2])
	if err != nil {
		return types.Fee{}, err
	}
	return types.Fee{FeeType: feeType, Amount: amount, Receiver: receiver}, nil
}

func ParseFees(list []string, decimals uint8) ([]types.Fee, error) {
	fees := make([]types.Fee, 0, len(list))
	for _, s := range list {
		fee, err := ParseFee(s, decimals)
		if err != nil {
			return nil, err
		}
		fees = append(fees, fee)
	}
	return fees, nil
}

// ParseExecution reads "target:0xpayload". The payload may be empty.
func ParseExecution(s string) (types.Execution, error) {
	rawTarget, payload, found := strings.Cut(s, ":")
	target, err := ParseAddress("action target", rawTarget)
	if err != nil {
		return types.Execution{}, err
	}
	action := types.Execution{Target: target, Params: hexutil.Bytes{}}
	if !found || payload == "" || payload == "0x" {
		return action, nil
	}
	params, err := hexutil.Decode(payload)
	if err != nil {
		return types.Execution{}, fmt.Errorf("action payload %q: %w", payload, err)
	}
	action.Params = params
	return action, nil
}

func ParseExecutions(list []string) ([]types.Execution, error) {
	actions := make([]types.Execution, 0, len(list))
	for _, s := range list {
		action, err := ParseExecution(s)
		if err != nil {
			return nil, err
		}
		actions = append(actions, action)
	}
	return actions, nil
}

// Deadline is the explicit unix deadline when set, otherwise now plus ttl.
func Deadline(now time.Time, deadline uint64, ttl time.Duration) *big.Int {
	if deadline > 0 {
		return new(big.Int).SetUint64(deadline)
	}
	return big.NewInt(now.Add(ttl).Unix())
}
