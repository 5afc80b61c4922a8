package asset

import (
	"context"
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common"

	chainio "github.com/mirailabs-co/partnr-defai-evm/vault-api/chainio/io"
	"github.com/mirailabs-co/partnr-defai-evm/vault-api/shares"
	"github.com/mirailabs-co/partnr-defai-evm/vault-cli/commands/units"
)

// Info prints token metadata, the share decimals a vault over it would use,
// and the balance of each holder.
func Info(ctx context.Context, out io.Writer, reader *chainio.AssetReader, token common.Address, holders ...common.Address) (chainio.AssetInfo, error) {
	info, err := reader.AssetInfo(ctx, token)
	if err != nil {
		return chainio.AssetInfo{}, err
	}
	math := shares.NewMath(info.Decimals)
	decimalsNote := ""
	if !info.HasDecimals {
		decimalsNote = " (default)"
	}
	fmt.Fprintf(out, "address: %s\nname: %s\nsymbol: %s\ndecimals: %d%s\nvault decimals offset: %d\n",
		info.Address.Hex(), info.Name, info.Symbol, info.Decimals, decimalsNote, math.DecimalsOffset())
	for _, holder := range holders {
		balance, err := reader.BalanceOf(ctx, token, holder)
		if err != nil {
			return chainio.AssetInfo{}, fmt.Errorf("balance of %s: %w", holder.Hex(), err)
		}
		fmt.Fprintf(out, "balance %s: %s\n", holder.Hex(), units.FormatUnits(balance, info.Decimals))
	}
	return info, nil
}
