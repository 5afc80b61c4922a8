package preview

import (
	"fmt"
	"io"
	"math/big"

	"github.com/mirailabs-co/partnr-defai-evm/vault-api/shares"
	"github.com/mirailabs-co/partnr-defai-evm/vault-cli/commands/units"
)

// Pool is the vault state a preview is priced against.
type Pool struct {
	Supply        *big.Int
	TotalAssets   *big.Int
	AssetDecimals uint8
}

func (p Pool) math() shares.Math {
	return shares.NewMath(p.AssetDecimals)
}

func (p Pool) shareDecimals() uint8 {
	return p.math().ShareDecimals(p.AssetDecimals)
}

// Deposit prints the shares minted for assets, rounded down.
func Deposit(out io.Writer, p Pool, assets *big.Int) *big.Int {
	minted := p.math().PreviewDeposit(assets, p.Supply, p.TotalAssets)
	fmt.Fprintf(out, "assets: %s (%s)\nshares minted: %s (%s)\n",
		assets, units.FormatUnits(assets, p.AssetDecimals),
		minted, units.FormatUnits(minted, p.shareDecimals()))
	return minted
}

// Withdraw prints the shares burned for assets, rounded up.
func Withdraw(out io.Writer, p Pool, assets *big.Int) *big.Int {
	burned := p.math().PreviewWithdraw(assets, p.Supply, p.TotalAssets)
	fmt.Fprintf(out, "assets: %s (%s)\nshares burned: %s (%s)\n",
		assets, units.FormatUnits(assets, p.AssetDecimals),
		burned, units.FormatUnits(burned, p.shareDecimals()))
	return burned
}

// Redeem prints the assets paid for shares, rounded down.
func Redeem(out io.Writer, p Pool, amount *big.Int) *big.Int {
	assets := p.math().PreviewRedeem(amount, p.Supply, p.TotalAssets)
	fmt.Fprintf(out, "shares: %s (%s)\nassets out: %s (%s)\n",
		amount, units.FormatUnits(amount, p.shareDecimals()),
		assets, units.FormatUnits(assets, p.AssetDecimals))
	return assets
}
