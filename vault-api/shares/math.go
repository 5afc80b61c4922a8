package shares

import (
	"errors"
	"fmt"
	"math/big"
)

// DisplayDecimals is the precision shares are quoted in.
const DisplayDecimals = 18

var ErrAssetsExceedTotal = errors.New("initial assets exceed total assets")

type Rounding int

const (
	Floor Rounding = iota
	Ceil
)

// Math converts between assets and shares with 10^offset virtual shares and one virtual asset,
// which makes donation-based inflation of the first depositor's price unprofitable.
type Math struct {
	offset        uint8
	virtualShares *big.Int
}

// NewMath derives the offset from the underlying asset's decimals.
func NewMath(underlyingDecimals uint8) Math {
	var offset uint8
	if underlyingDecimals < DisplayDecimals {
		offset = DisplayDecimals - underlyingDecimals
	}
	return NewMathWithOffset(offset)
}

func NewMathWithOffset(offset uint8) Math {
	return Math{
		offset:        offset,
		virtualShares: new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(offset)), nil),
	}
}

func (m Math) DecimalsOffset() uint8 {
	return m.offset
}

// ShareDecimals is the underlying precision plus the offset.
func (m Math) ShareDecimals(underlyingDecimals uint8) uint8 {
	return underlyingDecimals + m.offset
}

// ToShares is assets * (supply + 10^offset) / (totalAssets + 1).
func (m Math) ToShares(assets, supply, totalAssets *big.Int, rounding Rounding) *big.Int {
	num := new(big.Int).Add(supply, m.virtualShares)
	den := new(big.Int).Add(totalAssets, big.NewInt(1))
	return mulDiv(assets, num, den, rounding)
}

// ToAssets is shares * (totalAssets + 1) / (supply + 10^offset).
func (m Math) ToAssets(shares, supply, totalAssets *big.Int, rounding Rounding) *big.Int {
	num := new(big.Int).Add(totalAssets, big.NewInt(1))
	den := new(big.Int).Add(supply, m.virtualShares)
	return mulDiv(shares, num, den, rounding)
}

func (m Math) PreviewDeposit(assets, supply, totalAssets *big.Int) *big.Int {
	return m.ToShares(assets, supply, totalAssets, Floor)
}

func (m Math) PreviewWithdraw(assets, supply, totalAssets *big.Int) *big.Int {
	return m.ToShares(assets, supply, totalAssets, Ceil)
}

func (m Math) PreviewMint(shares, supply, totalAssets *big.Int) *big.Int {
	return m.ToAssets(shares, supply, totalAssets, Ceil)
}

func (m Math) PreviewRedeem(shares, supply, totalAssets *big.Int) *big.Int {
	return m.ToAssets(shares, supply, totalAssets, Floor)
}

// PreviewInitialize prices a first deposit whose assets are already counted in totalAssets.
func (m Math) PreviewInitialize(assets, supply, totalAssets *big.Int) (*big.Int, error) {
	if totalAssets.Cmp(assets) < 0 {
		return nil, fmt.Errorf("%w: %s > %s", ErrAssetsExceedTotal, assets, totalAssets)
	}
	num := new(big.Int).Add(supply, m.virtualShares)
	den := new(big.Int).Sub(totalAssets, assets)
	den.Add(den, big.NewInt(1))
	return mulDiv(assets, num, den, Floor), nil
}

// Genesis is the bootstrap mint, assets * 10^offset.
func (m Math) Genesis(assets *big.Int) *big.Int {
	return new(big.Int).Mul(assets, m.virtualShares)
}

func mulDiv(x, y, den *big.Int, rounding Rounding) *big.Int {
	prod := new(big.Int).Mul(x, y)
	q, r := new(big.Int).QuoRem(prod, den, new(big.Int))
	if rounding == Ceil && r.Sign() > 0 {
		q.Add(q, big.NewInt(1))
	}
	return q
}
