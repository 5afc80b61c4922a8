package preview

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPreviewAtPar(t *testing.T) {
	pool := Pool{Supply: big.NewInt(110_000), TotalAssets: big.NewInt(110_000), AssetDecimals: 18}
	var out bytes.Buffer

	assert.Equal(t, big.NewInt(10_000), Deposit(&out, pool, big.NewInt(10_000)))
	assert.Equal(t, big.NewInt(5_000), Withdraw(&out, pool, big.NewInt(5_000)))
	assert.Equal(t, big.NewInt(5_000), Redeem(&out, pool, big.NewInt(5_000)))
	assert.Contains(t, out.String(), "shares minted: 10000")
}

func TestPreviewRoundsForThePool(t *testing.T) {
	pool := Pool{Supply: big.NewInt(1_000), TotalAssets: big.NewInt(2_000), AssetDecimals: 18}
	var out bytes.Buffer

	// 999 * 1001 / 2001 = 499.7
	minted := Deposit(&out, pool, big.NewInt(999))
	burned := Withdraw(&out, pool, big.NewInt(999))
	assert.Equal(t, big.NewInt(499), minted)
	assert.Equal(t, big.NewInt(500), burned)
}

func TestPreviewScalesSixDecimalAssets(t *testing.T) {
	pool := Pool{Supply: new(big.Int), TotalAssets: new(big.Int), AssetDecimals: 6}
	var out bytes.Buffer

	minted := Deposit(&out, pool, big.NewInt(1_000_000))
	assert.Equal(t, new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil), minted)
	assert.Contains(t, out.String(), "assets: 1000000 (1)")
	assert.Contains(t, out.String(), "(1)\n")
}
