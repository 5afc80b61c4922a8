package units

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatUnits(t *testing.T) {
	assert.Equal(t, "1.5", FormatUnits(big.NewInt(1_500_000), 6))
	assert.Equal(t, "4000", FormatUnits(big.NewInt(4_000), 0))
	assert.Equal(t, "0.000001", FormatUnits(big.NewInt(1), 6))
	assert.Equal(t, "0", FormatUnits(nil, 18))

	wei, _ := new(big.Int).SetString("123456789000000000000", 10)
	assert.Equal(t, "123.456789", FormatUnits(wei, 18))
}

func TestParseUnits(t *testing.T) {
	got, err := ParseUnits("1.5", 6)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1_500_000), got)

	got, err = ParseUnits("10000", 0)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(10_000), got)

	_, err = ParseUnits("0.0000001", 6)
	assert.ErrorIs(t, err, ErrTooPrecise)
	_, err = ParseUnits("-1", 6)
	assert.Error(t, err)
	_, err = ParseUnits("ten", 6)
	assert.Error(t, err)
}
