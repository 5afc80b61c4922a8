package types

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialWireFormat(t *testing.T) {
	sig := make([]byte, 65)
	for i := range sig[:64] {
		sig[i] = byte(i + 1)
	}
	sig[64] = 1

	cred, err := NewCredential(sig, big.NewInt(1_700_000_000))
	require.NoError(t, err)
	assert.Equal(t, uint8(28), cred.V)

	raw := cred.Bytes()
	require.Len(t, raw, CredentialLength)
	assert.Equal(t, byte(28), raw[0])
	assert.Equal(t, sig[:32], raw[1:33])
	assert.Equal(t, sig[32:64], raw[33:65])
	assert.Equal(t, big.NewInt(1_700_000_000), new(big.Int).SetBytes(raw[65:]))

	decoded, err := CredentialFromBytes(raw)
	require.NoError(t, err)
	assert.Equal(t, cred.V, decoded.V)
	assert.Equal(t, cred.R, decoded.R)
	assert.Equal(t, cred.S, decoded.S)
	assert.Equal(t, 0, cred.Deadline.Cmp(decoded.Deadline))

	parsed, err := ParseCredential(cred.Hex())
	require.NoError(t, err)
	assert.Equal(t, raw, parsed.Bytes())

	_, err = CredentialFromBytes(raw[:96])
	assert.ErrorIs(t, err, ErrCredentialLength)
	_, err = NewCredential(sig[:64], big.NewInt(1))
	assert.ErrorIs(t, err, ErrSignatureLength)
	_, err = NewCredential(sig, big.NewInt(-1))
	assert.ErrorIs(t, err, ErrDeadlineOutOfRange)
}

func TestSignatureIDIsTruncatedR(t *testing.T) {
	var cred Credential
	for i := range cred.R {
		cred.R[i] = byte(0xa0 + i)
	}
	cred.S[0] = 0xff

	id := cred.ID()
	assert.Equal(t, cred.R[:16], id[:])

	other := cred
	other.S[0] = 0x01
	assert.Equal(t, id, other.ID(), "s does not take part in the identifier")
}

func TestRequestID(t *testing.T) {
	id := NewRequestID()
	assert.False(t, id.IsZero())

	fromUUID, err := ParseRequestID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, fromUUID)

	fromHex, err := ParseRequestID(id.Hex())
	require.NoError(t, err)
	assert.Equal(t, id, fromHex)

	_, err = ParseRequestID("0x0102")
	assert.Error(t, err)
}

func TestFeeJSON(t *testing.T) {
	var fees []Fee
	err := json.Unmarshal([]byte(`[{"fee_type":"platform","amount":300,"receiver":"0x00000000000000000000000000000000000000aa"}]`), &fees)
	require.NoError(t, err)
	require.Len(t, fees, 1)
	assert.Equal(t, FeeTypePlatform, fees[0].FeeType)
	assert.Equal(t, big.NewInt(300), fees[0].Amount)
	assert.Equal(t, common.HexToAddress("0xaa"), fees[0].Receiver)

	_, err = ParseFeeType("bogus")
	assert.Error(t, err)
	assert.Equal(t, "performance", FeeTypePerformance.String())
}
