package events

import (
	"bytes"
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirailabs-co/partnr-defai-evm/vault-api/iac"
)

type staticSource []iac.Event

func (s staticSource) Subscribe(_ context.Context, callback func(event iac.Event)) error {
	for _, event := range s {
		callback(event)
	}
	return nil
}

var emitter = common.HexToAddress("0x0000000000000000000000000000000000009001")

func TestFormat(t *testing.T) {
	event := iac.NewEvent("Withdraw", emitter, 1_700_000_000).With("net", 4000).With("amount", 5000)
	assert.Equal(t,
		"2023-11-14T22:13:20Z "+emitter.Hex()+" Withdraw amount=5000 net=4000",
		Format(event))
}

func TestWatchFilters(t *testing.T) {
	source := staticSource{
		iac.NewEvent("Deposit", emitter, 1),
		iac.NewEvent("Withdraw", emitter, 2),
		iac.NewEvent("Claimed", emitter, 3),
	}
	var out bytes.Buffer
	require.NoError(t, Watch(context.Background(), &out, source, "Withdraw", "Claimed"))
	assert.NotContains(t, out.String(), "Deposit")
	assert.Contains(t, out.String(), "Withdraw")
	assert.Contains(t, out.String(), "Claimed")

	out.Reset()
	require.NoError(t, Watch(context.Background(), &out, source))
	assert.Equal(t, 3, bytes.Count(out.Bytes(), []byte("\n")))
}
