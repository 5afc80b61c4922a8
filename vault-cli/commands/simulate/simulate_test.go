package simulate

import (
	"bytes"
	"context"
	"math/big"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mirailabs-co/partnr-defai-evm/vault-api/iac"
	"github.com/mirailabs-co/partnr-defai-evm/vault-api/oracle"
	"github.com/mirailabs-co/partnr-defai-evm/vault-api/strategy"
	"github.com/mirailabs-co/partnr-defai-evm/vault-api/vault"
)

type SimulateTestSuite struct {
	suite.Suite
	out  bytes.Buffer
	opts Options
}

func (suite *SimulateTestSuite) SetupTest() {
	suite.out.Reset()
	suite.opts = Options{
		Now:                1_700_000_000,
		ChainID:            big.NewInt(8453),
		AssetDecimals:      0,
		Kind:               strategy.KindMoneyMarket,
		Name:               "Partnr Simulated",
		Symbol:             "pSIM",
		MinValueChangeBps:  100,
		StalenessThreshold: 3600,
	}
}

func (suite *SimulateTestSuite) Test_MoneyMarketScenario() {
	report, err := Run(context.Background(), &suite.out, suite.opts)
	require.NoError(suite.T(), err)

	// zero decimals: every share carries the 10^18 offset
	offset := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	assert.Equal(suite.T(), new(big.Int).Mul(big.NewInt(100_000), offset), report.GenesisShares)
	assert.Equal(suite.T(), big.NewInt(4_000), report.WithdrawNet)
	assert.Equal(suite.T(), big.NewInt(1_800), report.ClaimNet)
	assert.ErrorIs(suite.T(), report.ReplayErr, vault.ErrSignatureUsed)
	assert.Equal(suite.T(), big.NewInt(103_000), report.TotalAssets)
	assert.Contains(suite.T(), suite.out.String(), "replay rejected")
	assert.NotEmpty(suite.T(), report.Events)
}

func (suite *SimulateTestSuite) Test_EighteenDecimalsMatchesReferenceScenario() {
	suite.opts.AssetDecimals = 18
	report, err := Run(context.Background(), &suite.out, suite.opts)
	require.NoError(suite.T(), err)

	unit := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	tokens := func(n int64) *big.Int { return new(big.Int).Mul(big.NewInt(n), unit) }
	assert.Equal(suite.T(), tokens(100_000), report.GenesisShares)
	assert.Equal(suite.T(), tokens(10_000), report.DepositShares)
	assert.Equal(suite.T(), tokens(4_000), report.WithdrawNet)
	assert.Equal(suite.T(), tokens(103_000), report.TotalSupply)
	assert.Contains(suite.T(), suite.out.String(), "user received 4000, fee receiver 1000")
}

func (suite *SimulateTestSuite) Test_GatewayScenarioWithMetrics() {
	reg := prometheus.NewRegistry()
	suite.opts.Kind = strategy.KindGateway
	suite.opts.Registerer = reg
	extra := iac.NewRecorder()
	suite.opts.Publisher = extra

	report, err := Run(context.Background(), &suite.out, suite.opts)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), big.NewInt(4_000), report.WithdrawNet)
	assert.Equal(suite.T(), big.NewInt(1_800), report.ClaimNet)
	// the last report is the post-deposit value
	assert.Equal(suite.T(), big.NewInt(110_000), report.TotalAssets)
	assert.Contains(suite.T(), suite.out.String(), "oracle reported 110000")

	assert.Len(suite.T(), extra.Named(oracle.EventVaultValueUpdated), 1)
	assert.Equal(suite.T(), len(report.Events), len(extra.Events()))

	count, err := testutil.GatherAndCount(reg)
	require.NoError(suite.T(), err)
	assert.Positive(suite.T(), count)
}

func (suite *SimulateTestSuite) Test_UnknownStrategy() {
	suite.opts.Kind = strategy.Kind(9)
	_, err := Run(context.Background(), &suite.out, suite.opts)
	assert.ErrorIs(suite.T(), err, strategy.ErrUnknownKind)
}

func TestSimulateTestSuite(t *testing.T) {
	suite.Run(t, new(SimulateTestSuite))
}
