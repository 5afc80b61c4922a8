package gateway

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mirailabs-co/partnr-defai-evm/vault-api/chainio/ledger"
	"github.com/mirailabs-co/partnr-defai-evm/vault-api/strategy"
)

var (
	assetAddr   = common.HexToAddress("0x0000000000000000000000000000000000002001")
	gatewayAddr = common.HexToAddress("0x0000000000000000000000000000000000002002")
	vaultAddr   = common.HexToAddress("0x0000000000000000000000000000000000002003")
	userAddr    = common.HexToAddress("0x0000000000000000000000000000000000002004")
)

type custody struct {
	ledger *ledger.Ledger
}

func (c custody) Vault() common.Address { return vaultAddr }

func (c custody) Call(ctx context.Context, target common.Address, input []byte) ([]byte, error) {
	return c.ledger.Call(ctx, vaultAddr, target, input)
}

type fakeSource struct {
	registered bool
	value      *big.Int
	err        error
	params     []byte
}

func (f *fakeSource) IsAssociatedVault(common.Address) bool { return f.registered }

func (f *fakeSource) Value(_ common.Address, params []byte) (*big.Int, error) {
	f.params = params
	return f.value, f.err
}

type GatewayTestSuite struct {
	suite.Suite
	ctx     context.Context
	ledger  *ledger.Ledger
	token   *ledger.Token
	gateway *ledger.Gateway
	params  strategy.GatewayParams
}

func (suite *GatewayTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.ledger = ledger.New(ledger.NewManualClock(0))
	suite.token = ledger.NewToken("USD Coin", "USDC", 6)
	suite.gateway = ledger.NewGateway(suite.ledger, gatewayAddr, assetAddr)
	require.NoError(suite.T(), suite.ledger.Deploy(assetAddr, suite.token))
	require.NoError(suite.T(), suite.ledger.Deploy(gatewayAddr, suite.gateway))
	suite.params = strategy.GatewayParams{Gateway: gatewayAddr, Asset: assetAddr}
	suite.token.Mint(vaultAddr, big.NewInt(10_000))
}

func (suite *GatewayTestSuite) initialize(s *Strategy) {
	actions, err := s.InitializationActions(big.NewInt(10_000), suite.params)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), actions, 2)
	for _, action := range actions {
		_, err := suite.ledger.Call(suite.ctx, vaultAddr, action.Target, action.Params)
		require.NoError(suite.T(), err)
	}
}

func (suite *GatewayTestSuite) composed(s *Strategy, deposit, withdraw int64) strategy.Params {
	p, err := strategy.Compose(suite.ctx, s, strategy.VaultState{
		Address:       vaultAddr,
		TotalDeposit:  big.NewInt(deposit),
		TotalWithdraw: big.NewInt(withdraw),
	}, suite.params)
	require.NoError(suite.T(), err)
	return p
}

func (suite *GatewayTestSuite) Test_FallbackValue() {
	s := New(suite.ledger)
	suite.initialize(s)
	assert.Equal(suite.T(), big.NewInt(10_000), suite.gateway.DepositOf(vaultAddr))

	p := suite.composed(s, 10_000, 0)
	assert.Equal(suite.T(), big.NewInt(10_000), p.(strategy.GatewayParams).TotalDeposit)
	assert.Nil(suite.T(), suite.params.TotalDeposit, "base params are not mutated")

	value, err := s.Value(suite.ctx, vaultAddr, p)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), big.NewInt(10_000), value)

	suite.token.Mint(vaultAddr, big.NewInt(250))
	value, err = s.Value(suite.ctx, vaultAddr, suite.composed(s, 10_000, 4_000))
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), big.NewInt(6_250), value)

	_, err = s.Value(suite.ctx, vaultAddr, suite.composed(s, 0, 20_000))
	assert.ErrorIs(suite.T(), err, strategy.ErrValueUnderflow)
}

func (suite *GatewayTestSuite) Test_ReportedValuePreferred() {
	source := &fakeSource{registered: true, value: big.NewInt(12_345)}
	s := New(suite.ledger, WithValueSource(source))
	suite.initialize(s)

	value, err := s.Value(suite.ctx, vaultAddr, suite.composed(s, 10_000, 0))
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), big.NewInt(12_345), value)
	assert.NotEmpty(suite.T(), source.params)

	source.value = new(big.Int)
	value, err = s.Value(suite.ctx, vaultAddr, suite.composed(s, 10_000, 0))
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), big.NewInt(10_000), value, "zero report falls back")

	source.registered = false
	source.value = big.NewInt(1)
	value, err = s.Value(suite.ctx, vaultAddr, suite.composed(s, 10_000, 0))
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), big.NewInt(10_000), value, "unregistered vault falls back")

	stale := errors.New("stale")
	source.registered = true
	source.err = stale
	_, err = s.Value(suite.ctx, vaultAddr, suite.composed(s, 10_000, 0))
	assert.ErrorIs(suite.T(), err, stale)
}

func (suite *GatewayTestSuite) Test_Withdraw() {
	s := New(suite.ledger)
	suite.initialize(s)
	c := custody{ledger: suite.ledger}

	require.NoError(suite.T(), s.Withdraw(suite.ctx, c, userAddr, big.NewInt(4_000), suite.params))
	assert.Equal(suite.T(), big.NewInt(4_000), suite.token.BalanceOf(userAddr))
	assert.Equal(suite.T(), big.NewInt(6_000), suite.gateway.DepositOf(vaultAddr))

	err := s.Withdraw(suite.ctx, c, userAddr, big.NewInt(6_001), suite.params)
	assert.ErrorIs(suite.T(), err, strategy.ErrWithdrawFailed)

	suite.gateway.SetPaused(true)
	err = s.Withdraw(suite.ctx, c, userAddr, big.NewInt(1), suite.params)
	assert.ErrorIs(suite.T(), err, strategy.ErrWithdrawFailed)
}

func TestGatewayTestSuite(t *testing.T) {
	suite.Run(t, new(GatewayTestSuite))
}
