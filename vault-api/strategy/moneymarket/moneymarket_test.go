package moneymarket

import (
	"bytes"
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	contractabi "github.com/mirailabs-co/partnr-defai-evm/vault-api/chainio/abi"
	"github.com/mirailabs-co/partnr-defai-evm/vault-api/chainio/ledger"
	"github.com/mirailabs-co/partnr-defai-evm/vault-api/chainio/types"
	"github.com/mirailabs-co/partnr-defai-evm/vault-api/strategy"
)

var (
	assetAddr  = common.HexToAddress("0x0000000000000000000000000000000000001001")
	marketAddr = common.HexToAddress("0x0000000000000000000000000000000000001002")
	vaultAddr  = common.HexToAddress("0x0000000000000000000000000000000000001003")
	userAddr   = common.HexToAddress("0x0000000000000000000000000000000000001004")
)

type custody struct {
	ledger *ledger.Ledger
}

func (c custody) Vault() common.Address { return vaultAddr }

func (c custody) Call(ctx context.Context, target common.Address, input []byte) ([]byte, error) {
	return c.ledger.Call(ctx, vaultAddr, target, input)
}

// falseTransfer answers every transfer on the asset with false and moves nothing.
type falseTransfer struct {
	custody
}

func (c falseTransfer) Call(ctx context.Context, target common.Address, input []byte) ([]byte, error) {
	if target == assetAddr && bytes.Equal(input[:4], contractabi.MustContractABI(contractabi.ERC20).Methods["transfer"].ID) {
		return contractabi.MustContractABI(contractabi.ERC20).Methods["transfer"].Outputs.Pack(false)
	}
	return c.custody.Call(ctx, target, input)
}

type MoneyMarketTestSuite struct {
	suite.Suite
	ctx      context.Context
	ledger   *ledger.Ledger
	token    *ledger.Token
	market   *ledger.MoneyMarket
	strategy *Strategy
	params   strategy.MoneyMarketParams
}

func (suite *MoneyMarketTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.ledger = ledger.New(ledger.NewManualClock(0))
	suite.token = ledger.NewToken("USD Coin", "USDC", 6)
	suite.market = ledger.NewMoneyMarket(suite.ledger, marketAddr, assetAddr)
	require.NoError(suite.T(), suite.ledger.Deploy(assetAddr, suite.token))
	require.NoError(suite.T(), suite.ledger.Deploy(marketAddr, suite.market))
	suite.strategy = New(suite.ledger)
	suite.params = strategy.MoneyMarketParams{Market: marketAddr, Asset: assetAddr}
	suite.token.Mint(vaultAddr, big.NewInt(10_000))
}

func (suite *MoneyMarketTestSuite) run(amount int64, initial bool) {
	var err error
	var actions []types.Execution
	if initial {
		actions, err = suite.strategy.InitializationActions(big.NewInt(amount), suite.params)
	} else {
		actions, err = suite.strategy.DepositActions(big.NewInt(amount), suite.params)
	}
	require.NoError(suite.T(), err)
	for _, action := range actions {
		_, err := suite.ledger.Call(suite.ctx, vaultAddr, action.Target, action.Params)
		require.NoError(suite.T(), err)
	}
}

func (suite *MoneyMarketTestSuite) Test_InitializationActions() {
	actions, err := suite.strategy.InitializationActions(big.NewInt(10_000), suite.params)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), actions, 2)
	assert.Equal(suite.T(), assetAddr, actions[0].Target)
	assert.Equal(suite.T(), marketAddr, actions[1].Target)

	suite.run(10_000, true)
	assert.Equal(suite.T(), strategy.MaxUint256, suite.token.Allowance(vaultAddr, marketAddr))
	assert.Equal(suite.T(), big.NewInt(10_000), suite.market.BalanceOf(vaultAddr))
	assert.Equal(suite.T(), 0, suite.token.BalanceOf(vaultAddr).Sign())
}

func (suite *MoneyMarketTestSuite) Test_DepositActionsReserve() {
	suite.params.ReserveBps = 10_000
	actions, err := suite.strategy.DepositActions(big.NewInt(500), suite.params)
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), actions)

	_, err = suite.strategy.DepositActions(big.NewInt(500), strategy.GatewayParams{})
	assert.ErrorIs(suite.T(), err, strategy.ErrParamsKind)
}

func (suite *MoneyMarketTestSuite) Test_ValueAtExchangeRate() {
	suite.run(10_000, true)
	value, err := suite.strategy.Value(suite.ctx, vaultAddr, suite.params)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), big.NewInt(10_000), value)

	suite.market.SetExchangeRate(big.NewInt(1.05e18))
	value, err = suite.strategy.Value(suite.ctx, vaultAddr, suite.params)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), big.NewInt(10_500), value)
}

func (suite *MoneyMarketTestSuite) Test_Withdraw() {
	suite.run(10_000, true)
	c := custody{ledger: suite.ledger}

	require.NoError(suite.T(), suite.strategy.Withdraw(suite.ctx, c, vaultAddr, big.NewInt(1_000), suite.params))
	assert.Equal(suite.T(), big.NewInt(1_000), suite.token.BalanceOf(vaultAddr))

	require.NoError(suite.T(), suite.strategy.Withdraw(suite.ctx, c, userAddr, big.NewInt(2_000), suite.params))
	assert.Equal(suite.T(), big.NewInt(2_000), suite.token.BalanceOf(userAddr))
	assert.Equal(suite.T(), big.NewInt(1_000), suite.token.BalanceOf(vaultAddr))

	err := suite.strategy.Withdraw(suite.ctx, c, vaultAddr, big.NewInt(1_000_000), suite.params)
	assert.ErrorIs(suite.T(), err, strategy.ErrWithdrawFailed)

	suite.market.SetPaused(true)
	err = suite.strategy.Withdraw(suite.ctx, c, vaultAddr, big.NewInt(1), suite.params)
	assert.ErrorIs(suite.T(), err, strategy.ErrWithdrawFailed)
}

func (suite *MoneyMarketTestSuite) Test_WithdrawForwardReturnsFalse() {
	suite.run(10_000, true)
	c := falseTransfer{custody{ledger: suite.ledger}}

	err := suite.strategy.Withdraw(suite.ctx, c, userAddr, big.NewInt(2_000), suite.params)
	assert.ErrorIs(suite.T(), err, strategy.ErrWithdrawFailed)
	assert.Equal(suite.T(), 0, suite.token.BalanceOf(userAddr).Sign())

	// redeeming to the vault itself never forwards
	require.NoError(suite.T(), suite.strategy.Withdraw(suite.ctx, c, vaultAddr, big.NewInt(1_000), suite.params))
}

func TestMoneyMarketTestSuite(t *testing.T) {
	suite.Run(t, new(MoneyMarketTestSuite))
}
