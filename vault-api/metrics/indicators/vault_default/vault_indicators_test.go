package vaultdefault

import (
	"math/big"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type VaultIndicatorsTestSuite struct {
	suite.Suite
	reg        *prometheus.Registry
	indicators *PromIndicators
}

func (suite *VaultIndicatorsTestSuite) SetupTest() {
	suite.reg = prometheus.NewRegistry()
	suite.indicators = NewPromIndicators(suite.reg)
}

func (suite *VaultIndicatorsTestSuite) Test_AddDeposited() {
	suite.indicators.AddDeposited("0xvault", big.NewInt(1000), big.NewInt(10))
	suite.indicators.AddDeposited("0xvault", big.NewInt(500), big.NewInt(5))
	assert.Equal(suite.T(), 1500.0, testutil.ToFloat64(suite.indicators.depositedAssets.WithLabelValues("0xvault")))
	assert.Equal(suite.T(), 15.0, testutil.ToFloat64(suite.indicators.mintedShares.WithLabelValues("0xvault")))
}

func (suite *VaultIndicatorsTestSuite) Test_AddWithdrawn() {
	suite.indicators.AddWithdrawn("0xvault", "withdraw", big.NewInt(700), big.NewInt(7))
	suite.indicators.AddWithdrawn("0xvault", "fee", big.NewInt(30), nil)
	assert.Equal(suite.T(), 700.0, testutil.ToFloat64(suite.indicators.withdrawnAssets.WithLabelValues("0xvault", "withdraw")))
	assert.Equal(suite.T(), 30.0, testutil.ToFloat64(suite.indicators.withdrawnAssets.WithLabelValues("0xvault", "fee")))
	assert.Equal(suite.T(), 7.0, testutil.ToFloat64(suite.indicators.burnedShares.WithLabelValues("0xvault")))
}

func (suite *VaultIndicatorsTestSuite) Test_FeesAndRejections() {
	suite.indicators.AddFee("0xvault", "platform", big.NewInt(300))
	suite.indicators.IncRejected("0xvault", "withdraw", "signature_used")
	suite.indicators.IncRejected("0xvault", "withdraw", "signature_used")
	suite.indicators.SetPendingRequests("0xvault", 3)
	suite.indicators.AddExecutedActions("0xvault", 2)

	assert.Equal(suite.T(), 300.0, testutil.ToFloat64(suite.indicators.feesTotal.WithLabelValues("0xvault", "platform")))
	assert.Equal(suite.T(), 2.0, testutil.ToFloat64(suite.indicators.rejectedTotal.WithLabelValues("0xvault", "withdraw", "signature_used")))
	assert.Equal(suite.T(), 3.0, testutil.ToFloat64(suite.indicators.pendingRequests.WithLabelValues("0xvault")))
	assert.Equal(suite.T(), 2.0, testutil.ToFloat64(suite.indicators.executedActions.WithLabelValues("0xvault")))
}

func TestVaultIndicatorsTestSuite(t *testing.T) {
	suite.Run(t, new(VaultIndicatorsTestSuite))
}
