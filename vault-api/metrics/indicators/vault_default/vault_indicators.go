package vaultdefault

import (
	"math/big"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mirailabs-co/partnr-defai-evm/vault-api/metrics/consts"
)

type Indicators interface {
	AddDeposited(vault string, assets, shares *big.Int)
	AddWithdrawn(vault, flow string, assets, shares *big.Int)
	AddFee(vault, feeType string, amount *big.Int)
	IncRejected(vault, operation, reason string)
	AddExecutedActions(vault string, n int)
	SetPendingRequests(vault string, n int)
}

type PromIndicators struct {
	depositedAssets *prometheus.CounterVec
	withdrawnAssets *prometheus.CounterVec
	mintedShares    *prometheus.CounterVec
	burnedShares    *prometheus.CounterVec
	feesTotal       *prometheus.CounterVec
	rejectedTotal   *prometheus.CounterVec
	executedActions *prometheus.CounterVec
	pendingRequests *prometheus.GaugeVec
}

var _ Indicators = (*PromIndicators)(nil)

func NewPromIndicators(reg prometheus.Registerer) *PromIndicators {
	return &PromIndicators{
		depositedAssets: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: consts.VaultPromNamespace,
				Name:      "deposited_assets_total",
				Help:      "Underlying assets deposited, in base units",
			},
			[]string{"vault"},
		),
		withdrawnAssets: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: consts.VaultPromNamespace,
				Name:      "withdrawn_assets_total",
				Help:      "Gross underlying assets released, in base units, by flow (withdraw, claim, fee)",
			},
			[]string{"vault", "flow"},
		),
		mintedShares: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: consts.VaultPromNamespace,
				Name:      "minted_shares_total",
				Help:      "Shares minted",
			},
			[]string{"vault"},
		),
		burnedShares: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: consts.VaultPromNamespace,
				Name:      "burned_shares_total",
				Help:      "Shares burned",
			},
			[]string{"vault"},
		),
		feesTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: consts.VaultPromNamespace,
				Name:      "fees_paid_total",
				Help:      "Fees paid out of withdrawals and claims by <fee_type>",
			},
			[]string{"vault", "fee_type"},
		),
		rejectedTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: consts.VaultPromNamespace,
				Name:      "rejected_calls_total",
				Help:      "Calls aborted, by operation and reason",
			},
			[]string{"vault", "operation", "reason"},
		),
		executedActions: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: consts.VaultPromNamespace,
				Name:      "executed_actions_total",
				Help:      "Strategy and batch actions executed",
			},
			[]string{"vault"},
		),
		pendingRequests: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: consts.VaultPromNamespace,
				Name:      "pending_withdraw_requests",
				Help:      "Withdrawal requests created and not yet claimed",
			},
			[]string{"vault"},
		),
	}
}

func (s *PromIndicators) AddDeposited(vault string, assets, shares *big.Int) {
	s.depositedAssets.WithLabelValues(vault).Add(toFloat(assets))
	s.mintedShares.WithLabelValues(vault).Add(toFloat(shares))
}

func (s *PromIndicators) AddWithdrawn(vault, flow string, assets, shares *big.Int) {
	s.withdrawnAssets.WithLabelValues(vault, flow).Add(toFloat(assets))
	if shares != nil {
		s.burnedShares.WithLabelValues(vault).Add(toFloat(shares))
	}
}

func (s *PromIndicators) AddFee(vault, feeType string, amount *big.Int) {
	s.feesTotal.WithLabelValues(vault, feeType).Add(toFloat(amount))
}

func (s *PromIndicators) IncRejected(vault, operation, reason string) {
	s.rejectedTotal.WithLabelValues(vault, operation, reason).Inc()
}

func (s *PromIndicators) AddExecutedActions(vault string, n int) {
	s.executedActions.WithLabelValues(vault).Add(float64(n))
}

func (s *PromIndicators) SetPendingRequests(vault string, n int) {
	s.pendingRequests.WithLabelValues(vault).Set(float64(n))
}

// NoopIndicators discards everything.
type NoopIndicators struct{}

var _ Indicators = NoopIndicators{}

func (NoopIndicators) AddDeposited(string, *big.Int, *big.Int)         {}
func (NoopIndicators) AddWithdrawn(string, string, *big.Int, *big.Int) {}
func (NoopIndicators) AddFee(string, string, *big.Int)                 {}
func (NoopIndicators) IncRejected(string, string, string)              {}
func (NoopIndicators) AddExecutedActions(string, int)                  {}
func (NoopIndicators) SetPendingRequests(string, int)                  {}

func toFloat(x *big.Int) float64 {
	if x == nil {
		return 0
	}
	f, _ := new(big.Float).SetInt(x).Float64()
	return f
}
