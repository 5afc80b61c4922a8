package oracledefault

import (
	"math/big"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mirailabs-co/partnr-defai-evm/vault-api/metrics/consts"
)

type Indicators interface {
	ObserveValue(vault string, value *big.Int)
	IncRejected(vault, reason string)
}

type PromIndicators struct {
	updatesTotal  *prometheus.CounterVec
	rejectedTotal *prometheus.CounterVec
	lastValue     *prometheus.GaugeVec
}

var _ Indicators = (*PromIndicators)(nil)

func NewPromIndicators(reg prometheus.Registerer) *PromIndicators {
	return &PromIndicators{
		updatesTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: consts.OraclePromNamespace,
				Name:      "value_updates_total",
				Help:      "Accepted vault value reports",
			},
			[]string{"vault"},
		),
		rejectedTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: consts.OraclePromNamespace,
				Name:      "value_rejections_total",
				Help:      "Rejected vault value reports and reads, by reason",
			},
			[]string{"vault", "reason"},
		),
		lastValue: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: consts.OraclePromNamespace,
				Name:      "vault_value",
				Help:      "Last reported vault value in underlying base units",
			},
			[]string{"vault"},
		),
	}
}

// ObserveValue Accepted report
func (s *PromIndicators) ObserveValue(vault string, value *big.Int) {
	s.updatesTotal.WithLabelValues(vault).Inc()
	f, _ := new(big.Float).SetInt(value).Float64()
	s.lastValue.WithLabelValues(vault).Set(f)
}

func (s *PromIndicators) IncRejected(vault, reason string) {
	s.rejectedTotal.WithLabelValues(vault, reason).Inc()
}

type NoopIndicators struct{}

func (NoopIndicators) ObserveValue(string, *big.Int) {}
func (NoopIndicators) IncRejected(string, string)    {}
