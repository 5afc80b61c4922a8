package oracledefault

import (
	"math/big"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveValue(t *testing.T) {
	indicators := NewPromIndicators(prometheus.NewRegistry())
	indicators.ObserveValue("0xvault", big.NewInt(100))
	indicators.ObserveValue("0xvault", big.NewInt(120))
	indicators.IncRejected("0xvault", "stale")

	assert.Equal(t, 2.0, testutil.ToFloat64(indicators.updatesTotal.WithLabelValues("0xvault")))
	assert.Equal(t, 120.0, testutil.ToFloat64(indicators.lastValue.WithLabelValues("0xvault")))
	assert.Equal(t, 1.0, testutil.ToFloat64(indicators.rejectedTotal.WithLabelValues("0xvault", "stale")))
}
