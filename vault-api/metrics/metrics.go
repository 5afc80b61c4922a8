package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mirailabs-co/partnr-defai-evm/vault-api/logger"
	"github.com/mirailabs-co/partnr-defai-evm/vault-api/utils"
)

const (
	Path                   = "/metrics"
	DefaultShutdownTimeout = 5 * time.Second
)

var (
	ErrServe    = errors.New("metrics server failed")
	ErrShutdown = errors.New("metrics server shutdown failed")
)

type Metrics interface {
	Start(ctx context.Context, reg prometheus.Gatherer) <-chan error
}

// VaultMetrics serves the vault and oracle indicators over HTTP.
type VaultMetrics struct {
	address         string
	shutdownTimeout time.Duration
	logger          logger.Logger
}

var _ Metrics = (*VaultMetrics)(nil)

func NewVaultMetrics(address string, logger logger.Logger) *VaultMetrics {
	return &VaultMetrics{
		address:         address,
		shutdownTimeout: DefaultShutdownTimeout,
		logger:          logger,
	}
}

// WithShutdownTimeout bounds how long Start waits for in-flight scrapes once ctx is done.
func (m *VaultMetrics) WithShutdownTimeout(d time.Duration) *VaultMetrics {
	m.shutdownTimeout = d
	return m
}

// Start serves Path until ctx is done. The returned channel carries at most one
// error, from serving or from shutdown, and is closed once the server is down.
func (m *VaultMetrics) Start(ctx context.Context, reg prometheus.Gatherer) <-chan error {
	m.logger.Info("starting metrics server", logger.WithField("address", m.address))

	mux := http.NewServeMux()
	mux.Handle(Path, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	server := &http.Server{
		Addr:              m.address,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	served := make(chan error, 1)
	go func() {
		served <- server.ListenAndServe()
	}()

	errChan := make(chan error, 1)
	go func() {
		defer close(errChan)
		select {
		case err := <-served:
			m.logger.Error("metrics server stopped", logger.WithField("err", err))
			errChan <- utils.WrapError(ErrServe, err)
			return
		case <-ctx.Done():
		}

		m.logger.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), m.shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			errChan <- utils.WrapError(ErrShutdown, err)
			return
		}
		if err := <-served; !errors.Is(err, http.ErrServerClosed) {
			errChan <- utils.WrapError(ErrServe, err)
			return
		}
		m.logger.Info("metrics server closed")
	}()
	return errChan
}
