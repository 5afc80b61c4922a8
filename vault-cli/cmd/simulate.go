package cmd

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/mirailabs-co/partnr-defai-evm/vault-api/iac"
	"github.com/mirailabs-co/partnr-defai-evm/vault-api/logger"
	"github.com/mirailabs-co/partnr-defai-evm/vault-api/metrics"
	"github.com/mirailabs-co/partnr-defai-evm/vault-api/strategy"
	"github.com/mirailabs-co/partnr-defai-evm/vault-cli/commands/simulate"
)

func simulateCmd() *cobra.Command {
	var (
		kind       string
		decimals   uint8
		reserveBps int
		serve      bool
	)
	simulateCmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the deposit, withdraw and claim lifecycle against an in-process ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := config()
			if kind == "" {
				kind = c.Strategy.Kind
			}
			k, err := strategy.ParseKind(kind)
			if err != nil {
				return err
			}
			if reserveBps < 0 {
				reserveBps = int(c.Strategy.ReserveBps)
			}
			minDeposit, maxDeposit, err := c.Vault.DepositBounds()
			if err != nil {
				return err
			}
			log, err := c.NewLogger("vault-cli")
			if err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()

			opts := simulate.Options{
				ChainID:            c.ChainID(),
				AssetDecimals:      decimals,
				Kind:               k,
				ReserveBps:         uint16(reserveBps),
				Name:               c.Vault.Name,
				Symbol:             c.Vault.Symbol,
				MinDeposit:         minDeposit,
				MaxDeposit:         maxDeposit,
				MinValueChangeBps:  c.Oracle.MinValueChangeBps,
				StalenessThreshold: c.Oracle.StalenessThreshold,
				Logger:             log,
			}

			var serverErr <-chan error
			if c.Metrics.Address != "" {
				reg := prometheus.NewRegistry()
				opts.Registerer = reg
				serverErr = metrics.NewVaultMetrics(c.Metrics.Address, log).Start(ctx, reg)
			}
			if len(c.Events.Brokers) > 0 {
				publisher := iac.NewKafkaPublisher(c.Events.Brokers, c.Events.Topic)
				defer publisher.Close()
				opts.Publisher = publisher
			}

			if _, err := simulate.Run(ctx, cmd.OutOrStdout(), opts); err != nil {
				return err
			}
			if !serve || serverErr == nil {
				return nil
			}
			log.Info("serving metrics until interrupted", logger.WithField("address", c.Metrics.Address))
			select {
			case <-ctx.Done():
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}
	simulateCmd.Flags().StringVar(&kind, "kind", "", "strategy kind, money-market or gateway; defaults to [strategy] kind")
	simulateCmd.Flags().Uint8Var(&decimals, "decimals", 18, "decimals of the simulated asset")
	simulateCmd.Flags().IntVar(&reserveBps, "reserve-bps", -1, "share of deposits kept idle; defaults to [strategy] reserveBps")
	simulateCmd.Flags().BoolVar(&serve, "serve", false, "keep the metrics endpoint up after the run")
	return simulateCmd
}
