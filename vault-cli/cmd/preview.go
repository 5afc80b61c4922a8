package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mirailabs-co/partnr-defai-evm/vault-cli/commands/preview"
)

func previewCmd() *cobra.Command {
	var (
		supply      string
		totalAssets string
		decimals    uint8
	)
	subCmd := &cobra.Command{
		Use:   "preview",
		Short: "Price deposits and withdrawals against a given vault state, in base units",
	}
	subCmd.PersistentFlags().StringVar(&supply, "supply", "0", "total share supply")
	subCmd.PersistentFlags().StringVar(&totalAssets, "total-assets", "0", "total assets under management")
	subCmd.PersistentFlags().Uint8Var(&decimals, "decimals", 18, "decimals of the underlying asset")

	pool := func() (preview.Pool, error) {
		s, err := parseInt("supply", supply)
		if err != nil {
			return preview.Pool{}, err
		}
		t, err := parseInt("total assets", totalAssets)
		if err != nil {
			return preview.Pool{}, err
		}
		return preview.Pool{Supply: s, TotalAssets: t, AssetDecimals: decimals}, nil
	}
	command := func(use, short string, fn func(cmd *cobra.Command, p preview.Pool, amount string) error) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				p, err := pool()
				if err != nil {
					return err
				}
				return fn(cmd, p, args[0])
			},
		}
	}

	subCmd.AddCommand(command("deposit <assets>", "Shares minted for a deposit", func(cmd *cobra.Command, p preview.Pool, amount string) error {
		assets, err := parseInt("assets", amount)
		if err != nil {
			return err
		}
		preview.Deposit(cmd.OutOrStdout(), p, assets)
		return nil
	}))
	subCmd.AddCommand(command("withdraw <assets>", "Shares burned for a withdrawal", func(cmd *cobra.Command, p preview.Pool, amount string) error {
		assets, err := parseInt("assets", amount)
		if err != nil {
			return err
		}
		preview.Withdraw(cmd.OutOrStdout(), p, assets)
		return nil
	}))
	subCmd.AddCommand(command("redeem <shares>", "Assets paid for shares", func(cmd *cobra.Command, p preview.Pool, amount string) error {
		shares, err := parseInt("shares", amount)
		if err != nil {
			return err
		}
		preview.Redeem(cmd.OutOrStdout(), p, shares)
		return nil
	}))

	return subCmd
}
