package cmd

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/mirailabs-co/partnr-defai-evm/vault-cli/commands/asset"
	"github.com/mirailabs-co/partnr-defai-evm/vault-cli/commands/sign"
)

func assetCmd() *cobra.Command {
	subCmd := &cobra.Command{
		Use:   "asset",
		Short: "Asset token queries over the configured rpc",
	}

	infoCmd := &cobra.Command{
		Use:   "info <token> [holder...]",
		Short: "To show token metadata, the vault decimals offset and holder balances",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := config()
			token, err := sign.ParseAddress("token", args[0])
			if err != nil {
				return err
			}
			holders := make([]common.Address, 0, len(args)-1)
			for _, arg := range args[1:] {
				holder, err := sign.ParseAddress("holder", arg)
				if err != nil {
					return err
				}
				holders = append(holders, holder)
			}
			log, err := c.NewLogger("vault-cli")
			if err != nil {
				return err
			}
			s, err := asset.NewService(c.Chain.RPC, c.Chain.RateLimit, log)
			if err != nil {
				return err
			}
			defer s.Close()
			_, err = asset.Info(context.Background(), cmd.OutOrStdout(), s.Reader, token, holders...)
			return err
		},
	}

	subCmd.AddCommand(infoCmd)
	return subCmd
}
