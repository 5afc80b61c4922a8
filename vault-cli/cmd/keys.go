package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mirailabs-co/partnr-defai-evm/vault-cli/commands/keys"
)

func keysCmd() *cobra.Command {
	var password string

	subCmd := &cobra.Command{
		Use:   "keys",
		Short: "Keystore related commands",
	}
	subCmd.PersistentFlags().StringVar(&password, "password", "", "keystore passphrase")

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "To create a new account in the keystore",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := keys.NewService(config().Account.KeyDir).Create(cmd.OutOrStdout(), password)
			return err
		},
	}

	importCmd := &cobra.Command{
		Use:   "import <privateKeyHex>",
		Short: "To import a private key into the keystore",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := keys.NewService(config().Account.KeyDir).Import(cmd.OutOrStdout(), args[0], password)
			return err
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "To list the keystore accounts",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			keys.NewService(config().Account.KeyDir).List(cmd.OutOrStdout())
		},
	}

	subCmd.AddCommand(createCmd)
	subCmd.AddCommand(importCmd)
	subCmd.AddCommand(listCmd)

	return subCmd
}
