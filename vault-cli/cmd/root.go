package cmd

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mirailabs-co/partnr-defai-evm/vault-cli/conf"
)

func Cmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "partnr",
		Short:        "Operate Partnr vaults: keys, signed authorizations, previews and simulation.",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(keysCmd())
	rootCmd.AddCommand(signCmd())
	rootCmd.AddCommand(digestCmd())
	rootCmd.AddCommand(previewCmd())
	rootCmd.AddCommand(assetCmd())
	rootCmd.AddCommand(simulateCmd())
	rootCmd.AddCommand(eventsCmd())

	rootCmd.Version = conf.GetVersion()

	return rootCmd
}

func config() *conf.Conf {
	if conf.C == nil {
		conf.InitConfig()
	}
	return conf.C
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func parseInt(name, s string) (*big.Int, error) {
	x, ok := new(big.Int).SetString(s, 10)
	if !ok || x.Sign() < 0 {
		return nil, fmt.Errorf("%s %q is not a non-negative integer", name, s)
	}
	return x, nil
}
