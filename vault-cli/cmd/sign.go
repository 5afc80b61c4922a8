package cmd

import (
	"fmt"
	"io"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/mirailabs-co/partnr-defai-evm/vault-api/chainio/types"
	"github.com/mirailabs-co/partnr-defai-evm/vault-api/signer"
	"github.com/mirailabs-co/partnr-defai-evm/vault-cli/commands/sign"
	"github.com/mirailabs-co/partnr-defai-evm/vault-cli/commands/units"
)

// domainFlags select the vault a digest is bound to and its deadline.
type domainFlags struct {
	vault    string
	chainID  int64
	deadline uint64
	ttl      time.Duration
	decimals uint8
}

func (f *domainFlags) register(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&f.vault, "vault", "", "vault address, defaults to [vault] address")
	cmd.PersistentFlags().Int64Var(&f.chainID, "chain-id", 0, "chain id, defaults to [chain] id")
	cmd.PersistentFlags().Uint64Var(&f.deadline, "deadline", 0, "unix deadline, overrides --ttl")
	cmd.PersistentFlags().DurationVar(&f.ttl, "ttl", time.Hour, "credential lifetime from now")
	cmd.PersistentFlags().Uint8Var(&f.decimals, "decimals", 0, "decimals of amount arguments, 0 for base units")
}

func (f *domainFlags) service() (*sign.Service, error) {
	c := config()
	chainID := c.ChainID()
	if f.chainID != 0 {
		chainID = big.NewInt(f.chainID)
	}
	vault := f.vault
	if vault == "" {
		vault = c.Vault.Address
	}
	addr, err := sign.ParseAddress("vault", vault)
	if err != nil {
		return nil, err
	}
	return sign.NewService(chainID, addr, c.Account.KeyDir), nil
}

func (f *domainFlags) deadlineValue() *big.Int {
	return sign.Deadline(time.Now(), f.deadline, f.ttl)
}

// messageFunc builds the typed message of one action from positional args and flags.
type messageFunc func(out io.Writer, domain signer.Domain, args []string) (signer.Message, error)

// messageCmds are the four authorizable actions; run receives the built message.
func messageCmds(flags *domainFlags, run func(cmd *cobra.Command, s *sign.Service, msg signer.Message, deadline *big.Int) error) []*cobra.Command {
	var fees, actions []string

	wrap := func(build messageFunc) func(cmd *cobra.Command, args []string) error {
		return func(cmd *cobra.Command, args []string) error {
			s, err := flags.service()
			if err != nil {
				return err
			}
			msg, err := build(cmd.OutOrStdout(), s.Domain, args)
			if err != nil {
				return err
			}
			return run(cmd, s, msg, flags.deadlineValue())
		}
	}

	withdrawCmd := &cobra.Command{
		Use:   "withdraw <amount> <receiver>",
		Short: "Operator authorization of an immediate withdrawal",
		Args:  cobra.ExactArgs(2),
		RunE: wrap(func(_ io.Writer, _ signer.Domain, args []string) (signer.Message, error) {
			amount, err := units.ParseUnits(args[0], flags.decimals)
			if err != nil {
				return nil, err
			}
			receiver, err := sign.ParseAddress("receiver", args[1])
			if err != nil {
				return nil, err
			}
			parsed, err := sign.ParseFees(fees, flags.decimals)
			if err != nil {
				return nil, err
			}
			return signer.NewWithdrawMessage(amount, receiver, parsed)
		}),
	}
	withdrawCmd.Flags().StringArrayVar(&fees, "fee", nil, "fee as type:amount:receiver, repeatable")

	executeCmd := &cobra.Command{
		Use:   "execute",
		Short: "Operator authorization of a batch of calls made by the vault",
		Args:  cobra.NoArgs,
		RunE: wrap(func(_ io.Writer, domain signer.Domain, _ []string) (signer.Message, error) {
			parsed, err := sign.ParseExecutions(actions)
			if err != nil {
				return nil, err
			}
			return signer.NewExecuteMessage(domain.VerifyingContract, parsed), nil
		}),
	}
	executeCmd.Flags().StringArrayVar(&actions, "action", nil, "call as target:0xpayload, repeatable and ordered")

	requestCmd := &cobra.Command{
		Use:   "request-withdraw [requestId]",
		Short: "Owner consent to an asynchronous withdrawal request; a new id is generated when omitted",
		Args:  cobra.RangeArgs(0, 1),
		RunE: wrap(func(out io.Writer, _ signer.Domain, args []string) (signer.Message, error) {
			id := types.NewRequestID()
			if len(args) == 1 {
				var err error
				if id, err = types.ParseRequestID(args[0]); err != nil {
					return nil, err
				}
			} else {
				fmt.Fprintf(out, "requestId: %s\n", id)
			}
			return signer.RequestWithdrawMessage{RequestID: id}, nil
		}),
	}

	claimCmd := &cobra.Command{
		Use:   "claim <requestId> <receiver> <intermediateWallet> <totalAmount>",
		Short: "Operator authorization to settle a withdrawal request",
		Args:  cobra.ExactArgs(4),
		RunE: wrap(func(_ io.Writer, _ signer.Domain, args []string) (signer.Message, error) {
			id, err := types.ParseRequestID(args[0])
			if err != nil {
				return nil, err
			}
			receiver, err := sign.ParseAddress("receiver", args[1])
			if err != nil {
				return nil, err
			}
			intermediate, err := sign.ParseAddress("intermediate wallet", args[2])
			if err != nil {
				return nil, err
			}
			total, err := units.ParseUnits(args[3], flags.decimals)
			if err != nil {
				return nil, err
			}
			parsed, err := sign.ParseFees(fees, flags.decimals)
			if err != nil {
				return nil, err
			}
			return signer.NewClaimMessage(id, receiver, intermediate, total, parsed)
		}),
	}
	claimCmd.Flags().StringArrayVar(&fees, "fee", nil, "fee as type:amount:receiver, repeatable")

	return []*cobra.Command{withdrawCmd, executeCmd, requestCmd, claimCmd}
}

func signCmd() *cobra.Command {
	var (
		flags    domainFlags
		from     string
		password string
	)
	subCmd := &cobra.Command{
		Use:   "sign",
		Short: "Sign vault authorizations with a keystore account and print the credential",
	}
	flags.register(subCmd)
	subCmd.PersistentFlags().StringVar(&from, "from", "", "keystore account address")
	subCmd.PersistentFlags().StringVar(&password, "password", "", "keystore passphrase")

	run := func(cmd *cobra.Command, s *sign.Service, msg signer.Message, deadline *big.Int) error {
		if !common.IsHexAddress(from) {
			return fmt.Errorf("--from %q is not a hex address", from)
		}
		_, err := s.Sign(cmd.OutOrStdout(), common.HexToAddress(from), password, msg, deadline)
		return err
	}
	for _, c := range messageCmds(&flags, run) {
		subCmd.AddCommand(c)
	}
	return subCmd
}

func digestCmd() *cobra.Command {
	var flags domainFlags
	subCmd := &cobra.Command{
		Use:   "digest",
		Short: "Print the typed-data digest of a vault authorization without signing",
	}
	flags.register(subCmd)

	run := func(cmd *cobra.Command, s *sign.Service, msg signer.Message, deadline *big.Int) error {
		_, err := s.Digest(cmd.OutOrStdout(), msg, deadline)
		return err
	}
	for _, c := range messageCmds(&flags, run) {
		subCmd.AddCommand(c)
	}

	separatorCmd := &cobra.Command{
		Use:   "domain",
		Short: "Print the domain separator of the vault",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := flags.service()
			if err != nil {
				return err
			}
			separator, err := s.Domain.Separator()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "chainId: %s\nvault: %s\nseparator: %s\n",
				s.Domain.ChainID, s.Domain.VerifyingContract.Hex(), separator.Hex())
			return nil
		},
	}
	subCmd.AddCommand(separatorCmd)
	return subCmd
}
