package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mirailabs-co/partnr-defai-evm/vault-api/iac"
	"github.com/mirailabs-co/partnr-defai-evm/vault-cli/commands/events"
)

func eventsCmd() *cobra.Command {
	subCmd := &cobra.Command{
		Use:   "events",
		Short: "Vault and oracle event stream commands",
	}

	watchCmd := &cobra.Command{
		Use:   "watch [eventName...]",
		Short: "To print committed events from the configured topic until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := config()
			if len(c.Events.Brokers) == 0 {
				return fmt.Errorf("no brokers configured in [events]")
			}
			ctx, cancel := signalContext()
			defer cancel()
			subscriber := iac.NewKafkaSubscriber(c.Events.Brokers, c.Events.Topic, c.Events.GroupID)
			return events.Watch(ctx, cmd.OutOrStdout(), subscriber, args...)
		},
	}

	subCmd.AddCommand(watchCmd)
	return subCmd
}
