package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	bootstrap "github.com/peshal-hash/activepieces/api/bootstrap"
	"github.com/peshal-hash/activepieces/api/services/billing/app"
)

// ServiceLoader returns the billing service the administrative commands run against.
type ServiceLoader func() (app.Service, error)

func loadFromBootstrap() (app.Service, error) {
	if err := bootstrap.Ensure(); err != nil {
		return nil, err
	}
	return bootstrap.GetBillingService(), nil
}

// NewRootCmd builds the command tree. load is used by the administrative commands.
func NewRootCmd(load ServiceLoader) *cobra.Command {
	root := &cobra.Command{
		Use:           "billing",
		Short:         "Subscription billing service CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}
	root.AddCommand(newServeCmd())
	root.AddCommand(newGiftTrialCmd(load))
	root.AddCommand(newPurgeCustomerCmd(load))
	return root
}

// Execute runs the CLI.
func Execute() {
	err := NewRootCmd(loadFromBootstrap).Execute()
	bootstrap.Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
