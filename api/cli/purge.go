package cli

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

func newPurgeCustomerCmd(load ServiceLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "purge-customer <platform-id>",
		Short: "Delete a platform's provider customer, billing account and pending gift trial",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := load()
			if err != nil {
				return errors.Wrap(err, "initialize billing service")
			}
			if err := svc.PurgeCustomer(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "purged billing customer for platform %s\n", args[0])
			return nil
		},
	}
}
