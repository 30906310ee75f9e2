package cli

import (
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/peshal-hash/activepieces/api/services/billing/app"
	"github.com/peshal-hash/activepieces/api/services/billing/catalog"
)

func newGiftTrialCmd(load ServiceLoader) *cobra.Command {
	var (
		file     string
		platform string
		customer string
		plan     string
		days     int
	)

	cmd := &cobra.Command{
		Use:   "gift-trial",
		Short: "Gift trial days to one customer or to every customer listed in a file",
		Example: `  billing gift-trial --platform plat_1 --customer cus_1 --plan plus --days 14
  billing gift-trial --file gifts.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var reqs []app.GiftTrialRequest
			if file != "" {
				var err error
				if reqs, err = readGifts(file); err != nil {
					return err
				}
			} else {
				p, err := catalog.ParsePlan(plan)
				if err != nil {
					return err
				}
				reqs = []app.GiftTrialRequest{{PlatformID: platform, CustomerID: customer, Plan: p, Days: days}}
			}

			svc, err := load()
			if err != nil {
				return errors.Wrap(err, "initialize billing service")
			}
			results := svc.GiftTrialBatch(cmd.Context(), reqs)

			out, err := json.MarshalIndent(results, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))

			failed := lo.CountBy(results, func(r app.GiftResult) bool { return r.Status == app.GiftFailed })
			if failed > 0 {
				return errors.Newf("%d of %d gift trials failed", failed, len(results))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "YAML or JSON file with a top-level gifts list")
	cmd.Flags().StringVar(&platform, "platform", "", "platform id")
	cmd.Flags().StringVar(&customer, "customer", "", "provider customer id")
	cmd.Flags().StringVar(&plan, "plan", string(catalog.PlanPlus), "plan the trial is for")
	cmd.Flags().IntVar(&days, "days", 14, "trial days to gift")
	cmd.MarkFlagsMutuallyExclusive("file", "platform")
	cmd.MarkFlagsMutuallyExclusive("file", "customer")
	return cmd
}

// readGifts reads the gifts list. Entries use the request field names
// (platformId, customerId, plan, days), matched case-insensitively.
func readGifts(path string) ([]app.GiftTrialRequest, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "read gifts file %s", path)
	}
	var reqs []app.GiftTrialRequest
	if err := v.UnmarshalKey("gifts", &reqs); err != nil {
		return nil, errors.Wrapf(err, "decode gifts file %s", path)
	}
	if len(reqs) == 0 {
		return nil, errors.Newf("gifts file %s lists no gifts", path)
	}
	return reqs, nil
}
