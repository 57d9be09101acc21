package main

import (
	"fmt"

	"github.com/Raisondetr3/store-sales-proxy/internal/model"
	"github.com/spf13/cobra"
)

func newSummaryCmd(a *app) *cobra.Command {
	var search string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show totals over the sale items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			items, err := a.client.ListItems(cmd.Context())
			if err != nil {
				return err
			}

			summary := model.Summarize(model.Filter(items, search))
			if a.asJSON {
				return a.printJSON(cmd, summary)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), renderSummary(summary))
			return err
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "summarize only matching items")

	return cmd
}
