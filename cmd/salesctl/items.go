package main

import (
	"errors"
	"fmt"

	"github.com/Raisondetr3/store-sales-proxy/internal/model"
	"github.com/spf13/cobra"
)

func newItemsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "items",
		Short: "Manage sale items",
	}

	cmd.AddCommand(
		newItemsListCmd(a),
		newItemsGetCmd(a),
		newItemsCreateCmd(a),
		newItemsUpdateCmd(a),
		newItemsDeleteCmd(a),
	)

	return cmd
}

func newItemsListCmd(a *app) *cobra.Command {
	var search string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sale items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			items, err := a.client.ListItems(cmd.Context())
			if err != nil {
				return err
			}

			items = model.Filter(items, search)
			if a.asJSON {
				return a.printJSON(cmd, items)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), renderItems(items))
			return err
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "only items whose name, description or category contains this text")

	return cmd
}

func newItemsGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show one sale item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			item, err := a.client.GetItem(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if a.asJSON {
				return a.printJSON(cmd, item)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), renderItem(item))
			return err
		},
	}
}

type itemFlags struct {
	name        string
	description string
	quantity    float64
	unitPrice   float64
	category    string
	date        string
}

func (f *itemFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.name, "name", "", "item name")
	flags.StringVar(&f.description, "description", "", "free text description")
	flags.Float64Var(&f.quantity, "quantity", 0, "units sold")
	flags.Float64Var(&f.unitPrice, "unit-price", 0, "price of one unit")
	flags.StringVar(&f.category, "category", "", "item category")
	flags.StringVar(&f.date, "date", "", "sale date (YYYY-MM-DD)")
}

// optional returns a pointer to v only when the flag was given.
func optional[T any](cmd *cobra.Command, flag string, v T) *T {
	if !cmd.Flags().Changed(flag) {
		return nil
	}
	return &v
}

func newItemsCreateCmd(a *app) *cobra.Command {
	f := &itemFlags{}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a sale item",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := model.CreateSaleItemInput{
				Name:        f.name,
				Description: optional(cmd, "description", f.description),
				Quantity:    optional(cmd, "quantity", f.quantity),
				UnitPrice:   optional(cmd, "unit-price", f.unitPrice),
				Category:    optional(cmd, "category", f.category),
				Date:        optional(cmd, "date", f.date),
			}

			item, err := a.client.CreateItem(cmd.Context(), in)
			if err != nil {
				return err
			}

			if a.asJSON {
				return a.printJSON(cmd, item)
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", item.ID)
			return err
		},
	}

	f.register(cmd)
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("quantity")
	_ = cmd.MarkFlagRequired("unit-price")

	return cmd
}

var errNothingToUpdate = errors.New("nothing to update: pass at least one field flag")

func newItemsUpdateCmd(a *app) *cobra.Command {
	f := &itemFlags{}

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Update fields of a sale item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := model.UpdateSaleItemInput{
				Name:        optional(cmd, "name", f.name),
				Description: optional(cmd, "description", f.description),
				Quantity:    optional(cmd, "quantity", f.quantity),
				UnitPrice:   optional(cmd, "unit-price", f.unitPrice),
				Category:    optional(cmd, "category", f.category),
				Date:        optional(cmd, "date", f.date),
			}
			if in.Empty() {
				return errNothingToUpdate
			}

			item, err := a.client.UpdateItem(cmd.Context(), args[0], in)
			if err != nil {
				return err
			}

			if a.asJSON {
				return a.printJSON(cmd, item)
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "updated %s\n", item.ID)
			return err
		},
	}

	f.register(cmd)

	return cmd
}

func newItemsDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a sale item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.DeleteItem(cmd.Context(), args[0]); err != nil {
				return err
			}

			_, err := fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return err
		},
	}
}
