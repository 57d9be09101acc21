package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var errBackendUnhealthy = errors.New("backend is not healthy")

func newHealthCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check whether the store backend is awake",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			status, err := a.client.Health(cmd.Context())
			if err != nil {
				return err
			}

			if a.asJSON {
				err = a.printJSON(cmd, status)
			} else {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), renderHealth(status))
			}
			if err != nil {
				return err
			}

			if !status.Healthy() {
				return errBackendUnhealthy
			}
			return nil
		},
	}
}
