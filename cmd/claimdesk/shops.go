package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/claimdesk/internal/cli"
)

func shopsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shops <location...>",
		Short: "Suggest repair shops near a location",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			location := strings.Join(args, " ")

			gateway, err := createGateway(ctx)
			if err != nil {
				return fmt.Errorf("failed to initialize AI gateway: %w", err)
			}
			defer closeQuietly("gateway", gateway)

			spinner := cli.StartSpinner(cmd.ErrOrStderr(), "Finding repair shops near "+location+"...")
			shops, err := gateway.FindRepairShops(ctx, location)
			spinner.Stop()
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatTitle("Repair shops near "+location))
			fmt.Fprint(cmd.OutOrStdout(), cli.RenderShops(shops))
			return nil
		},
	}
}
