package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/claimdesk/internal/cli"
	"github.com/Veraticus/claimdesk/internal/model"
)

func analyzeCmd() *cobra.Command {
	var (
		imagePaths []string
		vehicle    string
		details    string
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run a one-off AI damage assessment on photos",
		Long: `Send damage photos to the configured AI provider and print the assessment
without filing a claim. A provider failure prints the manual review notice.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			images, err := loadImages(imagePaths)
			if err != nil {
				return err
			}

			gateway, err := createGateway(ctx)
			if err != nil {
				return fmt.Errorf("failed to initialize AI gateway: %w", err)
			}
			defer closeQuietly("gateway", gateway)

			spinner := cli.StartSpinner(cmd.ErrOrStderr(), "Analyzing damage...")
			assessment, err := gateway.AnalyzeDamage(ctx, model.DamageRequest{
				Description: details,
				VehicleInfo: strings.TrimSpace(vehicle),
				Images:      images,
			})
			spinner.Stop()
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderAssessment(assessment))
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&imagePaths, "image", nil, "damage photo path (repeatable)")
	cmd.Flags().StringVar(&vehicle, "vehicle", "", "vehicle year, make and model")
	cmd.Flags().StringVar(&details, "details", "", "accident description")
	_ = cmd.MarkFlagRequired("image")

	return cmd
}
