package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/claimdesk/internal/cli"
	"github.com/Veraticus/claimdesk/internal/common"
	"github.com/Veraticus/claimdesk/internal/engine"
	"github.com/Veraticus/claimdesk/internal/llm"
	"github.com/Veraticus/claimdesk/internal/model"
	"github.com/Veraticus/claimdesk/internal/storage"
)

func demoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Walk sample claims through the full workflow offline",
		Long: `Run a scripted walkthrough against the offline mock AI provider:

  1. A policyholder files a claim and it is assessed automatically.
  2. The repair shop and the insurance agent negotiate the estimate.
  3. The claim is approved, repaired and picked up, then closed.
  4. A second claim is rejected by the agent.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			gateway := llm.NewGateway(llm.NewMockClient(), llm.Config{}, slog.Default().With("component", "gateway"))
			defer closeQuietly("gateway", gateway)
			return runDemo(cmd.Context(), cmd.OutOrStdout(), gateway)
		},
	}
}

var (
	demoHolder = model.Actor{Role: model.RolePolicyholder, Name: "Jane Doe"}
	demoShop   = model.Actor{Role: model.RoleRepairShop, Name: "Main St Body"}
	demoAgent  = model.Actor{Role: model.RoleInsuranceAgent, Name: "Sam Rivera"}
)

// demoRun carries the state of one walkthrough.
type demoRun struct {
	engine *engine.Engine
	out    io.Writer
}

func runDemo(ctx context.Context, out io.Writer, gateway engine.Gateway) error {
	store := storage.NewMemoryStorage()
	defer closeQuietly("storage", store)

	d := &demoRun{
		engine: engine.NewWithConfig(store, gateway, engine.Config{Logger: slog.Default().With("component", "engine")}),
		out:    out,
	}

	fmt.Fprintln(out, cli.FormatTitle("claimdesk demo"))

	claim, err := d.submit(ctx, "POL-1", "Rear-ended at a stop light, rear bumper cracked")
	if err != nil {
		return err
	}
	d.show("Claim filed and assessed", claim)

	d.step("Repair shop proposes $1,500.00")
	claim, err = d.engine.ProposeEstimate(ctx, claim.ID, demoShop, 1500, "Hidden damage to the bumper reinforcement bar")
	if err != nil {
		return err
	}
	d.current(claim)

	d.step("Agent counters with $1,800.00")
	claim, err = d.engine.ProposeEstimate(ctx, claim.ID, demoAgent, 1800, "Includes rental car coverage")
	if err != nil {
		return err
	}
	d.current(claim)

	lifecycle := []struct {
		actor  model.Actor
		intent engine.Intent
	}{
		{demoAgent, engine.IntentApproveEstimate},
		{demoShop, engine.IntentVehicleReceived},
		{demoShop, engine.IntentRepairCompleted},
		{demoHolder, engine.IntentConfirmPickup},
	}
	for _, s := range lifecycle {
		claim, err = d.engine.ApplyTransition(ctx, claim.ID, s.actor, s.intent, engine.Payload{})
		if err != nil {
			return err
		}
		d.step(fmt.Sprintf("%s: %s → %s", s.actor.Role, s.intent, claim.Status))
	}

	d.step("Agent tries to reject the closed claim")
	if _, err := d.engine.Reject(ctx, claim.ID, demoAgent, "Too late"); err != nil {
		fmt.Fprintln(out, "  "+cli.FormatWarning(describeError(err)))
	} else {
		return fmt.Errorf("%w: closed claim accepted a rejection", common.ErrInvalidTransition)
	}
	d.show("Closed claim", claim)

	second, err := d.submit(ctx, "POL-2", "Rollover on an icy road, vehicle may be totaled")
	if err != nil {
		return err
	}
	d.step("Agent rejects the second claim")
	second, err = d.engine.Reject(ctx, second.ID, demoAgent, "Fraud suspected")
	if err != nil {
		return err
	}
	d.show("Rejected claim", second)

	return nil
}

func (d *demoRun) submit(ctx context.Context, policy, details string) (*model.Claim, error) {
	d.step(fmt.Sprintf("Policyholder files claim on %s", policy))
	return d.engine.SubmitClaim(ctx, demoHolder, engine.SubmitRequest{
		PolicyNumber:     policy,
		PolicyholderName: demoHolder.Name,
		VehicleModel:     "Honda Civic",
		VehicleYear:      2019,
		AccidentDetails:  details,
		IncidentLocation: "Springfield",
		Images:           []model.Image{sampleImage()},
	})
}

func (d *demoRun) step(msg string) {
	fmt.Fprintln(d.out, "\n"+cli.FormatInfo(msg))
}

func (d *demoRun) current(claim *model.Claim) {
	fmt.Fprintf(d.out, "  Current estimate: %s (%s)\n",
		model.FormatAmount(claim.CurrentEstimate.TotalCost), claim.CurrentEstimate.Source)
}

func (d *demoRun) show(title string, claim *model.Claim) {
	fmt.Fprintln(d.out, cli.RenderBox(title, cli.RenderClaim(claim, nil)))
}
