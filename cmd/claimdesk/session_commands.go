package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/claimdesk/internal/cli"
	"github.com/Veraticus/claimdesk/internal/common"
	"github.com/Veraticus/claimdesk/internal/engine"
	"github.com/Veraticus/claimdesk/internal/model"
	"github.com/Veraticus/claimdesk/internal/service"
)

// commands builds a fresh command tree for one session line, so no flag
// values leak between lines.
func (sh *shell) commands() *cobra.Command {
	root := &cobra.Command{
		Use:           "claimdesk>",
		Short:         "Session commands (exit or quit to leave)",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.CompletionOptions.DisableDefaultCmd = true

	root.AddCommand(
		sh.roleCmd(),
		sh.submitCmd(),
		sh.listCmd(),
		sh.showCmd(),
		sh.actionsCmd(),
		sh.transitionCmd(),
		sh.approveCmd(),
		sh.rejectCmd(),
		sh.proposeCmd(),
		sh.commentCmd(),
	)
	return root
}

func (sh *shell) roleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "role [policyholder|shop|agent] [name...]",
		Short: "Show or switch the acting role",
		RunE: func(_ *cobra.Command, args []string) error {
			if len(args) == 0 {
				actor := sh.session.Actor()
				fmt.Fprintf(sh.out, "Acting as %s (%s)\n", actor.Name, actor.Role)
				return nil
			}

			role, err := model.ParseRole(args[0])
			if err != nil {
				return &common.UserError{Err: err, UserMessage: fmt.Sprintf("Unknown role %q; choose policyholder, shop or agent.", args[0])}
			}
			if err := sh.session.SwitchActor(model.Actor{Role: role, Name: strings.Join(args[1:], " ")}); err != nil {
				return err
			}

			actor := sh.session.Actor()
			fmt.Fprintln(sh.out, cli.FormatSuccess(fmt.Sprintf("Now acting as %s (%s)", actor.Name, actor.Role)))
			return nil
		},
	}
}

func (sh *shell) submitCmd() *cobra.Command {
	var (
		req        engine.SubmitRequest
		imagePaths []string
		sample     bool
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "File a new claim (policyholder)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			images, err := loadImages(imagePaths)
			if err != nil {
				return err
			}
			if sample {
				images = append(images, sampleImage())
			}
			req.Images = images

			claim, err := sh.session.Submit(cmd.Context(), req)
			if err != nil {
				return err
			}

			fmt.Fprintln(sh.out, cli.FormatSuccess("Claim "+claim.ID+" submitted"))
			fmt.Fprint(sh.out, cli.RenderClaim(claim, intentNames(sh.session.Actions(claim))))
			return nil
		},
	}

	cmd.Flags().StringVar(&req.PolicyNumber, "policy", "", "policy number")
	cmd.Flags().StringVar(&req.PolicyholderName, "name", "", "policyholder name")
	cmd.Flags().StringVar(&req.VehicleModel, "vehicle", "", "vehicle make and model")
	cmd.Flags().IntVar(&req.VehicleYear, "year", 0, "vehicle model year")
	cmd.Flags().StringVar(&req.IncidentLocation, "location", "", "where the accident happened")
	cmd.Flags().StringVar(&req.AccidentDetails, "details", "", "what happened")
	cmd.Flags().StringArrayVar(&imagePaths, "image", nil, "damage photo path (repeatable)")
	cmd.Flags().BoolVar(&sample, "sample-image", false, "attach a built-in placeholder photo")

	return cmd
}

func (sh *shell) listCmd() *cobra.Command {
	var (
		statuses []string
		policy   string
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List claims, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter := service.ClaimFilter{PolicyNumber: policy, Limit: limit}
			for _, s := range statuses {
				status, err := model.ParseStatus(s)
				if err != nil {
					return err
				}
				filter.Statuses = append(filter.Statuses, status)
			}

			claims, err := sh.session.List(cmd.Context(), filter)
			if err != nil {
				return err
			}
			fmt.Fprint(sh.out, cli.RenderClaimList(claims))
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&statuses, "status", nil, "only claims in these statuses")
	cmd.Flags().StringVar(&policy, "policy", "", "only claims for this policy number")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of claims")

	return cmd
}

func (sh *shell) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <claim-id>",
		Short: "Show a claim in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			claim, err := sh.resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(sh.out, cli.RenderClaim(claim, intentNames(sh.session.Actions(claim))))
			return nil
		},
	}
}

func (sh *shell) actionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "actions <claim-id>",
		Short: "List what the current role may do with a claim",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			claim, err := sh.resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			actions := intentNames(sh.session.Actions(claim))
			if sh.session.CanPropose(claim) {
				actions = append(actions, "propose")
			}
			if len(actions) == 0 {
				fmt.Fprintln(sh.out, cli.SubtleStyle.Render("No actions available for "+string(sh.session.Actor().Role)+"."))
				return nil
			}
			for _, action := range actions {
				fmt.Fprintln(sh.out, "  "+action)
			}
			return nil
		},
	}
}

func (sh *shell) transitionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "transition <claim-id> <intent> [reason...]",
		Short: "Apply a status change by intent name",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			intent, ok := engine.ParseIntent(args[1])
			if !ok {
				return &common.UserError{UserMessage: fmt.Sprintf("Unknown intent %q. Known intents: %s",
					args[1], strings.Join(intentNames(engine.AllIntents()), ", "))}
			}
			claim, err := sh.resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			updated, err := sh.session.Transition(cmd.Context(), claim.ID, intent, engine.Payload{Reason: strings.Join(args[2:], " ")})
			if err != nil {
				return err
			}
			sh.printStatus(updated)
			return nil
		},
	}
}

func (sh *shell) approveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "approve <claim-id>",
		Short: "Approve the current estimate (agent)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			claim, err := sh.resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			updated, err := sh.session.Approve(cmd.Context(), claim.ID)
			if err != nil {
				return err
			}
			sh.printStatus(updated)
			return nil
		},
	}
}

func (sh *shell) rejectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reject <claim-id> <reason...>",
		Short: "Reject a claim with a reason (agent)",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			claim, err := sh.resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			updated, err := sh.session.Reject(cmd.Context(), claim.ID, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			sh.printStatus(updated)
			return nil
		},
	}
}

func (sh *shell) proposeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "propose <claim-id> <amount> <justification...>",
		Short: "Propose a new estimate (shop or agent)",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			claim, err := sh.resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			updated, err := sh.session.Propose(cmd.Context(), claim.ID, amount, strings.Join(args[2:], " "))
			if err != nil {
				return err
			}
			fmt.Fprintln(sh.out, cli.FormatSuccess("Estimate proposed. Current estimate: "+model.FormatAmount(updated.CurrentEstimate.TotalCost)))
			return nil
		},
	}
}

func (sh *shell) commentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "comment <claim-id> <text...>",
		Short: "Add a comment to a claim",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			claim, err := sh.resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if _, err := sh.session.Comment(cmd.Context(), claim.ID, strings.Join(args[1:], " ")); err != nil {
				return err
			}
			fmt.Fprintln(sh.out, cli.FormatSuccess("Comment added"))
			return nil
		},
	}
}

func (sh *shell) printStatus(claim *model.Claim) {
	fmt.Fprintln(sh.out, cli.FormatSuccess("Claim "+claim.ID+" is now "+string(claim.Status)))
}

// resolve finds a claim by full id or by a unique id prefix, case-insensitively.
func (sh *shell) resolve(ctx context.Context, ref string) (*model.Claim, error) {
	claim, err := sh.session.Find(ctx, strings.ToUpper(ref))
	if err == nil {
		return claim, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	claims, err := sh.session.List(ctx, service.ClaimFilter{})
	if err != nil {
		return nil, err
	}

	prefix := strings.ToUpper(ref)
	var matches []model.Claim
	for _, c := range claims {
		if strings.HasPrefix(c.ID, prefix) {
			matches = append(matches, c)
		}
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: claim %s", common.ErrNotFound, ref)
	case 1:
		return &matches[0], nil
	default:
		return nil, &common.UserError{UserMessage: fmt.Sprintf("%q matches %d claims; type more of the id.", ref, len(matches))}
	}
}

func parseAmount(s string) (float64, error) {
	amount, err := strconv.ParseFloat(strings.NewReplacer("$", "", ",", "").Replace(s), 64)
	if err != nil {
		return 0, common.NewValidationError("amount", fmt.Sprintf("%q is not a number", s))
	}
	return amount, nil
}

func intentNames(intents []engine.Intent) []string {
	names := make([]string, len(intents))
	for i, intent := range intents {
		names[i] = string(intent)
	}
	return names
}

// sampleImage is a minimal JPEG placeholder for demos without photo files.
func sampleImage() model.Image {
	return model.Image{
		MIMEType: "image/jpeg",
		Data:     []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00, 0x01, 0xFF, 0xD9},
	}
}
