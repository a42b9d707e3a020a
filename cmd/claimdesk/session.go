package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/spf13/cobra"

	"github.com/Veraticus/claimdesk/internal/cli"
	"github.com/Veraticus/claimdesk/internal/common"
	"github.com/Veraticus/claimdesk/internal/engine"
	"github.com/Veraticus/claimdesk/internal/model"
)

func sessionCmd() *cobra.Command {
	var (
		roleName  string
		actorName string
	)

	cmd := &cobra.Command{
		Use:   "session",
		Short: "Start an interactive claims session",
		Long: `Start an interactive session over a fresh claim store.

Switch between the Policyholder, Repair Shop and Insurance Agent roles with
'role' to walk a claim through submission, estimate negotiation and repair.
Type 'help' inside the session for the command list.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			role, err := model.ParseRole(roleName)
			if err != nil {
				return err
			}
			return runSession(cmd.Context(), os.Stdin, cmd.OutOrStdout(), model.Actor{Role: role, Name: actorName})
		},
	}

	cmd.Flags().StringVar(&roleName, "role", "policyholder", "initial role (policyholder, shop, agent)")
	cmd.Flags().StringVar(&actorName, "name", "", "display name for the initial role")

	return cmd
}

func runSession(ctx context.Context, in io.Reader, out io.Writer, actor model.Actor) error {
	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer closeQuietly("storage", store)

	gateway, err := createGateway(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize AI gateway: %w", err)
	}
	defer closeQuietly("gateway", gateway)

	handler := cli.NewInterruptHandler(out)
	ctx = handler.HandleInterrupts(ctx, true)

	sh := newShell(out)
	eng := engine.NewWithConfig(store, gateway, engine.Config{
		Logger:  slog.Default().With("component", "engine"),
		OnStage: sh.onStage,
	})
	if err := sh.attach(engine.NewSession(eng, model.Actor{}), actor); err != nil {
		return err
	}

	fmt.Fprintln(out, cli.FormatTitle("claimdesk session"))
	fmt.Fprintln(out, cli.SubtleStyle.Render("Claims are kept in memory and discarded when the session ends. Type 'help' for commands."))
	return sh.run(ctx, in)
}

// shell is the interactive view layer over one Session.
type shell struct {
	session *engine.Session
	out     io.Writer
	spinner *cli.Spinner
	mu      sync.Mutex
}

func newShell(out io.Writer) *shell {
	return &shell{out: out}
}

func (sh *shell) attach(session *engine.Session, actor model.Actor) error {
	sh.session = session
	return session.SwitchActor(actor)
}

// onStage drives the spinner while the AI gateway works on a new claim.
func (sh *shell) onStage(stage engine.Stage, _ *model.Claim) {
	sh.mu.Lock()
	defer sh.mu.Unlock()

	switch stage {
	case engine.StageAnalyzing:
		if sh.spinner == nil {
			sh.spinner = cli.StartSpinner(sh.out, "Analyzing damage and finding repair shops...")
		}
	case engine.StageAnalyzed:
		sh.stopSpinnerLocked()
	}
}

func (sh *shell) stopSpinner() {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	sh.stopSpinnerLocked()
}

func (sh *shell) stopSpinnerLocked() {
	if sh.spinner != nil {
		sh.spinner.Stop()
		sh.spinner = nil
	}
}

// run reads and executes commands until exit, end of input or cancellation.
func (sh *shell) run(ctx context.Context, in io.Reader) error {
	reader := cli.NewNonBlockingReader(in)

	for {
		fmt.Fprint(sh.out, cli.FormatPrompt(string(sh.session.Actor().Role)))

		line, readErr := reader.ReadLine(ctx)
		if errors.Is(readErr, cli.ErrInputCancelled) {
			return nil
		}
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return fmt.Errorf("failed to read input: %w", readErr)
		}

		if line != "" {
			if stop := sh.handleLine(ctx, line); stop {
				return nil
			}
		}

		if readErr != nil {
			fmt.Fprintln(sh.out)
			return nil
		}
	}
}

// handleLine executes one command line. It reports whether the session should end.
func (sh *shell) handleLine(ctx context.Context, line string) bool {
	args, err := cli.Split(line)
	if err != nil {
		fmt.Fprintln(sh.out, cli.FormatError(err.Error()))
		return false
	}
	if len(args) == 0 {
		return false
	}
	if args[0] == "exit" || args[0] == "quit" {
		return true
	}

	if err := sh.execute(ctx, args); err != nil {
		sh.stopSpinner()
		fmt.Fprintln(sh.out, cli.FormatError(describeError(err)))
	}
	return false
}

func (sh *shell) execute(ctx context.Context, args []string) error {
	root := sh.commands()
	root.SetArgs(args)
	root.SetOut(sh.out)
	root.SetErr(sh.out)
	return root.ExecuteContext(ctx)
}

// describeError turns engine errors into one-line messages for the session.
func describeError(err error) string {
	var transitionErr *common.TransitionError
	var userErr *common.UserError
	switch {
	case errors.As(err, &userErr):
		return userErr.UserMessage
	case errors.As(err, &transitionErr):
		return fmt.Sprintf("Not allowed: %s cannot %s a claim that is %s.",
			transitionErr.Role, transitionErr.Intent, transitionErr.Status)
	case errors.Is(err, common.ErrTerminalState):
		return "This claim is closed or rejected; no further changes are possible."
	case errors.Is(err, common.ErrNotFound):
		return "Claim not found."
	default:
		return err.Error()
	}
}
