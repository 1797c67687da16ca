package root

import (
	"context"
	"errors"
	"os/exec"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/actionscope/actionscope/pkg/action"
)

func newExecCmd(a *app) *cobra.Command {
	var (
		name            string
		suppressSuccess bool
	)

	cmd := &cobra.Command{
		Use:   "exec -- <command> [args...]",
		Short: "Run a command as a tracked action",
		Long: `Run a command as a tracked telemetry action.

The subprocess runs under a fresh journey identifier; its duration, result,
and exit code are reported as one summary event when it finishes.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			act := action.New(name, map[string]string{
				"argv0": args[0],
			})
			if suppressSuccess {
				act.SetOptions(action.OptionUpdate{SuppressIfSuccessful: &suppressSuccess})
			}

			outcome := a.runner.Run(cmd.Context(), act, func(ctx context.Context) error {
				act.SetStep("spawn")

				child := exec.CommandContext(ctx, args[0], args[1:]...)
				child.Stdin = cmd.InOrStdin()
				child.Stdout = cmd.OutOrStdout()
				child.Stderr = cmd.ErrOrStderr()

				act.SetStep("wait")
				err := child.Run()

				var exitErr *exec.ExitError
				switch {
				case err == nil:
					act.SetProperty("exitCode", "0")
					return nil
				case errors.As(err, &exitErr):
					act.SetProperty("exitCode", strconv.Itoa(exitErr.ExitCode()))
					if ctx.Err() != nil {
						// The user interrupted us, which killed the child.
						return action.ErrCancelled
					}
					return err
				default:
					return err
				}
			})

			switch outcome.Result {
			case action.ResultFailed:
				return RuntimeError{Err: errors.New(outcome.Error.Message)}
			case action.ResultCanceled:
				return nil
			default:
				return nil
			}
		},
	}

	cmd.Flags().StringVar(&name, "name", "exec", "Action name used for the summary event")
	cmd.Flags().BoolVar(&suppressSuccess, "suppress-success", false, "Send no telemetry when the command succeeds")

	return cmd
}
