package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/actionscope/actionscope/pkg/action"
	"github.com/actionscope/actionscope/pkg/config"
)

func newProbeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Send a test tracepoint event to the configured collector",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			if !cfg.Enabled {
				fmt.Fprintln(cmd.OutOrStdout(), "Telemetry is disabled; nothing to send.")
				return nil
			}
			if cfg.Endpoint == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "No collector endpoint configured; the event will be logged and discarded.")
			}

			act := action.New("probe", nil)
			a.runner.LogInfo(cmd.Context(), act, "cli", "probe.test", "connectivity probe")

			fmt.Fprintf(cmd.OutOrStdout(), "Queued test event (journey %s); it is flushed on exit.\n", act.JourneyID())
			return nil
		},
	}
}
