// Package root implements the actionscope command-line interface.
package root

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/actionscope/actionscope/pkg/action"
	"github.com/actionscope/actionscope/pkg/config"
	"github.com/actionscope/actionscope/pkg/logging"
	"github.com/actionscope/actionscope/pkg/msg"
	"github.com/actionscope/actionscope/pkg/paths"
	"github.com/actionscope/actionscope/pkg/telemetry"
	"github.com/actionscope/actionscope/pkg/version"
)

type rootFlags struct {
	debugMode   bool
	logFilePath string
}

// app holds the process-wide wiring shared by subcommands. It is populated
// in PersistentPreRunE and torn down in PersistentPostRunE.
type app struct {
	flags rootFlags

	client  *telemetry.Client
	runner  *action.Runner
	diag    *logging.DiagnosticLog
	logFile io.Closer
}

func NewRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "actionscope",
		Short: "actionscope - journey-correlated action telemetry for CLI tools",
		Long:  "actionscope tracks user-invoked commands as telemetry sessions and reports their outcome to a hosted collector",
		Example: `  actionscope exec -- make build
  actionscope probe`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Initialize logging before anything else
			if err := a.setupLogging(); err != nil {
				// If logging setup fails, fall back to stderr so we still get logs
				slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
					Level: func() slog.Level {
						if a.flags.debugMode {
							return slog.LevelDebug
						}
						return slog.LevelInfo
					}(),
				})))
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading telemetry configuration: %w", err)
			}

			a.client = telemetry.New(cfg, slog.Default(), version.Version)

			diag, err := logging.Open(paths.DiagnosticLogPath())
			if err != nil {
				slog.Warn("Failed to open diagnostic log", "error", err)
			} else {
				a.diag = diag
			}

			opts := []action.RunnerOption{}
			if a.diag != nil {
				opts = append(opts, action.WithDiagnosticLog(a.diag))
			}
			a.runner = action.NewRunner(a.client, msg.NewWriter(cmd.ErrOrStderr()), opts...)

			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.client != nil {
				ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
				defer cancel()
				if err := a.client.Shutdown(ctx); err != nil {
					slog.Debug("Telemetry shutdown did not finish", "error", err)
				}
			}
			if a.diag != nil {
				if err := a.diag.Close(); err != nil {
					slog.Error("Failed to close diagnostic log", "error", err)
				}
			}
			if a.logFile != nil {
				if err := a.logFile.Close(); err != nil {
					slog.Error("Failed to close log file", "error", err)
				}
			}
			return nil
		},
		// If no subcommand is specified, show help
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cmd.PersistentFlags().BoolVarP(&a.flags.debugMode, "debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&a.flags.logFilePath, "log-file", "", "Path to debug log file (default: ~/.actionscope/actionscope.debug.log; only used with --debug)")

	cmd.AddCommand(newExecCmd(a))
	cmd.AddCommand(newProbeCmd(a))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func Execute(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer, args ...string) error {
	rootCmd := NewRootCmd()
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetContext(ctx)
	rootCmd.SetArgs(args)

	if err := rootCmd.Execute(); err != nil {
		return processErr(ctx, err, stderr, rootCmd)
	}
	return nil
}

func processErr(ctx context.Context, err error, stderr io.Writer, rootCmd *cobra.Command) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	var runtimeErr RuntimeError
	if errors.As(err, &runtimeErr) {
		// Runtime errors have already been presented by the boundary;
		// don't print them again or show usage.
		return err
	}

	// Command line usage errors - show the error and usage
	fmt.Fprintln(stderr, err)
	fmt.Fprintln(stderr)
	if strings.HasPrefix(err.Error(), "unknown command ") || strings.HasPrefix(err.Error(), "accepts ") {
		_ = rootCmd.Usage()
	}

	return err
}

// setupLogging configures slog logging behavior.
// When --debug is enabled, logs are written to a rotating file
// <dataDir>/actionscope.debug.log, or to the file specified by --log-file.
func (a *app) setupLogging() error {
	if !a.flags.debugMode {
		slog.SetDefault(slog.New(slog.DiscardHandler))
		return nil
	}

	path := cmp.Or(strings.TrimSpace(a.flags.logFilePath), filepath.Join(paths.GetDataDir(), "actionscope.debug.log"))

	logFile, err := logging.Open(path)
	if err != nil {
		return err
	}
	a.logFile = logFile

	slog.SetDefault(slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: slog.LevelDebug})))

	return nil
}

// RuntimeError wraps errors that the action boundary has already presented,
// to distinguish them from usage errors.
type RuntimeError struct {
	Err error
}

func (e RuntimeError) Error() string {
	return e.Err.Error()
}

func (e RuntimeError) Unwrap() error {
	return e.Err
}
