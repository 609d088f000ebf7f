package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stepwise-run/stepwise/internal/config"
	"github.com/stepwise-run/stepwise/internal/engine"
	"github.com/stepwise-run/stepwise/internal/executor"
	"github.com/stepwise-run/stepwise/internal/logsink"
)

var dryRun bool

// NewRootCmd creates the root command for the stepwise CLI.
func NewRootCmd() *cobra.Command {
	v := viper.New()

	rootCmd := &cobra.Command{
		Use:          "stepwise <path-to-job-manifest>",
		Short:        "Run a declarative job manifest as an ordered sequence of tasks",
		Long: `Stepwise loads a job manifest, discovers and binds the tasks it
references, and runs its commands one at a time, in order, streaming each
child's output and halting on the first non-zero exit.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJob(cmd, v, args[0])
		},
	}

	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "load, discover, and bind without executing")

	return rootCmd
}

func runJob(cmd *cobra.Command, v *viper.Viper, path string) error {
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	sink := logsink.NewSimpleSink(cmd.OutOrStdout())

	opts := engine.Options{
		DryRun:      dryRun,
		GracePeriod: cfg.GracePeriod,
		TmpBase:     cfg.TmpBase,
	}

	// Cancellation is signal-driven inside the executor itself (it forwards
	// the actual received signal to the running child); the CLI layer does
	// not need its own signal plumbing on top of that.
	return engine.Run(cmd.Context(), path, sink, opts)
}

// capExitCode clamps a child's exit code to the range a shell can portably
// report, so an unusually large status never collides with reserved codes.
func capExitCode(code int) int {
	if code > 125 {
		return 125
	}
	if code < 1 {
		return 1
	}
	return code
}

// Execute runs the root command and exits the process: 0 on success, 1 on
// an engine-level failure, or the failed child's exit code (capped) when
// the run halted on CommandFailed.
func Execute() {
	err := NewRootCmd().ExecuteContext(context.Background())
	if err == nil {
		return
	}

	if cf, ok := err.(*executor.CommandFailed); ok {
		os.Exit(capExitCode(cf.ExitCode))
	}
	os.Exit(1)
}
