package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/roach88/bankcheck/internal/config"
	"github.com/roach88/bankcheck/internal/harness"
	"github.com/roach88/bankcheck/internal/itf"
	"github.com/roach88/bankcheck/internal/store"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	ConfigPath     string
	TracesDir      string
	Pattern        string
	Start          int
	Count          int
	Database       string
	StrictBalances bool
}

// CheckReport is the JSON payload of the check command.
type CheckReport struct {
	RunID string `json:"run_id,omitempty"`
	*harness.RunResult
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check [trace-file...]",
		Short: "Replay traces against the ledger",
		Long: `Replay ITF traces against the ledger and report divergences.

Without arguments, replays the numbered trace files described by the
configuration (traces/out0.itf.json .. traces/out9.itf.json by default).
With arguments, replays exactly those files.

Configuration is layered: schema defaults, then the --config CUE file,
then BANKCHECK_* environment variables, then flags.

Exit codes:
  0 - Every trace conforms
  1 - At least one divergence was found
  2 - Command error (missing or malformed trace, bad config, etc.)

Examples:
  bankcheck check
  bankcheck check --traces ./traces --count 3
  bankcheck check traces/out4.itf.json
  bankcheck check --db runs.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "CUE config file")
	cmd.Flags().StringVar(&opts.TracesDir, "traces", "", "directory holding numbered trace files")
	cmd.Flags().StringVar(&opts.Pattern, "pattern", "", "trace file name pattern (must contain %d)")
	cmd.Flags().IntVar(&opts.Start, "start", 0, "first trace index")
	cmd.Flags().IntVar(&opts.Count, "count", 0, "number of traces")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the run in this SQLite database")
	cmd.Flags().BoolVar(&opts.StrictBalances, "strict-balances", false, "report zero balances the model omits")

	return cmd
}

// resolveConfig loads the config and applies flags the user set
// explicitly; unset flags never override lower layers.
func (opts *CheckOptions) resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("traces") {
		cfg.Traces.Dir = opts.TracesDir
	}
	if flags.Changed("pattern") {
		cfg.Traces.Pattern = opts.Pattern
	}
	if flags.Changed("start") {
		cfg.Traces.Start = opts.Start
	}
	if flags.Changed("count") {
		cfg.Traces.Count = opts.Count
	}
	if flags.Changed("db") {
		cfg.Database = opts.Database
	}
	if flags.Changed("strict-balances") {
		cfg.StrictBalances = opts.StrictBalances
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runCheck(cmd *cobra.Command, opts *CheckOptions, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg, err := opts.resolveConfig(cmd)
	if err != nil {
		return out.fail(ExitCommandError, ErrCodeConfig, "invalid configuration", err)
	}

	var catalog itf.Catalog = cfg.Catalog()
	if len(args) > 0 {
		catalog = itf.Files(args)
	}

	logger := newLogger(cmd.ErrOrStderr(), opts.RootOptions)
	replayer := harness.New(
		harness.WithLogger(logger),
		harness.WithDiffOptions(harness.DiffOptions{StrictBalances: cfg.StrictBalances}),
	)

	var sinks harness.MultiSink
	if !out.IsJSON() {
		sinks = append(sinks, harness.NewTextSink(cmd.OutOrStdout()))
	}

	var st *store.Store
	var runID string
	if cfg.Database != "" {
		st, err = store.Open(cfg.Database, opts.StoreOptions...)
		if err != nil {
			return out.fail(ExitCommandError, ErrCodeStore, "failed to open database", err)
		}
		defer st.Close()

		runID, err = st.BeginRun(ctx, cfg.Document())
		if err != nil {
			return out.fail(ExitCommandError, ErrCodeStore, "failed to record run", err)
		}
		sinks = append(sinks, store.NewSink(st, runID))
		logger.Debug("recording run", "run", runID, "db", cfg.Database)
	}

	result, err := replayer.Run(ctx, catalog, sinks)
	if err != nil {
		var decodeErr *itf.DecodeError
		if errors.As(err, &decodeErr) || errors.Is(err, fs.ErrNotExist) {
			return out.fail(ExitCommandError, ErrCodeTraceLoad, "failed to load trace", err)
		}
		return out.fail(ExitCommandError, ErrCodeGeneric, "replay failed", err)
	}

	if st != nil {
		if err := st.FinishRun(ctx, runID, result); err != nil {
			return out.fail(ExitCommandError, ErrCodeStore, "failed to record run", err)
		}
	}

	report := CheckReport{RunID: runID, RunResult: result}
	if out.IsJSON() {
		if result.Pass {
			err = out.Success(report)
		} else {
			err = out.Failure(ErrCodeDivergence, "divergences found", report)
		}
		if err != nil {
			return err
		}
	} else {
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "\n%d trace(s): %d passed, %d failed, %d finding(s)\n",
			len(result.Traces), result.Passed, result.Failed, result.Findings)
		if runID != "" {
			fmt.Fprintf(w, "Recorded run %s\n", runID)
		}
	}

	if !result.Pass {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d trace(s) diverged", result.Failed, len(result.Traces)))
	}
	return nil
}
