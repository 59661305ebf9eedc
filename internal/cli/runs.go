package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/bankcheck/internal/config"
	"github.com/roach88/bankcheck/internal/harness"
	"github.com/roach88/bankcheck/internal/store"
)

// DatabaseOptions holds the flags shared by commands that read recorded runs.
type DatabaseOptions struct {
	ConfigPath string
	Database   string
}

func (o *DatabaseOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.ConfigPath, "config", "c", "", "CUE config file")
	cmd.Flags().StringVar(&o.Database, "db", "", "SQLite database holding recorded runs")
}

// openStore opens the database named by --db, falling back to the
// configured one.
func (o *DatabaseOptions) openStore(cmd *cobra.Command, out *OutputFormatter, storeOpts []store.Option) (*store.Store, error) {
	path := o.Database
	if !cmd.Flags().Changed("db") {
		cfg, err := config.Load(o.ConfigPath)
		if err != nil {
			return nil, out.fail(ExitCommandError, ErrCodeConfig, "invalid configuration", err)
		}
		path = cfg.Database
	}
	if path == "" {
		return nil, out.fail(ExitCommandError, ErrCodeNoDatabase,
			"no database configured (use --db or set database in the config)", nil)
	}

	st, err := store.Open(path, storeOpts...)
	if err != nil {
		return nil, out.fail(ExitCommandError, ErrCodeStore, "failed to open database", err)
	}
	return st, nil
}

// RunsOptions holds flags for the runs command.
type RunsOptions struct {
	*RootOptions
	DatabaseOptions
}

// RunDetail is the JSON payload of `runs <run-id>`.
type RunDetail struct {
	store.Run
	Results []harness.TraceResult `json:"results"`
}

// NewRunsCommand creates the runs command.
func NewRunsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "runs [run-id]",
		Short: "List recorded check runs",
		Long: `List the runs recorded by "bankcheck check --db", oldest first.

With a run id, shows that run's per-trace results.

Examples:
  bankcheck runs --db runs.db
  bankcheck runs --db runs.db 0192f7a4-...
  bankcheck runs --config bankcheck.cue --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRuns(cmd, opts, args)
		},
	}

	opts.addFlags(cmd)

	return cmd
}

func runRuns(cmd *cobra.Command, opts *RunsOptions, args []string) error {
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

	st, err := opts.openStore(cmd, out, opts.StoreOptions)
	if err != nil {
		return err
	}
	defer st.Close()

	if len(args) == 1 {
		return showRun(ctx, cmd.OutOrStdout(), out, st, args[0])
	}

	runs, err := st.ListRuns(ctx)
	if err != nil {
		return out.fail(ExitCommandError, ErrCodeStore, "failed to list runs", err)
	}

	if out.IsJSON() {
		return out.Success(runs)
	}

	w := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}
	for _, run := range runs {
		fmt.Fprintf(w, "#%d %s  %d trace(s)  %d finding(s)  %s\n",
			run.Seq, run.ID, run.Traces, run.Findings, runStatus(run))
	}
	return nil
}

func showRun(ctx context.Context, w io.Writer, out *OutputFormatter, st *store.Store, id string) error {
	run, err := st.GetRun(ctx, id)
	if errors.Is(err, store.ErrRunNotFound) {
		return out.fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("run not found: %s", id), err)
	}
	if err != nil {
		return out.fail(ExitCommandError, ErrCodeStore, "failed to read run", err)
	}

	results, err := st.ReadTraceResults(ctx, id)
	if err != nil {
		return out.fail(ExitCommandError, ErrCodeStore, "failed to read trace results", err)
	}

	if out.IsJSON() {
		return out.Success(RunDetail{Run: run, Results: results})
	}

	fmt.Fprintf(w, "Run #%d %s: %s\n", run.Seq, run.ID, runStatus(run))
	for _, r := range results {
		mark := "✓"
		if !r.Pass {
			mark = "✗"
		}
		fmt.Fprintf(w, "  %s trace #%d %s: %d step(s), %d divergent\n",
			mark, r.Index, r.Path, r.Steps, r.DivergentSteps)
	}
	return nil
}

func runStatus(run store.Run) string {
	switch {
	case !run.Finished:
		return "incomplete"
	case run.Pass:
		return "pass"
	default:
		return "fail"
	}
}
