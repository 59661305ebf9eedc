package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/bankcheck/internal/harness"
	"github.com/roach88/bankcheck/internal/store"
)

// FindingsOptions holds flags for the findings command.
type FindingsOptions struct {
	*RootOptions
	DatabaseOptions
	RunID string
	Trace int
	Kind  string
}

// FindingsReport is the JSON payload of the findings command.
type FindingsReport struct {
	RunID    string            `json:"run_id"`
	Findings []harness.Finding `json:"findings"`
}

// NewFindingsCommand creates the findings command.
func NewFindingsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FindingsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "findings",
		Short: "Show the findings of a recorded run",
		Long: `Show the findings recorded for a run, ordered by trace and step.

Defaults to the most recent run.

Examples:
  bankcheck findings --db runs.db
  bankcheck findings --db runs.db --run 0192f7a4-... --trace 3
  bankcheck findings --db runs.db --kind balance_mismatch --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFindings(cmd, opts)
		},
	}

	opts.addFlags(cmd)
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run id (default: latest run)")
	cmd.Flags().IntVar(&opts.Trace, "trace", 0, "only findings from this trace index")
	cmd.Flags().StringVar(&opts.Kind, "kind", "", "only findings of this kind")

	return cmd
}

func runFindings(cmd *cobra.Command, opts *FindingsOptions) error {
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

	var run store.Run
	if opts.RunID != "" {
		run, err = st.GetRun(ctx, opts.RunID)
	} else {
		run, err = st.LatestRun(ctx)
	}
	if errors.Is(err, store.ErrRunNotFound) {
		msg := "no runs recorded"
		if opts.RunID != "" {
			msg = fmt.Sprintf("run not found: %s", opts.RunID)
		}
		return out.fail(ExitCommandError, ErrCodeNotFound, msg, err)
	}
	if err != nil {
		return out.fail(ExitCommandError, ErrCodeStore, "failed to read run", err)
	}

	filter := store.FindingFilter{Kind: harness.FindingKind(opts.Kind)}
	if cmd.Flags().Changed("trace") {
		filter.Trace = &opts.Trace
	}

	findings, err := st.ReadFindings(ctx, run.ID, filter)
	if err != nil {
		return out.fail(ExitCommandError, ErrCodeStore, "failed to read findings", err)
	}
	out.VerboseLog("run %s: %d finding(s) match", run.ID, len(findings))

	if out.IsJSON() {
		return out.Success(FindingsReport{RunID: run.ID, Findings: findings})
	}

	w := cmd.OutOrStdout()
	if len(findings) == 0 {
		fmt.Fprintf(w, "No findings for run %s.\n", run.ID)
		return nil
	}
	for _, f := range findings {
		fmt.Fprintln(w, f.String())
	}
	return nil
}
