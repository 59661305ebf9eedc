package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/bankcheck/internal/harness"
)

// ScenarioOptions holds flags for the scenario command.
type ScenarioOptions struct {
	*RootOptions
	Update         bool   // regenerate golden files
	Filter         string // scenario filter (glob pattern)
	StrictBalances bool
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name     string            `json:"name"`
	Pass     bool              `json:"pass"`
	Golden   bool              `json:"golden"`
	Findings []harness.Finding `json:"findings,omitempty"`
	Errors   []string          `json:"errors,omitempty"`
}

// ScenarioReport holds the overall scenario run result.
type ScenarioReport struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewScenarioCommand creates the scenario command.
func NewScenarioCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ScenarioOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "scenario <scenarios-dir>",
		Short: "Run hand-written YAML scenarios",
		Long: `Replay YAML scenarios through the same driver as generated traces.

A scenario without a golden file passes when the ledger matches every
expectation. A scenario with a golden file (golden/<name>.golden next to
the scenario) passes when its report matches the golden file byte for
byte, which lets a scenario pin down expected divergences.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  bankcheck scenario ./scenarios
  bankcheck scenario ./scenarios --filter "alice-*"
  bankcheck scenario ./scenarios --update
  bankcheck scenario ./scenarios --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarios(cmd, opts, args[0])
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")
	cmd.Flags().BoolVar(&opts.StrictBalances, "strict-balances", false, "report zero balances the model omits")

	return cmd
}

func runScenarios(cmd *cobra.Command, opts *ScenarioOptions, dir string) error {
	out := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return out.fail(ExitCommandError, ErrCodeNotFound,
			fmt.Sprintf("scenarios directory not found: %s", dir), nil)
	}

	files, err := findScenarioFiles(dir, opts.Filter)
	if err != nil {
		return out.fail(ExitCommandError, ErrCodeGeneric, "failed to find scenarios", err)
	}

	report := ScenarioReport{Scenarios: []ScenarioResult{}, Total: len(files)}
	if len(files) == 0 {
		if out.IsJSON() {
			return out.Success(report)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No scenarios found.")
		return nil
	}

	replayer := harness.New(
		harness.WithLogger(newLogger(cmd.ErrOrStderr(), opts.RootOptions)),
		harness.WithDiffOptions(harness.DiffOptions{StrictBalances: opts.StrictBalances}),
	)

	for _, file := range files {
		res := runScenario(cmd.Context(), replayer, file, opts)
		if !out.IsJSON() {
			printScenarioResult(cmd.OutOrStdout(), res)
		}
		report.Scenarios = append(report.Scenarios, res)
		if res.Pass {
			report.Passed++
		} else {
			report.Failed++
		}
	}

	if out.IsJSON() {
		if report.Failed == 0 {
			err = out.Success(report)
		} else {
			err = out.Failure(ErrCodeDivergence, "scenarios failed", report)
		}
		if err != nil {
			return err
		}
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "\n%d passed, %d failed, %d total\n",
			report.Passed, report.Failed, report.Total)
	}

	if report.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d scenario(s) failed", report.Failed, report.Total))
	}
	return nil
}

// findScenarioFiles finds all YAML scenario files in a directory.
func findScenarioFiles(dir string, filter string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(path), ext)
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}

		files = append(files, path)
		return nil
	})

	return files, err
}

// runScenario loads, replays and (when a golden file exists or --update
// is set) compares one scenario.
func runScenario(ctx context.Context, r *harness.Replayer, file string, opts *ScenarioOptions) ScenarioResult {
	if ctx == nil {
		ctx = context.Background()
	}
	name := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))

	scenario, err := harness.LoadScenario(file)
	if err != nil {
		return ScenarioResult{Name: name, Errors: []string{fmt.Sprintf("failed to load scenario: %v", err)}}
	}
	name = scenario.Name

	trace, err := scenario.Trace()
	if err != nil {
		return ScenarioResult{Name: name, Errors: []string{fmt.Sprintf("failed to build trace: %v", err)}}
	}

	result, err := r.ReplayTrace(ctx, trace, harness.Discard)
	if err != nil {
		return ScenarioResult{Name: name, Errors: []string{fmt.Sprintf("replay failed: %v", err)}}
	}

	res := ScenarioResult{Name: name, Pass: result.Pass, Findings: result.Findings}

	data, err := harness.NewReportSnapshot(name, result).MarshalCanonical()
	if err != nil {
		res.Pass = false
		res.Errors = append(res.Errors, fmt.Sprintf("failed to snapshot report: %v", err))
		return res
	}

	goldenPath := goldenFilePath(file)
	if opts.Update {
		if err := writeGoldenFile(goldenPath, data); err != nil {
			res.Pass = false
			res.Errors = append(res.Errors, err.Error())
			return res
		}
		res.Golden = true
		res.Pass = true
		return res
	}

	golden, err := os.ReadFile(goldenPath)
	if os.IsNotExist(err) {
		return res
	}
	if err != nil {
		res.Pass = false
		res.Errors = append(res.Errors, fmt.Sprintf("failed to read golden file: %v", err))
		return res
	}

	res.Golden = true
	res.Pass = bytes.Equal(golden, data)
	if !res.Pass {
		res.Errors = append(res.Errors, "report does not match golden file (run with --update to regenerate)")
	}
	return res
}

func printScenarioResult(w io.Writer, res ScenarioResult) {
	mark := "✓"
	if !res.Pass {
		mark = "✗"
	}
	suffix := ""
	if res.Golden {
		suffix = " (golden)"
	}
	fmt.Fprintf(w, "%s %s%s\n", mark, res.Name, suffix)

	if res.Pass {
		return
	}
	for _, e := range res.Errors {
		fmt.Fprintf(w, "  %s\n", e)
	}
	for _, f := range res.Findings {
		fmt.Fprintf(w, "  step %d %s: %s\n", f.Step, f.Action, f.Message())
	}
}

// goldenFilePath returns the path to the golden file for a scenario.
func goldenFilePath(scenarioFile string) string {
	dir := filepath.Dir(scenarioFile)
	base := filepath.Base(scenarioFile)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, "golden", name+".golden")
}

// writeGoldenFile writes the report snapshot as the golden file.
func writeGoldenFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write golden file: %w", err)
	}
	return nil
}
